// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package resource implements the opaque-handle store that owns every
// GPU-side object the engine creates during setup.
//
// Ownership model: the table is the sole owner. All other components hold
// gpucore.ID values and resolve them through the table per use; nothing
// caches a live object across frames. Teardown drains the table once, in
// reverse insertion order.
//
// Stale-handle strategy: generational indices. Each slot carries a
// generation counter baked into the IDs it hands out; Remove bumps the
// counter, so any ID minted before the removal fails Get with
// gpucore.ErrUnknownResource even after the slot is reused.
package resource

import (
	"fmt"
	"sort"

	"github.com/gogpu/flare/gpucore"
)

// Kind classifies the objects a table owns.
type Kind uint32

// Resource kinds.
const (
	KindRenderPass Kind = iota + 1
	KindPipeline
	KindBindGroup
	KindBuffer
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindRenderPass:
		return "render pass"
	case KindPipeline:
		return "pipeline"
	case KindBindGroup:
		return "bind group"
	case KindBuffer:
		return "buffer"
	default:
		return fmt.Sprintf("Kind(%d)", uint32(k))
	}
}

// RenderPass is a table entry for an attached render-pass description.
// No device object exists until the interpreter opens the pass per frame.
type RenderPass struct {
	Desc gpucore.RenderPassDesc
}

// Pipeline is a table entry pairing a pipeline descriptor with its
// compiled device object. PerInstance caches the descriptor's
// per-instance slot mask for draw-time validation.
type Pipeline struct {
	Desc        gpucore.PipelineDesc
	GPU         gpucore.Pipeline
	PerInstance []bool
}

// BindGroup is a table entry pairing a bind-group descriptor with its
// device object. DynamicCount caches the layout's dynamic-binding count.
type BindGroup struct {
	Desc         gpucore.BindGroupDesc
	GPU          gpucore.BindGroup
	DynamicCount int
}

// Buffer is a table entry pairing a buffer descriptor with its device
// object.
type Buffer struct {
	Desc gpucore.BufferDesc
	GPU  gpucore.Buffer
}

type slot struct {
	kind       Kind
	object     any
	generation uint32
	live       bool
	order      int // insertion order, for deterministic teardown
}

// Table owns GPU-side objects behind generational IDs.
//
// Table is not safe for concurrent use; the engine is single-threaded per
// context by contract.
type Table struct {
	slots []slot
	free  []uint32
	count int
	next  int // next insertion order number
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{}
}

// Attach takes ownership of object and returns its handle. The table
// never inspects or mutates the object; it only manages lifetime.
func (t *Table) Attach(kind Kind, object any) gpucore.ID {
	var idx uint32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		t.slots = append(t.slots, slot{})
		idx = uint32(len(t.slots) - 1)
	}

	s := &t.slots[idx]
	s.kind = kind
	s.object = object
	s.live = true
	s.order = t.next
	// Generation 0 would make slot 0's first ID the invalid zero handle.
	if s.generation == 0 {
		s.generation = 1
	}
	t.next++
	t.count++
	return gpucore.MakeID(idx, s.generation)
}

// Get returns the object behind id. Stale and unknown IDs fail with
// gpucore.ErrUnknownResource.
func (t *Table) Get(id gpucore.ID) (any, error) {
	s, err := t.lookup(id)
	if err != nil {
		return nil, err
	}
	return s.object, nil
}

// GetKind is Get with a kind check, for callers that know what they are
// resolving. A live ID of the wrong kind is reported as unknown, with the
// mismatch in the message.
func (t *Table) GetKind(id gpucore.ID, kind Kind) (any, error) {
	s, err := t.lookup(id)
	if err != nil {
		return nil, err
	}
	if s.kind != kind {
		return nil, fmt.Errorf("%w: id %s is a %s, not a %s",
			gpucore.ErrUnknownResource, id, s.kind, kind)
	}
	return s.object, nil
}

// Remove transfers ownership of the object back to the caller and
// invalidates every outstanding ID for the slot.
func (t *Table) Remove(id gpucore.ID) (any, error) {
	s, err := t.lookup(id)
	if err != nil {
		return nil, err
	}
	obj := s.object
	s.object = nil
	s.live = false
	s.generation++
	t.free = append(t.free, id.Slot())
	t.count--
	return obj, nil
}

// Len returns the number of live entries.
func (t *Table) Len() int { return t.count }

// Drain removes every entry and calls release for each, in reverse
// insertion order (newest first), so dependent objects go before the
// objects they were built from. Used at context teardown.
func (t *Table) Drain(release func(Kind, any)) {
	type ordered struct {
		order  int
		kind   Kind
		object any
	}
	live := make([]ordered, 0, t.count)
	for i := range t.slots {
		s := &t.slots[i]
		if !s.live {
			continue
		}
		live = append(live, ordered{s.order, s.kind, s.object})
		s.object = nil
		s.live = false
		s.generation++
	}
	t.free = t.free[:0]
	for i := range t.slots {
		t.free = append(t.free, uint32(i))
	}
	t.count = 0

	sort.Slice(live, func(i, j int) bool { return live[i].order > live[j].order })
	if release != nil {
		for _, e := range live {
			release(e.kind, e.object)
		}
	}
}

// Clear removes every entry without releasing; use Drain when the
// objects need destruction.
func (t *Table) Clear() {
	t.Drain(nil)
}

func (t *Table) lookup(id gpucore.ID) (*slot, error) {
	if id.IsZero() {
		return nil, fmt.Errorf("%w: zero id", gpucore.ErrUnknownResource)
	}
	idx := id.Slot()
	if int(idx) >= len(t.slots) {
		return nil, fmt.Errorf("%w: id %s out of range", gpucore.ErrUnknownResource, id)
	}
	s := &t.slots[idx]
	if !s.live || s.generation != id.Generation() {
		return nil, fmt.Errorf("%w: id %s is stale", gpucore.ErrUnknownResource, id)
	}
	return s, nil
}
