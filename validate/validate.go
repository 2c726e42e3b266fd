// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package validate holds the pure command-stream checks run before any
// device call is issued. The functions are side-effect free and report
// failures as descriptive errors wrapping gpucore.ErrValidation; callers
// decide whether a failure is fatal.
package validate

import (
	"fmt"

	"github.com/gogpu/flare/gpucore"
)

// SlotSet tracks which vertex-buffer slots have been bound in the
// current pass. The zero value is an empty set.
type SlotSet uint64

// Add marks a slot as bound. Slots >= 64 are ignored; no real device
// exposes that many vertex-buffer slots.
func (s *SlotSet) Add(slot uint32) {
	if slot < 64 {
		*s |= 1 << slot
	}
}

// Has reports whether a slot is bound.
func (s SlotSet) Has(slot uint32) bool {
	return slot < 64 && s&(1<<slot) != 0
}

// Clear empties the set.
func (s *SlotSet) Clear() { *s = 0 }

// DynamicOffsets checks a SetBindGroup's dynamic offsets against the
// layout's declared dynamic-binding count and the device's uniform-offset
// alignment. An alignment of 0 disables the alignment check.
func DynamicOffsets(requiredCount int, offsets []uint32, alignment uint32, setIndex uint32) error {
	if len(offsets) != requiredCount {
		return fmt.Errorf("%w: bind group set %d declares %d dynamic bindings but %d offsets were provided",
			gpucore.ErrValidation, setIndex, requiredCount, len(offsets))
	}
	if alignment == 0 {
		return nil
	}
	for i, off := range offsets {
		if off%alignment != 0 {
			return fmt.Errorf("%w: dynamic offset %d at index %d is not a multiple of the required alignment %d",
				gpucore.ErrValidation, off, i, alignment)
		}
	}
	return nil
}

// InstanceRange checks that a draw command's range is well formed.
func InstanceRange(commandName string, r gpucore.Range) error {
	if r.Start > r.End {
		return fmt.Errorf("%w: %s range start %d exceeds end %d",
			gpucore.ErrValidation, commandName, r.Start, r.End)
	}
	return nil
}

// InstanceBindings checks that every vertex-buffer slot the pipeline
// declares per-instance has been bound in the current pass. It fails on
// the first unbound slot.
func InstanceBindings(pipelineLabel string, perInstance []bool, bound SlotSet) error {
	for slot, needed := range perInstance {
		if needed && !bound.Has(uint32(slot)) {
			return fmt.Errorf("%w: pipeline %q requires a per-instance buffer in vertex slot %d, which was never bound in this pass",
				gpucore.ErrValidation, pipelineLabel, slot)
		}
	}
	return nil
}

// SampleCount checks that n is a supported MSAA sample count.
func SampleCount(n uint32) error {
	switch n {
	case 1, 2, 4, 8:
		return nil
	default:
		return fmt.Errorf("%w: sample count %d is not supported (want 1, 2, 4 or 8)",
			gpucore.ErrValidation, n)
	}
}

// AlignUp rounds value up to the next multiple of align. A zero align
// returns value unchanged.
func AlignUp(value, align uint64) uint64 {
	if align == 0 {
		return value
	}
	rem := value % align
	if rem == 0 {
		return value
	}
	return value + align - rem
}
