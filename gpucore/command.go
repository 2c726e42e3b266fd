// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucore

import "fmt"

// CommandKind discriminates the render command variants.
type CommandKind uint32

// Command kinds.
const (
	KindSetViewports CommandKind = iota
	KindSetScissors
	KindSetPipeline
	KindBeginRenderPass
	KindEndRenderPass
	KindPushConstants
	KindBindVertexBuffer
	KindBindIndexBuffer
	KindDraw
	KindDrawIndexed
	KindSetBindGroup
)

// String returns the command name as used in validation messages.
func (k CommandKind) String() string {
	switch k {
	case KindSetViewports:
		return "SetViewports"
	case KindSetScissors:
		return "SetScissors"
	case KindSetPipeline:
		return "SetPipeline"
	case KindBeginRenderPass:
		return "BeginRenderPass"
	case KindEndRenderPass:
		return "EndRenderPass"
	case KindPushConstants:
		return "PushConstants"
	case KindBindVertexBuffer:
		return "BindVertexBuffer"
	case KindBindIndexBuffer:
		return "BindIndexBuffer"
	case KindDraw:
		return "Draw"
	case KindDrawIndexed:
		return "DrawIndexed"
	case KindSetBindGroup:
		return "SetBindGroup"
	default:
		return fmt.Sprintf("CommandKind(%d)", uint32(k))
	}
}

// Command is one per-frame render instruction. The variant set is closed:
// the interpreter rejects anything it does not know.
//
// Commands are plain values referencing attached resources by ID; they
// hold no live GPU objects and may be rebuilt every frame.
type Command interface {
	Kind() CommandKind
	String() string
}

// SetViewports sets one or more viewports starting at a slot index.
type SetViewports struct {
	StartAt   uint32
	Viewports []Viewport
}

// SetScissors sets one or more scissor rectangles starting at a slot
// index. The scissor rectangle reuses the Viewport shape; the depth
// fields are ignored.
type SetScissors struct {
	StartAt   uint32
	Viewports []Viewport
}

// SetPipeline binds a pipeline for subsequent draws in the open pass.
type SetPipeline struct {
	Pipeline ID
}

// BeginRenderPass opens the render pass identified by RenderPass and sets
// its initial viewport.
type BeginRenderPass struct {
	RenderPass ID
	Viewport   Viewport
}

// EndRenderPass closes the open pass.
type EndRenderPass struct{}

// PushConstants updates a pipeline's push-constant block for subsequent
// draws.
type PushConstants struct {
	Pipeline ID
	Stage    ShaderStage
	Offset   uint32
	Data     []uint32
}

// BindVertexBuffer binds the buffer declared at the pipeline's vertex
// slot. The buffer itself was named in the pipeline descriptor; the
// command selects which declared slot becomes live.
type BindVertexBuffer struct {
	Pipeline ID
	Slot     uint32
}

// BindIndexBuffer binds an index buffer for DrawIndexed.
type BindIndexBuffer struct {
	Buffer ID
	Format IndexFormat
}

// Draw draws a vertex range for an instance range.
type Draw struct {
	Vertices  Range
	Instances Range
}

// DrawIndexed draws an index range with a base-vertex offset for an
// instance range.
type DrawIndexed struct {
	Indices    Range
	BaseVertex int32
	Instances  Range
}

// SetBindGroup binds a bind group at a set index, supplying one dynamic
// offset per dynamic binding declared in the group's layout.
type SetBindGroup struct {
	Set            uint32
	Group          ID
	DynamicOffsets []uint32
}

// Kind implementations.

func (SetViewports) Kind() CommandKind     { return KindSetViewports }
func (SetScissors) Kind() CommandKind      { return KindSetScissors }
func (SetPipeline) Kind() CommandKind      { return KindSetPipeline }
func (BeginRenderPass) Kind() CommandKind  { return KindBeginRenderPass }
func (EndRenderPass) Kind() CommandKind    { return KindEndRenderPass }
func (PushConstants) Kind() CommandKind    { return KindPushConstants }
func (BindVertexBuffer) Kind() CommandKind { return KindBindVertexBuffer }
func (BindIndexBuffer) Kind() CommandKind  { return KindBindIndexBuffer }
func (Draw) Kind() CommandKind             { return KindDraw }
func (DrawIndexed) Kind() CommandKind      { return KindDrawIndexed }
func (SetBindGroup) Kind() CommandKind     { return KindSetBindGroup }

// String implementations. These appear in validation errors, so they name
// the referenced resources.

func (c SetViewports) String() string {
	return fmt.Sprintf("SetViewports(start=%d, n=%d)", c.StartAt, len(c.Viewports))
}

func (c SetScissors) String() string {
	return fmt.Sprintf("SetScissors(start=%d, n=%d)", c.StartAt, len(c.Viewports))
}

func (c SetPipeline) String() string {
	return fmt.Sprintf("SetPipeline(%s)", c.Pipeline)
}

func (c BeginRenderPass) String() string {
	return fmt.Sprintf("BeginRenderPass(%s)", c.RenderPass)
}

func (EndRenderPass) String() string { return "EndRenderPass" }

func (c PushConstants) String() string {
	return fmt.Sprintf("PushConstants(%s, stage=%s, offset=%d, words=%d)",
		c.Pipeline, c.Stage, c.Offset, len(c.Data))
}

func (c BindVertexBuffer) String() string {
	return fmt.Sprintf("BindVertexBuffer(%s, slot=%d)", c.Pipeline, c.Slot)
}

func (c BindIndexBuffer) String() string {
	return fmt.Sprintf("BindIndexBuffer(%s, %s)", c.Buffer, c.Format)
}

func (c Draw) String() string {
	return fmt.Sprintf("Draw(vertices=%d..%d, instances=%d..%d)",
		c.Vertices.Start, c.Vertices.End, c.Instances.Start, c.Instances.End)
}

func (c DrawIndexed) String() string {
	return fmt.Sprintf("DrawIndexed(indices=%d..%d, base=%d, instances=%d..%d)",
		c.Indices.Start, c.Indices.End, c.BaseVertex, c.Instances.Start, c.Instances.End)
}

func (c SetBindGroup) String() string {
	return fmt.Sprintf("SetBindGroup(set=%d, %s, offsets=%d)", c.Set, c.Group, len(c.DynamicOffsets))
}
