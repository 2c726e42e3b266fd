// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucore

// RenderPassDesc describes the attachments and load/store behavior of one
// drawing scope. Render passes are attached to the engine up front and
// referenced from BeginRenderPass commands by ID; the device-level pass is
// only built per frame, when the interpreter knows the surface view.
type RenderPassDesc struct {
	// Label is an optional debug name.
	Label string

	// SampleCount is the MSAA sample count; 1, 2, 4 or 8. A count of 1
	// renders directly into the surface with no resolve step.
	SampleCount uint32

	// ColorLoad and ColorStore control the color attachment.
	ColorLoad  LoadOp
	ColorStore StoreOp

	// ClearColor is used when ColorLoad is LoadOpClear.
	ClearColor Color

	// DepthFormat enables a depth attachment when not Undefined.
	DepthFormat TextureFormat

	// DepthClear is the depth clear value; typically 1.0.
	DepthClear float32
}

// VertexBufferSlot describes one vertex-buffer slot of a pipeline.
type VertexBufferSlot struct {
	// Stride is the byte distance between consecutive elements.
	Stride uint64

	// PerInstance steps the slot once per instance instead of per vertex.
	PerInstance bool

	// Attributes are the shader-visible attributes read from this slot.
	Attributes []VertexAttribute

	// Buffer names the attached buffer bound at this slot by a
	// BindVertexBuffer command. Resolved by the engine, ignored by
	// backends.
	Buffer ID
}

// VertexAttribute describes a single vertex attribute.
type VertexAttribute struct {
	Format         VertexFormat
	Offset         uint64
	ShaderLocation uint32
}

// BindGroupLayoutEntry describes one binding in a bind-group layout.
type BindGroupLayoutEntry struct {
	// Binding is the binding index within the group.
	Binding uint32

	// Visibility is the stage mask that can access the binding.
	Visibility ShaderStage

	// Uniform selects a uniform buffer binding; otherwise storage.
	Uniform bool

	// HasDynamicOffset marks the binding as taking a per-draw dynamic
	// offset from SetBindGroup.
	HasDynamicOffset bool

	// MinBindingSize is the minimum bound range in bytes; 0 means no
	// minimum.
	MinBindingSize uint64
}

// BindGroupLayoutDesc describes a bind-group layout.
type BindGroupLayoutDesc struct {
	Label   string
	Entries []BindGroupLayoutEntry
}

// DynamicBindingCount returns the number of entries declared with dynamic
// offsets. SetBindGroup must supply exactly this many offsets.
func (d BindGroupLayoutDesc) DynamicBindingCount() int {
	n := 0
	for _, e := range d.Entries {
		if e.HasDynamicOffset {
			n++
		}
	}
	return n
}

// BindGroupEntry binds one attached buffer into a bind group. The Buffer
// ID is resolved by the engine before the backend sees the group.
type BindGroupEntry struct {
	Binding uint32
	Buffer  ID
	Offset  uint64

	// Size is the bound range in bytes; 0 binds the whole buffer from
	// Offset.
	Size uint64
}

// BindGroupDesc describes a bind group at the application boundary.
type BindGroupDesc struct {
	Label   string
	Layout  BindGroupLayoutDesc
	Entries []BindGroupEntry
}

// BufferBinding is a device-level binding with the buffer already
// resolved to a live object.
type BufferBinding struct {
	Binding uint32
	Buffer  Buffer
	Offset  uint64
	Size    uint64
}

// BindGroupBindings is the device-level form of a bind group, produced by
// the engine from a BindGroupDesc.
type BindGroupBindings struct {
	Label    string
	Layout   BindGroupLayoutDesc
	Bindings []BufferBinding
}

// PushConstantRange declares the push-constant space a pipeline uses.
type PushConstantRange struct {
	Stages ShaderStage

	// Size is the push-constant block size in bytes.
	Size uint32
}

// PipelineDesc describes a render pipeline.
type PipelineDesc struct {
	// Label is an optional debug name, also used in validation messages.
	Label string

	// WGSL is the shader source; backends translate it to their native
	// form (SPIR-V for the hal backend).
	WGSL string

	// VertexEntry and FragmentEntry are the shader entry points.
	VertexEntry   string
	FragmentEntry string

	// VertexBuffers declares the vertex-buffer slots, in slot order.
	VertexBuffers []VertexBufferSlot

	// BindGroups declares the bind-group layouts, in set order.
	BindGroups []BindGroupLayoutDesc

	// PushConstants declares the push-constant range, if any.
	PushConstants *PushConstantRange

	// ColorFormat is the color target format; defaults to the surface
	// format when Undefined.
	ColorFormat TextureFormat

	// DepthFormat enables depth testing against a matching pass
	// attachment when not Undefined.
	DepthFormat TextureFormat

	// SampleCount must match the render pass the pipeline is used in.
	SampleCount uint32
}

// PerInstanceSlots returns the per-instance mask of the declared
// vertex-buffer slots, indexed by slot.
func (d PipelineDesc) PerInstanceSlots() []bool {
	mask := make([]bool, len(d.VertexBuffers))
	for i, vb := range d.VertexBuffers {
		mask[i] = vb.PerInstance
	}
	return mask
}

// BufferDesc describes a GPU buffer.
type BufferDesc struct {
	Label string
	Size  uint64
	Usage BufferUsage
}

// TextureDesc describes a GPU texture.
type TextureDesc struct {
	Label       string
	Width       uint32
	Height      uint32
	Format      TextureFormat
	Usage       TextureUsage
	SampleCount uint32
}

// ColorAttachment is one color target of a device-level render pass.
type ColorAttachment struct {
	// View is the texture view rendered into.
	View TextureView

	// ResolveTarget receives the resolved single-sample output when View
	// is multi-sampled; nil otherwise.
	ResolveTarget TextureView

	Load  LoadOp
	Store StoreOp
	Clear Color
}

// DepthStencilAttachment is the optional depth target of a pass.
type DepthStencilAttachment struct {
	View       TextureView
	DepthLoad  LoadOp
	DepthStore StoreOp
	DepthClear float32
}

// PassEncoding is everything a backend needs to open a device-level
// render pass.
type PassEncoding struct {
	Label        string
	Color        []ColorAttachment
	DepthStencil *DepthStencilAttachment
}
