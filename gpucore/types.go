// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucore

import "fmt"

// ID is an opaque handle to a GPU-side object owned by a resource table.
//
// An ID packs a slot index in the low 32 bits and a generation counter in
// the high 32 bits. The zero value is never a valid ID, so a forgotten
// handle fails lookup instead of silently aliasing slot 0.
type ID uint64

// MakeID builds an ID from a slot index and a generation counter.
func MakeID(slot, generation uint32) ID {
	return ID(uint64(generation)<<32 | uint64(slot))
}

// Slot returns the slot index encoded in the ID.
func (id ID) Slot() uint32 { return uint32(id & 0xFFFFFFFF) }

// Generation returns the generation counter encoded in the ID.
func (id ID) Generation() uint32 { return uint32(id >> 32) }

// IsZero reports whether the ID is the invalid zero handle.
func (id ID) IsZero() bool { return id == 0 }

// String returns "slot@generation" for diagnostics.
func (id ID) String() string {
	return fmt.Sprintf("%d@%d", id.Slot(), id.Generation())
}

// Viewport describes a viewport (or scissor) rectangle in pixel
// coordinates with the origin at the top-left corner.
type Viewport struct {
	X        float32
	Y        float32
	Width    float32
	Height   float32
	MinDepth float32
	MaxDepth float32
}

// Range is a half-open [Start, End) range of vertices, indices or
// instances.
type Range struct {
	Start uint32
	End   uint32
}

// Count returns the number of elements in the range, or 0 when the range
// is inverted.
func (r Range) Count() uint32 {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start
}

// Extent is a 2D size in pixels.
type Extent struct {
	Width  uint32
	Height uint32
}

// IsZero reports whether either dimension is zero.
func (e Extent) IsZero() bool { return e.Width == 0 || e.Height == 0 }

// IndexFormat specifies the element type of an index buffer.
type IndexFormat uint32

// Index formats.
const (
	// IndexFormatUint16 uses 16-bit unsigned indices.
	IndexFormatUint16 IndexFormat = iota

	// IndexFormatUint32 uses 32-bit unsigned indices.
	IndexFormatUint32
)

// String returns the string representation of the index format.
func (f IndexFormat) String() string {
	switch f {
	case IndexFormatUint16:
		return "Uint16"
	case IndexFormatUint32:
		return "Uint32"
	default:
		return fmt.Sprintf("IndexFormat(%d)", uint32(f))
	}
}

// PresentMode controls how frames are delivered to the display.
type PresentMode uint32

// Present modes.
const (
	// PresentModeFifo presents in submission order, synchronized to the
	// display refresh (classic vsync). Always supported.
	PresentModeFifo PresentMode = iota

	// PresentModeFifoRelaxed is Fifo that tears instead of waiting when a
	// frame misses the refresh deadline.
	PresentModeFifoRelaxed

	// PresentModeImmediate presents without waiting for the refresh.
	PresentModeImmediate

	// PresentModeMailbox replaces the queued frame, keeping latency low
	// without tearing.
	PresentModeMailbox

	// PresentModeAutoVsync resolves to the best supported synchronized
	// mode at configure time.
	PresentModeAutoVsync

	// PresentModeAutoNoVsync resolves to the best supported unsynchronized
	// mode at configure time.
	PresentModeAutoNoVsync
)

// String returns the string representation of the present mode.
func (m PresentMode) String() string {
	switch m {
	case PresentModeFifo:
		return "Fifo"
	case PresentModeFifoRelaxed:
		return "FifoRelaxed"
	case PresentModeImmediate:
		return "Immediate"
	case PresentModeMailbox:
		return "Mailbox"
	case PresentModeAutoVsync:
		return "AutoVsync"
	case PresentModeAutoNoVsync:
		return "AutoNoVsync"
	default:
		return fmt.Sprintf("PresentMode(%d)", uint32(m))
	}
}

// TextureFormat specifies the format of texture data.
type TextureFormat uint32

// Texture formats.
const (
	// TextureFormatUndefined means no format; used for "no depth buffer".
	TextureFormatUndefined TextureFormat = iota

	// TextureFormatRGBA8Unorm is 8-bit RGBA, normalized unsigned integer.
	TextureFormatRGBA8Unorm

	// TextureFormatBGRA8Unorm is 8-bit BGRA, normalized unsigned integer.
	// The common swapchain format.
	TextureFormatBGRA8Unorm

	// TextureFormatDepth32Float is a 32-bit floating point depth format.
	TextureFormatDepth32Float

	// TextureFormatDepth24PlusStencil8 is a combined depth/stencil format.
	TextureFormatDepth24PlusStencil8
)

// String returns the string representation of the texture format.
func (f TextureFormat) String() string {
	switch f {
	case TextureFormatUndefined:
		return "Undefined"
	case TextureFormatRGBA8Unorm:
		return "RGBA8Unorm"
	case TextureFormatBGRA8Unorm:
		return "BGRA8Unorm"
	case TextureFormatDepth32Float:
		return "Depth32Float"
	case TextureFormatDepth24PlusStencil8:
		return "Depth24PlusStencil8"
	default:
		return fmt.Sprintf("TextureFormat(%d)", uint32(f))
	}
}

// IsDepth reports whether the format carries a depth aspect.
func (f TextureFormat) IsDepth() bool {
	return f == TextureFormatDepth32Float || f == TextureFormatDepth24PlusStencil8
}

// TextureUsage is a bitmask specifying how a texture will be used.
type TextureUsage uint32

// Texture usage flags.
const (
	// TextureUsageCopySrc indicates the texture can be a copy source.
	TextureUsageCopySrc TextureUsage = 1 << 0

	// TextureUsageCopyDst indicates the texture can be a copy destination.
	TextureUsageCopyDst TextureUsage = 1 << 1

	// TextureUsageTextureBinding indicates the texture can be sampled.
	TextureUsageTextureBinding TextureUsage = 1 << 2

	// TextureUsageRenderAttachment indicates the texture can be a render
	// target.
	TextureUsageRenderAttachment TextureUsage = 1 << 3
)

// BufferUsage is a bitmask specifying how a buffer will be used.
type BufferUsage uint32

// Buffer usage flags.
const (
	// BufferUsageMapRead indicates the buffer can be mapped for reading.
	BufferUsageMapRead BufferUsage = 1 << 0

	// BufferUsageMapWrite indicates the buffer can be mapped for writing.
	BufferUsageMapWrite BufferUsage = 1 << 1

	// BufferUsageCopySrc indicates the buffer can be a copy source.
	BufferUsageCopySrc BufferUsage = 1 << 2

	// BufferUsageCopyDst indicates the buffer can be a copy destination.
	BufferUsageCopyDst BufferUsage = 1 << 3

	// BufferUsageIndex indicates the buffer can be an index buffer.
	BufferUsageIndex BufferUsage = 1 << 4

	// BufferUsageVertex indicates the buffer can be a vertex buffer.
	BufferUsageVertex BufferUsage = 1 << 5

	// BufferUsageUniform indicates the buffer can be a uniform buffer.
	BufferUsageUniform BufferUsage = 1 << 6

	// BufferUsageStorage indicates the buffer can be a storage buffer.
	BufferUsageStorage BufferUsage = 1 << 7
)

// ShaderStage is a bitmask of pipeline stages.
type ShaderStage uint32

// Shader stages.
const (
	// ShaderStageVertex is the vertex stage.
	ShaderStageVertex ShaderStage = 1 << 0

	// ShaderStageFragment is the fragment stage.
	ShaderStageFragment ShaderStage = 1 << 1
)

// String returns the string representation of the stage mask.
func (s ShaderStage) String() string {
	switch s {
	case ShaderStageVertex:
		return "Vertex"
	case ShaderStageFragment:
		return "Fragment"
	case ShaderStageVertex | ShaderStageFragment:
		return "Vertex|Fragment"
	default:
		return fmt.Sprintf("ShaderStage(%#x)", uint32(s))
	}
}

// LoadOp specifies how an attachment is initialized at pass begin.
type LoadOp uint32

// Load operations.
const (
	// LoadOpClear clears the attachment to the clear value.
	LoadOpClear LoadOp = iota

	// LoadOpLoad preserves the existing attachment contents.
	LoadOpLoad
)

// StoreOp specifies what happens to an attachment at pass end.
type StoreOp uint32

// Store operations.
const (
	// StoreOpStore writes the pass results to the attachment.
	StoreOpStore StoreOp = iota

	// StoreOpDiscard drops the pass results (used for MSAA attachments
	// whose resolved output is all that matters).
	StoreOpDiscard
)

// Color is an RGBA color with float64 channels in [0, 1], matching the
// WebGPU clear-value convention.
type Color struct {
	R float64
	G float64
	B float64
	A float64
}

// VertexFormat specifies the format of a single vertex attribute.
type VertexFormat uint32

// Vertex attribute formats.
const (
	// VertexFormatFloat32 is one 32-bit float.
	VertexFormatFloat32 VertexFormat = iota + 1

	// VertexFormatFloat32x2 is two 32-bit floats.
	VertexFormatFloat32x2

	// VertexFormatFloat32x3 is three 32-bit floats.
	VertexFormatFloat32x3

	// VertexFormatFloat32x4 is four 32-bit floats.
	VertexFormatFloat32x4

	// VertexFormatUint32 is one 32-bit unsigned integer.
	VertexFormatUint32
)

// SurfaceConfig is the live configuration of a presentation surface.
// It is replaced wholesale on every reconfigure.
type SurfaceConfig struct {
	Width       uint32
	Height      uint32
	Format      TextureFormat
	PresentMode PresentMode
	Usage       TextureUsage
}

// DeviceInfo describes the opened device and the limits the engine needs
// for validation.
type DeviceInfo struct {
	// Name is the adapter name as reported by the driver.
	Name string

	// Backend names the implementation ("native", "webgpu", "mock", ...).
	Backend string

	// MaxTextureDimension2D is the largest supported 2D texture edge.
	MaxTextureDimension2D uint32

	// MaxBufferSize is the largest supported buffer in bytes.
	MaxBufferSize uint64

	// MinUniformBufferOffsetAlignment is the required alignment for
	// dynamic uniform-buffer offsets.
	MinUniformBufferOffsetAlignment uint32
}
