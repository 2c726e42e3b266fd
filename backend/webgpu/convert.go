// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package webgpu

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gogpu/flare/gpucore"
)

// toWGPUTextureFormat maps a gpucore texture format onto the runtime's.
func toWGPUTextureFormat(f gpucore.TextureFormat) wgpu.TextureFormat {
	switch f {
	case gpucore.TextureFormatRGBA8Unorm:
		return wgpu.TextureFormatRGBA8Unorm
	case gpucore.TextureFormatBGRA8Unorm:
		return wgpu.TextureFormatBGRA8Unorm
	case gpucore.TextureFormatDepth32Float:
		return wgpu.TextureFormatDepth32Float
	case gpucore.TextureFormatDepth24PlusStencil8:
		return wgpu.TextureFormatDepth24PlusStencil8
	default:
		return wgpu.TextureFormatBGRA8Unorm
	}
}

// fromWGPUTextureFormat maps a runtime format back into gpucore terms.
// Unknown formats report Undefined; the engine then treats the surface
// format as opaque.
func fromWGPUTextureFormat(f wgpu.TextureFormat) gpucore.TextureFormat {
	switch f {
	case wgpu.TextureFormatRGBA8Unorm:
		return gpucore.TextureFormatRGBA8Unorm
	case wgpu.TextureFormatBGRA8Unorm:
		return gpucore.TextureFormatBGRA8Unorm
	case wgpu.TextureFormatDepth32Float:
		return gpucore.TextureFormatDepth32Float
	case wgpu.TextureFormatDepth24PlusStencil8:
		return gpucore.TextureFormatDepth24PlusStencil8
	default:
		return gpucore.TextureFormatUndefined
	}
}

// toWGPUTextureUsage maps a usage mask.
func toWGPUTextureUsage(u gpucore.TextureUsage) wgpu.TextureUsage {
	var out wgpu.TextureUsage
	if u&gpucore.TextureUsageCopySrc != 0 {
		out |= wgpu.TextureUsageCopySrc
	}
	if u&gpucore.TextureUsageCopyDst != 0 {
		out |= wgpu.TextureUsageCopyDst
	}
	if u&gpucore.TextureUsageTextureBinding != 0 {
		out |= wgpu.TextureUsageTextureBinding
	}
	if u&gpucore.TextureUsageRenderAttachment != 0 {
		out |= wgpu.TextureUsageRenderAttachment
	}
	return out
}

// toWGPUBufferUsage maps a usage mask.
func toWGPUBufferUsage(u gpucore.BufferUsage) wgpu.BufferUsage {
	var out wgpu.BufferUsage
	if u&gpucore.BufferUsageMapRead != 0 {
		out |= wgpu.BufferUsageMapRead
	}
	if u&gpucore.BufferUsageMapWrite != 0 {
		out |= wgpu.BufferUsageMapWrite
	}
	if u&gpucore.BufferUsageCopySrc != 0 {
		out |= wgpu.BufferUsageCopySrc
	}
	if u&gpucore.BufferUsageCopyDst != 0 {
		out |= wgpu.BufferUsageCopyDst
	}
	if u&gpucore.BufferUsageIndex != 0 {
		out |= wgpu.BufferUsageIndex
	}
	if u&gpucore.BufferUsageVertex != 0 {
		out |= wgpu.BufferUsageVertex
	}
	if u&gpucore.BufferUsageUniform != 0 {
		out |= wgpu.BufferUsageUniform
	}
	if u&gpucore.BufferUsageStorage != 0 {
		out |= wgpu.BufferUsageStorage
	}
	return out
}

// toWGPUShaderStage maps a stage mask.
func toWGPUShaderStage(s gpucore.ShaderStage) wgpu.ShaderStage {
	var out wgpu.ShaderStage
	if s&gpucore.ShaderStageVertex != 0 {
		out |= wgpu.ShaderStageVertex
	}
	if s&gpucore.ShaderStageFragment != 0 {
		out |= wgpu.ShaderStageFragment
	}
	return out
}

// toWGPUVertexFormat maps a vertex attribute format.
func toWGPUVertexFormat(f gpucore.VertexFormat) wgpu.VertexFormat {
	switch f {
	case gpucore.VertexFormatFloat32:
		return wgpu.VertexFormatFloat32
	case gpucore.VertexFormatFloat32x2:
		return wgpu.VertexFormatFloat32x2
	case gpucore.VertexFormatFloat32x3:
		return wgpu.VertexFormatFloat32x3
	case gpucore.VertexFormatFloat32x4:
		return wgpu.VertexFormatFloat32x4
	case gpucore.VertexFormatUint32:
		return wgpu.VertexFormatUint32
	default:
		return wgpu.VertexFormatFloat32
	}
}

// toWGPUIndexFormat maps an index format.
func toWGPUIndexFormat(f gpucore.IndexFormat) wgpu.IndexFormat {
	if f == gpucore.IndexFormatUint32 {
		return wgpu.IndexFormatUint32
	}
	return wgpu.IndexFormatUint16
}

// toWGPULoadOp maps a load operation.
func toWGPULoadOp(op gpucore.LoadOp) wgpu.LoadOp {
	if op == gpucore.LoadOpLoad {
		return wgpu.LoadOpLoad
	}
	return wgpu.LoadOpClear
}

// toWGPUStoreOp maps a store operation.
func toWGPUStoreOp(op gpucore.StoreOp) wgpu.StoreOp {
	if op == gpucore.StoreOpDiscard {
		return wgpu.StoreOpDiscard
	}
	return wgpu.StoreOpStore
}

// toWGPUPresentMode maps a present mode. Auto modes are resolved by the
// surface manager before they reach the backend.
func toWGPUPresentMode(m gpucore.PresentMode) wgpu.PresentMode {
	switch m {
	case gpucore.PresentModeImmediate:
		return wgpu.PresentModeImmediate
	case gpucore.PresentModeMailbox:
		return wgpu.PresentModeMailbox
	case gpucore.PresentModeFifoRelaxed:
		return wgpu.PresentModeFifoRelaxed
	default:
		return wgpu.PresentModeFifo
	}
}

// vertexLayouts maps the declared vertex-buffer slots onto wgpu layouts.
func vertexLayouts(slots []gpucore.VertexBufferSlot) []wgpu.VertexBufferLayout {
	out := make([]wgpu.VertexBufferLayout, len(slots))
	for i, slot := range slots {
		step := wgpu.VertexStepModeVertex
		if slot.PerInstance {
			step = wgpu.VertexStepModeInstance
		}
		attrs := make([]wgpu.VertexAttribute, len(slot.Attributes))
		for j, a := range slot.Attributes {
			attrs[j] = wgpu.VertexAttribute{
				Format:         toWGPUVertexFormat(a.Format),
				Offset:         a.Offset,
				ShaderLocation: a.ShaderLocation,
			}
		}
		out[i] = wgpu.VertexBufferLayout{
			ArrayStride: slot.Stride,
			StepMode:    step,
			Attributes:  attrs,
		}
	}
	return out
}
