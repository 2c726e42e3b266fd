// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/flare/gpucore"
)

// toHALTextureFormat maps a gpucore texture format to its gputypes
// equivalent.
func toHALTextureFormat(f gpucore.TextureFormat) gputypes.TextureFormat {
	switch f {
	case gpucore.TextureFormatRGBA8Unorm:
		return gputypes.TextureFormatRGBA8Unorm
	case gpucore.TextureFormatBGRA8Unorm:
		return gputypes.TextureFormatBGRA8Unorm
	case gpucore.TextureFormatDepth32Float:
		return gputypes.TextureFormatDepth32Float
	case gpucore.TextureFormatDepth24PlusStencil8:
		return gputypes.TextureFormatDepth24PlusStencil8
	default:
		return gputypes.TextureFormatBGRA8Unorm
	}
}

// toHALTextureUsage maps a gpucore usage mask onto gputypes flags.
func toHALTextureUsage(u gpucore.TextureUsage) gputypes.TextureUsage {
	var out gputypes.TextureUsage
	if u&gpucore.TextureUsageCopySrc != 0 {
		out |= gputypes.TextureUsageCopySrc
	}
	if u&gpucore.TextureUsageCopyDst != 0 {
		out |= gputypes.TextureUsageCopyDst
	}
	if u&gpucore.TextureUsageTextureBinding != 0 {
		out |= gputypes.TextureUsageTextureBinding
	}
	if u&gpucore.TextureUsageRenderAttachment != 0 {
		out |= gputypes.TextureUsageRenderAttachment
	}
	return out
}

// toHALBufferUsage maps a gpucore usage mask onto gputypes flags.
func toHALBufferUsage(u gpucore.BufferUsage) gputypes.BufferUsage {
	var out gputypes.BufferUsage
	if u&gpucore.BufferUsageMapRead != 0 {
		out |= gputypes.BufferUsageMapRead
	}
	if u&gpucore.BufferUsageMapWrite != 0 {
		out |= gputypes.BufferUsageMapWrite
	}
	if u&gpucore.BufferUsageCopySrc != 0 {
		out |= gputypes.BufferUsageCopySrc
	}
	if u&gpucore.BufferUsageCopyDst != 0 {
		out |= gputypes.BufferUsageCopyDst
	}
	if u&gpucore.BufferUsageIndex != 0 {
		out |= gputypes.BufferUsageIndex
	}
	if u&gpucore.BufferUsageVertex != 0 {
		out |= gputypes.BufferUsageVertex
	}
	if u&gpucore.BufferUsageUniform != 0 {
		out |= gputypes.BufferUsageUniform
	}
	if u&gpucore.BufferUsageStorage != 0 {
		out |= gputypes.BufferUsageStorage
	}
	return out
}

// toHALShaderStage maps a gpucore stage mask onto gputypes flags.
func toHALShaderStage(s gpucore.ShaderStage) gputypes.ShaderStage {
	var out gputypes.ShaderStage
	if s&gpucore.ShaderStageVertex != 0 {
		out |= gputypes.ShaderStageVertex
	}
	if s&gpucore.ShaderStageFragment != 0 {
		out |= gputypes.ShaderStageFragment
	}
	return out
}

// toHALVertexFormat maps a gpucore vertex attribute format.
func toHALVertexFormat(f gpucore.VertexFormat) gputypes.VertexFormat {
	switch f {
	case gpucore.VertexFormatFloat32:
		return gputypes.VertexFormatFloat32
	case gpucore.VertexFormatFloat32x2:
		return gputypes.VertexFormatFloat32x2
	case gpucore.VertexFormatFloat32x3:
		return gputypes.VertexFormatFloat32x3
	case gpucore.VertexFormatFloat32x4:
		return gputypes.VertexFormatFloat32x4
	case gpucore.VertexFormatUint32:
		return gputypes.VertexFormatUint32
	default:
		return gputypes.VertexFormatFloat32
	}
}

// toHALIndexFormat maps a gpucore index format.
func toHALIndexFormat(f gpucore.IndexFormat) gputypes.IndexFormat {
	if f == gpucore.IndexFormatUint32 {
		return gputypes.IndexFormatUint32
	}
	return gputypes.IndexFormatUint16
}

// toHALLoadOp maps a load operation.
func toHALLoadOp(op gpucore.LoadOp) gputypes.LoadOp {
	if op == gpucore.LoadOpLoad {
		return gputypes.LoadOpLoad
	}
	return gputypes.LoadOpClear
}

// toHALStoreOp maps a store operation.
func toHALStoreOp(op gpucore.StoreOp) gputypes.StoreOp {
	if op == gpucore.StoreOpDiscard {
		return gputypes.StoreOpDiscard
	}
	return gputypes.StoreOpStore
}

// toHALColor maps a clear color.
func toHALColor(c gpucore.Color) gputypes.Color {
	return gputypes.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}
