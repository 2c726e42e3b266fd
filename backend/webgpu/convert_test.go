// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package webgpu

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gogpu/flare/gpucore"
)

func TestTextureFormatRoundTrip(t *testing.T) {
	formats := []gpucore.TextureFormat{
		gpucore.TextureFormatRGBA8Unorm,
		gpucore.TextureFormatBGRA8Unorm,
		gpucore.TextureFormatDepth32Float,
		gpucore.TextureFormatDepth24PlusStencil8,
	}
	for _, f := range formats {
		if got := fromWGPUTextureFormat(toWGPUTextureFormat(f)); got != f {
			t.Errorf("round trip %v = %v", f, got)
		}
	}
}

func TestUnknownFormatReportsUndefined(t *testing.T) {
	if got := fromWGPUTextureFormat(wgpu.TextureFormatR8Unorm); got != gpucore.TextureFormatUndefined {
		t.Errorf("fromWGPUTextureFormat(R8Unorm) = %v, want Undefined", got)
	}
}

func TestPresentModeMapping(t *testing.T) {
	tests := []struct {
		in   gpucore.PresentMode
		want wgpu.PresentMode
	}{
		{gpucore.PresentModeFifo, wgpu.PresentModeFifo},
		{gpucore.PresentModeFifoRelaxed, wgpu.PresentModeFifoRelaxed},
		{gpucore.PresentModeImmediate, wgpu.PresentModeImmediate},
		{gpucore.PresentModeMailbox, wgpu.PresentModeMailbox},
		// Auto modes are resolved by the surface manager; the backend
		// falls back to Fifo if one leaks through.
		{gpucore.PresentModeAutoVsync, wgpu.PresentModeFifo},
	}
	for _, tt := range tests {
		if got := toWGPUPresentMode(tt.in); got != tt.want {
			t.Errorf("toWGPUPresentMode(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestVertexLayoutStepModes(t *testing.T) {
	layouts := vertexLayouts([]gpucore.VertexBufferSlot{
		{Stride: 8, Attributes: []gpucore.VertexAttribute{{Format: gpucore.VertexFormatFloat32x2}}},
		{Stride: 4, PerInstance: true, Attributes: []gpucore.VertexAttribute{{Format: gpucore.VertexFormatUint32}}},
	})
	if layouts[0].StepMode != wgpu.VertexStepModeVertex {
		t.Errorf("slot 0 step = %v", layouts[0].StepMode)
	}
	if layouts[1].StepMode != wgpu.VertexStepModeInstance {
		t.Errorf("slot 1 step = %v", layouts[1].StepMode)
	}
}

func TestBufferUsageMapping(t *testing.T) {
	got := toWGPUBufferUsage(gpucore.BufferUsageUniform | gpucore.BufferUsageCopyDst)
	want := wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
	if got != want {
		t.Errorf("toWGPUBufferUsage = %v, want %v", got, want)
	}
}
