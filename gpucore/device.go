// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucore

import (
	"image"
	"time"
)

// TextureView is an opaque view of a texture subresource. Views are what
// render passes attach to; backends unwrap them to their native handle.
type TextureView interface {
	// Label returns the debug label the view was created with.
	Label() string
}

// Texture is a GPU texture owned by whoever created it.
type Texture interface {
	// Label returns the debug label.
	Label() string

	// Format returns the texture format.
	Format() TextureFormat

	// View returns the default whole-texture view.
	View() (TextureView, error)

	// Destroy releases the texture and its default view.
	Destroy()
}

// Buffer is a GPU buffer owned by whoever created it.
type Buffer interface {
	Label() string
	Size() uint64
	Destroy()
}

// Pipeline is a compiled render pipeline.
type Pipeline interface {
	Label() string
	Destroy()
}

// BindGroup is a bundle of resource bindings for one set index.
type BindGroup interface {
	Label() string
	Destroy()
}

// Device is the graphics-device capability the engine consumes. It is
// treated as a black box: the engine creates resources through it during
// setup and encodes frames through it per frame, nothing more.
//
// Implementations are in backend/native (gogpu/wgpu hal) and
// backend/webgpu (cogentcore/webgpu); tests use in-memory mocks.
type Device interface {
	// Info returns adapter info and the limits validation needs.
	Info() DeviceInfo

	CreateTexture(desc TextureDesc) (Texture, error)
	CreateBuffer(desc BufferDesc) (Buffer, error)
	CreateRenderPipeline(desc PipelineDesc) (Pipeline, error)
	CreateBindGroup(bindings BindGroupBindings) (BindGroup, error)

	// WriteBuffer schedules a buffer upload. Uploads are ordered before
	// the next submitted frame.
	WriteBuffer(buf Buffer, offset uint64, data []byte) error

	// NewEncoder starts recording one frame's commands.
	NewEncoder(label string) (CommandEncoder, error)

	// Close releases the device and everything it still owns.
	Close() error
}

// CommandEncoder records one frame. Exactly one of Submit or Discard must
// be called.
type CommandEncoder interface {
	// BeginRenderPass opens a device-level pass scope.
	BeginRenderPass(enc PassEncoding) (RenderPassEncoder, error)

	// Submit finishes recording and submits to the queue, blocking until
	// the device has accepted the work.
	Submit() error

	// Discard abandons the recording without submitting.
	Discard()
}

// RenderPassEncoder records commands inside an open pass scope. It is
// single-threaded and must be closed with End before the parent encoder
// can submit.
type RenderPassEncoder interface {
	SetViewport(v Viewport)
	SetScissor(x, y, width, height uint32)
	SetPipeline(p Pipeline) error
	SetBindGroup(set uint32, g BindGroup, dynamicOffsets []uint32) error
	SetVertexBuffer(slot uint32, buf Buffer) error
	SetIndexBuffer(buf Buffer, format IndexFormat) error

	// SetPushConstants updates stage-scoped immediate data. Backends
	// without push-constant support return an error wrapping
	// ErrUnsupported.
	SetPushConstants(stage ShaderStage, offset uint32, data []uint32) error

	Draw(vertices, instances Range) error
	DrawIndexed(indices Range, baseVertex int32, instances Range) error
	End() error
}

// SurfaceFrame is one acquired frame texture. Exactly one of Present or
// Discard must be called; both consume the frame.
type SurfaceFrame interface {
	// View returns the frame's texture view, valid until the frame is
	// consumed.
	View() TextureView

	// Present shows the frame.
	Present() error

	// Discard releases the frame without presenting it.
	Discard()
}

// Surface is the presentation capability the engine consumes. The
// surface.Manager owns the configuration state machine on top of it.
type Surface interface {
	// PreferredFormat returns the format the surface prefers to be
	// configured with.
	PreferredFormat() TextureFormat

	// Configure applies a full configuration. Implementations may assume
	// the manager has already rejected zero sizes.
	Configure(cfg SurfaceConfig) error

	// Acquire blocks until a frame texture is ready or the timeout
	// elapses. Errors are classified by surface.Classify.
	Acquire(timeout time.Duration) (SurfaceFrame, error)
}

// Capturer is an optional capability of surfaces (or devices) that can
// read back the last presented frame. Offscreen surfaces implement it;
// windowed swapchains generally cannot.
type Capturer interface {
	// CaptureFrame copies the last presented frame into an RGBA image.
	CaptureFrame() (*image.RGBA, error)
}
