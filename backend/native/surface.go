// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"fmt"
	"image"
	"sync"
	"time"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/flare/gpucore"
)

// copyPitchAlignment is the BytesPerRow alignment required by
// CopyTextureToBuffer (WebGPU and DX12 mandate 256).
const copyPitchAlignment = 256

// Surface is an offscreen presentation target: a color texture that
// frames render into. Present is a logical operation; the pixels stay on
// the GPU until CaptureFrame reads them back.
type Surface struct {
	mu        sync.Mutex
	dev       *Device
	cfg       gpucore.SurfaceConfig
	color     *texture
	presented bool
}

func newSurface(dev *Device) *Surface {
	return &Surface{dev: dev}
}

// NewOffscreenSurface creates an offscreen surface on an existing
// device, for hosts that wrap their own hal device with Wrap.
func NewOffscreenSurface(dev *Device) *Surface {
	return newSurface(dev)
}

// PreferredFormat returns the swapchain-style default format.
func (s *Surface) PreferredFormat() gpucore.TextureFormat {
	return gpucore.TextureFormatBGRA8Unorm
}

// Configure replaces the offscreen color texture. CopySrc usage is
// always added so the texture stays capturable.
func (s *Surface) Configure(cfg gpucore.SurfaceConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.color != nil {
		s.color.Destroy()
		s.color = nil
	}
	s.presented = false

	tex, err := s.dev.CreateTexture(gpucore.TextureDesc{
		Label:       "offscreen_color",
		Width:       cfg.Width,
		Height:      cfg.Height,
		Format:      cfg.Format,
		Usage:       cfg.Usage | gpucore.TextureUsageRenderAttachment | gpucore.TextureUsageCopySrc,
		SampleCount: 1,
	})
	if err != nil {
		return fmt.Errorf("native: configure surface: %w", err)
	}
	s.color = tex.(*texture)
	s.cfg = cfg
	return nil
}

// Acquire returns the offscreen frame. It never blocks; the timeout is
// accepted for interface symmetry.
func (s *Surface) Acquire(_ time.Duration) (gpucore.SurfaceFrame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.color == nil {
		return nil, fmt.Errorf("native: surface not configured: %w", gpucore.ErrSurfaceOutdated)
	}
	return &surfaceFrame{sur: s}, nil
}

// Release destroys the offscreen texture.
func (s *Surface) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.color != nil {
		s.color.Destroy()
		s.color = nil
	}
}

// surfaceFrame is one logical frame of the offscreen surface. The view
// aliases the persistent color texture.
type surfaceFrame struct {
	sur *Surface
}

func (f *surfaceFrame) View() gpucore.TextureView {
	return f.sur.color.view
}

func (f *surfaceFrame) Present() error {
	f.sur.mu.Lock()
	defer f.sur.mu.Unlock()
	f.sur.presented = true
	return nil
}

func (f *surfaceFrame) Discard() {}

// CaptureFrame copies the last presented frame into an RGBA image
// through an aligned staging buffer.
func (s *Surface) CaptureFrame() (*image.RGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.color == nil || !s.presented {
		return nil, fmt.Errorf("native: no presented frame to capture: %w", gpucore.ErrUnsupported)
	}
	if s.dev.dev == nil {
		return nil, fmt.Errorf("native: device closed: %w", gpucore.ErrDevice)
	}

	w, h := s.cfg.Width, s.cfg.Height
	bytesPerRow := w * 4
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(h)

	dev := s.dev
	encoder, err := dev.dev.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "capture_encoder",
	})
	if err != nil {
		return nil, fmt.Errorf("native: capture encoder: %v: %w", err, gpucore.ErrDevice)
	}
	if err := encoder.BeginEncoding("capture_readback"); err != nil {
		encoder.Destroy()
		return nil, fmt.Errorf("native: begin capture: %v: %w", err, gpucore.ErrDevice)
	}

	staging, err := dev.dev.CreateBuffer(&hal.BufferDescriptor{
		Label: "capture_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		encoder.Destroy()
		return nil, fmt.Errorf("native: capture staging buffer: %v: %w", err, gpucore.ErrDevice)
	}
	defer dev.dev.DestroyBuffer(staging)

	// The color texture sits in attachment layout after rendering;
	// CopyTextureToBuffer needs the transfer-source layout.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: s.color.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	encoder.CopyTextureToBuffer(s.color.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: s.color.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})

	// Transition back so the next frame's render pass finds the layout
	// it expects.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: s.color.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		encoder.Destroy()
		return nil, fmt.Errorf("native: end capture encoding: %v: %w", err, gpucore.ErrDevice)
	}

	index, err := dev.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		return nil, fmt.Errorf("native: capture submit: %v: %w", err, gpucore.ErrDevice)
	}
	if err := waitSubmission(dev.dev, dev.queue, index); err != nil {
		return nil, fmt.Errorf("native: capture %v: %w", err, gpucore.ErrDevice)
	}
	dev.dev.FreeCommandBuffer(cmdBuf)
	encoder.Destroy()

	mapping, err := dev.dev.MapBuffer(staging, 0, stagingSize)
	if err != nil {
		return nil, fmt.Errorf("native: map capture staging: %v: %w", err, gpucore.ErrDevice)
	}
	readback := make([]byte, stagingSize)
	copy(readback, mappedBytes(mapping, stagingSize))
	if err := dev.dev.UnmapBuffer(staging); err != nil {
		return nil, fmt.Errorf("native: unmap capture staging: %v: %w", err, gpucore.ErrDevice)
	}

	return decodeFrame(readback, w, h, alignedBytesPerRow, s.cfg.Format), nil
}

// mappedBytes views a mapped staging buffer as a byte slice. The slice
// is valid only until UnmapBuffer.
func mappedBytes(m hal.BufferMapping, size uint64) []byte {
	if m.Ptr == nil || size == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(m.Ptr), size)
}

// decodeFrame strips row padding and converts the texel order to RGBA.
func decodeFrame(readback []byte, w, h, alignedBytesPerRow uint32, format gpucore.TextureFormat) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	swap := format == gpucore.TextureFormatBGRA8Unorm

	for row := uint32(0); row < h; row++ {
		src := readback[row*alignedBytesPerRow:]
		dst := img.Pix[int(row)*img.Stride:]
		for x := uint32(0); x < w; x++ {
			o := x * 4
			if swap {
				dst[o+0] = src[o+2]
				dst[o+1] = src[o+1]
				dst[o+2] = src[o+0]
			} else {
				dst[o+0] = src[o+0]
				dst[o+1] = src[o+1]
				dst[o+2] = src[o+2]
			}
			dst[o+3] = src[o+3]
		}
	}
	return img
}
