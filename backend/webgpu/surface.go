// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package webgpu

import (
	"fmt"
	"sync"
	"time"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gogpu/flare/gpucore"
)

// Surface is a windowed swapchain surface.
type Surface struct {
	mu         sync.Mutex
	dev        *Device
	sur        *wgpu.Surface
	configured bool
}

// PreferredFormat returns the first format the surface reports for the
// opened adapter.
func (s *Surface) PreferredFormat() gpucore.TextureFormat {
	caps := s.sur.GetCapabilities(s.dev.adapter)
	if len(caps.Formats) == 0 {
		return gpucore.TextureFormatBGRA8Unorm
	}
	if f := fromWGPUTextureFormat(caps.Formats[0]); f != gpucore.TextureFormatUndefined {
		return f
	}
	return gpucore.TextureFormatBGRA8Unorm
}

// Configure applies a full swapchain configuration.
func (s *Surface) Configure(cfg gpucore.SurfaceConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	caps := s.sur.GetCapabilities(s.dev.adapter)
	if len(caps.AlphaModes) == 0 {
		return fmt.Errorf("webgpu: surface reports no alpha modes: %w", gpucore.ErrDevice)
	}

	s.sur.Configure(s.dev.adapter, s.dev.dev, &wgpu.SurfaceConfiguration{
		Usage:       toWGPUTextureUsage(cfg.Usage),
		Format:      toWGPUTextureFormat(cfg.Format),
		Width:       cfg.Width,
		Height:      cfg.Height,
		PresentMode: toWGPUPresentMode(cfg.PresentMode),
		AlphaMode:   caps.AlphaModes[0],
	})
	s.configured = true
	return nil
}

// Acquire grabs the next swapchain texture. Acquisition failures keep
// the runtime's message so the surface manager can classify them
// (outdated, lost, timeout).
func (s *Surface) Acquire(_ time.Duration) (gpucore.SurfaceFrame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.configured {
		return nil, fmt.Errorf("webgpu: surface not configured: %w", gpucore.ErrSurfaceOutdated)
	}

	tex, err := s.sur.GetCurrentTexture()
	if err != nil {
		return nil, fmt.Errorf("webgpu: acquire frame: %w", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("webgpu: frame view: %v: %w", err, gpucore.ErrDevice)
	}
	return &surfaceFrame{
		sur:  s,
		tex:  tex,
		view: &textureView{label: "swapchain_frame", view: view},
	}, nil
}

// surfaceFrame is one acquired swapchain texture.
type surfaceFrame struct {
	sur  *Surface
	tex  *wgpu.Texture
	view *textureView
}

func (f *surfaceFrame) View() gpucore.TextureView { return f.view }

func (f *surfaceFrame) Present() error {
	f.sur.sur.Present()
	f.release()
	return nil
}

func (f *surfaceFrame) Discard() {
	f.release()
}

func (f *surfaceFrame) release() {
	if f.view != nil {
		f.view.view.Release()
		f.view = nil
	}
	if f.tex != nil {
		f.tex.Release()
		f.tex = nil
	}
}
