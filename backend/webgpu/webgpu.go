// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package webgpu implements the flare device backend on
// cogentcore/webgpu, for windowed presentation.
//
// The host supplies the window through backend.Options.Window as a
// *wgpu.SurfaceDescriptor; flare owns no event loop. Shaders stay WGSL
// end to end, the wgpu runtime compiles them itself.
package webgpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gogpu/flare/backend"
	"github.com/gogpu/flare/gpucore"
)

func init() {
	backend.Register(backend.BackendWebGPU, func() backend.Backend {
		return &Backend{}
	})
}

// Backend opens cogentcore/webgpu devices against a host window.
type Backend struct{}

// Name returns the registry name.
func (b *Backend) Name() string { return backend.BackendWebGPU }

// Available reports whether the wgpu runtime can be instantiated.
func (b *Backend) Available() bool {
	return wgpu.CreateInstance(nil) != nil
}

// Open creates the device and a windowed surface. Options.Window must
// carry a *wgpu.SurfaceDescriptor.
func (b *Backend) Open(opts backend.Options) (gpucore.Device, gpucore.Surface, error) {
	desc, ok := opts.Window.(*wgpu.SurfaceDescriptor)
	if !ok || desc == nil {
		return nil, nil, fmt.Errorf("webgpu: offscreen surface: %w", gpucore.ErrUnsupported)
	}

	instance := wgpu.CreateInstance(nil)
	if instance == nil {
		return nil, nil, fmt.Errorf("webgpu: create instance: %w", backend.ErrBackendNotAvailable)
	}
	sur := instance.CreateSurface(desc)

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: sur,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("webgpu: request adapter: %v: %w", err, gpucore.ErrDevice)
	}

	limits := wgpu.DefaultLimits()
	dev, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: opts.Label,
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("webgpu: request device: %v: %w", err, gpucore.ErrDevice)
	}

	name := opts.Label
	if name == "" {
		name = "webgpu adapter"
	}
	device := &Device{
		instance: instance,
		adapter:  adapter,
		dev:      dev,
		queue:    dev.GetQueue(),
		info: gpucore.DeviceInfo{
			Name:                            name,
			Backend:                         backend.BackendWebGPU,
			MaxTextureDimension2D:           limits.MaxTextureDimension2D,
			MaxBufferSize:                   limits.MaxBufferSize,
			MinUniformBufferOffsetAlignment: minUniformOffsetAlignment,
		},
	}
	surface := &Surface{dev: device, sur: sur}
	if opts.Width > 0 && opts.Height > 0 {
		cfg := gpucore.SurfaceConfig{
			Width:       opts.Width,
			Height:      opts.Height,
			Format:      surface.PreferredFormat(),
			PresentMode: gpucore.PresentModeFifo,
			Usage:       gpucore.TextureUsageRenderAttachment,
		}
		if err := surface.Configure(cfg); err != nil {
			_ = device.Close()
			return nil, nil, err
		}
	}
	return device, surface, nil
}

// minUniformOffsetAlignment is the WebGPU baseline alignment for dynamic
// uniform-buffer offsets.
const minUniformOffsetAlignment = 256
