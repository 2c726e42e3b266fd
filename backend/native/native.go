// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package native implements the flare device backend on the gogpu/wgpu
// hardware abstraction layer.
//
// The backend opens a standalone Vulkan device and presents into an
// offscreen color texture instead of a window. The surface implements
// gpucore.Capturer, so presented frames can be read back with
// Engine.CaptureFrame. Shaders are WGSL at the flare boundary and are
// compiled to SPIR-V with naga before they reach the hal.
package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/flare/backend"
	"github.com/gogpu/flare/gpucore"
)

func init() {
	backend.Register(backend.BackendNative, func() backend.Backend {
		return &Backend{}
	})
}

// Backend opens hal devices with offscreen surfaces.
type Backend struct{}

// Name returns the registry name.
func (b *Backend) Name() string { return backend.BackendNative }

// Available reports whether a hal Vulkan backend is compiled in.
func (b *Backend) Available() bool {
	_, ok := hal.GetBackend(gputypes.BackendVulkan)
	return ok
}

// Open creates a standalone device and an offscreen surface of the
// requested size. Windowed presentation is not supported here; use
// backend/webgpu for that.
func (b *Backend) Open(opts backend.Options) (gpucore.Device, gpucore.Surface, error) {
	if opts.Window != nil {
		return nil, nil, fmt.Errorf("native: windowed surface: %w", gpucore.ErrUnsupported)
	}

	halBackend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, nil, fmt.Errorf("native: vulkan backend not available: %w", backend.ErrBackendNotAvailable)
	}
	instance, err := halBackend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, nil, fmt.Errorf("native: create instance: %v: %w", err, gpucore.ErrDevice)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, nil, fmt.Errorf("native: no GPU adapters found: %w", backend.ErrBackendNotAvailable)
	}

	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	limits := gputypes.DefaultLimits()
	openDev, err := selected.Adapter.Open(gputypes.Features(0), limits)
	if err != nil {
		instance.Destroy()
		return nil, nil, fmt.Errorf("native: open adapter %q: %v: %w", selected.Info.Name, err, gpucore.ErrDevice)
	}

	dev := newDevice(instance, openDev.Device, openDev.Queue, deviceInfo(selected.Info.Name, limits))
	sur := newSurface(dev)
	if opts.Width > 0 && opts.Height > 0 {
		cfg := gpucore.SurfaceConfig{
			Width:       opts.Width,
			Height:      opts.Height,
			Format:      sur.PreferredFormat(),
			PresentMode: gpucore.PresentModeImmediate,
			Usage:       gpucore.TextureUsageRenderAttachment | gpucore.TextureUsageCopySrc,
		}
		if err := sur.Configure(cfg); err != nil {
			_ = dev.Close()
			return nil, nil, err
		}
	}
	return dev, sur, nil
}

// minUniformOffsetAlignment is the WebGPU baseline alignment for dynamic
// uniform-buffer offsets, used when the hal does not report one.
const minUniformOffsetAlignment = 256

func deviceInfo(name string, limits gputypes.Limits) gpucore.DeviceInfo {
	return gpucore.DeviceInfo{
		Name:                            name,
		Backend:                         backend.BackendNative,
		MaxTextureDimension2D:           limits.MaxTextureDimension2D,
		MaxBufferSize:                   limits.MaxBufferSize,
		MinUniformBufferOffsetAlignment: minUniformOffsetAlignment,
	}
}
