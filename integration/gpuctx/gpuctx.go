// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gpuctx builds a flare engine on a GPU device shared by a
// gogpu host application.
//
// The host passes its gpucontext.DeviceProvider; flare receives the
// device, it does not create one. Providers backed by the hal expose
// the raw handles through HalDevice() and HalQueue(); flare wraps them
// and renders into an offscreen surface on the shared device. Closing
// the engine leaves the host's device alive.
package gpuctx

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/flare"
	"github.com/gogpu/flare/backend/native"
)

// Common errors returned by New.
var (
	// ErrNilProvider is returned when a nil DeviceProvider is passed.
	ErrNilProvider = errors.New("gpuctx: nil DeviceProvider")

	// ErrNoHALAccess is returned when the provider does not expose raw
	// hal handles.
	ErrNoHALAccess = errors.New("gpuctx: provider does not expose HAL types")
)

// New builds an engine on the host's shared device. The provider must
// implement HalDevice() any and HalQueue() any returning hal.Device and
// hal.Queue. The engine renders into an offscreen surface of the given
// size; the frames are readable with Engine.CaptureFrame.
func New(provider gpucontext.DeviceProvider, width, height uint32, opts ...flare.Option) (*flare.Engine, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}

	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHALAccess
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHALAccess)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHALAccess)
	}

	dev := native.Wrap(device, queue, "shared host device")
	sur := native.NewOffscreenSurface(dev)

	eng, err := flare.New(dev, sur, opts...)
	if err != nil {
		return nil, fmt.Errorf("gpuctx: %w", err)
	}
	if width > 0 && height > 0 {
		if err := eng.Resize(width, height); err != nil {
			_ = eng.Close()
			return nil, fmt.Errorf("gpuctx: configure surface: %w", err)
		}
	}
	return eng, nil
}
