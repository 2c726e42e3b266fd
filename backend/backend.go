// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package backend registers device backends and selects the best
// available one.
//
// A backend bundles the two capabilities an engine consumes: a
// gpucore.Device for resource creation and frame encoding, and a
// gpucore.Surface for presentation. Concrete implementations live in
// backend/native (gogpu/wgpu hal, offscreen with readback) and
// backend/webgpu (cogentcore/webgpu, windowed). They self-register via
// init(), so importing a backend package for side effects is enough:
//
//	import _ "github.com/gogpu/flare/backend/native"
package backend

import (
	"errors"

	"github.com/gogpu/flare/gpucore"
)

// Backend name constants.
const (
	// BackendWebGPU is the cogentcore/webgpu windowed backend.
	BackendWebGPU = "webgpu"

	// BackendNative is the gogpu/wgpu hal backend with an offscreen
	// surface.
	BackendNative = "native"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered or cannot open a device on this machine.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// Options configures Open.
type Options struct {
	// Label is an optional debug name stamped on the device objects.
	Label string

	// Width and Height size the initial surface.
	Width  uint32
	Height uint32

	// Window is a backend-specific surface descriptor for windowed
	// backends (a *wgpu.SurfaceDescriptor for backend/webgpu). Nil
	// requests an offscreen surface; backends without offscreen support
	// reject it with gpucore.ErrUnsupported.
	Window any
}

// A Backend opens a device and its presentation surface. Implementations
// register themselves with Register from an init() function.
type Backend interface {
	// Name returns the registry name ("native", "webgpu").
	Name() string

	// Available reports whether the backend can plausibly open a device
	// on this machine, without actually opening one.
	Available() bool

	// Open creates the device and surface. The caller owns both and
	// closes the device after the engine consuming them is closed.
	Open(opts Options) (gpucore.Device, gpucore.Surface, error)
}
