// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucore

import "errors"

// Shared error taxonomy. Every component wraps one of these sentinels
// with fmt.Errorf("...: %w", ...) so callers can classify failures with
// errors.Is without parsing messages.
var (
	// ErrValidation marks a command-stream invariant violation. This is a
	// programmer error: the frame is aborted fail-fast and never retried.
	ErrValidation = errors.New("gpucore: validation failed")

	// ErrDevice marks a failure propagated from the graphics device
	// (adapter selection, device or pipeline creation, encoding). Not
	// retryable without a configuration change.
	ErrDevice = errors.New("gpucore: device error")

	// ErrUnknownResource marks a lookup with an unknown or stale ID.
	// Treated as a programmer error, fail-fast.
	ErrUnknownResource = errors.New("gpucore: unknown resource")

	// ErrUnsupported marks an operation the active backend cannot
	// perform (e.g. push constants on a device without the feature).
	ErrUnsupported = errors.New("gpucore: operation not supported by backend")
)

// Surface errors. Outdated triggers one automatic reconfigure-and-retry
// inside Render; Lost is fatal for the surface and must be escalated to
// the windowing layer; OutOfMemory and Timeout are surfaced for the
// caller to decide (typically: drop the frame and continue).
var (
	// ErrSurfaceLost means the surface itself is gone and must be
	// recreated by the windowing layer.
	ErrSurfaceLost = errors.New("gpucore: surface lost")

	// ErrSurfaceOutdated means the surface no longer matches its
	// configuration (usually a resize) and must be reconfigured.
	ErrSurfaceOutdated = errors.New("gpucore: surface outdated")

	// ErrSurfaceOutOfMemory means the device could not allocate the
	// frame texture.
	ErrSurfaceOutOfMemory = errors.New("gpucore: surface out of memory")

	// ErrSurfaceTimeout means no frame texture became ready within the
	// acquire timeout.
	ErrSurfaceTimeout = errors.New("gpucore: surface acquire timed out")
)
