// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface manages the presentation surface: configuration,
// per-frame acquisition with a bounded timeout, and classification of
// backend failures into the shared surface-error taxonomy.
//
// State machine: a Manager starts Unconfigured; the first successful
// Configure moves it to Configured, and Resize or a later Configure
// replaces the configuration wholesale. AcquireFrame before Configure
// fails with ErrNotConfigured.
package surface

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gogpu/flare/gpucore"
)

// ErrNotConfigured is returned by AcquireFrame before the first
// successful Configure.
var ErrNotConfigured = errors.New("surface: not configured")

// DefaultAcquireTimeout bounds AcquireFrame when no timeout was given.
const DefaultAcquireTimeout = 2 * time.Second

// Manager owns one presentation surface. Not safe for concurrent use;
// Resize and Configure are callable only between frames.
type Manager struct {
	sur     gpucore.Surface
	timeout time.Duration

	cfg        gpucore.SurfaceConfig
	configured bool
	zeroSized  bool
}

// NewManager wraps sur. A timeout <= 0 uses DefaultAcquireTimeout.
func NewManager(sur gpucore.Surface, timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = DefaultAcquireTimeout
	}
	return &Manager{sur: sur, timeout: timeout}
}

// Configure (re)configures the surface. Zero width or height is rejected
// up front; AutoVsync and AutoNoVsync resolve to a concrete mode before
// the backend sees the configuration.
func (m *Manager) Configure(size gpucore.Extent, mode gpucore.PresentMode, usage gpucore.TextureUsage) error {
	if size.IsZero() {
		return fmt.Errorf("%w: surface configuration %dx%d has a zero dimension",
			gpucore.ErrValidation, size.Width, size.Height)
	}
	cfg := gpucore.SurfaceConfig{
		Width:       size.Width,
		Height:      size.Height,
		Format:      m.sur.PreferredFormat(),
		PresentMode: ResolvePresentMode(mode),
		Usage:       usage,
	}
	if err := m.sur.Configure(cfg); err != nil {
		return Classify(err)
	}
	m.cfg = cfg
	m.configured = true
	m.zeroSized = false
	return nil
}

// AcquireFrame blocks until a frame texture is ready, bounded by the
// manager's timeout. Failures are classified into the surface-error
// sentinels; a zero-sized surface fails immediately with
// gpucore.ErrSurfaceOutdated rather than asking the backend.
func (m *Manager) AcquireFrame() (gpucore.SurfaceFrame, error) {
	if !m.configured {
		return nil, ErrNotConfigured
	}
	if m.zeroSized {
		return nil, fmt.Errorf("%w: surface is zero-sized after resize", gpucore.ErrSurfaceOutdated)
	}
	frame, err := m.sur.Acquire(m.timeout)
	if err != nil {
		return nil, Classify(err)
	}
	return frame, nil
}

// Resize reconfigures with a new size, keeping the present mode and
// usage. A zero size is recorded without touching the backend and makes
// every following AcquireFrame fail with gpucore.ErrSurfaceOutdated
// until a non-zero Resize arrives; acquisition never hangs on a
// minimized window.
func (m *Manager) Resize(size gpucore.Extent) error {
	if !m.configured {
		return ErrNotConfigured
	}
	if size.IsZero() {
		m.cfg.Width, m.cfg.Height = size.Width, size.Height
		m.zeroSized = true
		return nil
	}
	return m.Configure(size, m.cfg.PresentMode, m.cfg.Usage)
}

// Format returns the configured texture format, or Undefined before
// Configure.
func (m *Manager) Format() gpucore.TextureFormat {
	return m.cfg.Format
}

// Size returns the configured size.
func (m *Manager) Size() gpucore.Extent {
	return gpucore.Extent{Width: m.cfg.Width, Height: m.cfg.Height}
}

// Configuration returns the active configuration and whether the surface
// has been configured.
func (m *Manager) Configuration() (gpucore.SurfaceConfig, bool) {
	return m.cfg, m.configured
}

// ResolvePresentMode lowers the automatic modes to concrete ones:
// AutoVsync always means Fifo (universally supported), AutoNoVsync means
// Immediate. Backends that cannot honor Immediate fall back to Fifo
// themselves.
func ResolvePresentMode(mode gpucore.PresentMode) gpucore.PresentMode {
	switch mode {
	case gpucore.PresentModeAutoVsync:
		return gpucore.PresentModeFifo
	case gpucore.PresentModeAutoNoVsync:
		return gpucore.PresentModeImmediate
	default:
		return mode
	}
}

// Classify maps a backend acquisition or configuration error onto the
// surface-error taxonomy. Errors already carrying one of the sentinels
// pass through unchanged; otherwise the message is matched against the
// phrasings the backends are known to produce. Anything unrecognized is
// returned as-is ("other": the caller decides).
func Classify(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gpucore.ErrSurfaceLost),
		errors.Is(err, gpucore.ErrSurfaceOutdated),
		errors.Is(err, gpucore.ErrSurfaceOutOfMemory),
		errors.Is(err, gpucore.ErrSurfaceTimeout):
		return err
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "lost"), strings.Contains(msg, "device removed"):
		return fmt.Errorf("%w: %v", gpucore.ErrSurfaceLost, err)
	case strings.Contains(msg, "outdated"), strings.Contains(msg, "suboptimal"),
		strings.Contains(msg, "out of date"):
		return fmt.Errorf("%w: %v", gpucore.ErrSurfaceOutdated, err)
	case strings.Contains(msg, "out of memory"), strings.Contains(msg, "oom"):
		return fmt.Errorf("%w: %v", gpucore.ErrSurfaceOutOfMemory, err)
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "timed out"),
		strings.Contains(msg, "deadline"):
		return fmt.Errorf("%w: %v", gpucore.ErrSurfaceTimeout, err)
	}
	return err
}
