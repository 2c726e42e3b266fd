// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gogpu/flare/gpucore"
)

type fakeView struct{}

func (fakeView) Label() string { return "fake" }

type fakeFrame struct{ presented bool }

func (f *fakeFrame) View() gpucore.TextureView { return fakeView{} }
func (f *fakeFrame) Present() error            { f.presented = true; return nil }
func (f *fakeFrame) Discard()                  {}

// fakeSurface scripts acquire outcomes and records configurations.
type fakeSurface struct {
	format   gpucore.TextureFormat
	configs  []gpucore.SurfaceConfig
	acquires []error // popped front to back; nil means success
}

func (s *fakeSurface) PreferredFormat() gpucore.TextureFormat { return s.format }

func (s *fakeSurface) Configure(cfg gpucore.SurfaceConfig) error {
	s.configs = append(s.configs, cfg)
	return nil
}

func (s *fakeSurface) Acquire(time.Duration) (gpucore.SurfaceFrame, error) {
	if len(s.acquires) == 0 {
		return &fakeFrame{}, nil
	}
	err := s.acquires[0]
	s.acquires = s.acquires[1:]
	if err != nil {
		return nil, err
	}
	return &fakeFrame{}, nil
}

func newConfigured(t *testing.T, s *fakeSurface) *Manager {
	t.Helper()
	m := NewManager(s, time.Second)
	if err := m.Configure(gpucore.Extent{Width: 800, Height: 600}, gpucore.PresentModeFifo, gpucore.TextureUsageRenderAttachment); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	return m
}

func TestAcquireBeforeConfigure(t *testing.T) {
	m := NewManager(&fakeSurface{}, 0)
	if _, err := m.AcquireFrame(); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("AcquireFrame = %v, want ErrNotConfigured", err)
	}
}

func TestConfigureRejectsZeroSize(t *testing.T) {
	m := NewManager(&fakeSurface{}, 0)
	for _, size := range []gpucore.Extent{{Width: 0, Height: 600}, {Width: 800, Height: 0}} {
		if err := m.Configure(size, gpucore.PresentModeFifo, 0); !errors.Is(err, gpucore.ErrValidation) {
			t.Errorf("Configure(%dx%d) = %v, want ErrValidation", size.Width, size.Height, err)
		}
	}
}

func TestConfigureResolvesAutoModes(t *testing.T) {
	tests := []struct {
		in   gpucore.PresentMode
		want gpucore.PresentMode
	}{
		{gpucore.PresentModeAutoVsync, gpucore.PresentModeFifo},
		{gpucore.PresentModeAutoNoVsync, gpucore.PresentModeImmediate},
		{gpucore.PresentModeMailbox, gpucore.PresentModeMailbox},
	}
	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			s := &fakeSurface{format: gpucore.TextureFormatBGRA8Unorm}
			m := NewManager(s, 0)
			if err := m.Configure(gpucore.Extent{Width: 1, Height: 1}, tt.in, 0); err != nil {
				t.Fatal(err)
			}
			if got := s.configs[len(s.configs)-1].PresentMode; got != tt.want {
				t.Errorf("resolved mode = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAcquireAfterConfigure(t *testing.T) {
	s := &fakeSurface{format: gpucore.TextureFormatBGRA8Unorm}
	m := newConfigured(t, s)

	frame, err := m.AcquireFrame()
	if err != nil {
		t.Fatalf("AcquireFrame: %v", err)
	}
	if frame.View() == nil {
		t.Error("frame has no view")
	}
	if m.Format() != gpucore.TextureFormatBGRA8Unorm {
		t.Errorf("Format = %v, want BGRA8Unorm", m.Format())
	}
}

func TestZeroResizeFailsDeterministically(t *testing.T) {
	s := &fakeSurface{}
	m := newConfigured(t, s)
	configsBefore := len(s.configs)

	if err := m.Resize(gpucore.Extent{}); err != nil {
		t.Fatalf("Resize(0,0): %v", err)
	}
	if len(s.configs) != configsBefore {
		t.Error("zero resize reached the backend")
	}

	// Repeated acquires all fail fast with Outdated, never hang.
	for i := 0; i < 3; i++ {
		if _, err := m.AcquireFrame(); !errors.Is(err, gpucore.ErrSurfaceOutdated) {
			t.Fatalf("acquire %d = %v, want ErrSurfaceOutdated", i, err)
		}
	}

	// A real resize recovers.
	if err := m.Resize(gpucore.Extent{Width: 640, Height: 480}); err != nil {
		t.Fatalf("recovery Resize: %v", err)
	}
	if _, err := m.AcquireFrame(); err != nil {
		t.Errorf("acquire after recovery: %v", err)
	}
	if got := m.Size(); got.Width != 640 || got.Height != 480 {
		t.Errorf("Size = %dx%d, want 640x480", got.Width, got.Height)
	}
}

func TestResizeKeepsModeAndUsage(t *testing.T) {
	s := &fakeSurface{}
	m := NewManager(s, 0)
	if err := m.Configure(gpucore.Extent{Width: 10, Height: 10}, gpucore.PresentModeMailbox, gpucore.TextureUsageRenderAttachment); err != nil {
		t.Fatal(err)
	}
	if err := m.Resize(gpucore.Extent{Width: 20, Height: 20}); err != nil {
		t.Fatal(err)
	}
	cfg := s.configs[len(s.configs)-1]
	if cfg.PresentMode != gpucore.PresentModeMailbox || cfg.Usage != gpucore.TextureUsageRenderAttachment {
		t.Errorf("resize changed mode/usage: %+v", cfg)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"sentinel passthrough", fmt.Errorf("acquire: %w", gpucore.ErrSurfaceOutdated), gpucore.ErrSurfaceOutdated},
		{"lost message", errors.New("vulkan: surface lost"), gpucore.ErrSurfaceLost},
		{"device removed", errors.New("DXGI device removed"), gpucore.ErrSurfaceLost},
		{"suboptimal", errors.New("swapchain suboptimal"), gpucore.ErrSurfaceOutdated},
		{"out of date", errors.New("VK_ERROR_OUT_OF_DATE_KHR: out of date"), gpucore.ErrSurfaceOutdated},
		{"oom", errors.New("allocation failed: out of memory"), gpucore.ErrSurfaceOutOfMemory},
		{"timeout", errors.New("acquire timed out"), gpucore.ErrSurfaceTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.in)
			if tt.want == nil {
				if got != nil {
					t.Errorf("Classify = %v, want nil", got)
				}
				return
			}
			if !errors.Is(got, tt.want) {
				t.Errorf("Classify(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestClassifyUnrecognizedPassesThrough(t *testing.T) {
	orig := errors.New("something else entirely")
	got := Classify(orig)
	if !errors.Is(got, orig) {
		t.Errorf("Classify = %v, want original error", got)
	}
	for _, sentinel := range []error{
		gpucore.ErrSurfaceLost, gpucore.ErrSurfaceOutdated,
		gpucore.ErrSurfaceOutOfMemory, gpucore.ErrSurfaceTimeout,
	} {
		if errors.Is(got, sentinel) {
			t.Errorf("unrecognized error classified as %v", sentinel)
		}
	}
}
