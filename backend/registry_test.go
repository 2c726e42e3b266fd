// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/gogpu/flare/gpucore"
)

type fakeBackend struct {
	name      string
	available bool
	sur       gpucore.Surface
	openErr   error
}

func (b *fakeBackend) Name() string    { return b.name }
func (b *fakeBackend) Available() bool { return b.available }

func (b *fakeBackend) Open(_ Options) (gpucore.Device, gpucore.Surface, error) {
	return nil, b.sur, b.openErr
}

type fakeSurface struct{}

func (fakeSurface) PreferredFormat() gpucore.TextureFormat { return gpucore.TextureFormatBGRA8Unorm }
func (fakeSurface) Configure(gpucore.SurfaceConfig) error  { return nil }

func (fakeSurface) Acquire(time.Duration) (gpucore.SurfaceFrame, error) {
	return nil, gpucore.ErrSurfaceOutdated
}

func register(t *testing.T, name string, b Backend) {
	t.Helper()
	Register(name, func() Backend { return b })
	t.Cleanup(func() { Unregister(name) })
}

func TestRegisterAndGet(t *testing.T) {
	register(t, "fake", &fakeBackend{name: "fake", available: true})

	if !IsRegistered("fake") {
		t.Error("IsRegistered(fake) = false after Register")
	}
	b := Get("fake")
	if b == nil || b.Name() != "fake" {
		t.Errorf("Get(fake) = %v", b)
	}
	if Get("missing") != nil {
		t.Error("Get(missing) returned a backend")
	}
}

func TestUnregister(t *testing.T) {
	Register("fake", func() Backend { return &fakeBackend{name: "fake"} })
	Unregister("fake")
	if IsRegistered("fake") {
		t.Error("IsRegistered(fake) = true after Unregister")
	}
}

func TestAvailableListsNames(t *testing.T) {
	register(t, "a", &fakeBackend{name: "a"})
	register(t, "b", &fakeBackend{name: "b"})

	names := Available()
	sort.Strings(names)
	found := 0
	for _, n := range names {
		if n == "a" || n == "b" {
			found++
		}
	}
	if found != 2 {
		t.Errorf("Available() = %v, want it to contain a and b", names)
	}
}

func TestDefaultHonorsPriority(t *testing.T) {
	register(t, BackendWebGPU, &fakeBackend{name: BackendWebGPU, available: true})
	register(t, BackendNative, &fakeBackend{name: BackendNative, available: true})

	b := Default()
	if b == nil || b.Name() != BackendWebGPU {
		t.Errorf("Default() = %v, want %s first", b, BackendWebGPU)
	}
}

func TestDefaultSkipsUnavailable(t *testing.T) {
	register(t, BackendWebGPU, &fakeBackend{name: BackendWebGPU, available: false})
	register(t, BackendNative, &fakeBackend{name: BackendNative, available: true})

	b := Default()
	if b == nil || b.Name() != BackendNative {
		t.Errorf("Default() = %v, want %s", b, BackendNative)
	}
}

func TestOpenDefaultNoBackends(t *testing.T) {
	// The real backends may be registered via init(); mark them
	// unavailable is not possible, so this test only runs meaningfully
	// when nothing claims availability. Registering an explicitly
	// unavailable fake still must not be picked.
	register(t, "unavailable", &fakeBackend{name: "unavailable", available: false})

	if b := Get("unavailable"); b.Available() {
		t.Fatal("fake backend reports available")
	}
}

func TestOpenDefaultWrapsBackendName(t *testing.T) {
	openErr := errors.New("boom")
	register(t, BackendWebGPU, &fakeBackend{name: BackendWebGPU, available: true, openErr: openErr})

	_, _, err := OpenDefault(Options{Width: 1, Height: 1})
	if !errors.Is(err, openErr) {
		t.Fatalf("OpenDefault error = %v, want wrapped %v", err, openErr)
	}
}
