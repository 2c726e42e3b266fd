// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"fmt"
	"sync"

	"github.com/gogpu/flare/gpucore"
)

// Factory creates a new backend instance.
type Factory func() Backend

// registry holds registered backends.
var (
	registryMu sync.RWMutex
	backends   = make(map[string]Factory)
	// Priority order for backend selection (first available wins).
	// WebGPU > Native (WebGPU presents to a window, Native is the
	// offscreen fallback).
	backendPriority = []string{BackendWebGPU, BackendNative}
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it is replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns a list of registered backend names.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Get returns a backend instance by name.
// Returns nil if the backend is not registered.
func Get(name string) Backend {
	registryMu.RLock()
	defer registryMu.RUnlock()

	factory, ok := backends[name]
	if !ok {
		return nil
	}
	return factory()
}

// Default returns the best available backend based on priority.
// Returns nil if no registered backend reports itself available.
func Default() Backend {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, name := range backendPriority {
		if factory, ok := backends[name]; ok {
			b := factory()
			if b != nil && b.Available() {
				return b
			}
		}
	}

	// Fallback: first available outside the priority list.
	for _, factory := range backends {
		if b := factory(); b != nil && b.Available() {
			return b
		}
	}

	return nil
}

// MustDefault returns the default backend or panics.
func MustDefault() Backend {
	b := Default()
	if b == nil {
		panic("backend: no backend available")
	}
	return b
}

// OpenDefault opens a device and surface on the default backend.
func OpenDefault(opts Options) (gpucore.Device, gpucore.Surface, error) {
	b := Default()
	if b == nil {
		return nil, nil, ErrBackendNotAvailable
	}
	dev, sur, err := b.Open(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("backend %s: %w", b.Name(), err)
	}
	return dev, sur, nil
}
