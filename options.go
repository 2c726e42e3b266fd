// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package flare

import (
	"time"

	"github.com/gogpu/flare/gpucore"
	"github.com/gogpu/flare/logging"
)

// engineOptions collects the tunables New accepts.
type engineOptions struct {
	log            logging.Logger
	sampleCount    uint32
	depthFormat    gpucore.TextureFormat
	presentMode    gpucore.PresentMode
	clearColor     gpucore.Color
	acquireTimeout time.Duration
	warnCacheSize  int
}

func defaultOptions() engineOptions {
	return engineOptions{
		sampleCount: 1,
		presentMode: gpucore.PresentModeAutoVsync,
		clearColor:  gpucore.Color{R: 0, G: 0, B: 0, A: 1},
	}
}

// Option configures an Engine at construction time.
type Option func(*engineOptions)

// WithLogger sets the engine's logger. The default wraps the package
// slog logger set via SetLogger.
func WithLogger(l logging.Logger) Option {
	return func(o *engineOptions) { o.log = l }
}

// WithSampleCount sets the default MSAA sample count for attached render
// passes and pipelines that do not specify their own. Valid counts are
// 1, 2, 4 and 8.
func WithSampleCount(n uint32) Option {
	return func(o *engineOptions) { o.sampleCount = n }
}

// WithDepthFormat enables a depth attachment in the given format for
// passes and pipelines that do not specify their own.
func WithDepthFormat(f gpucore.TextureFormat) Option {
	return func(o *engineOptions) { o.depthFormat = f }
}

// WithPresentMode sets the surface present mode. The default AutoVsync
// resolves to Fifo.
func WithPresentMode(m gpucore.PresentMode) Option {
	return func(o *engineOptions) { o.presentMode = m }
}

// WithClearColor sets the clear color used by render passes whose
// descriptor leaves it zero.
func WithClearColor(c gpucore.Color) Option {
	return func(o *engineOptions) { o.clearColor = c }
}

// WithAcquireTimeout bounds how long a frame acquisition may block.
func WithAcquireTimeout(d time.Duration) Option {
	return func(o *engineOptions) { o.acquireTimeout = d }
}

// WithWarnCache sets the capacity of the deduplication set that
// rate-limits repeated per-frame warnings.
func WithWarnCache(size int) Option {
	return func(o *engineOptions) { o.warnCacheSize = size }
}
