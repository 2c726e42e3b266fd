// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package config loads optional engine settings from a YAML file and
// lowers them onto flare's functional options.
//
// A missing file is not an error: Load returns the defaults so hosts can
// ship without a config file and drop one in later.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/flare"
	"github.com/gogpu/flare/gpucore"
	"github.com/gogpu/flare/logging"
)

// Config is the YAML shape of an engine configuration. Zero values mean
// "use the engine default".
type Config struct {
	// SampleCount is the MSAA sample count: 1, 2, 4 or 8.
	SampleCount uint32 `yaml:"sample_count"`

	// PresentMode is one of fifo, fifo-relaxed, immediate, mailbox,
	// auto-vsync, auto-no-vsync.
	PresentMode string `yaml:"present_mode"`

	// DepthFormat enables depth: depth32float or depth24plus-stencil8.
	DepthFormat string `yaml:"depth_format"`

	// ClearColor is [r, g, b, a] in 0..1.
	ClearColor []float64 `yaml:"clear_color"`

	// LogLevel is trace, debug, info, warn, error or fatal.
	LogLevel string `yaml:"log_level"`

	// WarnCacheSize bounds the warning deduplication set.
	WarnCacheSize int `yaml:"warn_cache_size"`

	// AcquireTimeout bounds frame acquisition, e.g. "500ms".
	AcquireTimeout time.Duration `yaml:"acquire_timeout"`
}

// Load reads path. A missing file yields the zero Config and no error;
// a malformed file is an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		flare.Logger().Debug("config file not found, using defaults", "path", path)
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate reports the first bad value.
func (c *Config) Validate() error {
	switch c.SampleCount {
	case 0, 1, 2, 4, 8:
	default:
		return fmt.Errorf("sample_count %d is not 1, 2, 4 or 8", c.SampleCount)
	}
	if c.PresentMode != "" {
		if _, err := ParsePresentMode(c.PresentMode); err != nil {
			return err
		}
	}
	if c.DepthFormat != "" {
		if _, err := ParseDepthFormat(c.DepthFormat); err != nil {
			return err
		}
	}
	if n := len(c.ClearColor); n != 0 && n != 4 {
		return fmt.Errorf("clear_color has %d components, want 4", n)
	}
	for i, v := range c.ClearColor {
		if v < 0 || v > 1 {
			return fmt.Errorf("clear_color[%d] = %g is outside 0..1", i, v)
		}
	}
	if c.LogLevel != "" {
		if _, err := logging.ParseLevel(c.LogLevel); err != nil {
			return err
		}
	}
	if c.WarnCacheSize < 0 {
		return fmt.Errorf("warn_cache_size %d is negative", c.WarnCacheSize)
	}
	if c.AcquireTimeout < 0 {
		return fmt.Errorf("acquire_timeout %s is negative", c.AcquireTimeout)
	}
	return nil
}

// Options lowers the configuration to engine options. Call Validate
// first; unparseable values are skipped here.
func (c *Config) Options() []flare.Option {
	var opts []flare.Option
	if c.SampleCount != 0 {
		opts = append(opts, flare.WithSampleCount(c.SampleCount))
	}
	if c.PresentMode != "" {
		if mode, err := ParsePresentMode(c.PresentMode); err == nil {
			opts = append(opts, flare.WithPresentMode(mode))
		}
	}
	if c.DepthFormat != "" {
		if format, err := ParseDepthFormat(c.DepthFormat); err == nil {
			opts = append(opts, flare.WithDepthFormat(format))
		}
	}
	if len(c.ClearColor) == 4 {
		opts = append(opts, flare.WithClearColor(gpucore.Color{
			R: c.ClearColor[0], G: c.ClearColor[1], B: c.ClearColor[2], A: c.ClearColor[3],
		}))
	}
	if c.LogLevel != "" {
		if level, err := logging.ParseLevel(c.LogLevel); err == nil {
			opts = append(opts, flare.WithLogger(logging.NewConsole(os.Stderr, level)))
		}
	}
	if c.WarnCacheSize > 0 {
		opts = append(opts, flare.WithWarnCache(c.WarnCacheSize))
	}
	if c.AcquireTimeout > 0 {
		opts = append(opts, flare.WithAcquireTimeout(c.AcquireTimeout))
	}
	return opts
}

// ParsePresentMode converts a config string to a present mode.
func ParsePresentMode(s string) (gpucore.PresentMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fifo", "vsync":
		return gpucore.PresentModeFifo, nil
	case "fifo-relaxed":
		return gpucore.PresentModeFifoRelaxed, nil
	case "immediate", "no-vsync":
		return gpucore.PresentModeImmediate, nil
	case "mailbox":
		return gpucore.PresentModeMailbox, nil
	case "auto-vsync":
		return gpucore.PresentModeAutoVsync, nil
	case "auto-no-vsync":
		return gpucore.PresentModeAutoNoVsync, nil
	default:
		return 0, fmt.Errorf("unknown present_mode %q", s)
	}
}

// ParseDepthFormat converts a config string to a depth texture format.
func ParseDepthFormat(s string) (gpucore.TextureFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "depth32float":
		return gpucore.TextureFormatDepth32Float, nil
	case "depth24plus-stencil8":
		return gpucore.TextureFormatDepth24PlusStencil8, nil
	default:
		return 0, fmt.Errorf("unknown depth_format %q", s)
	}
}
