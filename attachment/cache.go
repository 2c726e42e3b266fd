// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package attachment caches the transient render-target textures a frame
// needs beyond the surface itself: the multisampled color target that
// resolves into the surface view, and the optional depth buffer.
//
// Rebuilds happen only when the cache key (format, size, sample count,
// depth format) changes, typically on resize or a sample-count switch.
// Steady-state frames reuse the cached textures without touching the
// device.
package attachment

import (
	"fmt"

	"github.com/gogpu/flare/gpucore"
)

// TextureCreator is the slice of the device the cache needs.
// gpucore.Device satisfies it.
type TextureCreator interface {
	CreateTexture(desc gpucore.TextureDesc) (gpucore.Texture, error)
}

// Attachments is the per-pass result: a color attachment wired for
// direct or resolve rendering, and a depth attachment when the pass
// declares a depth format.
type Attachments struct {
	Color        gpucore.ColorAttachment
	DepthStencil *gpucore.DepthStencilAttachment
}

// Stats counts cache activity. Builds is the number of device texture
// builds; Hits the number of frames served from cache.
type Stats struct {
	Builds uint64
	Hits   uint64
}

type key struct {
	format      gpucore.TextureFormat
	width       uint32
	height      uint32
	sampleCount uint32
	depthFormat gpucore.TextureFormat
}

// Cache holds at most one set of attachment textures, keyed by the last
// pass parameters. Not safe for concurrent use.
type Cache struct {
	device TextureCreator

	key   key
	valid bool

	color     gpucore.Texture
	colorView gpucore.TextureView
	depth     gpucore.Texture
	depthView gpucore.TextureView

	stats Stats
}

// New returns an empty cache creating textures through device.
func New(device TextureCreator) *Cache {
	return &Cache{device: device}
}

// AttachmentsFor returns the attachments for one pass over the acquired
// surface view.
//
// With sampleCount <= 1 the color attachment targets surfaceView
// directly with no resolve and no allocation. Otherwise the cached MSAA
// texture is reused when (format, width, height, sampleCount,
// depthFormat) is unchanged, and rebuilt when any component differs.
func (c *Cache) AttachmentsFor(desc gpucore.RenderPassDesc, surfaceView gpucore.TextureView, format gpucore.TextureFormat, width, height uint32) (Attachments, error) {
	samples := desc.SampleCount
	if samples == 0 {
		samples = 1
	}

	out := Attachments{
		Color: gpucore.ColorAttachment{
			View:  surfaceView,
			Load:  desc.ColorLoad,
			Store: desc.ColorStore,
			Clear: desc.ClearColor,
		},
	}

	needMSAA := samples > 1
	needDepth := desc.DepthFormat != gpucore.TextureFormatUndefined
	if !needMSAA && !needDepth {
		return out, nil
	}

	k := key{format: format, width: width, height: height, sampleCount: samples, depthFormat: desc.DepthFormat}
	if !c.valid || c.key != k {
		if err := c.rebuild(k, needMSAA, needDepth); err != nil {
			return Attachments{}, err
		}
	} else {
		c.stats.Hits++
	}

	if needMSAA {
		out.Color.View = c.colorView
		out.Color.ResolveTarget = surfaceView
	}
	if needDepth {
		out.DepthStencil = &gpucore.DepthStencilAttachment{
			View:       c.depthView,
			DepthLoad:  gpucore.LoadOpClear,
			DepthStore: gpucore.StoreOpDiscard,
			DepthClear: desc.DepthClear,
		}
	}
	return out, nil
}

func (c *Cache) rebuild(k key, needMSAA, needDepth bool) error {
	c.destroy()

	if needMSAA {
		tex, err := c.device.CreateTexture(gpucore.TextureDesc{
			Label:       "flare msaa color",
			Width:       k.width,
			Height:      k.height,
			Format:      k.format,
			Usage:       gpucore.TextureUsageRenderAttachment,
			SampleCount: k.sampleCount,
		})
		if err != nil {
			return fmt.Errorf("attachment: msaa color %dx%d x%d: %w", k.width, k.height, k.sampleCount, err)
		}
		view, err := tex.View()
		if err != nil {
			tex.Destroy()
			return fmt.Errorf("attachment: msaa color view: %w", err)
		}
		c.color, c.colorView = tex, view
	}

	if needDepth {
		tex, err := c.device.CreateTexture(gpucore.TextureDesc{
			Label:       "flare depth",
			Width:       k.width,
			Height:      k.height,
			Format:      k.depthFormat,
			Usage:       gpucore.TextureUsageRenderAttachment,
			SampleCount: k.sampleCount,
		})
		if err != nil {
			c.destroy()
			return fmt.Errorf("attachment: depth %dx%d: %w", k.width, k.height, err)
		}
		view, err := tex.View()
		if err != nil {
			tex.Destroy()
			c.destroy()
			return fmt.Errorf("attachment: depth view: %w", err)
		}
		c.depth, c.depthView = tex, view
	}

	c.key = k
	c.valid = true
	c.stats.Builds++
	return nil
}

// Invalidate drops the cached entry and destroys its textures. Called on
// resize so the next frame rebuilds at the new size.
func (c *Cache) Invalidate() {
	c.destroy()
	c.valid = false
}

// Release destroys everything the cache owns. The cache is reusable
// afterwards; Release exists for engine teardown.
func (c *Cache) Release() {
	c.Invalidate()
}

// Stats returns a snapshot of build and hit counters.
func (c *Cache) Stats() Stats { return c.stats }

func (c *Cache) destroy() {
	if c.color != nil {
		c.color.Destroy()
		c.color, c.colorView = nil, nil
	}
	if c.depth != nil {
		c.depth.Destroy()
		c.depth, c.depthView = nil, nil
	}
}
