// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/flare/gpucore"
)

// textureView wraps a hal texture view.
type textureView struct {
	label string
	view  hal.TextureView
}

func (v *textureView) Label() string { return v.label }

// texture wraps a hal texture and its default view.
type texture struct {
	dev    *Device
	tex    hal.Texture
	view   *textureView
	label  string
	format gpucore.TextureFormat
}

func (t *texture) Label() string                 { return t.label }
func (t *texture) Format() gpucore.TextureFormat { return t.format }

func (t *texture) View() (gpucore.TextureView, error) {
	return t.view, nil
}

func (t *texture) Destroy() {
	t.dev.mu.Lock()
	defer t.dev.mu.Unlock()
	if t.dev.dev == nil {
		return
	}
	if t.view != nil {
		t.dev.dev.DestroyTextureView(t.view.view)
		t.view = nil
	}
	if t.tex != nil {
		t.dev.dev.DestroyTexture(t.tex)
		t.tex = nil
	}
}

// buffer wraps a hal buffer.
type buffer struct {
	dev   *Device
	buf   hal.Buffer
	label string
	size  uint64
}

func (b *buffer) Label() string { return b.label }
func (b *buffer) Size() uint64  { return b.size }

func (b *buffer) Destroy() {
	b.dev.mu.Lock()
	defer b.dev.mu.Unlock()
	if b.dev.dev == nil || b.buf == nil {
		return
	}
	b.dev.dev.DestroyBuffer(b.buf)
	b.buf = nil
}

// pipeline wraps a hal render pipeline together with the shader module
// and layouts it was built from.
type pipeline struct {
	dev         *Device
	rp          hal.RenderPipeline
	pipeLayout  hal.PipelineLayout
	bindLayouts []hal.BindGroupLayout
	shader      hal.ShaderModule
	label       string
}

func (p *pipeline) Label() string { return p.label }

func (p *pipeline) Destroy() {
	p.dev.mu.Lock()
	defer p.dev.mu.Unlock()
	p.destroyLocked()
}

// destroyLocked releases in reverse creation order. Callers hold dev.mu.
func (p *pipeline) destroyLocked() {
	if p.dev.dev == nil {
		return
	}
	if p.rp != nil {
		p.dev.dev.DestroyRenderPipeline(p.rp)
		p.rp = nil
	}
	if p.pipeLayout != nil {
		p.dev.dev.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	for _, l := range p.bindLayouts {
		p.dev.dev.DestroyBindGroupLayout(l)
	}
	p.bindLayouts = nil
	if p.shader != nil {
		p.dev.dev.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}

// bindGroup wraps a hal bind group and the layout it owns.
type bindGroup struct {
	dev    *Device
	bg     hal.BindGroup
	layout hal.BindGroupLayout
	label  string
}

func (g *bindGroup) Label() string { return g.label }

func (g *bindGroup) Destroy() {
	g.dev.mu.Lock()
	defer g.dev.mu.Unlock()
	if g.dev.dev == nil {
		return
	}
	if g.bg != nil {
		g.dev.dev.DestroyBindGroup(g.bg)
		g.bg = nil
	}
	if g.layout != nil {
		g.dev.dev.DestroyBindGroupLayout(g.layout)
		g.layout = nil
	}
}
