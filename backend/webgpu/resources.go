// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package webgpu

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gogpu/flare/gpucore"
)

// textureView wraps a wgpu texture view.
type textureView struct {
	label string
	view  *wgpu.TextureView
}

func (v *textureView) Label() string { return v.label }

// texture wraps a wgpu texture and its default view.
type texture struct {
	tex    *wgpu.Texture
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
	if t.view != nil {
		t.view.view.Release()
		t.view = nil
	}
	if t.tex != nil {
		t.tex.Release()
		t.tex = nil
	}
}

// buffer wraps a wgpu buffer.
type buffer struct {
	buf   *wgpu.Buffer
	label string
	size  uint64
}

func (b *buffer) Label() string { return b.label }
func (b *buffer) Size() uint64  { return b.size }

func (b *buffer) Destroy() {
	if b.buf != nil {
		b.buf.Release()
		b.buf = nil
	}
}

// pipeline wraps a wgpu render pipeline and the objects it was built
// from. Destroy releases in reverse creation order.
type pipeline struct {
	rp          *wgpu.RenderPipeline
	pipeLayout  *wgpu.PipelineLayout
	bindLayouts []*wgpu.BindGroupLayout
	shader      *wgpu.ShaderModule
	label       string
}

func (p *pipeline) Label() string { return p.label }

func (p *pipeline) Destroy() {
	if p.rp != nil {
		p.rp.Release()
		p.rp = nil
	}
	if p.pipeLayout != nil {
		p.pipeLayout.Release()
		p.pipeLayout = nil
	}
	for _, l := range p.bindLayouts {
		l.Release()
	}
	p.bindLayouts = nil
	if p.shader != nil {
		p.shader.Release()
		p.shader = nil
	}
}

// bindGroup wraps a wgpu bind group and the layout it owns.
type bindGroup struct {
	bg     *wgpu.BindGroup
	layout *wgpu.BindGroupLayout
	label  string
}

func (g *bindGroup) Label() string { return g.label }

func (g *bindGroup) Destroy() {
	if g.bg != nil {
		g.bg.Release()
		g.bg = nil
	}
	if g.layout != nil {
		g.layout.Release()
		g.layout = nil
	}
}
