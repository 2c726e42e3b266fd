// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package webgpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gogpu/flare/gpucore"
)

// commandEncoder records one frame on a wgpu command encoder.
type commandEncoder struct {
	dev  *Device
	enc  *wgpu.CommandEncoder
	done bool
}

// BeginRenderPass opens a wgpu render pass with the resolved
// attachments.
func (c *commandEncoder) BeginRenderPass(enc gpucore.PassEncoding) (gpucore.RenderPassEncoder, error) {
	if c.done {
		return nil, fmt.Errorf("webgpu: encoder already submitted: %w", gpucore.ErrValidation)
	}

	colors := make([]wgpu.RenderPassColorAttachment, len(enc.Color))
	for i, att := range enc.Color {
		view, err := unwrapView(att.View)
		if err != nil {
			return nil, err
		}
		colors[i] = wgpu.RenderPassColorAttachment{
			View:    view,
			LoadOp:  toWGPULoadOp(att.Load),
			StoreOp: toWGPUStoreOp(att.Store),
			ClearValue: wgpu.Color{
				R: att.Clear.R,
				G: att.Clear.G,
				B: att.Clear.B,
				A: att.Clear.A,
			},
		}
		if att.ResolveTarget != nil {
			resolve, err := unwrapView(att.ResolveTarget)
			if err != nil {
				return nil, err
			}
			colors[i].ResolveTarget = resolve
		}
	}

	desc := &wgpu.RenderPassDescriptor{
		Label:            enc.Label,
		ColorAttachments: colors,
	}
	if enc.DepthStencil != nil {
		view, err := unwrapView(enc.DepthStencil.View)
		if err != nil {
			return nil, err
		}
		desc.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            view,
			DepthLoadOp:     toWGPULoadOp(enc.DepthStencil.DepthLoad),
			DepthStoreOp:    toWGPUStoreOp(enc.DepthStencil.DepthStore),
			DepthClearValue: enc.DepthStencil.DepthClear,
		}
	}

	rp := c.enc.BeginRenderPass(desc)
	return &passEncoder{rp: rp}, nil
}

// Submit finishes the recording and hands it to the queue.
func (c *commandEncoder) Submit() error {
	if c.done {
		return fmt.Errorf("webgpu: encoder already consumed: %w", gpucore.ErrValidation)
	}
	c.done = true

	cmdBuf, err := c.enc.Finish(nil)
	if err != nil {
		c.enc.Release()
		c.enc = nil
		return fmt.Errorf("webgpu: finish encoding: %v: %w", err, gpucore.ErrDevice)
	}
	c.dev.queue.Submit(cmdBuf)
	cmdBuf.Release()
	c.enc.Release()
	c.enc = nil
	return nil
}

// Discard abandons the recording.
func (c *commandEncoder) Discard() {
	if c.done {
		return
	}
	c.done = true
	c.enc.Release()
	c.enc = nil
}

// passEncoder translates gpucore pass commands to a wgpu render pass.
type passEncoder struct {
	rp *wgpu.RenderPassEncoder
}

func (p *passEncoder) SetViewport(v gpucore.Viewport) {
	p.rp.SetViewport(v.X, v.Y, v.Width, v.Height, v.MinDepth, v.MaxDepth)
}

func (p *passEncoder) SetScissor(x, y, width, height uint32) {
	p.rp.SetScissorRect(x, y, width, height)
}

func (p *passEncoder) SetPipeline(pl gpucore.Pipeline) error {
	native, ok := pl.(*pipeline)
	if !ok {
		return fmt.Errorf("webgpu: foreign pipeline %T: %w", pl, gpucore.ErrValidation)
	}
	p.rp.SetPipeline(native.rp)
	return nil
}

func (p *passEncoder) SetBindGroup(set uint32, g gpucore.BindGroup, dynamicOffsets []uint32) error {
	native, ok := g.(*bindGroup)
	if !ok {
		return fmt.Errorf("webgpu: foreign bind group %T: %w", g, gpucore.ErrValidation)
	}
	p.rp.SetBindGroup(set, native.bg, dynamicOffsets)
	return nil
}

func (p *passEncoder) SetVertexBuffer(slot uint32, buf gpucore.Buffer) error {
	native, ok := buf.(*buffer)
	if !ok {
		return fmt.Errorf("webgpu: foreign buffer %T: %w", buf, gpucore.ErrValidation)
	}
	p.rp.SetVertexBuffer(slot, native.buf, 0, wgpu.WholeSize)
	return nil
}

func (p *passEncoder) SetIndexBuffer(buf gpucore.Buffer, format gpucore.IndexFormat) error {
	native, ok := buf.(*buffer)
	if !ok {
		return fmt.Errorf("webgpu: foreign buffer %T: %w", buf, gpucore.ErrValidation)
	}
	p.rp.SetIndexBuffer(native.buf, toWGPUIndexFormat(format), 0, wgpu.WholeSize)
	return nil
}

// SetPushConstants is not part of core WebGPU.
func (p *passEncoder) SetPushConstants(_ gpucore.ShaderStage, _ uint32, _ []uint32) error {
	return fmt.Errorf("webgpu: push constants: %w", gpucore.ErrUnsupported)
}

func (p *passEncoder) Draw(vertices, instances gpucore.Range) error {
	p.rp.Draw(vertices.Count(), instances.Count(), vertices.Start, instances.Start)
	return nil
}

func (p *passEncoder) DrawIndexed(indices gpucore.Range, baseVertex int32, instances gpucore.Range) error {
	p.rp.DrawIndexed(indices.Count(), instances.Count(), indices.Start, baseVertex, instances.Start)
	return nil
}

func (p *passEncoder) End() error {
	p.rp.End()
	p.rp.Release()
	return nil
}

// unwrapView extracts the wgpu view from a gpucore.TextureView created
// by this backend.
func unwrapView(v gpucore.TextureView) (*wgpu.TextureView, error) {
	native, ok := v.(*textureView)
	if !ok {
		return nil, fmt.Errorf("webgpu: foreign texture view %T: %w", v, gpucore.ErrValidation)
	}
	return native.view, nil
}
