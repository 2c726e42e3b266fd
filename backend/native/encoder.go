// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/flare/gpucore"
)

// commandEncoder records one frame on a hal command encoder and blocks
// on submission completion in Submit.
type commandEncoder struct {
	dev  *Device
	enc  hal.CommandEncoder
	done bool
}

// gpuIdler and submissionPoller are the two slices of the hal that the
// post-submit wait needs.
type gpuIdler interface {
	WaitIdle() error
}

type submissionPoller interface {
	PollCompleted() uint64
}

// waitSubmission blocks until the queue has retired the submission.
// WaitIdle drains the queue; PollCompleted then reports the newest
// completed submission index.
func waitSubmission(dev gpuIdler, queue submissionPoller, index uint64) error {
	if err := dev.WaitIdle(); err != nil {
		return fmt.Errorf("wait idle: %w", err)
	}
	if done := queue.PollCompleted(); done < index {
		return fmt.Errorf("submission %d not retired, last completed %d", index, done)
	}
	return nil
}

// BeginRenderPass opens a hal render pass with the resolved attachments.
func (c *commandEncoder) BeginRenderPass(enc gpucore.PassEncoding) (gpucore.RenderPassEncoder, error) {
	if c.done {
		return nil, fmt.Errorf("native: encoder already submitted: %w", gpucore.ErrValidation)
	}

	colors := make([]hal.RenderPassColorAttachment, len(enc.Color))
	for i, att := range enc.Color {
		view, err := unwrapView(att.View)
		if err != nil {
			return nil, err
		}
		colors[i] = hal.RenderPassColorAttachment{
			View:       view,
			LoadOp:     toHALLoadOp(att.Load),
			StoreOp:    toHALStoreOp(att.Store),
			ClearValue: toHALColor(att.Clear),
		}
		if att.ResolveTarget != nil {
			resolve, err := unwrapView(att.ResolveTarget)
			if err != nil {
				return nil, err
			}
			colors[i].ResolveTarget = resolve
		}
	}

	desc := &hal.RenderPassDescriptor{
		Label:            enc.Label,
		ColorAttachments: colors,
	}
	if enc.DepthStencil != nil {
		view, err := unwrapView(enc.DepthStencil.View)
		if err != nil {
			return nil, err
		}
		desc.DepthStencilAttachment = &hal.RenderPassDepthStencilAttachment{
			View:            view,
			DepthLoadOp:     toHALLoadOp(enc.DepthStencil.DepthLoad),
			DepthStoreOp:    toHALStoreOp(enc.DepthStencil.DepthStore),
			DepthClearValue: enc.DepthStencil.DepthClear,
		}
	}

	rp := c.enc.BeginRenderPass(desc)
	return &passEncoder{rp: rp}, nil
}

// Submit finishes encoding, submits to the queue and blocks until the
// queue has retired the submission.
func (c *commandEncoder) Submit() error {
	if c.done {
		return fmt.Errorf("native: encoder already consumed: %w", gpucore.ErrValidation)
	}
	c.done = true

	cmdBuf, err := c.enc.EndEncoding()
	if err != nil {
		c.enc.Destroy()
		return fmt.Errorf("native: end encoding: %v: %w", err, gpucore.ErrDevice)
	}

	index, err := c.dev.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		return fmt.Errorf("native: submit: %v: %w", err, gpucore.ErrDevice)
	}
	if err := waitSubmission(c.dev.dev, c.dev.queue, index); err != nil {
		// The command buffer may still be in flight; leak it rather
		// than free under the GPU.
		return fmt.Errorf("native: %v: %w", err, gpucore.ErrDevice)
	}

	c.dev.dev.FreeCommandBuffer(cmdBuf)
	c.enc.Destroy()
	return nil
}

// Discard abandons the recording.
func (c *commandEncoder) Discard() {
	if c.done {
		return
	}
	c.done = true
	c.enc.DiscardEncoding()
	c.enc.Destroy()
}

// passEncoder translates gpucore pass commands to a hal render pass.
type passEncoder struct {
	rp hal.RenderPassEncoder
}

func (p *passEncoder) SetViewport(v gpucore.Viewport) {
	p.rp.SetViewport(v.X, v.Y, v.Width, v.Height, v.MinDepth, v.MaxDepth)
}

func (p *passEncoder) SetScissor(x, y, w, h uint32) {
	p.rp.SetScissorRect(x, y, w, h)
}

func (p *passEncoder) SetPipeline(pl gpucore.Pipeline) error {
	native, ok := pl.(*pipeline)
	if !ok {
		return fmt.Errorf("native: foreign pipeline %T: %w", pl, gpucore.ErrValidation)
	}
	p.rp.SetPipeline(native.rp)
	return nil
}

func (p *passEncoder) SetBindGroup(set uint32, g gpucore.BindGroup, dynamicOffsets []uint32) error {
	native, ok := g.(*bindGroup)
	if !ok {
		return fmt.Errorf("native: foreign bind group %T: %w", g, gpucore.ErrValidation)
	}
	p.rp.SetBindGroup(set, native.bg, dynamicOffsets)
	return nil
}

func (p *passEncoder) SetVertexBuffer(slot uint32, buf gpucore.Buffer) error {
	native, ok := buf.(*buffer)
	if !ok {
		return fmt.Errorf("native: foreign buffer %T: %w", buf, gpucore.ErrValidation)
	}
	p.rp.SetVertexBuffer(slot, native.buf, 0)
	return nil
}

func (p *passEncoder) SetIndexBuffer(buf gpucore.Buffer, format gpucore.IndexFormat) error {
	native, ok := buf.(*buffer)
	if !ok {
		return fmt.Errorf("native: foreign buffer %T: %w", buf, gpucore.ErrValidation)
	}
	p.rp.SetIndexBuffer(native.buf, toHALIndexFormat(format), 0)
	return nil
}

// SetPushConstants is not supported by the hal SPIR-V path.
func (p *passEncoder) SetPushConstants(_ gpucore.ShaderStage, _ uint32, _ []uint32) error {
	return fmt.Errorf("native: push constants: %w", gpucore.ErrUnsupported)
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
	return nil
}

// unwrapView extracts the hal view from a gpucore.TextureView created by
// this backend.
func unwrapView(v gpucore.TextureView) (hal.TextureView, error) {
	native, ok := v.(*textureView)
	if !ok {
		return nil, fmt.Errorf("native: foreign texture view %T: %w", v, gpucore.ErrValidation)
	}
	return native.view, nil
}
