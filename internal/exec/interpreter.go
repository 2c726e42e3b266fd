// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package exec walks a frame's command list and turns it into device
// calls.
//
// Render runs in two phases. The first phase validates the whole list
// against the ordering and binding invariants using only the resource
// table; no device call is issued, so a rejected list costs nothing on
// the GPU and nothing is partially presented. The second phase acquires
// a frame and replays the list against the device encoder.
package exec

import (
	"errors"
	"fmt"

	"github.com/gogpu/flare/attachment"
	"github.com/gogpu/flare/cache"
	"github.com/gogpu/flare/gpucore"
	"github.com/gogpu/flare/logging"
	"github.com/gogpu/flare/resource"
	"github.com/gogpu/flare/surface"
	"github.com/gogpu/flare/validate"
)

// Device is the slice of gpucore.Device the interpreter needs.
type Device interface {
	NewEncoder(label string) (gpucore.CommandEncoder, error)
}

// Interpreter executes one command list per Render call. Single-threaded
// by contract: one Render completes, including present, before the next
// frame's list is built.
type Interpreter struct {
	device Device
	surf   *surface.Manager
	table  *resource.Table
	attach *attachment.Cache
	log    logging.Logger
	warns  *cache.Dedup

	// Minimum uniform-buffer dynamic-offset alignment from the device
	// limits. Zero disables the alignment check.
	offsetAlign uint32
}

// Config collects the interpreter's collaborators.
type Config struct {
	Device      Device
	Surface     *surface.Manager
	Table       *resource.Table
	Attachments *attachment.Cache
	Log         logging.Logger
	Warns       *cache.Dedup
	OffsetAlign uint32
}

// New returns an interpreter over cfg. Log and Warns may be nil.
func New(cfg Config) *Interpreter {
	log := cfg.Log
	if log == nil {
		log = logging.Nop()
	}
	warns := cfg.Warns
	if warns == nil {
		warns = cache.NewDedup(0)
	}
	return &Interpreter{
		device:      cfg.Device,
		surf:        cfg.Surface,
		table:       cfg.Table,
		attach:      cfg.Attachments,
		log:         log,
		warns:       warns,
		offsetAlign: cfg.OffsetAlign,
	}
}

// passState tracks the open pass during a walk. The same state shape
// drives both the validation and the execution phase.
type passState struct {
	open     bool
	pipeline *resource.Pipeline
	bound    validate.SlotSet
}

func (s *passState) reset() { *s = passState{} }

// Render validates commands, then acquires a frame, replays the list,
// submits and presents. An acquisition failure classified Outdated
// triggers exactly one reconfigure-and-retry with the last known size;
// every other failure drops the frame and propagates.
func (in *Interpreter) Render(commands []gpucore.Command) error {
	if err := in.validate(commands); err != nil {
		return err
	}

	frame, err := in.surf.AcquireFrame()
	if errors.Is(err, gpucore.ErrSurfaceOutdated) {
		in.log.Debug("surface outdated, reconfiguring %v", in.surf.Size())
		if rerr := in.surf.Resize(in.surf.Size()); rerr != nil {
			return fmt.Errorf("exec: reconfigure after outdated: %w", rerr)
		}
		in.attach.Invalidate()
		frame, err = in.surf.AcquireFrame()
	}
	if err != nil {
		return fmt.Errorf("exec: acquire frame: %w", err)
	}

	if err := in.execute(commands, frame); err != nil {
		frame.Discard()
		return err
	}
	if err := frame.Present(); err != nil {
		return fmt.Errorf("exec: present: %w", err)
	}
	return nil
}

func cmdErr(index int, c gpucore.Command, err error) error {
	return fmt.Errorf("exec: command %d (%s): %w", index, c.Kind(), err)
}

func passRequired(index int, c gpucore.Command) error {
	return cmdErr(index, c, fmt.Errorf("%w: requires an open render pass", gpucore.ErrValidation))
}

// validate checks the full list against the resource table and the
// ordering invariants without touching the device.
func (in *Interpreter) validate(commands []gpucore.Command) error {
	var st passState
	for i, c := range commands {
		switch cmd := c.(type) {
		case gpucore.BeginRenderPass:
			if st.open {
				return cmdErr(i, c, fmt.Errorf("%w: render pass already open", gpucore.ErrValidation))
			}
			if _, err := in.table.GetKind(cmd.RenderPass, resource.KindRenderPass); err != nil {
				return cmdErr(i, c, err)
			}
			st.open = true

		case gpucore.EndRenderPass:
			if !st.open {
				return cmdErr(i, c, fmt.Errorf("%w: no render pass open", gpucore.ErrValidation))
			}
			st.reset()

		case gpucore.SetPipeline:
			if !st.open {
				return passRequired(i, c)
			}
			p, err := in.resolvePipeline(cmd.Pipeline)
			if err != nil {
				return cmdErr(i, c, err)
			}
			st.pipeline = p

		case gpucore.SetViewports, gpucore.SetScissors:
			if !st.open {
				return passRequired(i, c)
			}

		case gpucore.SetBindGroup:
			if !st.open {
				return passRequired(i, c)
			}
			bg, err := in.resolveBindGroup(cmd.Group)
			if err != nil {
				return cmdErr(i, c, err)
			}
			if err := validate.DynamicOffsets(bg.DynamicCount, cmd.DynamicOffsets, in.offsetAlign, cmd.Set); err != nil {
				return cmdErr(i, c, err)
			}

		case gpucore.BindVertexBuffer:
			if !st.open {
				return passRequired(i, c)
			}
			p, err := in.resolvePipeline(cmd.Pipeline)
			if err != nil {
				return cmdErr(i, c, err)
			}
			if _, err := in.slotBuffer(p, cmd.Slot); err != nil {
				return cmdErr(i, c, err)
			}
			st.bound.Add(cmd.Slot)

		case gpucore.BindIndexBuffer:
			if !st.open {
				return passRequired(i, c)
			}
			if _, err := in.resolveBuffer(cmd.Buffer); err != nil {
				return cmdErr(i, c, err)
			}

		case gpucore.PushConstants:
			if !st.open {
				return passRequired(i, c)
			}
			p, err := in.resolvePipeline(cmd.Pipeline)
			if err != nil {
				return cmdErr(i, c, err)
			}
			if err := checkPushConstants(p, cmd); err != nil {
				return cmdErr(i, c, err)
			}

		case gpucore.Draw:
			if err := in.checkDraw(&st, "Draw", cmd.Vertices, cmd.Instances); err != nil {
				return cmdErr(i, c, err)
			}

		case gpucore.DrawIndexed:
			if err := in.checkDraw(&st, "DrawIndexed", cmd.Indices, cmd.Instances); err != nil {
				return cmdErr(i, c, err)
			}

		default:
			return cmdErr(i, c, fmt.Errorf("%w: unknown command", gpucore.ErrValidation))
		}
	}
	if st.open {
		return fmt.Errorf("exec: %w: render pass left open at end of command list", gpucore.ErrValidation)
	}
	return nil
}

// checkDraw validates a draw against the current pass state. elements is
// the vertex range for Draw and the index range for DrawIndexed. Index
// buffer residency is the device's concern, not checked here.
func (in *Interpreter) checkDraw(st *passState, name string, elements, instances gpucore.Range) error {
	if !st.open {
		return fmt.Errorf("%w: requires an open render pass", gpucore.ErrValidation)
	}
	if st.pipeline == nil {
		return fmt.Errorf("%w: %s without a pipeline set in this pass", gpucore.ErrValidation, name)
	}
	if err := validate.InstanceRange(name, elements); err != nil {
		return err
	}
	if err := validate.InstanceRange(name, instances); err != nil {
		return err
	}
	if instances.Count() > 1 {
		if err := validate.InstanceBindings(st.pipeline.Desc.Label, st.pipeline.PerInstance, st.bound); err != nil {
			return err
		}
	}
	return nil
}

func checkPushConstants(p *resource.Pipeline, cmd gpucore.PushConstants) error {
	r := p.Desc.PushConstants
	if r == nil || r.Stages&cmd.Stage == 0 {
		return fmt.Errorf("%w: pipeline %q declares no push constants for stage %s",
			gpucore.ErrValidation, p.Desc.Label, cmd.Stage)
	}
	if size := cmd.Offset + 4*uint32(len(cmd.Data)); size > r.Size {
		return fmt.Errorf("%w: push constant write of %d bytes exceeds declared range of %d bytes",
			gpucore.ErrValidation, size, r.Size)
	}
	return nil
}

// execute replays a validated list against the device. The encoder is
// created lazily at the first BeginRenderPass so an empty list submits
// nothing.
func (in *Interpreter) execute(commands []gpucore.Command, frame gpucore.SurfaceFrame) (err error) {
	var (
		enc gpucore.CommandEncoder
		rp  gpucore.RenderPassEncoder
		st  passState
	)
	defer func() {
		if err != nil && enc != nil {
			enc.Discard()
		}
	}()

	for i, c := range commands {
		switch cmd := c.(type) {
		case gpucore.BeginRenderPass:
			enc, rp, st, err = in.beginPass(enc, cmd, frame)
			if err != nil {
				return cmdErr(i, c, err)
			}

		case gpucore.EndRenderPass:
			if err := rp.End(); err != nil {
				return cmdErr(i, c, err)
			}
			rp = nil
			st.reset()

		case gpucore.SetPipeline:
			p, _ := in.resolvePipeline(cmd.Pipeline)
			if err := rp.SetPipeline(p.GPU); err != nil {
				return cmdErr(i, c, err)
			}
			st.pipeline = p

		case gpucore.SetViewports:
			in.applyViewports(rp, cmd.StartAt, cmd.Viewports, false)

		case gpucore.SetScissors:
			in.applyViewports(rp, cmd.StartAt, cmd.Viewports, true)

		case gpucore.SetBindGroup:
			bg, _ := in.resolveBindGroup(cmd.Group)
			if err := rp.SetBindGroup(cmd.Set, bg.GPU, cmd.DynamicOffsets); err != nil {
				return cmdErr(i, c, err)
			}

		case gpucore.BindVertexBuffer:
			p, _ := in.resolvePipeline(cmd.Pipeline)
			buf, rerr := in.slotBuffer(p, cmd.Slot)
			if rerr != nil {
				return cmdErr(i, c, rerr)
			}
			if err := rp.SetVertexBuffer(cmd.Slot, buf.GPU); err != nil {
				return cmdErr(i, c, err)
			}
			st.bound.Add(cmd.Slot)

		case gpucore.BindIndexBuffer:
			buf, _ := in.resolveBuffer(cmd.Buffer)
			if err := rp.SetIndexBuffer(buf.GPU, cmd.Format); err != nil {
				return cmdErr(i, c, err)
			}

		case gpucore.PushConstants:
			err := rp.SetPushConstants(cmd.Stage, cmd.Offset, cmd.Data)
			if errors.Is(err, gpucore.ErrUnsupported) {
				in.warnOnce("push-constants", "push constants unsupported by this backend, skipping")
				continue
			}
			if err != nil {
				return cmdErr(i, c, err)
			}

		case gpucore.Draw:
			if err := rp.Draw(cmd.Vertices, cmd.Instances); err != nil {
				return cmdErr(i, c, err)
			}

		case gpucore.DrawIndexed:
			if err := rp.DrawIndexed(cmd.Indices, cmd.BaseVertex, cmd.Instances); err != nil {
				return cmdErr(i, c, err)
			}
		}
	}

	if enc == nil {
		// Nothing was encoded; still a successful (empty) frame.
		return nil
	}
	if err := enc.Submit(); err != nil {
		enc = nil // Submit consumed the encoder, do not Discard again.
		return fmt.Errorf("exec: submit: %w", err)
	}
	enc = nil
	return nil
}

// beginPass opens a device-level pass scope, creating the frame encoder
// on first use so an invalid or empty list never touches the device.
func (in *Interpreter) beginPass(enc gpucore.CommandEncoder, cmd gpucore.BeginRenderPass, frame gpucore.SurfaceFrame) (gpucore.CommandEncoder, gpucore.RenderPassEncoder, passState, error) {
	var st passState

	obj, err := in.table.GetKind(cmd.RenderPass, resource.KindRenderPass)
	if err != nil {
		return enc, nil, st, err
	}
	pass := obj.(*resource.RenderPass)

	if enc == nil {
		enc, err = in.device.NewEncoder(pass.Desc.Label)
		if err != nil {
			return nil, nil, st, fmt.Errorf("%w: create encoder: %v", gpucore.ErrDevice, err)
		}
	}

	size := in.surf.Size()
	att, err := in.attach.AttachmentsFor(pass.Desc, frame.View(), in.surf.Format(), size.Width, size.Height)
	if err != nil {
		return enc, nil, st, err
	}

	rp, err := enc.BeginRenderPass(gpucore.PassEncoding{
		Label:        pass.Desc.Label,
		Color:        []gpucore.ColorAttachment{att.Color},
		DepthStencil: att.DepthStencil,
	})
	if err != nil {
		return enc, nil, st, fmt.Errorf("%w: begin render pass: %v", gpucore.ErrDevice, err)
	}

	if v := cmd.Viewport; v.Width > 0 && v.Height > 0 {
		rp.SetViewport(v)
		rp.SetScissor(uint32(v.X), uint32(v.Y), uint32(v.Width), uint32(v.Height))
	}

	st.open = true
	return enc, rp, st, nil
}

// applyViewports lowers a multi-viewport command onto the single-slot
// encoder. Only slot 0 is supported; anything else is skipped with one
// deduplicated warning.
func (in *Interpreter) applyViewports(rp gpucore.RenderPassEncoder, startAt uint32, vps []gpucore.Viewport, scissor bool) {
	if len(vps) == 0 {
		return
	}
	if startAt != 0 || len(vps) > 1 {
		in.warnOnce("multi-viewport", "multiple viewport slots requested, applying slot 0 only")
	}
	if startAt != 0 {
		return
	}
	v := vps[0]
	if scissor {
		rp.SetScissor(uint32(v.X), uint32(v.Y), uint32(v.Width), uint32(v.Height))
		return
	}
	rp.SetViewport(v)
}

func (in *Interpreter) warnOnce(key, format string, args ...any) {
	if in.warns.Seen(key) {
		return
	}
	in.log.Warn(format, args...)
}

func (in *Interpreter) resolvePipeline(id gpucore.ID) (*resource.Pipeline, error) {
	obj, err := in.table.GetKind(id, resource.KindPipeline)
	if err != nil {
		return nil, err
	}
	return obj.(*resource.Pipeline), nil
}

func (in *Interpreter) resolveBindGroup(id gpucore.ID) (*resource.BindGroup, error) {
	obj, err := in.table.GetKind(id, resource.KindBindGroup)
	if err != nil {
		return nil, err
	}
	return obj.(*resource.BindGroup), nil
}

func (in *Interpreter) resolveBuffer(id gpucore.ID) (*resource.Buffer, error) {
	obj, err := in.table.GetKind(id, resource.KindBuffer)
	if err != nil {
		return nil, err
	}
	return obj.(*resource.Buffer), nil
}

// slotBuffer resolves the buffer a pipeline's vertex slot names.
func (in *Interpreter) slotBuffer(p *resource.Pipeline, slot uint32) (*resource.Buffer, error) {
	if int(slot) >= len(p.Desc.VertexBuffers) {
		return nil, fmt.Errorf("%w: pipeline %q has %d vertex buffer slots, slot %d requested",
			gpucore.ErrValidation, p.Desc.Label, len(p.Desc.VertexBuffers), slot)
	}
	return in.resolveBuffer(p.Desc.VertexBuffers[slot].Buffer)
}
