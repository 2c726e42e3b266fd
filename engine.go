// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package flare

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gogpu/flare/attachment"
	"github.com/gogpu/flare/cache"
	"github.com/gogpu/flare/gpucore"
	"github.com/gogpu/flare/internal/exec"
	"github.com/gogpu/flare/logging"
	"github.com/gogpu/flare/resource"
	"github.com/gogpu/flare/surface"
	"github.com/gogpu/flare/validate"
)

// ErrClosed is returned by every Engine method after Close.
var ErrClosed = errors.New("flare: engine closed")

// Engine is the frame-execution core. It owns the resource table, the
// attachment cache and the surface configuration; the device and the
// surface themselves are consumed capabilities owned by the caller.
//
// An Engine is single-threaded: one Render call completes, including
// present, before the next frame's command list is built, and attach or
// write calls are sequenced with Render by the caller.
type Engine struct {
	device gpucore.Device
	raw    gpucore.Surface
	surf   *surface.Manager
	table  *resource.Table
	attach *attachment.Cache
	interp *exec.Interpreter
	log    logging.Logger
	opts   engineOptions

	// pipelines dedups device pipeline creation by descriptor. Two
	// attaches with an identical descriptor share one GPU pipeline.
	pipelines *cache.Sharded[string, gpucore.Pipeline]

	closed bool
}

// New builds an Engine over a device and a surface. The surface is not
// configured yet; call Resize with the window size before the first
// Render.
func New(device gpucore.Device, sur gpucore.Surface, opts ...Option) (*Engine, error) {
	if device == nil || sur == nil {
		return nil, errors.New("flare: device and surface are required")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := validate.SampleCount(o.sampleCount); err != nil {
		return nil, fmt.Errorf("flare: %w", err)
	}
	if o.log == nil {
		o.log = logging.NewStructured(Logger())
	}

	info := device.Info()
	e := &Engine{
		device:    device,
		raw:       sur,
		surf:      surface.NewManager(sur, o.acquireTimeout),
		table:     resource.NewTable(),
		attach:    attachment.New(device),
		log:       o.log,
		opts:      o,
		pipelines: cache.NewSharded[string, gpucore.Pipeline](64, cache.StringHasher),
	}
	e.interp = exec.New(exec.Config{
		Device:      device,
		Surface:     e.surf,
		Table:       e.table,
		Attachments: e.attach,
		Log:         o.log,
		Warns:       cache.NewDedup(o.warnCacheSize),
		OffsetAlign: info.MinUniformBufferOffsetAlignment,
	})

	e.log.Info("device: %s (%s), max texture %d, uniform offset alignment %d",
		info.Name, info.Backend, info.MaxTextureDimension2D, info.MinUniformBufferOffsetAlignment)
	return e, nil
}

// AttachRenderPass registers a render-pass description and returns its
// handle. Zero fields inherit the engine defaults: sample count, depth
// format and clear color from the construction options. An unsupported
// sample count is clamped to 1 with a warning rather than failing; the
// pass is only exercised per frame. A closed engine returns the zero
// handle.
func (e *Engine) AttachRenderPass(desc gpucore.RenderPassDesc) gpucore.ID {
	if e.closed {
		return 0
	}
	if desc.SampleCount == 0 {
		desc.SampleCount = e.opts.sampleCount
	}
	if err := validate.SampleCount(desc.SampleCount); err != nil {
		e.log.Warn("render pass %q: %v, using 1", desc.Label, err)
		desc.SampleCount = 1
	}
	if desc.DepthFormat == gpucore.TextureFormatUndefined {
		desc.DepthFormat = e.opts.depthFormat
	}
	if desc.ClearColor == (gpucore.Color{}) {
		desc.ClearColor = e.opts.clearColor
	}
	return e.table.Attach(resource.KindRenderPass, &resource.RenderPass{Desc: desc})
}

// AttachPipeline compiles a render pipeline and returns its handle.
// Identical descriptors share one device pipeline. Zero ColorFormat,
// DepthFormat and SampleCount inherit the surface format and the engine
// defaults.
func (e *Engine) AttachPipeline(desc gpucore.PipelineDesc) (gpucore.ID, error) {
	if e.closed {
		return 0, ErrClosed
	}
	if desc.ColorFormat == gpucore.TextureFormatUndefined {
		desc.ColorFormat = e.SurfaceFormat()
	}
	if desc.DepthFormat == gpucore.TextureFormatUndefined {
		desc.DepthFormat = e.opts.depthFormat
	}
	if desc.SampleCount == 0 {
		desc.SampleCount = e.opts.sampleCount
	}
	if err := validate.SampleCount(desc.SampleCount); err != nil {
		return 0, fmt.Errorf("flare: pipeline %q: %w", desc.Label, err)
	}

	key := pipelineKey(desc)
	gpu, ok := e.pipelines.Get(key)
	if !ok {
		var err error
		gpu, err = e.device.CreateRenderPipeline(desc)
		if err != nil {
			return 0, fmt.Errorf("flare: pipeline %q: %w", desc.Label, err)
		}
		e.pipelines.Set(key, gpu)
	} else {
		e.log.Debug("pipeline %q deduplicated", desc.Label)
	}

	return e.table.Attach(resource.KindPipeline, &resource.Pipeline{
		Desc:        desc,
		GPU:         gpu,
		PerInstance: desc.PerInstanceSlots(),
	}), nil
}

// AttachBindGroup resolves the descriptor's buffer handles and creates
// the device bind group.
func (e *Engine) AttachBindGroup(desc gpucore.BindGroupDesc) (gpucore.ID, error) {
	if e.closed {
		return 0, ErrClosed
	}
	bindings := gpucore.BindGroupBindings{
		Label:    desc.Label,
		Layout:   desc.Layout,
		Bindings: make([]gpucore.BufferBinding, 0, len(desc.Entries)),
	}
	for _, entry := range desc.Entries {
		buf, err := e.buffer(entry.Buffer)
		if err != nil {
			return 0, fmt.Errorf("flare: bind group %q binding %d: %w", desc.Label, entry.Binding, err)
		}
		bindings.Bindings = append(bindings.Bindings, gpucore.BufferBinding{
			Binding: entry.Binding,
			Buffer:  buf.GPU,
			Offset:  entry.Offset,
			Size:    entry.Size,
		})
	}

	gpu, err := e.device.CreateBindGroup(bindings)
	if err != nil {
		return 0, fmt.Errorf("flare: bind group %q: %w", desc.Label, err)
	}
	return e.table.Attach(resource.KindBindGroup, &resource.BindGroup{
		Desc:         desc,
		GPU:          gpu,
		DynamicCount: desc.Layout.DynamicBindingCount(),
	}), nil
}

// AttachBuffer creates a device buffer and returns its handle.
func (e *Engine) AttachBuffer(desc gpucore.BufferDesc) (gpucore.ID, error) {
	if e.closed {
		return 0, ErrClosed
	}
	gpu, err := e.device.CreateBuffer(desc)
	if err != nil {
		return 0, fmt.Errorf("flare: buffer %q: %w", desc.Label, err)
	}
	return e.table.Attach(resource.KindBuffer, &resource.Buffer{Desc: desc, GPU: gpu}), nil
}

// Render validates and executes one frame's command list, then presents.
// See the exec package for the two-phase walk and the error contract.
func (e *Engine) Render(commands []gpucore.Command) error {
	if e.closed {
		return ErrClosed
	}
	return e.interp.Render(commands)
}

// Resize (re)configures the surface. The first call performs the initial
// configuration; later calls reconfigure and invalidate the cached
// attachment textures. Callable only between frames.
func (e *Engine) Resize(width, height uint32) error {
	if e.closed {
		return ErrClosed
	}
	size := gpucore.Extent{Width: width, Height: height}
	if _, configured := e.surf.Configuration(); !configured {
		return e.surf.Configure(size, e.opts.presentMode, gpucore.TextureUsageRenderAttachment)
	}
	if err := e.surf.Resize(size); err != nil {
		return err
	}
	e.attach.Invalidate()
	return nil
}

// SurfaceFormat returns the configured surface format, or the surface's
// preferred format before the first Resize.
func (e *Engine) SurfaceFormat() gpucore.TextureFormat {
	if f := e.surf.Format(); f != gpucore.TextureFormatUndefined {
		return f
	}
	return e.raw.PreferredFormat()
}

// DepthFormat returns the engine's default depth format; Undefined when
// depth is disabled.
func (e *Engine) DepthFormat() gpucore.TextureFormat {
	return e.opts.depthFormat
}

// SurfaceSize returns the configured surface size in pixels.
func (e *Engine) SurfaceSize() (width, height uint32) {
	size := e.surf.Size()
	return size.Width, size.Height
}

// WriteBuffer uploads raw bytes into an attached buffer. Writes are
// sequenced before the next Render by the device contract; the caller
// must not issue writes concurrently with Render.
func (e *Engine) WriteBuffer(id gpucore.ID, offset uint64, data []byte) error {
	if e.closed {
		return ErrClosed
	}
	buf, err := e.buffer(id)
	if err != nil {
		return err
	}
	return e.device.WriteBuffer(buf.GPU, offset, data)
}

// WriteBufferValue encodes value as fixed-size little-endian data and
// uploads it. value must be a fixed-size type in the encoding/binary
// sense (numeric types, arrays and structs of them).
func (e *Engine) WriteBufferValue(id gpucore.ID, offset uint64, value any) error {
	if e.closed {
		return ErrClosed
	}
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, value); err != nil {
		return fmt.Errorf("flare: encode %T: %w", value, err)
	}
	return e.WriteBuffer(id, offset, buf.Bytes())
}

// Stats returns the attachment cache counters, for tests and debugging.
func (e *Engine) Stats() attachment.Stats {
	return e.attach.Stats()
}

// Close drains the resource table in reverse insertion order, destroying
// each owned object exactly once, and releases the cached attachment
// textures. The device and the surface belong to the caller and are not
// closed. Close is idempotent.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	// Deduplicated pipelines may appear under several handles; destroy
	// each device object once.
	seen := make(map[any]bool)
	e.table.Drain(func(kind resource.Kind, obj any) {
		switch r := obj.(type) {
		case *resource.RenderPass:
			// No device object until a frame opens the pass.
		case *resource.Pipeline:
			if r.GPU != nil && !seen[r.GPU] {
				seen[r.GPU] = true
				r.GPU.Destroy()
			}
		case *resource.BindGroup:
			if r.GPU != nil {
				r.GPU.Destroy()
			}
		case *resource.Buffer:
			if r.GPU != nil {
				r.GPU.Destroy()
			}
		default:
			e.log.Warn("unknown resource kind %s at teardown", kind)
		}
	})
	e.pipelines.Clear()
	e.attach.Release()
	return nil
}

func (e *Engine) buffer(id gpucore.ID) (*resource.Buffer, error) {
	obj, err := e.table.GetKind(id, resource.KindBuffer)
	if err != nil {
		return nil, err
	}
	return obj.(*resource.Buffer), nil
}

// pipelineKey derives the dedup key from everything that affects device
// pipeline compilation. The buffer IDs in the vertex slots are engine
// bookkeeping, not compilation inputs, so they are masked out.
func pipelineKey(desc gpucore.PipelineDesc) string {
	vbs := make([]gpucore.VertexBufferSlot, len(desc.VertexBuffers))
	copy(vbs, desc.VertexBuffers)
	for i := range vbs {
		vbs[i].Buffer = 0
	}
	desc.VertexBuffers = vbs
	return fmt.Sprintf("%+v", desc)
}
