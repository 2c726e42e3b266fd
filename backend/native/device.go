// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/flare/gpucore"
)

// Device implements gpucore.Device on a hal device. Creation is guarded
// by a mutex; frame encoding is single-threaded by contract.
type Device struct {
	mu       sync.Mutex
	instance hal.Instance
	dev      hal.Device
	queue    hal.Queue
	info     gpucore.DeviceInfo
	closed   bool

	// ownsDevice is false when the device and instance were handed in by
	// a host (integration/gpuctx); they are left alive on Close.
	ownsDevice bool
}

func newDevice(instance hal.Instance, dev hal.Device, queue hal.Queue, info gpucore.DeviceInfo) *Device {
	return &Device{
		instance:   instance,
		dev:        dev,
		queue:      queue,
		info:       info,
		ownsDevice: true,
	}
}

// Wrap adopts an externally owned hal device and queue, for hosts that
// already hold one. Close leaves the wrapped device alive.
func Wrap(dev hal.Device, queue hal.Queue, adapterName string) *Device {
	return &Device{
		dev:   dev,
		queue: queue,
		info:  deviceInfo(adapterName, gputypes.DefaultLimits()),
	}
}

// Info returns adapter info and validation limits.
func (d *Device) Info() gpucore.DeviceInfo { return d.info }

// CreateTexture creates a 2D texture with its default view.
func (d *Device) CreateTexture(desc gpucore.TextureDesc) (gpucore.Texture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, fmt.Errorf("native: device closed: %w", gpucore.ErrDevice)
	}

	samples := desc.SampleCount
	if samples == 0 {
		samples = 1
	}
	tex, err := d.dev.CreateTexture(&hal.TextureDescriptor{
		Label: desc.Label,
		Size: hal.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   samples,
		Dimension:     gputypes.TextureDimension2D,
		Format:        toHALTextureFormat(desc.Format),
		Usage:         toHALTextureUsage(desc.Usage),
	})
	if err != nil {
		return nil, fmt.Errorf("native: create texture %q: %v: %w", desc.Label, err, gpucore.ErrDevice)
	}
	view, err := d.dev.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: desc.Label + "_view",
	})
	if err != nil {
		d.dev.DestroyTexture(tex)
		return nil, fmt.Errorf("native: create texture view %q: %v: %w", desc.Label, err, gpucore.ErrDevice)
	}
	return &texture{
		dev:    d,
		tex:    tex,
		view:   &textureView{label: desc.Label + "_view", view: view},
		label:  desc.Label,
		format: desc.Format,
	}, nil
}

// CreateBuffer creates a GPU buffer.
func (d *Device) CreateBuffer(desc gpucore.BufferDesc) (gpucore.Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, fmt.Errorf("native: device closed: %w", gpucore.ErrDevice)
	}

	buf, err := d.dev.CreateBuffer(&hal.BufferDescriptor{
		Label: desc.Label,
		Size:  desc.Size,
		Usage: toHALBufferUsage(desc.Usage),
	})
	if err != nil {
		return nil, fmt.Errorf("native: create buffer %q: %v: %w", desc.Label, err, gpucore.ErrDevice)
	}
	return &buffer{dev: d, buf: buf, label: desc.Label, size: desc.Size}, nil
}

// CreateRenderPipeline compiles the WGSL shader and builds the pipeline
// with its layouts. The pipeline owns the shader module and layouts and
// destroys them with Destroy.
func (d *Device) CreateRenderPipeline(desc gpucore.PipelineDesc) (gpucore.Pipeline, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, fmt.Errorf("native: device closed: %w", gpucore.ErrDevice)
	}

	shader, err := createShaderModule(d.dev, desc.Label+"_shader", desc.WGSL)
	if err != nil {
		return nil, fmt.Errorf("native: pipeline %q: %v: %w", desc.Label, err, gpucore.ErrDevice)
	}

	p := &pipeline{dev: d, shader: shader, label: desc.Label}
	for i, bg := range desc.BindGroups {
		layout, layoutErr := d.createBindGroupLayout(bg)
		if layoutErr != nil {
			p.destroyLocked()
			return nil, fmt.Errorf("native: pipeline %q bind group %d: %v: %w", desc.Label, i, layoutErr, gpucore.ErrDevice)
		}
		p.bindLayouts = append(p.bindLayouts, layout)
	}

	pipeLayout, err := d.dev.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            desc.Label + "_layout",
		BindGroupLayouts: p.bindLayouts,
	})
	if err != nil {
		p.destroyLocked()
		return nil, fmt.Errorf("native: pipeline %q layout: %v: %w", desc.Label, err, gpucore.ErrDevice)
	}
	p.pipeLayout = pipeLayout

	samples := desc.SampleCount
	if samples == 0 {
		samples = 1
	}
	premulBlend := gputypes.BlendStatePremultiplied()
	rpDesc := &hal.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: pipeLayout,
		Vertex: hal.VertexState{
			Module:     shader,
			EntryPoint: desc.VertexEntry,
			Buffers:    vertexLayouts(desc.VertexBuffers),
		},
		Fragment: &hal.FragmentState{
			Module:     shader,
			EntryPoint: desc.FragmentEntry,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    toHALTextureFormat(desc.ColorFormat),
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: samples,
			Mask:  0xFFFFFFFF,
		},
	}
	if desc.DepthFormat != gpucore.TextureFormatUndefined {
		rpDesc.DepthStencil = &hal.DepthStencilState{
			Format:            toHALTextureFormat(desc.DepthFormat),
			DepthWriteEnabled: true,
			DepthCompare:      gputypes.CompareFunctionLess,
			StencilFront: hal.StencilFaceState{
				Compare:     gputypes.CompareFunctionAlways,
				FailOp:      hal.StencilOperationKeep,
				DepthFailOp: hal.StencilOperationKeep,
				PassOp:      hal.StencilOperationKeep,
			},
			StencilBack: hal.StencilFaceState{
				Compare:     gputypes.CompareFunctionAlways,
				FailOp:      hal.StencilOperationKeep,
				DepthFailOp: hal.StencilOperationKeep,
				PassOp:      hal.StencilOperationKeep,
			},
		}
	}

	rp, err := d.dev.CreateRenderPipeline(rpDesc)
	if err != nil {
		p.destroyLocked()
		return nil, fmt.Errorf("native: create pipeline %q: %v: %w", desc.Label, err, gpucore.ErrDevice)
	}
	p.rp = rp
	return p, nil
}

func (d *Device) createBindGroupLayout(desc gpucore.BindGroupLayoutDesc) (hal.BindGroupLayout, error) {
	entries := make([]gputypes.BindGroupLayoutEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		bindingType := gputypes.BufferBindingTypeStorage
		if e.Uniform {
			bindingType = gputypes.BufferBindingTypeUniform
		}
		entries[i] = gputypes.BindGroupLayoutEntry{
			Binding:    e.Binding,
			Visibility: toHALShaderStage(e.Visibility),
			Buffer: &gputypes.BufferBindingLayout{
				Type:             bindingType,
				HasDynamicOffset: e.HasDynamicOffset,
				MinBindingSize:   e.MinBindingSize,
			},
		}
	}
	return d.dev.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   desc.Label,
		Entries: entries,
	})
}

// vertexLayouts maps the declared vertex-buffer slots onto hal layouts.
func vertexLayouts(slots []gpucore.VertexBufferSlot) []gputypes.VertexBufferLayout {
	out := make([]gputypes.VertexBufferLayout, len(slots))
	for i, slot := range slots {
		step := gputypes.VertexStepModeVertex
		if slot.PerInstance {
			step = gputypes.VertexStepModeInstance
		}
		attrs := make([]gputypes.VertexAttribute, len(slot.Attributes))
		for j, a := range slot.Attributes {
			attrs[j] = gputypes.VertexAttribute{
				Format:         toHALVertexFormat(a.Format),
				Offset:         a.Offset,
				ShaderLocation: a.ShaderLocation,
			}
		}
		out[i] = gputypes.VertexBufferLayout{
			ArrayStride: slot.Stride,
			StepMode:    step,
			Attributes:  attrs,
		}
	}
	return out
}

// CreateBindGroup builds a bind group from resolved buffer bindings. The
// group owns a private copy of its layout.
func (d *Device) CreateBindGroup(bindings gpucore.BindGroupBindings) (gpucore.BindGroup, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, fmt.Errorf("native: device closed: %w", gpucore.ErrDevice)
	}

	layout, err := d.createBindGroupLayout(bindings.Layout)
	if err != nil {
		return nil, fmt.Errorf("native: bind group %q layout: %v: %w", bindings.Label, err, gpucore.ErrDevice)
	}

	entries := make([]gputypes.BindGroupEntry, len(bindings.Bindings))
	for i, b := range bindings.Bindings {
		buf, ok := b.Buffer.(*buffer)
		if !ok {
			d.dev.DestroyBindGroupLayout(layout)
			return nil, fmt.Errorf("native: bind group %q binding %d: foreign buffer %T: %w",
				bindings.Label, b.Binding, b.Buffer, gpucore.ErrValidation)
		}
		size := b.Size
		if size == 0 {
			size = buf.size - b.Offset
		}
		entries[i] = gputypes.BindGroupEntry{
			Binding: b.Binding,
			Resource: gputypes.BufferBinding{
				Buffer: buf.buf.NativeHandle(),
				Offset: b.Offset,
				Size:   size,
			},
		}
	}

	bg, err := d.dev.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   bindings.Label,
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		d.dev.DestroyBindGroupLayout(layout)
		return nil, fmt.Errorf("native: create bind group %q: %v: %w", bindings.Label, err, gpucore.ErrDevice)
	}
	return &bindGroup{dev: d, bg: bg, layout: layout, label: bindings.Label}, nil
}

// WriteBuffer uploads data through the queue. The hal orders uploads
// before the next submission.
func (d *Device) WriteBuffer(buf gpucore.Buffer, offset uint64, data []byte) error {
	b, ok := buf.(*buffer)
	if !ok {
		return fmt.Errorf("native: foreign buffer %T: %w", buf, gpucore.ErrValidation)
	}
	if offset+uint64(len(data)) > b.size {
		return fmt.Errorf("native: write of %d bytes at %d exceeds buffer %q size %d: %w",
			len(data), offset, b.label, b.size, gpucore.ErrValidation)
	}
	if err := d.queue.WriteBuffer(b.buf, offset, data); err != nil {
		return fmt.Errorf("native: write buffer %q: %v: %w", b.label, err, gpucore.ErrDevice)
	}
	return nil
}

// NewEncoder starts recording one frame.
func (d *Device) NewEncoder(label string) (gpucore.CommandEncoder, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, fmt.Errorf("native: device closed: %w", gpucore.ErrDevice)
	}

	enc, err := d.dev.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, fmt.Errorf("native: create command encoder: %v: %w", err, gpucore.ErrDevice)
	}
	if err := enc.BeginEncoding(label); err != nil {
		return nil, fmt.Errorf("native: begin encoding: %v: %w", err, gpucore.ErrDevice)
	}
	return &commandEncoder{dev: d, enc: enc}, nil
}

// Close destroys the device and instance. Wrapped external devices are
// left alive.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	if d.ownsDevice {
		if d.dev != nil {
			d.dev.Destroy()
		}
		if d.instance != nil {
			d.instance.Destroy()
		}
	}
	d.dev = nil
	d.instance = nil
	d.queue = nil
	return nil
}
