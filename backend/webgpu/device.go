// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package webgpu

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gogpu/flare/gpucore"
)

// Device implements gpucore.Device on a cogentcore/webgpu device.
type Device struct {
	mu       sync.Mutex
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	dev      *wgpu.Device
	queue    *wgpu.Queue
	info     gpucore.DeviceInfo
	closed   bool
}

// Info returns adapter info and validation limits.
func (d *Device) Info() gpucore.DeviceInfo { return d.info }

// CreateTexture creates a 2D texture with its default view.
func (d *Device) CreateTexture(desc gpucore.TextureDesc) (gpucore.Texture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, fmt.Errorf("webgpu: device closed: %w", gpucore.ErrDevice)
	}

	samples := desc.SampleCount
	if samples == 0 {
		samples = 1
	}
	tex, err := d.dev.CreateTexture(&wgpu.TextureDescriptor{
		Label: desc.Label,
		Size: wgpu.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   samples,
		Dimension:     wgpu.TextureDimension2D,
		Format:        toWGPUTextureFormat(desc.Format),
		Usage:         toWGPUTextureUsage(desc.Usage),
	})
	if err != nil {
		return nil, fmt.Errorf("webgpu: create texture %q: %v: %w", desc.Label, err, gpucore.ErrDevice)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("webgpu: create texture view %q: %v: %w", desc.Label, err, gpucore.ErrDevice)
	}
	return &texture{
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
		return nil, fmt.Errorf("webgpu: device closed: %w", gpucore.ErrDevice)
	}

	buf, err := d.dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label: desc.Label,
		Size:  desc.Size,
		Usage: toWGPUBufferUsage(desc.Usage),
	})
	if err != nil {
		return nil, fmt.Errorf("webgpu: create buffer %q: %v: %w", desc.Label, err, gpucore.ErrDevice)
	}
	return &buffer{buf: buf, label: desc.Label, size: desc.Size}, nil
}

// CreateRenderPipeline builds the pipeline with its shader module and
// layouts. WGSL goes straight to the runtime.
func (d *Device) CreateRenderPipeline(desc gpucore.PipelineDesc) (gpucore.Pipeline, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, fmt.Errorf("webgpu: device closed: %w", gpucore.ErrDevice)
	}

	shader, err := d.dev.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: desc.Label + "_shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: desc.WGSL,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("webgpu: compile shader for %q: %v: %w", desc.Label, err, gpucore.ErrDevice)
	}

	p := &pipeline{shader: shader, label: desc.Label}
	for i, bg := range desc.BindGroups {
		layout, layoutErr := d.createBindGroupLayout(bg)
		if layoutErr != nil {
			p.Destroy()
			return nil, fmt.Errorf("webgpu: pipeline %q bind group %d: %v: %w", desc.Label, i, layoutErr, gpucore.ErrDevice)
		}
		p.bindLayouts = append(p.bindLayouts, layout)
	}

	pipeLayout, err := d.dev.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            desc.Label + "_layout",
		BindGroupLayouts: p.bindLayouts,
	})
	if err != nil {
		p.Destroy()
		return nil, fmt.Errorf("webgpu: pipeline %q layout: %v: %w", desc.Label, err, gpucore.ErrDevice)
	}
	p.pipeLayout = pipeLayout

	samples := desc.SampleCount
	if samples == 0 {
		samples = 1
	}
	rpDesc := &wgpu.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: pipeLayout,
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: desc.VertexEntry,
			Buffers:    vertexLayouts(desc.VertexBuffers),
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: desc.FragmentEntry,
			Targets: []wgpu.ColorTargetState{
				{
					Format:    toWGPUTextureFormat(desc.ColorFormat),
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
			CullMode: wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: samples,
			Mask:  0xFFFFFFFF,
		},
	}
	if desc.DepthFormat != gpucore.TextureFormatUndefined {
		rpDesc.DepthStencil = &wgpu.DepthStencilState{
			Format:            toWGPUTextureFormat(desc.DepthFormat),
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		}
	}

	rp, err := d.dev.CreateRenderPipeline(rpDesc)
	if err != nil {
		p.Destroy()
		return nil, fmt.Errorf("webgpu: create pipeline %q: %v: %w", desc.Label, err, gpucore.ErrDevice)
	}
	p.rp = rp
	return p, nil
}

func (d *Device) createBindGroupLayout(desc gpucore.BindGroupLayoutDesc) (*wgpu.BindGroupLayout, error) {
	entries := make([]wgpu.BindGroupLayoutEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		bindingType := wgpu.BufferBindingTypeStorage
		if e.Uniform {
			bindingType = wgpu.BufferBindingTypeUniform
		}
		entries[i] = wgpu.BindGroupLayoutEntry{
			Binding:    e.Binding,
			Visibility: toWGPUShaderStage(e.Visibility),
			Buffer: wgpu.BufferBindingLayout{
				Type:             bindingType,
				HasDynamicOffset: e.HasDynamicOffset,
				MinBindingSize:   e.MinBindingSize,
			},
		}
	}
	return d.dev.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   desc.Label,
		Entries: entries,
	})
}

// CreateBindGroup builds a bind group from resolved buffer bindings.
func (d *Device) CreateBindGroup(bindings gpucore.BindGroupBindings) (gpucore.BindGroup, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, fmt.Errorf("webgpu: device closed: %w", gpucore.ErrDevice)
	}

	layout, err := d.createBindGroupLayout(bindings.Layout)
	if err != nil {
		return nil, fmt.Errorf("webgpu: bind group %q layout: %v: %w", bindings.Label, err, gpucore.ErrDevice)
	}

	entries := make([]wgpu.BindGroupEntry, len(bindings.Bindings))
	for i, b := range bindings.Bindings {
		buf, ok := b.Buffer.(*buffer)
		if !ok {
			layout.Release()
			return nil, fmt.Errorf("webgpu: bind group %q binding %d: foreign buffer %T: %w",
				bindings.Label, b.Binding, b.Buffer, gpucore.ErrValidation)
		}
		size := b.Size
		if size == 0 {
			size = buf.size - b.Offset
		}
		entries[i] = wgpu.BindGroupEntry{
			Binding: b.Binding,
			Buffer:  buf.buf,
			Offset:  b.Offset,
			Size:    size,
		}
	}

	bg, err := d.dev.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   bindings.Label,
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		layout.Release()
		return nil, fmt.Errorf("webgpu: create bind group %q: %v: %w", bindings.Label, err, gpucore.ErrDevice)
	}
	return &bindGroup{bg: bg, layout: layout, label: bindings.Label}, nil
}

// WriteBuffer uploads data through the queue.
func (d *Device) WriteBuffer(buf gpucore.Buffer, offset uint64, data []byte) error {
	b, ok := buf.(*buffer)
	if !ok {
		return fmt.Errorf("webgpu: foreign buffer %T: %w", buf, gpucore.ErrValidation)
	}
	if offset+uint64(len(data)) > b.size {
		return fmt.Errorf("webgpu: write of %d bytes at %d exceeds buffer %q size %d: %w",
			len(data), offset, b.label, b.size, gpucore.ErrValidation)
	}
	d.queue.WriteBuffer(b.buf, offset, data)
	return nil
}

// NewEncoder starts recording one frame.
func (d *Device) NewEncoder(label string) (gpucore.CommandEncoder, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, fmt.Errorf("webgpu: device closed: %w", gpucore.ErrDevice)
	}

	enc, err := d.dev.CreateCommandEncoder(nil)
	if err != nil {
		return nil, fmt.Errorf("webgpu: create command encoder %q: %v: %w", label, err, gpucore.ErrDevice)
	}
	return &commandEncoder{dev: d, enc: enc}, nil
}

// Close releases the device, adapter and instance.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	if d.dev != nil {
		d.dev.Release()
		d.dev = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
	d.queue = nil
	return nil
}
