// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package flare

import (
	"encoding/binary"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/gogpu/flare/gpucore"
)

type stubView struct{ name string }

func (v stubView) Label() string { return v.name }

type stubTexture struct {
	desc      gpucore.TextureDesc
	destroyed bool
}

func (t *stubTexture) Label() string                      { return t.desc.Label }
func (t *stubTexture) Format() gpucore.TextureFormat      { return t.desc.Format }
func (t *stubTexture) View() (gpucore.TextureView, error) { return stubView{t.desc.Label}, nil }
func (t *stubTexture) Destroy()                           { t.destroyed = true }

type stubBuffer struct {
	desc      gpucore.BufferDesc
	destroyed bool
}

func (b *stubBuffer) Label() string { return b.desc.Label }
func (b *stubBuffer) Size() uint64  { return b.desc.Size }
func (b *stubBuffer) Destroy()      { b.destroyed = true }

type stubPipeline struct {
	label     string
	destroyed int
}

func (p *stubPipeline) Label() string { return p.label }
func (p *stubPipeline) Destroy()      { p.destroyed++ }

type stubBindGroup struct {
	label     string
	destroyed bool
}

func (g *stubBindGroup) Label() string { return g.label }
func (g *stubBindGroup) Destroy()      { g.destroyed = true }

type stubPass struct{}

func (stubPass) SetViewport(gpucore.Viewport)                                  {}
func (stubPass) SetScissor(x, y, w, h uint32)                                  {}
func (stubPass) SetPipeline(gpucore.Pipeline) error                            { return nil }
func (stubPass) SetBindGroup(uint32, gpucore.BindGroup, []uint32) error        { return nil }
func (stubPass) SetVertexBuffer(uint32, gpucore.Buffer) error                  { return nil }
func (stubPass) SetIndexBuffer(gpucore.Buffer, gpucore.IndexFormat) error      { return nil }
func (stubPass) SetPushConstants(gpucore.ShaderStage, uint32, []uint32) error  { return nil }
func (stubPass) Draw(vertices, instances gpucore.Range) error                  { return nil }
func (stubPass) DrawIndexed(i gpucore.Range, b int32, n gpucore.Range) error   { return nil }
func (stubPass) End() error                                                    { return nil }

type stubEncoder struct{ submitted bool }

func (e *stubEncoder) BeginRenderPass(gpucore.PassEncoding) (gpucore.RenderPassEncoder, error) {
	return stubPass{}, nil
}
func (e *stubEncoder) Submit() error { e.submitted = true; return nil }
func (e *stubEncoder) Discard()      {}

type write struct {
	buf    gpucore.Buffer
	offset uint64
	data   []byte
}

type stubDevice struct {
	pipelinesBuilt int
	groups         []gpucore.BindGroupBindings
	writes         []write
	buffers        []*stubBuffer
	pipelines      []*stubPipeline
	bindGroups     []*stubBindGroup
}

func (d *stubDevice) Info() gpucore.DeviceInfo {
	return gpucore.DeviceInfo{
		Name:                            "stub adapter",
		Backend:                         "test",
		MaxTextureDimension2D:           8192,
		MaxBufferSize:                   1 << 28,
		MinUniformBufferOffsetAlignment: 256,
	}
}

func (d *stubDevice) CreateTexture(desc gpucore.TextureDesc) (gpucore.Texture, error) {
	return &stubTexture{desc: desc}, nil
}

func (d *stubDevice) CreateBuffer(desc gpucore.BufferDesc) (gpucore.Buffer, error) {
	b := &stubBuffer{desc: desc}
	d.buffers = append(d.buffers, b)
	return b, nil
}

func (d *stubDevice) CreateRenderPipeline(desc gpucore.PipelineDesc) (gpucore.Pipeline, error) {
	d.pipelinesBuilt++
	p := &stubPipeline{label: desc.Label}
	d.pipelines = append(d.pipelines, p)
	return p, nil
}

func (d *stubDevice) CreateBindGroup(bindings gpucore.BindGroupBindings) (gpucore.BindGroup, error) {
	d.groups = append(d.groups, bindings)
	g := &stubBindGroup{label: bindings.Label}
	d.bindGroups = append(d.bindGroups, g)
	return g, nil
}

func (d *stubDevice) WriteBuffer(buf gpucore.Buffer, offset uint64, data []byte) error {
	cp := append([]byte(nil), data...)
	d.writes = append(d.writes, write{buf: buf, offset: offset, data: cp})
	return nil
}

func (d *stubDevice) NewEncoder(string) (gpucore.CommandEncoder, error) {
	return &stubEncoder{}, nil
}

func (d *stubDevice) Close() error { return nil }

type stubFrame struct{ presented bool }

func (f *stubFrame) View() gpucore.TextureView { return stubView{"frame"} }
func (f *stubFrame) Present() error            { f.presented = true; return nil }
func (f *stubFrame) Discard()                  {}

type stubSurface struct {
	configures int
	frames     []*stubFrame
}

func (s *stubSurface) PreferredFormat() gpucore.TextureFormat { return gpucore.TextureFormatBGRA8Unorm }
func (s *stubSurface) Configure(gpucore.SurfaceConfig) error  { s.configures++; return nil }

func (s *stubSurface) Acquire(time.Duration) (gpucore.SurfaceFrame, error) {
	f := &stubFrame{}
	s.frames = append(s.frames, f)
	return f, nil
}

// captureSurface additionally supports frame readback.
type captureSurface struct {
	stubSurface
	img *image.RGBA
}

func (s *captureSurface) CaptureFrame() (*image.RGBA, error) { return s.img, nil }

func newEngine(t *testing.T, opts ...Option) (*Engine, *stubDevice, *stubSurface) {
	t.Helper()
	dev := &stubDevice{}
	sur := &stubSurface{}
	eng, err := New(dev, sur, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { eng.Close() })
	return eng, dev, sur
}

func TestNewRequiresDeviceAndSurface(t *testing.T) {
	if _, err := New(nil, &stubSurface{}); err == nil {
		t.Error("New(nil device) succeeded")
	}
	if _, err := New(&stubDevice{}, nil); err == nil {
		t.Error("New(nil surface) succeeded")
	}
}

func TestNewRejectsBadSampleCount(t *testing.T) {
	_, err := New(&stubDevice{}, &stubSurface{}, WithSampleCount(3))
	if !errors.Is(err, gpucore.ErrValidation) {
		t.Errorf("New(WithSampleCount(3)) = %v, want ErrValidation", err)
	}
}

func TestAttachPipelineDedup(t *testing.T) {
	eng, dev, _ := newEngine(t)

	desc := gpucore.PipelineDesc{Label: "tri", WGSL: "shader source"}
	id1, err := eng.AttachPipeline(desc)
	if err != nil {
		t.Fatal(err)
	}
	id2, err := eng.AttachPipeline(desc)
	if err != nil {
		t.Fatal(err)
	}
	if id1 == id2 {
		t.Error("two attaches returned the same handle")
	}
	if dev.pipelinesBuilt != 1 {
		t.Errorf("built %d device pipelines for identical descriptors, want 1", dev.pipelinesBuilt)
	}

	other := desc
	other.Label = "tri2"
	if _, err := eng.AttachPipeline(other); err != nil {
		t.Fatal(err)
	}
	if dev.pipelinesBuilt != 2 {
		t.Errorf("built %d device pipelines after a distinct descriptor, want 2", dev.pipelinesBuilt)
	}
}

func TestAttachPipelineDedupIgnoresSlotBuffers(t *testing.T) {
	eng, dev, _ := newEngine(t)

	b1, _ := eng.AttachBuffer(gpucore.BufferDesc{Label: "a", Size: 64, Usage: gpucore.BufferUsageVertex})
	b2, _ := eng.AttachBuffer(gpucore.BufferDesc{Label: "b", Size: 64, Usage: gpucore.BufferUsageVertex})

	desc := gpucore.PipelineDesc{
		Label:         "mesh",
		VertexBuffers: []gpucore.VertexBufferSlot{{Stride: 8, Buffer: b1}},
	}
	if _, err := eng.AttachPipeline(desc); err != nil {
		t.Fatal(err)
	}

	// Same pipeline bound to a different buffer compiles nothing new, and
	// the first descriptor's buffer reference must survive the dedup.
	desc2 := gpucore.PipelineDesc{
		Label:         "mesh",
		VertexBuffers: []gpucore.VertexBufferSlot{{Stride: 8, Buffer: b2}},
	}
	if _, err := eng.AttachPipeline(desc2); err != nil {
		t.Fatal(err)
	}
	if dev.pipelinesBuilt != 1 {
		t.Errorf("built %d pipelines, want 1 (slot buffers are not compile inputs)", dev.pipelinesBuilt)
	}
	if desc.VertexBuffers[0].Buffer != b1 {
		t.Error("dedup key derivation mutated the caller's descriptor")
	}
}

func TestAttachBindGroupResolvesBuffers(t *testing.T) {
	eng, dev, _ := newEngine(t)

	buf, err := eng.AttachBuffer(gpucore.BufferDesc{Label: "uniforms", Size: 256, Usage: gpucore.BufferUsageUniform})
	if err != nil {
		t.Fatal(err)
	}

	_, err = eng.AttachBindGroup(gpucore.BindGroupDesc{
		Label: "frame data",
		Layout: gpucore.BindGroupLayoutDesc{
			Entries: []gpucore.BindGroupLayoutEntry{
				{Binding: 0, Visibility: gpucore.ShaderStageVertex, Uniform: true, HasDynamicOffset: true},
			},
		},
		Entries: []gpucore.BindGroupEntry{{Binding: 0, Buffer: buf, Size: 64}},
	})
	if err != nil {
		t.Fatalf("AttachBindGroup: %v", err)
	}

	if len(dev.groups) != 1 {
		t.Fatalf("device saw %d bind groups, want 1", len(dev.groups))
	}
	got := dev.groups[0]
	if len(got.Bindings) != 1 || got.Bindings[0].Buffer.Label() != "uniforms" {
		t.Errorf("bind group bindings not resolved: %+v", got.Bindings)
	}
}

func TestAttachBindGroupUnknownBuffer(t *testing.T) {
	eng, _, _ := newEngine(t)

	_, err := eng.AttachBindGroup(gpucore.BindGroupDesc{
		Label:   "bad",
		Entries: []gpucore.BindGroupEntry{{Binding: 0, Buffer: gpucore.MakeID(7, 7)}},
	})
	if !errors.Is(err, gpucore.ErrUnknownResource) {
		t.Errorf("AttachBindGroup = %v, want ErrUnknownResource", err)
	}
}

func TestWriteBufferValueLittleEndian(t *testing.T) {
	eng, dev, _ := newEngine(t)

	id, err := eng.AttachBuffer(gpucore.BufferDesc{Label: "u", Size: 64, Usage: gpucore.BufferUsageUniform})
	if err != nil {
		t.Fatal(err)
	}

	type uniforms struct {
		Scale  float32
		Offset [2]float32
		Count  uint32
	}
	if err := eng.WriteBufferValue(id, 16, uniforms{Scale: 2, Offset: [2]float32{1, -1}, Count: 7}); err != nil {
		t.Fatalf("WriteBufferValue: %v", err)
	}

	if len(dev.writes) != 1 {
		t.Fatalf("device saw %d writes, want 1", len(dev.writes))
	}
	w := dev.writes[0]
	if w.offset != 16 || len(w.data) != 16 {
		t.Fatalf("write offset=%d len=%d, want offset=16 len=16", w.offset, len(w.data))
	}
	if got := binary.LittleEndian.Uint32(w.data[12:]); got != 7 {
		t.Errorf("Count encoded as %d, want 7", got)
	}
}

func TestWriteBufferValueRejectsVariableSize(t *testing.T) {
	eng, _, _ := newEngine(t)
	id, _ := eng.AttachBuffer(gpucore.BufferDesc{Label: "u", Size: 64})

	if err := eng.WriteBufferValue(id, 0, "not fixed size"); err == nil {
		t.Error("WriteBufferValue(string) succeeded")
	}
}

func TestWriteBufferUnknownID(t *testing.T) {
	eng, _, _ := newEngine(t)
	if err := eng.WriteBuffer(gpucore.MakeID(3, 9), 0, []byte{1}); !errors.Is(err, gpucore.ErrUnknownResource) {
		t.Errorf("WriteBuffer = %v, want ErrUnknownResource", err)
	}
}

func TestResizeConfigures(t *testing.T) {
	eng, _, sur := newEngine(t)

	if err := eng.Resize(800, 600); err != nil {
		t.Fatalf("first Resize: %v", err)
	}
	if sur.configures != 1 {
		t.Errorf("configures = %d, want 1", sur.configures)
	}
	if w, h := eng.SurfaceSize(); w != 800 || h != 600 {
		t.Errorf("SurfaceSize = %dx%d, want 800x600", w, h)
	}
	if eng.SurfaceFormat() != gpucore.TextureFormatBGRA8Unorm {
		t.Errorf("SurfaceFormat = %v", eng.SurfaceFormat())
	}

	if err := eng.Resize(1024, 768); err != nil {
		t.Fatalf("second Resize: %v", err)
	}
	if sur.configures != 2 {
		t.Errorf("configures = %d, want 2", sur.configures)
	}
}

func TestRenderEndToEnd(t *testing.T) {
	eng, _, sur := newEngine(t)
	if err := eng.Resize(640, 480); err != nil {
		t.Fatal(err)
	}

	pass := eng.AttachRenderPass(gpucore.RenderPassDesc{Label: "main"})
	pipe, err := eng.AttachPipeline(gpucore.PipelineDesc{Label: "tri", WGSL: "src"})
	if err != nil {
		t.Fatal(err)
	}

	err = eng.Render([]gpucore.Command{
		gpucore.BeginRenderPass{RenderPass: pass},
		gpucore.SetPipeline{Pipeline: pipe},
		gpucore.Draw{Vertices: gpucore.Range{End: 3}, Instances: gpucore.Range{End: 1}},
		gpucore.EndRenderPass{},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(sur.frames) != 1 || !sur.frames[0].presented {
		t.Error("frame not presented exactly once")
	}
}

func TestAttachRenderPassDefaults(t *testing.T) {
	eng, _, _ := newEngine(t,
		WithSampleCount(4),
		WithDepthFormat(gpucore.TextureFormatDepth32Float),
		WithClearColor(gpucore.Color{R: 0.1, G: 0.2, B: 0.3, A: 1}))

	id := eng.AttachRenderPass(gpucore.RenderPassDesc{Label: "main"})
	if id.IsZero() {
		t.Fatal("AttachRenderPass returned zero ID")
	}
}

func TestAttachRenderPassAfterClose(t *testing.T) {
	eng, _, _ := newEngine(t)
	if err := eng.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	id := eng.AttachRenderPass(gpucore.RenderPassDesc{Label: "late"})
	if !id.IsZero() {
		t.Errorf("AttachRenderPass after Close = %v, want the zero handle", id)
	}
}

func TestCloseDestroysOwnedObjectsOnce(t *testing.T) {
	dev := &stubDevice{}
	eng, err := New(dev, &stubSurface{})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := eng.AttachBuffer(gpucore.BufferDesc{Label: "b", Size: 16}); err != nil {
		t.Fatal(err)
	}
	desc := gpucore.PipelineDesc{Label: "p", WGSL: "src"}
	if _, err := eng.AttachPipeline(desc); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.AttachPipeline(desc); err != nil { // deduplicated
		t.Fatal(err)
	}

	if err := eng.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := eng.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	if !dev.buffers[0].destroyed {
		t.Error("buffer not destroyed at Close")
	}
	if n := dev.pipelines[0].destroyed; n != 1 {
		t.Errorf("shared pipeline destroyed %d times, want exactly 1", n)
	}

	if err := eng.Render(nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Render after Close = %v, want ErrClosed", err)
	}
	if _, err := eng.AttachBuffer(gpucore.BufferDesc{}); !errors.Is(err, ErrClosed) {
		t.Errorf("AttachBuffer after Close = %v, want ErrClosed", err)
	}
	if err := eng.Resize(1, 1); !errors.Is(err, ErrClosed) {
		t.Errorf("Resize after Close = %v, want ErrClosed", err)
	}
}

func TestCaptureUnsupported(t *testing.T) {
	eng, _, _ := newEngine(t)
	if _, err := eng.CaptureFrame(CaptureOptions{}); !errors.Is(err, gpucore.ErrUnsupported) {
		t.Errorf("CaptureFrame = %v, want ErrUnsupported", err)
	}
}

func TestCaptureDownscales(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 800, 600))
	sur := &captureSurface{img: src}
	eng, err := New(&stubDevice{}, sur)
	if err != nil {
		t.Fatal(err)
	}
	defer eng.Close()

	img, err := eng.CaptureFrame(CaptureOptions{MaxWidth: 400})
	if err != nil {
		t.Fatalf("CaptureFrame: %v", err)
	}
	if img.Bounds().Dx() != 400 || img.Bounds().Dy() != 300 {
		t.Errorf("downscaled to %v, want 400x300", img.Bounds())
	}

	full, err := eng.CaptureFrame(CaptureOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if full != src {
		t.Error("unbounded capture should return the image unscaled")
	}
}
