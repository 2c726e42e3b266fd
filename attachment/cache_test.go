// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package attachment

import (
	"errors"
	"testing"

	"github.com/gogpu/flare/gpucore"
)

type fakeView struct{ label string }

func (v *fakeView) Label() string { return v.label }

type fakeTexture struct {
	desc      gpucore.TextureDesc
	destroyed bool
}

func (t *fakeTexture) Label() string                      { return t.desc.Label }
func (t *fakeTexture) Format() gpucore.TextureFormat      { return t.desc.Format }
func (t *fakeTexture) View() (gpucore.TextureView, error) { return &fakeView{t.desc.Label}, nil }
func (t *fakeTexture) Destroy()                           { t.destroyed = true }

type fakeCreator struct {
	created []*fakeTexture
	fail    error
}

func (c *fakeCreator) CreateTexture(desc gpucore.TextureDesc) (gpucore.Texture, error) {
	if c.fail != nil {
		return nil, c.fail
	}
	t := &fakeTexture{desc: desc}
	c.created = append(c.created, t)
	return t, nil
}

func msaaPass(samples uint32) gpucore.RenderPassDesc {
	return gpucore.RenderPassDesc{
		Label:       "main",
		SampleCount: samples,
		ColorLoad:   gpucore.LoadOpClear,
		ColorStore:  gpucore.StoreOpStore,
	}
}

func TestSingleSampleUsesSurfaceDirectly(t *testing.T) {
	dev := &fakeCreator{}
	c := New(dev)
	surf := &fakeView{"surface"}

	att, err := c.AttachmentsFor(msaaPass(1), surf, gpucore.TextureFormatBGRA8Unorm, 800, 600)
	if err != nil {
		t.Fatalf("AttachmentsFor: %v", err)
	}
	if att.Color.View != surf {
		t.Error("color view is not the surface view")
	}
	if att.Color.ResolveTarget != nil {
		t.Error("single-sample pass got a resolve target")
	}
	if len(dev.created) != 0 {
		t.Errorf("single-sample pass allocated %d textures, want 0", len(dev.created))
	}
}

func TestSameKeyBuildsOnce(t *testing.T) {
	dev := &fakeCreator{}
	c := New(dev)
	surf := &fakeView{"surface"}

	for i := 0; i < 3; i++ {
		att, err := c.AttachmentsFor(msaaPass(4), surf, gpucore.TextureFormatBGRA8Unorm, 800, 600)
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if att.Color.ResolveTarget != surf {
			t.Errorf("frame %d: resolve target is not the surface view", i)
		}
		if att.Color.View == gpucore.TextureView(surf) {
			t.Errorf("frame %d: msaa pass rendered straight to the surface", i)
		}
	}

	st := c.Stats()
	if st.Builds != 1 {
		t.Errorf("Builds = %d, want 1", st.Builds)
	}
	if st.Hits != 2 {
		t.Errorf("Hits = %d, want 2", st.Hits)
	}
	if len(dev.created) != 1 {
		t.Errorf("created %d textures, want 1", len(dev.created))
	}
}

func TestKeyChangeRebuilds(t *testing.T) {
	dev := &fakeCreator{}
	c := New(dev)
	surf := &fakeView{"surface"}

	if _, err := c.AttachmentsFor(msaaPass(4), surf, gpucore.TextureFormatBGRA8Unorm, 800, 600); err != nil {
		t.Fatal(err)
	}
	if _, err := c.AttachmentsFor(msaaPass(4), surf, gpucore.TextureFormatBGRA8Unorm, 1024, 768); err != nil {
		t.Fatal(err)
	}

	if st := c.Stats(); st.Builds != 2 {
		t.Errorf("Builds = %d, want 2 after size change", st.Builds)
	}
	if !dev.created[0].destroyed {
		t.Error("old msaa texture not destroyed on rebuild")
	}
}

func TestDepthAttachment(t *testing.T) {
	dev := &fakeCreator{}
	c := New(dev)
	surf := &fakeView{"surface"}

	desc := msaaPass(1)
	desc.DepthFormat = gpucore.TextureFormatDepth32Float
	desc.DepthClear = 1

	att, err := c.AttachmentsFor(desc, surf, gpucore.TextureFormatBGRA8Unorm, 640, 480)
	if err != nil {
		t.Fatalf("AttachmentsFor: %v", err)
	}
	if att.DepthStencil == nil {
		t.Fatal("no depth attachment returned")
	}
	if att.DepthStencil.DepthClear != 1 {
		t.Errorf("DepthClear = %v, want 1", att.DepthStencil.DepthClear)
	}
	if len(dev.created) != 1 || dev.created[0].desc.Format != gpucore.TextureFormatDepth32Float {
		t.Errorf("depth texture not created: %+v", dev.created)
	}
}

func TestInvalidateForcesRebuild(t *testing.T) {
	dev := &fakeCreator{}
	c := New(dev)
	surf := &fakeView{"surface"}

	if _, err := c.AttachmentsFor(msaaPass(4), surf, gpucore.TextureFormatBGRA8Unorm, 800, 600); err != nil {
		t.Fatal(err)
	}
	c.Invalidate()
	if !dev.created[0].destroyed {
		t.Error("Invalidate did not destroy the cached texture")
	}

	if _, err := c.AttachmentsFor(msaaPass(4), surf, gpucore.TextureFormatBGRA8Unorm, 800, 600); err != nil {
		t.Fatal(err)
	}
	if st := c.Stats(); st.Builds != 2 {
		t.Errorf("Builds = %d, want 2 after Invalidate", st.Builds)
	}
}

func TestCreateFailurePropagates(t *testing.T) {
	sentinel := errors.New("out of memory")
	dev := &fakeCreator{fail: sentinel}
	c := New(dev)

	_, err := c.AttachmentsFor(msaaPass(4), &fakeView{"surface"}, gpucore.TextureFormatBGRA8Unorm, 8, 8)
	if !errors.Is(err, sentinel) {
		t.Errorf("error = %v, want wrapped sentinel", err)
	}
}
