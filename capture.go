// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package flare

import (
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/flare/gpucore"
)

// CaptureOptions controls CaptureFrame. Zero values capture at full
// resolution.
type CaptureOptions struct {
	// MaxWidth and MaxHeight bound the returned image; larger captures
	// are downscaled preserving aspect ratio. Zero means unbounded.
	MaxWidth  int
	MaxHeight int
}

// CaptureFrame reads back the last presented frame as an RGBA image.
//
// Readback is a capability: offscreen surfaces (backend/native) support
// it, windowed swapchains generally do not and the call fails wrapping
// gpucore.ErrUnsupported.
func (e *Engine) CaptureFrame(opts CaptureOptions) (*image.RGBA, error) {
	if e.closed {
		return nil, ErrClosed
	}
	capturer, ok := e.raw.(gpucore.Capturer)
	if !ok {
		capturer, ok = e.device.(gpucore.Capturer)
	}
	if !ok {
		return nil, fmt.Errorf("flare: %w: surface has no frame readback", gpucore.ErrUnsupported)
	}

	img, err := capturer.CaptureFrame()
	if err != nil {
		return nil, fmt.Errorf("flare: capture frame: %w", err)
	}
	return downscale(img, opts.MaxWidth, opts.MaxHeight), nil
}

// downscale shrinks img to fit maxW x maxH, keeping the aspect ratio.
// Images already within bounds are returned as-is.
func downscale(img *image.RGBA, maxW, maxH int) *image.RGBA {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w == 0 || h == 0 {
		return img
	}

	scale := 1.0
	if maxW > 0 && w > maxW {
		scale = float64(maxW) / float64(w)
	}
	if maxH > 0 && float64(h)*scale > float64(maxH) {
		scale = float64(maxH) / float64(h)
	}
	if scale >= 1.0 {
		return img
	}

	dw, dh := int(float64(w)*scale), int(float64(h)*scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}
