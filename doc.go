// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package flare is a frame-execution core for real-time rendering: it
// turns a declarative per-frame command list into graphics-device calls,
// owns every GPU-side object behind opaque handles, and validates the
// command stream before anything reaches the device.
//
// The engine consumes a device and a presentation surface as
// capabilities (gpucore.Device, gpucore.Surface); backends for the pure
// Go gogpu/wgpu stack and for cogentcore/webgpu live under backend/.
// Windowing, shader tooling beyond the WGSL compile at the backend
// boundary, and scene management are out of scope.
//
// # Usage
//
//	dev, sur, _ := backend.OpenDefault(backend.Options{Label: "app"})
//	eng, _ := flare.New(dev, sur, flare.WithSampleCount(4))
//	defer eng.Close()
//	eng.Resize(800, 600)
//
//	pass := eng.AttachRenderPass(gpucore.RenderPassDesc{Label: "main"})
//	pipe, _ := eng.AttachPipeline(gpucore.PipelineDesc{Label: "tri", WGSL: shader})
//
//	for running {
//		err := eng.Render([]gpucore.Command{
//			gpucore.BeginRenderPass{RenderPass: pass},
//			gpucore.SetPipeline{Pipeline: pipe},
//			gpucore.Draw{Vertices: gpucore.Range{End: 3}, Instances: gpucore.Range{End: 1}},
//			gpucore.EndRenderPass{},
//		})
//		...
//	}
//
// One Render call completes, including present, before the next frame's
// command list is built; the engine is single-threaded by contract.
package flare
