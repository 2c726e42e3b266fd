// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpucore defines the shared vocabulary between the flare engine
// and its device backends.
//
// The package has three parts:
//
//   - Value types: resource IDs, viewports, ranges, formats, usages and the
//     render command variants that make up a frame's instruction list.
//   - Boundary interfaces: [Device], [CommandEncoder], [RenderPassEncoder],
//     [Surface] and the resource handles they hand out. Backends (see
//     backend/native and backend/webgpu) implement these; the engine only
//     ever talks to the graphics device through them.
//   - Error taxonomy: the sentinel errors every component wraps so callers
//     can classify failures with errors.Is.
//
// gpucore deliberately defines its own enums instead of re-exporting a
// particular GPU library's types. Each backend maps them onto its native
// representation, which keeps the engine compilable (and mockable) without
// any GPU library on the build host.
package gpucore
