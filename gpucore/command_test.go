// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucore

import (
	"strings"
	"testing"
)

func TestCommandKinds(t *testing.T) {
	tests := []struct {
		cmd  Command
		kind CommandKind
		name string
	}{
		{SetViewports{}, KindSetViewports, "SetViewports"},
		{SetScissors{}, KindSetScissors, "SetScissors"},
		{SetPipeline{}, KindSetPipeline, "SetPipeline"},
		{BeginRenderPass{}, KindBeginRenderPass, "BeginRenderPass"},
		{EndRenderPass{}, KindEndRenderPass, "EndRenderPass"},
		{PushConstants{}, KindPushConstants, "PushConstants"},
		{BindVertexBuffer{}, KindBindVertexBuffer, "BindVertexBuffer"},
		{BindIndexBuffer{}, KindBindIndexBuffer, "BindIndexBuffer"},
		{Draw{}, KindDraw, "Draw"},
		{DrawIndexed{}, KindDrawIndexed, "DrawIndexed"},
		{SetBindGroup{}, KindSetBindGroup, "SetBindGroup"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cmd.Kind(); got != tt.kind {
				t.Errorf("Kind() = %v, want %v", got, tt.kind)
			}
			if got := tt.kind.String(); got != tt.name {
				t.Errorf("Kind().String() = %q, want %q", got, tt.name)
			}
			// Every String() must at least name the command.
			if got := tt.cmd.String(); !strings.HasPrefix(got, tt.name) {
				t.Errorf("String() = %q, want prefix %q", got, tt.name)
			}
		})
	}
}

func TestDrawIndexedString(t *testing.T) {
	c := DrawIndexed{
		Indices:    Range{0, 6},
		BaseVertex: -2,
		Instances:  Range{0, 100},
	}
	s := c.String()
	for _, want := range []string{"0..6", "-2", "0..100"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}

func TestSetBindGroupString(t *testing.T) {
	c := SetBindGroup{Set: 1, Group: MakeID(4, 2), DynamicOffsets: []uint32{0, 256}}
	s := c.String()
	if !strings.Contains(s, "set=1") || !strings.Contains(s, "offsets=2") {
		t.Errorf("String() = %q, missing set or offset count", s)
	}
}
