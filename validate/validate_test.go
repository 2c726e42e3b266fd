// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package validate

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/flare/gpucore"
)

func TestDynamicOffsetsCountMismatch(t *testing.T) {
	err := DynamicOffsets(2, []uint32{0, 256, 512}, 256, 1)
	if !errors.Is(err, gpucore.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
	// The message must state both counts and the set index exactly.
	msg := err.Error()
	for _, want := range []string{"2", "3", "set 1"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}

func TestDynamicOffsetsAlignment(t *testing.T) {
	tests := []struct {
		name      string
		offsets   []uint32
		alignment uint32
		wantErr   bool
		wantInMsg []string
	}{
		{"aligned", []uint32{0, 256, 512}, 256, false, nil},
		{"first misaligned index reported", []uint32{0, 128}, 256, true, []string{"128", "index 1", "256"}},
		{"zero alignment disables check", []uint32{1, 3, 7}, 0, false, nil},
		{"empty", nil, 256, false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := DynamicOffsets(len(tt.offsets), tt.offsets, tt.alignment, 0)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
			for _, want := range tt.wantInMsg {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("message %q missing %q", err.Error(), want)
				}
			}
		})
	}
}

func TestInstanceRange(t *testing.T) {
	if err := InstanceRange("Draw", gpucore.Range{Start: 0, End: 100}); err != nil {
		t.Errorf("valid range rejected: %v", err)
	}
	if err := InstanceRange("Draw", gpucore.Range{Start: 5, End: 5}); err != nil {
		t.Errorf("empty range rejected: %v", err)
	}

	err := InstanceRange("DrawIndexed", gpucore.Range{Start: 10, End: 3})
	if !errors.Is(err, gpucore.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
	if !strings.Contains(err.Error(), "DrawIndexed") {
		t.Errorf("message %q does not name the command", err.Error())
	}
}

func TestInstanceBindings(t *testing.T) {
	var bound SlotSet
	bound.Add(0)

	// [true, false, true] with only slot 0 bound must fail naming slot 2.
	err := InstanceBindings("sprites", []bool{true, false, true}, bound)
	if !errors.Is(err, gpucore.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "sprites") || !strings.Contains(msg, "slot 2") {
		t.Errorf("message %q must name the pipeline and slot 2", msg)
	}

	bound.Add(2)
	if err := InstanceBindings("sprites", []bool{true, false, true}, bound); err != nil {
		t.Errorf("fully bound pipeline rejected: %v", err)
	}
}

func TestInstanceBindingsReportsFirstUnbound(t *testing.T) {
	var bound SlotSet
	err := InstanceBindings("p", []bool{true, true}, bound)
	if err == nil || !strings.Contains(err.Error(), "slot 0") {
		t.Errorf("want first unbound slot 0 reported, got %v", err)
	}
}

func TestSampleCount(t *testing.T) {
	for _, n := range []uint32{1, 2, 4, 8} {
		if err := SampleCount(n); err != nil {
			t.Errorf("SampleCount(%d) = %v, want nil", n, err)
		}
	}
	for _, n := range []uint32{0, 3, 6, 16} {
		if err := SampleCount(n); !errors.Is(err, gpucore.ErrValidation) {
			t.Errorf("SampleCount(%d) = %v, want ErrValidation", n, err)
		}
	}
}

func TestAlignUp(t *testing.T) {
	tests := []struct {
		value uint64
		align uint64
		want  uint64
	}{
		{0, 256, 0},
		{1, 256, 256},
		{255, 256, 256},
		{256, 256, 256},
		{257, 256, 512},
		{0, 0, 0},
		{12345, 0, 12345},
		{13, 4, 16},
	}

	for _, tt := range tests {
		if got := AlignUp(tt.value, tt.align); got != tt.want {
			t.Errorf("AlignUp(%d, %d) = %d, want %d", tt.value, tt.align, got, tt.want)
		}
	}
}

func TestSlotSet(t *testing.T) {
	var s SlotSet
	if s.Has(0) {
		t.Error("empty set reports slot 0")
	}
	s.Add(0)
	s.Add(63)
	if !s.Has(0) || !s.Has(63) {
		t.Error("added slots not found")
	}
	s.Add(64) // out of range, ignored
	if s.Has(64) {
		t.Error("slot 64 should never report bound")
	}
	s.Clear()
	if s.Has(0) {
		t.Error("Clear did not empty the set")
	}
}
