// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"errors"
	"testing"

	"github.com/born-ml/transform/tensor"
)

// TestViewAPI verifies the View alias exposes the expected API.
func TestViewAPI(t *testing.T) {
	v, err := tensor.NewView[float32](tensor.Shape{2, 3})
	if err != nil {
		t.Fatalf("NewView failed: %v", err)
	}

	if !v.Shape().Equal(tensor.Shape{2, 3}) {
		t.Errorf("Shape() = %v, want [2 3]", v.Shape())
	}
	if v.DType() != tensor.Float32 {
		t.Errorf("DType() = %v, want Float32", v.DType())
	}
	if v.NumElements() != 6 {
		t.Errorf("NumElements() = %d, want 6", v.NumElements())
	}

	v.Set(4, 2.5)
	if got := v.At(4); got != 2.5 {
		t.Errorf("At(4) = %v, want 2.5", got)
	}
}

// TestFromSliceSharesStorage verifies FromSlice does not copy.
func TestFromSliceSharesStorage(t *testing.T) {
	data := []float64{1, 2, 3, 4}
	v, err := tensor.FromSlice(data, tensor.Shape{2, 2})
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	v.Set(0, 10)
	if data[0] != 10 {
		t.Errorf("data[0] = %v, want 10", data[0])
	}

	_, err = tensor.FromSlice(data, tensor.Shape{3})
	if !errors.Is(err, tensor.ErrInvalidShape) {
		t.Errorf("FromSlice with wrong shape: got %v, want ErrInvalidShape", err)
	}
}

// TestStridedTranspose verifies logical row-major indexing over a strided view.
func TestStridedTranspose(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5, 6}
	vt, err := tensor.Strided(data, tensor.Shape{3, 2}, []int{1, 3}, 0)
	if err != nil {
		t.Fatalf("Strided failed: %v", err)
	}
	if vt.IsContiguous() {
		t.Error("transposed view should not be contiguous")
	}

	want := []float64{1, 4, 2, 5, 3, 6}
	got := vt.ToSlice()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ToSlice()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if !tensor.Overlaps(vt, vt) {
		t.Error("view should overlap itself")
	}
}

// TestParseDataType verifies data type names.
func TestParseDataType(t *testing.T) {
	tests := []struct {
		in   string
		want tensor.DataType
		ok   bool
	}{
		{"float32", tensor.Float32, true},
		{"f64", tensor.Float64, true},
		{"int8", 0, false},
	}
	for _, tt := range tests {
		got, ok := tensor.ParseDataType(tt.in)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("ParseDataType(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
