// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package onnx_test

import (
	"errors"
	"testing"

	"github.com/born-ml/transform/onnx"
	"github.com/born-ml/transform/tensor"
)

// TestBuildSoftsign verifies a Softsign node round-trips and evaluates.
func TestBuildSoftsign(t *testing.T) {
	raw := onnx.MarshalNode(&onnx.Node{
		Name:    "act",
		OpType:  "Softsign",
		Inputs:  []string{"x"},
		Outputs: []string{"y"},
	})

	node, err := onnx.ParseNode(raw)
	if err != nil {
		t.Fatalf("ParseNode failed: %v", err)
	}
	fn, err := onnx.Build[float64](node)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if fn.Name() != "SoftSign" {
		t.Errorf("Name() = %q, want SoftSign", fn.Name())
	}

	x, _ := tensor.FromSlice([]float64{-1, 3}, tensor.Shape{2})
	y, _ := tensor.NewView[float64](tensor.Shape{2})
	if err := fn.Forward([]*tensor.View[float64]{x}, []*tensor.View[float64]{y}); err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	if got := y.ToSlice(); got[0] != -0.5 || got[1] != 0.75 {
		t.Errorf("Forward = %v, want [-0.5 0.75]", got)
	}
}

// TestUnsupportedOp verifies unknown op types are rejected.
func TestUnsupportedOp(t *testing.T) {
	_, err := onnx.Build[float32](&onnx.Node{OpType: "Relu"})
	if !errors.Is(err, onnx.ErrUnsupportedOp) {
		t.Errorf("Build(Relu) error = %v, want ErrUnsupportedOp", err)
	}
}

// TestListSupportedOps verifies the supported op list.
func TestListSupportedOps(t *testing.T) {
	ops := onnx.ListSupportedOps()
	found := false
	for _, op := range ops {
		if op == "Softsign" {
			found = true
		}
	}
	if !found {
		t.Errorf("ListSupportedOps() = %v, missing Softsign", ops)
	}
}
