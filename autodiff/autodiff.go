// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides a reverse-mode gradient tape over transform
// functions.
//
// Example:
//
//	import (
//	    "github.com/born-ml/transform/autodiff"
//	    "github.com/born-ml/transform/function"
//	    "github.com/born-ml/transform/tensor"
//	)
//
//	func main() {
//	    softsign, _ := function.SoftSign[float32]()
//	    data, _ := tensor.FromSlice([]float32{-1, 0, 1}, tensor.Shape{3})
//
//	    tape := autodiff.NewTape[float32]()
//	    tape.StartRecording()
//
//	    x := autodiff.NewVariable(data, true)
//	    y, _ := tape.Apply(softsign, x) // Recorded on tape
//
//	    // Compute gradients of sum(y)
//	    _ = tape.Backward(y)
//	    // x.Grad = [0.25 1 0.25]
//	}
package autodiff

import (
	"github.com/born-ml/transform/internal/graph"
	"github.com/born-ml/transform/internal/tensor"
)

// Tape records function applications for automatic differentiation.
type Tape[T tensor.Float] = graph.Tape[T]

// Variable is an array that participates in a recorded computation.
type Variable[T tensor.Float] = graph.Variable[T]

// NewTape creates an empty tape that is not recording.
func NewTape[T tensor.Float]() *Tape[T] {
	return graph.NewTape[T]()
}

// NewVariable wraps data as a leaf variable.
func NewVariable[T tensor.Float](data *tensor.View[T], needGrad bool) *Variable[T] {
	return graph.NewVariable(data, needGrad)
}
