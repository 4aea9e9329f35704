// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public array view used by transform functions.
//
// # Overview
//
// A View is a typed window onto caller-owned storage:
//   - Generic over float32 and float64
//   - Contiguous or strided layouts (transposes, slices)
//   - Zero-copy: the caller owns the buffer
//
// # Basic Usage
//
//	import "github.com/born-ml/transform/tensor"
//
//	func main() {
//	    x, _ := tensor.FromSlice([]float32{-2, -1, 0, 1, 2}, tensor.Shape{5})
//	    y, _ := tensor.NewView[float32](tensor.Shape{5})
//
//	    // Strided view of a [2,3] buffer read as its transpose
//	    xt, _ := tensor.Strided([]float64{1, 2, 3, 4, 5, 6}, tensor.Shape{3, 2}, []int{1, 3}, 0)
//	}
//
// # Element Access
//
// Views are indexed by their logical row-major position regardless of
// layout. At and Set panic on out-of-range indices.
//
// # Errors
//
// Operations that combine views return errors matching ErrSizeMismatch and
// ErrShapeMismatch when element counts differ; invalid shapes or strides
// match ErrInvalidShape.
package tensor
