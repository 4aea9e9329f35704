// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/transform/internal/tensor"
)

// Type aliases for public API

// Float is a constraint for supported element types: float32 and float64.
type Float = tensor.Float

// DataType is the runtime tag of an element type.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
)

// Shape represents the dimensions of a view.
// Example: Shape{2, 3, 4} represents a 3D view with dimensions 2×3×4.
type Shape = tensor.Shape

// View is a typed array view over caller-owned storage.
type View[T Float] = tensor.View[T]

// SizeMismatchError reports two views with different element counts.
type SizeMismatchError = tensor.SizeMismatchError

// Errors.
var (
	ErrInvalidShape  = tensor.ErrInvalidShape
	ErrShapeMismatch = tensor.ErrShapeMismatch
	ErrSizeMismatch  = tensor.ErrSizeMismatch
)

// NewView allocates a zero-filled contiguous view.
func NewView[T Float](shape Shape) (*View[T], error) {
	return tensor.NewView[T](shape)
}

// FromSlice wraps data as a contiguous view without copying.
// len(data) must equal shape.NumElements().
func FromSlice[T Float](data []T, shape Shape) (*View[T], error) {
	return tensor.FromSlice(data, shape)
}

// Strided wraps data with explicit per-dimension strides and a start offset.
func Strided[T Float](data []T, shape Shape, strides []int, offset int) (*View[T], error) {
	return tensor.Strided(data, shape, strides, offset)
}

// ParseDataType parses "float32", "f32", "float64" or "f64".
func ParseDataType(s string) (DataType, bool) {
	return tensor.ParseDataType(s)
}

// Overlaps reports whether two views share any storage.
func Overlaps[T Float](a, b *View[T]) bool {
	return tensor.Overlaps(a, b)
}
