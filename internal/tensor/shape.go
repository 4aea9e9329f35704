package tensor

import (
	"slices"

	"github.com/pkg/errors"
)

// Shape lists the dimensions of a view, outermost first.
// A rank-0 shape is a scalar with one element.
type Shape []int

// NumElements returns the product of the dimensions.
func (s Shape) NumElements() int {
	n := 1
	for _, d := range s {
		n *= d
	}
	return n
}

// Validate fails with ErrInvalidShape if any dimension is not positive.
func (s Shape) Validate() error {
	if i := slices.IndexFunc(s, func(d int) bool { return d <= 0 }); i >= 0 {
		return errors.Wrapf(ErrInvalidShape, "%v: dimension %d is %d", s, i, s[i])
	}
	return nil
}

// Equal reports whether both shapes have the same dimensions.
func (s Shape) Equal(other Shape) bool {
	return slices.Equal(s, other)
}

// Clone returns an independent copy. Clone of nil is an empty shape.
func (s Shape) Clone() Shape {
	return append(Shape{}, s...)
}

// ComputeStrides returns dense row-major strides in elements:
// the last dimension has stride 1 and each earlier one spans everything after it.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	step := 1
	for i := len(s) - 1; i >= 0; i-- {
		strides[i] = step
		step *= s[i]
	}
	return strides
}
