package tensor

import (
	"cmp"
	"slices"
	"unsafe"

	"github.com/pkg/errors"
)

// View is an N-dimensional window over a flat buffer of T.
//
// Elements are addressed by their linear (row-major logical) index, so an
// elementwise function can iterate any view with a single loop regardless of
// rank or memory layout.
type View[T Float] struct {
	data       []T   // Caller-owned buffer
	shape      Shape // View dimensions
	strides    []int // Buffer strides per dimension, in elements
	offset     int   // Buffer position of element 0
	contiguous bool  // Dense row-major layout starting at offset
}

// NewView allocates a zero-filled contiguous view with the given shape.
func NewView[T Float](shape Shape) (*View[T], error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	return &View[T]{
		data:       make([]T, shape.NumElements()),
		shape:      shape.Clone(),
		strides:    shape.ComputeStrides(),
		contiguous: true,
	}, nil
}

// FromSlice wraps data as a contiguous view without copying.
// len(data) must equal shape.NumElements().
func FromSlice[T Float](data []T, shape Shape) (*View[T], error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if n := shape.NumElements(); len(data) != n {
		return nil, errors.Wrapf(ErrInvalidShape, "data has %d elements, shape %v needs %d", len(data), shape, n)
	}
	return &View[T]{
		data:       data,
		shape:      shape.Clone(),
		strides:    shape.ComputeStrides(),
		contiguous: true,
	}, nil
}

// Strided wraps data with explicit strides and a starting offset.
// Strides must be non-negative and every addressed element must lie inside data.
// A zero stride repeats one element along that dimension; such a view can be
// read from but is rejected as a write target (see Injective).
func Strided[T Float](data []T, shape Shape, strides []int, offset int) (*View[T], error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if len(strides) != len(shape) {
		return nil, errors.Wrapf(ErrInvalidShape, "got %d strides for rank %d", len(strides), len(shape))
	}
	if offset < 0 {
		return nil, errors.Wrapf(ErrInvalidShape, "negative offset %d", offset)
	}

	last := offset
	for i, s := range strides {
		if s < 0 {
			return nil, errors.Wrapf(ErrInvalidShape, "negative stride %d at dimension %d", s, i)
		}
		last += (shape[i] - 1) * s
	}
	if last >= len(data) {
		return nil, errors.Wrapf(ErrInvalidShape, "view reaches element %d of a %d element buffer", last, len(data))
	}

	v := &View[T]{
		data:    data,
		shape:   shape.Clone(),
		strides: append([]int(nil), strides...),
		offset:  offset,
	}
	v.contiguous = isRowMajor(v.shape, v.strides)
	return v, nil
}

// isRowMajor reports whether strides describe a dense row-major layout.
// Dimensions of size 1 may carry any stride.
func isRowMajor(shape Shape, strides []int) bool {
	expected := 1
	for i := len(shape) - 1; i >= 0; i-- {
		if shape[i] != 1 && strides[i] != expected {
			return false
		}
		expected *= shape[i]
	}
	return true
}

// Injective reports whether distinct linear indices always address distinct
// buffer positions. Dimensions of size 1 are ignored. Sorted by stride, every
// stride must step past all positions the smaller strides reach.
func (v *View[T]) Injective() bool {
	if v.contiguous {
		return true
	}
	type dim struct{ size, stride int }
	dims := make([]dim, 0, len(v.shape))
	for i, d := range v.shape {
		if d > 1 {
			dims = append(dims, dim{d, v.strides[i]})
		}
	}
	slices.SortFunc(dims, func(a, b dim) int { return cmp.Compare(a.stride, b.stride) })

	extent := 1
	for _, d := range dims {
		if d.stride < extent {
			return false
		}
		extent += (d.size - 1) * d.stride
	}
	return true
}

// Shape returns the view's shape.
func (v *View[T]) Shape() Shape {
	return v.shape
}

// Strides returns the view's strides in elements.
func (v *View[T]) Strides() []int {
	return v.strides
}

// DType returns the runtime data type.
func (v *View[T]) DType() DataType {
	return DataTypeOf[T]()
}

// NumElements returns the total number of elements.
func (v *View[T]) NumElements() int {
	return v.shape.NumElements()
}

// IsContiguous reports whether the view covers a dense row-major range of the buffer.
func (v *View[T]) IsContiguous() bool {
	return v.contiguous
}

// Data returns the whole underlying buffer.
// WARNING: Direct access to caller-owned memory.
func (v *View[T]) Data() []T {
	return v.data
}

// Contiguous returns the dense range of the buffer covered by the view.
// Panics if the view is not contiguous.
func (v *View[T]) Contiguous() []T {
	if !v.contiguous {
		panic("tensor: Contiguous called on a strided view")
	}
	return v.data[v.offset : v.offset+v.NumElements()]
}

// Offset maps a linear index to its position in the buffer.
func (v *View[T]) Offset(i int) int {
	if v.contiguous {
		return v.offset + i
	}
	pos := v.offset
	for d := len(v.shape) - 1; d >= 0; d-- {
		pos += (i % v.shape[d]) * v.strides[d]
		i /= v.shape[d]
	}
	return pos
}

// At returns the element at linear index i.
func (v *View[T]) At(i int) T {
	return v.data[v.Offset(i)]
}

// Set writes the element at linear index i.
func (v *View[T]) Set(i int, x T) {
	v.data[v.Offset(i)] = x
}

// Fill writes x to every element of the view.
func (v *View[T]) Fill(x T) {
	if v.contiguous {
		dst := v.Contiguous()
		for i := range dst {
			dst[i] = x
		}
		return
	}
	for i := range v.NumElements() {
		v.Set(i, x)
	}
}

// ToSlice copies the elements out in logical order.
func (v *View[T]) ToSlice() []T {
	if v.contiguous {
		return append([]T(nil), v.Contiguous()...)
	}
	out := make([]T, v.NumElements())
	for i := range out {
		out[i] = v.At(i)
	}
	return out
}

// Reshape returns a view of the same elements with another shape.
// Only contiguous views can be reshaped.
func (v *View[T]) Reshape(shape Shape) (*View[T], error) {
	if !v.contiguous {
		return nil, errors.Wrap(ErrInvalidShape, "reshape of a strided view")
	}
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if shape.NumElements() != v.NumElements() {
		return nil, errors.WithStack(&SizeMismatchError{
			Index:    1,
			Want:     v.NumElements(),
			Got:      shape.NumElements(),
			WantDims: v.shape.Clone(),
			GotDims:  shape.Clone(),
		})
	}
	return &View[T]{
		data:       v.data,
		shape:      shape.Clone(),
		strides:    shape.ComputeStrides(),
		offset:     v.offset,
		contiguous: true,
	}, nil
}

// Overlaps reports whether two views share any part of the same buffer.
// It compares the buffer ranges spanned by each view, so two interleaved
// strided views over one buffer count as overlapping.
func Overlaps[T Float](a, b *View[T]) bool {
	if len(a.data) == 0 || len(b.data) == 0 {
		return false
	}
	aLo, aHi := a.span()
	bLo, bHi := b.span()
	return aLo < bHi && bLo < aHi
}

// SameLayout reports whether a and b address exactly the same buffer
// positions for every linear index, i.e. writing through one and reading
// through the other is an in-place update.
func SameLayout[T Float](a, b *View[T]) bool {
	if len(a.data) == 0 || len(b.data) == 0 {
		return false
	}
	if &a.data[a.offset] != &b.data[b.offset] {
		return false
	}
	if a.NumElements() != b.NumElements() {
		return false
	}
	if a.contiguous && b.contiguous {
		return true
	}
	if !a.shape.Equal(b.shape) {
		return false
	}
	for i := range a.strides {
		if a.shape[i] != 1 && a.strides[i] != b.strides[i] {
			return false
		}
	}
	return true
}

// span returns the [lo, hi) address range of the elements the view can reach.
func (v *View[T]) span() (lo, hi uintptr) {
	size := unsafe.Sizeof(v.data[0])
	last := v.offset
	for i, s := range v.strides {
		last += (v.shape[i] - 1) * s
	}
	base := uintptr(unsafe.Pointer(unsafe.SliceData(v.data)))
	return base + uintptr(v.offset)*size, base + uintptr(last+1)*size
}
