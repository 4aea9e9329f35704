package dispatch

import (
	"math"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/transform/internal/parallel"
	"github.com/born-ml/transform/internal/tensor"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := New(Config{Parallel: parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 8}})
	t.Cleanup(e.Close)
	return e
}

func square(x float64) float64 { return x * x }

func TestForwardContiguous(t *testing.T) {
	e := newTestEngine(t)

	n := 1000
	in, _ := tensor.NewView[float32](tensor.Shape{10, 100})
	out, _ := tensor.NewView[float32](tensor.Shape{n})
	for i := range n {
		in.Set(i, float32(i))
	}

	require.NoError(t, Forward(e, in, out, square, nil))
	for i := range n {
		require.Equal(t, float32(i*i), out.At(i), "index %d", i)
	}
}

func TestForwardKernel(t *testing.T) {
	e := newTestEngine(t)

	in, _ := tensor.FromSlice([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, tensor.Shape{10})
	out, _ := tensor.NewView[float64](tensor.Shape{10})

	var calls atomic.Int32
	kernel := func(src, dst []float64) {
		calls.Add(1)
		for i := range src {
			dst[i] = -src[i]
		}
	}
	require.NoError(t, Forward(e, in, out, square, kernel))

	assert.Positive(t, calls.Load())
	assert.Equal(t, []float64{-1, -2, -3, -4, -5, -6, -7, -8, -9, -10}, out.ToSlice())
}

func TestForwardStrided(t *testing.T) {
	e := newTestEngine(t)

	// [2,3] buffer read as its [3,2] transpose, written densely.
	in, err := tensor.Strided([]float64{0, 1, 2, 3, 4, 5}, tensor.Shape{3, 2}, []int{1, 3}, 0)
	require.NoError(t, err)
	out, _ := tensor.NewView[float64](tensor.Shape{3, 2})

	kernelCalled := false
	kernel := func(_, _ []float64) { kernelCalled = true }
	require.NoError(t, Forward(e, in, out, square, kernel))

	assert.False(t, kernelCalled, "strided views bypass the dense kernel")
	assert.Equal(t, []float64{0, 9, 1, 16, 4, 25}, out.ToSlice())
}

func TestForwardInPlace(t *testing.T) {
	e := newTestEngine(t)

	data := make([]float32, 257)
	for i := range data {
		data[i] = float32(i)
	}
	v, _ := tensor.FromSlice(data, tensor.Shape{257})

	require.NoError(t, Forward(e, v, v, func(x float64) float64 { return x + 1 }, nil))
	for i := range data {
		require.Equal(t, float32(i+1), data[i])
	}
}

func TestBackward(t *testing.T) {
	e := newTestEngine(t)

	gy, _ := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{4})
	src, _ := tensor.FromSlice([]float64{10, 20, 30, 40}, tensor.Shape{2, 2})
	gx, _ := tensor.FromSlice([]float64{100, 100, 100, 100}, tensor.Shape{4})
	mul := func(dy, v float64) float64 { return dy * v }

	require.NoError(t, Backward(e, gy, src, gx, mul, false))
	assert.Equal(t, []float64{10, 40, 90, 160}, gx.ToSlice())

	require.NoError(t, Backward(e, gy, src, gx, mul, true))
	assert.Equal(t, []float64{20, 80, 180, 320}, gx.ToSlice())
}

func TestBackwardStridedAccumulate(t *testing.T) {
	e := newTestEngine(t)

	gy, _ := tensor.FromSlice([]float32{1, 1, 1}, tensor.Shape{3})
	src, _ := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{3})
	buf := []float32{5, 0, 5, 0, 5, 0}
	gx, err := tensor.Strided(buf, tensor.Shape{3}, []int{2}, 0)
	require.NoError(t, err)

	require.NoError(t, Backward(e, gy, src, gx, func(dy, v float64) float64 { return dy * v }, true))
	assert.Equal(t, []float32{6, 0, 7, 0, 8, 0}, buf)
}

func TestSizeMismatch(t *testing.T) {
	e := newTestEngine(t)

	shapes := []tensor.Shape{
		{5},
		{2, 3},
		{2, 3, 4},
		{2, 3, 4, 5},
	}
	for _, shape := range shapes {
		in, _ := tensor.NewView[float32](shape)
		bigger := append(shape.Clone(), 2)
		out, _ := tensor.NewView[float32](bigger)

		err := Forward(e, in, out, square, nil)
		assert.True(t, errors.Is(err, tensor.ErrSizeMismatch), "forward rank %d", len(shape))

		err = Backward(e, in, in, out, func(dy, _ float64) float64 { return dy }, false)
		assert.True(t, errors.Is(err, tensor.ErrSizeMismatch), "backward rank %d", len(shape))
	}
}

func TestClosedEngine(t *testing.T) {
	e := New(Config{Parallel: parallel.Config{Enabled: false}})
	e.Close()
	e.Close()

	v, _ := tensor.NewView[float64](tensor.Shape{2})
	assert.ErrorIs(t, Forward(e, v, v, math.Abs, nil), ErrClosed)
	assert.ErrorIs(t, Backward(e, v, v, v, func(dy, _ float64) float64 { return dy }, false), ErrClosed)
}

func TestDefault(t *testing.T) {
	e := Default()
	require.NotNil(t, e)
	assert.Same(t, e, Default())
	assert.GreaterOrEqual(t, e.NumWorkers(), 1)
	assert.NotEmpty(t, e.SIMD())
}

func TestRepeatedWriteTargetRejected(t *testing.T) {
	e := newTestEngine(t)

	n := 10000
	cell := make([]float64, 1)
	repeated, err := tensor.Strided(cell, tensor.Shape{n}, []int{0}, 0)
	require.NoError(t, err)
	src, _ := tensor.NewView[float64](tensor.Shape{n})
	gy, _ := tensor.NewView[float64](tensor.Shape{n})
	gy.Fill(1)

	err = Forward(e, src, repeated, square, nil)
	assert.ErrorIs(t, err, tensor.ErrInvalidShape)

	err = Backward(e, gy, src, repeated, func(dy, _ float64) float64 { return dy }, true)
	assert.ErrorIs(t, err, tensor.ErrInvalidShape)
	assert.Equal(t, []float64{0}, cell, "nothing written")

	// Reading through a repeated view is fine.
	out, _ := tensor.NewView[float64](tensor.Shape{n})
	cell[0] = 3
	require.NoError(t, Forward(e, repeated, out, square, nil))
	for i := range n {
		require.Equal(t, 9.0, out.At(i), "index %d", i)
	}
}

func TestBackwardStridedAccumulateParallel(t *testing.T) {
	e := newTestEngine(t)

	n := 10000
	buf := make([]float64, 2*n)
	for i := range buf {
		buf[i] = 1
	}
	gx, err := tensor.Strided(buf, tensor.Shape{n}, []int{2}, 1)
	require.NoError(t, err)
	gy, _ := tensor.NewView[float64](tensor.Shape{n})
	src, _ := tensor.NewView[float64](tensor.Shape{n})
	gy.Fill(1)

	pass := func(dy, _ float64) float64 { return dy }
	require.NoError(t, Backward(e, gy, src, gx, pass, true))
	require.NoError(t, Backward(e, gy, src, gx, pass, true))
	for i := range n {
		require.Equal(t, 1.0, buf[2*i], "untouched element %d", 2*i)
		require.Equal(t, 3.0, buf[2*i+1], "gradient element %d", 2*i+1)
	}
}
