package dispatch

import (
	"github.com/pkg/errors"

	"github.com/born-ml/transform/internal/tensor"
)

// Kernel computes a forward formula over a dense chunk: out[i] = f(in[i]).
// in and out have equal length and may be the same slice.
type Kernel[T tensor.Float] func(in, out []T)

// Forward computes out[i] = f(in[i]) for every linear index i.
// out must be injective; in may repeat elements.
//
// When both views are contiguous and kernel is non-nil, each chunk is handed
// to kernel instead of calling f per element. out may alias in: each output
// element is written only after its co-indexed input element has been read.
func Forward[T tensor.Float](e *Engine, in, out *tensor.View[T], f func(x float64) float64, kernel Kernel[T]) error {
	if err := e.check(); err != nil {
		return err
	}
	if err := tensor.CheckSameSize(in, out); err != nil {
		return errors.Wrap(err, "forward")
	}
	if !out.Injective() {
		return errors.Wrap(tensor.ErrInvalidShape, "forward: output addresses an element more than once")
	}

	n := in.NumElements()
	if in.IsContiguous() && out.IsContiguous() {
		src, dst := in.Contiguous(), out.Contiguous()
		if kernel != nil {
			e.pool.For(n, func(start, end int) {
				kernel(src[start:end], dst[start:end])
			})
			return nil
		}
		e.pool.For(n, func(start, end int) {
			for i := start; i < end; i++ {
				dst[i] = T(f(float64(src[i])))
			}
		})
		return nil
	}

	e.pool.For(n, func(start, end int) {
		for i := start; i < end; i++ {
			out.Set(i, T(f(float64(in.At(i)))))
		}
	})
	return nil
}

// Backward computes delta = g(gy[i], src[i]) for every linear index i and
// stores it into gx, adding to the existing value when accumulate is set.
//
// src is the forward input or the forward output, whichever the formula is
// written in terms of. gx must be injective.
func Backward[T tensor.Float](e *Engine, gy, src, gx *tensor.View[T], g func(dy, v float64) float64, accumulate bool) error {
	if err := e.check(); err != nil {
		return err
	}
	if err := tensor.CheckSameSize(gy, src, gx); err != nil {
		return errors.Wrap(err, "backward")
	}
	if !gx.Injective() {
		return errors.Wrap(tensor.ErrInvalidShape, "backward: gradient addresses an element more than once")
	}

	n := gx.NumElements()
	if gy.IsContiguous() && src.IsContiguous() && gx.IsContiguous() {
		dy, v, dx := gy.Contiguous(), src.Contiguous(), gx.Contiguous()
		if accumulate {
			e.pool.For(n, func(start, end int) {
				for i := start; i < end; i++ {
					dx[i] += T(g(float64(dy[i]), float64(v[i])))
				}
			})
			return nil
		}
		e.pool.For(n, func(start, end int) {
			for i := start; i < end; i++ {
				dx[i] = T(g(float64(dy[i]), float64(v[i])))
			}
		})
		return nil
	}

	e.pool.For(n, func(start, end int) {
		for i := start; i < end; i++ {
			delta := T(g(float64(gy.At(i)), float64(src.At(i))))
			if accumulate {
				delta += gx.At(i)
			}
			gx.Set(i, delta)
		}
	})
	return nil
}
