// Package function implements unary elementwise transform functions with
// automatic differentiation support.
//
// A new function is defined by a Config carrying a forward scalar formula, a
// backward scalar formula and a few flags. UnaryTransform wires those
// formulas into the two-phase contract a graph engine expects:
//
//   - Forward: y[i] = f(x[i])
//   - Backward: dx[i] = g(dy[i], x[i]) or g(dy[i], y[i])
//
// Iteration, parallelism and in-place handling come from the dispatch engine,
// so every function defined this way is data-parallel and differentiable
// without writing a loop.
package function

import (
	"github.com/pkg/errors"

	"github.com/born-ml/transform/internal/dispatch"
	"github.com/born-ml/transform/internal/tensor"
)

// Source selects which forward array the backward formula reads.
type Source int

// Backward sources.
const (
	SourceInput  Source = iota // g(dy, x)
	SourceOutput               // g(dy, y)
)

// String returns a human-readable source name.
func (s Source) String() string {
	switch s {
	case SourceInput:
		return "input"
	case SourceOutput:
		return "output"
	default:
		return "unknown"
	}
}

// Config describes one unary transform function.
type Config struct {
	Name string

	// Forward computes y from x.
	Forward func(x float64) float64

	// Backward computes the input gradient from the upstream gradient dy and
	// v, which is x or y depending on Source. It may be nil only if NoGrad.
	Backward func(dy, v float64) float64

	Source     Source // Array passed to Backward as v.
	InPlace    bool   // Output may alias input.
	NoGrad     bool   // Backward always fails with ErrNotDifferentiable.
	Accumulate bool   // Backward adds into the gradient buffer by default.

	// Optional dense kernels, equivalent to Forward element by element.
	Kernel32 func(in, out []float32)
	Kernel64 func(in, out []float64)

	// Doc describes the function and any numeric failure modes.
	Doc string
}

// Validate checks that the config describes a usable function.
func (c Config) Validate() error {
	switch {
	case c.Name == "":
		return errors.Wrap(ErrInvalidConfig, "empty name")
	case c.Forward == nil:
		return errors.Wrapf(ErrInvalidConfig, "%s: nil forward formula", c.Name)
	case c.Backward == nil && !c.NoGrad:
		return errors.Wrapf(ErrInvalidConfig, "%s: nil backward formula", c.Name)
	case c.Source != SourceInput && c.Source != SourceOutput:
		return errors.Wrapf(ErrInvalidConfig, "%s: unknown backward source %d", c.Name, c.Source)
	case c.InPlace && c.Source == SourceInput && !c.NoGrad:
		// In-place forward destroys the input the backward formula needs.
		return errors.Wrapf(ErrInvalidConfig, "%s: in-place function cannot differentiate from its input", c.Name)
	}
	return nil
}

// UnaryTransform is a function with one input and one output array.
//
// It holds no per-call state: the same instance can serve any number of
// concurrent calls as long as those calls use disjoint buffers. Valid call
// sequences are Forward alone, or Forward followed by at most one Backward on
// the same arrays. Backward without a prior Forward is not detected.
type UnaryTransform[T tensor.Float] struct {
	cfg    Config
	kernel dispatch.Kernel[T]
	engine *dispatch.Engine
}

// New binds cfg to element type T. A nil engine means dispatch.Default().
func New[T tensor.Float](cfg Config, e *dispatch.Engine) (*UnaryTransform[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if e == nil {
		e = dispatch.Default()
	}

	u := &UnaryTransform[T]{cfg: cfg, engine: e}
	switch k := any(&u.kernel).(type) {
	case *dispatch.Kernel[float32]:
		if cfg.Kernel32 != nil {
			*k = cfg.Kernel32
		}
	case *dispatch.Kernel[float64]:
		if cfg.Kernel64 != nil {
			*k = cfg.Kernel64
		}
	}
	return u, nil
}

// Name returns the function name.
func (u *UnaryTransform[T]) Name() string {
	return u.cfg.Name
}

// Config returns the function's configuration.
func (u *UnaryTransform[T]) Config() Config {
	return u.cfg
}

// Differentiable reports whether Backward is supported.
func (u *UnaryTransform[T]) Differentiable() bool {
	return !u.cfg.NoGrad
}

// Forward computes outputs[0] from inputs[0].
//
// The two views must have the same element count. They may share storage
// only if the function supports in-place computation and both views address
// the same elements in the same order.
func (u *UnaryTransform[T]) Forward(inputs, outputs []*tensor.View[T]) error {
	if len(inputs) != 1 || len(outputs) != 1 {
		return errors.Wrapf(ErrArity, "%s forward: want 1 input and 1 output, got %d and %d",
			u.cfg.Name, len(inputs), len(outputs))
	}
	x, y := inputs[0], outputs[0]
	if err := tensor.CheckSameSize(x, y); err != nil {
		return errors.Wrapf(err, "%s forward", u.cfg.Name)
	}
	if tensor.Overlaps(x, y) {
		if !u.cfg.InPlace {
			return errors.Wrapf(ErrInPlaceNotSupported, "%s: output aliases input", u.cfg.Name)
		}
		if !tensor.SameLayout(x, y) {
			return errors.Wrapf(ErrInPlaceNotSupported, "%s: output partially overlaps input", u.cfg.Name)
		}
	}
	return errors.Wrapf(dispatch.Forward(u.engine, x, y, u.cfg.Forward, u.kernel), "%s forward", u.cfg.Name)
}

// Backward computes gradInputs[0] from gradOutputs[0] using the function's
// default accumulate flag. Nothing is computed if propagate[0] is false; a
// nil propagate slice propagates to every input.
//
// gradInputs[0] may share storage with gradOutputs[0] or the array the
// backward formula reads only if both address the same elements in the same
// order.
func (u *UnaryTransform[T]) Backward(inputs, outputs, gradOutputs, gradInputs []*tensor.View[T], propagate []bool) error {
	return u.BackwardAccumulate(inputs, outputs, gradOutputs, gradInputs, propagate, nil)
}

// BackwardAccumulate is Backward with a per-input accumulate override.
// A nil accumulate slice falls back to Config.Accumulate.
func (u *UnaryTransform[T]) BackwardAccumulate(inputs, outputs, gradOutputs, gradInputs []*tensor.View[T], propagate, accumulate []bool) error {
	if u.cfg.NoGrad {
		return errors.Wrapf(ErrNotDifferentiable, "%s", u.cfg.Name)
	}
	if len(inputs) != 1 || len(outputs) != 1 || len(gradOutputs) != 1 || len(gradInputs) != 1 {
		return errors.Wrapf(ErrArity, "%s backward: want 1 array each, got %d inputs, %d outputs, %d output grads, %d input grads",
			u.cfg.Name, len(inputs), len(outputs), len(gradOutputs), len(gradInputs))
	}
	if propagate != nil && len(propagate) != 1 {
		return errors.Wrapf(ErrArity, "%s backward: got %d propagate flags", u.cfg.Name, len(propagate))
	}
	if accumulate != nil && len(accumulate) != 1 {
		return errors.Wrapf(ErrArity, "%s backward: got %d accumulate flags", u.cfg.Name, len(accumulate))
	}
	if propagate != nil && !propagate[0] {
		return nil
	}

	accum := u.cfg.Accumulate
	if accumulate != nil {
		accum = accumulate[0]
	}
	src := inputs[0]
	if u.cfg.Source == SourceOutput {
		src = outputs[0]
	}
	if err := tensor.CheckSameSize(inputs[0], outputs[0]); err != nil {
		return errors.Wrapf(err, "%s backward", u.cfg.Name)
	}
	gy, gx := gradOutputs[0], gradInputs[0]
	for _, r := range [...]*tensor.View[T]{gy, src} {
		if tensor.Overlaps(gx, r) && !tensor.SameLayout(gx, r) {
			return errors.Wrapf(ErrInPlaceNotSupported, "%s backward: input gradient partially overlaps an array it reads", u.cfg.Name)
		}
	}
	return errors.Wrapf(dispatch.Backward(u.engine, gy, src, gx, u.cfg.Backward, accum),
		"%s backward", u.cfg.Name)
}
