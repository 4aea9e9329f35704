package function

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/diff/fd"
)

// CheckGradient compares the backward formula of cfg against a central
// finite difference of its forward formula at every point.
//
// The analytic derivative at x is Backward(1, x) or Backward(1, Forward(x))
// depending on cfg.Source. A point fails when the two differ by more than
// tol * max(1, |numeric|). Points where the forward formula is not finite
// are skipped.
func CheckGradient(cfg Config, points []float64, step, tol float64) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.NoGrad {
		return errors.Wrapf(ErrNotDifferentiable, "%s", cfg.Name)
	}

	settings := &fd.Settings{Formula: fd.Central, Step: step}
	for _, x := range points {
		y := cfg.Forward(x)
		if math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}

		v := x
		if cfg.Source == SourceOutput {
			v = y
		}
		analytic := cfg.Backward(1, v)
		numeric := fd.Derivative(cfg.Forward, x, settings)

		if math.Abs(analytic-numeric) > tol*math.Max(1, math.Abs(numeric)) {
			return errors.Wrapf(ErrGradientCheck, "%s at x=%g: analytic %g, numeric %g",
				cfg.Name, x, analytic, numeric)
		}
	}
	return nil
}
