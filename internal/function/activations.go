package function

import (
	"math"

	"github.com/pkg/errors"
)

// registerActivations adds activation functions to the registry.
func (r *Registry) registerActivations() {
	r.mustRegister("SoftSign", noArgs(SoftSign()))
	r.mustRegister("SoftPlus", createSoftPlus)
	r.mustRegister("Tanh", noArgs(Tanh()))
	r.mustRegister("Sigmoid", noArgs(Sigmoid()))
}

func createSoftPlus(args ...float64) (Config, error) {
	beta, err := optionalArg("SoftPlus", args, 1)
	if err != nil {
		return Config{}, err
	}
	return SoftPlus(beta)
}

// SoftPlus is y = log(1 + exp(beta*x)) / beta.
// beta must be finite and non-zero.
func SoftPlus(beta float64) (Config, error) {
	if beta == 0 || math.IsNaN(beta) || math.IsInf(beta, 0) {
		return Config{}, errors.Wrapf(ErrInvalidArgument, "SoftPlus beta must be finite and non-zero, got %v", beta)
	}
	return Config{
		Name: "SoftPlus",
		Forward: func(x float64) float64 {
			// exp argument is kept non-positive.
			if beta*x > 0 {
				return x + math.Log1p(math.Exp(-beta*x))/beta
			}
			return math.Log1p(math.Exp(beta*x)) / beta
		},
		Backward: func(dy, x float64) float64 {
			return dy / (1 + math.Exp(-beta*x))
		},
		Source: SourceInput,
		Doc:    "y = log(1 + exp(beta*x)) / beta; dx = dy / (1 + exp(-beta*x))",
	}, nil
}

// Tanh is the hyperbolic tangent. Its gradient is written in terms of the output.
func Tanh() Config {
	return Config{
		Name:    "Tanh",
		Forward: math.Tanh,
		Backward: func(dy, y float64) float64 {
			return dy * (1 - y*y)
		},
		Source: SourceOutput,
		Doc:    "y = tanh(x); dx = dy * (1 - y^2)",
	}
}

// Sigmoid is the logistic function 1 / (1 + exp(-x)).
func Sigmoid() Config {
	return Config{
		Name: "Sigmoid",
		Forward: func(x float64) float64 {
			// Same curve, no overflow for large |x|.
			return 0.5 + 0.5*math.Tanh(0.5*x)
		},
		Backward: func(dy, y float64) float64 {
			return dy * y * (1 - y)
		},
		Source: SourceOutput,
		Doc:    "y = 1 / (1 + exp(-x)); dx = dy * y * (1 - y)",
	}
}
