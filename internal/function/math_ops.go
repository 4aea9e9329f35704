package function

import "math"

// registerMathOps adds elementwise math functions to the registry.
func (r *Registry) registerMathOps() {
	r.mustRegister("ACos", noArgs(ACos()))
	r.mustRegister("Round", noArgs(Round()))
	r.mustRegister("Identity", noArgs(Identity()))
	r.mustRegister("Sign", createSign)
}

// ACos is the inverse cosine.
// Forward yields NaN for |x| > 1 and the gradient is infinite at |x| == 1.
func ACos() Config {
	return Config{
		Name:    "ACos",
		Forward: math.Acos,
		Backward: func(dy, x float64) float64 {
			return -dy / math.Sqrt(1-x*x)
		},
		Source: SourceInput,
		Doc:    "y = acos(x); dx = -dy / sqrt(1 - x^2); NaN outside [-1, 1], infinite gradient at ±1",
	}
}

// Round rounds half away from zero. The gradient is passed straight through.
func Round() Config {
	return Config{
		Name:    "Round",
		Forward: math.Round,
		Backward: func(dy, _ float64) float64 {
			return dy
		},
		Source: SourceInput,
		Doc:    "y = sign(x) * floor(|x| + 0.5); dx = dy (straight-through)",
	}
}

// Identity copies its input and may run in place.
func Identity() Config {
	return Config{
		Name: "Identity",
		Forward: func(x float64) float64 {
			return x
		},
		Backward: func(dy, _ float64) float64 {
			return dy
		},
		Source:   SourceOutput,
		InPlace:  true,
		Kernel32: copyKernel[float32],
		Kernel64: copyKernel[float64],
		Doc:      "y = x; dx = dy",
	}
}

func copyKernel[T float32 | float64](in, out []T) {
	copy(out, in)
}

func createSign(args ...float64) (Config, error) {
	alpha, err := optionalArg("Sign", args, 1)
	if err != nil {
		return Config{}, err
	}
	return Sign(alpha), nil
}

// Sign returns 1 for positive x, -1 for negative x and alpha at zero.
// The gradient is passed straight through.
func Sign(alpha float64) Config {
	return Config{
		Name: "Sign",
		Forward: func(x float64) float64 {
			switch {
			case x > 0:
				return 1
			case x < 0:
				return -1
			default:
				return alpha
			}
		},
		Backward: func(dy, _ float64) float64 {
			return dy
		},
		Source: SourceInput,
		Doc:    "y = sign(x), alpha at 0; dx = dy (straight-through)",
	}
}
