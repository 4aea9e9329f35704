package function

import "math"

// SoftSign is y = x / (1 + |x|).
//
// It maps the real line onto (-1, 1) and has no singularities: the
// denominator is at least 1. The gradient dy / (1 + |x|)^2 is written in
// terms of x, so the function cannot run in place.
func SoftSign() Config {
	return Config{
		Name:     "SoftSign",
		Forward:  softSignForward,
		Backward: softSignBackward,
		Source:   SourceInput,
		Kernel32: softSignKernel[float32],
		Kernel64: softSignKernel[float64],
		Doc:      "y = x / (1 + |x|); dx = dy / (1 + |x|)^2",
	}
}

func softSignForward(x float64) float64 {
	return x / (1 + math.Abs(x))
}

func softSignBackward(dy, x float64) float64 {
	d := 1 + math.Abs(x)
	return dy / (d * d)
}

// softSignKernel computes SoftSign over a dense chunk in T without
// allocating. Splitting on the sign replaces the Abs call.
func softSignKernel[T float32 | float64](input, output []T) {
	n := min(len(input), len(output))
	for i, x := range input[:n] {
		if x < 0 {
			output[i] = x / (1 - x)
		} else {
			output[i] = x / (1 + x)
		}
	}
}
