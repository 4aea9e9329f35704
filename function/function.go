// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package function provides differentiable unary elementwise functions.
//
// Each function maps every element of an input view to the matching element
// of an output view, and can propagate gradients back through the same
// mapping. Functions are built from a Config holding the scalar forward and
// backward formulas; iteration, parallelism and SIMD dispatch are shared.
//
// Example:
//
//	import (
//	    "github.com/born-ml/transform/function"
//	    "github.com/born-ml/transform/tensor"
//	)
//
//	func main() {
//	    softsign, _ := function.SoftSign[float32]()
//
//	    x, _ := tensor.FromSlice([]float32{-2, -1, 0, 1, 2}, tensor.Shape{5})
//	    y, _ := tensor.NewView[float32](tensor.Shape{5})
//	    _ = softsign.Forward([]*tensor.View[float32]{x}, []*tensor.View[float32]{y})
//	    // y = [-0.6667 -0.5 0 0.5 0.6667]
//	}
//
// Built-in functions are SoftSign, SoftPlus, Tanh, Sigmoid, ACos, Round,
// Identity and Sign. Use [Names] for the complete list.
package function

import (
	"github.com/born-ml/transform/internal/dispatch"
	"github.com/born-ml/transform/internal/function"
	"github.com/born-ml/transform/internal/parallel"
	"github.com/born-ml/transform/internal/tensor"
)

// Config describes a unary transform function.
type Config = function.Config

// Source selects which forward array the backward formula reads.
type Source = function.Source

// Backward sources.
const (
	SourceInput  Source = function.SourceInput
	SourceOutput Source = function.SourceOutput
)

// UnaryTransform is a function bound to element type T.
type UnaryTransform[T tensor.Float] = function.UnaryTransform[T]

// Registry maps function names to creators.
type Registry = function.Registry

// Creator builds a Config from optional scalar arguments.
type Creator = function.Creator

// Engine runs elementwise loops on a worker pool.
type Engine = dispatch.Engine

// EngineConfig configures an Engine.
type EngineConfig = dispatch.Config

// ParallelConfig configures the engine's worker pool.
type ParallelConfig = parallel.Config

// Errors.
var (
	ErrNotDifferentiable   = function.ErrNotDifferentiable
	ErrArity               = function.ErrArity
	ErrInPlaceNotSupported = function.ErrInPlaceNotSupported
	ErrInvalidConfig       = function.ErrInvalidConfig
	ErrInvalidArgument     = function.ErrInvalidArgument
	ErrUnknownFunction     = function.ErrUnknownFunction
	ErrDuplicateFunction   = function.ErrDuplicateFunction
	ErrRegistryFrozen      = function.ErrRegistryFrozen
	ErrGradientCheck       = function.ErrGradientCheck
	ErrEngineClosed        = dispatch.ErrClosed
)

// New binds cfg to element type T. A nil engine means the default engine.
func New[T tensor.Float](cfg Config, e *Engine) (*UnaryTransform[T], error) {
	return function.New[T](cfg, e)
}

// NewEngine creates an engine with its own worker pool. Close it when done.
func NewEngine(cfg EngineConfig) *Engine {
	return dispatch.New(cfg)
}

// DefaultEngineConfig returns the configuration of the default engine.
func DefaultEngineConfig() EngineConfig {
	return dispatch.DefaultConfig()
}

// NewRegistry returns a registry holding the built-in functions.
func NewRegistry() *Registry {
	return function.NewRegistry()
}

// DefaultRegistry returns the shared, frozen registry of built-in functions.
func DefaultRegistry() *Registry {
	return function.DefaultRegistry()
}

// Build creates function name from r on engine e.
func Build[T tensor.Float](r *Registry, name string, e *Engine, args ...float64) (*UnaryTransform[T], error) {
	return function.Build[T](r, name, e, args...)
}

// Lookup creates a built-in function on the default engine.
//
// Example:
//
//	softplus, err := function.Lookup[float64]("SoftPlus", 2)
func Lookup[T tensor.Float](name string, args ...float64) (*UnaryTransform[T], error) {
	return function.Build[T](function.DefaultRegistry(), name, nil, args...)
}

// Names returns the built-in function names in sorted order.
func Names() []string {
	return function.DefaultRegistry().Names()
}

// SoftSign returns y = x / (1 + |x|) on the default engine.
func SoftSign[T tensor.Float]() (*UnaryTransform[T], error) {
	return function.New[T](function.SoftSign(), nil)
}

// CheckGradient compares cfg's backward formula with a central finite
// difference of its forward formula at each point.
func CheckGradient(cfg Config, points []float64, step, tol float64) error {
	return function.CheckGradient(cfg, points, step, tol)
}
