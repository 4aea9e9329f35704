package function

import "github.com/pkg/errors"

// Common errors.
var (
	ErrNotDifferentiable   = errors.New("function is not differentiable")
	ErrArity               = errors.New("wrong number of arrays")
	ErrInPlaceNotSupported = errors.New("in-place computation not supported")
	ErrInvalidConfig       = errors.New("invalid function config")
	ErrInvalidArgument     = errors.New("invalid function argument")
	ErrUnknownFunction     = errors.New("unknown function")
	ErrDuplicateFunction   = errors.New("function already registered")
	ErrRegistryFrozen      = errors.New("registry is frozen")
	ErrGradientCheck       = errors.New("gradient check failed")
)
