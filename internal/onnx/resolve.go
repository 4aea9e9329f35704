package onnx

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/born-ml/transform/internal/dispatch"
	"github.com/born-ml/transform/internal/function"
	"github.com/born-ml/transform/internal/tensor"
)

// resolver maps a node to a registry name and creator arguments.
type resolver func(n *Node) (string, []float64, error)

var resolvers = map[string]resolver{
	"Softsign": fixed("SoftSign"),
	"Softplus": resolveSoftplus,
	"Tanh":     fixed("Tanh"),
	"Sigmoid":  fixed("Sigmoid"),
	"Acos":     fixed("ACos"),
	"Round":    fixed("Round"),
	"Identity": fixed("Identity"),
	"Sign":     fixed("Sign"),
}

func fixed(name string) resolver {
	return func(*Node) (string, []float64, error) {
		return name, nil, nil
	}
}

// resolveSoftplus honours an optional "beta" attribute; standard ONNX
// Softplus has none and means beta = 1.
func resolveSoftplus(n *Node) (string, []float64, error) {
	beta, err := n.AttrFloat("beta", 1)
	if err != nil {
		return "", nil, err
	}
	return "SoftPlus", []float64{beta}, nil
}

// SupportedOps returns the ONNX op types Resolve understands, sorted.
func SupportedOps() []string {
	ops := make([]string, 0, len(resolvers))
	for op := range resolvers {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

// Resolve maps an ONNX node to a function registry name and its creator
// arguments.
func Resolve(n *Node) (name string, args []float64, err error) {
	if n.Domain != "" && n.Domain != "ai.onnx" {
		return "", nil, errors.Wrapf(ErrUnknownDomain, "%s in domain %q", n.OpType, n.Domain)
	}
	r, ok := resolvers[n.OpType]
	if !ok {
		return "", nil, errors.Wrapf(ErrUnsupportedOp, "%s", n.OpType)
	}
	if len(n.Inputs) > 1 || len(n.Outputs) > 1 {
		return "", nil, errors.Wrapf(function.ErrArity, "%s: %d inputs, %d outputs", n.OpType, len(n.Inputs), len(n.Outputs))
	}
	return r(n)
}

// Build resolves n and instantiates the function from r.
func Build[T tensor.Float](r *function.Registry, e *dispatch.Engine, n *Node) (*function.UnaryTransform[T], error) {
	name, args, err := Resolve(n)
	if err != nil {
		return nil, err
	}
	fn, err := function.Build[T](r, name, e, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "onnx node %q", n.Name)
	}
	return fn, nil
}
