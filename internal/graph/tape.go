// Package graph provides a minimal reverse-mode tape over unary transform
// functions.
//
// It stands in for a full graph engine: it allocates output and gradient
// buffers, records function applications, and replays them in reverse to
// drive each function's Backward with the propagate and accumulate flags a
// real engine would pass.
package graph

import (
	"github.com/pkg/errors"

	"github.com/born-ml/transform/internal/function"
	"github.com/born-ml/transform/internal/tensor"
)

// Variable is an array that participates in a recorded computation.
type Variable[T tensor.Float] struct {
	Data *tensor.View[T]

	// Grad holds the gradient after Tape.Backward. It is allocated on
	// first use. Every Backward zeroes the gradients of all variables on the
	// tape before seeding, so a variable the pass does not reach ends with
	// zeros rather than a gradient from an earlier pass.
	Grad *tensor.View[T]

	// NeedGrad marks leaves whose gradient the caller wants. Outputs of
	// recorded nodes inherit it from their input.
	NeedGrad bool
}

// NewVariable wraps data as a leaf variable.
func NewVariable[T tensor.Float](data *tensor.View[T], needGrad bool) *Variable[T] {
	return &Variable[T]{Data: data, NeedGrad: needGrad}
}

type node[T tensor.Float] struct {
	fn     *function.UnaryTransform[T]
	input  *Variable[T]
	output *Variable[T]
}

// Tape records function applications during the forward pass and replays
// them in reverse during Backward.
//
// Usage:
//
//	tape := graph.NewTape[float32]()
//	tape.StartRecording()
//	y, _ := tape.Apply(softsign, x)
//	_ = tape.Backward(y)
//
// A Tape is not safe for concurrent use.
type Tape[T tensor.Float] struct {
	nodes     []*node[T]
	recording bool
}

// NewTape creates an empty tape that is not recording.
func NewTape[T tensor.Float]() *Tape[T] {
	return &Tape[T]{nodes: make([]*node[T], 0, 16)}
}

// StartRecording enables recording.
func (t *Tape[T]) StartRecording() {
	t.recording = true
}

// StopRecording disables recording. Apply still computes outputs.
func (t *Tape[T]) StopRecording() {
	t.recording = false
}

// IsRecording reports whether Apply records nodes.
func (t *Tape[T]) IsRecording() bool {
	return t.recording
}

// NumOps returns the number of recorded nodes.
func (t *Tape[T]) NumOps() int {
	return len(t.nodes)
}

// Clear drops every recorded node. Recording state is preserved.
func (t *Tape[T]) Clear() {
	clear(t.nodes)
	t.nodes = t.nodes[:0]
}

// Apply runs fn on x into a freshly allocated output of the same shape and
// records the application when the tape is recording.
func (t *Tape[T]) Apply(fn *function.UnaryTransform[T], x *Variable[T]) (*Variable[T], error) {
	out, err := tensor.NewView[T](x.Data.Shape())
	if err != nil {
		return nil, err
	}
	if err := fn.Forward([]*tensor.View[T]{x.Data}, []*tensor.View[T]{out}); err != nil {
		return nil, err
	}

	y := &Variable[T]{Data: out, NeedGrad: x.NeedGrad}
	if t.recording {
		t.nodes = append(t.nodes, &node[T]{fn: fn, input: x, output: y})
	}
	return y, nil
}

// Backward computes gradients of the sum of every element of roots with
// respect to each recorded variable that needs one.
//
// Each root's gradient is seeded with ones; a root listed k times is seeded
// with k. Nodes are replayed newest first;
// a node whose output received no gradient is skipped, and a node whose
// input does not need a gradient is pruned without calling its Backward.
// When several nodes consume the same variable, the first writes its
// gradient and the rest accumulate into it.
func (t *Tape[T]) Backward(roots ...*Variable[T]) error {
	for _, n := range t.nodes {
		zeroGrad(n.input)
		zeroGrad(n.output)
	}

	written := make(map[*Variable[T]]bool, len(t.nodes)+len(roots))
	for _, r := range roots {
		if err := ensureGrad(r); err != nil {
			return err
		}
		if !written[r] {
			r.Grad.Fill(1)
			written[r] = true
			continue
		}
		for i := range r.Grad.NumElements() {
			r.Grad.Set(i, r.Grad.At(i)+1)
		}
	}

	wasRecording := t.recording
	t.recording = false
	defer func() { t.recording = wasRecording }()

	for i := len(t.nodes) - 1; i >= 0; i-- {
		n := t.nodes[i]
		if !written[n.output] || !n.input.NeedGrad {
			continue
		}
		if err := ensureGrad(n.input); err != nil {
			return err
		}

		err := n.fn.BackwardAccumulate(
			[]*tensor.View[T]{n.input.Data},
			[]*tensor.View[T]{n.output.Data},
			[]*tensor.View[T]{n.output.Grad},
			[]*tensor.View[T]{n.input.Grad},
			[]bool{true},
			[]bool{written[n.input]},
		)
		if err != nil {
			return errors.Wrapf(err, "node %d", i)
		}
		written[n.input] = true
	}
	return nil
}

func zeroGrad[T tensor.Float](v *Variable[T]) {
	if v.Grad != nil {
		v.Grad.Fill(0)
	}
}

func ensureGrad[T tensor.Float](v *Variable[T]) error {
	if v.Grad != nil {
		return nil
	}
	g, err := tensor.NewView[T](v.Data.Shape())
	if err != nil {
		return err
	}
	v.Grad = g
	return nil
}
