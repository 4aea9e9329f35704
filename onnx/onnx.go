// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package onnx imports ONNX operator nodes as transform functions.
//
// # Supported Operators
//
//   - Activation: Softsign, Softplus, Tanh, Sigmoid
//   - Math: Acos, Round, Sign
//   - Other: Identity
//
// Use [ListSupportedOps] to get the complete list.
//
// # Example Usage
//
//	node, err := onnx.ParseNode(raw)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fn, err := onnx.Build[float32](node)
//	if err != nil {
//	    log.Fatal(err)
//	}
package onnx

import (
	internalfunction "github.com/born-ml/transform/internal/function"
	internalonnx "github.com/born-ml/transform/internal/onnx"
	"github.com/born-ml/transform/internal/tensor"
)

// Node is an ONNX operator invocation.
type Node = internalonnx.Node

// Attribute is a scalar node attribute.
type Attribute = internalonnx.Attribute

// Attribute types.
const (
	AttributeFloat  = internalonnx.AttributeFloat
	AttributeInt    = internalonnx.AttributeInt
	AttributeString = internalonnx.AttributeString
)

// Errors.
var (
	ErrMalformed     = internalonnx.ErrMalformed
	ErrUnsupportedOp = internalonnx.ErrUnsupportedOp
	ErrBadAttribute  = internalonnx.ErrBadAttribute
	ErrUnknownDomain = internalonnx.ErrUnknownDomain
)

// ParseNode decodes a serialized ONNX NodeProto.
func ParseNode(data []byte) (*Node, error) {
	return internalonnx.ParseNode(data)
}

// MarshalNode encodes n as an ONNX NodeProto.
func MarshalNode(n *Node) []byte {
	return internalonnx.MarshalNode(n)
}

// Resolve maps n to a function name and creator arguments.
func Resolve(n *Node) (string, []float64, error) {
	return internalonnx.Resolve(n)
}

// Build instantiates n from the built-in functions on the default engine.
func Build[T tensor.Float](n *Node) (*internalfunction.UnaryTransform[T], error) {
	return internalonnx.Build[T](internalfunction.DefaultRegistry(), nil, n)
}

// ListSupportedOps returns the ONNX op types that can be imported, sorted.
//
// Example:
//
//	for _, op := range onnx.ListSupportedOps() {
//	    fmt.Println(op)
//	}
func ListSupportedOps() []string {
	return internalonnx.SupportedOps()
}
