// Package onnx imports single ONNX operator nodes as unary transform
// functions.
//
// Only NodeProto and AttributeProto are decoded; graphs, initializers and
// value infos are the surrounding engine's business. Decoding and encoding
// use the protobuf wire primitives directly, so no generated ONNX bindings
// are required.
//
// Example usage:
//
//	node, err := onnx.ParseNode(raw)
//	if err != nil {
//	    return err
//	}
//	fn, err := onnx.Build[float32](function.DefaultRegistry(), nil, node)
package onnx

import "github.com/pkg/errors"

// Errors returned by this package.
var (
	ErrMalformed     = errors.New("onnx: malformed message")
	ErrUnsupportedOp = errors.New("onnx: unsupported operator")
	ErrBadAttribute  = errors.New("onnx: bad attribute")
	ErrUnknownDomain = errors.New("onnx: unknown operator domain")
)

// ONNX attribute types (AttributeProto.AttributeType).
const (
	AttributeUndefined int32 = 0
	AttributeFloat     int32 = 1
	AttributeInt       int32 = 2
	AttributeString    int32 = 3
)

// Node is an ONNX operator invocation.
type Node struct {
	Name       string
	OpType     string // e.g. "Softsign"
	Domain     string // empty or "ai.onnx" for the default opset
	Inputs     []string
	Outputs    []string
	Attributes []Attribute
}

// Attribute is a scalar node attribute. List and tensor attributes are
// skipped on decode.
type Attribute struct {
	Name string
	Type int32
	F    float32
	I    int64
	S    []byte
}

// Attr returns the named attribute.
func (n *Node) Attr(name string) (Attribute, bool) {
	for _, a := range n.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// AttrFloat returns a FLOAT attribute or def when it is absent.
// INT attributes are converted.
func (n *Node) AttrFloat(name string, def float64) (float64, error) {
	a, ok := n.Attr(name)
	if !ok {
		return def, nil
	}
	switch a.Type {
	case AttributeFloat:
		return float64(a.F), nil
	case AttributeInt:
		return float64(a.I), nil
	default:
		return 0, errors.Wrapf(ErrBadAttribute, "%s.%s: type %d is not numeric", n.OpType, name, a.Type)
	}
}
