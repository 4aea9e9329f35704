package onnx

import (
	"math"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// NodeProto field numbers.
const (
	nodeInput     protowire.Number = 1
	nodeOutput    protowire.Number = 2
	nodeName      protowire.Number = 3
	nodeOpType    protowire.Number = 4
	nodeAttribute protowire.Number = 5
	nodeDomain    protowire.Number = 7
)

// AttributeProto field numbers.
const (
	attrName protowire.Number = 1
	attrF    protowire.Number = 2
	attrI    protowire.Number = 3
	attrS    protowire.Number = 4
	attrType protowire.Number = 20
)

// ParseNode decodes a serialized ONNX NodeProto. Unknown fields are skipped.
func ParseNode(data []byte) (*Node, error) {
	n := &Node{}
	for len(data) > 0 {
		num, typ, m := protowire.ConsumeTag(data)
		if m < 0 {
			return nil, malformed("node tag", m)
		}
		data = data[m:]

		if typ != protowire.BytesType {
			if m = protowire.ConsumeFieldValue(num, typ, data); m < 0 {
				return nil, malformed("node field", m)
			}
			data = data[m:]
			continue
		}

		b, m := protowire.ConsumeBytes(data)
		if m < 0 {
			return nil, malformed("node field", m)
		}
		data = data[m:]

		switch num {
		case nodeInput:
			n.Inputs = append(n.Inputs, string(b))
		case nodeOutput:
			n.Outputs = append(n.Outputs, string(b))
		case nodeName:
			n.Name = string(b)
		case nodeOpType:
			n.OpType = string(b)
		case nodeDomain:
			n.Domain = string(b)
		case nodeAttribute:
			a, keep, err := parseAttribute(b)
			if err != nil {
				return nil, errors.Wrapf(err, "node %q", n.Name)
			}
			if keep {
				n.Attributes = append(n.Attributes, a)
			}
		}
	}
	if n.OpType == "" {
		return nil, errors.Wrap(ErrMalformed, "node without op_type")
	}
	return n, nil
}

// parseAttribute decodes an AttributeProto. keep is false for attribute
// kinds Node does not represent.
func parseAttribute(data []byte) (a Attribute, keep bool, err error) {
	for len(data) > 0 {
		num, typ, m := protowire.ConsumeTag(data)
		if m < 0 {
			return a, false, malformed("attribute tag", m)
		}
		data = data[m:]

		switch {
		case num == attrName && typ == protowire.BytesType:
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return a, false, malformed("attribute name", m)
			}
			a.Name = string(b)
			data = data[m:]
		case num == attrS && typ == protowire.BytesType:
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return a, false, malformed("attribute s", m)
			}
			a.S = append([]byte(nil), b...)
			data = data[m:]
		case num == attrF && typ == protowire.Fixed32Type:
			v, m := protowire.ConsumeFixed32(data)
			if m < 0 {
				return a, false, malformed("attribute f", m)
			}
			a.F = math.Float32frombits(v)
			data = data[m:]
		case num == attrI && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return a, false, malformed("attribute i", m)
			}
			a.I = int64(v) //nolint:gosec // two's complement int64 on the wire
			data = data[m:]
		case num == attrType && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return a, false, malformed("attribute type", m)
			}
			a.Type = int32(v) //nolint:gosec // enum fits in int32
			data = data[m:]
		default:
			if m = protowire.ConsumeFieldValue(num, typ, data); m < 0 {
				return a, false, malformed("attribute field", m)
			}
			data = data[m:]
		}
	}
	if a.Name == "" {
		return a, false, errors.Wrap(ErrMalformed, "attribute without name")
	}
	switch a.Type {
	case AttributeFloat, AttributeInt, AttributeString:
		return a, true, nil
	default:
		return a, false, nil
	}
}

// MarshalNode encodes n as an ONNX NodeProto.
func MarshalNode(n *Node) []byte {
	var b []byte
	for _, in := range n.Inputs {
		b = appendString(b, nodeInput, in)
	}
	for _, out := range n.Outputs {
		b = appendString(b, nodeOutput, out)
	}
	if n.Name != "" {
		b = appendString(b, nodeName, n.Name)
	}
	b = appendString(b, nodeOpType, n.OpType)
	for _, a := range n.Attributes {
		b = protowire.AppendTag(b, nodeAttribute, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalAttribute(a))
	}
	if n.Domain != "" {
		b = appendString(b, nodeDomain, n.Domain)
	}
	return b
}

func marshalAttribute(a Attribute) []byte {
	b := appendString(nil, attrName, a.Name)
	switch a.Type {
	case AttributeFloat:
		b = protowire.AppendTag(b, attrF, protowire.Fixed32Type)
		b = protowire.AppendFixed32(b, math.Float32bits(a.F))
	case AttributeInt:
		b = protowire.AppendTag(b, attrI, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(a.I)) //nolint:gosec // two's complement int64 on the wire
	case AttributeString:
		b = protowire.AppendTag(b, attrS, protowire.BytesType)
		b = protowire.AppendBytes(b, a.S)
	}
	b = protowire.AppendTag(b, attrType, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(a.Type)) //nolint:gosec // enum is non-negative
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func malformed(what string, code int) error {
	return errors.Wrapf(ErrMalformed, "%s: %v", what, protowire.ParseError(code))
}
