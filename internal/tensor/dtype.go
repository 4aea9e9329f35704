// Package tensor provides the array views that unary transform functions
// read from and write to.
//
// A View never owns lifetime semantics: the buffer behind it belongs to the
// caller (a graph engine, a memory manager or a test) and is only read and
// written through the view.
package tensor

import "unsafe"

// Float is a constraint for the element types a View can hold.
type Float interface {
	~float32 | ~float64
}

// DataType is the runtime tag of a view's element type.
type DataType int

// Supported data types.
const (
	Float32 DataType = iota
	Float64
)

var dataTypes = [...]struct {
	name  string
	alias string
	size  int
}{
	Float32: {"float32", "f32", 4},
	Float64: {"float64", "f64", 8},
}

func (dt DataType) valid() bool {
	return dt >= 0 && int(dt) < len(dataTypes)
}

// Size returns the element size in bytes. It panics on an unknown type.
func (dt DataType) Size() int {
	if !dt.valid() {
		panic("tensor: unknown data type")
	}
	return dataTypes[dt].size
}

// String returns the canonical type name.
func (dt DataType) String() string {
	if !dt.valid() {
		return "unknown"
	}
	return dataTypes[dt].name
}

// ParseDataType accepts a canonical name ("float32") or its short alias ("f32").
func ParseDataType(s string) (DataType, bool) {
	for i, info := range dataTypes {
		if s == info.name || s == info.alias {
			return DataType(i), true
		}
	}
	return 0, false
}

// DataTypeOf returns the tag for element type T.
func DataTypeOf[T Float]() DataType {
	var zero T
	if unsafe.Sizeof(zero) == 4 {
		return Float32
	}
	return Float64
}
