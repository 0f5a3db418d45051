package graph

import (
	"slices"
	"strconv"
	"strings"
)

// Shape describes the element type and dimensions of an Op. Elements are
// laid out in row-major order.
type Shape struct {
	Type ElementType
	Dims []int64
}

// MakeShape returns a shape of type t with a private copy of dims.
func MakeShape(t ElementType, dims ...int64) Shape {
	return Shape{Type: t, Dims: slices.Clone(dims)}
}

// ScalarShape returns the rank-0 shape of type t.
func ScalarShape(t ElementType) Shape {
	return Shape{Type: t}
}

func (s Shape) Rank() int {
	return len(s.Dims)
}

func (s Shape) IsScalar() bool {
	return len(s.Dims) == 0
}

// Elements returns the product of all dimensions; a scalar has one element.
func (s Shape) Elements() int64 {
	n := int64(1)
	for _, d := range s.Dims {
		n *= d
	}
	return n
}

// WithType returns a copy of s with a different element type.
func (s Shape) WithType(t ElementType) Shape {
	return MakeShape(t, s.Dims...)
}

// SameDims reports whether s and o have identical dimensions, ignoring type.
func (s Shape) SameDims(o Shape) bool {
	return slices.Equal(s.Dims, o.Dims)
}

func (s Shape) Equal(o Shape) bool {
	return s.Type == o.Type && s.SameDims(o)
}

// String formats the shape as type[d0,d1,...], for example "f32[2,3]".
func (s Shape) String() string {
	var sb strings.Builder
	sb.WriteString(s.Type.String())
	sb.WriteByte('[')
	for i, d := range s.Dims {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatInt(d, 10))
	}
	sb.WriteByte(']')
	return sb.String()
}
