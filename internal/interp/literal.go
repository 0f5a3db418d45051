package interp

import (
	"fmt"
	"math"
	"slices"

	"github.com/lox/tensorprng/graph"
)

// Literal is a host value: a shape plus one raw bit pattern per element,
// zero-extended to 64 bits.
type Literal struct {
	shape graph.Shape
	bits  []uint64
}

// NewLiteral copies bits into a new Literal of the given shape.
func NewLiteral(shape graph.Shape, bits []uint64) (*Literal, error) {
	if int64(len(bits)) != shape.Elements() {
		return nil, fmt.Errorf("literal %s given %d elements", shape, len(bits))
	}
	mask := shape.Type.Mask()
	out := make([]uint64, len(bits))
	for i, v := range bits {
		out[i] = v & mask
	}
	return &Literal{shape: graph.MakeShape(shape.Type, shape.Dims...), bits: out}, nil
}

func (l *Literal) Shape() graph.Shape {
	return l.shape
}

func (l *Literal) Len() int {
	return len(l.bits)
}

// Bits returns a copy of the raw element bit patterns.
func (l *Literal) Bits() []uint64 {
	return slices.Clone(l.bits)
}

// The typed accessors below reinterpret the stored bit patterns; they do not
// check the literal's element type.

func (l *Literal) Uint32s() []uint32 {
	out := make([]uint32, len(l.bits))
	for i, v := range l.bits {
		out[i] = uint32(v)
	}
	return out
}

func (l *Literal) Uint64s() []uint64 {
	return l.Bits()
}

func (l *Literal) Int32s() []int32 {
	out := make([]int32, len(l.bits))
	for i, v := range l.bits {
		out[i] = int32(uint32(v))
	}
	return out
}

func (l *Literal) Int64s() []int64 {
	out := make([]int64, len(l.bits))
	for i, v := range l.bits {
		out[i] = int64(v)
	}
	return out
}

func (l *Literal) Float32s() []float32 {
	out := make([]float32, len(l.bits))
	for i, v := range l.bits {
		out[i] = math.Float32frombits(uint32(v))
	}
	return out
}

func (l *Literal) Float64s() []float64 {
	out := make([]float64, len(l.bits))
	for i, v := range l.bits {
		out[i] = math.Float64frombits(v)
	}
	return out
}

func (l *Literal) Bools() []bool {
	out := make([]bool, len(l.bits))
	for i, v := range l.bits {
		out[i] = v != 0
	}
	return out
}

// Values returns the elements as a slice of the literal's natural Go type,
// for example []float32 for f32. Unsupported types yield the raw bits.
func (l *Literal) Values() any {
	switch l.shape.Type {
	case graph.Pred:
		return l.Bools()
	case graph.S32:
		return l.Int32s()
	case graph.S64:
		return l.Int64s()
	case graph.U32:
		return l.Uint32s()
	case graph.F32:
		return l.Float32s()
	case graph.F64:
		return l.Float64s()
	default:
		return l.Uint64s()
	}
}

// AsFloat64s converts the elements to float64 by value, whatever their type.
func (l *Literal) AsFloat64s() []float64 {
	out := make([]float64, len(l.bits))
	t := l.shape.Type
	for i, v := range l.bits {
		out[i] = toFloat(t, v)
	}
	return out
}

// ScalarUint64 returns the first element's raw bits.
func (l *Literal) ScalarUint64() (uint64, error) {
	if len(l.bits) == 0 {
		return 0, fmt.Errorf("literal %s is empty", l.shape)
	}
	return l.bits[0], nil
}

func (l *Literal) String() string {
	return fmt.Sprintf("%s %v", l.shape, l.Values())
}
