package interp

import (
	"fmt"
	"math"

	"github.com/lox/tensorprng/graph"
)

func signExtend(t graph.ElementType, v uint64) int64 {
	shift := 64 - t.BitWidth()
	return int64(v<<shift) >> shift
}

func toFloat(t graph.ElementType, v uint64) float64 {
	switch {
	case t == graph.F32:
		return float64(math.Float32frombits(uint32(v)))
	case t == graph.F64:
		return math.Float64frombits(v)
	case t.IsSigned():
		return float64(signExtend(t, v))
	default:
		return float64(v)
	}
}

func fromFloat(t graph.ElementType, f float64) uint64 {
	switch {
	case t == graph.F32:
		return uint64(math.Float32bits(float32(f)))
	case t == graph.F64:
		return math.Float64bits(f)
	case t == graph.Pred:
		if f != 0 {
			return 1
		}
		return 0
	case t.IsSigned() || f < 0:
		return uint64(int64(f)) & t.Mask()
	default:
		return uint64(f) & t.Mask()
	}
}

func convert(from, to graph.ElementType, v uint64) uint64 {
	switch {
	case to == graph.Pred:
		if toFloat(from, v) != 0 {
			return 1
		}
		return 0
	case from.IsFloat() || to.IsFloat():
		return fromFloat(to, toFloat(from, v))
	case from.IsSigned():
		return uint64(signExtend(from, v)) & to.Mask()
	default:
		return v & to.Mask()
	}
}

func supported(t graph.ElementType) bool {
	return t.IsArray() && t != graph.F16
}

func floatBinary[F float32 | float64](kind graph.Kind, x, y F) F {
	switch kind {
	case graph.KindAdd:
		return x + y
	case graph.KindSub:
		return x - y
	case graph.KindMul:
		return x * y
	case graph.KindRem:
		return F(math.Mod(float64(x), float64(y)))
	default: // KindMax
		if math.IsNaN(float64(x)) || math.IsNaN(float64(y)) {
			return x + y
		}
		if x > y {
			return x
		}
		return y
	}
}

// binaryFunc returns the element function for an arithmetic or bitwise Op
// over operands of type t.
func binaryFunc(kind graph.Kind, t graph.ElementType) (func(x, y uint64) uint64, error) {
	if !supported(t) {
		return nil, fmt.Errorf("%s on %s is not supported", kind, t)
	}
	switch t {
	case graph.F32:
		return func(x, y uint64) uint64 {
			r := floatBinary(kind, math.Float32frombits(uint32(x)), math.Float32frombits(uint32(y)))
			return uint64(math.Float32bits(r))
		}, nil
	case graph.F64:
		return func(x, y uint64) uint64 {
			return math.Float64bits(floatBinary(kind, math.Float64frombits(x), math.Float64frombits(y)))
		}, nil
	}

	mask := t.Mask()
	width := uint64(t.BitWidth())
	signed := t.IsSigned()
	switch kind {
	case graph.KindAdd:
		return func(x, y uint64) uint64 { return (x + y) & mask }, nil
	case graph.KindSub:
		return func(x, y uint64) uint64 { return (x - y) & mask }, nil
	case graph.KindMul:
		return func(x, y uint64) uint64 { return (x * y) & mask }, nil
	case graph.KindRem:
		return func(x, y uint64) uint64 {
			if y == 0 {
				return x
			}
			if signed {
				return uint64(signExtend(t, x)%signExtend(t, y)) & mask
			}
			return x % y
		}, nil
	case graph.KindMax:
		return func(x, y uint64) uint64 {
			if signed {
				if signExtend(t, x) > signExtend(t, y) {
					return x
				}
				return y
			}
			if x > y {
				return x
			}
			return y
		}, nil
	case graph.KindOr:
		return func(x, y uint64) uint64 { return x | y }, nil
	case graph.KindXor:
		return func(x, y uint64) uint64 { return x ^ y }, nil
	case graph.KindShiftLeft:
		return func(x, y uint64) uint64 {
			if y >= width {
				return 0
			}
			return (x << y) & mask
		}, nil
	case graph.KindShiftRightLogical:
		return func(x, y uint64) uint64 {
			if y >= width {
				return 0
			}
			return x >> y
		}, nil
	}
	return nil, fmt.Errorf("%s is not a binary operation", kind)
}

func lessFunc(t graph.ElementType) (func(x, y uint64) bool, error) {
	switch {
	case !supported(t):
		return nil, fmt.Errorf("compare on %s is not supported", t)
	case t.IsFloat():
		return func(x, y uint64) bool { return toFloat(t, x) < toFloat(t, y) }, nil
	case t.IsSigned():
		return func(x, y uint64) bool { return signExtend(t, x) < signExtend(t, y) }, nil
	default:
		return func(x, y uint64) bool { return x < y }, nil
	}
}

func unaryFunc(kind graph.Kind, t graph.ElementType) (func(x uint64) uint64, error) {
	var f func(float64) float64
	switch kind {
	case graph.KindSqrt:
		f = math.Sqrt
	case graph.KindLog:
		f = math.Log
	case graph.KindSin:
		f = math.Sin
	case graph.KindCos:
		f = math.Cos
	default:
		return nil, fmt.Errorf("%s is not a unary operation", kind)
	}
	switch t {
	case graph.F32:
		return func(x uint64) uint64 {
			r := float32(f(float64(math.Float32frombits(uint32(x)))))
			return uint64(math.Float32bits(r))
		}, nil
	case graph.F64:
		return func(x uint64) uint64 { return math.Float64bits(f(math.Float64frombits(x))) }, nil
	}
	return nil, fmt.Errorf("%s on %s is not supported", kind, t)
}
