package prng

import (
	"math"

	"github.com/lox/tensorprng/graph"
)

// UniformFloatDistribution samples f32 values uniformly from [minval, maxval).
// minval and maxval are f32 scalars or arrays matching shape.
func UniformFloatDistribution(key, state *graph.Op, alg Algorithm, minval, maxval *graph.Op, shape graph.Shape) (Output, error) {
	if shape.Type != graph.F32 {
		return unsupported("UniformFloatDistribution", state, shape.Type, graph.F32)
	}
	out, err := alg.Generate(key, state, shape)
	if err != nil {
		return out, err
	}
	return Output{Value: bitsToUniformF32(out.Value, minval, maxval), State: out.State}, nil
}

// bitsToUniformF32 keeps the top 23 bits of each word as a mantissa under
// the exponent of 1.0, giving a float in [1, 2), then shifts and scales it.
func bitsToUniformF32(bits, minval, maxval *graph.Op) *graph.Op {
	b := bits.Builder()
	const (
		floatBits    = 32
		mantissaBits = 23
	)
	bits = graph.Or(
		graph.ShiftRightLogical(bits, graph.ConstantU32(b, floatBits-mantissaBits)),
		graph.ConstantU32(b, math.Float32bits(1.0)),
	)
	values := graph.BitcastConvert(bits, graph.F32)
	values = graph.Sub(values, graph.ConstantF32(b, 1.0))
	return graph.Add(graph.Mul(values, graph.Sub(maxval, minval)), minval)
}

// UniformIntDistribution samples integers uniformly from [minval, maxval)
// for s32, u32, s64 and u64 shapes. The bounds must have the shape's type.
func UniformIntDistribution(key, state *graph.Op, alg Algorithm, minval, maxval *graph.Op, shape graph.Shape) (Output, error) {
	var unsigned graph.ElementType
	switch shape.Type {
	case graph.S32, graph.U32:
		unsigned = graph.U32
	case graph.S64, graph.U64:
		unsigned = graph.U64
	default:
		return unsupported("UniformIntDistribution", state, shape.Type,
			graph.S32, graph.U32, graph.S64, graph.U64)
	}
	out, err := alg.Generate(key, state, shape)
	if err != nil {
		return out, err
	}
	value := bitsToUniformInt(out.Value, minval, maxval, shape.Type, unsigned)
	return Output{Value: value, State: out.State}, nil
}

// bitsToUniformInt reduces bits modulo the unsigned range and adds the
// result to minval in two halves, so the sum never wraps in the signed type.
func bitsToUniformInt(bits, minval, maxval *graph.Op, t, unsigned graph.ElementType) *graph.Op {
	span := graph.Sub(
		graph.BitcastConvert(maxval, unsigned),
		graph.BitcastConvert(minval, unsigned),
	)
	dist := graph.Rem(bits, span)
	half := graph.ShiftRightLogical(dist, graph.ScalarLike(dist, 1))
	return graph.Add(
		graph.Add(minval, graph.BitcastConvert(half, t)),
		graph.BitcastConvert(graph.Sub(dist, half), t),
	)
}

// NormalFloatDistribution samples f32 values from the standard normal
// distribution with the Box-Muller transform. It consumes the bits of
// 2*ceil(n/2) uniform samples.
func NormalFloatDistribution(key, state *graph.Op, alg Algorithm, shape graph.Shape) (Output, error) {
	if shape.Type != graph.F32 {
		return unsupported("NormalFloatDistribution", state, shape.Type, graph.F32)
	}
	b := key.Builder()
	n := shape.Elements()
	pairs := (n + 1) / 2

	uniform, err := UniformFloatDistribution(key, state, alg,
		graph.ConstantF32(b, 0), graph.ConstantF32(b, 1),
		graph.MakeShape(graph.F32, pairs*2))
	if err != nil {
		return uniform, err
	}

	x0 := graph.SliceInDim(uniform.Value, 0, pairs, 1, 0)
	x1 := graph.SliceInDim(uniform.Value, pairs, 2*pairs, 1, 0)
	z0, z1 := boxMuller(x0, x1)

	normal := graph.ConcatInDim(b, []*graph.Op{z0, z1}, 0)
	if n != 2*pairs {
		normal = graph.SliceInDim(normal, 0, n, 1, 0)
	}
	return Output{Value: graph.Reshape(normal, shape.Dims...), State: uniform.State}, nil
}

// boxMuller maps two uniform [0, 1) vectors to two standard normal vectors.
func boxMuller(x0, x1 *graph.Op) (*graph.Op, *graph.Op) {
	// log(0) is -inf; keep u away from zero.
	u := graph.Max(x0, graph.ScalarLike(x0, 1.0e-7))
	theta := graph.Mul(graph.ScalarLike(x1, 2*math.Pi), x1)
	r := graph.Sqrt(graph.Mul(graph.ScalarLike(u, -2), graph.Log(u)))
	return graph.Mul(graph.Sin(theta), r), graph.Mul(graph.Cos(theta), r)
}
