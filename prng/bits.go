package prng

import "github.com/lox/tensorprng/graph"

// Split64To32 splits every u64 element into its low and high 32-bit halves.
func Split64To32(u64 *graph.Op) (lo, hi *graph.Op) {
	b := u64.Builder()
	lo = graph.Convert(u64, graph.U32)
	hi = graph.Convert(graph.ShiftRightLogical(u64, graph.ConstantU64(b, 32)), graph.U32)
	return lo, hi
}

// Merge32To64 is the inverse of Split64To32: lo | hi<<32.
func Merge32To64(lo, hi *graph.Op) *graph.Op {
	b := lo.Builder()
	return graph.Or(
		graph.Convert(lo, graph.U64),
		graph.ShiftLeft(graph.Convert(hi, graph.U64), graph.ConstantU64(b, 32)),
	)
}

// RotateLeft32 rotates every u32 element of v left by distance bits,
// 0 < distance < 32.
func RotateLeft32(v *graph.Op, distance int) *graph.Op {
	b := v.Builder()
	return graph.Or(
		graph.ShiftLeft(v, graph.ConstantU32(b, uint32(distance))),
		graph.ShiftRightLogical(v, graph.ConstantU32(b, uint32(32-distance))),
	)
}

// asU64 reinterprets an s64 key or counter as u64 and leaves anything else
// for the graph to validate.
func asU64(x *graph.Op) *graph.Op {
	if x.Type() == graph.S64 {
		return graph.BitcastConvert(x, graph.U64)
	}
	return x
}
