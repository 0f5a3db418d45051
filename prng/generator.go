package prng

import (
	"fmt"
	"strings"

	"github.com/lox/tensorprng/graph"
)

// Output pairs a generated value with the counter state to use for the next
// draw from the same key.
type Output struct {
	Value *graph.Op
	State *graph.Op
}

// Algorithm selects the bit generator behind a draw.
type Algorithm uint8

const (
	ThreeFry Algorithm = iota + 1
	Philox
)

// Algorithms lists every bit generator.
var Algorithms = []Algorithm{ThreeFry, Philox}

func (a Algorithm) String() string {
	switch a {
	case ThreeFry:
		return "threefry"
	case Philox:
		return "philox"
	default:
		return fmt.Sprintf("Algorithm(%d)", uint8(a))
	}
}

// ParseAlgorithm accepts "threefry" or "philox", case-insensitively.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "threefry":
		return ThreeFry, nil
	case "philox":
		return Philox, nil
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownAlgorithm, s)
}

// Generate draws raw bits of the given shape with the selected algorithm.
func (a Algorithm) Generate(key, state *graph.Op, shape graph.Shape) (Output, error) {
	switch a {
	case ThreeFry:
		return ThreeFryBitGenerator(key, state, shape)
	case Philox:
		return PhiloxBitGenerator(key, state, shape)
	}
	return Output{State: state}, fmt.Errorf("%w %d", ErrUnknownAlgorithm, uint8(a))
}

// ThreeFryBitGenerator returns random bits with the dimensions of shape and
// the advanced state. Bits are u32 for f32, u32 and s32 requests and u64 for
// u64 and s64 requests. The 32-bit path consumes ceil(n/2) counters, the
// 64-bit path n counters.
func ThreeFryBitGenerator(key, state *graph.Op, shape graph.Shape) (Output, error) {
	switch shape.Type {
	case graph.F32, graph.U32, graph.S32:
		return threeFryBits32(asU64(key), asU64(state), shape), nil
	case graph.U64, graph.S64:
		return threeFryBits64(asU64(key), asU64(state), shape), nil
	}
	return unsupported("ThreeFryBitGenerator", state, shape.Type, bitTypes...)
}

// PhiloxBitGenerator is the Philox4x32 counterpart of ThreeFryBitGenerator.
// Both paths advance the state by the element count.
func PhiloxBitGenerator(key, state *graph.Op, shape graph.Shape) (Output, error) {
	switch shape.Type {
	case graph.F32, graph.U32, graph.S32:
		return philoxBits32(asU64(key), asU64(state), shape), nil
	case graph.U64, graph.S64:
		return philoxBits64(asU64(key), asU64(state), shape), nil
	}
	return unsupported("PhiloxBitGenerator", state, shape.Type, bitTypes...)
}
