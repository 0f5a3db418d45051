package prng

import (
	"math/bits"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lox/tensorprng/graph"
	"github.com/lox/tensorprng/internal/interp"
)

// Plain Go versions of the block functions and stream layouts, used to
// check the graph programs element by element.

func hostThreeFry(x, key [2]uint32) [2]uint32 {
	ks := [3]uint32{key[0], key[1], threeFryParity ^ key[0] ^ key[1]}
	x[0] += ks[0]
	x[1] += ks[1]
	for g := 0; g < 5; g++ {
		half := (g % 2) * 4
		for _, r := range threeFryRotations[half : half+4] {
			x[0] += x[1]
			x[1] = bits.RotateLeft32(x[1], r) ^ x[0]
		}
		x[0] += ks[(g+1)%3]
		x[1] += ks[(g+2)%3] + uint32(g+1)
	}
	return x
}

func hostPhilox(x [4]uint32, key [2]uint32) [4]uint32 {
	for r := 0; r < philoxRounds; r++ {
		hi0, lo0 := bits.Mul32(philoxM4x32A, x[0])
		hi1, lo1 := bits.Mul32(philoxM4x32B, x[2])
		x = [4]uint32{hi1 ^ x[1] ^ key[0], lo1, hi0 ^ x[3] ^ key[1], lo0}
		key[0] += philoxW32A
		key[1] += philoxW32B
	}
	return x
}

func split(v uint64) (uint32, uint32) {
	return uint32(v), uint32(v >> 32)
}

func refThreeFryBits32(key, state uint64, n int) []uint32 {
	half := (n + 1) / 2
	k0, k1 := split(key)
	lane0 := make([]uint32, half)
	lane1 := make([]uint32, half)
	for i := range half {
		c0, c1 := split(state + uint64(i))
		out := hostThreeFry([2]uint32{c0, c1}, [2]uint32{k0, k1})
		lane0[i], lane1[i] = out[0], out[1]
	}
	return append(lane0, lane1...)[:n]
}

func refThreeFryBits64(key, state uint64, n int) []uint64 {
	k0, k1 := split(key)
	out := make([]uint64, n)
	for i := range out {
		c0, c1 := split(state + uint64(i))
		r := hostThreeFry([2]uint32{c0, c1}, [2]uint32{k0, k1})
		out[i] = uint64(r[0]) | uint64(r[1])<<32
	}
	return out
}

// refPhiloxLanes returns the four output lanes for blocks counters of the
// stream (key, state).
func refPhiloxLanes(key, state uint64, blocks int) [4][]uint32 {
	lo, hi := split(key + state)
	s := hostPhilox([4]uint32{lo, 0, hi, 0}, [2]uint32{philoxScramble0, philoxScramble1})
	var lanes [4][]uint32
	for i := range blocks {
		c0, c1 := split(uint64(i))
		out := hostPhilox([4]uint32{c0, c1, s[2], s[3]}, [2]uint32{s[0], s[1]})
		for j := range lanes {
			lanes[j] = append(lanes[j], out[j])
		}
	}
	return lanes
}

func refPhiloxBits32(key, state uint64, n int) []uint32 {
	lanes := refPhiloxLanes(key, state, (n+3)/4)
	all := make([]uint32, 0, 4*len(lanes[0]))
	for _, l := range lanes {
		all = append(all, l...)
	}
	return all[:n]
}

func refPhiloxBits64(key, state uint64, n int) []uint64 {
	lanes := refPhiloxLanes(key, state, (2*n+3)/4)
	all := make([]uint64, 0, 2*len(lanes[0]))
	for i := range lanes[0] {
		all = append(all, uint64(lanes[0][i])|uint64(lanes[1][i])<<32)
	}
	for i := range lanes[2] {
		all = append(all, uint64(lanes[2][i])|uint64(lanes[3][i])<<32)
	}
	return all[:n]
}

// generate builds and evaluates one draw with u64 key and state constants.
func generate(t *testing.T, alg Algorithm, key, state uint64, shape graph.Shape) (*interp.Literal, uint64) {
	t.Helper()
	b := graph.NewBuilder(t.Name())
	out, err := alg.Generate(graph.ConstantU64(b, key), graph.ConstantU64(b, state), shape)
	require.NoError(t, err)
	return evaluate(t, out)
}

func evaluate(t *testing.T, out Output) (*interp.Literal, uint64) {
	t.Helper()
	lits, err := interp.Evaluate(out.Value, out.State)
	require.NoError(t, err)
	next, err := lits[1].ScalarUint64()
	require.NoError(t, err)
	return lits[0], next
}
