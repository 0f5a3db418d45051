package prng

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/tensorprng/graph"
	"github.com/lox/tensorprng/internal/interp"
)

func words(t *testing.T, ops ...*graph.Op) []uint32 {
	t.Helper()
	lits, err := interp.Evaluate(ops...)
	require.NoError(t, err)
	out := make([]uint32, len(lits))
	for i, l := range lits {
		out[i] = l.Uint32s()[0]
	}
	return out
}

func TestThreeFryKnownAnswers(t *testing.T) {
	for _, v := range ThreeFryVectors {
		t.Run(v.Name, func(t *testing.T) {
			b := graph.NewBuilder(v.Name)
			out := ThreeFry2x32(
				[2]*graph.Op{graph.ConstantU32(b, v.Counter[0]), graph.ConstantU32(b, v.Counter[1])},
				[2]*graph.Op{graph.ConstantU32(b, v.Key[0]), graph.ConstantU32(b, v.Key[1])},
			)
			assert.Equal(t, v.Want[:], words(t, out[:]...))
			assert.Equal(t, v.Want, hostThreeFry(v.Counter, v.Key))
		})
	}
}

func TestPhiloxKnownAnswers(t *testing.T) {
	for _, v := range PhiloxVectors {
		t.Run(v.Name, func(t *testing.T) {
			b := graph.NewBuilder(v.Name)
			var ctr [4]*graph.Op
			for i, c := range v.Counter {
				ctr[i] = graph.ConstantU32(b, c)
			}
			out := Philox4x32(ctr, [2]*graph.Op{graph.ConstantU32(b, v.Key[0]), graph.ConstantU32(b, v.Key[1])})
			assert.Equal(t, v.Want[:], words(t, out[:]...))
			assert.Equal(t, v.Want, hostPhilox(v.Counter, v.Key))
		})
	}
}

func TestThreeFryAcceptsSignedKeyLanes(t *testing.T) {
	v := ThreeFryVectors[2]
	b := graph.NewBuilder("signed")
	out := ThreeFry2x32(
		[2]*graph.Op{graph.ConstantU32(b, v.Counter[0]), graph.ConstantU32(b, v.Counter[1])},
		[2]*graph.Op{graph.ConstantS32(b, int32(v.Key[0])), graph.ConstantS32(b, int32(v.Key[1]))},
	)
	assert.Equal(t, v.Want[:], words(t, out[:]...))
}

func TestPhiloxCountersCarry(t *testing.T) {
	b := graph.NewBuilder("carry")
	state := [4]*graph.Op{
		graph.ConstantU32(b, 0xfffffffe),
		graph.ConstantU32(b, 0xffffffff),
		graph.ConstantU32(b, 5),
		graph.ConstantU32(b, 0xffffffff),
	}
	ctr := philoxCounters(state, 4)
	lits, err := interp.Evaluate(ctr[:]...)
	require.NoError(t, err)

	assert.Equal(t, []uint32{0xfffffffe, 0xffffffff, 0, 1}, lits[0].Uint32s())
	assert.Equal(t, []uint32{0xffffffff, 0xffffffff, 0, 0}, lits[1].Uint32s())
	assert.Equal(t, []uint32{5, 5, 6, 6}, lits[2].Uint32s())
	assert.Equal(t, []uint32{0xffffffff, 0xffffffff, 0xffffffff, 0xffffffff}, lits[3].Uint32s())
}

func TestBitsMatchReference(t *testing.T) {
	keys := []uint64{0, 42, 0x0123456789abcdef, ^uint64(0)}
	states := []uint64{0, 7, 1 << 40, ^uint64(0) - 3}
	sizes := []int{0, 1, 2, 3, 4, 5, 7, 8, 9, 31, 64, 101}

	for _, key := range keys {
		for _, state := range states {
			for _, n := range sizes {
				s32 := graph.MakeShape(graph.U32, int64(n))
				s64 := graph.MakeShape(graph.U64, int64(n))

				lit, _ := generate(t, ThreeFry, key, state, s32)
				require.Equal(t, refThreeFryBits32(key, state, n), lit.Uint32s(), "threefry u32 key=%#x state=%d n=%d", key, state, n)

				lit, _ = generate(t, ThreeFry, key, state, s64)
				require.Equal(t, refThreeFryBits64(key, state, n), lit.Uint64s(), "threefry u64 key=%#x state=%d n=%d", key, state, n)

				lit, _ = generate(t, Philox, key, state, s32)
				require.Equal(t, refPhiloxBits32(key, state, n), lit.Uint32s(), "philox u32 key=%#x state=%d n=%d", key, state, n)

				lit, _ = generate(t, Philox, key, state, s64)
				require.Equal(t, refPhiloxBits64(key, state, n), lit.Uint64s(), "philox u64 key=%#x state=%d n=%d", key, state, n)
			}
		}
	}
}

func TestZeroElements(t *testing.T) {
	for _, alg := range Algorithms {
		for _, et := range []graph.ElementType{graph.U32, graph.U64} {
			lit, next := generate(t, alg, 9, 17, graph.MakeShape(et, 0))
			assert.Zero(t, lit.Len(), "%s %s", alg, et)
			assert.Equal(t, uint64(17), next, "%s %s", alg, et)
		}
	}
	assert.Empty(t, refPhiloxBits32(9, 17, 0))
	assert.NotNil(t, refPhiloxBits32(9, 17, 0))
	assert.NotNil(t, refPhiloxBits64(9, 17, 0))
}

func TestThreeFryOddSizeLayout(t *testing.T) {
	// Five values come from three counters: all of lane 0, then the first two
	// words of lane 1.
	lit, next := generate(t, ThreeFry, 9, 0, graph.MakeShape(graph.U32, 5))
	assert.Equal(t, uint64(3), next)

	var want []uint32
	var lane1 []uint32
	for c := range 3 {
		out := hostThreeFry([2]uint32{uint32(c), 0}, [2]uint32{9, 0})
		want = append(want, out[0])
		lane1 = append(lane1, out[1])
	}
	want = append(want, lane1[:2]...)
	assert.Equal(t, want, lit.Uint32s())
}

func TestThreeFry64NonOverlapping(t *testing.T) {
	first, next := generate(t, ThreeFry, 77, 10, graph.MakeShape(graph.U64, 4))
	second, _ := generate(t, ThreeFry, 77, next, graph.MakeShape(graph.U64, 4))
	whole, _ := generate(t, ThreeFry, 77, 10, graph.MakeShape(graph.U64, 8))

	assert.Equal(t, whole.Uint64s(), append(first.Uint64s(), second.Uint64s()...))
}
