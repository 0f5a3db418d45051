package prng

import "github.com/lox/tensorprng/graph"

const (
	philoxW32A      = 0x9E3779B9
	philoxW32B      = 0xBB67AE85
	philoxM4x32A    = 0xD2511F53
	philoxM4x32B    = 0xCD9E8D57
	philoxRounds    = 10
	philoxScramble0 = 0x3ec8f720
	philoxScramble1 = 0x02461e29
)

// mulHiLo returns the high and low 32 bits of the 64-bit product x*k.
func mulHiLo(x *graph.Op, k uint32) (hi, lo *graph.Op) {
	b := x.Builder()
	product := graph.Mul(graph.Convert(x, graph.U64), graph.ConstantU64(b, uint64(k)))
	lo = graph.Convert(product, graph.U32)
	hi = graph.Convert(graph.ShiftRightLogical(product, graph.ConstantU64(b, 32)), graph.U32)
	return hi, lo
}

func philoxRound(x [4]*graph.Op, key [2]*graph.Op) [4]*graph.Op {
	hi0, lo0 := mulHiLo(x[0], philoxM4x32A)
	hi1, lo1 := mulHiLo(x[2], philoxM4x32B)
	return [4]*graph.Op{
		graph.Xor(graph.Xor(hi1, x[1]), key[0]),
		lo1,
		graph.Xor(graph.Xor(hi0, x[3]), key[1]),
		lo0,
	}
}

func raiseKey(key [2]*graph.Op) [2]*graph.Op {
	b := key[0].Builder()
	return [2]*graph.Op{
		graph.Add(key[0], graph.ConstantU32(b, philoxW32A)),
		graph.Add(key[1], graph.ConstantU32(b, philoxW32B)),
	}
}

// Philox4x32 applies 10 rounds of the Philox4x32 block function to the four
// u32 counter lanes of state under the two key lanes.
func Philox4x32(state [4]*graph.Op, key [2]*graph.Op) [4]*graph.Op {
	for round := 0; round < philoxRounds; round++ {
		state = philoxRound(state, key)
		// The raise after the final round would never be read.
		if round+1 < philoxRounds {
			key = raiseKey(key)
		}
	}
	return state
}

// scramblePhiloxKey runs the user key through Philox once so that every bit
// of the key influences the stream equally. It returns the starting counter
// (low 64 bits zero) and the key used for generation.
func scramblePhiloxKey(key [2]*graph.Op) ([4]*graph.Op, [2]*graph.Op) {
	b := key[0].Builder()
	k0lo, k0hi := Split64To32(graph.Convert(key[0], graph.U64))
	k1lo, k1hi := Split64To32(graph.Convert(key[1], graph.U64))

	state := Philox4x32(
		[4]*graph.Op{k0lo, k0hi, k1lo, k1hi},
		[2]*graph.Op{graph.ConstantU32(b, philoxScramble0), graph.ConstantU32(b, philoxScramble1)},
	)
	zero := graph.ConstantU32(b, 0)
	return [4]*graph.Op{zero, zero, state[2], state[3]}, [2]*graph.Op{state[0], state[1]}
}

// philoxCounters adds [0, n) to state viewed as a 128-bit integer, carrying
// from the low 64 bits into the high 64 bits.
func philoxCounters(state [4]*graph.Op, n int64) [4]*graph.Op {
	b := state[0].Builder()
	low := Merge32To64(state[0], state[1])
	newLow := graph.Add(low, graph.Iota(b, graph.U64, n))
	l0, l1 := Split64To32(newLow)

	high := Merge32To64(state[2], state[3])
	newHigh := graph.Select(
		graph.Lt(newLow, low),
		graph.Broadcast(graph.Add(high, graph.ConstantU64(b, 1)), n),
		graph.Broadcast(high, n),
	)
	h0, h1 := Split64To32(newHigh)
	return [4]*graph.Op{l0, l1, h0, h1}
}

// philoxBlocks generates ceil(n/4) 128-bit blocks; the result holds at least
// n u32 values once its lanes are concatenated.
func philoxBlocks(n int64, key [2]*graph.Op) [4]*graph.Op {
	state, key := scramblePhiloxKey(key)
	blocks := (n + 3) / 4
	return Philox4x32(philoxCounters(state, blocks), key)
}

// philoxKey folds the counter state into the key, so successive states give
// independent scrambled streams.
func philoxKey(key, state *graph.Op) [2]*graph.Op {
	lo, hi := Split64To32(graph.Add(key, state))
	return [2]*graph.Op{lo, hi}
}

func philoxBits32(key, state *graph.Op, shape graph.Shape) Output {
	b := key.Builder()
	n := shape.Elements()
	newState := graph.Add(state, graph.ConstantU64(b, uint64(n)))

	lanes := philoxBlocks(n, philoxKey(key, state))
	numbers := graph.ConcatInDim(b, lanes[:], 0)
	numbers = graph.SliceInDim(numbers, 0, n, 1, 0)
	return Output{Value: graph.Reshape(numbers, shape.Dims...), State: newState}
}

func philoxBits64(key, state *graph.Op, shape graph.Shape) Output {
	b := key.Builder()
	n := shape.Elements()
	newState := graph.Add(state, graph.ConstantU64(b, uint64(n)))

	lanes := philoxBlocks(n*2, philoxKey(key, state))
	wide := []*graph.Op{
		Merge32To64(lanes[0], lanes[1]),
		Merge32To64(lanes[2], lanes[3]),
	}
	numbers := graph.ConcatInDim(b, wide, 0)
	numbers = graph.SliceInDim(numbers, 0, n, 1, 0)
	return Output{Value: graph.Reshape(numbers, shape.Dims...), State: newState}
}
