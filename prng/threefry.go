package prng

import "github.com/lox/tensorprng/graph"

// threeFryParity is the key schedule parity constant of Threefry2x32.
const threeFryParity = 0x1BD11BDA

// Rotation distances of Threefry2x32; the first and second halves alternate
// between groups of four rounds.
var threeFryRotations = [8]int{13, 15, 26, 6, 17, 29, 16, 24}

// ThreeFry2x32 applies 20 rounds of the Threefry2x32 block function
// (Salmon et al., "Parallel random numbers: as easy as 1, 2, 3", SC 2011)
// to the counter lanes x under key. Lanes are u32 values of matching
// shape; the key lanes are usually scalars.
//
// 13 rounds have no known statistical weakness; 20 are used.
func ThreeFry2x32(x, key [2]*graph.Op) [2]*graph.Op {
	b := x[0].Builder()
	key[0] = graph.BitcastConvert(key[0], graph.U32)
	key[1] = graph.BitcastConvert(key[1], graph.U32)

	ks := [3]*graph.Op{
		key[0],
		key[1],
		graph.Xor(graph.Xor(graph.ConstantU32(b, threeFryParity), key[0]), key[1]),
	}

	x[0] = graph.Add(x[0], ks[0])
	x[1] = graph.Add(x[1], ks[1])

	for group := 0; group < 5; group++ {
		half := (group % 2) * 4
		for _, r := range threeFryRotations[half : half+4] {
			x = threeFryRound(x, r)
		}
		x[0] = graph.Add(x[0], ks[(group+1)%3])
		x[1] = graph.Add(graph.Add(x[1], ks[(group+2)%3]), graph.ConstantU32(b, uint32(group+1)))
	}
	return x
}

func threeFryRound(v [2]*graph.Op, rotation int) [2]*graph.Op {
	v[0] = graph.Add(v[0], v[1])
	v[1] = RotateLeft32(v[1], rotation)
	v[1] = graph.Xor(v[0], v[1])
	return v
}

// threeFryInputs derives size consecutive 64-bit counters starting at state,
// split into the two lanes, together with the advanced state.
func threeFryInputs(state *graph.Op, size int64) ([2]*graph.Op, *graph.Op) {
	b := state.Builder()
	counters := graph.Add(graph.Iota(b, graph.U64, size), state)
	newState := graph.Add(state, graph.ConstantU64(b, uint64(size)))
	lo, hi := Split64To32(counters)
	return [2]*graph.Op{lo, hi}, newState
}

func threeFryKey(key *graph.Op) [2]*graph.Op {
	lo, hi := Split64To32(key)
	return [2]*graph.Op{lo, hi}
}

// threeFryBits32 produces u32 bits from ceil(size/2) counters: both output
// lanes are used, so the state advances by half the element count.
func threeFryBits32(key, state *graph.Op, shape graph.Shape) Output {
	b := key.Builder()
	size := shape.Elements()
	half := (size + 1) / 2

	inputs, newState := threeFryInputs(state, half)
	out := ThreeFry2x32(inputs, threeFryKey(key))
	if half*2 != size {
		out[1] = graph.SliceInDim(out[1], 0, half-1, 1, 0)
	}
	bits := graph.ConcatInDim(b, out[:], 0)
	return Output{Value: graph.Reshape(bits, shape.Dims...), State: newState}
}

// threeFryBits64 uses one counter per element and merges the two output
// lanes into a u64.
func threeFryBits64(key, state *graph.Op, shape graph.Shape) Output {
	size := shape.Elements()
	inputs, newState := threeFryInputs(state, size)
	out := ThreeFry2x32(inputs, threeFryKey(key))
	bits := Merge32To64(out[0], out[1])
	return Output{Value: graph.Reshape(bits, shape.Dims...), State: newState}
}
