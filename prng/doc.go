// Package prng builds counter-based pseudorandom number generation on top of
// the graph operation algebra.
//
// A stream is identified by a u64 key. Each draw takes the current u64
// counter state and returns the generated value together with the advanced
// state; feeding that state into the next draw guarantees that no counter is
// used twice for the same key. Drawing twice from the same state yields the
// same bits.
//
//	b := graph.NewBuilder("init")
//	key := graph.ConstantU64(b, 42)
//	state := graph.ConstantU64(b, 0)
//	out, err := prng.NormalFloatDistribution(key, state, prng.Philox, graph.MakeShape(graph.F32, 128, 64))
//
// Nothing is computed here: the returned Ops describe the computation for a
// backend to execute.
package prng
