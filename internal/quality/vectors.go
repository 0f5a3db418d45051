package quality

import (
	"fmt"
	"slices"

	"github.com/lox/tensorprng/graph"
	"github.com/lox/tensorprng/internal/interp"
	"github.com/lox/tensorprng/prng"
)

// VectorResult is the outcome of one known-answer test.
type VectorResult struct {
	Algorithm prng.Algorithm `json:"-"`
	Block     string         `json:"block"`
	Name      string         `json:"name"`
	Got       []uint32       `json:"got"`
	Want      []uint32       `json:"want"`
}

func (v VectorResult) Passed() bool {
	return slices.Equal(v.Got, v.Want)
}

// VerifyVectors evaluates the block functions on every published vector.
// A mismatch is reported in the results, not as an error; errors mean the
// program could not be evaluated.
func VerifyVectors() ([]VectorResult, error) {
	var results []VectorResult

	for _, v := range prng.ThreeFryVectors {
		b := graph.NewBuilder("threefry-" + v.Name)
		out := prng.ThreeFry2x32(
			[2]*graph.Op{graph.ConstantU32(b, v.Counter[0]), graph.ConstantU32(b, v.Counter[1])},
			[2]*graph.Op{graph.ConstantU32(b, v.Key[0]), graph.ConstantU32(b, v.Key[1])},
		)
		got, err := evaluateWords(out[:]...)
		if err != nil {
			return nil, fmt.Errorf("threefry vector %s: %w", v.Name, err)
		}
		results = append(results, VectorResult{
			Algorithm: prng.ThreeFry,
			Block:     "threefry2x32-20",
			Name:      v.Name,
			Got:       got,
			Want:      v.Want[:],
		})
	}

	for _, v := range prng.PhiloxVectors {
		b := graph.NewBuilder("philox-" + v.Name)
		var counter [4]*graph.Op
		for i, c := range v.Counter {
			counter[i] = graph.ConstantU32(b, c)
		}
		out := prng.Philox4x32(counter,
			[2]*graph.Op{graph.ConstantU32(b, v.Key[0]), graph.ConstantU32(b, v.Key[1])})
		got, err := evaluateWords(out[:]...)
		if err != nil {
			return nil, fmt.Errorf("philox vector %s: %w", v.Name, err)
		}
		results = append(results, VectorResult{
			Algorithm: prng.Philox,
			Block:     "philox4x32-10",
			Name:      v.Name,
			Got:       got,
			Want:      v.Want[:],
		})
	}
	return results, nil
}

func evaluateWords(words ...*graph.Op) ([]uint32, error) {
	lits, err := interp.Evaluate(words...)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, len(lits))
	for i, lit := range lits {
		w, err := lit.ScalarUint64()
		if err != nil {
			return nil, err
		}
		out[i] = uint32(w)
	}
	return out, nil
}
