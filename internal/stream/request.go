package stream

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/lox/tensorprng/graph"
	"github.com/lox/tensorprng/prng"
)

// Distribution selects what a draw produces from the generated bits.
type Distribution uint8

const (
	Bits Distribution = iota
	Uniform
	Normal
)

func (d Distribution) String() string {
	switch d {
	case Bits:
		return "bits"
	case Uniform:
		return "uniform"
	case Normal:
		return "normal"
	default:
		return fmt.Sprintf("Distribution(%d)", uint8(d))
	}
}

func ParseDistribution(s string) (Distribution, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bits":
		return Bits, nil
	case "uniform":
		return Uniform, nil
	case "normal":
		return Normal, nil
	}
	return 0, fmt.Errorf("unknown distribution %q", s)
}

// Request describes a single draw.
type Request struct {
	Distribution Distribution
	Shape        graph.Shape

	// Bounds of f32 uniform draws, [Min, Max).
	Min, Max float64

	// Bounds of integer uniform draws, [IntMin, IntMax). For unsigned types
	// the bounds are read as unsigned bit patterns.
	IntMin, IntMax int64
}

// Validate checks the request before any graph is built.
func (r Request) Validate() error {
	for _, d := range r.Shape.Dims {
		if d < 0 {
			return fmt.Errorf("negative dimension in %s", r.Shape)
		}
	}
	t := r.Shape.Type
	switch r.Distribution {
	case Bits:
		return nil
	case Normal:
		if t != graph.F32 {
			return fmt.Errorf("normal draws need f32, got %s", t)
		}
		return nil
	case Uniform:
		switch {
		case t == graph.F32:
			if !(r.Min < r.Max) || math.IsInf(r.Max-r.Min, 0) {
				return fmt.Errorf("uniform bounds [%g, %g) are empty or unbounded", r.Min, r.Max)
			}
		case t == graph.S32 || t == graph.S64:
			if r.IntMin >= r.IntMax {
				return fmt.Errorf("uniform bounds [%d, %d) are empty", r.IntMin, r.IntMax)
			}
			if t == graph.S32 && (r.IntMin < math.MinInt32 || r.IntMax > math.MaxInt32) {
				return errors.New("uniform bounds exceed s32")
			}
		case t == graph.U32 || t == graph.U64:
			if uint64(r.IntMin) >= uint64(r.IntMax) {
				return fmt.Errorf("uniform bounds [%d, %d) are empty", uint64(r.IntMin), uint64(r.IntMax))
			}
			if t == graph.U32 && uint64(r.IntMax) > math.MaxUint32 {
				return errors.New("uniform bounds exceed u32")
			}
		default:
			return fmt.Errorf("uniform draws of %s are not supported", t)
		}
		return nil
	}
	return fmt.Errorf("unknown distribution %s", r.Distribution)
}

// Build describes req for the stream (key, state) on b. Type errors from
// the generators are returned as they are.
func Build(b *graph.Builder, alg prng.Algorithm, key, state uint64, req Request) (prng.Output, error) {
	k := graph.ConstantU64(b, key)
	s := graph.ConstantU64(b, state)
	t := req.Shape.Type
	switch req.Distribution {
	case Bits:
		return alg.Generate(k, s, req.Shape)
	case Normal:
		return prng.NormalFloatDistribution(k, s, alg, req.Shape)
	case Uniform:
		if t == graph.F32 {
			return prng.UniformFloatDistribution(k, s, alg,
				graph.ConstantF32(b, float32(req.Min)), graph.ConstantF32(b, float32(req.Max)), req.Shape)
		}
		lo := graph.Constant(b, graph.ScalarShape(t), []uint64{uint64(req.IntMin)})
		hi := graph.Constant(b, graph.ScalarShape(t), []uint64{uint64(req.IntMax)})
		return prng.UniformIntDistribution(k, s, alg, lo, hi, req.Shape)
	}
	return prng.Output{State: s}, fmt.Errorf("unknown distribution %s", req.Distribution)
}
