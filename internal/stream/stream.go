// Package stream runs prng programs on the host interpreter, keeping the
// counter state of one keyed stream between draws.
package stream

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lox/tensorprng/graph"
	"github.com/lox/tensorprng/internal/interp"
	"github.com/lox/tensorprng/prng"
)

// sourceBlock is how many u64 values Uint64 draws at a time.
const sourceBlock = 64

// Stream is a keyed generator with a host-side counter. It is not safe for
// concurrent use.
type Stream struct {
	alg    prng.Algorithm
	key    uint64
	state  uint64
	draws  int
	interp *interp.Interpreter
	logger zerolog.Logger

	buf []uint64
}

// Option configures a Stream.
type Option func(*Stream)

// WithState starts the stream at counter state instead of zero.
func WithState(state uint64) Option {
	return func(s *Stream) {
		s.state = state
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Stream) {
		s.logger = logger
	}
}

func WithInterpreter(in *interp.Interpreter) Option {
	return func(s *Stream) {
		s.interp = in
	}
}

func New(alg prng.Algorithm, key uint64, opts ...Option) *Stream {
	s := &Stream{
		alg:    alg,
		key:    key,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.interp == nil {
		s.interp = interp.New(interp.WithLogger(s.logger))
	}
	return s
}

func (s *Stream) Algorithm() prng.Algorithm { return s.alg }
func (s *Stream) Key() uint64              { return s.key }

// State returns the counter state the next draw will start from.
func (s *Stream) State() uint64 { return s.state }

// Draw builds and evaluates req, then advances the stream's state.
func (s *Stream) Draw(req Request) (*interp.Literal, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	b := graph.NewBuilder(fmt.Sprintf("%s-draw-%d", s.alg, s.draws), graph.WithLogger(s.logger))
	out, err := Build(b, s.alg, s.key, s.state, req)
	if err != nil {
		return nil, err
	}
	lits, err := s.interp.Evaluate(out.Value, out.State)
	if err != nil {
		return nil, err
	}
	next, err := lits[1].ScalarUint64()
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Stringer("algorithm", s.alg).
		Stringer("distribution", req.Distribution).
		Stringer("shape", req.Shape).
		Uint64("state", s.state).
		Uint64("new_state", next).
		Int("ops", b.Len()).
		Msg("draw")

	s.state = next
	s.draws++
	return lits[0], nil
}

// Bits draws raw generator output. The literal is u32 for 32-bit shapes and
// u64 for 64-bit ones, whatever the requested type.
func (s *Stream) Bits(shape graph.Shape) (*interp.Literal, error) {
	return s.Draw(Request{Distribution: Bits, Shape: shape})
}

// Uniform draws n f32 values from [min, max).
func (s *Stream) Uniform(n int, min, max float32) ([]float32, error) {
	lit, err := s.Draw(Request{
		Distribution: Uniform,
		Shape:        graph.MakeShape(graph.F32, int64(n)),
		Min:          float64(min),
		Max:          float64(max),
	})
	if err != nil {
		return nil, err
	}
	return lit.Float32s(), nil
}

// Normal draws n standard normal f32 values.
func (s *Stream) Normal(n int) ([]float32, error) {
	lit, err := s.Draw(Request{Distribution: Normal, Shape: graph.MakeShape(graph.F32, int64(n))})
	if err != nil {
		return nil, err
	}
	return lit.Float32s(), nil
}

// IntN draws n s64 values from [0, bound).
func (s *Stream) IntN(n int, bound int64) ([]int64, error) {
	lit, err := s.Draw(Request{
		Distribution: Uniform,
		Shape:        graph.MakeShape(graph.S64, int64(n)),
		IntMax:       bound,
	})
	if err != nil {
		return nil, err
	}
	return lit.Int64s(), nil
}

// Uint64 implements math/rand/v2.Source. Values are drawn in blocks, so the
// stream's state moves ahead of the values handed out so far.
func (s *Stream) Uint64() uint64 {
	if len(s.buf) == 0 {
		lit, err := s.Draw(Request{Distribution: Bits, Shape: graph.MakeShape(graph.U64, sourceBlock)})
		if err != nil {
			panic(fmt.Sprintf("stream: drawing source block: %v", err))
		}
		s.buf = lit.Uint64s()
	}
	v := s.buf[0]
	s.buf = s.buf[1:]
	return v
}
