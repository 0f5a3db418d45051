// Package bench measures how fast the host interpreter produces values for
// each generator.
package bench

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lox/tensorprng/graph"
	"github.com/lox/tensorprng/internal/randutil"
	"github.com/lox/tensorprng/internal/stream"
	"github.com/lox/tensorprng/prng"
)

// Config describes one benchmark run.
type Config struct {
	Algorithm prng.Algorithm
	Request   stream.Request
	// Parallel independent streams, each with its own key.
	Parallel int
	// Draws taken by every stream.
	Draws int
	Seed  int64
}

// Validate checks that the configuration describes a runnable benchmark.
func (c Config) Validate() error {
	if c.Parallel < 1 {
		return errors.New("parallel must be at least 1")
	}
	if c.Draws < 1 {
		return errors.New("draws must be at least 1")
	}
	if c.Request.Shape.Elements() == 0 {
		return errors.New("draw shape has no elements")
	}
	if err := c.Request.Validate(); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

// Result summarises a completed run.
type Result struct {
	Algorithm    prng.Algorithm
	Distribution stream.Distribution
	Shape        graph.Shape
	Parallel     int
	Draws        int64
	Values       int64
	Elapsed      time.Duration
}

// ValuesPerSecond returns the throughput over the whole run, or 0 when no
// time was measured.
func (r Result) ValuesPerSecond() float64 {
	return throughput(r.Values, r.Elapsed)
}

// DrawsPerSecond is ValuesPerSecond counted in whole draws.
func (r Result) DrawsPerSecond() float64 {
	return throughput(r.Draws, r.Elapsed)
}

func throughput(n int64, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(n) / d.Seconds()
}

// Runner executes benchmarks.
type Runner struct {
	clock  quartz.Clock
	logger zerolog.Logger
}

type Option func(*Runner)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(clock quartz.Clock) Option {
	return func(r *Runner) {
		r.clock = clock
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		clock:  quartz.NewReal(),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run draws cfg.Draws times from cfg.Parallel streams at once. Cancelling
// ctx stops every stream before its next draw; the partial result is
// returned with the context's error.
func (r *Runner) Run(ctx context.Context, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	res := Result{
		Algorithm:    cfg.Algorithm,
		Distribution: cfg.Request.Distribution,
		Shape:        cfg.Request.Shape,
		Parallel:     cfg.Parallel,
	}
	perDraw := cfg.Request.Shape.Elements()
	keys := randutil.Keys(cfg.Seed, cfg.Parallel)

	var draws atomic.Int64
	start := r.clock.Now("bench", "start")

	g, ctx := errgroup.WithContext(ctx)
	for w, key := range keys {
		g.Go(func() error {
			s := stream.New(cfg.Algorithm, key)
			for i := 0; i < cfg.Draws; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				if _, err := s.Draw(cfg.Request); err != nil {
					return fmt.Errorf("stream %d draw %d: %w", w, i, err)
				}
				draws.Add(1)
			}
			r.logger.Debug().
				Int("stream", w).
				Uint64("final_state", s.State()).
				Msg("stream finished")
			return nil
		})
	}
	err := g.Wait()

	res.Elapsed = r.clock.Since(start, "bench", "end")
	res.Draws = draws.Load()
	res.Values = res.Draws * perDraw

	r.logger.Info().
		Stringer("algorithm", res.Algorithm).
		Stringer("distribution", res.Distribution).
		Stringer("shape", res.Shape).
		Int("parallel", res.Parallel).
		Int64("values", res.Values).
		Dur("elapsed", res.Elapsed).
		Float64("values_per_sec", res.ValuesPerSecond()).
		Msg("benchmark complete")

	return res, err
}
