package bench

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/tensorprng/graph"
	"github.com/lox/tensorprng/internal/stream"
	"github.com/lox/tensorprng/prng"
)

func uniformRequest(n int64) stream.Request {
	return stream.Request{
		Distribution: stream.Uniform,
		Shape:        graph.MakeShape(graph.F32, n),
		Min:          0,
		Max:          1,
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := Config{Algorithm: prng.Philox, Request: uniformRequest(8), Parallel: 2, Draws: 3}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no streams", func(c *Config) { c.Parallel = 0 }, "parallel"},
		{"no draws", func(c *Config) { c.Draws = 0 }, "draws"},
		{"empty shape", func(c *Config) { c.Request.Shape = graph.MakeShape(graph.F32, 0) }, "no elements"},
		{"bad bounds", func(c *Config) { c.Request.Min, c.Request.Max = 1, 1 }, "invalid request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRunCountsDraws(t *testing.T) {
	t.Parallel()

	for _, alg := range prng.Algorithms {
		t.Run(alg.String(), func(t *testing.T) {
			t.Parallel()

			mClock := quartz.NewMock(t)
			r := NewRunner(WithClock(mClock))
			res, err := r.Run(context.Background(), Config{
				Algorithm: alg,
				Request:   uniformRequest(16),
				Parallel:  3,
				Draws:     4,
				Seed:      7,
			})
			require.NoError(t, err)

			assert.Equal(t, alg, res.Algorithm)
			assert.Equal(t, int64(12), res.Draws)
			assert.Equal(t, int64(12*16), res.Values)
			// The mock clock never moves on its own.
			assert.Zero(t, res.Elapsed)
			assert.Zero(t, res.ValuesPerSecond())
		})
	}
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(WithClock(quartz.NewMock(t)))
	res, err := r.Run(ctx, Config{Algorithm: prng.ThreeFry, Request: uniformRequest(4), Parallel: 2, Draws: 10})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, res.Draws)
}

func TestRunInvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := NewRunner().Run(context.Background(), Config{Algorithm: prng.Philox, Request: uniformRequest(4)})
	require.Error(t, err)
}

func TestThroughput(t *testing.T) {
	t.Parallel()

	res := Result{Draws: 10, Values: 5000, Elapsed: 2 * time.Second}
	assert.InDelta(t, 2500.0, res.ValuesPerSecond(), 1e-9)
	assert.InDelta(t, 5.0, res.DrawsPerSecond(), 1e-9)
	assert.Zero(t, Result{Values: 10}.ValuesPerSecond())
}
