package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/tensorprng/graph"
	"github.com/lox/tensorprng/internal/randutil"
	"github.com/lox/tensorprng/internal/stream"
	"github.com/lox/tensorprng/prng"
)

const sampleJob = `
log_level = "debug"
output    = "samples.json"

stream "weights" {
  algorithm    = "threefry"
  seed         = 42
  state        = 10
  type         = "f32"
  dims         = [4, 4]
  distribution = "normal"
  draws        = 2
}

stream "dice" {
  key  = "0xdeadbeef"
  type = "s32"
  min  = 1
  max  = 7
  dims = [100]
}

stream "raw" {
  type         = "u64"
  distribution = "bits"
}
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sampleJob), "job.hcl")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "samples.json", cfg.Output)
	require.Len(t, cfg.Streams, 3)

	weights, err := cfg.Streams[0].Resolve()
	require.NoError(t, err)
	assert.Equal(t, "weights", weights.Name)
	assert.Equal(t, prng.ThreeFry, weights.Algorithm)
	assert.Equal(t, randutil.Key(42), weights.Key)
	assert.Equal(t, uint64(10), weights.State)
	assert.Equal(t, stream.Normal, weights.Request.Distribution)
	assert.Equal(t, "f32[4,4]", weights.Request.Shape.String())
	assert.Equal(t, 2, weights.Draws)

	dice, err := cfg.Streams[1].Resolve()
	require.NoError(t, err)
	assert.Equal(t, prng.Philox, dice.Algorithm, "algorithm defaults to philox")
	assert.Equal(t, uint64(0xdeadbeef), dice.Key)
	assert.Equal(t, int64(1), dice.Request.IntMin)
	assert.Equal(t, int64(7), dice.Request.IntMax)
	assert.Equal(t, 1, dice.Draws)

	raw, err := cfg.Streams[2].Resolve()
	require.NoError(t, err)
	assert.Equal(t, stream.Bits, raw.Request.Distribution)
	assert.Equal(t, graph.U64, raw.Request.Shape.Type)
	assert.True(t, raw.Request.Shape.IsScalar())
	assert.Equal(t, randutil.Key(0), raw.Key)
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`stream "a" {}`), "job.hcl")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.Output)

	s := cfg.Streams[0]
	assert.Equal(t, "philox", s.Algorithm)
	assert.Equal(t, "f32", s.Type)
	assert.Equal(t, "uniform", s.Distribution)
	assert.Equal(t, 1, s.Draws)

	resolved, err := s.Resolve()
	require.NoError(t, err)
	assert.Equal(t, 0.0, resolved.Request.Min)
	assert.Equal(t, 1.0, resolved.Request.Max)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"syntax", `stream "a" {`, "failed to parse"},
		{"unknown attribute", `stream "a" { colour = "red" }`, "failed to decode"},
		{"no streams", `log_level = "info"`, "no streams"},
		{"duplicate", "stream \"a\" {}\nstream \"a\" {}", "more than once"},
		{"algorithm", `stream "a" { algorithm = "mersenne" }`, "unknown algorithm"},
		{"type", `stream "a" { type = "c64" }`, "unknown element type"},
		{"distribution", `stream "a" { distribution = "poisson" }`, "unknown distribution"},
		{"seed and key", `stream "a" {
  seed = 1
  key  = "2"
}`, "mutually exclusive"},
		{"bad key", `stream "a" { key = "zz" }`, "invalid key"},
		{"negative state", `stream "a" { state = -1 }`, "state must be"},
		{"negative draws", `stream "a" { draws = -2 }`, "draws must be"},
		{"int without max", `stream "a" { type = "u32" }`, "need max"},
		{"empty bounds", `stream "a" {
  min = 2
  max = 1
}`, "empty"},
		{"normal int", `stream "a" {
  type         = "s64"
  distribution = "normal"
}`, "normal draws need f32"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "job.hcl")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "job.hcl")
	require.NoError(t, os.WriteFile(path, []byte(sampleJob), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Streams, 3)

	_, err = Load(filepath.Join(dir, "missing.hcl"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read job file")
}
