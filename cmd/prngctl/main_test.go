package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var cli CLI
	var out bytes.Buffer
	parser, err := newParser(&cli, &out)
	require.NoError(t, err)

	ctx, err := parser.Parse(args)
	if err != nil {
		return out.String(), err
	}
	err = ctx.Run()
	return out.String(), err
}

func decodeDraw(t *testing.T, s string) drawOutput {
	t.Helper()
	var res drawOutput
	require.NoError(t, json.Unmarshal([]byte(s), &res))
	return res
}

func TestGenJSON(t *testing.T) {
	out, err := execute(t, "gen", "--seed", "3", "--dims", "4", "--format", "json")
	require.NoError(t, err)

	res := decodeDraw(t, out)
	assert.Equal(t, "philox", res.Algorithm)
	assert.Equal(t, "uniform", res.Distribution)
	assert.Equal(t, "f32", res.Type)
	assert.Equal(t, []int64{4}, res.Dims)
	assert.Equal(t, uint64(0), res.State)
	assert.Equal(t, uint64(4), res.NextState)

	values, ok := res.Values.([]any)
	require.True(t, ok, "values should decode as a list, got %T", res.Values)
	require.Len(t, values, 4)
	for _, v := range values {
		f := v.(float64)
		assert.GreaterOrEqual(t, f, 0.0)
		assert.Less(t, f, 1.0)
	}
}

func TestGenDeterministic(t *testing.T) {
	args := []string{"gen", "-a", "threefry", "--key", "0x1234", "--state", "10", "-d", "2,3", "--dist", "normal", "-f", "json"}
	first, err := execute(t, args...)
	require.NoError(t, err)
	second, err := execute(t, args...)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	res := decodeDraw(t, first)
	assert.Equal(t, "0x1234", res.Key)
	assert.Equal(t, []int64{2, 3}, res.Dims)
	// Six normals need six uniforms, which ThreeFry packs into three counters.
	assert.Equal(t, uint64(13), res.NextState)
}

func TestGenStateAdvance(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want uint64
	}{
		{"threefry u32 odd", []string{"-a", "threefry", "-t", "u32", "--dist", "bits", "-d", "3"}, 2},
		{"threefry u64", []string{"-a", "threefry", "-t", "u64", "--dist", "bits", "-d", "3"}, 3},
		{"philox u32", []string{"-a", "philox", "-t", "u32", "--dist", "bits", "-d", "3"}, 3},
		{"philox s64 uniform", []string{"-a", "philox", "-t", "s64", "--max", "10", "-d", "5"}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, append([]string{"gen", "-f", "json"}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, decodeDraw(t, out).NextState)
		})
	}
}

func TestGenText(t *testing.T) {
	out, err := execute(t, "gen", "-t", "s32", "--min=-5", "--max=5", "-d", "6")
	require.NoError(t, err)
	assert.Contains(t, out, "philox uniform s32[6]")
	assert.Contains(t, out, "next")
}

func TestGenRejectsInvalidFlags(t *testing.T) {
	_, err := execute(t, "gen", "--seed", "1", "--key", "2")
	require.Error(t, err)

	_, err = execute(t, "gen", "-t", "u32", "--dist", "normal")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid draw flags")

	_, err = execute(t, "gen", "-t", "u32")
	require.Error(t, err, "integer uniform draws need --max")
}

func TestGenWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draw.json")
	out, err := execute(t, "gen", "-d", "2", "-o", path)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), decodeDraw(t, string(data)).NextState)
}

func TestGraph(t *testing.T) {
	out, err := execute(t, "graph", "-a", "threefry", "-d", "4")
	require.NoError(t, err)
	assert.Contains(t, out, `graph "threefry-uniform" {`)
	assert.Contains(t, out, "bitcast-convert")
	assert.Contains(t, out, "value %")
	assert.Contains(t, out, ": f32[4]")
}

func TestVectors(t *testing.T) {
	out, err := execute(t, "vectors", "--no-color")
	require.NoError(t, err)
	assert.NotContains(t, out, "\x1b[")
	assert.Contains(t, out, "threefry2x32-20")
	assert.Contains(t, out, "philox4x32-10")
	assert.Contains(t, out, "6b200159")
	assert.NotContains(t, out, "want")
}

func TestRunJob(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "samples.json")
	jobPath := filepath.Join(dir, "job.hcl")
	job := `
log_level = "warn"
output    = "` + outPath + `"

stream "weights" {
  algorithm    = "philox"
  seed         = 42
  dims         = [2, 2]
  distribution = "normal"
  draws        = 2
}

stream "dice" {
  algorithm = "threefry"
  type      = "s32"
  min       = 1
  max       = 7
  dims      = [10]
  state     = 100
}
`
	require.NoError(t, os.WriteFile(jobPath, []byte(job), 0o644))

	_, err := execute(t, "run", jobPath)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var res jobOutput
	require.NoError(t, json.Unmarshal(data, &res))
	require.Len(t, res.Streams, 2)

	weights := res.Streams[0]
	assert.Equal(t, "weights", weights.Name)
	require.Len(t, weights.Draws, 2)
	assert.Equal(t, weights.Draws[0].NextState, weights.Draws[1].State)
	assert.Equal(t, uint64(8), weights.FinalState)

	dice := res.Streams[1]
	assert.Equal(t, uint64(100), dice.StartState)
	assert.Equal(t, uint64(105), dice.FinalState)
	for _, v := range dice.Draws[0].Values.([]any) {
		n := v.(float64)
		assert.GreaterOrEqual(t, n, 1.0)
		assert.Less(t, n, 7.0)
	}
}

func TestRunJobToStdout(t *testing.T) {
	jobPath := filepath.Join(t.TempDir(), "job.hcl")
	require.NoError(t, os.WriteFile(jobPath, []byte(`stream "a" {}`), 0o644))

	out, err := execute(t, "run", jobPath)
	require.NoError(t, err)
	var res jobOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Streams, 1)
	assert.Equal(t, uint64(1), res.Streams[0].FinalState)
}

func TestCheck(t *testing.T) {
	out, err := execute(t, "check", "-n", "5000", "-f", "json")
	require.NoError(t, err)

	var reports []struct {
		Algorithm string `json:"algorithm"`
		Checks    []struct {
			Name   string `json:"name"`
			Passed bool   `json:"passed"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 2)
	assert.Equal(t, "threefry", reports[0].Algorithm)
	assert.Equal(t, "philox", reports[1].Algorithm)
	for _, r := range reports {
		assert.NotEmpty(t, r.Checks)
	}
}

func TestBench(t *testing.T) {
	out, err := execute(t, "bench", "--all", "-p", "2", "-n", "2", "-d", "64")
	require.NoError(t, err)
	assert.Contains(t, out, "threefry")
	assert.Contains(t, out, "philox")
	assert.Contains(t, out, "values/s")
}
