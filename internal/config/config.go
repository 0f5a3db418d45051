// Package config loads generation jobs from HCL files.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/tensorprng/graph"
	"github.com/lox/tensorprng/internal/randutil"
	"github.com/lox/tensorprng/internal/stream"
	"github.com/lox/tensorprng/prng"
)

// JobConfig is the root of a job file.
type JobConfig struct {
	LogLevel string         `hcl:"log_level,optional"`
	Output   string         `hcl:"output,optional"`
	Streams  []StreamConfig `hcl:"stream,block"`
}

// StreamConfig describes one keyed stream and the draws taken from it.
// Exactly one of Seed or Key may be set; with neither the seed is 0.
type StreamConfig struct {
	Name         string   `hcl:"name,label"`
	Algorithm    string   `hcl:"algorithm,optional"`
	Seed         *int64   `hcl:"seed,optional"`
	Key          string   `hcl:"key,optional"`
	State        *int64   `hcl:"state,optional"`
	Type         string   `hcl:"type,optional"`
	Dims         []int64  `hcl:"dims,optional"`
	Distribution string   `hcl:"distribution,optional"`
	Min          *float64 `hcl:"min,optional"`
	Max          *float64 `hcl:"max,optional"`
	Draws        int      `hcl:"draws,optional"`
}

// Stream is a StreamConfig resolved into generator inputs.
type Stream struct {
	Name      string
	Algorithm prng.Algorithm
	Key       uint64
	State     uint64
	Request   stream.Request
	Draws     int
}

// Load reads and validates the job file at filename.
func Load(filename string) (*JobConfig, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file: %w", err)
	}
	return Parse(src, filename)
}

// Parse decodes an HCL job description, applies defaults and validates it.
func Parse(src []byte, filename string) (*JobConfig, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg JobConfig
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *JobConfig) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	for i := range c.Streams {
		s := &c.Streams[i]
		if s.Algorithm == "" {
			s.Algorithm = prng.Philox.String()
		}
		if s.Type == "" {
			s.Type = graph.F32.String()
		}
		if s.Distribution == "" {
			s.Distribution = stream.Uniform.String()
		}
		if s.Draws == 0 {
			s.Draws = 1
		}
	}
}

// Validate ensures every stream resolves.
func (c *JobConfig) Validate() error {
	if len(c.Streams) == 0 {
		return errors.New("job file defines no streams")
	}
	seen := make(map[string]bool, len(c.Streams))
	for _, s := range c.Streams {
		if seen[s.Name] {
			return fmt.Errorf("stream %q defined more than once", s.Name)
		}
		seen[s.Name] = true
		if _, err := s.Resolve(); err != nil {
			return err
		}
	}
	return nil
}

// Resolve converts the textual configuration into generator inputs.
func (s StreamConfig) Resolve() (Stream, error) {
	fail := func(format string, args ...any) (Stream, error) {
		return Stream{}, fmt.Errorf("stream %q: "+format, append([]any{s.Name}, args...)...)
	}

	alg, err := prng.ParseAlgorithm(s.Algorithm)
	if err != nil {
		return fail("%w", err)
	}
	t, err := graph.ParseElementType(s.Type)
	if err != nil {
		return fail("%w", err)
	}
	dist, err := stream.ParseDistribution(s.Distribution)
	if err != nil {
		return fail("%w", err)
	}
	if s.Draws < 0 {
		return fail("draws must be >= 0")
	}

	var key uint64
	switch {
	case s.Seed != nil && s.Key != "":
		return fail("seed and key are mutually exclusive")
	case s.Key != "":
		key, err = strconv.ParseUint(strings.TrimSpace(s.Key), 0, 64)
		if err != nil {
			return fail("invalid key: %w", err)
		}
	case s.Seed != nil:
		key = randutil.Key(*s.Seed)
	default:
		key = randutil.Key(0)
	}

	var state uint64
	if s.State != nil {
		if *s.State < 0 {
			return fail("state must be >= 0")
		}
		state = uint64(*s.State)
	}

	req := stream.Request{Distribution: dist, Shape: graph.MakeShape(t, s.Dims...)}
	if dist == stream.Uniform {
		lo, hi := 0.0, 1.0
		if s.Min != nil {
			lo = *s.Min
		}
		if s.Max != nil {
			hi = *s.Max
		}
		if t == graph.F32 {
			req.Min, req.Max = lo, hi
		} else {
			if s.Max == nil {
				return fail("integer uniform draws need max")
			}
			req.IntMin, req.IntMax = int64(lo), int64(hi)
		}
	}
	if err := req.Validate(); err != nil {
		return fail("%w", err)
	}

	return Stream{
		Name:      s.Name,
		Algorithm: alg,
		Key:       key,
		State:     state,
		Request:   req,
		Draws:     s.Draws,
	}, nil
}
