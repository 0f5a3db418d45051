package main

import (
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/lox/tensorprng/cmd/prngctl/shared"
	"github.com/lox/tensorprng/internal/config"
)

// LogFlags are shared by every command.
type LogFlags struct {
	Debug   bool `help:"Enable debug logging" env:"PRNGCTL_DEBUG"`
	LogJSON bool `name:"log-json" help:"Emit structured JSON logs" env:"PRNGCTL_LOG_JSON"`
	NoColor bool `name:"no-color" help:"Disable colored output" env:"NO_COLOR"`
}

// Logger builds the command's logger and applies the color setting to the
// report styles.
func (f LogFlags) Logger() zerolog.Logger {
	if f.NoColor {
		disableColor()
	}
	return shared.SetupLogger(f.Debug, f.LogJSON)
}

// DrawFlags describe a single stream and draw. They resolve through the
// same path as a job file stream block.
type DrawFlags struct {
	Algorithm string   `short:"a" default:"philox" enum:"threefry,philox" help:"Bit generator (${enum})" env:"PRNGCTL_ALGORITHM"`
	Seed      *int64   `help:"Integer seed mixed into the key" xor:"key"`
	Key       string   `help:"Raw 64-bit key, decimal or 0x hex" xor:"key" env:"PRNGCTL_KEY"`
	State     int64    `default:"0" help:"Starting counter state"`
	Type      string   `short:"t" default:"f32" enum:"f32,u32,s32,u64,s64" help:"Element type (${enum})"`
	Dims      []int64  `short:"d" default:"8" help:"Dimensions of the draw"`
	Dist      string   `default:"uniform" enum:"bits,uniform,normal" help:"Distribution (${enum})"`
	Min       *float64 `help:"Inclusive lower bound of uniform draws"`
	Max       *float64 `help:"Exclusive upper bound of uniform draws"`
}

func (f DrawFlags) streamConfig(name string) config.StreamConfig {
	state := f.State
	return config.StreamConfig{
		Name:         name,
		Algorithm:    f.Algorithm,
		Seed:         f.Seed,
		Key:          f.Key,
		State:        &state,
		Type:         f.Type,
		Dims:         f.Dims,
		Distribution: f.Dist,
		Min:          f.Min,
		Max:          f.Max,
		Draws:        1,
	}
}

// Resolve turns the flags into generator inputs.
func (f DrawFlags) Resolve() (config.Stream, error) {
	s, err := f.streamConfig("cli").Resolve()
	if err != nil {
		return config.Stream{}, fmt.Errorf("invalid draw flags: %w", err)
	}
	return s, nil
}

func hexKey(key uint64) string {
	return "0x" + strconv.FormatUint(key, 16)
}
