package main

import (
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/lox/tensorprng/cmd/prngctl/shared"
	"github.com/lox/tensorprng/internal/bench"
	"github.com/lox/tensorprng/prng"
)

// BenchCmd measures throughput for one or both algorithms.
type BenchCmd struct {
	LogFlags  `embed:""`
	DrawFlags `embed:""`

	All      bool `help:"Benchmark every algorithm instead of --algorithm"`
	Parallel int  `short:"p" default:"0" help:"Independent streams; 0 uses one per CPU"`
	Draws    int  `short:"n" default:"16" help:"Draws per stream"`
}

func (c *BenchCmd) Run(out io.Writer) error {
	logger := c.Logger()
	ctx, stop := shared.SetupSignalHandler(logger)
	defer stop()

	s, err := c.Resolve()
	if err != nil {
		return err
	}
	parallel := c.Parallel
	if parallel <= 0 {
		parallel = runtime.NumCPU()
	}
	algs := []prng.Algorithm{s.Algorithm}
	if c.All {
		algs = prng.Algorithms
	}

	runner := bench.NewRunner(bench.WithLogger(logger))
	for _, alg := range algs {
		res, err := runner.Run(ctx, bench.Config{
			Algorithm: alg,
			Request:   s.Request,
			Parallel:  parallel,
			Draws:     c.Draws,
			Seed:      int64(s.Key),
		})
		if err != nil {
			return fmt.Errorf("%s benchmark: %w", alg, err)
		}
		fmt.Fprintf(out, "%s %s %s %s %s %s\n",
			headerStyle.Render(fmt.Sprintf("%-8s", alg)),
			labelStyle.Render(fmt.Sprintf("%s %s x%d", res.Distribution, res.Shape, res.Parallel)),
			valueStyle.Render(fmt.Sprintf("%.0f values/s", res.ValuesPerSecond())),
			labelStyle.Render(fmt.Sprintf("%.1f draws/s", res.DrawsPerSecond())),
			labelStyle.Render("in"),
			res.Elapsed.Round(time.Microsecond),
		)
	}
	return nil
}
