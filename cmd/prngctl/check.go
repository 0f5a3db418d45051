package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/lox/tensorprng/cmd/prngctl/shared"
	"github.com/lox/tensorprng/internal/quality"
	"github.com/lox/tensorprng/prng"
)

// CheckCmd runs the statistical self-checks.
type CheckCmd struct {
	LogFlags `embed:""`

	Samples int     `short:"n" default:"100000" help:"Values drawn per check"`
	Seed    int64   `default:"1" help:"Seed the per-algorithm keys are derived from"`
	Alpha   float64 `default:"1e-4" help:"Significance level"`
	Format  string  `short:"f" default:"text" enum:"text,json" help:"Output format (${enum})"`
}

var errChecksFailed = errors.New("one or more checks failed")

func (c *CheckCmd) Run(out io.Writer) error {
	logger := c.Logger()
	ctx, stop := shared.SetupSignalHandler(logger)
	defer stop()

	checker := quality.NewChecker(quality.WithAlpha(c.Alpha), quality.WithLogger(logger))
	reports, err := checker.RunAll(ctx, prng.Algorithms, c.Seed, c.Samples)
	if err != nil {
		return err
	}

	if c.Format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return err
		}
	} else {
		for _, r := range reports {
			writeReport(out, r)
		}
	}

	for _, r := range reports {
		if !r.Passed() {
			return errChecksFailed
		}
	}
	return nil
}

func writeReport(out io.Writer, r quality.Report) {
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%s  key %s  n=%d", r.Name, hexKey(r.Key), r.Samples)))
	for _, ch := range r.Checks {
		fmt.Fprintf(out, "  %s %-16s %s %s %s %s  %s\n",
			verdict(ch.Passed), ch.Name,
			labelStyle.Render("stat"), valueStyle.Render(fmt.Sprintf("%10.5f", ch.Statistic)),
			labelStyle.Render("p"), valueStyle.Render(fmt.Sprintf("%.4g", ch.PValue)),
			ch.Detail)
	}
}

// VectorsCmd verifies the block functions against published answers.
type VectorsCmd struct {
	LogFlags `embed:""`
}

func (c *VectorsCmd) Run(out io.Writer) error {
	logger := c.Logger()

	results, err := quality.VerifyVectors()
	if err != nil {
		return err
	}
	failed := 0
	for _, r := range results {
		fmt.Fprintf(out, "%s %-16s %-6s %s %08x\n", verdict(r.Passed()), r.Block, r.Name,
			labelStyle.Render("got"), r.Got)
		if !r.Passed() {
			failed++
			fmt.Fprintf(out, "%s %08x\n", labelStyle.Render("                         want"), r.Want)
		}
	}
	logger.Debug().Int("vectors", len(results)).Int("failed", failed).Msg("Verified vectors")
	if failed > 0 {
		return fmt.Errorf("%d of %d vectors failed", failed, len(results))
	}
	return nil
}
