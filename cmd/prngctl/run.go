package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/lox/tensorprng/cmd/prngctl/shared"
	"github.com/lox/tensorprng/internal/config"
	"github.com/lox/tensorprng/internal/fileutil"
	"github.com/lox/tensorprng/internal/stream"
)

// RunCmd executes a job file.
type RunCmd struct {
	LogFlags `embed:""`

	Config string `arg:"" help:"HCL job file" type:"existingfile"`
	Out    string `short:"o" help:"Override the job's output file; - writes to stdout" type:"path"`
}

// streamOutput records every draw taken from one stream.
type streamOutput struct {
	Name       string       `json:"name"`
	Algorithm  string       `json:"algorithm"`
	Key        string       `json:"key"`
	StartState uint64       `json:"start_state"`
	FinalState uint64       `json:"final_state"`
	Draws      []drawOutput `json:"draws"`
}

type jobOutput struct {
	Streams []streamOutput `json:"streams"`
}

func (c *RunCmd) Run(out io.Writer) error {
	logger := c.Logger()

	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	logger = shared.ApplyLevel(logger, cfg.LogLevel, c.Debug)

	ctx, stop := shared.SetupSignalHandler(logger)
	defer stop()

	job, err := runJob(ctx, cfg, logger)
	if err != nil {
		return err
	}

	dest := cfg.Output
	if c.Out != "" {
		dest = c.Out
	}
	if dest == "" || dest == "-" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(job)
	}
	if err := fileutil.WriteJSON(dest, job); err != nil {
		return err
	}
	logger.Info().Str("file", dest).Int("streams", len(job.Streams)).Msg("Wrote job output")
	return nil
}

// runJob evaluates the streams in file order, threading each stream's state
// through its draws.
func runJob(ctx context.Context, cfg *config.JobConfig, logger zerolog.Logger) (jobOutput, error) {
	var job jobOutput
	for _, sc := range cfg.Streams {
		s, err := sc.Resolve()
		if err != nil {
			return job, err
		}
		st := stream.New(s.Algorithm, s.Key, stream.WithState(s.State), stream.WithLogger(logger))
		res := streamOutput{
			Name:       s.Name,
			Algorithm:  s.Algorithm.String(),
			Key:        hexKey(s.Key),
			StartState: s.State,
		}
		for i := 0; i < s.Draws; i++ {
			if err := ctx.Err(); err != nil {
				return job, err
			}
			start := st.State()
			lit, err := st.Draw(s.Request)
			if err != nil {
				return job, fmt.Errorf("stream %q draw %d: %w", s.Name, i, err)
			}
			res.Draws = append(res.Draws, newDrawOutput(s, start, st.State(), lit))
		}
		res.FinalState = st.State()

		logger.Info().
			Str("stream", s.Name).
			Stringer("algorithm", s.Algorithm).
			Int("draws", s.Draws).
			Uint64("final_state", res.FinalState).
			Msg("Stream complete")
		job.Streams = append(job.Streams, res)
	}
	return job, nil
}
