package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/lox/tensorprng/graph"
	"github.com/lox/tensorprng/internal/config"
	"github.com/lox/tensorprng/internal/fileutil"
	"github.com/lox/tensorprng/internal/interp"
	"github.com/lox/tensorprng/internal/stream"
)

// GenCmd draws once from a stream and prints or saves the values.
type GenCmd struct {
	LogFlags  `embed:""`
	DrawFlags `embed:""`

	Format string `short:"f" default:"text" enum:"text,json" help:"Output format (${enum})"`
	Out    string `short:"o" help:"Write JSON to this file instead of stdout" type:"path"`
}

// drawOutput is the JSON form of one draw.
type drawOutput struct {
	Name         string  `json:"name,omitempty"`
	Algorithm    string  `json:"algorithm"`
	Key          string  `json:"key"`
	State        uint64  `json:"state"`
	NextState    uint64  `json:"next_state"`
	Distribution string  `json:"distribution"`
	Type         string  `json:"type"`
	Dims         []int64 `json:"dims"`
	Values       any     `json:"values"`
}

func newDrawOutput(s config.Stream, start, next uint64, lit *interp.Literal) drawOutput {
	dims := lit.Shape().Dims
	if dims == nil {
		dims = []int64{}
	}
	return drawOutput{
		Name:         s.Name,
		Algorithm:    s.Algorithm.String(),
		Key:          hexKey(s.Key),
		State:        start,
		NextState:    next,
		Distribution: s.Request.Distribution.String(),
		Type:         lit.Shape().Type.String(),
		Dims:         dims,
		Values:       lit.Values(),
	}
}

func (c *GenCmd) Run(out io.Writer) error {
	logger := c.Logger()

	s, err := c.Resolve()
	if err != nil {
		return err
	}
	st := stream.New(s.Algorithm, s.Key, stream.WithState(s.State), stream.WithLogger(logger))
	lit, err := st.Draw(s.Request)
	if err != nil {
		return fmt.Errorf("draw failed: %w", err)
	}
	res := newDrawOutput(s, s.State, st.State(), lit)

	if c.Out != "" {
		if err := fileutil.WriteJSON(c.Out, res); err != nil {
			return err
		}
		logger.Info().
			Str("file", c.Out).
			Int("values", lit.Len()).
			Uint64("next_state", res.NextState).
			Msg("Wrote draw")
		return nil
	}

	if c.Format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	return writeDrawText(out, res, lit)
}

func writeDrawText(out io.Writer, res drawOutput, lit *interp.Literal) error {
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%s %s %s", res.Algorithm, res.Distribution, lit.Shape())))
	fmt.Fprintf(out, "%s %s  %s %d  %s %d\n",
		labelStyle.Render("key"), res.Key,
		labelStyle.Render("state"), res.State,
		labelStyle.Render("next"), res.NextState)
	for _, v := range formatValues(lit) {
		if _, err := fmt.Fprintln(out, v); err != nil {
			return err
		}
	}
	return nil
}

// formatValues renders each element in its natural notation; raw bits are
// printed as hex.
func formatValues(lit *interp.Literal) []string {
	out := make([]string, lit.Len())
	switch lit.Shape().Type {
	case graph.F32:
		for i, v := range lit.Float32s() {
			out[i] = strconv.FormatFloat(float64(v), 'g', -1, 32)
		}
	case graph.S32:
		for i, v := range lit.Int32s() {
			out[i] = strconv.FormatInt(int64(v), 10)
		}
	case graph.S64:
		for i, v := range lit.Int64s() {
			out[i] = strconv.FormatInt(v, 10)
		}
	case graph.U32:
		for i, v := range lit.Uint32s() {
			out[i] = fmt.Sprintf("0x%08x", v)
		}
	default:
		for i, v := range lit.Uint64s() {
			out[i] = fmt.Sprintf("0x%016x", v)
		}
	}
	return out
}

// GraphCmd prints the program a gen invocation would evaluate.
type GraphCmd struct {
	LogFlags  `embed:""`
	DrawFlags `embed:""`
}

func (c *GraphCmd) Run(out io.Writer) error {
	logger := c.Logger()

	s, err := c.Resolve()
	if err != nil {
		return err
	}
	b := graph.NewBuilder(fmt.Sprintf("%s-%s", s.Algorithm, s.Request.Distribution), graph.WithLogger(logger))
	res, err := stream.Build(b, s.Algorithm, s.Key, s.State, s.Request)
	if err != nil {
		return err
	}
	if err := b.Err(); err != nil {
		return fmt.Errorf("invalid program: %w", err)
	}
	if err := b.Dump(out); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "value %%%d : %s\nstate %%%d : %s\n",
		res.Value.ID(), res.Value.Shape(), res.State.ID(), res.State.Shape())
	return err
}
