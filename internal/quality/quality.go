// Package quality runs statistical self-checks and known-answer tests
// against the generators.
package quality

import (
	"context"
	"fmt"
	"math"
	"math/bits"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/lox/tensorprng/graph"
	"github.com/lox/tensorprng/internal/randutil"
	"github.com/lox/tensorprng/internal/statistics"
	"github.com/lox/tensorprng/internal/stream"
	"github.com/lox/tensorprng/prng"
)

// DefaultAlpha is the significance level a check must clear.
const DefaultAlpha = 1e-4

// intBuckets is the range of the integer chi-square check.
const intBuckets = 64

// Check is the outcome of one statistical test.
type Check struct {
	Name      string  `json:"name"`
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
	Passed    bool    `json:"passed"`
	Detail    string  `json:"detail,omitempty"`
}

// Report collects the checks run against one algorithm.
type Report struct {
	Algorithm prng.Algorithm `json:"-"`
	Name      string         `json:"algorithm"`
	Key       uint64         `json:"key"`
	Samples   int            `json:"samples"`
	Checks    []Check        `json:"checks"`
}

// Passed reports whether every check passed.
func (r Report) Passed() bool {
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

// Checker runs the statistical checks.
type Checker struct {
	alpha  float64
	logger zerolog.Logger
}

type Option func(*Checker)

func WithAlpha(alpha float64) Option {
	return func(c *Checker) {
		c.alpha = alpha
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Checker) {
		c.logger = logger
	}
}

func NewChecker(opts ...Option) *Checker {
	c := &Checker{alpha: DefaultAlpha, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run checks alg on samples values of each distribution drawn from one
// stream keyed with key.
func (c *Checker) Run(ctx context.Context, alg prng.Algorithm, key uint64, samples int) (Report, error) {
	if samples < 2 {
		return Report{}, fmt.Errorf("need at least 2 samples, got %d", samples)
	}
	report := Report{Algorithm: alg, Name: alg.String(), Key: key, Samples: samples}
	s := stream.New(alg, key, stream.WithLogger(c.logger))

	checks := []func(*stream.Stream, int) ([]Check, error){
		c.uniformChecks,
		c.normalChecks,
		c.intChecks,
		c.monobitCheck,
	}
	for _, run := range checks {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		got, err := run(s, samples)
		if err != nil {
			return report, fmt.Errorf("%s: %w", alg, err)
		}
		report.Checks = append(report.Checks, got...)
	}

	for _, ch := range report.Checks {
		ev := c.logger.Debug()
		if !ch.Passed {
			ev = c.logger.Warn()
		}
		ev.Stringer("algorithm", alg).
			Str("check", ch.Name).
			Float64("statistic", ch.Statistic).
			Float64("p_value", ch.PValue).
			Msg("check finished")
	}
	return report, nil
}

// RunAll checks every algorithm in parallel. Each algorithm gets its own
// key derived from seed.
func (c *Checker) RunAll(ctx context.Context, algs []prng.Algorithm, seed int64, samples int) ([]Report, error) {
	keys := randutil.Keys(seed, len(algs))
	reports := make([]Report, len(algs))

	g, ctx := errgroup.WithContext(ctx)
	for i, alg := range algs {
		g.Go(func() error {
			r, err := c.Run(ctx, alg, keys[i], samples)
			if err != nil {
				return err
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func (c *Checker) result(name string, statistic, p float64, detail string) Check {
	return Check{
		Name:      name,
		Statistic: statistic,
		PValue:    p,
		Passed:    p >= c.alpha,
		Detail:    detail,
	}
}

// zTest returns the two-sided p-value of z under N(0, 1).
func zTest(z float64) float64 {
	return 2 * distuv.UnitNormal.Survival(math.Abs(z))
}

func (c *Checker) uniformChecks(s *stream.Stream, n int) ([]Check, error) {
	values, err := s.Uniform(n, 0, 1)
	if err != nil {
		return nil, err
	}
	xs := make([]float64, n)
	var sample statistics.Sample
	for i, v := range values {
		xs[i] = float64(v)
		sample.Add(xs[i])
	}

	bounds := c.result("uniform-bounds", sample.Max(), 1, "")
	if sample.Min() < 0 || sample.Max() >= 1 {
		bounds.PValue, bounds.Passed = 0, false
		bounds.Detail = fmt.Sprintf("values outside [0, 1): min %g max %g", sample.Min(), sample.Max())
	}

	z := (sample.Mean() - 0.5) / math.Sqrt(1.0/12/float64(n))
	mean := c.result("uniform-mean", z, zTest(z), fmt.Sprintf("mean %.5f", sample.Mean()))

	ks := statistics.KolmogorovSmirnov(xs, statistics.UniformCDF(0, 1))
	fit := c.result("uniform-ks", ks.Statistic, ks.PValue, "")

	return []Check{bounds, mean, fit}, nil
}

func (c *Checker) normalChecks(s *stream.Stream, n int) ([]Check, error) {
	values, err := s.Normal(n)
	if err != nil {
		return nil, err
	}
	xs := make([]float64, n)
	for i, v := range values {
		xs[i] = float64(v)
	}
	m, v := statistics.Summarize(xs)

	zMean := m / math.Sqrt(1/float64(n))
	mean := c.result("normal-mean", zMean, zTest(zMean), fmt.Sprintf("mean %.5f", m))

	// The sample variance of N(0,1) has variance 2/(n-1).
	zVar := (v - 1) / math.Sqrt(2/float64(n-1))
	variance := c.result("normal-variance", zVar, zTest(zVar), fmt.Sprintf("variance %.5f", v))

	ks := statistics.KolmogorovSmirnov(xs, statistics.StandardNormalCDF)
	fit := c.result("normal-ks", ks.Statistic, ks.PValue, "")

	return []Check{mean, variance, fit}, nil
}

func (c *Checker) intChecks(s *stream.Stream, n int) ([]Check, error) {
	values, err := s.IntN(n, intBuckets)
	if err != nil {
		return nil, err
	}
	counts := make([]int, intBuckets)
	for _, v := range values {
		if v < 0 || v >= intBuckets {
			return []Check{{
				Name:   "int-chi-square",
				Detail: fmt.Sprintf("value %d outside [0, %d)", v, intBuckets),
			}}, nil
		}
		counts[v]++
	}
	chi := statistics.ChiSquareUniform(counts)
	return []Check{c.result("int-chi-square", chi.Statistic, chi.PValue,
		fmt.Sprintf("%d buckets", intBuckets))}, nil
}

// monobitCheck compares the number of set bits in n raw u32 words with
// its expectation of 16n.
func (c *Checker) monobitCheck(s *stream.Stream, n int) ([]Check, error) {
	lit, err := s.Bits(graph.MakeShape(graph.U32, int64(n)))
	if err != nil {
		return nil, err
	}
	var ones int
	for _, w := range lit.Uint32s() {
		ones += bits.OnesCount32(w)
	}
	total := float64(32 * n)
	z := (2*float64(ones) - total) / math.Sqrt(total)
	return []Check{c.result("monobit", z, zTest(z), fmt.Sprintf("%d of %.0f bits set", ones, total))}, nil
}
