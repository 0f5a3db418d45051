// Package statistics summarises generated samples and runs the goodness of
// fit tests used to sanity check the generators.
package statistics

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Sample accumulates running moments of a stream of values.
type Sample struct {
	N     int
	Sum   float64
	SumSq float64 // Sum of squares for variance calculation

	min, max float64
}

// Add incorporates a value into the sample
func (s *Sample) Add(v float64) {
	if s.N == 0 || v < s.min {
		s.min = v
	}
	if s.N == 0 || v > s.max {
		s.max = v
	}
	s.N++
	s.Sum += v
	s.SumSq += v * v
}

// AddAll incorporates every value of vs.
func (s *Sample) AddAll(vs []float64) {
	for _, v := range vs {
		s.Add(v)
	}
}

// Mean returns the arithmetic mean of the sample
func (s *Sample) Mean() float64 {
	if s.N == 0 {
		return 0
	}
	return s.Sum / float64(s.N)
}

// Variance returns the unbiased sample variance
func (s *Sample) Variance() float64 {
	if s.N < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumSq - float64(s.N)*mean*mean) / float64(s.N-1)
}

// StdDev returns the sample standard deviation
func (s *Sample) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Sample) StdError() float64 {
	if s.N == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.N))
}

func (s *Sample) Min() float64 { return s.min }
func (s *Sample) Max() float64 { return s.max }

// Summarize returns the mean and unbiased variance of values.
func Summarize(values []float64) (mean, variance float64) {
	if len(values) == 0 {
		return 0, 0
	}
	return stat.MeanVariance(values, nil)
}

// TestResult is the outcome of a goodness of fit test.
type TestResult struct {
	Statistic float64
	PValue    float64
}

// Reject reports whether the null hypothesis is rejected at level alpha.
func (r TestResult) Reject(alpha float64) bool {
	return r.PValue < alpha
}

// KolmogorovSmirnov compares the empirical distribution of values with cdf.
// The p-value uses the asymptotic Kolmogorov distribution with Stephens'
// small-sample correction.
func KolmogorovSmirnov(values []float64, cdf func(float64) float64) TestResult {
	n := len(values)
	if n == 0 {
		return TestResult{PValue: 1}
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	var d float64
	for i, v := range sorted {
		f := cdf(v)
		d = math.Max(d, math.Max(float64(i+1)/float64(n)-f, f-float64(i)/float64(n)))
	}

	sqrtN := math.Sqrt(float64(n))
	lambda := (sqrtN + 0.12 + 0.11/sqrtN) * d
	return TestResult{Statistic: d, PValue: kolmogorovQ(lambda)}
}

// kolmogorovQ is the survival function of the Kolmogorov distribution.
func kolmogorovQ(lambda float64) float64 {
	if lambda < 0.2 {
		return 1
	}
	var sum float64
	sign := 1.0
	for k := 1; k <= 100; k++ {
		term := sign * math.Exp(-2*float64(k*k)*lambda*lambda)
		sum += term
		if math.Abs(term) < 1e-12 {
			break
		}
		sign = -sign
	}
	return math.Min(math.Max(2*sum, 0), 1)
}

// ChiSquareUniform tests whether counts are consistent with every bucket
// being equally likely.
func ChiSquareUniform(counts []int) TestResult {
	if len(counts) < 2 {
		return TestResult{PValue: 1}
	}
	var total int
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return TestResult{PValue: 1}
	}
	expected := float64(total) / float64(len(counts))
	var chi2 float64
	for _, c := range counts {
		diff := float64(c) - expected
		chi2 += diff * diff / expected
	}
	dist := distuv.ChiSquared{K: float64(len(counts) - 1)}
	return TestResult{Statistic: chi2, PValue: dist.Survival(chi2)}
}

// StandardNormalCDF is the CDF of N(0, 1).
func StandardNormalCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// UniformCDF returns the CDF of the uniform distribution on [min, max).
func UniformCDF(min, max float64) func(float64) float64 {
	return distuv.Uniform{Min: min, Max: max}.CDF
}
