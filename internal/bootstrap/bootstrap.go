// Package bootstrap computes percentile confidence intervals for mean
// female probability by resampling with replacement.
package bootstrap

import (
	"math"
	"math/rand"
	"sort"
	"time"
)

// DefaultIterations is the number of resampling rounds when the caller does
// not choose one.
const DefaultIterations = 1000

// Result is a point estimate with its 95% percentile interval. All pointer
// fields are nil when the input was empty.
type Result struct {
	Mean    *float64 `json:"mean"`
	CILower *float64 `json:"ci_lower"`
	CIUpper *float64 `json:"ci_upper"`
	N       int      `json:"n"`
}

// Estimate returns the empirical mean of probs together with the 2.5th and
// 97.5th percentiles of iterations resampled means. The mean comes from the
// input directly; resampling only characterizes its variability. A nil rng
// falls back to a time-seeded source.
func Estimate(probs []float64, iterations int, rng *rand.Rand) Result {
	if len(probs) == 0 {
		return Result{}
	}
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	m := mean(probs)

	resampled := make([]float64, iterations)
	sample := make([]float64, len(probs))
	for i := 0; i < iterations; i++ {
		for j := range sample {
			sample[j] = probs[rng.Intn(len(probs))]
		}
		resampled[i] = mean(sample)
	}
	sort.Float64s(resampled)

	lower := percentile(resampled, 2.5)
	upper := percentile(resampled, 97.5)

	return Result{Mean: &m, CILower: &lower, CIUpper: &upper, N: len(probs)}
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// percentile interpolates linearly between order statistics. values must be
// sorted and non-empty; p is in [0, 100].
func percentile(values []float64, p float64) float64 {
	rank := p / 100 * float64(len(values)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return values[lo]
	}
	frac := rank - float64(lo)
	return values[lo] + frac*(values[hi]-values[lo])
}
