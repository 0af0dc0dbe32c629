// Package ratemath implements the kernel's continuous-time-to-probability
// conversions: the only numerically sensitive, and the only
// stochastic, piece of the simulation kernel. Every function here is
// pure; the only hidden state in the package is the caller-supplied
// RNG source passed into DrawMask.
package ratemath

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat/distuv"
)

const secondsPerYear = 365 * 86400

// FromYearly converts an annual rate to the equivalent rate over a
// step of length dt. It is linear in rate and in dt: FromYearly(r, dt)
// / FromYearly(r, dt2) == dt / dt2 for any r, dt, dt2.
func FromYearly(rate float64, dt time.Duration) float64 {
	return rate * (dt.Seconds() / secondsPerYear)
}

// ToYearly is FromYearly's inverse: it converts a step-rate back to an
// annual rate, given the step length that produced it.
func ToYearly(stepRate float64, dt time.Duration) float64 {
	return stepRate / (dt.Seconds() / secondsPerYear)
}

// ToProbability applies the competing-risks approximation that turns
// an instantaneous step-rate into the probability of at least one
// event occurring during the step. It is monotone non-decreasing in
// rate, ToProbability(0) == 0, and the result never exceeds 1; for
// rates above about 37 it rounds to exactly 1 in float64.
func ToProbability(rate float64) float64 {
	if rate < 0 {
		panic("ratemath: negative rate")
	}
	p := 1 - math.Exp(-rate)
	if math.IsNaN(p) || p < 0 || p > 1 {
		panic("ratemath: to_probability produced an out-of-range result")
	}
	return p
}

// RNG is the single seeded uniform-variate source the kernel's
// stochastic transitions draw from. Two runs sharing an RNG built from
// the same seed, with draws taken in the same order, produce
// bit-identical results (spec §5).
type RNG struct {
	u distuv.Uniform
}

// NewRNG builds an RNG from a fixed integer seed.
func NewRNG(seed uint64) *RNG {
	return &RNG{u: distuv.Uniform{Min: 0, Max: 1, Src: newSource(seed)}}
}

// Draw returns the next uniform(0,1) variate.
func (r *RNG) Draw() float64 { return r.u.Rand() }

// DrawMask draws one uniform variate per row, in row order, and marks
// a row true when its draw is less than to_probability(ratePerStep[i]).
// Rows are consumed strictly in column order so that two runs with an
// identical seed and identical per-step rates produce identical masks.
func DrawMask(ratePerStep []float64, rng *RNG) []bool {
	out := make([]bool, len(ratePerStep))
	for i, rate := range ratePerStep {
		p := ToProbability(rate)
		out[i] = rng.Draw() < p
	}
	return out
}
