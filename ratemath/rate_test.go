package ratemath

import (
	"math"
	"testing"
	"time"

	"github.com/GaryBoone/GoStats/stats"
)

func TestFromYearlyLinearInDt(t *testing.T) {
	r := 0.1
	dt1 := 365 * 24 * time.Hour
	dt2 := 30 * 24 * time.Hour
	ratio := FromYearly(r, dt1) / FromYearly(r, dt2)
	want := dt1.Seconds() / dt2.Seconds()
	if math.Abs(ratio-want) > 1e-9 {
		t.Fatalf("FromYearly ratio = %v, want %v", ratio, want)
	}
}

func TestFromYearlyLinearInRate(t *testing.T) {
	dt := 365 * 24 * time.Hour
	if math.Abs(FromYearly(0.2, dt)-2*FromYearly(0.1, dt)) > 1e-12 {
		t.Fatal("FromYearly is not linear in rate")
	}
}

func TestToProbabilityLaws(t *testing.T) {
	if ToProbability(0) != 0 {
		t.Fatalf("to_probability(0) = %v, want 0", ToProbability(0))
	}
	prev := 0.0
	for _, r := range []float64{0.01, 0.1, 1, 10, 100} {
		p := ToProbability(r)
		if p <= prev {
			t.Fatalf("to_probability not monotone: rate %v gave %v <= previous %v", r, p, prev)
		}
		if p > 1 {
			t.Fatalf("to_probability(%v) = %v, must not exceed 1", r, p)
		}
		prev = p
	}
	if p := ToProbability(50); p < 0.999999999 {
		t.Fatalf("to_probability(50) = %v, expected close to 1 in the limit", p)
	}
}

func TestToProbabilityPanicsOnNegativeRate(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on negative rate")
		}
	}()
	ToProbability(-1)
}

func TestDrawMaskDeterministicGivenSameSeed(t *testing.T) {
	rates := make([]float64, 1000)
	for i := range rates {
		rates[i] = 0.05
	}
	m1 := DrawMask(rates, NewRNG(42))
	m2 := DrawMask(rates, NewRNG(42))
	for i := range m1 {
		if m1[i] != m2[i] {
			t.Fatalf("DrawMask not deterministic at row %d", i)
		}
	}
}

func TestDrawMaskExpectedCountWithin3Sigma(t *testing.T) {
	// Scenario from spec §8.2: 1000 simulants, annual mortality rate
	// 0.1, Δt = 365 days; expected deaths ≈ 1000*(1-e^-0.1) ≈ 95.
	const n = 1000
	p := ToProbability(FromYearly(0.1, 365*24*time.Hour))
	expected := float64(n) * p
	sigma := math.Sqrt(float64(n) * p * (1 - p))

	rates := make([]float64, n)
	for i := range rates {
		rates[i] = FromYearly(0.1, 365*24*time.Hour)
	}

	var counts []float64
	for seed := uint64(1); seed <= 20; seed++ {
		mask := DrawMask(rates, NewRNG(seed))
		count := 0
		for _, v := range mask {
			if v {
				count++
			}
		}
		counts = append(counts, float64(count))
	}

	mean := stats.StatsMean(counts)
	if math.Abs(mean-expected) > 3*sigma {
		t.Fatalf("observed mean deaths %v outside 3 sigma (%v) of expected %v", mean, 3*sigma, expected)
	}
}
