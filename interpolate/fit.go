package interpolate

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/interp"
)

// fit1D is a fitted function of one continuous parameter.
type fit1D interface {
	at(x float64) float64
}

// constant1D is used when a partition has only one distinct x value —
// gonum's piecewise fitters need at least two knots, but a single
// observation is still a valid (degenerate) step function.
type constant1D struct{ v float64 }

func (c constant1D) at(float64) float64 { return c.v }

// gonumFit1D adapts gonum's FittablePredictor (PiecewiseConstant or
// PiecewiseLinear) to fit1D. Both types already extrapolate outside
// their domain by holding the boundary value/slope, which is exactly
// the order-0 "repeat endpoint" contract spec §4.C asks for and a
// reasonable order-1 policy for order-1.
type gonumFit1D struct {
	p interp.FittablePredictor
}

func (g gonumFit1D) at(x float64) float64 { return g.p.Predict(x) }

// buildFit1D sorts (x,y) pairs by x and fits a step function (order 0)
// or piecewise-linear spline (order 1).
func buildFit1D(xs, ys []float64, order int) fit1D {
	idx := make([]int, len(xs))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return xs[idx[i]] < xs[idx[j]] })
	sortedX := make([]float64, len(xs))
	sortedY := make([]float64, len(ys))
	for i, j := range idx {
		sortedX[i] = xs[j]
		sortedY[i] = ys[j]
	}

	uniqueX, uniqueY := dedupeByX(sortedX, sortedY)
	if len(uniqueX) == 1 {
		return constant1D{v: uniqueY[0]}
	}

	var p interp.FittablePredictor
	if order == 0 {
		p = new(interp.PiecewiseConstant)
	} else {
		p = new(interp.PiecewiseLinear)
	}
	if err := p.Fit(uniqueX, uniqueY); err != nil {
		// A fit can only fail here on malformed (non-increasing) input,
		// which dedupeByX already rules out; a panic surfaces a kernel
		// bug rather than silently returning a wrong function.
		panic("interpolate: " + err.Error())
	}
	return gonumFit1D{p: p}
}

// dedupeByX collapses repeated x values by averaging their y values,
// since the fitters require strictly increasing knots.
func dedupeByX(xs, ys []float64) ([]float64, []float64) {
	var outX, outY []float64
	i := 0
	for i < len(xs) {
		j := i
		sum := 0.0
		for j < len(xs) && xs[j] == xs[i] {
			sum += ys[j]
			j++
		}
		outX = append(outX, xs[i])
		outY = append(outY, sum/float64(j-i))
		i = j
	}
	return outX, outY
}

// fit2D is a fitted function of two continuous parameters.
type fit2D interface {
	at(a, b float64) float64
}

// nearest2D implements order-0 interpolation over two parameters:
// nearest-neighbour by Euclidean distance in (p1,p2) space.
type nearest2D struct {
	p1, p2, v []float64
}

func (n nearest2D) at(a, b float64) float64 {
	best := 0
	bestDist := math.Inf(1)
	for i := range n.p1 {
		d := (n.p1[i]-a)*(n.p1[i]-a) + (n.p2[i]-b)*(n.p2[i]-b)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return n.v[best]
}

// bilinear2D implements order-1 interpolation over two parameters: a
// bilinear fit over a grid pivoted with p1 as rows and p2 as columns,
// grounded on original_source/src/vivarium/interpolation.py's
// `base_table.pivot(index=p1, columns=p2, values=value)` +
// RectBivariateSpline(kx=1, ky=1) approach. Out-of-range queries are
// clamped to the nearest edge row/column, matching endpoint-repeat
// extrapolation.
type bilinear2D struct {
	rows, cols []float64   // sorted, unique
	grid       [][]float64 // grid[row][col]
}

func buildBilinear2D(p1, p2, v []float64) fit2D {
	rows := uniqueSorted(p1)
	cols := uniqueSorted(p2)
	rowIdx := indexOf(rows)
	colIdx := indexOf(cols)

	grid := make([][]float64, len(rows))
	counts := make([][]int, len(rows))
	for i := range grid {
		grid[i] = make([]float64, len(cols))
		counts[i] = make([]int, len(cols))
	}
	for i := range p1 {
		r := rowIdx[p1[i]]
		c := colIdx[p2[i]]
		grid[r][c] += v[i]
		counts[r][c]++
	}
	for r := range grid {
		for c := range grid[r] {
			if counts[r][c] > 0 {
				grid[r][c] /= float64(counts[r][c])
			}
		}
	}
	if len(rows) == 1 || len(cols) == 1 {
		// Degenerate grid: fall back to nearest-neighbour since a
		// bilinear fit needs at least two distinct rows and columns.
		return nearest2D{p1: p1, p2: p2, v: v}
	}
	return bilinear2D{rows: rows, cols: cols, grid: grid}
}

func (b bilinear2D) at(a, c float64) float64 {
	ri, rf := bracket(b.rows, a)
	ci, cf := bracket(b.cols, c)
	z00 := b.grid[ri][ci]
	z01 := b.grid[ri][ci+1]
	z10 := b.grid[ri+1][ci]
	z11 := b.grid[ri+1][ci+1]
	z0 := z00 + (z01-z00)*cf
	z1 := z10 + (z11-z10)*cf
	return z0 + (z1-z0)*rf
}

// bracket returns the lower index of the bracketing interval in a
// sorted slice and the fractional position within it, clamping to the
// first/last interval when x falls outside the slice's range.
func bracket(xs []float64, x float64) (idx int, frac float64) {
	n := len(xs)
	i := sort.SearchFloat64s(xs, x)
	switch {
	case i <= 0:
		idx = 0
	case i >= n-1:
		idx = n - 2
	default:
		idx = i - 1
		if xs[i] == x {
			idx = i
			if idx > n-2 {
				idx = n - 2
			}
		}
	}
	span := xs[idx+1] - xs[idx]
	if span == 0 {
		return idx, 0
	}
	f := (x - xs[idx]) / span
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	return idx, f
}

func uniqueSorted(xs []float64) []float64 {
	cp := append([]float64(nil), xs...)
	sort.Float64s(cp)
	out := cp[:0]
	for i, v := range cp {
		if i == 0 || v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

func indexOf(sorted []float64) map[float64]int {
	m := make(map[float64]int, len(sorted))
	for i, v := range sorted {
		m[v] = i
	}
	return m
}
