package interpolate

import (
	"gonum.org/v1/gonum/floats"
)

// Interpolation is a callable built once from a reference Table and
// evaluated many times against query tables. Construction partitions
// the reference data by its categorical key columns and fits one
// function per (partition, value column); evaluation is then a pure,
// allocation-bounded lookup (spec §5's resource policy).
type Interpolation struct {
	keyColumns    []string
	paramColumns  []string // after dropping any with insufficient support
	valueColumns  []string
	order         int
	twoParam      bool
	fits1D        map[string]map[string]fit1D // key -> value column -> fit
	fits2D        map[string]map[string]fit2D
	constantOnly  map[string]map[string]float64 // used when every parameter was dropped
	noParamsAtAll bool
}

// Build constructs an Interpolation from ref, partitioned by
// keyColumns, varying over paramColumns (1 or 2 columns), with the
// given interpolation order (0 or 1).
func Build(ref *Table, keyColumns, paramColumns []string, order int) (*Interpolation, error) {
	if order != 0 && order != 1 {
		return nil, &InvalidOrderError{Order: order}
	}
	if len(paramColumns) != 1 && len(paramColumns) != 2 {
		return nil, &InvalidParameterCountError{Count: len(paramColumns)}
	}
	for _, k := range keyColumns {
		if !ref.HasCategorical(k) {
			return nil, &MissingParameterError{Column: k}
		}
	}
	for _, p := range paramColumns {
		if !ref.HasContinuous(p) {
			return nil, &MissingParameterError{Column: p}
		}
		if floats.HasNaN(ref.Continuous(p)) {
			return nil, &MissingParameterError{Column: p + " (contains NaN)"}
		}
	}

	kept := keepSupported(ref, paramColumns, order)

	valueColumns := valueColumnsOf(ref, keyColumns, paramColumns)
	if len(valueColumns) == 0 {
		return nil, &NoValueColumnsError{}
	}

	in := &Interpolation{
		keyColumns:   keyColumns,
		paramColumns: kept,
		valueColumns: valueColumns,
		order:        order,
		twoParam:     len(kept) == 2,
	}

	groups := ref.partition(keyColumns)

	switch len(kept) {
	case 0:
		in.noParamsAtAll = true
		in.constantOnly = map[string]map[string]float64{}
		for key, rows := range groups {
			in.constantOnly[key] = map[string]float64{}
			for _, vc := range valueColumns {
				in.constantOnly[key][vc] = ref.Continuous(vc)[rows[0]]
			}
		}
	case 1:
		in.fits1D = map[string]map[string]fit1D{}
		p := ref.Continuous(kept[0])
		for key, rows := range groups {
			in.fits1D[key] = map[string]fit1D{}
			xs := gather(p, rows)
			for _, vc := range valueColumns {
				ys := gather(ref.Continuous(vc), rows)
				in.fits1D[key][vc] = buildFit1D(xs, ys, order)
			}
		}
	case 2:
		in.fits2D = map[string]map[string]fit2D{}
		p1 := ref.Continuous(kept[0])
		p2 := ref.Continuous(kept[1])
		for key, rows := range groups {
			in.fits2D[key] = map[string]fit2D{}
			x1 := gather(p1, rows)
			x2 := gather(p2, rows)
			for _, vc := range valueColumns {
				ys := gather(ref.Continuous(vc), rows)
				if order == 0 {
					in.fits2D[key][vc] = nearest2D{p1: x1, p2: x2, v: ys}
				} else {
					in.fits2D[key][vc] = buildBilinear2D(x1, x2, ys)
				}
			}
		}
	}
	return in, nil
}

// keepSupported drops any parameter whose reference-table column, taken
// over all partitions together, has too few unique values to support
// the requested order (spec §4.C: "if unique(p) ≤ order, drop the
// parameter").
func keepSupported(ref *Table, paramColumns []string, order int) []string {
	var kept []string
	for _, p := range paramColumns {
		if len(uniqueSorted(ref.Continuous(p))) > order {
			kept = append(kept, p)
		}
	}
	return kept
}

func valueColumnsOf(ref *Table, keyColumns, paramColumns []string) []string {
	excluded := map[string]bool{}
	for _, k := range keyColumns {
		excluded[k] = true
	}
	for _, p := range paramColumns {
		excluded[p] = true
	}
	var out []string
	for _, name := range ref.ContinuousNames() {
		if !excluded[name] {
			out = append(out, name)
		}
	}
	return out
}

func gather(xs []float64, rows []int) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = xs[r]
	}
	return out
}

// ValueColumns returns the names of the columns this Interpolation
// produces when evaluated.
func (in *Interpolation) ValueColumns() []string { return in.valueColumns }

// Evaluate evaluates the fitted functions against query, producing one
// result column per value column, aligned to query's row index. Fails
// with MissingParameterError if query lacks a key or parameter column,
// and MissingKeyError if a key tuple in query was never seen at
// construction time.
func (in *Interpolation) Evaluate(query *Table) (*Table, error) {
	for _, k := range in.keyColumns {
		if !query.HasCategorical(k) {
			return nil, &MissingParameterError{Column: k}
		}
	}
	for _, p := range in.paramColumns {
		if !query.HasContinuous(p) {
			return nil, &MissingParameterError{Column: p}
		}
	}

	result := NewTable(query.Rows())
	cols := make(map[string][]float64, len(in.valueColumns))
	for _, vc := range in.valueColumns {
		cols[vc] = make([]float64, query.Rows())
	}

	groups := query.partition(in.keyColumns)
	for key, rows := range groups {
		switch {
		case in.noParamsAtAll:
			vals, ok := in.constantOnly[key]
			if !ok {
				return nil, &MissingKeyError{Key: key}
			}
			for _, vc := range in.valueColumns {
				v := vals[vc]
				for _, r := range rows {
					cols[vc][r] = v
				}
			}
		case len(in.paramColumns) == 1:
			funcs, ok := in.fits1D[key]
			if !ok {
				return nil, &MissingKeyError{Key: key}
			}
			xs := query.Continuous(in.paramColumns[0])
			for _, vc := range in.valueColumns {
				f := funcs[vc]
				for _, r := range rows {
					cols[vc][r] = f.at(xs[r])
				}
			}
		default:
			funcs, ok := in.fits2D[key]
			if !ok {
				return nil, &MissingKeyError{Key: key}
			}
			x1 := query.Continuous(in.paramColumns[0])
			x2 := query.Continuous(in.paramColumns[1])
			for _, vc := range in.valueColumns {
				f := funcs[vc]
				for _, r := range rows {
					cols[vc][r] = f.at(x1[r], x2[r])
				}
			}
		}
	}

	for _, vc := range in.valueColumns {
		result.AddContinuous(vc, cols[vc])
	}
	return result, nil
}
