// Package interpolate builds and evaluates piecewise functions keyed
// by categorical cohorts over one or two continuous parameters — the
// lookup service that turns age/sex/year/draw-indexed reference data
// into per-simulant values (spec §4.C).
package interpolate

import "strings"

// Table is a minimal read-only frame: a fixed row count, named
// categorical (string) columns, and named continuous (float64)
// columns. It is deliberately smaller than population.Table — a
// reference table has no lifecycle, no mask-scoped mutation, and no
// "alive" invariant, so it doesn't share that type.
type Table struct {
	n           int
	categorical map[string][]string
	continuous  map[string][]float64
}

// NewTable returns an empty Table with n rows.
func NewTable(n int) *Table {
	return &Table{n: n, categorical: map[string][]string{}, continuous: map[string][]float64{}}
}

// Rows returns the table's row count.
func (t *Table) Rows() int { return t.n }

// AddCategorical adds a string column. Panics if values isn't exactly
// Rows() long — reference tables are constructed in one shot by a
// loader, unlike population.Table's incremental module contributions.
func (t *Table) AddCategorical(name string, values []string) *Table {
	if len(values) != t.n {
		panic("interpolate: column length mismatch")
	}
	t.categorical[name] = values
	return t
}

// AddContinuous adds a float64 column.
func (t *Table) AddContinuous(name string, values []float64) *Table {
	if len(values) != t.n {
		panic("interpolate: column length mismatch")
	}
	t.continuous[name] = values
	return t
}

// HasCategorical reports whether a categorical column exists.
func (t *Table) HasCategorical(name string) bool {
	_, ok := t.categorical[name]
	return ok
}

// HasContinuous reports whether a continuous column exists.
func (t *Table) HasContinuous(name string) bool {
	_, ok := t.continuous[name]
	return ok
}

// Categorical returns a categorical column.
func (t *Table) Categorical(name string) []string { return t.categorical[name] }

// Continuous returns a continuous column.
func (t *Table) Continuous(name string) []float64 { return t.continuous[name] }

// ContinuousNames returns the names of every continuous column.
func (t *Table) ContinuousNames() []string {
	out := make([]string, 0, len(t.continuous))
	for name := range t.continuous {
		out = append(out, name)
	}
	return out
}

// keyOf returns the row's categorical key tuple for the given columns,
// joined into a single comparable string. A unit separator unlikely to
// appear in reference data keeps distinct tuples from colliding.
func (t *Table) keyOf(columns []string, row int) string {
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = t.categorical[c][row]
	}
	return strings.Join(parts, "\x1f")
}

// partition groups row indices by their categorical key tuple.
func (t *Table) partition(keyColumns []string) map[string][]int {
	groups := map[string][]int{}
	for row := 0; row < t.n; row++ {
		k := t.keyOf(keyColumns, row)
		groups[k] = append(groups[k], row)
	}
	return groups
}
