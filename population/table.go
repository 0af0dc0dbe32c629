package population

// Table is the columnar store of per-simulant attributes. Row identity
// is the row index and is stable for the lifetime of a run. Columns
// contributed by distinct modules must be disjoint; the row count is
// fixed once the first column is added and never changes afterward.
//
// Table is not safe for concurrent use. The kernel is single-threaded
// by design (spec §5) and delegates all mutation to listeners running
// one at a time.
type Table struct {
	size int

	floats  map[string][]float64
	bools   map[string][]bool
	ints    map[string][]int
	strings map[string][]string

	// initial holds a snapshot of every contributed column as it was
	// the moment it was added, before any listener ran. Reset restores
	// the active columns from this snapshot rather than re-invoking
	// modules' load_population_columns, matching the Python original's
	// separation between a module's (immutable) population_columns and
	// the simulation's (mutable) population.
	initialFloats  map[string][]float64
	initialBools   map[string][]bool
	initialInts    map[string][]int
	initialStrings map[string][]string

	order []string // column names in contribution order, for stable iteration
}

// New returns an empty Table. Its row count is established by the
// first column added to it.
func New() *Table {
	return &Table{
		floats:         make(map[string][]float64),
		bools:          make(map[string][]bool),
		ints:           make(map[string][]int),
		strings:        make(map[string][]string),
		initialFloats:  make(map[string][]float64),
		initialBools:   make(map[string][]bool),
		initialInts:    make(map[string][]int),
		initialStrings: make(map[string][]string),
		size:           -1,
	}
}

// Size returns the population's row count, or -1 if no column has been
// added yet.
func (t *Table) Size() int { return t.size }

func (t *Table) checkNew(name string, n int) error {
	if t.hasColumn(name) {
		return &SchemaError{Column: name}
	}
	if t.size < 0 {
		return nil
	}
	if n != t.size {
		return &SizeError{Column: name, Got: n, Expected: t.size}
	}
	return nil
}

func (t *Table) hasColumn(name string) bool {
	if _, ok := t.floats[name]; ok {
		return true
	}
	if _, ok := t.bools[name]; ok {
		return true
	}
	if _, ok := t.ints[name]; ok {
		return true
	}
	if _, ok := t.strings[name]; ok {
		return true
	}
	return false
}

func (t *Table) adopt(n int) {
	if t.size < 0 {
		t.size = n
	}
}

// AddFloatColumn contributes a new float64 column. Fails with
// SchemaError if the name is already claimed, SizeError if the
// population size is already established and values has a different
// length.
func (t *Table) AddFloatColumn(name string, values []float64) error {
	if err := t.checkNew(name, len(values)); err != nil {
		return err
	}
	t.adopt(len(values))
	cp := append([]float64(nil), values...)
	t.floats[name] = values
	t.initialFloats[name] = cp
	t.order = append(t.order, name)
	return nil
}

// AddBoolColumn contributes a new bool column.
func (t *Table) AddBoolColumn(name string, values []bool) error {
	if err := t.checkNew(name, len(values)); err != nil {
		return err
	}
	t.adopt(len(values))
	cp := append([]bool(nil), values...)
	t.bools[name] = values
	t.initialBools[name] = cp
	t.order = append(t.order, name)
	return nil
}

// AddIntColumn contributes a new int column.
func (t *Table) AddIntColumn(name string, values []int) error {
	if err := t.checkNew(name, len(values)); err != nil {
		return err
	}
	t.adopt(len(values))
	cp := append([]int(nil), values...)
	t.ints[name] = values
	t.initialInts[name] = cp
	t.order = append(t.order, name)
	return nil
}

// AddStringColumn contributes a new categorical (string) column.
func (t *Table) AddStringColumn(name string, values []string) error {
	if err := t.checkNew(name, len(values)); err != nil {
		return err
	}
	t.adopt(len(values))
	cp := append([]string(nil), values...)
	t.strings[name] = values
	t.initialStrings[name] = cp
	t.order = append(t.order, name)
	return nil
}

// Float returns the live backing slice for a float64 column. The
// returned slice aliases the table's storage: mask-scoped writes are
// done by mutating elements of this slice directly under a mask, the
// vectorized hot path spec §9 calls for.
func (t *Table) Float(name string) []float64 { return t.floats[name] }

// Bool returns the live backing slice for a bool column.
func (t *Table) Bool(name string) []bool { return t.bools[name] }

// Int returns the live backing slice for an int column.
func (t *Table) Int(name string) []int { return t.ints[name] }

// String returns the live backing slice for a string (categorical) column.
func (t *Table) String(name string) []string { return t.strings[name] }

// HasColumn reports whether name has been contributed to the table.
func (t *Table) HasColumn(name string) bool { return t.hasColumn(name) }

// ColumnNames returns every contributed column name in contribution order.
func (t *Table) ColumnNames() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// AllTrue returns a mask covering every row.
func (t *Table) AllTrue() Mask { return AllTrue(t.size) }

// AliveMask returns a copy of the "alive" column as a mask. Panics if
// no module has contributed an "alive" column yet — that column is
// the Base Demographics Module's responsibility (spec §3/§4.H) and
// every other accessor of liveness depends on it existing.
func (t *Table) AliveMask() Mask {
	alive := t.bools["alive"]
	if alive == nil {
		panic("population: no \"alive\" column; the Base Demographics Module must load first")
	}
	return Mask(append([]bool(nil), alive...))
}

// Reset restores every contributed column to the image it had at the
// moment it was added, discarding all in-run mutation. Reset is
// idempotent: calling it twice in a row is the same as calling it once.
func (t *Table) Reset() {
	for name, vals := range t.initialFloats {
		copy(t.floats[name], vals)
	}
	for name, vals := range t.initialBools {
		copy(t.bools[name], vals)
	}
	for name, vals := range t.initialInts {
		copy(t.ints[name], vals)
	}
	for name, vals := range t.initialStrings {
		copy(t.strings[name], vals)
	}
}
