package population

import "fmt"

// SchemaError is returned when a module attempts to contribute a column
// name that has already been claimed by another module. Column sets
// contributed by distinct modules must be disjoint (spec §3).
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("population: column %q already exists", e.Column)
}

// SizeError is returned when a module contributes a non-empty column
// whose length doesn't match the population size established at
// load_population time.
type SizeError struct {
	Column   string
	Got      int
	Expected int
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("population: column %q has %d rows, expected %d", e.Column, e.Got, e.Expected)
}
