package refdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/adpick/vivarium/interpolate"
)

// normalizeSex normalizes the reference data layout's {1→male, 2→female}
// encoding to the categorical strings the kernel uses internally
// (spec §6).
func normalizeSex(raw string) (string, error) {
	switch raw {
	case "1", "male", "Male":
		return "male", nil
	case "2", "female", "Female":
		return "female", nil
	default:
		return "", fmt.Errorf("refdata: unrecognized sex encoding %q", raw)
	}
}

// LoadTable reads a CSV reference file at path into an interpolate.Table.
// The header row names columns; "sex" is treated as categorical and
// normalized, "age"/"year"/"draw" and any other numeric column become
// continuous columns. categoricalColumns names any further columns
// (beyond "sex") that should be read as strings rather than floats.
func LoadTable(path string, categoricalColumns ...string) (*interpolate.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("refdata: opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("refdata: reading header of %s: %w", path, err)
	}

	categorical := map[string]bool{"sex": true}
	for _, c := range categoricalColumns {
		categorical[c] = true
	}

	floatCols := make(map[string][]float64, len(header))
	stringCols := make(map[string][]string, len(header))
	var order []string
	for _, name := range header {
		order = append(order, name)
		if categorical[name] {
			stringCols[name] = nil
		} else {
			floatCols[name] = nil
		}
	}

	rowCount := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("refdata: reading %s: %w", path, err)
		}
		rowCount++
		for i, name := range header {
			val := rec[i]
			if categorical[name] {
				if name == "sex" {
					norm, err := normalizeSex(val)
					if err != nil {
						return nil, err
					}
					stringCols[name] = append(stringCols[name], norm)
				} else {
					stringCols[name] = append(stringCols[name], val)
				}
				continue
			}
			v, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return nil, fmt.Errorf("refdata: %s: column %q row %d: %w", path, name, rowCount, err)
			}
			floatCols[name] = append(floatCols[name], v)
		}
	}

	t := interpolate.NewTable(rowCount)
	for _, name := range order {
		if categorical[name] {
			t.AddCategorical(name, stringCols[name])
		} else {
			t.AddContinuous(name, floatCols[name])
		}
	}
	return t, nil
}
