package refdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
)

// LifeTable is the read-only age → remaining-life-expectancy lookup
// the Base Demographics Module accrues YLLs from (spec §3, §4.H,
// §6: "Life table is keyed on age with a remaining_life_expectancy
// column").
type LifeTable struct {
	ages []int
	rle  []float64
}

// LoadLifeTable reads a two-column CSV ("age", "remaining_life_expectancy")
// at path into a LifeTable.
func LoadLifeTable(path string) (*LifeTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("refdata: opening life table %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("refdata: reading life table header: %w", err)
	}
	ageCol, rleCol := -1, -1
	for i, name := range header {
		switch name {
		case "age":
			ageCol = i
		case "remaining_life_expectancy":
			rleCol = i
		}
	}
	if ageCol < 0 || rleCol < 0 {
		return nil, fmt.Errorf("refdata: life table %s missing age/remaining_life_expectancy columns", path)
	}

	lt := &LifeTable{}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("refdata: reading life table row: %w", err)
		}
		age, err := strconv.Atoi(rec[ageCol])
		if err != nil {
			return nil, fmt.Errorf("refdata: life table age %q: %w", rec[ageCol], err)
		}
		rle, err := strconv.ParseFloat(rec[rleCol], 64)
		if err != nil {
			return nil, fmt.Errorf("refdata: life table remaining_life_expectancy %q: %w", rec[rleCol], err)
		}
		lt.ages = append(lt.ages, age)
		lt.rle = append(lt.rle, rle)
	}

	idx := make([]int, len(lt.ages))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return lt.ages[idx[i]] < lt.ages[idx[j]] })
	sortedAges := make([]int, len(idx))
	sortedRLE := make([]float64, len(idx))
	for i, j := range idx {
		sortedAges[i] = lt.ages[j]
		sortedRLE[i] = lt.rle[j]
	}
	lt.ages, lt.rle = sortedAges, sortedRLE
	return lt, nil
}

// RemainingLifeExpectancy returns the life table's value for age,
// or the nearest available age's value if age falls outside the
// table's range (endpoint-repeat extrapolation, consistent with the
// Interpolation Service's order-0 policy).
func (lt *LifeTable) RemainingLifeExpectancy(age int) float64 {
	if len(lt.ages) == 0 {
		return 0
	}
	i := sort.SearchInts(lt.ages, age)
	switch {
	case i == 0:
		return lt.rle[0]
	case i >= len(lt.ages):
		return lt.rle[len(lt.ages)-1]
	case lt.ages[i] == age:
		return lt.rle[i]
	default:
		// age falls between ages[i-1] and ages[i]; use the floor entry,
		// matching the life table's per-integer-age convention.
		return lt.rle[i-1]
	}
}
