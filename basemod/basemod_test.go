package basemod

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adpick/vivarium/module"
	"github.com/adpick/vivarium/population"
	"github.com/adpick/vivarium/ratemath"
	"github.com/adpick/vivarium/sim"
)

func writeLifeTable(t *testing.T, dir string) {
	t.Helper()
	path := filepath.Join(dir, "life_table.csv")
	contents := "age,remaining_life_expectancy\n0,80\n40,45\n80,10\n"
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
}

// writeMortalityTable writes an all-cause mortality rate table with a
// single row per sex, so age and year are both dropped as parameters
// (only one unique value each) and every simulant of that sex draws
// the same constant annual rate regardless of age.
func writeMortalityTable(t *testing.T, dir string, maleRate, femaleRate float64) {
	t.Helper()
	path := filepath.Join(dir, "all_cause_mortality_rate.csv")
	contents := fmt.Sprintf("sex,age,year,mortality_rate\nmale,80,2020,%v\nfemale,80,2020,%v\n", maleRate, femaleRate)
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
}

func buildDriver(t *testing.T, n int, annualMortalityRate float64) (*sim.Driver, *Base) {
	t.Helper()
	dir := t.TempDir()
	writeLifeTable(t, dir)
	writeMortalityTable(t, dir, annualMortalityRate, annualMortalityRate)

	b := New()
	if err := b.LoadData(nil, dir); err != nil {
		t.Fatal(err)
	}

	reg := module.NewRegistry()
	if err := reg.Register(b); err != nil {
		t.Fatal(err)
	}

	pop := population.New()
	if err := b.ContributeColumns(pop, n); err != nil {
		t.Fatal(err)
	}
	// A population loader is responsible for overwriting the zero-value
	// sex column before a run starts (see ContributeColumns); tests
	// stand in for that loader here.
	sex := pop.String("sex")
	for i := range sex {
		sex[i] = "male"
	}

	d, err := sim.NewDriver(reg, pop, ratemath.NewRNG(7))
	if err != nil {
		t.Fatal(err)
	}
	return d, b
}

func TestAgingAdvancesFractionalAndIntegerAge(t *testing.T) {
	d, _ := buildDriver(t, 4, 0)
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	d.Run(start, start, 365*24*time.Hour)

	frac := d.Population().Float("fractional_age")
	age := d.Population().Int("age")
	for i := range frac {
		if frac[i] < 0.99 || frac[i] > 1.01 {
			t.Errorf("row %d fractional_age = %v, want ~1", i, frac[i])
		}
		if age[i] != 1 {
			t.Errorf("row %d age = %v, want 1", i, age[i])
		}
	}
}

func TestMortalityWithZeroRateKillsNoOne(t *testing.T) {
	d, _ := buildDriver(t, 50, 0)
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	d.Run(start, start, 24*time.Hour)

	alive := d.Population().Bool("alive")
	for i, a := range alive {
		if !a {
			t.Errorf("row %d died at a zero all-cause mortality rate", i)
		}
	}
}

// TestAllCauseMortalityProducesExpectedDeathFraction exercises the
// Base module's interpolated all-cause mortality rate end to end: 1000
// simulants at a constant annual rate of 0.1 should lose roughly
// 1-exp(-0.1) ~= 9.5% to all-cause mortality over one year.
func TestAllCauseMortalityProducesExpectedDeathFraction(t *testing.T) {
	d, _ := buildDriver(t, 1000, 0.1)

	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	d.Run(start, start, 365*24*time.Hour)

	deaths := 0
	for _, alive := range d.Population().Bool("alive") {
		if !alive {
			deaths++
		}
	}
	if deaths < 60 || deaths > 140 {
		t.Errorf("got %d deaths out of 1000, want roughly 95 (binomial, p~0.095)", deaths)
	}
}

func TestOnceDeadAliveStaysFalseAcrossSteps(t *testing.T) {
	d, _ := buildDriver(t, 1, 0)
	alive := d.Population().Bool("alive")
	alive[0] = false

	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	d.Run(start, end, 365*24*time.Hour)

	if alive[0] {
		t.Error("row resurrected across steps")
	}
	if d.Population().Float("fractional_age")[0] != 0 {
		t.Error("a dead row should not keep aging")
	}
}
