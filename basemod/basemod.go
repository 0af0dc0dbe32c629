// Package basemod implements the Base Demographics Module: the
// privileged collaborator the Module Registry always orders first,
// responsible for aging, all-cause mortality, and years-of-life-lost
// accrual (spec §4.H). Grounded on original_source/engine.py's
// BaseSimulationModule.
package basemod

import (
	"context"
	"math"

	"github.com/adpick/vivarium/config"
	"github.com/adpick/vivarium/event"
	"github.com/adpick/vivarium/interpolate"
	"github.com/adpick/vivarium/module"
	"github.com/adpick/vivarium/population"
	"github.com/adpick/vivarium/ratemath"
	"github.com/adpick/vivarium/refdata"
)

const daysPerYear = 365.0

// mortalityRateColumn is the all-cause mortality reference table's
// value column: the annual rate the Interpolation Service fits over
// age/year within each sex partition (spec §6's reference data
// layout).
const mortalityRateColumn = "mortality_rate"

// MortalityRateComputer is the subset of the Simulation Driver the
// Base module needs during its mortality listener: a step's folded
// mortality rate frame. Defined here (rather than added to
// event.Handle directly) so basemod depends only on the capability it
// actually uses; sim.Driver satisfies it.
type MortalityRateComputer interface {
	MortalityRateStep() []float64
}

// Base is the Base Demographics Module. It owns the run's life table
// and exposes the kernel's required "alive"/"age"/"fractional_age"/
// "sex"/"year" schema.
type Base struct {
	module.Base
	lifeTable *refdata.LifeTable
	mortality *interpolate.Interpolation
}

// New returns an unconfigured Base module; LoadData populates its life
// table before a run starts.
func New() *Base { return &Base{} }

// ID implements module.Module.
func (*Base) ID() module.ID { return module.BaseID }

// ContributeColumns adds the kernel's required demographic schema,
// sized for size simulants. Initial ages and sexes default to zero
// values; a population loader (outside the Module contract, per spec
// §3's distinction between the Population Table and any one module)
// is expected to overwrite them before a run starts.
func (*Base) ContributeColumns(pop *population.Table, size int) error {
	alive := make([]bool, size)
	for i := range alive {
		alive[i] = true
	}
	if err := pop.AddBoolColumn("alive", alive); err != nil {
		return err
	}
	if err := pop.AddFloatColumn("fractional_age", make([]float64, size)); err != nil {
		return err
	}
	if err := pop.AddIntColumn("age", make([]int, size)); err != nil {
		return err
	}
	if err := pop.AddStringColumn("sex", make([]string, size)); err != nil {
		return err
	}
	return pop.AddIntColumn("year", make([]int, size))
}

// LoadData loads the run's life table from pathPrefix/life_table.csv
// and its all-cause mortality rate table from
// pathPrefix/all_cause_mortality_rate.csv, keyed by sex and
// interpolated over age and year (spec §2 component H, §4.H, §6).
func (b *Base) LoadData(_ *config.Config, pathPrefix string) error {
	ltPath, err := refdata.Resolve(context.Background(), pathPrefix, "life_table.csv")
	if err != nil {
		return err
	}
	lt, err := refdata.LoadLifeTable(ltPath)
	if err != nil {
		return err
	}
	b.lifeTable = lt

	mrPath, err := refdata.Resolve(context.Background(), pathPrefix, "all_cause_mortality_rate.csv")
	if err != nil {
		return err
	}
	ref, err := refdata.LoadTable(mrPath)
	if err != nil {
		return err
	}
	mortality, err := interpolate.Build(ref, []string{"sex"}, []string{"age", "year"}, 1)
	if err != nil {
		return err
	}
	b.mortality = mortality
	return nil
}

// Setup registers the aging (priority 0) and mortality (priority 1)
// time_step listeners, both restricted to currently-living rows.
func (b *Base) Setup(bus *event.Bus) {
	bus.On("time_step", 0, event.OnlyLiving(b.age))
	bus.On("time_step", 1, event.OnlyLiving(b.mortalityListener))
}

// MortalityContribution implements module.Module's direct composition
// path: it adds the Base module's interpolated all-cause mortality
// rate into frame, looked up per simulant against age, year, and sex
// (spec §2 component H, §4.H). It is folded by the Rate Pipeline
// alongside every other module's contribution.
func (b *Base) MortalityContribution(pop *population.Table, frame []float64) []float64 {
	if b.mortality == nil {
		return frame
	}
	n := pop.Size()
	query := interpolate.NewTable(n)
	query.AddCategorical("sex", pop.String("sex"))
	query.AddContinuous("age", intsToFloats(pop.Int("age")))
	query.AddContinuous("year", intsToFloats(pop.Int("year")))

	result, err := b.mortality.Evaluate(query)
	if err != nil {
		panic("basemod: evaluating all-cause mortality rate: " + err.Error())
	}
	rate := result.Continuous(mortalityRateColumn)
	for i := range frame {
		frame[i] += rate[i]
	}
	return frame
}

func intsToFloats(xs []int) []float64 {
	out := make([]float64, len(xs))
	for i, v := range xs {
		out[i] = float64(v)
	}
	return out
}

func (b *Base) age(_ string, mask population.Mask, sim event.Handle) {
	pop := sim.Population()
	frac := pop.Float("fractional_age")
	age := pop.Int("age")
	step := sim.LastTimeStep().Hours() / 24 / daysPerYear
	for i, on := range mask {
		if !on {
			continue
		}
		frac[i] += step
		age[i] = int(math.Floor(frac[i]))
	}
}

func (b *Base) mortalityListener(_ string, mask population.Mask, sim event.Handle) {
	computer, ok := sim.(MortalityRateComputer)
	if !ok {
		panic("basemod: simulation handle does not implement MortalityRateComputer")
	}
	frame := computer.MortalityRateStep()

	pop := sim.Population()
	alive := pop.Bool("alive")
	age := pop.Int("age")
	drawn := ratemath.DrawMask(frame, sim.RNG())

	decedents := make(population.Mask, len(mask))
	for i, on := range mask {
		if !on || !drawn[i] {
			continue
		}
		sim.AddYLL("all_causes", b.lifeExpectancy(age[i]))
		alive[i] = false
		sim.AddDeath("all_causes")
		decedents[i] = true
	}
	sim.Emit("deaths", decedents)
}

func (b *Base) lifeExpectancy(age int) float64 {
	if b.lifeTable == nil {
		return 0
	}
	return b.lifeTable.RemainingLifeExpectancy(age)
}
