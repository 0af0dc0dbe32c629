// Package sim implements the Simulation Driver: the step loop that
// advances the clock, fans events out across the registered modules
// in dependency order, and accumulates the run's YLD/YLL/DALY burden
// (spec §4.G). Grounded on original_source/engine.py's Simulation
// class.
package sim

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/adpick/vivarium/event"
	"github.com/adpick/vivarium/module"
	"github.com/adpick/vivarium/pipeline"
	"github.com/adpick/vivarium/population"
	"github.com/adpick/vivarium/ratemath"
)

// Driver owns one run's wiring: the ordered module set, one Event Bus
// per module, the Rate Pipeline folded over those buses, and the
// accumulators a run's YLD/YLL/DALY summary is built from. Driver
// implements event.Handle so its own Emit can be handed to listeners
// as the "simulation handle" spec §3 describes.
type Driver struct {
	pop      *population.Table
	modules  []module.Module
	buses    []*event.Bus
	pipeline *pipeline.Pipeline
	rng      *ratemath.RNG
	log      *logrus.Logger

	currentTime time.Time
	lastStep    time.Duration

	yld           map[int]float64
	yll           map[int]map[string]float64
	deaths        map[string]int
	incidentCases map[string]int
}

// NewDriver builds a Driver from a fully-registered Registry and a
// population already established by the caller's ContributeColumns
// pass. Every module's Setup runs exactly once, here, producing the
// per-module Event Bus the Rate Pipeline folds over for the lifetime
// of the Driver.
func NewDriver(reg *module.Registry, pop *population.Table, rng *ratemath.RNG) (*Driver, error) {
	ordered, err := reg.Ordered()
	if err != nil {
		return nil, err
	}
	buses := make([]*event.Bus, len(ordered))
	for i, m := range ordered {
		b := event.NewBus()
		m.Setup(b)
		buses[i] = b
	}
	return &Driver{
		pop:           pop,
		modules:       ordered,
		buses:         buses,
		pipeline:      pipeline.New(ordered, buses),
		rng:           rng,
		log:           logrus.New(),
		yld:           map[int]float64{},
		yll:           map[int]map[string]float64{},
		deaths:        map[string]int{},
		incidentCases: map[string]int{},
	}, nil
}

// Logger returns the Driver's logrus logger so a caller can redirect
// output or adjust level before Run.
func (d *Driver) Logger() *logrus.Logger { return d.log }

// Pipeline returns the Driver's Rate Pipeline. The Base Demographics
// Module does not use it; it reaches the pipeline through
// MortalityRateStep.
func (d *Driver) Pipeline() *pipeline.Pipeline { return d.pipeline }

// Population implements event.Handle.
func (d *Driver) Population() *population.Table { return d.pop }

// CurrentYear implements event.Handle.
func (d *Driver) CurrentYear() int { return d.currentTime.Year() }

// LastTimeStep implements event.Handle.
func (d *Driver) LastTimeStep() time.Duration { return d.lastStep }

// RNG implements event.Handle.
func (d *Driver) RNG() *ratemath.RNG { return d.rng }

// Emit fans label out across every module's bus in dependency order,
// so total listener order is (module order, priority, registration
// order) as spec §5 requires.
func (d *Driver) Emit(label string, mask population.Mask) {
	for _, b := range d.buses {
		b.Emit(label, mask, d)
	}
}

// AddYLL implements event.Handle, crediting the current year's
// cause-specific years-of-life-lost accumulator.
func (d *Driver) AddYLL(cause string, amount float64) {
	y := d.currentTime.Year()
	if d.yll[y] == nil {
		d.yll[y] = map[string]float64{}
	}
	d.yll[y][cause] += amount
}

// AddYLD implements event.Handle.
func (d *Driver) AddYLD(amount float64) {
	d.yld[d.currentTime.Year()] += amount
}

// AddDeath implements event.Handle.
func (d *Driver) AddDeath(cause string) { d.deaths[cause]++ }

// AddIncidentCase implements event.Handle.
func (d *Driver) AddIncidentCase(cause string) { d.incidentCases[cause]++ }

// MortalityRateStep folds the current step's mortality contributions
// via the Rate Pipeline. It satisfies basemod.MortalityRateComputer,
// the capability the Base Demographics Module's mortality listener
// needs without either package importing the other's concrete type.
func (d *Driver) MortalityRateStep() []float64 {
	return d.pipeline.MortalityRateStep(d.pop, d.lastStep)
}

// IncidenceRateStep folds the current step's incidence contributions
// for cause via the Rate Pipeline.
func (d *Driver) IncidenceRateStep(cause string) []float64 {
	return d.pipeline.IncidenceRateStep(d.pop, cause, d.lastStep)
}

// Run executes the step loop from start through end (inclusive) at
// step length dt, per spec §4.G: set the year column, emit time_step
// then time_step__continuous, accumulate YLD contributions, advance.
func (d *Driver) Run(start, end time.Time, dt time.Duration) {
	d.currentTime = start
	d.lastStep = dt

	for !d.currentTime.After(end) {
		if d.pop.HasColumn("year") {
			years := d.pop.Int("year")
			y := d.currentTime.Year()
			for i := range years {
				years[i] = y
			}
		}

		all := d.pop.AllTrue()
		d.Emit("time_step", all)
		d.Emit("time_step__continuous", all)

		d.accumulateYLD()

		d.log.WithFields(logrus.Fields{
			"year":  d.currentTime.Year(),
			"alive": d.pop.AliveMask().Count(),
		}).Debug("step complete")

		d.currentTime = d.currentTime.Add(dt)
	}
}

func (d *Driver) accumulateYLD() {
	alive := d.pop.AliveMask()
	total := 0.0
	for _, m := range d.modules {
		total += m.YLDContribution(d.pop, alive)
	}
	d.AddYLD(total)
}

// Reset clears every module's per-run accumulators, restores the
// population to its initial image, and clears the Driver's own
// clock and accounting state. Reset is idempotent.
func (d *Driver) Reset() {
	for _, m := range d.modules {
		m.Reset()
	}
	d.pop.Reset()
	d.currentTime = time.Time{}
	d.lastStep = 0
	d.yld = map[int]float64{}
	d.yll = map[int]map[string]float64{}
	d.deaths = map[string]int{}
	d.incidentCases = map[string]int{}
}
