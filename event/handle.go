// Package event implements the simulation kernel's typed event bus:
// per-module listener sets keyed by event label, priority-ordered
// fan-out, and the distinct value-mutator and mediation-factor
// registration channels the Rate Pipeline folds over (spec §4.E).
package event

import (
	"time"

	"github.com/adpick/vivarium/population"
	"github.com/adpick/vivarium/ratemath"
)

// Handle is what a Listener sees of the running simulation: the
// population table, the current step's clock, its RNG, and the
// ability to emit further events and record per-run accounting. The
// Simulation Driver implements Handle; the Event Bus package only
// depends on this interface so it never needs to import the driver.
type Handle interface {
	Population() *population.Table
	CurrentYear() int
	LastTimeStep() time.Duration
	RNG() *ratemath.RNG
	Emit(label string, mask population.Mask)
	AddYLL(cause string, amount float64)
	AddYLD(amount float64)
	AddDeath(cause string)
	AddIncidentCase(cause string)
}

// Listener observes and may mutate the Population Table in response
// to an emitted event.
type Listener func(label string, mask population.Mask, sim Handle)

// ValueMutator folds a module's contribution into a rate frame. It is
// the registration channel the Rate Pipeline uses for both mortality
// (subject "") and per-cause incidence (subject == cause name).
type ValueMutator func(pop *population.Table, frame []float64) []float64
