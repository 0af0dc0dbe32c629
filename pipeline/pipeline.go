// Package pipeline implements the simulation kernel's Rate Pipeline:
// composing every module's registered contributions into the step's
// mortality rate frame and per-cause incidence rate frames (spec
// §4.F). It unifies what the original implementation split between
// engine.py's mortality_rates/incidence_rates and individual modules'
// ad hoc rate-scaling, per spec.md §9's second open question.
package pipeline

import (
	"time"

	"github.com/adpick/vivarium/event"
	"github.com/adpick/vivarium/module"
	"github.com/adpick/vivarium/population"
	"github.com/adpick/vivarium/ratemath"
)

const mortalityLabel = "mortality_rate"
const incidenceLabel = "incidence_rate"

// Pipeline folds every module's contribution, in dependency order,
// into a step's rate frames. It unifies the two composition paths
// spec.md §9 flagged as redundant: a module's direct
// MortalityContribution/IncidenceContribution methods (§6's external
// interface) and its Event Bus value mutators (§4.E) both fold into
// the same frame, per-module, before the next module's turn. The
// Simulation Driver owns one Pipeline per run, built from the same
// Ordered() slice that produced each module's Bus.
type Pipeline struct {
	modules []module.Module
	buses   []*event.Bus
}

// New returns a Pipeline that composes over modules and their buses in
// the given order — which must be the Module Registry's Ordered()
// order, paired index-for-index, so contribution order matches spec
// §4.E's "(module-order, priority, registration-order)".
func New(modules []module.Module, buses []*event.Bus) *Pipeline {
	return &Pipeline{modules: modules, buses: buses}
}

// MortalityRateStep folds every module's mortality contribution into a
// zero frame, applies multiplicative adjustments and mediation
// damping, then converts the result from an annual rate to a
// per-step rate using dt.
func (p *Pipeline) MortalityRateStep(pop *population.Table, dt time.Duration) []float64 {
	return p.rateStep(pop, mortalityLabel, "", dt)
}

// IncidenceRateStep is MortalityRateStep for a single cause's
// incidence rate.
func (p *Pipeline) IncidenceRateStep(pop *population.Table, cause string, dt time.Duration) []float64 {
	return p.rateStep(pop, incidenceLabel, cause, dt)
}

func (p *Pipeline) rateStep(pop *population.Table, label, subject string, dt time.Duration) []float64 {
	frame := make([]float64, pop.Size())

	for i, m := range p.modules {
		if label == mortalityLabel {
			frame = m.MortalityContribution(pop, frame)
		} else {
			frame = m.IncidenceContribution(pop, frame, subject)
		}
		for _, mutate := range p.buses[i].Mutators(label, subject) {
			frame = mutate(pop, frame)
		}
	}

	multiplier := ones(pop.Size())
	for _, bus := range p.buses {
		for _, mutate := range bus.MultiplicativeMutators(label, subject) {
			multiplier = mutate(pop, multiplier)
		}
	}
	for i := range frame {
		frame[i] *= multiplier[i]
	}

	if subject != "" {
		for _, bus := range p.buses {
			if factor, ok := bus.MediationFactor(subject); ok {
				for i := range frame {
					frame[i] *= 1 - factor
				}
			}
		}
	}

	for i := range frame {
		frame[i] = ratemath.FromYearly(frame[i], dt)
	}
	return frame
}

func ones(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}
