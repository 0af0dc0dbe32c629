package pipeline

import (
	"testing"
	"time"

	"github.com/adpick/vivarium/event"
	"github.com/adpick/vivarium/module"
	"github.com/adpick/vivarium/population"
)

// stubModule is a no-op collaborator used only to exercise the
// Pipeline's per-bus folding with Module's default (identity)
// MortalityContribution/IncidenceContribution behavior.
type stubModule struct {
	module.Base
	id module.ID
}

func (s stubModule) ID() module.ID { return s.id }

func stubModules(ids ...module.ID) []module.Module {
	out := make([]module.Module, len(ids))
	for i, id := range ids {
		out[i] = stubModule{id: id}
	}
	return out
}

func newPop(n int) *population.Table {
	pop := population.New()
	alive := make([]bool, n)
	for i := range alive {
		alive[i] = true
	}
	if err := pop.AddBoolColumn("alive", alive); err != nil {
		panic(err)
	}
	return pop
}

func TestMortalityRateStepFoldsAdditiveContributions(t *testing.T) {
	pop := newPop(3)
	base := event.NewBus()
	base.RegisterMutator(mortalityLabel, "", func(_ *population.Table, frame []float64) []float64 {
		for i := range frame {
			frame[i] += 0.01
		}
		return frame
	})
	disease := event.NewBus()
	disease.RegisterMutator(mortalityLabel, "", func(_ *population.Table, frame []float64) []float64 {
		for i := range frame {
			frame[i] += 0.02
		}
		return frame
	})

	p := New(stubModules("base", "disease"), []*event.Bus{base, disease})
	got := p.MortalityRateStep(pop, 365*24*time.Hour)

	for i, v := range got {
		if v < 0.0299 || v > 0.0301 {
			t.Errorf("row %d = %v, want ~0.03 (one year step)", i, v)
		}
	}
}

func TestIncidenceRateStepAppliesMultiplicativeThenMediation(t *testing.T) {
	pop := newPop(2)
	disease := event.NewBus()
	disease.RegisterMutator(incidenceLabel, "ihd", func(_ *population.Table, frame []float64) []float64 {
		for i := range frame {
			frame[i] = 0.1
		}
		return frame
	})
	risk := event.NewBus()
	risk.RegisterMultiplicativeMutator(incidenceLabel, "ihd", func(_ *population.Table, frame []float64) []float64 {
		for i := range frame {
			frame[i] *= 2
		}
		return frame
	})
	risk.RegisterMediationFactor("ihd", 0.3)

	p := New(stubModules("disease", "risk"), []*event.Bus{disease, risk})
	got := p.IncidenceRateStep(pop, "ihd", 365*24*time.Hour)

	// 0.1 additive * 2 multiplicative = 0.2, then mediation attenuates by
	// (1-0.3): 0.2*0.7 = 0.14 annual rate, over a one-year step that's
	// unchanged by from_yearly.
	for i, v := range got {
		if v < 0.1399 || v > 0.1401 {
			t.Errorf("row %d = %v, want ~0.14", i, v)
		}
	}
}

func TestRateStepHalfYearStepHalvesRate(t *testing.T) {
	pop := newPop(1)
	bus := event.NewBus()
	bus.RegisterMutator(mortalityLabel, "", func(_ *population.Table, frame []float64) []float64 {
		frame[0] = 0.1
		return frame
	})
	p := New(stubModules("base"), []*event.Bus{bus})
	got := p.MortalityRateStep(pop, 365*12*time.Hour)
	if got[0] < 0.0499 || got[0] > 0.0501 {
		t.Errorf("got %v, want ~0.05", got[0])
	}
}

// additiveContribModule exercises the Module interface's direct
// MortalityContribution method, the composition path the Event Bus's
// mutator channel unified with per spec.md §9's second open question.
type additiveContribModule struct {
	module.Base
	id  module.ID
	add float64
}

func (m additiveContribModule) ID() module.ID { return m.id }

func (m additiveContribModule) MortalityContribution(_ *population.Table, frame []float64) []float64 {
	for i := range frame {
		frame[i] += m.add
	}
	return frame
}

func TestMortalityRateStepFoldsModuleContributionMethod(t *testing.T) {
	pop := newPop(2)
	m := additiveContribModule{id: "disease", add: 0.04}
	p := New([]module.Module{m}, []*event.Bus{event.NewBus()})

	got := p.MortalityRateStep(pop, 365*24*time.Hour)
	for i, v := range got {
		if v < 0.0399 || v > 0.0401 {
			t.Errorf("row %d = %v, want ~0.04", i, v)
		}
	}
}

func TestRateStepWithNoMutatorsIsZero(t *testing.T) {
	pop := newPop(2)
	p := New(stubModules("base"), []*event.Bus{event.NewBus()})
	got := p.MortalityRateStep(pop, 24*time.Hour)
	for _, v := range got {
		if v != 0 {
			t.Errorf("got %v, want 0", v)
		}
	}
}
