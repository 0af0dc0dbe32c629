package event

import (
	"sort"

	"github.com/adpick/vivarium/population"
)

// DefaultPriority is assigned to listeners registered without an
// explicit priority; lower priority values run first (spec §4.E:
// "priority 0 before priority 1").
const DefaultPriority = 10

type registeredListener struct {
	priority int
	seq      int
	fn       Listener
}

type mutatorKey struct{ label, subject string }

// Bus is a single module's event wiring: the labelled and generic
// listeners it registered in Setup, its value mutators keyed by
// (label, subject), and its mediation factors keyed by cause. The
// Module Registry owns one Bus per module and fans emissions out
// across all of them in dependency order (spec §4.D, §4.E).
type Bus struct {
	listeners      map[string][]registeredListener
	generic        []registeredListener
	mutators       map[mutatorKey][]ValueMutator
	multiplicative map[mutatorKey][]ValueMutator
	mediation      map[string]float64
	nextSeq        int
}

// NewBus returns an empty Bus ready for a module's Setup to populate.
func NewBus() *Bus {
	return &Bus{
		listeners:      map[string][]registeredListener{},
		mutators:       map[mutatorKey][]ValueMutator{},
		multiplicative: map[mutatorKey][]ValueMutator{},
		mediation:      map[string]float64{},
	}
}

// On registers fn to run when label is emitted, at priority (lower
// runs first). An empty label registers a generic listener that runs
// on every emission, consistent with spec.md's generic-listener case.
func (b *Bus) On(label string, priority int, fn Listener) {
	rl := registeredListener{priority: priority, seq: b.nextSeq, fn: fn}
	b.nextSeq++
	if label == "" {
		b.generic = append(b.generic, rl)
		return
	}
	b.listeners[label] = append(b.listeners[label], rl)
}

// Emit dispatches label to every listener registered for it plus every
// generic listener, in ascending (priority, registration order).
// Each listener receives its own copy of mask so one listener's
// narrowing of the mask cannot affect another's (spec §4.E:
// "listeners must not observe each other's mask mutations").
func (b *Bus) Emit(label string, mask population.Mask, sim Handle) {
	all := append(append([]registeredListener{}, b.listeners[label]...), b.generic...)
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].priority != all[j].priority {
			return all[i].priority < all[j].priority
		}
		return all[i].seq < all[j].seq
	})
	for _, rl := range all {
		rl.fn(label, mask.Copy(), sim)
	}
}

// RegisterMutator registers fn as a contributor to the (label, subject)
// rate frame — label is "mortality_rate" or "incidence_rate", subject
// is "" for mortality or a cause name for incidence.
func (b *Bus) RegisterMutator(label, subject string, fn ValueMutator) {
	k := mutatorKey{label, subject}
	b.mutators[k] = append(b.mutators[k], fn)
}

// Mutators returns the registered additive value mutators for (label,
// subject), in registration order.
func (b *Bus) Mutators(label, subject string) []ValueMutator {
	return b.mutators[mutatorKey{label, subject}]
}

// RegisterMultiplicativeMutator registers fn as a multiplicative
// adjustment to the (label, subject) rate frame — the risk-factor
// modules' "ihd_incidence_rates"-style scaling, applied after every
// module's additive contribution has folded in (spec §4.F).
func (b *Bus) RegisterMultiplicativeMutator(label, subject string, fn ValueMutator) {
	k := mutatorKey{label, subject}
	b.multiplicative[k] = append(b.multiplicative[k], fn)
}

// MultiplicativeMutators returns the registered multiplicative
// mutators for (label, subject), in registration order.
func (b *Bus) MultiplicativeMutators(label, subject string) []ValueMutator {
	return b.multiplicative[mutatorKey{label, subject}]
}

// RegisterMediationFactor records a per-cause fractional attenuation m
// in [0,1]: the Rate Pipeline multiplies the cause's aggregate rate by
// (1-m), not by m, so a factor of 0.3 removes 30% of the rate rather
// than keeping only 30% of it (spec §4.F's mediation channel).
func (b *Bus) RegisterMediationFactor(cause string, factor float64) {
	b.mediation[cause] = factor
}

// MediationFactor returns the registered factor for cause, if any.
func (b *Bus) MediationFactor(cause string) (float64, bool) {
	f, ok := b.mediation[cause]
	return f, ok
}

// OnlyLiving wraps a Listener so it only ever observes rows that are
// both in the emitted mask and currently alive, the Go equivalent of
// the original's @only_living decorator (spec §4.E).
func OnlyLiving(fn Listener) Listener {
	return func(label string, mask population.Mask, sim Handle) {
		fn(label, mask.And(sim.Population().AliveMask()), sim)
	}
}
