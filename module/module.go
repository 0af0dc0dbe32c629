// Package module implements the simulation kernel's module registry:
// dependency-ordered composition of collaborator modules, with the
// Base Demographics Module privileged to always run first (spec §4.D).
package module

import (
	"github.com/adpick/vivarium/config"
	"github.com/adpick/vivarium/event"
	"github.com/adpick/vivarium/population"
)

// ID identifies a registered Module uniquely within a Registry.
type ID string

// BaseID is the reserved identity of the Base Demographics Module. The
// Registry pins it first in every Ordered() result regardless of
// declared dependencies, since aging and mortality must run before any
// other module sees a step's population (spec §4.D, §4.H).
const BaseID ID = "base_demographics"

// Module is the capability set the kernel requires of every
// collaborator — disease modules, risk-factor modules, and the Base
// Demographics Module alike (spec §6's external interface). Every
// method is optional in spirit; embedding Base gives a module no-op
// defaults for anything it doesn't need to override.
type Module interface {
	// ID returns this module's registry identity.
	ID() ID
	// Dependencies returns the set of module identities that must be
	// ordered before this module.
	Dependencies() map[ID]struct{}
	// Setup registers this module's listeners and value mutators on bus.
	Setup(bus *event.Bus)
	// ContributeColumns adds this module's columns to pop, sized for a
	// population of the given size.
	ContributeColumns(pop *population.Table, size int) error
	// LoadData populates this module's reference data from pathPrefix,
	// using the shared configuration.
	LoadData(cfg *config.Config, pathPrefix string) error
	// MortalityContribution folds this module's additive mortality
	// contribution into frame and returns the result.
	MortalityContribution(pop *population.Table, frame []float64) []float64
	// IncidenceContribution folds this module's additive contribution
	// to cause's incidence rate into frame and returns the result.
	IncidenceContribution(pop *population.Table, frame []float64, cause string) []float64
	// YLDContribution returns this module's years-lived-with-disability
	// contribution for the given (already alive-filtered) population.
	YLDContribution(pop *population.Table, aliveMask population.Mask) float64
	// Reset clears this module's per-run accumulators.
	Reset()
}

// Base is embedded by collaborator modules to get the contract's
// no-op defaults for everything they don't implement, the way
// spec.md's external-interface contract describes "(default: identity)"
// and "(default: 0)" behavior.
type Base struct{}

func (Base) Dependencies() map[ID]struct{} { return nil }
func (Base) Setup(*event.Bus)              {}
func (Base) ContributeColumns(*population.Table, int) error {
	return nil
}
func (Base) LoadData(*config.Config, string) error { return nil }
func (Base) MortalityContribution(_ *population.Table, frame []float64) []float64 {
	return frame
}
func (Base) IncidenceContribution(_ *population.Table, frame []float64, _ string) []float64 {
	return frame
}
func (Base) YLDContribution(*population.Table, population.Mask) float64 { return 0 }
func (Base) Reset()                                                     {}
