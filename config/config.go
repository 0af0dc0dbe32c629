// Package config implements the kernel's immutable configuration
// value. Modules receive a *Config explicitly in LoadData rather than
// reaching into a process-global config object, resolving spec §9's
// "replace global config object" redesign flag.
package config

import (
	"github.com/BurntSushi/toml"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// SimulationParameters holds the top-level run parameters every kernel
// needs regardless of which collaborator modules are loaded, modeled
// on original_source's simulation_parameters config section.
type SimulationParameters struct {
	PopulationSize int     `toml:"population_size"`
	YearStart      int     `toml:"year_start"`
	YearEnd        int     `toml:"year_end"`
	TimeStepDays   int     `toml:"time_step_days"`
	RandomSeed     uint64  `toml:"random_seed"`
	PathPrefix     string  `toml:"path_prefix"`
	DiscountRate   float64 `toml:"discount_rate"`
}

// Config is the immutable, fully-parsed configuration for one
// simulation run. Collaborators holds each module's own configuration
// section verbatim, keyed by module ID, so a module can read its own
// settings without the Config type needing to know every module's
// schema up front.
type Config struct {
	Simulation    SimulationParameters
	Collaborators map[string]map[string]interface{}
}

// UnknownKeyError reports a top-level TOML key whose value is not a
// table, so it can be neither "simulation_parameters" nor a
// collaborator namespace. Any top-level table is accepted as a
// collaborator namespace, and unknown keys inside
// "simulation_parameters" are ignored.
type UnknownKeyError struct {
	Key string
}

func (e *UnknownKeyError) Error() string {
	return "config: unrecognized top-level section " + e.Key
}

// Load reads a TOML configuration file at path and returns an
// immutable Config. "simulation_parameters" is decoded strictly into
// SimulationParameters via viper; every other top-level table is kept
// verbatim as a collaborator namespace, and Int/Float/String coerce its
// values with cast on read so module authors can read ints, floats, or
// strings without caring how TOML typed them.
func Load(path string) (*Config, error) {
	var raw map[string]interface{}
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, err
	}
	return fromRaw(raw)
}

func fromRaw(raw map[string]interface{}) (*Config, error) {
	cfg := &Config{Collaborators: map[string]map[string]interface{}{}}

	simRaw, hasSim := raw["simulation_parameters"]
	if hasSim {
		v := viper.New()
		section, ok := simRaw.(map[string]interface{})
		if !ok {
			return nil, &UnknownKeyError{Key: "simulation_parameters"}
		}
		for k, val := range section {
			v.Set(k, val)
		}
		cfg.Simulation = SimulationParameters{
			PopulationSize: v.GetInt("population_size"),
			YearStart:      v.GetInt("year_start"),
			YearEnd:        v.GetInt("year_end"),
			TimeStepDays:   v.GetInt("time_step_days"),
			RandomSeed:     cast.ToUint64(v.Get("random_seed")),
			PathPrefix:     v.GetString("path_prefix"),
			DiscountRate:   v.GetFloat64("discount_rate"),
		}
	}

	for key, val := range raw {
		if key == "simulation_parameters" {
			continue
		}
		section, ok := val.(map[string]interface{})
		if !ok {
			return nil, &UnknownKeyError{Key: key}
		}
		cfg.Collaborators[key] = section
	}
	return cfg, nil
}

// Collaborator returns the configuration section registered for
// moduleID, or an empty (non-nil) map if the run's config file never
// mentioned it — a module with no [module_id] table just gets its
// zero-value defaults.
func (c *Config) Collaborator(moduleID string) map[string]interface{} {
	if s, ok := c.Collaborators[moduleID]; ok {
		return s
	}
	return map[string]interface{}{}
}

// Int reads an integer setting from a collaborator section, returning
// fallback if the key is absent.
func (c *Config) Int(moduleID, key string, fallback int) int {
	s := c.Collaborator(moduleID)
	v, ok := s[key]
	if !ok {
		return fallback
	}
	return cast.ToInt(v)
}

// Float reads a float setting from a collaborator section, returning
// fallback if the key is absent.
func (c *Config) Float(moduleID, key string, fallback float64) float64 {
	s := c.Collaborator(moduleID)
	v, ok := s[key]
	if !ok {
		return fallback
	}
	return cast.ToFloat64(v)
}

// String reads a string setting from a collaborator section, returning
// fallback if the key is absent.
func (c *Config) String(moduleID, key string, fallback string) string {
	s := c.Collaborator(moduleID)
	v, ok := s[key]
	if !ok {
		return fallback
	}
	return cast.ToString(v)
}
