package config

import "testing"

func TestFromRawParsesSimulationParameters(t *testing.T) {
	raw := map[string]interface{}{
		"simulation_parameters": map[string]interface{}{
			"population_size": 1000,
			"year_start":      2020,
			"year_end":        2040,
			"time_step_days":  30,
			"random_seed":     int64(42),
			"path_prefix":     "/data",
			"discount_rate":   0.03,
		},
	}
	cfg, err := fromRaw(raw)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Simulation.PopulationSize != 1000 || cfg.Simulation.YearEnd != 2040 {
		t.Errorf("got %+v", cfg.Simulation)
	}
	if cfg.Simulation.RandomSeed != 42 {
		t.Errorf("random seed = %v, want 42", cfg.Simulation.RandomSeed)
	}
}

func TestFromRawCollectsCollaboratorSections(t *testing.T) {
	raw := map[string]interface{}{
		"ischemic_heart_disease": map[string]interface{}{
			"incidence_multiplier": 1.2,
		},
	}
	cfg, err := fromRaw(raw)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Float("ischemic_heart_disease", "incidence_multiplier", 0) != 1.2 {
		t.Errorf("got %v, want 1.2", cfg.Float("ischemic_heart_disease", "incidence_multiplier", 0))
	}
	if cfg.Float("unregistered_module", "x", 9) != 9 {
		t.Errorf("fallback should be returned for unknown module")
	}
}

func TestFromRawRejectsNonTableTopLevelKey(t *testing.T) {
	raw := map[string]interface{}{
		"oops": "not a table",
	}
	_, err := fromRaw(raw)
	if _, ok := err.(*UnknownKeyError); !ok {
		t.Fatalf("got %v, want *UnknownKeyError", err)
	}
}
