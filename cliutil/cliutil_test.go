package cliutil

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "vivarium.toml")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidateCmdRejectsInvertedYearRange(t *testing.T) {
	path := writeConfig(t, "[simulation_parameters]\npopulation_size = 100\nyear_start = 2030\nyear_end = 2020\n")
	root := NewRootCmd()
	root.SetArgs([]string{"--config", path, "validate"})
	if err := root.Execute(); err == nil {
		t.Fatal("expected an error for year_start after year_end")
	}
}

func TestValidateCmdAcceptsWellFormedConfig(t *testing.T) {
	path := writeConfig(t, "[simulation_parameters]\npopulation_size = 100\nyear_start = 2020\nyear_end = 2025\n")
	root := NewRootCmd()
	root.SetArgs([]string{"--config", path, "validate"})
	if err := root.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestVersionCmdRuns(t *testing.T) {
	root := NewRootCmd()
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
