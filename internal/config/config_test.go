package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

// TestLoadMissingFileUsesDefaults verifies a missing config file yields
// the defaults rather than an error.
func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Backend != "file" {
		t.Errorf("Store.Backend = %q, want file", cfg.Store.Backend)
	}
	if cfg.Suggestions.Limit != 10 {
		t.Errorf("Suggestions.Limit = %d, want 10", cfg.Suggestions.Limit)
	}
	if cfg.Sync.LookbackDays != 30 {
		t.Errorf("Sync.LookbackDays = %d, want 30", cfg.Sync.LookbackDays)
	}
}

// TestLoadAppliesDefaultsToUnsetFields verifies partial configs are
// filled in.
func TestLoadAppliesDefaultsToUnsetFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "store:\n  backend: sqlite\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Backend != "sqlite" {
		t.Errorf("Store.Backend = %q, want sqlite", cfg.Store.Backend)
	}
	if cfg.Store.Path == "" {
		t.Error("Store.Path not defaulted")
	}
	if !strings.HasSuffix(cfg.Store.Path, "recents.db") {
		t.Errorf("Store.Path = %q, want a sqlite default", cfg.Store.Path)
	}
	if cfg.API.BaseURL == "" {
		t.Error("API.BaseURL not defaulted")
	}
}

// TestLoadInvalidYAMLFails verifies malformed configs are rejected.
func TestLoadInvalidYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("store: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load on invalid YAML succeeded, want error")
	}
}

// TestValidateRejectsUnknownBackend verifies backend names are checked.
func TestValidateRejectsUnknownBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Store.Backend = "redis"

	if err := cfg.Validate(); err == nil {
		t.Error("Validate accepted an unknown backend")
	}
}

// TestValidateDefaults verifies the default config is valid.
func TestValidateDefaults(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

// TestSampleConfigParses verifies the embedded sample stays in sync with
// the Config struct.
func TestSampleConfigParses(t *testing.T) {
	sample := GetSampleConfig()
	if sample == "" {
		t.Fatal("embedded sample config is empty")
	}

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(sample), cfg); err != nil {
		t.Fatalf("sample config is not valid YAML: %v", err)
	}
	if cfg.Store.Backend != "file" {
		t.Errorf("sample store.backend = %q, want file", cfg.Store.Backend)
	}
}

// TestWriteSampleThenLoad verifies an initialized config round-trips.
func TestWriteSampleThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	if err := WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("sample config invalid: %v", err)
	}
}

// TestExpandPath verifies ~ expansion.
func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	got := ExpandPath("~/data/recents.json")
	want := filepath.Join(home, "data", "recents.json")
	if got != want {
		t.Errorf("ExpandPath = %q, want %q", got, want)
	}

	if got := ExpandPath("/absolute/path"); got != "/absolute/path" {
		t.Errorf("ExpandPath changed an absolute path: %q", got)
	}
}
