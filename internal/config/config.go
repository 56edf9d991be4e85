// Package config handles application configuration
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed config.sample.yaml
var sampleConfig string

// GetSampleConfig returns the embedded sample configuration content
func GetSampleConfig() string {
	return sampleConfig
}

// StoreConfig selects and locates the recent-timers store backend
type StoreConfig struct {
	Backend string `yaml:"backend"` // "file" or "sqlite"
	Path    string `yaml:"path"`
}

// APIConfig holds time-tracking API settings
type APIConfig struct {
	BaseURL     string `yaml:"base_url"`
	WorkspaceID int64  `yaml:"workspace_id"`
}

// SyncConfig holds reconciliation settings
type SyncConfig struct {
	LookbackDays int `yaml:"lookback_days"` // how far back to fetch time entries
}

// SuggestionsConfig holds suggestion list settings
type SuggestionsConfig struct {
	Limit int `yaml:"limit"`
}

// Config represents the application configuration
type Config struct {
	Store       StoreConfig       `yaml:"store"`
	API         APIConfig         `yaml:"api"`
	Sync        SyncConfig        `yaml:"sync"`
	Suggestions SuggestionsConfig `yaml:"suggestions"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: "file",
			Path:    DefaultStorePath("file"),
		},
		API: APIConfig{
			BaseURL: "https://api.track.toggl.com",
		},
		Sync: SyncConfig{
			LookbackDays: 30,
		},
		Suggestions: SuggestionsConfig{
			Limit: 10,
		},
	}
}

// Load reads the configuration from configPath. A missing file yields the
// defaults; unset fields in an existing file are filled with defaults.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigPath()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in config file: %w", err)
	}

	// Apply defaults for unset fields
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "file"
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = DefaultStorePath(cfg.Store.Backend)
	} else {
		cfg.Store.Path = ExpandPath(cfg.Store.Path)
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "https://api.track.toggl.com"
	}
	if cfg.Sync.LookbackDays == 0 {
		cfg.Sync.LookbackDays = 30
	}
	if cfg.Suggestions.Limit == 0 {
		cfg.Suggestions.Limit = 10
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Store.Backend != "file" && c.Store.Backend != "sqlite" {
		return fmt.Errorf("unknown store.backend: %q (must be 'file' or 'sqlite')", c.Store.Backend)
	}
	if c.Sync.LookbackDays < 0 {
		return fmt.Errorf("sync.lookback_days must not be negative")
	}
	if c.Suggestions.Limit < 0 {
		return fmt.Errorf("suggestions.limit must not be negative")
	}
	return nil
}

// WriteSample writes the embedded sample configuration to path
func WriteSample(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DefaultConfigPath returns the default config file location
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "timeat", "config.yaml")
}

// DefaultStorePath returns the default store location for a backend
func DefaultStorePath(backend string) string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = "."
	}
	name := "recents.json"
	if backend == "sqlite" {
		name = "recents.db"
	}
	return filepath.Join(dir, "timeat", name)
}

// ExpandPath expands a leading ~ to the user's home directory
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(path, "~"), "/"))
	}
	return path
}
