// Package config handles vtex system configuration loading.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds system-level settings for the virtual texture runtime.
type Config struct {
	Debug     DebugConfig   `yaml:"debug"`
	Resolving bool          `yaml:"resolving"`
	Logging   LoggingConfig `yaml:"logging"`
}

// DebugConfig holds debug introspection settings.
type DebugConfig struct {
	// Tiles enables tile-debug occupancy introspection.
	Tiles bool `yaml:"tiles"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error". Empty disables
	// logging (the vtex default).
	Level string `yaml:"level"`
}

// Default returns the default configuration: resolving on, debug off,
// logging disabled.
func Default() *Config {
	return &Config{
		Resolving: true,
	}
}

// Load loads configuration with priority: defaults < file. A missing file
// is not an error; the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to path as YAML.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encoding: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: writing %s: %w", path, err)
	}
	return nil
}
