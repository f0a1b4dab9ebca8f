// Package config handles workspace configuration for iopc.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the workspace configuration (iopc.yaml). Every field is
// optional; command-line flags override whatever is set here.
type Config struct {
	// Compilation defaults
	Target  string `yaml:"target"`  // Default target language
	Output  string `yaml:"output"`  // Default output directory
	Workers int    `yaml:"workers"` // Generation worker pool size

	// Pattern sources
	Maps []string `yaml:"maps"` // Extra implementation-map files

	// Report settings
	HTML bool `yaml:"html"` // Also write report.html
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFromDir looks for iopc.yaml or iopc.yml in the directory.
func LoadFromDir(dir string) (*Config, error) {
	configPath := filepath.Join(dir, "iopc.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	configPath = filepath.Join(dir, "iopc.yml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	// No config file found, return empty config
	return &Config{}, nil
}
