// Package config provides configuration management for spyglass.
//
// Configuration is optional: with no config file the defaults apply. It
// covers ambient behavior only (output format, network timeouts, row
// limits) — what a URI means is decided by the dispatch core, never by
// configuration.
//
// Config file locations (priority order):
//  1. $SPYGLASS_CONFIG
//  2. ./spyglass.yaml
//  3. ~/.config/spyglass/config.yaml
//  4. /etc/spyglass/config.yaml
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the ambient settings for a spyglass run.
type Config struct {
	// DefaultFormat is used when --format is not given (text, json, grep, csv).
	DefaultFormat string `yaml:"default_format"`
	// RowLimit caps tabular extractions when no limit query is given.
	RowLimit int `yaml:"row_limit"`
	// Timeouts bound every network-touching backend.
	Timeouts TimeoutConfig `yaml:"timeouts"`
	// DNS configures the dns backend.
	DNS DNSConfig `yaml:"dns"`
}

// TimeoutConfig bounds network calls so one unresponsive remote cannot
// hang a whole run. A timeout is a definite failure, never retried by the
// dispatch layer.
type TimeoutConfig struct {
	DNS  time.Duration `yaml:"dns"`
	SSH  time.Duration `yaml:"ssh"`
	Scan time.Duration `yaml:"scan"`
}

// DNSConfig configures the dns backend.
type DNSConfig struct {
	// Nameserver overrides the system resolver (host or host:port).
	Nameserver string `yaml:"nameserver,omitempty"`
}

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns the defaults used when no config file exists
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.DefaultFormat == "" {
		c.DefaultFormat = "text"
	}
	if c.RowLimit <= 0 {
		c.RowLimit = 50
	}
	if c.Timeouts.DNS <= 0 {
		c.Timeouts.DNS = 3 * time.Second
	}
	if c.Timeouts.SSH <= 0 {
		c.Timeouts.SSH = 5 * time.Second
	}
	if c.Timeouts.Scan <= 0 {
		c.Timeouts.Scan = 30 * time.Second
	}
}
