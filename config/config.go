// Package config loads scan configuration from an optional YAML file and
// fills in defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Title           string `yaml:"title"`
	Version         string `yaml:"version"`
	Output          string `yaml:"output"`
	Format          string `yaml:"format"` // "json" or "yaml"
	MaxSchemaDepth  int    `yaml:"max_schema_depth"`
	BuildTimeoutSec int    `yaml:"build_timeout_sec"`
	Framework       string `yaml:"framework"` // "", "spring" or "jaxrs"
	Verbose         bool   `yaml:"verbose"`
}

func Default() *Config {
	return &Config{
		Title:           "Recovered API",
		Version:         "1.0.0",
		Output:          "openapi.json",
		Format:          "json",
		MaxSchemaDepth:  7,
		BuildTimeoutSec: 30,
	}
}

// Load reads the config at path, applying defaults for anything unset. An
// empty path returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Title == "" {
		cfg.Title = "Recovered API"
	}
	if cfg.Version == "" {
		cfg.Version = "1.0.0"
	}
	if cfg.Output == "" {
		cfg.Output = "openapi.json"
	}
	if cfg.Format != "yaml" && cfg.Format != "yml" {
		cfg.Format = "json"
	}
	if cfg.MaxSchemaDepth <= 0 {
		cfg.MaxSchemaDepth = 7
	}
	if cfg.BuildTimeoutSec <= 0 {
		cfg.BuildTimeoutSec = 30
	}
	return cfg, nil
}

func (c *Config) BuildTimeout() time.Duration {
	return time.Duration(c.BuildTimeoutSec) * time.Second
}
