// Package config loads qniverse.yaml.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"qniverse/internal/emit"
)

const (
	DefaultFileName = "qniverse.yaml"

	defaultPlatform  = "qiskit"
	defaultLogLevel  = "info"
	defaultCacheSize = 64
)

type Config struct {
	// Target platform: qiskit, cirq or cudaq
	Platform string `yaml:"platform"`
	// Backend name from the platform's whitelist, empty for the default simulator
	Backend string `yaml:"backend"`
	Shots   int    `yaml:"shots"`
	// Output file, empty for stdout
	Output   string `yaml:"output"`
	LogLevel string `yaml:"logLevel"`
	// Number of translations kept by the translator cache
	CacheSize int `yaml:"cacheSize"`
}

// WithDefaults returns a copy of the Config with any missing fields set to
// their default values.
func (c Config) WithDefaults() Config {
	cpy := c
	if cpy.Platform == "" {
		cpy.Platform = defaultPlatform
	}
	if cpy.Shots == 0 {
		cpy.Shots = emit.DefaultShots
	}
	if cpy.LogLevel == "" {
		cpy.LogLevel = defaultLogLevel
	}
	if cpy.CacheSize == 0 {
		cpy.CacheSize = defaultCacheSize
	}
	return cpy
}

// Load reads the config file at path and applies defaults. A missing file
// is not an error when path is the default name.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultFileName
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && path == DefaultFileName {
		cfg := Config{}.WithDefaults()
		return &cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "load config")
	}

	cfg := Config{}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "load config %s", path)
	}
	cfg = cfg.WithDefaults()
	return &cfg, nil
}

// Save writes the config as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "save config")
	}
	return errors.Wrap(os.WriteFile(path, data, 0644), "save config")
}

// Validate checks the platform, the backend whitelist and the sample count.
func (c *Config) Validate() error {
	p, err := emit.ParsePlatform(c.Platform)
	if err != nil {
		return errors.Wrap(err, "validate config")
	}
	if err := emit.ValidateBackend(p, c.Backend); err != nil {
		return errors.Wrap(err, "validate config")
	}
	if c.Shots <= 0 {
		return errors.Errorf("validate config: shots must be positive, got %d", c.Shots)
	}
	if c.CacheSize < 0 {
		return errors.Errorf("validate config: cacheSize must not be negative, got %d", c.CacheSize)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return errors.Errorf("validate config: unknown logLevel '%s'", c.LogLevel)
	}
	return nil
}

// PlatformValue returns the parsed platform. Call Validate first.
func (c *Config) PlatformValue() emit.Platform {
	p, _ := emit.ParsePlatform(c.Platform)
	return p
}
