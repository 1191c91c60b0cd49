// Package config loads the llmcast configuration file and watches it for
// changes. Reloads swap the configuration in with an atomic pointer so
// concurrent readers never observe a partially applied file.
package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/llmcast/llmcast/pkg/provider"
)

// Config is the on-disk configuration for llmcast clients and the CLI.
// Provider entries are keyed by provider name and hold per-provider
// overrides; unset fields fall back to the provider's built-in defaults.
type Config struct {
	DefaultProvider string                     `yaml:"default_provider"`
	Providers       map[string]provider.Config `yaml:"providers"`
	Logging         LoggingConfig              `yaml:"logging"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadFromFile reads and parses a YAML configuration file.
// Environment variables in the format ${VAR_NAME} are expanded before
// parsing. Secret references such as env://OPENAI_API_KEY are left
// intact; they are resolved at request time, not load time.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.DefaultProvider != "" {
		if _, ok := c.Providers[c.DefaultProvider]; !ok {
			return fmt.Errorf("default_provider %q has no providers entry", c.DefaultProvider)
		}
	}

	for name, pc := range c.Providers {
		if name == "" {
			return fmt.Errorf("provider entries must be keyed by name")
		}
		if pc.BaseURL != "" {
			if err := provider.ValidateBaseURL(pc.BaseURL); err != nil {
				return fmt.Errorf("provider %q: %w", name, err)
			}
		}
		if pc.Timeout < 0 {
			return fmt.Errorf("provider %q: timeout cannot be negative", name)
		}
		if pc.MaxTokens < 0 {
			return fmt.Errorf("provider %q: max_tokens cannot be negative", name)
		}
		if pc.Dimensions < 0 {
			return fmt.Errorf("provider %q: dimensions cannot be negative", name)
		}
	}

	return nil
}

// Provider returns the configuration for the named provider. An empty
// name selects the default provider.
func (c *Config) Provider(name string) (provider.Config, bool) {
	if name == "" {
		name = c.DefaultProvider
	}
	pc, ok := c.Providers[name]
	return pc, ok
}

// Names returns the configured provider names in sorted order.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Providers))
	for name := range c.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
