package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the settings that can be stored in a configuration file. Flags that are set explicitly take
// precedence.
type Config struct {
	Output    string   `yaml:"output,omitempty"`
	Recursive bool     `yaml:"recursive"`
	All       bool     `yaml:"all"`
	Match     []string `yaml:"match,omitempty"`
	Include   []string `yaml:"include,omitempty"`
	Exclude   []string `yaml:"exclude,omitempty"`
	Preserve  []string `yaml:"preserve,omitempty"`

	// minifier options
	KeepTopLevel bool `yaml:"keep_top_level"`
	MaxStringLen int  `yaml:"max_string_len"`
}

// DefaultConfig returns the settings used when no configuration file is found.
func DefaultConfig() *Config {
	preserve := []string{"mode", "timestamps"}
	if supportsGetOwnership {
		preserve = []string{"mode", "ownership", "timestamps"}
	}
	return &Config{
		Preserve: preserve,
	}
}

// LoadConfig loads the configuration file at configPath. When configPath is empty it looks for a configuration
// file in the working directory, and returns the defaults if there is none.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = findConfigFile()
	}
	if configPath == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", configPath, err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", configPath, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}
	return config, nil
}

func findConfigFile() string {
	for _, path := range []string{".jsmin.yml", ".jsmin.yaml", "jsmin.yml", "jsmin.yaml"} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Validate checks the values of the configuration.
func (c *Config) Validate() error {
	if c.MaxStringLen < 0 {
		return fmt.Errorf("max_string_len must be positive")
	}
	if _, err := parsePreserve(c.Preserve); err != nil {
		return err
	}
	return nil
}
