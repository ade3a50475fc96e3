// Package config loads the harness-level settings of the portal scenario:
// target host, wait bounds, credentials location, weight overrides and
// logging.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/memberload/internal/credentials"
	"github.com/wesleyorama2/memberload/internal/scenario"
)

// Config represents the top-level configuration
type Config struct {
	// Host is the base URL every request is issued against
	Host string `json:"host" yaml:"host"`

	// MinWait and MaxWait bound the pause between two actions, in milliseconds
	MinWait int `json:"minWait" yaml:"minWait"`
	MaxWait int `json:"maxWait" yaml:"maxWait"`

	Credentials CredentialsConfig `json:"credentials" yaml:"credentials"`

	// Weights overrides the declared weight of individual actions
	Weights map[string]int `json:"weights,omitempty" yaml:"weights,omitempty"`

	// ReportRequests also reports every HTTP request, not only actions
	ReportRequests bool `json:"reportRequests,omitempty" yaml:"reportRequests,omitempty"`

	Log LogConfig `json:"log" yaml:"log"`
}

// CredentialsConfig locates the credentials document
type CredentialsConfig struct {
	File         string `json:"file" yaml:"file"`
	UsernamePath string `json:"usernamePath" yaml:"usernamePath"`
	PasswordPath string `json:"passwordPath" yaml:"passwordPath"`
}

// LogConfig controls the zap logger
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Host:    scenario.DefaultHost,
		MinWait: int(scenario.DefaultMinWait / time.Millisecond),
		MaxWait: int(scenario.DefaultMaxWait / time.Millisecond),
		Credentials: CredentialsConfig{
			File:         credentials.DefaultPath,
			UsernamePath: credentials.DefaultUsernamePath,
			PasswordPath: credentials.DefaultPasswordPath,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads, parses and validates a configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data, path)
	if err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid config %s: %w", path, errs)
	}
	return cfg, nil
}

// Parse decodes data on top of the defaults.
//
// The format is determined by the extension of path: .json is JSON,
// anything else is YAML.
func Parse(data []byte, path string) (*Config, error) {
	cfg := Default()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	return cfg, nil
}

// User returns the harness profile described by the configuration
func (c *Config) User() scenario.User {
	return scenario.User{
		Host:    c.Host,
		MinWait: time.Duration(c.MinWait) * time.Millisecond,
		MaxWait: time.Duration(c.MaxWait) * time.Millisecond,
	}
}

// Actions returns the action catalog with weight overrides applied
func (c *Config) Actions() []scenario.Action {
	return scenario.WithWeights(scenario.Actions(), c.Weights)
}

// CredentialSource returns a source reading the configured document
func (c *Config) CredentialSource() *credentials.FileSource {
	return &credentials.FileSource{
		Path:         c.Credentials.File,
		UsernamePath: c.Credentials.UsernamePath,
		PasswordPath: c.Credentials.PasswordPath,
	}
}
