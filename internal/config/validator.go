package config

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/wesleyorama2/memberload/internal/scenario"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Path    string
	Message string
}

// Error returns the error message
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors is a list of validation errors
type ValidationErrors []ValidationError

// Error joins all messages
func (ve ValidationErrors) Error() string {
	msgs := make([]string, len(ve))
	for i, e := range ve {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration
func (c *Config) Validate() ValidationErrors {
	var errors ValidationErrors

	// Validate host
	if c.Host == "" {
		errors = append(errors, ValidationError{Path: "host", Message: "host is required"})
	} else if u, err := url.Parse(c.Host); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errors = append(errors, ValidationError{
			Path:    "host",
			Message: fmt.Sprintf("must be an absolute http(s) URL: %s", c.Host),
		})
	}

	// Validate wait bounds
	if c.MinWait < 0 {
		errors = append(errors, ValidationError{Path: "minWait", Message: "must not be negative"})
	}
	if c.MaxWait < c.MinWait {
		errors = append(errors, ValidationError{
			Path:    "maxWait",
			Message: fmt.Sprintf("must be >= minWait (%d)", c.MinWait),
		})
	}

	// Validate credentials
	if c.Credentials.File == "" {
		errors = append(errors, ValidationError{Path: "credentials.file", Message: "file is required"})
	}

	// Validate weights, in name order so the output is stable
	names := make([]string, 0, len(c.Weights))
	for name := range c.Weights {
		names = append(names, name)
	}
	sort.Strings(names)

	catalog := scenario.Actions()
	for _, name := range names {
		if _, ok := scenario.Lookup(catalog, name); !ok {
			errors = append(errors, ValidationError{
				Path:    fmt.Sprintf("weights.%s", name),
				Message: "unknown action",
			})
		}
		if c.Weights[name] < 0 {
			errors = append(errors, ValidationError{
				Path:    fmt.Sprintf("weights.%s", name),
				Message: "weight must not be negative",
			})
		}
	}
	if len(c.Weights) > 0 && scenario.TotalWeight(c.Actions()) == 0 {
		errors = append(errors, ValidationError{Path: "weights", Message: "at least one action needs a positive weight"})
	}

	// Validate logging
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, ValidationError{
			Path:    "log.level",
			Message: fmt.Sprintf("invalid level: %s", c.Log.Level),
		})
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		errors = append(errors, ValidationError{
			Path:    "log.format",
			Message: fmt.Sprintf("invalid format: %s", c.Log.Format),
		})
	}

	return errors
}
