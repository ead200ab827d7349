package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// LoggingConfig holds logger settings shared by every command
type LoggingConfig struct {
	// Level is one of debug, info, warn, error
	Level string `env:"LOG_LEVEL" yaml:"log_level" default:"info"`
	// Format is json or text
	Format string `env:"LOG_FORMAT" yaml:"log_format" default:"json"`
}

// Validate checks level and format names
func (c LoggingConfig) Validate() error {
	var result error
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, strings.ToLower(c.Level)) {
		result = multierror.Append(result, fmt.Errorf("log_level must be one of [debug, info, warn, error], got %q", c.Level))
	}
	if c.Format != "json" && c.Format != "text" {
		result = multierror.Append(result, fmt.Errorf("log_format must be either 'json' or 'text', got %q", c.Format))
	}
	return result
}
