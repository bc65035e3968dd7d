package tui

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/quantmind-br/offsync/internal/config"
)

// Validation error messages
var (
	ErrRequired      = errors.New("this field is required")
	ErrInvalidNumber = errors.New("must be a valid number")
	ErrInvalidRange  = errors.New("value out of valid range")
	ErrInvalidURL    = errors.New("must be an absolute http(s) URL")
)

// ValidateDuration validates that a string can be parsed as a time.Duration
func ValidateDuration(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil // default
	}
	if _, err := time.ParseDuration(s); err != nil {
		return fmt.Errorf("invalid duration format (use: 30s, 5m, 1h): %w", err)
	}
	return nil
}

// ValidateIntRange validates that a string represents an integer within a range
func ValidateIntRange(min, max int) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return ErrInvalidNumber
		}
		if n < min || n > max {
			return fmt.Errorf("%w: must be between %d and %d", ErrInvalidRange, min, max)
		}
		return nil
	}
}

// ValidateRootURL requires an absolute http(s) URL
func ValidateRootURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return ErrRequired
	}
	return ValidateOptionalURL(s)
}

// ValidateOptionalURL accepts an empty string or an absolute http(s) URL
func ValidateOptionalURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidURL
	}
	return nil
}

// ValidateDriver validates the version store driver
func ValidateDriver(s string) error {
	switch s {
	case config.DriverSQLite, config.DriverJSON:
		return nil
	}
	return fmt.Errorf("invalid versions driver: must be %s or %s", config.DriverSQLite, config.DriverJSON)
}

// ValidateLogLevel validates log level values
func ValidateLogLevel(s string) error {
	switch strings.ToLower(s) {
	case "trace", "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("invalid log level: must be one of trace, debug, info, warn, error")
}

// ValidateLogFormat validates log format values
func ValidateLogFormat(s string) error {
	switch strings.ToLower(s) {
	case "json", "pretty":
		return nil
	}
	return fmt.Errorf("invalid log format: must be json or pretty")
}
