package cliconfig

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DefaultServiceURL is the default endpoint for shipping tables.
const DefaultServiceURL = "https://api.rowship.io"

// Config holds CLI configuration for rowship.
type Config struct {
	SourceDir string
	StateDir  string
	StreamID  string

	ServiceURL string
	AuthKey    string

	PollInterval time.Duration
	HTTPTimeout  time.Duration

	FlushNumBytes uint64
	FlushNumRows  uint64
	FlushTick     time.Duration

	Verbose bool
	Once    bool
}

// DefaultConfig returns a Config with default values.
// A zero flush threshold leaves that trigger disabled.
func DefaultConfig() Config {
	return Config{
		ServiceURL:    DefaultServiceURL,
		PollInterval:  500 * time.Millisecond,
		HTTPTimeout:   15 * time.Second,
		FlushNumBytes: 1 << 20,
		FlushTick:     200 * time.Millisecond,
		AuthKey:       os.Getenv("ROWSHIP_AUTH_KEY"),
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.SourceDir == "" {
		return fmt.Errorf("source-dir is required")
	}

	if c.StateDir == "" {
		c.StateDir = c.SourceDir
	}

	if c.ServiceURL == "" {
		c.ServiceURL = DefaultServiceURL
	}

	// Ensure no trailing slash
	if len(c.ServiceURL) > 0 && c.ServiceURL[len(c.ServiceURL)-1] == '/' {
		c.ServiceURL = c.ServiceURL[:len(c.ServiceURL)-1]
	}

	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive")
	}
	if c.FlushTick < 0 {
		return fmt.Errorf("flush tick must not be negative")
	}

	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setUint64 sets a uint64 value if positive and flag not changed.
func (s *configSetter) setUint64(flag string, value int64, dst *uint64) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = uint64(value)
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setUint64FromString parses a string to uint64 and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setUint64FromString(flag, value string, dst *uint64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	u, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if u == 0 {
		return nil
	}
	*dst = u
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
