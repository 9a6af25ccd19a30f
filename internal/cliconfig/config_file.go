package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	SourceDir     string `toml:"source_dir"`
	StateDir      string `toml:"state_dir"`
	StreamID      string `toml:"stream_id"`
	ServiceURL    string `toml:"service_url"`
	AuthKey       string `toml:"auth_key"`
	PollInterval  string `toml:"poll_interval"`
	HTTPTimeout   string `toml:"http_timeout"`
	FlushNumBytes int64  `toml:"flush_num_bytes"`
	FlushNumRows  int64  `toml:"flush_num_rows"`
	FlushTick     string `toml:"flush_tick"`
	Verbose       *bool  `toml:"verbose"`
	Once          *bool  `toml:"once"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.rowship/config.toml if the user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".rowship", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("source-dir", fc.SourceDir, &cfg.SourceDir)
	s.setString("state-dir", fc.StateDir, &cfg.StateDir)
	s.setString("stream-id", fc.StreamID, &cfg.StreamID)
	s.setString("service-url", fc.ServiceURL, &cfg.ServiceURL)
	s.setString("auth-key", fc.AuthKey, &cfg.AuthKey)

	if err := s.setDuration("poll", fc.PollInterval, &cfg.PollInterval); err != nil {
		return err
	}
	if err := s.setDuration("timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("flush-tick", fc.FlushTick, &cfg.FlushTick); err != nil {
		return err
	}

	s.setUint64("flush-bytes", fc.FlushNumBytes, &cfg.FlushNumBytes)
	s.setUint64("flush-rows", fc.FlushNumRows, &cfg.FlushNumRows)

	s.setBool("verbose", fc.Verbose, &cfg.Verbose)
	s.setBool("once", fc.Once, &cfg.Once)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
