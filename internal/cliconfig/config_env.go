package cliconfig

import (
	"os"

	"github.com/rerun-io/rowship/internal/batch"
)

// Environment variable names understood by the CLI. The flush settings share
// their names with the batching engine so library and CLI deployments read
// the same variables.
const (
	EnvSourceDir    = "ROWSHIP_SOURCE_DIR"
	EnvStateDir     = "ROWSHIP_STATE_DIR"
	EnvStreamID     = "ROWSHIP_STREAM_ID"
	EnvServiceURL   = "ROWSHIP_SERVICE_URL"
	EnvAuthKey      = "ROWSHIP_AUTH_KEY"
	EnvPollInterval = "ROWSHIP_POLL_INTERVAL"
	EnvHTTPTimeout  = "ROWSHIP_HTTP_TIMEOUT"
	EnvVerbose      = "ROWSHIP_VERBOSE"
	EnvOnce         = "ROWSHIP_ONCE"
)

// ApplyEnvConfig applies ROWSHIP_* environment variables to the Config.
// Values set explicitly on the command line (changed map) win over the
// environment; parse failures are returned as errors.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("source-dir", os.Getenv(EnvSourceDir), &cfg.SourceDir)
	s.setString("state-dir", os.Getenv(EnvStateDir), &cfg.StateDir)
	s.setString("stream-id", os.Getenv(EnvStreamID), &cfg.StreamID)
	s.setString("service-url", os.Getenv(EnvServiceURL), &cfg.ServiceURL)
	s.setString("auth-key", os.Getenv(EnvAuthKey), &cfg.AuthKey)

	if err := s.setDuration("poll", os.Getenv(EnvPollInterval), &cfg.PollInterval); err != nil {
		return err
	}
	if err := s.setDuration("timeout", os.Getenv(EnvHTTPTimeout), &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("flush-tick", os.Getenv(batch.EnvFlushTick), &cfg.FlushTick); err != nil {
		return err
	}

	if err := s.setUint64FromString("flush-bytes", os.Getenv(batch.EnvFlushNumBytes), &cfg.FlushNumBytes); err != nil {
		return err
	}
	if err := s.setUint64FromString("flush-rows", os.Getenv(batch.EnvFlushNumRows), &cfg.FlushNumRows); err != nil {
		return err
	}

	s.setBoolFromString("verbose", os.Getenv(EnvVerbose), &cfg.Verbose)
	s.setBoolFromString("once", os.Getenv(EnvOnce), &cfg.Once)

	return nil
}
