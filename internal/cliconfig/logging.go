package cliconfig

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

var logger zerolog.Logger

func init() {
	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	logger = zerolog.New(console).With().Timestamp().Logger()
}

// Logger returns the CLI logger. It writes human-readable output to stderr;
// the log level is adjusted globally once flags are parsed.
func Logger() zerolog.Logger {
	return logger
}
