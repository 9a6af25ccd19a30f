package domain

import "errors"

// Domain errors represent error conditions in the rowship domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running instance.
	ErrAlreadyRunning = errors.New("rowship: already running")

	// ErrAlreadyStarted is returned when Start() is called on an instance
	// that has already run; instances are single-use.
	ErrAlreadyStarted = errors.New("rowship: already started")

	// ErrNotRunning is returned when Stop() is called on a stopped instance.
	ErrNotRunning = errors.New("rowship: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("rowship: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("rowship: invalid configuration")

	// ErrContextCanceled is returned when the operation context is canceled.
	ErrContextCanceled = errors.New("rowship: context canceled")
)
