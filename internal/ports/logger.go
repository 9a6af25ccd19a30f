package ports

import "github.com/rerun-io/rowship/pkg/log"

// Logger is the structured logging port. It aliases the public pkg/log
// interface so implementations written against either package satisfy both.
type Logger = log.Logger

// Field is a key-value pair attached to a log message.
type Field = log.Field

// Field constructors, re-exported so internal packages depend only on ports.
var (
	String   = log.String
	Int      = log.Int
	Int64    = log.Int64
	Uint64   = log.Uint64
	Float64  = log.Float64
	Bool     = log.Bool
	Duration = log.Duration
	Err      = log.Err
	Any      = log.Any
)
