package batch

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"
)

// Environment variables that override any Config value, letting a deployment
// retune the thresholds without a code change.
const (
	EnvFlushNumBytes = "ROWSHIP_FLUSH_NUM_BYTES"
	EnvFlushNumRows  = "ROWSHIP_FLUSH_NUM_ROWS"
	EnvFlushTick     = "ROWSHIP_FLUSH_TICK"
)

// Unreachable threshold values, used to disable individual triggers.
const (
	// NeverBytes disables the byte-size trigger.
	NeverBytes uint64 = math.MaxUint64

	// NeverRows disables the row-count trigger.
	NeverRows uint64 = math.MaxUint64

	// NeverTick disables the duration trigger (about 292 years).
	NeverTick time.Duration = math.MaxInt64
)

// Config controls when the Batcher seals the pending rows into a table.
// Whichever trigger fires first wins. A zero value for any field disables
// that trigger, so the zero Config never flushes automatically.
type Config struct {
	// FlushNumBytes is the cumulative pending byte size at or above which
	// a flush is forced.
	FlushNumBytes uint64

	// FlushNumRows is the cumulative pending row count at or above which
	// a flush is forced.
	FlushNumRows uint64

	// FlushTick is the longest a non-empty pending batch may stay open
	// before the background trigger seals it.
	FlushTick time.Duration
}

// DefaultConfig returns the thresholds used when nothing else is specified:
// seal at 1 MiB or after 200ms, whichever comes first, with no row-count
// limit.
func DefaultConfig() Config {
	return Config{
		FlushNumBytes: 1 << 20,
		FlushNumRows:  NeverRows,
		FlushTick:     200 * time.Millisecond,
	}
}

// NeverConfig disables all three automatic triggers; only Flush and Close
// seal tables. Tests use it to isolate a single trigger.
func NeverConfig() Config {
	return Config{
		FlushNumBytes: NeverBytes,
		FlushNumRows:  NeverRows,
		FlushTick:     NeverTick,
	}
}

// AlwaysConfig seals after every single row.
func AlwaysConfig() Config {
	return Config{
		FlushNumBytes: NeverBytes,
		FlushNumRows:  1,
		FlushTick:     NeverTick,
	}
}

// ApplyEnv overlays the ROWSHIP_FLUSH_* environment variables onto c and
// returns the result. Unset variables leave the corresponding field alone.
func (c Config) ApplyEnv() (Config, error) {
	if v := os.Getenv(EnvFlushNumBytes); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return c, fmt.Errorf("invalid %s: %w", EnvFlushNumBytes, err)
		}
		c.FlushNumBytes = n
	}
	if v := os.Getenv(EnvFlushNumRows); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return c, fmt.Errorf("invalid %s: %w", EnvFlushNumRows, err)
		}
		c.FlushNumRows = n
	}
	if v := os.Getenv(EnvFlushTick); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return c, fmt.Errorf("invalid %s: %w", EnvFlushTick, err)
		}
		c.FlushTick = d
	}
	return c, nil
}

// normalized maps disabled (zero) triggers to their unreachable values so
// the engine can compare against them unconditionally.
func (c Config) normalized() Config {
	if c.FlushNumBytes == 0 {
		c.FlushNumBytes = NeverBytes
	}
	if c.FlushNumRows == 0 {
		c.FlushNumRows = NeverRows
	}
	if c.FlushTick <= 0 {
		c.FlushTick = NeverTick
	}
	return c
}
