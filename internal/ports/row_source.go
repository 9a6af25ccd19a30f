package ports

import (
	"context"
	"io"

	"github.com/rerun-io/rowship/internal/domain"
)

// SourcePosition identifies a location in the record source, used to resume
// reading after a restart. Offset is the byte offset immediately after the
// record it was returned with.
type SourcePosition struct {
	// Path is the source file the record came from
	Path string

	// Offset is the byte offset just past the record
	Offset int64
}

// RowSource provides rows parsed from an external record stream.
// Implementations read append-only record files and convert each record
// into a domain Row.
type RowSource interface {
	// Open prepares the source, resuming from the offsets recorded in state.
	// An empty state starts from the beginning of the oldest available file.
	Open(ctx context.Context, state domain.State) error

	// Next returns the next row and the position just past its record.
	// Returns io.EOF when the source is caught up (callers should poll and
	// retry). Other errors are unrecoverable.
	Next(ctx context.Context) (domain.Row, SourcePosition, error)

	// Close releases all resources held by the source.
	Close() error
}

// ErrNoMoreRows indicates that the source is caught up.
// The caller should poll and retry after a delay.
var ErrNoMoreRows = io.EOF
