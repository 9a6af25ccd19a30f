package ports

import (
	"context"

	"github.com/rerun-io/rowship/internal/domain"
)

// TableSink transmits sealed tables to the ingestion service.
// Implementations handle serialization, transport, and authentication.
type TableSink interface {
	// Send transmits one table to the remote service.
	// Returns nil on success. Failures are returned to the caller, which
	// owns the retry policy; implementations do not retry internally.
	Send(ctx context.Context, table domain.Table, metadata SendMetadata) error
}

// SendMetadata provides context for the send operation.
// This information is included in HTTP headers for server-side tracking.
type SendMetadata struct {
	// StreamID identifies the recording stream the tables belong to
	StreamID string

	// Hostname is the shipping host's name
	Hostname string

	// OSArch is the operating system and architecture (e.g., "linux/amd64")
	OSArch string

	// AuthKey is the API authentication key
	AuthKey string

	// ServiceURL is the base URL of the ingestion service
	ServiceURL string
}
