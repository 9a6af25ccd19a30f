package rowship

import (
	"net/http"

	"github.com/rerun-io/rowship/internal/domain"
	"github.com/rerun-io/rowship/internal/ports"
	"github.com/rerun-io/rowship/pkg/log"
)

// HTTPClient is the interface for making HTTP requests.
// *http.Client satisfies this interface.
type HTTPClient = ports.HTTPClient

// Logger is the interface for structured logging.
// See github.com/rerun-io/rowship/pkg/log for ready-made implementations.
type Logger = log.Logger

// LogField represents a structured log field.
type LogField = log.Field

// RowSource supplies rows from a record stream. The default implementation
// tails JSONL files in Config.SourceDir; provide your own via WithSource.
type RowSource = ports.RowSource

// SourcePosition locates a record within its source, used for resuming.
type SourcePosition = ports.SourcePosition

// Progress is the agent's persisted delivery progress: the stream id,
// committed source offsets, and lifetime delivery counters.
type Progress = domain.State

// TableSink delivers sealed tables. The default implementation posts to the
// rowship ingestion API; provide your own via WithSink.
type TableSink = ports.TableSink

// SendMetadata carries per-send context such as stream id and auth key.
type SendMetadata = ports.SendMetadata

// Option configures optional behavior of Rowship.
type Option func(*options)

// options holds the optional configuration for a Rowship instance.
type options struct {
	httpClient   ports.HTTPClient
	logger       ports.Logger
	eventHandler EventHandler
	source       ports.RowSource
	sink         ports.TableSink
}

// defaultOptions returns options with sensible defaults.
func defaultOptions(client *http.Client) options {
	return options{
		httpClient:   client,
		logger:       log.Discard,
		eventHandler: nil,
	}
}

// WithHTTPClient sets a custom HTTP client for API communication.
// If not provided, a default client with the configured timeout is used.
func WithHTTPClient(client HTTPClient) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventHandler sets a handler for rowship events.
// Events are called synchronously from the agent goroutines.
// If not provided, no events are emitted.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithSource replaces the default JSONL file source. Config.SourceDir is
// ignored when a custom source is provided.
func WithSource(source RowSource) Option {
	return func(o *options) {
		o.source = source
	}
}

// WithSink replaces the default HTTP table sink. Useful for tests and for
// shipping tables somewhere other than the rowship service.
func WithSink(sink TableSink) Option {
	return func(o *options) {
		o.sink = sink
	}
}
