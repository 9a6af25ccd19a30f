package rowship

import (
	"github.com/rerun-io/rowship/internal/batch"
	"github.com/rerun-io/rowship/internal/domain"
)

// Engine types, re-exported so the batching engine can be used on its own
// without the shipping agent.
type (
	// Row is a single logged record: one entity, one time point.
	Row = domain.Row

	// RowID is the process-unique, creation-ordered row identifier.
	RowID = domain.RowID

	// Cell is one component's payload within a row.
	Cell = domain.Cell

	// TimePoint maps timeline names to integer time values.
	TimePoint = domain.TimePoint

	// Table is an ordered, immutable batch of rows sealed under one id.
	Table = domain.Table

	// TableID identifies a sealed table.
	TableID = domain.TableID

	// Batcher turns a concurrent stream of rows into a stream of tables.
	// Push rows with PushRow, receive sealed tables from Tables().
	Batcher = batch.Batcher

	// BatcherConfig controls when a Batcher seals the pending rows.
	// Whichever trigger fires first wins; zero disables a trigger.
	BatcherConfig = batch.Config

	// BatcherOption configures optional Batcher behavior.
	BatcherOption = batch.Option
)

// NewRow builds a row with a freshly assigned RowID.
func NewRow(entityPath string, tp TimePoint, numInstances uint32, cells []Cell) Row {
	return domain.NewRow(entityPath, tp, numInstances, cells)
}

// NewBatcher creates a standalone batching engine. The caller owns the
// consumer side: drain Tables() and call Close when done.
func NewBatcher(cfg BatcherConfig, opts ...BatcherOption) (*Batcher, error) {
	return batch.New(cfg, opts...)
}

// WithBatcherLogger sets the logger a standalone Batcher reports through.
func WithBatcherLogger(logger Logger) BatcherOption {
	return batch.WithLogger(logger)
}

// DefaultBatcherConfig seals at 1 MiB of pending rows or after 200ms,
// whichever comes first.
func DefaultBatcherConfig() BatcherConfig {
	return batch.DefaultConfig()
}

// NeverBatcherConfig disables every automatic trigger; only Flush and
// Close seal tables.
func NeverBatcherConfig() BatcherConfig {
	return batch.NeverConfig()
}

// AlwaysBatcherConfig seals after every single row.
func AlwaysBatcherConfig() BatcherConfig {
	return batch.AlwaysConfig()
}
