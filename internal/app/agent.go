package app

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/rerun-io/rowship/internal/batch"
	"github.com/rerun-io/rowship/internal/domain"
	"github.com/rerun-io/rowship/internal/ports"
)

// DrainTimeout bounds delivery of the final tables after shutdown begins.
const DrainTimeout = 15 * time.Second

// DefaultPollInterval is used when AgentConfig.PollInterval is unset.
const DefaultPollInterval = 500 * time.Millisecond

// AgentConfig contains configuration for the agent loops.
type AgentConfig struct {
	PollInterval   time.Duration
	BackoffInitial time.Duration
	BackoffMax     time.Duration
	Once           bool

	// Metadata for send operations
	StreamID   string
	Hostname   string
	OSArch     string
	AuthKey    string
	ServiceURL string
}

// SendEventEmitter is called on delivery success or failure.
type SendEventEmitter interface {
	OnSendSuccess(rowCount int, sizeBytes uint64, duration time.Duration)
	OnSendError(err error, rowCount int, retryable bool)
}

// changeWaiter is an optional upgrade a row source can offer: block until the
// source may have new records instead of sleeping a fixed interval.
type changeWaiter interface {
	WaitForChange(ctx context.Context, max time.Duration)
}

// Agent wires the row source, the batcher, and the table sink together.
// One goroutine reads rows and pushes them into the batcher; a second drains
// sealed tables and delivers them, committing source offsets after each
// accepted table. Tables leave in the order they were sealed.
type Agent struct {
	config    AgentConfig
	source    ports.RowSource
	sink      ports.TableSink
	stateRepo ports.StateRepository
	logger    ports.Logger
	batcher   *batch.Batcher
	offsets   *offsetTracker
	emitter   SendEventEmitter

	mu    sync.RWMutex
	state domain.State
}

// NewAgent creates an agent with the given dependencies. The batcher starts
// immediately; call Run to begin reading and delivering.
func NewAgent(
	config AgentConfig,
	batchCfg batch.Config,
	source ports.RowSource,
	sink ports.TableSink,
	stateRepo ports.StateRepository,
	logger ports.Logger,
	emitter SendEventEmitter,
) (*Agent, error) {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	if config.BackoffInitial <= 0 {
		config.BackoffInitial = DefaultBackoffInitial
	}
	if config.BackoffMax <= 0 {
		config.BackoffMax = DefaultBackoffMax
	}

	batcher, err := batch.New(batchCfg, batch.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	return &Agent{
		config:    config,
		source:    source,
		sink:      sink,
		stateRepo: stateRepo,
		logger:    logger,
		batcher:   batcher,
		offsets:   newOffsetTracker(),
		emitter:   emitter,
	}, nil
}

// Batcher exposes the agent's batching engine so callers can push rows
// directly or force a flush.
func (a *Agent) Batcher() *batch.Batcher {
	return a.batcher
}

// State returns a snapshot of the agent's delivery progress.
func (a *Agent) State() domain.State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state.Clone()
}

// Run executes the produce and deliver loops until the context is canceled,
// the source fails, or (in Once mode) the source is exhausted. Pending rows
// are sealed and delivery of the remaining tables is attempted before Run
// returns.
func (a *Agent) Run(ctx context.Context) error {
	state, err := a.stateRepo.Load(ctx)
	if err != nil {
		a.logger.Error("failed to load state", ports.Err(err))
		state = domain.State{}
	}
	if a.config.StreamID != "" {
		state.StreamID = a.config.StreamID
	}
	a.mu.Lock()
	a.state = state
	a.mu.Unlock()

	if err := a.source.Open(ctx, state); err != nil {
		a.batcher.Close()
		return err
	}
	defer a.source.Close()

	deliverDone := make(chan struct{})
	go func() {
		defer close(deliverDone)
		a.deliver(ctx)
	}()

	produceErr := a.produce(ctx)

	// Seal pending rows and end the tables channel so the deliverer drains.
	a.batcher.Close()
	<-deliverDone

	if produceErr != nil && !errors.Is(produceErr, context.Canceled) {
		return produceErr
	}
	return ctx.Err()
}

// produce reads rows from the source and pushes them into the batcher.
func (a *Agent) produce(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		row, pos, err := a.source.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				if a.config.Once {
					return nil
				}
				a.waitForRecords(ctx)
				continue
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			a.logger.Error("record source failed", ports.Err(err))
			return err
		}

		a.offsets.Track(row.ID, pos)
		a.batcher.PushRow(row)
	}
}

// waitForRecords pauses until the source may have new records.
func (a *Agent) waitForRecords(ctx context.Context) {
	if w, ok := a.source.(changeWaiter); ok {
		w.WaitForChange(ctx, a.config.PollInterval)
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(a.config.PollInterval):
	}
}

// deliver sends sealed tables in order until the tables channel closes.
// After the run context is canceled, remaining tables get a bounded drain
// context so the final flush still reaches the service.
func (a *Agent) deliver(ctx context.Context) {
	bo := newBackoff(a.config.BackoffInitial, a.config.BackoffMax)

	var drainCtx context.Context
	var drainCancel context.CancelFunc
	defer func() {
		if drainCancel != nil {
			drainCancel()
		}
	}()
	sendCtx := func() context.Context {
		if ctx.Err() == nil {
			return ctx
		}
		if drainCtx == nil {
			drainCtx, drainCancel = context.WithTimeout(context.Background(), DrainTimeout)
		}
		return drainCtx
	}

	for table := range a.batcher.Tables() {
		if err := a.sendTable(sendCtx, table, bo); err != nil {
			a.logger.Error("table dropped",
				ports.String("table_id", string(table.ID)),
				ports.Int("rows", table.RowCount()),
				ports.Err(err),
			)
		}
	}
}

// sendTable delivers one table, retrying with backoff until it is accepted
// or the send context is exhausted.
func (a *Agent) sendTable(ctxFn func() context.Context, table domain.Table, bo *backoff) error {
	metadata := ports.SendMetadata{
		StreamID:   a.config.StreamID,
		Hostname:   a.config.Hostname,
		OSArch:     a.config.OSArch,
		AuthKey:    a.config.AuthKey,
		ServiceURL: a.config.ServiceURL,
	}

	var lastErr error
	for {
		ctx := ctxFn()
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return lastErr
			}
			return err
		}

		start := time.Now()
		err := a.sink.Send(ctx, table, metadata)
		duration := time.Since(start)
		if err == nil {
			a.commitDelivery(ctx, table, duration)
			bo.Reset()
			return nil
		}

		lastErr = err
		a.logger.Error("send failed",
			ports.Err(err),
			ports.Int("rows", table.RowCount()),
			ports.Uint64("bytes", table.TotalSizeBytes),
			ports.Duration("retry_in", bo.Current()),
		)
		if a.emitter != nil {
			a.emitter.OnSendError(err, table.RowCount(), true)
		}
		bo.SleepContext(ctx)
	}
}

// commitDelivery advances committed offsets past the delivered rows and
// persists the updated state.
func (a *Agent) commitDelivery(ctx context.Context, table domain.Table, duration time.Duration) {
	a.logger.Info("sent table",
		ports.String("table_id", string(table.ID)),
		ports.Int("rows", table.RowCount()),
		ports.Uint64("bytes", table.TotalSizeBytes),
		ports.Duration("duration", duration),
	)
	if a.emitter != nil {
		a.emitter.OnSendSuccess(table.RowCount(), table.TotalSizeBytes, duration)
	}

	advanced := a.offsets.Commit(table.Rows)

	a.mu.Lock()
	for path, off := range advanced {
		a.state.Advance(path, off)
	}
	a.state.RecordDelivery(table.ID, table.RowCount(), time.Now())
	snapshot := a.state.Clone()
	a.mu.Unlock()

	if err := a.stateRepo.Save(ctx, snapshot); err != nil {
		a.logger.Error("failed to save state", ports.Err(err))
	}
}
