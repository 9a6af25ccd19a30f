package rowship

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/rerun-io/rowship/internal/adapters/fs"
	httpAdapter "github.com/rerun-io/rowship/internal/adapters/http"
	"github.com/rerun-io/rowship/internal/app"
	"github.com/rerun-io/rowship/internal/batch"
	"github.com/rerun-io/rowship/internal/domain"
	"github.com/rerun-io/rowship/internal/ports"
	"github.com/rerun-io/rowship/pkg/log"
)

// Defaults applied by Config.SetDefaults.
const (
	// DefaultServiceURL is the production ingestion endpoint.
	DefaultServiceURL = "https://api.rowship.io"

	// DefaultPollInterval is how often the agent polls for new records
	// when the source has no change notifications to offer.
	DefaultPollInterval = 500 * time.Millisecond

	// DefaultHTTPTimeout bounds each delivery attempt.
	DefaultHTTPTimeout = 15 * time.Second

	// DefaultFlushNumBytes seals a table once pending rows reach 1 MiB.
	DefaultFlushNumBytes uint64 = 1 << 20

	// DefaultFlushTick seals a non-empty pending table after 200ms.
	DefaultFlushTick = 200 * time.Millisecond
)

// Sentinel errors returned by the public API. Test with errors.Is.
var (
	// ErrAlreadyRunning is returned by Start on a running instance.
	ErrAlreadyRunning = domain.ErrAlreadyRunning

	// ErrAlreadyStarted is returned by Start on an instance that has
	// already run its course; create a new instance instead.
	ErrAlreadyStarted = domain.ErrAlreadyStarted

	// ErrNotRunning is returned by Stop on an instance that is not running.
	ErrNotRunning = domain.ErrNotRunning

	// ErrShutdownTimeout is returned by Stop when the agent did not drain
	// within the shutdown window.
	ErrShutdownTimeout = domain.ErrShutdownTimeout

	// ErrInvalidConfig is returned by New for unusable configuration.
	ErrInvalidConfig = domain.ErrInvalidConfig
)

// Config configures a Rowship instance.
type Config struct {
	// SourceDir is the directory of .jsonl record files to ship.
	// Required unless a custom source is provided via WithSource.
	SourceDir string

	// StateDir is where delivery progress is persisted.
	// Defaults to SourceDir.
	StateDir string

	// StreamID identifies the recording stream on the service. Required.
	StreamID string

	// ServiceURL is the base URL of the ingestion service.
	// Defaults to DefaultServiceURL.
	ServiceURL string

	// AuthKey is the API key sent with each delivery.
	AuthKey string

	// PollInterval is the idle wait between checks for new records.
	// Defaults to DefaultPollInterval.
	PollInterval time.Duration

	// HTTPTimeout bounds each HTTP delivery attempt.
	// Defaults to DefaultHTTPTimeout.
	HTTPTimeout time.Duration

	// FlushNumBytes seals a table once pending rows reach this cumulative
	// size. Zero disables the size trigger.
	FlushNumBytes uint64

	// FlushNumRows seals a table once this many rows are pending.
	// Zero disables the count trigger.
	FlushNumRows uint64

	// FlushTick seals a non-empty pending table after this duration.
	// Zero disables the duration trigger.
	FlushTick time.Duration

	// Once makes the agent ship everything currently available and stop
	// instead of tailing for new records.
	Once bool
}

// SetDefaults fills unset fields with their default values. When all three
// flush triggers are zero the byte and tick defaults are applied, since an
// agent that never seals would ship nothing; set any one trigger explicitly
// to take full control.
func (c *Config) SetDefaults() {
	if c.ServiceURL == "" {
		c.ServiceURL = DefaultServiceURL
	}
	c.ServiceURL = strings.TrimSuffix(c.ServiceURL, "/")
	if c.StateDir == "" {
		c.StateDir = c.SourceDir
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = DefaultHTTPTimeout
	}
	if c.FlushNumBytes == 0 && c.FlushNumRows == 0 && c.FlushTick == 0 {
		c.FlushNumBytes = DefaultFlushNumBytes
		c.FlushTick = DefaultFlushTick
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.StreamID == "" {
		return fmt.Errorf("%w: StreamID is required", domain.ErrInvalidConfig)
	}
	if c.SourceDir == "" && c.StateDir == "" {
		return fmt.Errorf("%w: SourceDir or StateDir is required", domain.ErrInvalidConfig)
	}
	return nil
}

// Rowship is a record shipping agent that can be embedded in other
// applications. Use New() to create an instance, then Start() to begin
// shipping. Instances are single-use: once stopped they cannot be
// restarted.
type Rowship struct {
	config    Config
	opts      options
	lifecycle *app.Lifecycle
	agent     *app.Agent
	source    ports.RowSource
	sink      ports.TableSink
	stateRepo ports.StateRepository
	logger    ports.Logger

	mu      sync.RWMutex
	started bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// New creates a new Rowship instance with the given configuration.
// The instance is created in StateStopped; call Start() to begin shipping.
// Returns an error if the configuration is invalid.
func New(cfg Config, opts ...Option) (*Rowship, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	o := defaultOptions(httpClient)
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = log.Discard
	}

	var emitter eventEmitterWrapper
	if o.eventHandler != nil {
		emitter = eventEmitterWrapper{handler: o.eventHandler}
	}

	lifecycle := app.NewLifecycle(logger, &emitter)

	source := o.source
	if source == nil {
		if cfg.SourceDir == "" {
			return nil, fmt.Errorf("%w: SourceDir is required without WithSource", domain.ErrInvalidConfig)
		}
		source = fs.NewRecordSource(cfg.SourceDir, logger)
	}

	sink := o.sink
	if sink == nil {
		sink = httpAdapter.NewTableSink(o.httpClient, logger)
	}

	stateRepo := fs.NewStateFileRepository(cfg.StateDir)

	agentCfg := app.AgentConfig{
		PollInterval: cfg.PollInterval,
		Once:         cfg.Once,
		StreamID:     cfg.StreamID,
		Hostname:     hostname(),
		OSArch:       runtime.GOOS + "/" + runtime.GOARCH,
		AuthKey:      cfg.AuthKey,
		ServiceURL:   cfg.ServiceURL,
	}

	batchCfg := batch.Config{
		FlushNumBytes: cfg.FlushNumBytes,
		FlushNumRows:  cfg.FlushNumRows,
		FlushTick:     cfg.FlushTick,
	}

	agent, err := app.NewAgent(agentCfg, batchCfg, source, sink, stateRepo, logger, &emitter)
	if err != nil {
		return nil, err
	}

	return &Rowship{
		config:    cfg,
		opts:      o,
		lifecycle: lifecycle,
		agent:     agent,
		source:    source,
		sink:      sink,
		stateRepo: stateRepo,
		logger:    logger,
	}, nil
}

// Start begins shipping in the background.
// Returns immediately after starting the agent goroutine.
// The provided context is used for the lifetime of the shipping operation.
func (r *Rowship) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	if r.started {
		return domain.ErrAlreadyStarted
	}
	r.started = true

	if err := r.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.ctx = runCtx
	r.cancel = cancel
	r.lifecycle.SetCancel(cancel)

	r.lifecycle.AddWorker()
	go func() {
		defer r.lifecycle.WorkerDone()

		if err := r.lifecycle.TransitionTo(app.StateRunning, "agent starting"); err != nil {
			// Stop() won the race before the agent came up.
			r.logger.Warn("start aborted", ports.Err(err))
			r.agent.Batcher().Close()
			return
		}

		err := r.agent.Run(runCtx)

		if err != nil && !errors.Is(err, context.Canceled) {
			r.logger.Error("agent error", ports.Err(err))
			_ = r.lifecycle.TransitionTo(app.StateCrashed, err.Error())
			return
		}

		// Once mode or cancellation: the run loop is done, so finish the
		// lifecycle unless Stop() is already driving it there.
		_ = r.lifecycle.TransitionTo(app.StateStopping, "run loop finished")
		_ = r.lifecycle.TransitionTo(app.StateStopped, "run loop finished")
	}()

	return nil
}

// Stop gracefully shuts down the agent.
// Pending rows are sealed and delivered before the output drains.
// Waits up to 30 seconds before giving up.
// Returns nil on graceful shutdown, ErrShutdownTimeout if the drain hung.
func (r *Rowship) Stop() error {
	r.mu.Lock()

	if !r.lifecycle.CanStop() {
		r.mu.Unlock()
		return domain.ErrNotRunning
	}

	if err := r.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		r.mu.Unlock()
		return err
	}

	if r.cancel != nil {
		r.cancel()
	}

	r.mu.Unlock()

	err := r.lifecycle.WaitWithTimeout(app.ShutdownTimeout)

	if err != nil {
		_ = r.lifecycle.TransitionTo(app.StateCrashed, "shutdown timeout")
	} else {
		_ = r.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
	}

	return err
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (r *Rowship) Status() State {
	return convertState(r.lifecycle.State())
}

// PushRow hands a row directly to the shipping pipeline, bypassing the
// record source. The row is batched and delivered exactly like rows read
// from files, but carries no source offset, so it is not replayed after a
// crash. Never blocks.
func (r *Rowship) PushRow(row Row) {
	r.agent.Batcher().PushRow(row)
}

// Flush seals whatever rows are pending into a table immediately instead
// of waiting for a trigger.
func (r *Rowship) Flush() {
	r.agent.Batcher().Flush()
}

// Progress returns a snapshot of the agent's delivery progress.
// Safe to call concurrently from any goroutine.
func (r *Rowship) Progress() Progress {
	return r.agent.State()
}

// hostname returns the current hostname.
func hostname() string {
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return "unknown"
}

// eventEmitterWrapper adapts EventHandler to the internal emitter interfaces.
type eventEmitterWrapper struct {
	handler EventHandler
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: convertState(previous),
		Current:  convertState(current),
		Reason:   reason,
	})
}

func (e *eventEmitterWrapper) OnSendSuccess(rowCount int, sizeBytes uint64, duration time.Duration) {
	if e.handler == nil {
		return
	}
	e.handler.OnSendSuccess(SendSuccessEvent{
		RowCount:  rowCount,
		SizeBytes: sizeBytes,
		Duration:  duration,
	})
}

func (e *eventEmitterWrapper) OnSendError(err error, rowCount int, retryable bool) {
	if e.handler == nil {
		return
	}
	e.handler.OnSendError(SendErrorEvent{
		Error:     err,
		RowCount:  rowCount,
		Retryable: retryable,
	})
}

func convertState(s app.State) State {
	switch s {
	case app.StateStopped:
		return StateStopped
	case app.StateStarting:
		return StateStarting
	case app.StateRunning:
		return StateRunning
	case app.StateStopping:
		return StateStopping
	case app.StateCrashed:
		return StateCrashed
	default:
		return StateStopped
	}
}
