package batch

import (
	"sync"
	"time"

	"github.com/rerun-io/rowship/internal/domain"
	"github.com/rerun-io/rowship/internal/ports"
	"github.com/rerun-io/rowship/internal/queue"
)

// trigger names the condition that sealed a table, for logging.
type trigger string

const (
	triggerBytes    trigger = "bytes"
	triggerRows     trigger = "rows"
	triggerTick     trigger = "tick"
	triggerManual   trigger = "manual"
	triggerShutdown trigger = "shutdown"
)

// pending is the current open accumulation. Guarded by Batcher.mu.
type pending struct {
	rows      []domain.Row
	sizeBytes uint64
	openedAt  time.Time // zero while empty; set again on first append after a seal
}

func (p *pending) append(row domain.Row, now time.Time) {
	if len(p.rows) == 0 {
		p.openedAt = now
	}
	p.rows = append(p.rows, row)
	p.sizeBytes += row.SizeBytes()
}

func (p *pending) reset() {
	p.rows = nil
	p.sizeBytes = 0
	p.openedAt = time.Time{}
}

// Batcher turns a concurrent stream of rows into a stream of tables.
// Producers call PushRow from any number of goroutines; sealed tables come
// out of Tables in seal order. One background goroutine owns the duration
// trigger; every other trigger runs inside the caller.
//
// All four seal paths (threshold, tick, Flush, Close) serialize on one
// mutex, and the hand-off to the output queue happens under that mutex, so
// a given span of rows is sealed at most once and emission order matches
// seal order.
type Batcher struct {
	cfg Config
	log ports.Logger

	mu     sync.Mutex
	pend   pending
	closed bool

	out *queue.Unbounded[domain.Table]

	stopTick  chan struct{}
	tickDone  chan struct{}
	closeOnce sync.Once
}

// Option configures optional Batcher behavior.
type Option func(*Batcher)

// WithLogger sets the engine's logger. Default is no output.
func WithLogger(logger ports.Logger) Option {
	return func(b *Batcher) {
		b.log = logger
	}
}

// New creates a Batcher and starts its background flush goroutine.
// The error return is reserved for failure to start that goroutine; with
// the current runtime it is always nil, but callers should check it.
func New(cfg Config, opts ...Option) (*Batcher, error) {
	b := &Batcher{
		cfg:      cfg.normalized(),
		log:      noopLogger{},
		out:      queue.NewUnbounded[domain.Table](),
		stopTick: make(chan struct{}),
		tickDone: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	go b.tickLoop()
	return b, nil
}

// PushRow appends row to the pending batch. Safe for concurrent use and
// never blocks on the consumer. If the append carries the cumulative size
// or count to its threshold, the seal happens synchronously inside this
// call, with the triggering row included. After Close the row is dropped.
func (b *Batcher) PushRow(row domain.Row) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		b.log.Debug("row pushed after close, dropping", ports.Uint64("row_id", uint64(row.ID)))
		return
	}

	b.pend.append(row, time.Now())

	switch {
	case b.pend.sizeBytes >= b.cfg.FlushNumBytes:
		b.sealLocked(triggerBytes)
	case uint64(len(b.pend.rows)) >= b.cfg.FlushNumRows:
		b.sealLocked(triggerRows)
	}
}

// Flush synchronously seals and hands off whatever is pending. Nothing
// pending means nothing is emitted. When Flush returns, the hand-off to
// the output queue has completed and the table (if any) is visible to the
// consumer side.
func (b *Batcher) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.sealLocked(triggerManual)
}

// Tables returns the receive side of the output channel. Every call
// returns the same channel. It delivers sealed tables in seal order and is
// closed exactly once, by Close, after the final table has been queued.
func (b *Batcher) Tables() <-chan domain.Table {
	return b.out.C()
}

// Close shuts the batcher down: it stops the background goroutine, seals
// everything still pending into one final table (none if nothing is
// pending), and closes the output channel. Idempotent; later PushRow and
// Flush calls are no-ops. The returned error is always nil and exists to
// satisfy io.Closer.
func (b *Batcher) Close() error {
	b.closeOnce.Do(func() {
		close(b.stopTick)
		<-b.tickDone

		b.mu.Lock()
		b.sealLocked(triggerShutdown)
		b.closed = true
		b.mu.Unlock()

		b.out.Close()
		b.log.Debug("batcher closed")
	})
	return nil
}

// sealLocked converts the pending rows into a table and hands it to the
// output queue. Caller must hold mu. Zero pending rows seal nothing.
func (b *Batcher) sealLocked(why trigger) {
	if len(b.pend.rows) == 0 {
		return
	}

	table := domain.TableFromRows(domain.NewTableID(), b.pend.rows)
	openFor := time.Since(b.pend.openedAt)
	b.pend.reset()
	b.out.Push(table)

	b.log.Debug("sealed table",
		ports.String("table_id", string(table.ID)),
		ports.String("trigger", string(why)),
		ports.Int("rows", table.RowCount()),
		ports.Uint64("bytes", table.TotalSizeBytes),
		ports.Duration("open_for", openFor),
	)
}

// tickLoop owns the duration trigger: on each tick it seals the pending
// batch if it is non-empty and has been open for at least FlushTick. Any
// seal resets openedAt, so the clock restarts whenever another trigger
// fires. A pending batch therefore waits at most two ticks.
func (b *Batcher) tickLoop() {
	defer close(b.tickDone)

	ticker := time.NewTicker(b.cfg.FlushTick)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopTick:
			return
		case <-ticker.C:
			b.mu.Lock()
			if len(b.pend.rows) > 0 && time.Since(b.pend.openedAt) >= b.cfg.FlushTick {
				b.sealLocked(triggerTick)
			}
			b.mu.Unlock()
		}
	}
}

// noopLogger is the default when no WithLogger option is given.
type noopLogger struct{}

func (noopLogger) Debug(msg string, fields ...ports.Field) {}
func (noopLogger) Info(msg string, fields ...ports.Field)  {}
func (noopLogger) Warn(msg string, fields ...ports.Field)  {}
func (noopLogger) Error(msg string, fields ...ports.Field) {}
