package app

import (
	"sync"

	"github.com/rerun-io/rowship/internal/domain"
	"github.com/rerun-io/rowship/internal/ports"
)

// offsetTracker remembers the source position of every row that has been
// pushed into the batcher but not yet delivered. Once a table is accepted by
// the sink, Commit resolves the positions of its rows so the committed
// per-file offsets can move forward.
//
// The producer tracks, the deliverer commits; both sides may run at once.
type offsetTracker struct {
	mu        sync.Mutex
	positions map[domain.RowID]ports.SourcePosition
}

func newOffsetTracker() *offsetTracker {
	return &offsetTracker{
		positions: make(map[domain.RowID]ports.SourcePosition),
	}
}

// Track records the position just past the row's record.
func (t *offsetTracker) Track(id domain.RowID, pos ports.SourcePosition) {
	t.mu.Lock()
	t.positions[id] = pos
	t.mu.Unlock()
}

// Commit removes the delivered rows from the tracker and returns the highest
// committed offset per source file. Rows the tracker never saw are skipped;
// synthetic rows pushed directly by the library caller have no file position.
func (t *offsetTracker) Commit(rows []domain.Row) map[string]int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	advanced := make(map[string]int64)
	for _, row := range rows {
		pos, ok := t.positions[row.ID]
		if !ok {
			continue
		}
		delete(t.positions, row.ID)
		if pos.Offset > advanced[pos.Path] {
			advanced[pos.Path] = pos.Offset
		}
	}
	return advanced
}

// Pending returns the number of rows tracked but not yet committed.
func (t *offsetTracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.positions)
}
