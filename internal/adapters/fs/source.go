package fs

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rerun-io/rowship/internal/domain"
	"github.com/rerun-io/rowship/internal/ports"
)

const recordExt = ".jsonl"

// RecordSource implements ports.RowSource over a directory of append-only
// JSONL record files. Files are consumed in lexical order, which is the
// order writers create them in; only the newest file is expected to grow.
//
// A single goroutine owns the source. Next is not safe for concurrent use,
// but WaitForChange may be called between Next calls to block until the
// directory changes.
type RecordSource struct {
	dir    string
	logger ports.Logger

	watcher   *fsnotify.Watcher
	changed   chan struct{}
	watchDone chan struct{}

	resume  map[string]int64
	seen    map[string]bool
	pending []string

	cur     *os.File
	curPath string
	curOff  int64
	rd      *bufio.Reader
}

// NewRecordSource creates a source reading *.jsonl files under dir.
func NewRecordSource(dir string, logger ports.Logger) *RecordSource {
	return &RecordSource{
		dir:    dir,
		logger: logger,
	}
}

// Open prepares the source and resumes from the offsets recorded in state.
func (s *RecordSource) Open(ctx context.Context, state domain.State) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("open record source: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("open record source: %s is not a directory", s.dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("open record source: %w", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", s.dir, err)
	}

	s.watcher = watcher
	s.changed = make(chan struct{}, 1)
	s.watchDone = make(chan struct{})
	s.resume = make(map[string]int64, len(state.Offsets))
	for path, off := range state.Offsets {
		s.resume[path] = off
	}
	s.seen = make(map[string]bool)
	s.rd = bufio.NewReader(nil)

	go s.watch()

	if err := s.rescan(); err != nil {
		s.Close()
		return err
	}

	s.logger.Info("record source opened",
		ports.String("dir", s.dir),
		ports.Int("files", len(s.pending)))
	return nil
}

// watch pumps filesystem events into the coalesced change channel.
func (s *RecordSource) watch() {
	defer close(s.watchDone)
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Ext(event.Name) != recordExt {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			select {
			case s.changed <- struct{}{}:
			default:
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("record source watch error", ports.Err(err))
		}
	}
}

// WaitForChange blocks until the watched directory changes, the context is
// canceled, or max elapses. Callers use it to pace polling after Next
// reported that the source is caught up.
func (s *RecordSource) WaitForChange(ctx context.Context, max time.Duration) {
	timer := time.NewTimer(max)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-s.changed:
	case <-timer.C:
	}
}

// Next returns the next row and the position just past its record.
// Returns io.EOF when the source is caught up.
func (s *RecordSource) Next(ctx context.Context) (domain.Row, ports.SourcePosition, error) {
	var none ports.SourcePosition
	for {
		if err := ctx.Err(); err != nil {
			return domain.Row{}, none, err
		}
		if s.cur == nil {
			ok, err := s.openNext()
			if err != nil {
				return domain.Row{}, none, err
			}
			if !ok {
				return domain.Row{}, none, io.EOF
			}
		}

		line, err := s.rd.ReadBytes('\n')
		switch {
		case err == nil:
			s.curOff += int64(len(line))
			pos := ports.SourcePosition{Path: s.curPath, Offset: s.curOff}
			row, perr := parseRecord(line)
			if perr != nil {
				if errors.Is(perr, errBlankLine) {
					continue
				}
				s.logger.Warn("skipping malformed record",
					ports.String("path", s.curPath),
					ports.Int64("offset", s.curOff),
					ports.Err(perr))
				continue
			}
			return row, pos, nil

		case errors.Is(err, io.EOF):
			if len(line) > 0 {
				// The writer is mid-append. Rewind so the next attempt
				// sees the whole record once the newline lands.
				if _, serr := s.cur.Seek(s.curOff, io.SeekStart); serr != nil {
					return domain.Row{}, none, serr
				}
				s.rd.Reset(s.cur)
				return domain.Row{}, none, io.EOF
			}
			if rerr := s.rescan(); rerr != nil {
				return domain.Row{}, none, rerr
			}
			if len(s.pending) > 0 {
				// A newer file exists, so this one is finished.
				s.closeCurrent()
				continue
			}
			return domain.Row{}, none, io.EOF

		default:
			return domain.Row{}, none, err
		}
	}
}

// openNext opens the oldest pending file, seeking past its committed offset.
func (s *RecordSource) openNext() (bool, error) {
	if len(s.pending) == 0 {
		if err := s.rescan(); err != nil {
			return false, err
		}
	}
	for len(s.pending) > 0 {
		path := s.pending[0]
		s.pending = s.pending[1:]

		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				s.logger.Warn("record file vanished", ports.String("path", path))
				continue
			}
			return false, err
		}

		off := s.resume[path]
		if off > 0 {
			info, err := f.Stat()
			if err != nil {
				f.Close()
				return false, err
			}
			if off > info.Size() {
				s.logger.Warn("committed offset past end of file, rereading",
					ports.String("path", path),
					ports.Int64("offset", off))
				off = 0
			}
			if _, err := f.Seek(off, io.SeekStart); err != nil {
				f.Close()
				return false, err
			}
		}

		s.cur = f
		s.curPath = path
		s.curOff = off
		s.rd.Reset(f)
		s.logger.Debug("reading record file",
			ports.String("path", path),
			ports.Int64("offset", off))
		return true, nil
	}
	return false, nil
}

// rescan picks up record files that appeared since the last scan.
func (s *RecordSource) rescan() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("scan %s: %w", s.dir, err)
	}
	var added []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != recordExt {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		if s.seen[path] {
			continue
		}
		s.seen[path] = true
		added = append(added, path)
	}
	sort.Strings(added)
	s.pending = append(s.pending, added...)
	return nil
}

func (s *RecordSource) closeCurrent() {
	if s.cur != nil {
		s.cur.Close()
		s.cur = nil
		s.curPath = ""
		s.curOff = 0
	}
}

// Close releases the watcher and any open file.
func (s *RecordSource) Close() error {
	s.closeCurrent()
	if s.watcher != nil {
		err := s.watcher.Close()
		<-s.watchDone
		s.watcher = nil
		return err
	}
	return nil
}

var errBlankLine = errors.New("blank line")

// parseRecord decodes one JSONL line into a row.
func parseRecord(line []byte) (domain.Row, error) {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 {
		return domain.Row{}, errBlankLine
	}
	var rec domain.RowRecord
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		return domain.Row{}, err
	}
	return rec.ToRow(), nil
}
