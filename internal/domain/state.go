package domain

import "time"

// State is the agent's persisted delivery progress. Offsets record, per
// source file, the byte position up to which rows have been delivered in a
// sealed table; a restart resumes reading just past them. Tables themselves
// are never persisted.
type State struct {
	// StreamID identifies the recording stream this agent ships for
	StreamID string `json:"stream_id"`

	// Offsets maps source file path to the committed byte offset
	Offsets map[string]int64 `json:"offsets,omitempty"`

	// LastTableID is the identifier of the last delivered table
	LastTableID string `json:"last_table_id,omitempty"`

	// TablesSent counts delivered tables across the agent's lifetime
	TablesSent uint64 `json:"tables_sent"`

	// RowsSent counts delivered rows across the agent's lifetime
	RowsSent uint64 `json:"rows_sent"`

	// LastSentAt is the wall-clock time of the last successful delivery
	LastSentAt time.Time `json:"last_sent_at,omitempty"`
}

// Empty returns true if the state carries no progress.
func (s State) Empty() bool {
	return s.StreamID == "" && len(s.Offsets) == 0 && s.TablesSent == 0
}

// Clone returns a copy that shares nothing with the receiver.
func (s State) Clone() State {
	out := s
	if s.Offsets != nil {
		out.Offsets = make(map[string]int64, len(s.Offsets))
		for path, off := range s.Offsets {
			out.Offsets[path] = off
		}
	}
	return out
}

// OffsetFor returns the committed offset for the given source path,
// or 0 if none has been recorded.
func (s State) OffsetFor(path string) int64 {
	return s.Offsets[path]
}

// Advance records a committed offset for the given source path.
// Offsets only move forward; a smaller value is ignored.
func (s *State) Advance(path string, offset int64) {
	if s.Offsets == nil {
		s.Offsets = make(map[string]int64)
	}
	if offset > s.Offsets[path] {
		s.Offsets[path] = offset
	}
}

// RecordDelivery updates the delivery counters after a table was accepted
// by the sink.
func (s *State) RecordDelivery(id TableID, rowCount int, at time.Time) {
	s.LastTableID = string(id)
	s.TablesSent++
	s.RowsSent += uint64(rowCount)
	s.LastSentAt = at
}
