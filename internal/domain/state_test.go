package domain

import (
	"testing"
	"time"
)

func TestState_Empty(t *testing.T) {
	var s State
	if !s.Empty() {
		t.Error("zero State.Empty() = false, want true")
	}

	s.Advance("records.jsonl", 100)
	if s.Empty() {
		t.Error("State with offsets Empty() = true, want false")
	}
}

func TestState_Advance(t *testing.T) {
	var s State

	s.Advance("a.jsonl", 100)
	if got := s.OffsetFor("a.jsonl"); got != 100 {
		t.Errorf("OffsetFor(a) = %d, want 100", got)
	}

	// offsets only move forward
	s.Advance("a.jsonl", 50)
	if got := s.OffsetFor("a.jsonl"); got != 100 {
		t.Errorf("OffsetFor(a) after smaller Advance = %d, want 100", got)
	}

	s.Advance("a.jsonl", 250)
	if got := s.OffsetFor("a.jsonl"); got != 250 {
		t.Errorf("OffsetFor(a) = %d, want 250", got)
	}

	if got := s.OffsetFor("missing.jsonl"); got != 0 {
		t.Errorf("OffsetFor(missing) = %d, want 0", got)
	}
}

func TestState_RecordDelivery(t *testing.T) {
	var s State
	now := time.Now()

	s.RecordDelivery(TableID("t-1"), 10, now)
	s.RecordDelivery(TableID("t-2"), 5, now.Add(time.Second))

	if s.LastTableID != "t-2" {
		t.Errorf("LastTableID = %q, want t-2", s.LastTableID)
	}
	if s.TablesSent != 2 {
		t.Errorf("TablesSent = %d, want 2", s.TablesSent)
	}
	if s.RowsSent != 15 {
		t.Errorf("RowsSent = %d, want 15", s.RowsSent)
	}
	if !s.LastSentAt.Equal(now.Add(time.Second)) {
		t.Errorf("LastSentAt = %v, want %v", s.LastSentAt, now.Add(time.Second))
	}
}

func TestState_CloneIsIndependent(t *testing.T) {
	var s State
	s.Advance("a.jsonl", 100)

	clone := s.Clone()
	s.Advance("a.jsonl", 200)
	s.Advance("b.jsonl", 50)

	if got := clone.OffsetFor("a.jsonl"); got != 100 {
		t.Errorf("clone OffsetFor(a) = %d, want 100", got)
	}
	if got := clone.OffsetFor("b.jsonl"); got != 0 {
		t.Errorf("clone OffsetFor(b) = %d, want 0", got)
	}
}
