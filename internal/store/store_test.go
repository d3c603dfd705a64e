package store

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "samvad.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_SlotRoundTrip(t *testing.T) {
	s := openTestStore(t)

	if err := s.SaveSlot("chat-1", "origin", "delhi"); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveSlot("chat-1", "active_plan", true); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveSlot("chat-1", "origin", "mumbai"); err != nil {
		t.Fatal(err)
	}

	slots, err := s.LoadSlots("chat-1")
	if err != nil {
		t.Fatal(err)
	}
	if slots["origin"] != "mumbai" {
		t.Errorf("expected upserted value, got %v", slots["origin"])
	}
	if slots["active_plan"] != true {
		t.Errorf("boolean slot should round-trip, got %T %v", slots["active_plan"], slots["active_plan"])
	}

	other, err := s.LoadSlots("chat-2")
	if err != nil {
		t.Fatal(err)
	}
	if len(other) != 0 {
		t.Errorf("slots must be per-conversation, got %v", other)
	}
}

func TestStore_TurnLogOrder(t *testing.T) {
	s := openTestStore(t)

	s.LogTurn("chat-1", "user", "book me a trip", "book_trip", "")
	s.LogTurn("chat-1", "bot", "Where from?", "", "utter_ask_origin")
	s.LogTurn("chat-1", "user", "delhi", "inform", "")

	turns, err := s.RecentTurns("chat-1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(turns))
	}
	if turns[0].Content != "book me a trip" || turns[2].Content != "delhi" {
		t.Errorf("turns not in chronological order: %+v", turns)
	}
}

func TestStore_IdleSessions(t *testing.T) {
	s := openTestStore(t)

	if err := s.TouchSession("chat-idle", "book_trip"); err != nil {
		t.Fatal(err)
	}
	if err := s.TouchSession("chat-no-plan", ""); err != nil {
		t.Fatal(err)
	}

	// Nothing is idle against a large threshold.
	idle, err := s.IdleSessions(time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if len(idle) != 0 {
		t.Errorf("expected no idle sessions, got %v", idle)
	}

	// Against a zero threshold, only the session with an active plan shows.
	idle, err = s.IdleSessions(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(idle) != 1 || idle[0] != "chat-idle" {
		t.Errorf("expected only chat-idle, got %v", idle)
	}
}
