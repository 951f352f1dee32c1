package dedup

import (
	"testing"
	"time"
)

func TestIsNewWithinWindow(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	l := NewLedger(5 * time.Minute)
	l.now = func() time.Time { return now }

	if !l.IsNew("msg-1") {
		t.Fatal("first sighting should be new")
	}
	if l.IsNew("msg-1") {
		t.Fatal("second sighting within window should be a duplicate")
	}

	// A different id is independent.
	if !l.IsNew("msg-2") {
		t.Fatal("unrelated id should be new")
	}
}

func TestIsNewAfterWindowElapses(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	l := NewLedger(5 * time.Minute)
	l.now = func() time.Time { return now }

	if !l.IsNew("msg-1") {
		t.Fatal("first sighting should be new")
	}

	now = now.Add(6 * time.Minute)
	if !l.IsNew("msg-1") {
		t.Fatal("sighting after the window should be processed as new")
	}
}

func TestExpiredEntriesArePurged(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	l := NewLedger(5 * time.Minute)
	l.now = func() time.Time { return now }

	for _, id := range []string{"a", "b", "c"} {
		l.IsNew(id)
	}

	now = now.Add(10 * time.Minute)
	l.IsNew("d")

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.seen) != 1 {
		t.Errorf("ledger size = %d, want 1 after purge", len(l.seen))
	}
}
