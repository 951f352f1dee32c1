// Package dedup absorbs at-least-once webhook delivery retries. The ledger
// remembers recently seen provider message identifiers for a short
// retention window; a second delivery inside the window is dropped.
package dedup

import (
	"sync"
	"time"
)

// DefaultWindow is how long a seen message identifier is remembered.
// Upstream retries arrive within seconds; five minutes is generous.
const DefaultWindow = 5 * time.Minute

// Ledger tracks which message identifiers have already been processed.
type Ledger struct {
	mu     sync.Mutex
	seen   map[string]time.Time
	window time.Duration
	now    func() time.Time
}

// NewLedger creates a ledger with the given retention window; window <= 0
// uses DefaultWindow.
func NewLedger(window time.Duration) *Ledger {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Ledger{
		seen:   make(map[string]time.Time),
		window: window,
		now:    time.Now,
	}
}

// IsNew reports whether id has not been seen within the retention window,
// marking it as seen atomically. Entries past the window are purged
// opportunistically on each call, so the map stays bounded by recent
// traffic without a dedicated timer.
func (l *Ledger) IsNew(id string) bool {
	now := l.now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	for k, t := range l.seen {
		if t.Before(cutoff) {
			delete(l.seen, k)
		}
	}

	if _, ok := l.seen[id]; ok {
		return false
	}
	l.seen[id] = now
	return true
}
