// Package draft contains the draft generator and the pending-draft store.
package draft

import (
	"fmt"
	"sync"
	"time"

	"github.com/banyanstays/condobot/internal/model"
)

// Store is the in-memory registry of drafts awaiting a human decision.
// Drafts are lost on restart; the messaging platform remains the source of
// truth for what was actually sent, and an operator can regenerate.
type Store struct {
	mu     sync.RWMutex
	drafts map[string]*model.PendingDraft
	now    func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		drafts: make(map[string]*model.PendingDraft),
		now:    time.Now,
	}
}

// Create inserts a draft keyed by its own identifier. Identifiers are
// generated fresh per draft, so a collision is an invariant violation.
func (s *Store) Create(d *model.PendingDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.drafts[d.ID]; exists {
		return fmt.Errorf("draft %s already exists", d.ID)
	}

	s.drafts[d.ID] = d
	return nil
}

// Get returns the draft for id, or false when it was already sent, evicted,
// or never existed.
func (s *Store) Get(id string) (*model.PendingDraft, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.drafts[id]
	return d, ok
}

// Delete removes a draft. Deleting an absent id is not an error.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.drafts, id)
}

// Len returns the number of pending drafts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.drafts)
}

// EvictStale removes every draft older than maxAge and reports how many
// were removed. Correctness does not depend on this running: actions
// against deleted drafts are benign no-ops.
func (s *Store) EvictStale(maxAge time.Duration) int {
	cutoff := s.now().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, d := range s.drafts {
		if d.CreatedAt.Before(cutoff) {
			delete(s.drafts, id)
			evicted++
		}
	}
	return evicted
}
