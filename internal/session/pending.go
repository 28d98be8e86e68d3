package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultPendingTTL bounds how long a transfer awaits confirmation.
const DefaultPendingTTL = 15 * time.Minute

// Pending is a transfer requested in chat and awaiting confirmation in the
// web view.
type Pending struct {
	ID          string
	Amount      string
	DestAccount string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// PendingStore holds at most one pending transfer per sender.
type PendingStore struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	items map[string]Pending
}

// NewPendingStore creates a store whose entries expire after ttl.
// A non-positive ttl selects DefaultPendingTTL.
func NewPendingStore(ttl time.Duration) *PendingStore {
	if ttl <= 0 {
		ttl = DefaultPendingTTL
	}
	return &PendingStore{ttl: ttl, now: time.Now, items: make(map[string]Pending)}
}

// SetClock replaces the time source. Used by tests.
func (s *PendingStore) SetClock(now func() time.Time) { s.now = now }

// Put records a pending transfer for senderID, replacing any previous one.
func (s *PendingStore) Put(senderID, amount, destAccount string) Pending {
	now := s.now()
	p := Pending{
		ID:          uuid.NewString(),
		Amount:      amount,
		DestAccount: destAccount,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
	}
	s.mu.Lock()
	s.items[senderID] = p
	s.mu.Unlock()
	return p
}

// Take removes and returns the pending transfer for senderID when its ID
// matches id. A mismatched id leaves the entry in place. Expired entries
// are removed and reported as absent.
func (s *PendingStore) Take(senderID, id string) (Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[senderID]
	if !ok || p.ID != id {
		return Pending{}, false
	}
	delete(s.items, senderID)
	if !s.now().Before(p.ExpiresAt) {
		return Pending{}, false
	}
	return p, true
}

// Peek returns the live pending transfer for senderID without removing it.
func (s *PendingStore) Peek(senderID string) (Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[senderID]
	if !ok || !s.now().Before(p.ExpiresAt) {
		return Pending{}, false
	}
	return p, true
}

// Sweep drops expired entries and returns how many were removed.
func (s *PendingStore) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, p := range s.items {
		if !now.Before(p.ExpiresAt) {
			delete(s.items, k)
			n++
		}
	}
	return n
}

// Len returns the number of stored entries, expired ones included.
func (s *PendingStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
