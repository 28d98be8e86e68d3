package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Manager maps sender ids to sessions. Lookups and inserts are safe for
// concurrent use; there is no eviction.
type Manager struct {
	cache sync.Map // senderID → *Session
	count sync.Mutex
	size  int
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{}
}

// GetOrCreate returns the session for senderID, creating it with a fresh
// random token on first contact. Concurrent callers for the same sender all
// observe the same session.
func (m *Manager) GetOrCreate(senderID string) *Session {
	if v, ok := m.cache.Load(senderID); ok {
		return v.(*Session)
	}

	s := &Session{
		SenderID:  senderID,
		Token:     uuid.NewString(),
		CreatedAt: time.Now(),
	}

	actual, loaded := m.cache.LoadOrStore(senderID, s)
	if !loaded {
		m.count.Lock()
		m.size++
		m.count.Unlock()
		slog.Debug("session: created", "sender", senderID)
	}

	return actual.(*Session)
}

// Token is shorthand for GetOrCreate(senderID).Token.
func (m *Manager) Token(senderID string) string {
	return m.GetOrCreate(senderID).Token
}

// Len returns the number of known senders.
func (m *Manager) Len() int {
	m.count.Lock()
	defer m.count.Unlock()
	return m.size
}
