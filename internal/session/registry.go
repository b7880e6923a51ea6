// Package session holds the per-conversation orchestrator instances and their
// in-memory conversation windows.
package session

import (
	"log/slog"
	"sync"
	"time"

	"campus-assistant/internal/assistant"
)

// Session pairs one Engine with the lock that serializes its turns. Turns
// within a session must run one at a time because each turn reads the window
// state left by the previous one; turns across sessions are independent.
type Session struct {
	ID     string
	Engine assistant.Engine

	mu       sync.Mutex
	lastUsed time.Time
}

// Lock blocks until this session's current turn, if any, has finished.
func (s *Session) Lock() {
	s.mu.Lock()
}

// Unlock releases the session for the next turn.
func (s *Session) Unlock() {
	s.mu.Unlock()
}

// Registry is an LRU-bounded arena of live sessions keyed by conversation id.
// Evicting a session drops only its conversation window; the durable
// transcript in the conversation store survives.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	capacity int
	factory  func() assistant.Engine
	logger   *slog.Logger
}

// NewRegistry creates a Registry that builds engines with factory and retains
// at most capacity sessions.
func NewRegistry(capacity int, factory func() assistant.Engine) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		capacity: capacity,
		factory:  factory,
		logger:   slog.Default(),
	}
}

// Get returns the live session for id, creating it lazily on first use.
// Creating beyond capacity evicts the least recently used session.
func (r *Registry) Get(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok {
		s.lastUsed = time.Now()
		return s
	}

	if len(r.sessions) >= r.capacity {
		r.evictOldest()
	}

	s := &Session{
		ID:       id,
		Engine:   r.factory(),
		lastUsed: time.Now(),
	}
	r.sessions[id] = s
	r.logger.Debug("session created", "session_id", id, "live_sessions", len(r.sessions))
	return s
}

// Lookup returns the live session for id without creating one.
func (r *Registry) Lookup(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if ok {
		s.lastUsed = time.Now()
	}
	return s, ok
}

// Remove drops the live session for id, if any.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// evictOldest removes the least recently used session. Caller holds r.mu.
func (r *Registry) evictOldest() {
	var oldestID string
	var oldest time.Time
	for id, s := range r.sessions {
		if oldestID == "" || s.lastUsed.Before(oldest) {
			oldestID = id
			oldest = s.lastUsed
		}
	}
	if oldestID != "" {
		delete(r.sessions, oldestID)
		r.logger.Info("session evicted", "session_id", oldestID)
	}
}
