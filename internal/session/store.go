// Package session keeps per-conversation state in memory. Each session
// serializes its turns with its own lock, so concurrent requests against the
// same conversation queue up instead of interleaving histories.
package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/vigilaperu/chaski/pkg/models"
)

// Session is one conversation. Raw holds the user-submitted inputs verbatim,
// append-only; Working holds the rewritten turns interleaved with assistant
// and tool entries, the context the pipeline actually reasons over. Callers
// access the fields only between Acquire and Release.
type Session struct {
	ID           string
	Raw          []models.Message
	Working      []models.Message
	LastDecision models.TopicDecision
	mu           sync.Mutex
}

// Release ends the holder's exclusive turn.
func (s *Session) Release() {
	s.mu.Unlock()
}

// WorkingSnapshot returns a copy of the working history safe to mutate
// outside the lock. Turns build on the copy and commit back only on normal
// completion, so a cancelled turn leaves no partial appends.
func (s *Session) WorkingSnapshot() []models.Message {
	out := make([]models.Message, len(s.Working))
	copy(out, s.Working)
	return out
}

// Store maps session ids to live sessions.
type Store struct {
	sessions map[string]*Session
	mu       sync.Mutex
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Acquire returns the session for id locked for exclusive use, creating it if
// needed. An empty id mints a fresh conversation with a generated id. The
// session lock is taken outside the store lock so a long turn never blocks
// lookups of other sessions.
func (s *Store) Acquire(id string) *Session {
	if id == "" {
		id = uuid.NewString()
	}

	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = &Session{ID: id}
		s.sessions[id] = sess
	}
	s.mu.Unlock()

	sess.mu.Lock()
	return sess
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
