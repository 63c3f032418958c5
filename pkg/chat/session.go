package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/studentstore/storefront-client/pkg/api"
	"github.com/studentstore/storefront-client/pkg/cache"
)

// SessionTTL is how long a persisted conversation survives between visits.
const SessionTTL = 24 * time.Hour

// sessionKey builds the cache key for a session's history.
func sessionKey(sessionID string) cache.Key {
	return cache.Key{
		Namespace: "chat",
		Params:    map[string]string{"session": sessionID},
	}
}

// Session is a chat conversation's identity and history, persisted through
// the cache store so a returning visitor resumes where they left off.
type Session struct {
	ID string

	manager *cache.Manager

	mu      sync.Mutex
	history []api.ChatTurn
}

// NewSession creates a fresh session with a generated id.
func NewSession(manager *cache.Manager) *Session {
	return &Session{
		ID:      uuid.NewString(),
		manager: manager,
	}
}

// LoadSession restores a persisted session. A cache miss yields an empty
// session under the same id, not an error.
func LoadSession(ctx context.Context, manager *cache.Manager, sessionID string) (*Session, error) {
	session := &Session{ID: sessionID, manager: manager}

	var history []api.ChatTurn
	err := manager.Get(ctx, sessionKey(sessionID), &history)
	if err != nil {
		if err == cache.ErrCacheMiss {
			return session, nil
		}
		return nil, err
	}

	session.history = history
	return session, nil
}

// Append records one turn of the conversation.
func (s *Session) Append(role Role, content string) {
	s.mu.Lock()
	s.history = append(s.history, api.ChatTurn{Role: string(role), Content: content})
	s.mu.Unlock()
}

// History returns a copy of the recorded turns, oldest first.
func (s *Session) History() []api.ChatTurn {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := make([]api.ChatTurn, len(s.history))
	copy(history, s.history)
	return history
}

// Save persists the history. The cache is advisory, so persistence
// failures do not interrupt the conversation.
func (s *Session) Save(ctx context.Context) error {
	return s.manager.Set(ctx, sessionKey(s.ID), s.History(), SessionTTL)
}

// Clear drops the persisted history, e.g. on user logout.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.history = nil
	s.mu.Unlock()
	return s.manager.InvalidateKey(ctx, sessionKey(s.ID))
}
