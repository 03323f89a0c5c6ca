package memory

import (
	"context"
	"sync"

	"homestay/internal/domain/auth"
	domainuser "homestay/internal/domain/user"
)

// SessionStore keeps sessions in process memory. Suitable for tests and a
// single-node dev setup only, real deployments use the Redis store.
type SessionStore struct {
	mu    sync.RWMutex
	items map[auth.Token]*auth.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{items: make(map[auth.Token]*auth.Session)}
}

func (s *SessionStore) Save(_ context.Context, session *auth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *session
	s.items[clone.Token] = &clone
	return nil
}

func (s *SessionStore) Get(_ context.Context, token auth.Token) (*auth.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.items[token]
	if !ok {
		return nil, auth.ErrSessionNotFound
	}
	clone := *session
	return &clone, nil
}

func (s *SessionStore) Delete(_ context.Context, token auth.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, token)
	return nil
}

func (s *SessionStore) DeleteByUser(_ context.Context, userID domainuser.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, session := range s.items {
		if session.UserID == userID {
			delete(s.items, token)
		}
	}
	return nil
}

var _ auth.SessionStore = (*SessionStore)(nil)
