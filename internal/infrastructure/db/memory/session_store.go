// Package memory holds in-process store implementations used in development
// and in tests, where a Redis instance would be overkill.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/sirpyerre/admin-console/internal/core/domain"
)

// SessionStore keeps console sessions in a mutex-guarded map. Entries
// expire lazily on read.
type SessionStore struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]entry
}

type entry struct {
	session  domain.Session
	deadline time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{ttl: ttl, m: make(map[string]entry)}
}

func (s *SessionStore) Get(_ context.Context, sid string) (*domain.Session, error) {
	s.mu.RLock()
	e, ok := s.m[sid]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if !e.deadline.IsZero() && time.Now().After(e.deadline) {
		s.mu.Lock()
		delete(s.m, sid)
		s.mu.Unlock()
		return nil, domain.ErrSessionNotFound
	}
	session := e.session
	return &session, nil
}

func (s *SessionStore) Put(_ context.Context, sid string, session *domain.Session) error {
	e := entry{session: *session}
	if s.ttl > 0 {
		e.deadline = time.Now().Add(s.ttl)
	}
	s.mu.Lock()
	s.m[sid] = e
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) Delete(_ context.Context, sid string) error {
	s.mu.Lock()
	delete(s.m, sid)
	s.mu.Unlock()
	return nil
}
