package ports

import (
	"context"

	"github.com/sirpyerre/admin-console/internal/core/domain"
)

// SessionStore persists console sessions keyed by session ID. Get returns
// domain.ErrSessionNotFound for unknown or expired IDs.
type SessionStore interface {
	Get(ctx context.Context, sid string) (*domain.Session, error)
	Put(ctx context.Context, sid string, s *domain.Session) error
	Delete(ctx context.Context, sid string) error
}

// SessionManager owns the session lifecycle: login and register create a
// session, refresh replaces its token pair, logout destroys it. It is the
// single source of truth route protection and the handlers consult.
type SessionManager interface {
	Login(ctx context.Context, username, password string) (string, *domain.Session, error)
	Register(ctx context.Context, in RegisterInput) (string, *domain.Session, error)
	Current(ctx context.Context, sid string) (*domain.Session, error)
	Refresh(ctx context.Context, sid string) (*domain.Session, error)
	Logout(ctx context.Context, sid string) error
	LogoutAll(ctx context.Context, sid string) error
}
