package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/admin-console/internal/api/metrics"
	"github.com/sirpyerre/admin-console/internal/backend"
	"github.com/sirpyerre/admin-console/internal/core/domain"
	"github.com/sirpyerre/admin-console/internal/core/ports"
)

const fallbackTokenTTL = 15 * time.Minute

// SessionService implements the console session lifecycle on top of the
// backend auth API and a session store. One Session lives per session ID;
// route protection and the handlers read it through this service only.
type SessionService struct {
	auth  ports.AuthAPI
	users ports.UserAPI
	store ports.SessionStore
	log   zerolog.Logger

	mu        sync.Mutex
	refreshMu map[string]*sync.Mutex
}

func NewSessionService(auth ports.AuthAPI, users ports.UserAPI, store ports.SessionStore, log zerolog.Logger) *SessionService {
	return &SessionService{
		auth:      auth,
		users:     users,
		store:     store,
		log:       log,
		refreshMu: make(map[string]*sync.Mutex),
	}
}

// Login exchanges credentials for a backend token grant and creates a
// console session around it. A 401 from the backend surfaces as
// domain.ErrInvalidCredentials.
func (s *SessionService) Login(ctx context.Context, username, password string) (string, *domain.Session, error) {
	grant, err := s.auth.Login(ctx, username, password)
	if err != nil {
		var he *backend.HTTPError
		if errors.As(err, &he) && he.Status == http.StatusUnauthorized {
			metrics.LoginsTotal.WithLabelValues("invalid").Inc()
			return "", nil, domain.ErrInvalidCredentials
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return "", nil, err
	}

	sid, session, err := s.createSession(ctx, grant)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return "", nil, err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	// Best effort: the backend tracks last login per user, a failure here
	// must not fail the login itself.
	if err := s.users.TouchLastLogin(ctx, session.AccessToken, session.User.ID); err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("last-login update failed")
	}

	return sid, session, nil
}

// Register creates a backend account and logs the new user straight in.
// Server-side field violations propagate unchanged so the form can render
// the envelope's message.
func (s *SessionService) Register(ctx context.Context, in ports.RegisterInput) (string, *domain.Session, error) {
	grant, err := s.auth.Register(ctx, in)
	if err != nil {
		return "", nil, err
	}
	return s.createSession(ctx, grant)
}

// Current returns the stored session for sid, or domain.ErrSessionNotFound.
func (s *SessionService) Current(ctx context.Context, sid string) (*domain.Session, error) {
	return s.store.Get(ctx, sid)
}

// Refresh replaces the session's token pair. Concurrent calls for one sid
// collapse into a single backend refresh: the first caller does the work,
// the rest observe the already-renewed session. When the backend rejects
// the refresh token the session is destroyed and domain.ErrSessionExpired
// returned; the caller must treat the user as logged out.
func (s *SessionService) Refresh(ctx context.Context, sid string) (*domain.Session, error) {
	lock := s.refreshLock(sid)
	lock.Lock()
	defer func() {
		lock.Unlock()
		s.releaseRefreshLock(sid)
	}()

	session, err := s.store.Get(ctx, sid)
	if err != nil {
		return nil, err
	}
	if !session.NeedsRefresh(time.Now()) {
		// Another caller refreshed while we waited for the lock.
		return session, nil
	}

	grant, err := s.auth.Refresh(ctx, session.RefreshToken)
	if err != nil {
		var he *backend.HTTPError
		if errors.As(err, &he) && he.Status >= 400 && he.Status < 500 {
			metrics.TokenRefreshesTotal.WithLabelValues("expired").Inc()
			if delErr := s.store.Delete(ctx, sid); delErr != nil {
				s.log.Warn().Err(delErr).Msg("session delete after failed refresh")
			}
			metrics.ActiveSessions.Dec()
			return nil, domain.ErrSessionExpired
		}
		metrics.TokenRefreshesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	session.AccessToken = grant.AccessToken
	session.RefreshToken = grant.RefreshToken
	if grant.TokenType != "" {
		session.TokenType = grant.TokenType
	}
	session.ExpiresAt = tokenExpiry(grant.AccessToken, grant.ExpiresIn)

	if err := s.store.Put(ctx, sid, session); err != nil {
		return nil, err
	}
	metrics.TokenRefreshesTotal.WithLabelValues("success").Inc()
	return session, nil
}

// Logout invalidates the refresh token server-side (best effort) and always
// destroys the local session.
func (s *SessionService) Logout(ctx context.Context, sid string) error {
	session, err := s.store.Get(ctx, sid)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil
		}
		return err
	}

	if err := s.auth.Logout(ctx, session.RefreshToken); err != nil {
		s.log.Warn().Err(err).Str("username", session.User.Username).Msg("backend logout failed")
	}

	if err := s.store.Delete(ctx, sid); err != nil {
		return err
	}
	metrics.ActiveSessions.Dec()
	return nil
}

// LogoutAll invalidates every refresh token for the session's user, then
// destroys the local session regardless of the backend's answer.
func (s *SessionService) LogoutAll(ctx context.Context, sid string) error {
	session, err := s.store.Get(ctx, sid)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil
		}
		return err
	}

	backendErr := s.auth.LogoutAll(ctx, session.User.Username)

	if err := s.store.Delete(ctx, sid); err != nil {
		return err
	}
	metrics.ActiveSessions.Dec()
	return backendErr
}

func (s *SessionService) createSession(ctx context.Context, grant *ports.AuthGrant) (string, *domain.Session, error) {
	tokenType := grant.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	session := &domain.Session{
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		TokenType:    tokenType,
		ExpiresAt:    tokenExpiry(grant.AccessToken, grant.ExpiresIn),
		User:         grant.User,
	}

	sid := uuid.NewString()
	if err := s.store.Put(ctx, sid, session); err != nil {
		return "", nil, err
	}
	metrics.ActiveSessions.Inc()
	return sid, session, nil
}

func (s *SessionService) refreshLock(sid string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.refreshMu[sid]
	if !ok {
		lock = &sync.Mutex{}
		s.refreshMu[sid] = lock
	}
	return lock
}

// releaseRefreshLock drops the per-sid lock once nobody holds it, keeping
// the map from growing with dead session IDs.
func (s *SessionService) releaseRefreshLock(sid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lock, ok := s.refreshMu[sid]; ok && lock.TryLock() {
		lock.Unlock()
		delete(s.refreshMu, sid)
	}
}

// tokenExpiry derives the access token's expiry from its exp claim. The
// token is not verified here, the backend is the authority and the console
// only needs the timestamp. Falls back to expiresIn seconds from now.
func tokenExpiry(accessToken string, expiresIn int64) time.Time {
	if accessToken != "" {
		claims := jwt.MapClaims{}
		if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err == nil {
			if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
				return exp.Time
			}
		}
	}
	if expiresIn > 0 {
		return time.Now().Add(time.Duration(expiresIn) * time.Second)
	}
	return time.Now().Add(fallbackTokenTTL)
}
