package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/admin-console/internal/core/domain"
	"github.com/sirpyerre/admin-console/internal/core/ports"
)

const testCookie = "console_session"

type stubManager struct {
	sessions map[string]*domain.Session
	refresh  func(sid string) (*domain.Session, error)
}

func (m *stubManager) Login(context.Context, string, string) (string, *domain.Session, error) {
	return "", nil, nil
}

func (m *stubManager) Register(context.Context, ports.RegisterInput) (string, *domain.Session, error) {
	return "", nil, nil
}

func (m *stubManager) Current(_ context.Context, sid string) (*domain.Session, error) {
	s, ok := m.sessions[sid]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

func (m *stubManager) Refresh(_ context.Context, sid string) (*domain.Session, error) {
	return m.refresh(sid)
}

func (m *stubManager) Logout(context.Context, string) error    { return nil }
func (m *stubManager) LogoutAll(context.Context, string) error { return nil }

func resolveRequest(t *testing.T, mgr ports.SessionManager, cookie *http.Cookie) (echo.Context, *httptest.ResponseRecorder, *domain.Session) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *domain.Session
	handler := Resolve(SessionConfig{Manager: mgr, CookieName: testCookie, Log: zerolog.Nop()})(func(c echo.Context) error {
		seen = CurrentSession(c)
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	return c, rec, seen
}

func TestResolve_NoCookiePassesThrough(t *testing.T) {
	mgr := &stubManager{sessions: map[string]*domain.Session{}}
	_, rec, seen := resolveRequest(t, mgr, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if seen != nil {
		t.Fatalf("no session expected without a cookie")
	}
}

func TestResolve_ValidSessionAttached(t *testing.T) {
	session := &domain.Session{
		AccessToken: "acc",
		ExpiresAt:   time.Now().Add(time.Hour),
		User:        domain.UserInfo{Username: "admin"},
	}
	mgr := &stubManager{sessions: map[string]*domain.Session{"sid-1": session}}

	c, _, seen := resolveRequest(t, mgr, &http.Cookie{Name: testCookie, Value: "sid-1"})

	if seen == nil || seen.User.Username != "admin" {
		t.Fatalf("session not attached: %+v", seen)
	}
	if SessionID(c) != "sid-1" {
		t.Fatalf("SessionID = %q", SessionID(c))
	}
}

func TestResolve_UnknownSidClearsCookie(t *testing.T) {
	mgr := &stubManager{sessions: map[string]*domain.Session{}}
	_, rec, seen := resolveRequest(t, mgr, &http.Cookie{Name: testCookie, Value: "stale"})

	if seen != nil {
		t.Fatalf("no session expected for a stale cookie")
	}
	if !cookieCleared(rec) {
		t.Fatalf("stale cookie must be cleared, got %v", rec.Result().Cookies())
	}
}

func TestResolve_ExpiredTokenTriggersRefresh(t *testing.T) {
	old := &domain.Session{AccessToken: "old", ExpiresAt: time.Now().Add(-time.Minute)}
	renewed := &domain.Session{AccessToken: "new", ExpiresAt: time.Now().Add(time.Hour)}
	mgr := &stubManager{
		sessions: map[string]*domain.Session{"sid-1": old},
		refresh: func(sid string) (*domain.Session, error) {
			return renewed, nil
		},
	}

	_, _, seen := resolveRequest(t, mgr, &http.Cookie{Name: testCookie, Value: "sid-1"})

	if seen == nil || seen.AccessToken != "new" {
		t.Fatalf("expected the refreshed session, got %+v", seen)
	}
}

func TestResolve_RejectedRefreshClearsCookie(t *testing.T) {
	old := &domain.Session{AccessToken: "old", ExpiresAt: time.Now().Add(-time.Minute)}
	mgr := &stubManager{
		sessions: map[string]*domain.Session{"sid-1": old},
		refresh: func(sid string) (*domain.Session, error) {
			return nil, domain.ErrSessionExpired
		},
	}

	_, rec, seen := resolveRequest(t, mgr, &http.Cookie{Name: testCookie, Value: "sid-1"})

	if seen != nil {
		t.Fatalf("no session expected after a rejected refresh")
	}
	if !cookieCleared(rec) {
		t.Fatalf("cookie must be cleared after a rejected refresh")
	}
}

func cookieCleared(rec *httptest.ResponseRecorder) bool {
	for _, c := range rec.Result().Cookies() {
		if c.Name == testCookie && c.MaxAge < 0 {
			return true
		}
	}
	return false
}

func TestRequire_RedirectsWithNext(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/users/5/edit", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Require()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	if err := handler(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/login?next=%2Fusers%2F5%2Fedit" {
		t.Fatalf("Location = %q", loc)
	}
}

func TestRequire_PostRedirectsWithoutNext(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/users/5/delete", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Require()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	if err := handler(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}

	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/login" {
		t.Fatalf("Location = %q", loc)
	}
}

func TestRequire_AuthenticatedPassesThrough(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	Attach(c, "sid-1", &domain.Session{User: domain.UserInfo{Username: "admin"}})

	handler := Require()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	if err := handler(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSafeNext(t *testing.T) {
	tests := []struct {
		next string
		want bool
	}{
		{"/users", true},
		{"/users?status=ACTIVE", true},
		{"", false},
		{"//evil.example", false},
		{"https://evil.example", false},
	}
	for _, tt := range tests {
		if got := SafeNext(tt.next); got != tt.want {
			t.Errorf("SafeNext(%q) = %v, want %v", tt.next, got, tt.want)
		}
	}
}
