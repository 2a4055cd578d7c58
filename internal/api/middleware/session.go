package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/admin-console/internal/core/domain"
	"github.com/sirpyerre/admin-console/internal/core/ports"
)

const (
	sessionKey   = "console.session"
	sessionIDKey = "console.sid"
)

// SessionConfig wires the session middleware.
type SessionConfig struct {
	Manager      ports.SessionManager
	CookieName   string
	CookieSecure bool
	Log          zerolog.Logger
}

// Resolve loads the session referenced by the cookie, refreshing its token
// pair first when the access token is expired or about to expire. Refresh
// failures that mean "logged out" clear the cookie; the request proceeds
// without a session either way, gating is Require's job.
func Resolve(cfg SessionConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(cfg.CookieName)
			if err != nil || cookie.Value == "" {
				return next(c)
			}
			sid := cookie.Value
			ctx := c.Request().Context()

			session, err := cfg.Manager.Current(ctx, sid)
			if err != nil {
				if !errors.Is(err, domain.ErrSessionNotFound) {
					return err
				}
				c.SetCookie(ExpiredCookie(cfg.CookieName))
				return next(c)
			}

			if session.NeedsRefresh(time.Now()) {
				session, err = cfg.Manager.Refresh(ctx, sid)
				if err != nil {
					if errors.Is(err, domain.ErrSessionExpired) || errors.Is(err, domain.ErrSessionNotFound) {
						cfg.Log.Info().Str("sid", sid).Msg("session expired, refresh rejected")
						c.SetCookie(ExpiredCookie(cfg.CookieName))
						return next(c)
					}
					return err
				}
			}

			Attach(c, sid, session)
			return next(c)
		}
	}
}

// Require redirects to the login screen when Resolve attached no session.
// GET requests carry their original path in ?next= so login can return the
// operator where they were headed.
func Require() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if CurrentSession(c) == nil {
				target := "/login"
				if c.Request().Method == http.MethodGet {
					if p := c.Request().URL.RequestURI(); p != "/" {
						target += "?next=" + url.QueryEscape(p)
					}
				}
				return c.Redirect(http.StatusSeeOther, target)
			}
			return next(c)
		}
	}
}

// Attach stores the resolved session on the request context. Resolve calls
// it; handler tests call it to simulate an authenticated request.
func Attach(c echo.Context, sid string, s *domain.Session) {
	c.Set(sessionKey, s)
	c.Set(sessionIDKey, sid)
}

// CurrentSession returns the session Resolve attached, or nil.
func CurrentSession(c echo.Context) *domain.Session {
	s, _ := c.Get(sessionKey).(*domain.Session)
	return s
}

// SessionID returns the console session ID, or "".
func SessionID(c echo.Context) string {
	sid, _ := c.Get(sessionIDKey).(string)
	return sid
}

// NewCookie builds the session cookie for sid.
func NewCookie(name, sid string, ttl time.Duration, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    sid,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredCookie builds a cookie that deletes the session cookie.
func ExpiredCookie(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	}
}

// SafeNext reports whether a post-login redirect target is a local path.
// Anything absolute or protocol-relative is rejected to keep login from
// becoming an open redirect.
func SafeNext(next string) bool {
	return strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//")
}
