package domain

import (
	"strings"
	"time"
)

// UserInfo is the authenticated operator's profile as returned by the auth
// endpoints. It is a subset of UserRecord: the backend omits audit fields
// from token grants.
type UserInfo struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Role      string     `json:"role"`
	Status    string     `json:"status"`
	LastLogin *time.Time `json:"lastLogin"`
}

// FullName is the display name shown in the navigation shell.
func (u UserInfo) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Session is one operator's authenticated state: the backend token pair plus
// the profile the grant carried. Exactly one Session exists per console
// session ID; every component reads it through the session service, never
// from a private copy.
type Session struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	TokenType    string    `json:"tokenType"`
	ExpiresAt    time.Time `json:"expiresAt"`
	User         UserInfo  `json:"user"`
}

// refreshSkew makes NeedsRefresh fire slightly early so a token never
// expires mid-request.
const refreshSkew = 30 * time.Second

// NeedsRefresh reports whether the access token is expired or about to be.
func (s Session) NeedsRefresh(now time.Time) bool {
	return !s.ExpiresAt.After(now.Add(refreshSkew))
}
