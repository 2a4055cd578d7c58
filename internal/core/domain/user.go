package domain

import (
	"strings"
	"time"
)

// Roles a backend account can hold.
const (
	RoleAdmin   = "ADMIN"
	RoleManager = "MANAGER"
	RoleUser    = "USER"
)

// Account lifecycle statuses.
const (
	StatusActive              = "ACTIVE"
	StatusInactive            = "INACTIVE"
	StatusSuspended           = "SUSPENDED"
	StatusPendingVerification = "PENDING_VERIFICATION"
)

// Roles lists every valid role, in display order.
func Roles() []string { return []string{RoleAdmin, RoleManager, RoleUser} }

// Statuses lists every valid status, in display order.
func Statuses() []string {
	return []string{StatusActive, StatusInactive, StatusSuspended, StatusPendingVerification}
}

// UserRecord is a user account as the backend reports it. The backend owns
// every field; the console mutates records only through the users API.
type UserRecord struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Phone     string     `json:"phone,omitempty"`
	Role      string     `json:"role"`
	Status    string     `json:"status"`
	Active    bool       `json:"active"`
	LastLogin *time.Time `json:"lastLogin"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	CreatedBy string     `json:"createdBy,omitempty"`
	UpdatedBy string     `json:"updatedBy,omitempty"`
}

// FullName is the display name used by the list and view screens.
func (u UserRecord) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UserDraft is the payload for creating a user.
type UserDraft struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role"`
	Status    string `json:"status,omitempty"`
}

// UserPatch is a partial update. Nil fields are omitted from the request
// body, so only the fields the operator actually changed reach the backend.
type UserPatch struct {
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Role      *string `json:"role,omitempty"`
	Status    *string `json:"status,omitempty"`
	Active    *bool   `json:"active,omitempty"`
}

// Empty reports whether the patch carries no changes at all.
func (p UserPatch) Empty() bool {
	return p.Email == nil && p.FirstName == nil && p.LastName == nil &&
		p.Phone == nil && p.Role == nil && p.Status == nil && p.Active == nil
}

// PasswordChange is the payload for PUT /users/{id}/password.
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// UserStats are the aggregate counts the backend recomputes on each fetch.
type UserStats struct {
	ByRole   map[string]int `json:"byRole"`
	ByStatus map[string]int `json:"byStatus"`
}

// Total sums the per-role counts.
func (s UserStats) Total() int {
	n := 0
	for _, c := range s.ByRole {
		n += c
	}
	return n
}
