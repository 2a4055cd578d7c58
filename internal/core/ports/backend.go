package ports

import (
	"context"

	"github.com/sirpyerre/admin-console/internal/core/domain"
)

// AuthGrant is a full token grant: the pair the backend issues on login and
// register, plus the profile it embeds.
type AuthGrant struct {
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
	TokenType    string          `json:"tokenType"`
	ExpiresIn    int64           `json:"expiresIn"`
	User         domain.UserInfo `json:"user"`
}

// TokenGrant is the reduced grant returned by a refresh: tokens only, no
// profile.
type TokenGrant struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// RegisterInput is the self-registration payload.
type RegisterInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role,omitempty"`
}

// UserFilter narrows a user listing. Empty fields mean "no filter" and are
// not sent to the backend.
type UserFilter struct {
	Status string
	Role   string
}

// AuthAPI wraps the backend's /auth resource. Methods that act on an
// existing session take the relevant token explicitly; the client never
// caches one.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (*AuthGrant, error)
	Register(ctx context.Context, in RegisterInput) (*AuthGrant, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenGrant, error)
	Logout(ctx context.Context, refreshToken string) error
	LogoutAll(ctx context.Context, username string) error
	Validate(ctx context.Context, accessToken string) (bool, error)
	Me(ctx context.Context, accessToken string) (*domain.UserInfo, error)
}

// UserAPI wraps the backend's /users resource.
type UserAPI interface {
	List(ctx context.Context, token string, f UserFilter) ([]domain.UserRecord, error)
	Get(ctx context.Context, token string, id int64) (*domain.UserRecord, error)
	GetByUsername(ctx context.Context, token, username string) (*domain.UserRecord, error)
	Create(ctx context.Context, token string, draft domain.UserDraft) (*domain.UserRecord, error)
	Update(ctx context.Context, token string, id int64, patch domain.UserPatch) (*domain.UserRecord, error)
	ChangePassword(ctx context.Context, token string, id int64, change domain.PasswordChange) error
	TouchLastLogin(ctx context.Context, token string, id int64) error
	Delete(ctx context.Context, token string, id int64) error
	Stats(ctx context.Context, token string) (*domain.UserStats, error)
}

// CategoryAPI wraps the backend's /categories resource.
type CategoryAPI interface {
	List(ctx context.Context, token string, activeOnly bool) ([]domain.CategoryRecord, error)
	Get(ctx context.Context, token string, id int64) (*domain.CategoryRecord, error)
	Create(ctx context.Context, token string, draft domain.CategoryDraft) (*domain.CategoryRecord, error)
	Update(ctx context.Context, token string, id int64, patch domain.CategoryPatch) (*domain.CategoryRecord, error)
	Delete(ctx context.Context, token string, id int64) error
	Ping(ctx context.Context) (string, error)
}
