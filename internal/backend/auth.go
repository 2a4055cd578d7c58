package backend

import (
	"context"
	"errors"
	"net/http"

	"github.com/sirpyerre/admin-console/internal/core/domain"
	"github.com/sirpyerre/admin-console/internal/core/ports"
)

const authPath = "/auth"

// AuthService wraps the backend's /auth resource.
type AuthService struct {
	c *Client
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.AuthGrant, error) {
	var grant ports.AuthGrant
	err := s.c.do(ctx, http.MethodPost, authPath+"/login", nil, "", loginRequest{Username: username, Password: password}, &grant)
	if err != nil {
		return nil, err
	}
	return &grant, nil
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthGrant, error) {
	var grant ports.AuthGrant
	if err := s.c.do(ctx, http.MethodPost, authPath+"/register", nil, "", in, &grant); err != nil {
		return nil, err
	}
	return &grant, nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*ports.TokenGrant, error) {
	var grant ports.TokenGrant
	if err := s.c.do(ctx, http.MethodPost, authPath+"/refresh", nil, "", refreshRequest{RefreshToken: refreshToken}, &grant); err != nil {
		return nil, err
	}
	return &grant, nil
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.c.do(ctx, http.MethodPost, authPath+"/logout", nil, "", logoutRequest{RefreshToken: refreshToken}, nil)
}

// LogoutAll invalidates every refresh token for the named user. The contract
// identifies the user through the X-Username header, not the body.
func (s *AuthService) LogoutAll(ctx context.Context, username string) error {
	_, err := s.c.roundTripWithHeader(ctx, http.MethodPost, authPath+"/logout-all", "X-Username", username)
	return err
}

// Validate reports whether the access token is still accepted. A 401 is an
// answer, not an error.
func (s *AuthService) Validate(ctx context.Context, accessToken string) (bool, error) {
	err := s.c.do(ctx, http.MethodGet, authPath+"/validate", nil, accessToken, nil, nil)
	if err == nil {
		return true, nil
	}
	var he *HTTPError
	if errors.As(err, &he) && he.Status == http.StatusUnauthorized {
		return false, nil
	}
	return false, err
}

func (s *AuthService) Me(ctx context.Context, accessToken string) (*domain.UserInfo, error) {
	var user domain.UserInfo
	if err := s.c.do(ctx, http.MethodGet, authPath+"/me", nil, accessToken, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
