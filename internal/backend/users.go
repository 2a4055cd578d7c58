package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sirpyerre/admin-console/internal/core/domain"
	"github.com/sirpyerre/admin-console/internal/core/ports"
)

const usersPath = "/users"

// UserService wraps the backend's /users resource.
type UserService struct {
	c *Client
}

func (s *UserService) List(ctx context.Context, token string, f ports.UserFilter) ([]domain.UserRecord, error) {
	query := url.Values{}
	if f.Status != "" {
		query.Set("status", f.Status)
	}
	if f.Role != "" {
		query.Set("role", f.Role)
	}

	var users []domain.UserRecord
	if err := s.c.do(ctx, http.MethodGet, usersPath, query, token, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, token string, id int64) (*domain.UserRecord, error) {
	var user domain.UserRecord
	if err := s.c.do(ctx, http.MethodGet, usersPath+"/"+formatID(id), nil, token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) GetByUsername(ctx context.Context, token, username string) (*domain.UserRecord, error) {
	var user domain.UserRecord
	if err := s.c.do(ctx, http.MethodGet, usersPath+"/username/"+url.PathEscape(username), nil, token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) Create(ctx context.Context, token string, draft domain.UserDraft) (*domain.UserRecord, error) {
	var user domain.UserRecord
	if err := s.c.do(ctx, http.MethodPost, usersPath, nil, token, draft, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) Update(ctx context.Context, token string, id int64, patch domain.UserPatch) (*domain.UserRecord, error) {
	var user domain.UserRecord
	if err := s.c.do(ctx, http.MethodPut, usersPath+"/"+formatID(id), nil, token, patch, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, token string, id int64, change domain.PasswordChange) error {
	return s.c.do(ctx, http.MethodPut, usersPath+"/"+formatID(id)+"/password", nil, token, change, nil)
}

func (s *UserService) TouchLastLogin(ctx context.Context, token string, id int64) error {
	return s.c.do(ctx, http.MethodPut, usersPath+"/"+formatID(id)+"/last-login", nil, token, nil, nil)
}

func (s *UserService) Delete(ctx context.Context, token string, id int64) error {
	return s.c.do(ctx, http.MethodDelete, usersPath+"/"+formatID(id), nil, token, nil, nil)
}

func (s *UserService) Stats(ctx context.Context, token string) (*domain.UserStats, error) {
	var stats domain.UserStats
	if err := s.c.do(ctx, http.MethodGet, usersPath+"/stats", nil, token, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
