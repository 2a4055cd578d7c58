package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/sirpyerre/admin-console/internal/core/domain"
)

const categoriesPath = "/categories"

// CategoryService wraps the backend's /categories resource.
type CategoryService struct {
	c *Client
}

func (s *CategoryService) List(ctx context.Context, token string, activeOnly bool) ([]domain.CategoryRecord, error) {
	query := url.Values{}
	if activeOnly {
		query.Set("active", "true")
	}

	var categories []domain.CategoryRecord
	if err := s.c.do(ctx, http.MethodGet, categoriesPath, query, token, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *CategoryService) Get(ctx context.Context, token string, id int64) (*domain.CategoryRecord, error) {
	var category domain.CategoryRecord
	if err := s.c.do(ctx, http.MethodGet, categoriesPath+"/"+formatID(id), nil, token, nil, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *CategoryService) Create(ctx context.Context, token string, draft domain.CategoryDraft) (*domain.CategoryRecord, error) {
	var category domain.CategoryRecord
	if err := s.c.do(ctx, http.MethodPost, categoriesPath, nil, token, draft, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *CategoryService) Update(ctx context.Context, token string, id int64, patch domain.CategoryPatch) (*domain.CategoryRecord, error) {
	var category domain.CategoryRecord
	if err := s.c.do(ctx, http.MethodPut, categoriesPath+"/"+formatID(id), nil, token, patch, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *CategoryService) Delete(ctx context.Context, token string, id int64) error {
	return s.c.do(ctx, http.MethodDelete, categoriesPath+"/"+formatID(id), nil, token, nil, nil)
}

// Ping hits the backend's connectivity probe. The response is plain text,
// not an envelope.
func (s *CategoryService) Ping(ctx context.Context) (string, error) {
	return s.c.doText(ctx, http.MethodGet, categoriesPath+"/ping", "")
}
