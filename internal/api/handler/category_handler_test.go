package handler

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirpyerre/admin-console/internal/backend"
	"github.com/sirpyerre/admin-console/internal/core/domain"
)

type categoryAPIStub struct {
	list       []domain.CategoryRecord
	listErr    error
	listActive bool
	record     *domain.CategoryRecord
	getErr     error
	createErr  error
	created    *domain.CategoryDraft
	updated    *domain.CategoryPatch
	deleteErr  error
	deletedID  int64
}

func (s *categoryAPIStub) List(_ context.Context, _ string, activeOnly bool) ([]domain.CategoryRecord, error) {
	s.listActive = activeOnly
	return s.list, s.listErr
}

func (s *categoryAPIStub) Get(context.Context, string, int64) (*domain.CategoryRecord, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.record, nil
}

func (s *categoryAPIStub) Create(_ context.Context, _ string, draft domain.CategoryDraft) (*domain.CategoryRecord, error) {
	s.created = &draft
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &domain.CategoryRecord{ID: 1, Name: draft.Name}, nil
}

func (s *categoryAPIStub) Update(_ context.Context, _ string, id int64, patch domain.CategoryPatch) (*domain.CategoryRecord, error) {
	s.updated = &patch
	return s.record, nil
}

func (s *categoryAPIStub) Delete(_ context.Context, _ string, id int64) error {
	s.deletedID = id
	return s.deleteErr
}

func (s *categoryAPIStub) Ping(context.Context) (string, error) { return "pong", nil }

func TestCategoryList_EmptyShowsPlaceholder(t *testing.T) {
	e := newEcho(t)
	h := NewCategoryHandler(&categoryAPIStub{})

	c, rec := getPage(e, "/categories")
	authed(c)
	require.NoError(t, h.List(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No categories found")
}

func TestCategoryList_ActiveOnlyFilterForwarded(t *testing.T) {
	e := newEcho(t)
	stub := &categoryAPIStub{}
	h := NewCategoryHandler(stub)

	c, _ := getPage(e, "/categories?active=true")
	authed(c)
	require.NoError(t, h.List(c))

	assert.True(t, stub.listActive)
}

func TestCategoryList_FetchFailureRendersInline(t *testing.T) {
	e := newEcho(t)
	stub := &categoryAPIStub{listErr: &backend.NetworkError{Op: "GET /categories"}}
	h := NewCategoryHandler(stub)

	c, rec := getPage(e, "/categories")
	authed(c)
	require.NoError(t, h.List(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "backend is unreachable")
}

func TestCategoryList_DeleteFlashShown(t *testing.T) {
	e := newEcho(t)
	stub := &categoryAPIStub{list: []domain.CategoryRecord{{ID: 1, Name: "Books", Active: true}}}
	h := NewCategoryHandler(stub)

	c, rec := getPage(e, "/categories?err="+url.QueryEscape("Cannot delete category"))
	authed(c)
	require.NoError(t, h.List(c))

	body := rec.Body.String()
	assert.Contains(t, body, "Cannot delete category")
	assert.Contains(t, body, "Books")
}

func TestCategoryCreate_InvalidNameNeverReachesBackend(t *testing.T) {
	e := newEcho(t)
	stub := &categoryAPIStub{}
	h := NewCategoryHandler(stub)

	c, rec := postForm(e, "/categories", url.Values{"name": {"x"}})
	authed(c)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Nil(t, stub.created)
}

func TestCategoryCreate_SubmitsDraftAndRedirects(t *testing.T) {
	e := newEcho(t)
	stub := &categoryAPIStub{}
	h := NewCategoryHandler(stub)

	c, rec := postForm(e, "/categories", url.Values{
		"name":        {"Books"},
		"description": {"Printed matter"},
		"active":      {"true"},
	})
	authed(c)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/categories", rec.Header().Get("Location"))
	require.NotNil(t, stub.created)
	assert.Equal(t, "Books", stub.created.Name)
	require.NotNil(t, stub.created.Active)
	assert.True(t, *stub.created.Active)
}

func TestCategoryCreate_BackendRejectionKeepsDraft(t *testing.T) {
	e := newEcho(t)
	stub := &categoryAPIStub{createErr: &backend.HTTPError{Status: http.StatusConflict, Message: "category already exists"}}
	h := NewCategoryHandler(stub)

	c, rec := postForm(e, "/categories", url.Values{"name": {"Books"}})
	authed(c)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "category already exists")
	assert.Contains(t, body, "Books")
}

func TestCategoryEdit_SendsOnlyChangedFields(t *testing.T) {
	e := newEcho(t)
	stub := &categoryAPIStub{record: &domain.CategoryRecord{
		ID:          5,
		Name:        "Books",
		Description: "Printed matter",
		Active:      true,
	}}
	h := NewCategoryHandler(stub)

	c, rec := postForm(e, "/categories/5", url.Values{
		"name":        {"Books"},
		"description": {"All printed matter"},
		"active":      {"true"},
	})
	authed(c)
	c.SetParamNames("id")
	c.SetParamValues("5")
	require.NoError(t, h.Edit(c))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	require.NotNil(t, stub.updated)
	assert.Nil(t, stub.updated.Name)
	assert.Nil(t, stub.updated.Active)
	require.NotNil(t, stub.updated.Description)
	assert.Equal(t, "All printed matter", *stub.updated.Description)
}

func TestCategoryEdit_NoChangesSkipsUpdate(t *testing.T) {
	e := newEcho(t)
	stub := &categoryAPIStub{record: &domain.CategoryRecord{
		ID:     5,
		Name:   "Books",
		Active: true,
	}}
	h := NewCategoryHandler(stub)

	c, rec := postForm(e, "/categories/5", url.Values{
		"name":   {"Books"},
		"active": {"true"},
	})
	authed(c)
	c.SetParamNames("id")
	c.SetParamValues("5")
	require.NoError(t, h.Edit(c))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Nil(t, stub.updated)
}

func TestCategoryDelete_FailureRedirectsWithFlash(t *testing.T) {
	e := newEcho(t)
	stub := &categoryAPIStub{deleteErr: &backend.HTTPError{Status: http.StatusConflict, Message: "category is in use"}}
	h := NewCategoryHandler(stub)

	c, rec := postForm(e, "/categories/5/delete", url.Values{})
	authed(c)
	c.SetParamNames("id")
	c.SetParamValues("5")
	require.NoError(t, h.Delete(c))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/categories", loc.Path)
	assert.Equal(t, "category is in use", loc.Query().Get("err"))
}

func TestCategoryView_MalformedIDIs404(t *testing.T) {
	e := newEcho(t)
	h := NewCategoryHandler(&categoryAPIStub{})

	c, _ := getPage(e, "/categories/abc")
	authed(c)
	c.SetParamNames("id")
	c.SetParamValues("abc")

	err := h.View(c)
	require.Error(t, err)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusNotFound, he.Code)
}
