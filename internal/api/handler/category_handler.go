package handler

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/admin-console/internal/core/domain"
	"github.com/sirpyerre/admin-console/internal/core/ports"
)

// CategoryHandler serves the category CRUD screens.
type CategoryHandler struct {
	categories ports.CategoryAPI
}

func NewCategoryHandler(categories ports.CategoryAPI) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

type categoryForm struct {
	Name        string `form:"name"        validate:"required,min=2,max=100"`
	Description string `form:"description" validate:"omitempty,max=255"`
	Active      bool   `form:"active"`
}

// List renders the category table. A fetch failure renders the same page
// with the error inline and no rows; a deletion failure arrives as the
// ?err= flash without touching the freshly fetched list.
func (h *CategoryHandler) List(c echo.Context) error {
	activeOnly := c.QueryParam("active") == "true"

	data := pageData(c, "Categories")
	data["ActiveOnly"] = activeOnly
	if flash := c.QueryParam("err"); flash != "" {
		data["Error"] = flash
	}

	categories, err := h.categories.List(c.Request().Context(), accessToken(c), activeOnly)
	if err != nil {
		data["Error"] = errorMessage(err, "Failed to load categories")
		return c.Render(http.StatusOK, "category_list.html", data)
	}

	data["Categories"] = categories
	return c.Render(http.StatusOK, "category_list.html", data)
}

// NewPage renders an empty create form.
func (h *CategoryHandler) NewPage(c echo.Context) error {
	data := pageData(c, "Create Category")
	data["Form"] = categoryForm{Active: true}
	return c.Render(http.StatusOK, "category_form.html", data)
}

// Create validates the draft locally, then submits it. Failures of either
// kind re-render the form with the draft intact.
func (h *CategoryHandler) Create(c echo.Context) error {
	var form categoryForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form submission")
	}

	renderErr := func(msg string) error {
		data := pageData(c, "Create Category")
		data["Error"] = msg
		data["Form"] = form
		return c.Render(http.StatusUnprocessableEntity, "category_form.html", data)
	}

	if err := c.Validate(&form); err != nil {
		return renderErr(err.Error())
	}

	active := form.Active
	draft := domain.CategoryDraft{
		Name:        form.Name,
		Description: form.Description,
		Active:      &active,
	}
	if _, err := h.categories.Create(c.Request().Context(), accessToken(c), draft); err != nil {
		return renderErr(errorMessage(err, "Failed to create category"))
	}

	return c.Redirect(http.StatusSeeOther, "/categories")
}

// View renders one category read-only. Not-found and load-failed both end
// up on the error page; the messages differ, the rendering does not.
func (h *CategoryHandler) View(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	category, err := h.categories.Get(c.Request().Context(), accessToken(c), id)
	if err != nil {
		return err
	}

	data := pageData(c, category.Name)
	data["Category"] = category
	return c.Render(http.StatusOK, "category_view.html", data)
}

// EditPage loads the record and seeds the form from it.
func (h *CategoryHandler) EditPage(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	category, err := h.categories.Get(c.Request().Context(), accessToken(c), id)
	if err != nil {
		return err
	}

	data := pageData(c, "Edit Category")
	data["Category"] = category
	data["Form"] = categoryForm{
		Name:        category.Name,
		Description: category.Description,
		Active:      category.Active,
	}
	return c.Render(http.StatusOK, "category_form.html", data)
}

// Edit diffs the submitted form against the current record and sends only
// the changed fields.
func (h *CategoryHandler) Edit(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	current, err := h.categories.Get(c.Request().Context(), accessToken(c), id)
	if err != nil {
		return err
	}

	var form categoryForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form submission")
	}

	renderErr := func(msg string) error {
		data := pageData(c, "Edit Category")
		data["Error"] = msg
		data["Category"] = current
		data["Form"] = form
		return c.Render(http.StatusUnprocessableEntity, "category_form.html", data)
	}

	if err := c.Validate(&form); err != nil {
		return renderErr(err.Error())
	}

	var patch domain.CategoryPatch
	if form.Name != current.Name {
		patch.Name = &form.Name
	}
	if form.Description != current.Description {
		patch.Description = &form.Description
	}
	if form.Active != current.Active {
		patch.Active = &form.Active
	}

	if !patch.Empty() {
		if _, err := h.categories.Update(c.Request().Context(), accessToken(c), id, patch); err != nil {
			return renderErr(errorMessage(err, "Failed to update category"))
		}
	}

	return c.Redirect(http.StatusSeeOther, "/categories")
}

// Delete removes a category. The confirm dialog already happened in the
// browser; a backend failure flows back to the list as a flash message so
// the rendered rows stay untouched.
func (h *CategoryHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.categories.Delete(c.Request().Context(), accessToken(c), id); err != nil {
		msg := errorMessage(err, "Failed to delete category")
		return c.Redirect(http.StatusSeeOther, "/categories?err="+url.QueryEscape(msg))
	}
	return c.Redirect(http.StatusSeeOther, "/categories")
}
