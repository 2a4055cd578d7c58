package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/admin-console/internal/core/ports"
)

// DashboardHandler serves the landing page: headline counts plus a backend
// connectivity check.
type DashboardHandler struct {
	users      ports.UserAPI
	categories ports.CategoryAPI
}

func NewDashboardHandler(users ports.UserAPI, categories ports.CategoryAPI) *DashboardHandler {
	return &DashboardHandler{users: users, categories: categories}
}

// Dashboard tolerates partial failure: each card degrades on its own so one
// slow backend endpoint cannot blank the whole landing page.
func (h *DashboardHandler) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	token := accessToken(c)
	data := pageData(c, "Dashboard")

	data["TotalUsers"] = "—"
	if stats, err := h.users.Stats(ctx, token); err == nil {
		data["TotalUsers"] = stats.Total()
	} else {
		data["Warning"] = errorMessage(err, "Statistics are unavailable")
	}

	data["TotalCategories"] = "—"
	if categories, err := h.categories.List(ctx, token, false); err == nil {
		data["TotalCategories"] = len(categories)
	}

	data["BackendStatus"] = "down"
	if pong, err := h.categories.Ping(ctx); err == nil && pong != "" {
		data["BackendStatus"] = "up"
	}

	return c.Render(http.StatusOK, "dashboard.html", data)
}
