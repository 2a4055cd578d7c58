package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/admin-console/internal/api/middleware"
	"github.com/sirpyerre/admin-console/internal/backend"
)

// pageData seeds the template data every page needs: the title and the
// current operator for the navigation shell.
func pageData(c echo.Context, title string) map[string]any {
	data := map[string]any{"Title": title}
	if s := middleware.CurrentSession(c); s != nil {
		data["User"] = s.User
	}
	return data
}

// accessToken returns the current session's bearer token. Route protection
// guarantees a session on protected routes; an empty token only ever
// reaches the backend from the public pages, which don't call this.
func accessToken(c echo.Context) string {
	if s := middleware.CurrentSession(c); s != nil {
		return s.AccessToken
	}
	return ""
}

// pathID parses the :id route parameter. A malformed ID is a 404, not a
// 400: the URL simply names no record.
func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, "record not found")
	}
	return id, nil
}

// errorMessage turns a backend failure into the message shown inline on a
// page, preferring the envelope's message and detail list.
func errorMessage(err error, fallback string) string {
	var he *backend.HTTPError
	if errors.As(err, &he) && he.Message != "" {
		if len(he.Errors) > 0 {
			return he.Message + ": " + strings.Join(he.Errors, "; ")
		}
		return he.Message
	}
	var ne *backend.NetworkError
	if errors.As(err, &ne) {
		return "The management backend is unreachable"
	}
	return fallback
}

// isNotFound reports whether err is the backend saying 404.
func isNotFound(err error) bool {
	var he *backend.HTTPError
	return errors.As(err, &he) && he.Status == http.StatusNotFound
}
