package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/admin-console/internal/backend"
	"github.com/sirpyerre/admin-console/internal/core/domain"
)

// errorResponse is the JSON error envelope for the non-HTML endpoints.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain and backend errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders the error page for browser routes and a JSON envelope for the
//     operational endpoints.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)

		if wantsJSON(c) {
			_ = c.JSON(code, errorResponse{Error: msg})
			return
		}

		// A 401 on a page route means the session died mid-flight; send the
		// operator back to login instead of a dead-end error page.
		if code == http.StatusUnauthorized {
			_ = c.Redirect(http.StatusSeeOther, "/login")
			return
		}

		data := map[string]any{"Title": "Error", "Status": code, "Message": msg}
		if renderErr := c.Render(code, "error.html", data); renderErr != nil {
			_ = c.String(code, msg)
		}
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Backend answered with a failure envelope; surface its message.
	var be *backend.HTTPError
	if errors.As(err, &be) {
		if be.Status == http.StatusNotFound {
			return http.StatusNotFound, "record not found"
		}
		return be.Status, be.Error()
	}

	// Backend never answered at all.
	var ne *backend.NetworkError
	if errors.As(err, &ne) {
		log.Error().Err(err).Str("path", c.Path()).Msg("backend unreachable")
		return http.StatusBadGateway, "the management backend is unreachable"
	}

	// Known domain errors map to deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrSessionExpired):
		return http.StatusUnauthorized, "session expired"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "record not found"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

// wantsJSON keeps the probe and metrics surface JSON even on failure.
func wantsJSON(c echo.Context) bool {
	p := c.Request().URL.Path
	return strings.HasPrefix(p, "/healthz") || strings.HasPrefix(p, "/metrics")
}
