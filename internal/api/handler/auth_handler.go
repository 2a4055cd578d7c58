package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/admin-console/internal/api/middleware"
	"github.com/sirpyerre/admin-console/internal/core/domain"
	"github.com/sirpyerre/admin-console/internal/core/ports"
)

// CookieConfig describes the session cookie the auth handler issues.
type CookieConfig struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// AuthHandler serves the login and register screens and the logout actions.
type AuthHandler struct {
	sessions ports.SessionManager
	cookie   CookieConfig
}

func NewAuthHandler(sessions ports.SessionManager, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{sessions: sessions, cookie: cookie}
}

type loginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
	Next     string `form:"next"`
}

type registerForm struct {
	FirstName       string `form:"firstName"       validate:"required,min=2,max=50"`
	LastName        string `form:"lastName"        validate:"required,min=2,max=50"`
	Username        string `form:"username"        validate:"required,min=3,max=50,username"`
	Email           string `form:"email"           validate:"required,email,max=100"`
	Phone           string `form:"phone"           validate:"omitempty,phone"`
	Password        string `form:"password"        validate:"required,min=8"`
	ConfirmPassword string `form:"confirmPassword" validate:"required,eqfield=Password"`
}

// LoginPage renders the sign-in screen; an already authenticated operator
// is sent straight to the dashboard.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	if middleware.CurrentSession(c) != nil {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	data := pageData(c, "Sign In")
	data["Username"] = ""
	data["Next"] = c.QueryParam("next")
	return c.Render(http.StatusOK, "login.html", data)
}

// Login authenticates against the backend. Invalid credentials keep the
// operator on the login screen with an inline message; success issues the
// session cookie and redirects to the requested page.
func (h *AuthHandler) Login(c echo.Context) error {
	var form loginForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form submission")
	}

	renderErr := func(msg string) error {
		data := pageData(c, "Sign In")
		data["Error"] = msg
		data["Username"] = form.Username
		data["Next"] = form.Next
		return c.Render(http.StatusUnauthorized, "login.html", data)
	}

	if err := c.Validate(&form); err != nil {
		return renderErr(err.Error())
	}

	sid, _, err := h.sessions.Login(c.Request().Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return renderErr("Invalid username or password")
		}
		return renderErr(errorMessage(err, "Login failed"))
	}

	c.SetCookie(middleware.NewCookie(h.cookie.Name, sid, h.cookie.TTL, h.cookie.Secure))

	target := "/"
	if middleware.SafeNext(form.Next) {
		target = form.Next
	}
	return c.Redirect(http.StatusSeeOther, target)
}

// RegisterPage renders the self-registration screen.
func (h *AuthHandler) RegisterPage(c echo.Context) error {
	if middleware.CurrentSession(c) != nil {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	data := pageData(c, "Register")
	data["Form"] = registerForm{}
	return c.Render(http.StatusOK, "register.html", data)
}

// Register creates an account and logs the operator straight in. Validation
// failures and backend rejections re-render the form with the draft intact.
func (h *AuthHandler) Register(c echo.Context) error {
	var form registerForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form submission")
	}

	renderErr := func(status int, msg string) error {
		data := pageData(c, "Register")
		data["Error"] = msg
		data["Form"] = form
		return c.Render(status, "register.html", data)
	}

	if err := c.Validate(&form); err != nil {
		return renderErr(http.StatusUnprocessableEntity, err.Error())
	}

	sid, _, err := h.sessions.Register(c.Request().Context(), ports.RegisterInput{
		Username:  form.Username,
		Email:     form.Email,
		Password:  form.Password,
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Phone:     form.Phone,
	})
	if err != nil {
		return renderErr(http.StatusUnprocessableEntity, errorMessage(err, "Registration failed"))
	}

	c.SetCookie(middleware.NewCookie(h.cookie.Name, sid, h.cookie.TTL, h.cookie.Secure))
	return c.Redirect(http.StatusSeeOther, "/")
}

// Logout invalidates the refresh token server-side (best effort), destroys
// the console session, and always lands on the login screen.
func (h *AuthHandler) Logout(c echo.Context) error {
	if sid := middleware.SessionID(c); sid != "" {
		if err := h.sessions.Logout(c.Request().Context(), sid); err != nil {
			return err
		}
	}
	c.SetCookie(middleware.ExpiredCookie(h.cookie.Name))
	return c.Redirect(http.StatusSeeOther, "/login")
}

// LogoutAll invalidates every device's refresh token for the current user.
func (h *AuthHandler) LogoutAll(c echo.Context) error {
	if sid := middleware.SessionID(c); sid != "" {
		if err := h.sessions.LogoutAll(c.Request().Context(), sid); err != nil {
			c.SetCookie(middleware.ExpiredCookie(h.cookie.Name))
			return err
		}
	}
	c.SetCookie(middleware.ExpiredCookie(h.cookie.Name))
	return c.Redirect(http.StatusSeeOther, "/login")
}
