package handler

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/admin-console/internal/core/domain"
	"github.com/sirpyerre/admin-console/internal/core/ports"
)

// UserHandler serves the user CRUD, password, and statistics screens.
type UserHandler struct {
	users ports.UserAPI
}

func NewUserHandler(users ports.UserAPI) *UserHandler {
	return &UserHandler{users: users}
}

type userCreateForm struct {
	FirstName       string `form:"firstName"       validate:"required,min=2,max=50"`
	LastName        string `form:"lastName"        validate:"required,min=2,max=50"`
	Username        string `form:"username"        validate:"required,min=3,max=50,username"`
	Email           string `form:"email"           validate:"required,email,max=100"`
	Phone           string `form:"phone"           validate:"omitempty,phone"`
	Password        string `form:"password"        validate:"required,min=8"`
	ConfirmPassword string `form:"confirmPassword" validate:"required,eqfield=Password"`
	Role            string `form:"role"            validate:"required,oneof=ADMIN MANAGER USER"`
	Status          string `form:"status"          validate:"omitempty,oneof=ACTIVE INACTIVE SUSPENDED PENDING_VERIFICATION"`
	Active          bool   `form:"active"`
}

type userEditForm struct {
	FirstName string `form:"firstName" validate:"required,min=2,max=50"`
	LastName  string `form:"lastName"  validate:"required,min=2,max=50"`
	Email     string `form:"email"     validate:"required,email,max=100"`
	Phone     string `form:"phone"     validate:"omitempty,phone"`
	Role      string `form:"role"      validate:"required,oneof=ADMIN MANAGER USER"`
	Status    string `form:"status"    validate:"required,oneof=ACTIVE INACTIVE SUSPENDED PENDING_VERIFICATION"`
	Active    bool   `form:"active"`
}

type passwordForm struct {
	CurrentPassword string `form:"currentPassword" validate:"required"`
	NewPassword     string `form:"newPassword"     validate:"required,min=8"`
	ConfirmPassword string `form:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

func (h *UserHandler) listData(c echo.Context) map[string]any {
	data := pageData(c, "Users")
	data["Roles"] = domain.Roles()
	data["Statuses"] = domain.Statuses()
	data["FilterRole"] = c.QueryParam("role")
	data["FilterStatus"] = c.QueryParam("status")
	data["Query"] = c.QueryParam("q")
	if flash := c.QueryParam("err"); flash != "" {
		data["Error"] = flash
	}
	return data
}

// List renders the user table, filtered by role and status. A non-empty
// q looks up one user by exact username instead of listing.
func (h *UserHandler) List(c echo.Context) error {
	data := h.listData(c)
	ctx := c.Request().Context()
	token := accessToken(c)

	if q := c.QueryParam("q"); q != "" {
		user, err := h.users.GetByUsername(ctx, token, q)
		if err != nil {
			if isNotFound(err) {
				data["Error"] = "No user named " + q
				return c.Render(http.StatusOK, "user_list.html", data)
			}
			data["Error"] = errorMessage(err, "Failed to load users")
			return c.Render(http.StatusOK, "user_list.html", data)
		}
		data["Users"] = []domain.UserRecord{*user}
		return c.Render(http.StatusOK, "user_list.html", data)
	}

	users, err := h.users.List(ctx, token, ports.UserFilter{
		Status: c.QueryParam("status"),
		Role:   c.QueryParam("role"),
	})
	if err != nil {
		data["Error"] = errorMessage(err, "Failed to load users")
		return c.Render(http.StatusOK, "user_list.html", data)
	}

	data["Users"] = users
	return c.Render(http.StatusOK, "user_list.html", data)
}

// NewPage renders an empty create form.
func (h *UserHandler) NewPage(c echo.Context) error {
	data := pageData(c, "Create User")
	data["Roles"] = domain.Roles()
	data["Statuses"] = domain.Statuses()
	data["Form"] = userCreateForm{Role: domain.RoleUser, Status: domain.StatusActive}
	return c.Render(http.StatusOK, "user_form.html", data)
}

// Create validates the draft locally, including the password/confirm
// equality check, before anything reaches the network.
func (h *UserHandler) Create(c echo.Context) error {
	var form userCreateForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form submission")
	}

	renderErr := func(msg string) error {
		data := pageData(c, "Create User")
		data["Error"] = msg
		data["Roles"] = domain.Roles()
		data["Statuses"] = domain.Statuses()
		data["Form"] = form
		return c.Render(http.StatusUnprocessableEntity, "user_form.html", data)
	}

	if err := c.Validate(&form); err != nil {
		return renderErr(err.Error())
	}

	draft := domain.UserDraft{
		Username:  form.Username,
		Email:     form.Email,
		Password:  form.Password,
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Phone:     form.Phone,
		Role:      form.Role,
		Status:    form.Status,
	}
	if _, err := h.users.Create(c.Request().Context(), accessToken(c), draft); err != nil {
		return renderErr(errorMessage(err, "Failed to create user"))
	}

	return c.Redirect(http.StatusSeeOther, "/users")
}

// View renders one user read-only.
func (h *UserHandler) View(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	user, err := h.users.Get(c.Request().Context(), accessToken(c), id)
	if err != nil {
		return err
	}

	data := pageData(c, user.FullName())
	data["Record"] = user
	if flash := c.QueryParam("msg"); flash != "" {
		data["Flash"] = flash
	}
	return c.Render(http.StatusOK, "user_view.html", data)
}

// EditPage loads the record and seeds the form from it.
func (h *UserHandler) EditPage(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	user, err := h.users.Get(c.Request().Context(), accessToken(c), id)
	if err != nil {
		return err
	}

	data := pageData(c, "Edit User")
	data["Record"] = user
	data["Roles"] = domain.Roles()
	data["Statuses"] = domain.Statuses()
	data["Form"] = userEditForm{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Phone:     user.Phone,
		Role:      user.Role,
		Status:    user.Status,
		Active:    user.Active,
	}
	return c.Render(http.StatusOK, "user_form.html", data)
}

// Edit diffs the submitted form against the current record and sends only
// the changed fields; an edit that changes nothing issues no update at all.
func (h *UserHandler) Edit(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	current, err := h.users.Get(c.Request().Context(), accessToken(c), id)
	if err != nil {
		return err
	}

	var form userEditForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form submission")
	}

	renderErr := func(msg string) error {
		data := pageData(c, "Edit User")
		data["Error"] = msg
		data["Record"] = current
		data["Roles"] = domain.Roles()
		data["Statuses"] = domain.Statuses()
		data["Form"] = form
		return c.Render(http.StatusUnprocessableEntity, "user_form.html", data)
	}

	if err := c.Validate(&form); err != nil {
		return renderErr(err.Error())
	}

	var patch domain.UserPatch
	if form.Email != current.Email {
		patch.Email = &form.Email
	}
	if form.FirstName != current.FirstName {
		patch.FirstName = &form.FirstName
	}
	if form.LastName != current.LastName {
		patch.LastName = &form.LastName
	}
	if form.Phone != current.Phone {
		patch.Phone = &form.Phone
	}
	if form.Role != current.Role {
		patch.Role = &form.Role
	}
	if form.Status != current.Status {
		patch.Status = &form.Status
	}
	if form.Active != current.Active {
		patch.Active = &form.Active
	}

	if !patch.Empty() {
		if _, err := h.users.Update(c.Request().Context(), accessToken(c), id, patch); err != nil {
			return renderErr(errorMessage(err, "Failed to update user"))
		}
	}

	return c.Redirect(http.StatusSeeOther, "/users")
}

// PasswordPage renders the change-password form for one user.
func (h *UserHandler) PasswordPage(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	user, err := h.users.Get(c.Request().Context(), accessToken(c), id)
	if err != nil {
		return err
	}

	data := pageData(c, "Change Password")
	data["Record"] = user
	return c.Render(http.StatusOK, "user_password.html", data)
}

// ChangePassword validates locally (mismatched confirmation never reaches
// the network), then submits the change.
func (h *UserHandler) ChangePassword(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	user, err := h.users.Get(c.Request().Context(), accessToken(c), id)
	if err != nil {
		return err
	}

	var form passwordForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form submission")
	}

	renderErr := func(msg string) error {
		data := pageData(c, "Change Password")
		data["Error"] = msg
		data["Record"] = user
		return c.Render(http.StatusUnprocessableEntity, "user_password.html", data)
	}

	if err := c.Validate(&form); err != nil {
		return renderErr(err.Error())
	}

	change := domain.PasswordChange{
		CurrentPassword: form.CurrentPassword,
		NewPassword:     form.NewPassword,
		ConfirmPassword: form.ConfirmPassword,
	}
	if err := h.users.ChangePassword(c.Request().Context(), accessToken(c), id, change); err != nil {
		return renderErr(errorMessage(err, "Failed to change password"))
	}

	return c.Redirect(http.StatusSeeOther, "/users/"+c.Param("id")+"?msg="+url.QueryEscape("Password changed"))
}

// Delete removes a user; failures flow back to the list as a flash message.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.users.Delete(c.Request().Context(), accessToken(c), id); err != nil {
		msg := errorMessage(err, "Failed to delete user")
		return c.Redirect(http.StatusSeeOther, "/users?err="+url.QueryEscape(msg))
	}
	return c.Redirect(http.StatusSeeOther, "/users")
}

// Stats renders the aggregate role/status counts.
func (h *UserHandler) Stats(c echo.Context) error {
	stats, err := h.users.Stats(c.Request().Context(), accessToken(c))
	if err != nil {
		return err
	}

	data := pageData(c, "User Statistics")
	data["Stats"] = stats
	return c.Render(http.StatusOK, "user_stats.html", data)
}
