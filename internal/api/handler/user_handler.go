package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/udla/user-directory/internal/api/metrics"
	"github.com/udla/user-directory/internal/core/domain"
	"github.com/udla/user-directory/internal/core/ports"
)

const (
	defaultPage   = 1
	defaultOffset = 10
)

type UserHandler struct {
	directory ports.DirectoryService
}

func NewUserHandler(directory ports.DirectoryService) *UserHandler {
	return &UserHandler{directory: directory}
}

type listResponse struct {
	Items      []*domain.User    `json:"items"`
	Pagination domain.Pagination `json:"pagination"`
}

// List returns one page of users.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     TokenAuth
// @Param        page    query     int  false  "1-based page number"  default(1)
// @Param        offset  query     int  false  "page size"            default(10)
// @Success      200     {object}  Envelope{data=listResponse}
// @Failure      400     {object}  ErrorEnvelope
// @Failure      403     {object}  ErrorEnvelope
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}

	fe := domain.FieldErrors{}
	page := queryInt(c, fe, "page", defaultPage)
	offset := queryInt(c, fe, "offset", defaultOffset)
	if err := fe.Err(); err != nil {
		return err
	}

	res, err := h.directory.List(c.Request().Context(), caller, page, offset)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "users retrieved", listResponse{Items: res.Items, Pagination: res.Pagination})
}

// Get returns one user.
//
// @Summary      Get user
// @Tags         users
// @Produce      json
// @Security     TokenAuth
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  Envelope{data=domain.User}
// @Failure      404       {object}  ErrorEnvelope
// @Router       /users/{username} [get]
func (h *UserHandler) Get(c echo.Context) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}

	user, err := h.directory.Get(c.Request().Context(), caller, c.Param("username"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "user retrieved", user)
}

// Update applies a partial update. Omitted fields are left untouched.
//
// @Summary      Update user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     TokenAuth
// @Param        username  path      string            true  "Username"
// @Param        body      body      domain.UserPatch  true  "Fields to change; omitted fields are kept, null is rejected"
// @Success      200       {object}  Envelope{data=domain.User}
// @Failure      400       {object}  ErrorEnvelope
// @Failure      404       {object}  ErrorEnvelope
// @Router       /users/{username} [patch]
func (h *UserHandler) Update(c echo.Context) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}

	var patch domain.UserPatch
	if err := (&echo.DefaultBinder{}).BindBody(c, &patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	user, err := h.directory.Update(c.Request().Context(), caller, c.Param("username"), patch)
	if err != nil {
		return err
	}
	metrics.UsersUpdatedTotal.Inc()
	return respond(c, http.StatusOK, "user updated", user)
}

// Delete deactivates a user. The account is kept and can no longer log in.
//
// @Summary      Deactivate user
// @Tags         users
// @Produce      json
// @Security     TokenAuth
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  Envelope{data=domain.User}
// @Failure      400       {object}  ErrorEnvelope
// @Failure      404       {object}  ErrorEnvelope
// @Router       /users/{username} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}

	user, err := h.directory.Deactivate(c.Request().Context(), caller, c.Param("username"))
	if err != nil {
		return err
	}
	metrics.UsersDeactivatedTotal.Inc()
	return respond(c, http.StatusOK, "user deactivated", user)
}

// queryInt reads an integer query parameter, falling back to def when absent.
// Range checks belong to the service.
func queryInt(c echo.Context, fe domain.FieldErrors, name string, def int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		fe.Add(name, name+" must be a positive integer")
		return 0
	}
	return n
}
