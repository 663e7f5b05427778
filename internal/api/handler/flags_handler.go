package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/udla/user-directory/internal/core/domain"
	"github.com/udla/user-directory/internal/core/ports"
)

type FlagsHandler struct {
	flags ports.FeatureFlags
}

func NewFlagsHandler(flags ports.FeatureFlags) *FlagsHandler {
	return &FlagsHandler{flags: flags}
}

type flagStatusResponse struct {
	Initialized bool `json:"initialized"`
}

type flagResponse struct {
	Key     string             `json:"key"`
	Enabled bool               `json:"enabled"`
	Context domain.FlagContext `json:"context"`
}

// Status reports whether the flag client is connected to a backend.
//
// @Summary      Feature-flag client status
// @Tags         flags
// @Produce      json
// @Security     TokenAuth
// @Success      200  {object}  Envelope{data=flagStatusResponse}
// @Router       /flags/status [get]
func (h *FlagsHandler) Status(c echo.Context) error {
	return respond(c, http.StatusOK, "feature flags status", flagStatusResponse{Initialized: h.flags.Initialized()})
}

// Evaluate evaluates one flag for the caller.
//
// @Summary      Evaluate flag
// @Tags         flags
// @Produce      json
// @Security     TokenAuth
// @Param        key  path      string  true  "Flag key"
// @Success      200  {object}  Envelope{data=flagResponse}
// @Router       /flags/{key} [get]
func (h *FlagsHandler) Evaluate(c echo.Context) error {
	caller, _ := c.Get(UserContextKey).(*domain.User)
	fc := domain.UserFlagContext(caller)
	key := c.Param("key")

	on := h.flags.IsEnabled(c.Request().Context(), key, fc)
	return respond(c, http.StatusOK, "flag evaluated", flagResponse{Key: key, Enabled: on, Context: fc})
}
