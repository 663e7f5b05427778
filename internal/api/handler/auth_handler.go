package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/udla/user-directory/internal/api/metrics"
	"github.com/udla/user-directory/internal/core/domain"
	"github.com/udla/user-directory/internal/core/ports"
)

// LoginEvent is tracked on the flag backend after every successful login.
const LoginEvent = "user_login"

type AuthHandler struct {
	auth      ports.AuthService
	registrar ports.RegistrationService
	flags     ports.FeatureFlags
}

func NewAuthHandler(auth ports.AuthService, registrar ports.RegistrationService, flags ports.FeatureFlags) *AuthHandler {
	return &AuthHandler{auth: auth, registrar: registrar, flags: flags}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     TokenAuth
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  Envelope{data=authResponse}
// @Failure      400   {object}  ErrorEnvelope
// @Failure      401   {object}  ErrorEnvelope
// @Failure      403   {object}  ErrorEnvelope
// @Router       /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	res, err := h.registrar.Register(c.Request().Context(), caller, ports.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}

	metrics.UsersRegisteredTotal.WithLabelValues(string(res.User.Role)).Inc()
	return respond(c, http.StatusCreated, "user registered", authResponse{User: res.User, Token: res.Token})
}

// Login authenticates a user and returns its bearer token. The token is the
// same on every login.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  Envelope{data=authResponse}
// @Failure      400   {object}  ErrorEnvelope
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	res, err := h.auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	if h.flags != nil {
		h.flags.Track(ctx, LoginEvent, domain.UserFlagContext(res.User))
	}

	return respond(c, http.StatusOK, "login successful", authResponse{User: res.User, Token: res.Token})
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrAccountDisabled):
		return "disabled"
	default:
		return "error"
	}
}
