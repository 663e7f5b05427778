package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/udla/user-directory/internal/api/handler"
	"github.com/udla/user-directory/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain errors to their HTTP status codes.
//   - Renders validation failures with their field → messages map as data.
//   - Logs unexpected errors without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg, data := resolveError(err, log, c)
		body := handler.ErrorEnvelope{Error: msg, Data: data, Status: code}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string, any) {
	// Field errors come first: a duplicate found by the pre-check is a
	// ValidationError that also matches ErrUserExists.
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, "validation failed", ve.Fields
	}

	// Echo's own errors (bind failures, 404 from router, middleware rejections).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message), nil
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusBadRequest, "unable to log in with provided credentials", nil
	case errors.Is(err, domain.ErrAccountDisabled):
		// Only reached after the password matched.
		return http.StatusBadRequest, "user account is disabled", nil
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, err.Error(), nil
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, err.Error(), nil
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, err.Error(), nil
	case errors.Is(err, domain.ErrUserExists),
		errors.Is(err, domain.ErrAlreadyInactive):
		return http.StatusBadRequest, err.Error(), nil
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error", nil
}
