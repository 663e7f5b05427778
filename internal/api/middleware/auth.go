package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/udla/user-directory/internal/api/handler"
	"github.com/udla/user-directory/internal/core/domain"
	"github.com/udla/user-directory/internal/core/ports"
)

// Auth resolves the bearer token to an active user and stores it under
// handler.UserContextKey. Both "Bearer <token>" and "Token <token>" are
// accepted.
func Auth(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			token, ok := parseAuthorization(authHeader)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			user, err := auth.UserForToken(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrInvalidToken) ||
					errors.Is(err, domain.ErrAccountDisabled) ||
					errors.Is(err, domain.ErrUnauthenticated) {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid token").SetInternal(err)
				}
				return err
			}

			c.Set(handler.UserContextKey, user)
			return next(c)
		}
	}
}

func parseAuthorization(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok {
		return "", false
	}
	if !strings.EqualFold(scheme, "bearer") && !strings.EqualFold(scheme, "token") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
