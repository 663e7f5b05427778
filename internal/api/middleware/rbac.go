package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/udla/user-directory/internal/api/handler"
	"github.com/udla/user-directory/internal/core/domain"
)

// RequireAdmin lets only active admins through. It must run after Auth.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, _ := c.Get(handler.UserContextKey).(*domain.User)
			if !domain.IsAdmin(user) {
				return echo.NewHTTPError(http.StatusForbidden, domain.ErrForbidden.Error())
			}
			return next(c)
		}
	}
}
