package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/udla/user-directory/internal/core/domain"
)

// UserContextKey is where the Auth middleware stores the authenticated user.
const UserContextKey = "user"

// currentUser returns the caller injected by the Auth middleware. Handlers
// behind that middleware always have one; the check keeps a misrouted
// handler from running anonymously.
func currentUser(c echo.Context) (*domain.User, error) {
	u, ok := c.Get(UserContextKey).(*domain.User)
	if !ok || u == nil {
		return nil, domain.ErrUnauthenticated
	}
	return u, nil
}
