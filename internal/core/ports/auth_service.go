package ports

import (
	"context"

	"github.com/udla/user-directory/internal/core/domain"
)

// AuthResult pairs a user with its bearer token.
type AuthResult struct {
	User  *domain.User
	Token string
}

// PasswordHasher wraps the one-way hash used for credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer hands out the durable bearer token of a user.
type TokenIssuer interface {
	Issue(ctx context.Context, user *domain.User) (string, error)
	Resolve(ctx context.Context, token string) (string, error)
}

// AuthService authenticates credentials and bearer tokens.
type AuthService interface {
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*AuthResult, error)
	// UserForToken returns the active owner of a bearer token.
	UserForToken(ctx context.Context, token string) (*domain.User, error)
}
