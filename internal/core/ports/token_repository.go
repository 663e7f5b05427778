package ports

import "context"

// TokenRepository persists the single bearer token of each user.
type TokenRepository interface {
	// GetOrCreate stores candidate for userID unless a token already exists,
	// and returns whichever token is stored afterwards.
	GetOrCreate(ctx context.Context, userID, candidate string) (string, error)
	// FindUserID returns the owner of token or domain.ErrInvalidToken.
	FindUserID(ctx context.Context, token string) (string, error)
}
