package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/udla/user-directory/internal/core/domain"
	"github.com/udla/user-directory/internal/core/ports"
)

const tokenEntropyBytes = 20

// TokenService issues one durable bearer token per user. Tokens are signed
// so forged values are rejected without a store lookup; the repository
// stays the source of truth for which token belongs to whom.
type TokenService struct {
	repo   ports.TokenRepository
	secret []byte
	now    func() time.Time
}

func NewTokenService(repo ports.TokenRepository, secret string) *TokenService {
	return &TokenService{repo: repo, secret: []byte(secret), now: time.Now}
}

// Issue returns the user's stored token, minting and persisting one on first use.
func (s *TokenService) Issue(ctx context.Context, user *domain.User) (string, error) {
	candidate, err := s.mint(user.ID)
	if err != nil {
		return "", err
	}

	token, err := s.repo.GetOrCreate(ctx, user.ID, candidate)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// Resolve returns the ID of the user owning token.
func (s *TokenService) Resolve(ctx context.Context, token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", domain.ErrInvalidToken
	}

	userID, err := s.repo.FindUserID(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidToken) {
			return "", domain.ErrInvalidToken
		}
		return "", fmt.Errorf("resolve token: %w", err)
	}
	if userID != claims.Subject {
		return "", domain.ErrInvalidToken
	}
	return userID, nil
}

func (s *TokenService) mint(userID string) (string, error) {
	b := make([]byte, tokenEntropyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("token entropy: %w", err)
	}

	claims := jwt.RegisteredClaims{
		ID:       hex.EncodeToString(b),
		Subject:  userID,
		IssuedAt: jwt.NewNumericDate(s.now()),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
