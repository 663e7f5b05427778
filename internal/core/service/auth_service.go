package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/udla/user-directory/internal/core/domain"
	"github.com/udla/user-directory/internal/core/ports"
)

// AuthService implements credential and bearer-token authentication.
type AuthService struct {
	users  ports.UserRepository
	tokens ports.TokenIssuer
	hasher ports.PasswordHasher
	log    zerolog.Logger

	// dummyHash is compared against when the username is unknown so both
	// failure paths cost one bcrypt comparison.
	dummyHash string
}

func NewAuthService(users ports.UserRepository, tokens ports.TokenIssuer, hasher ports.PasswordHasher, log zerolog.Logger) (*AuthService, error) {
	dummy, err := hasher.Hash("unused-password-for-timing")
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}
	return &AuthService{users: users, tokens: tokens, hasher: hasher, log: log, dummyHash: dummy}, nil
}

// Authenticate verifies username and password. Unknown users and wrong
// passwords yield the same ErrInvalidCredentials; a correct password on an
// inactive account yields ErrAccountDisabled.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = s.hasher.Compare(s.dummyHash, password)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if s.hasher.Compare(user.PasswordHash, password) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		s.log.Info().Str("user_id", user.ID).Msg("login attempt on disabled account")
		return nil, domain.ErrAccountDisabled
	}
	return user, nil
}

// Login authenticates and returns the user's bearer token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.AuthResult, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user logged in")
	return &ports.AuthResult{User: user, Token: token}, nil
}

// UserForToken resolves a bearer token to its active owner.
func (s *AuthService) UserForToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}

	userID, err := s.tokens.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("token owner: %w", err)
	}
	if !user.IsActive {
		return nil, domain.ErrAccountDisabled
	}
	return user, nil
}
