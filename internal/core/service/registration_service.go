package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/udla/user-directory/internal/core/domain"
	"github.com/udla/user-directory/internal/core/ports"
)

// RegistrationService creates user accounts.
type RegistrationService struct {
	users  ports.UserRepository
	tokens ports.TokenIssuer
	hasher ports.PasswordHasher
	rules  *userRules
	log    zerolog.Logger
	now    func() time.Time
}

func NewRegistrationService(
	users ports.UserRepository,
	tokens ports.TokenIssuer,
	hasher ports.PasswordHasher,
	emailDomain string,
	log zerolog.Logger,
) *RegistrationService {
	return &RegistrationService{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		rules:  newUserRules(emailDomain),
		log:    log,
		now:    time.Now,
	}
}

// Register validates input, creates the user and issues its token. Only an
// admin caller may register; that check runs before any validation.
func (s *RegistrationService) Register(ctx context.Context, caller *domain.User, input ports.RegisterInput) (*ports.AuthResult, error) {
	if !domain.IsAdmin(caller) {
		return nil, domain.ErrForbidden
	}

	user, err := s.create(ctx, input, false)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("user_id", user.ID).
		Str("role", string(user.Role)).
		Str("created_by", caller.ID).
		Msg("user registered")

	return &ports.AuthResult{User: user, Token: token}, nil
}

// Bootstrap creates an admin account. The reserved username is allowed so
// the first superuser can be called "admin".
func (s *RegistrationService) Bootstrap(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	input.Role = string(domain.RoleAdmin)

	user, err := s.create(ctx, input, true)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("admin bootstrapped")
	return user, nil
}

func (s *RegistrationService) create(ctx context.Context, input ports.RegisterInput, bootstrap bool) (*domain.User, error) {
	fe := domain.FieldErrors{}
	username := s.rules.username(fe, input.Username, bootstrap)
	email := s.rules.email(fe, input.Email)
	s.rules.password(fe, input.Password)
	role := s.rules.role(fe, input.Role, false)

	dup, err := ensureUnique(ctx, s.users, fe, username, email)
	if err != nil {
		return nil, err
	}
	if err := validationFailure(fe, dup); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			s.log.Warn().Msg("registration lost a uniqueness race")
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}
