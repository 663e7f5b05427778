// Package app assembles the core services on top of an opened store. Both
// the HTTP server and the admin CLI build their dependencies here.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/udla/user-directory/internal/core/domain"
	"github.com/udla/user-directory/internal/core/ports"
	"github.com/udla/user-directory/internal/core/service"
	"github.com/udla/user-directory/internal/infrastructure/db"
	"github.com/udla/user-directory/internal/pkg/config"
)

// Services are the core use cases wired to one store.
type Services struct {
	Auth         *service.AuthService
	Registration *service.RegistrationService
	Directory    *service.DirectoryService
}

func NewServices(cfg *config.Config, store *db.Store, log zerolog.Logger) (*Services, error) {
	hasher := service.NewBcryptHasher(cfg.BcryptCost)
	tokens := service.NewTokenService(store.Tokens, cfg.TokenSecret)

	auth, err := service.NewAuthService(store.Users, tokens, hasher, log.With().Str("component", "auth").Logger())
	if err != nil {
		return nil, err
	}

	return &Services{
		Auth:         auth,
		Registration: service.NewRegistrationService(store.Users, tokens, hasher, cfg.EmailDomain, log.With().Str("component", "registration").Logger()),
		Directory:    service.NewDirectoryService(store.Users, hasher, cfg.EmailDomain, log.With().Str("component", "directory").Logger()),
	}, nil
}

// EnsureAdmin creates the configured bootstrap admin. An existing account
// with that username is left untouched and reported as created=false.
func EnsureAdmin(ctx context.Context, reg ports.RegistrationService, b config.BootstrapConfig) (created bool, err error) {
	_, err = reg.Bootstrap(ctx, BootstrapInput(b.Username, b.Email, b.Password))
	if err == nil {
		return true, nil
	}

	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		if errors.Is(err, domain.ErrUserExists) && ve.Fields.Has("username") {
			return false, nil
		}
	case errors.Is(err, domain.ErrUserExists):
		return false, nil
	}
	return false, fmt.Errorf("bootstrap admin: %w", err)
}

// BootstrapInput builds the registration input for an admin account.
func BootstrapInput(username, email, password string) ports.RegisterInput {
	return ports.RegisterInput{Username: username, Email: email, Password: password}
}
