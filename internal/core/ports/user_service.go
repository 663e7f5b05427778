package ports

import (
	"context"

	"github.com/udla/user-directory/internal/core/domain"
)

// RegisterInput is the transport-neutral registration payload.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	// Role is optional; empty means domain.RoleStandard.
	Role string
}

// RegistrationService creates accounts.
type RegistrationService interface {
	Register(ctx context.Context, caller *domain.User, input RegisterInput) (*AuthResult, error)
	// Bootstrap creates an admin account without a caller.
	Bootstrap(ctx context.Context, input RegisterInput) (*domain.User, error)
}

// ListUsersResult is one page of the directory.
type ListUsersResult struct {
	Items      []*domain.User
	Pagination domain.Pagination
}

// DirectoryService reads and maintains existing accounts. Every operation
// requires an admin caller.
type DirectoryService interface {
	List(ctx context.Context, caller *domain.User, page, offset int) (*ListUsersResult, error)
	Get(ctx context.Context, caller *domain.User, username string) (*domain.User, error)
	Update(ctx context.Context, caller *domain.User, username string, patch domain.UserPatch) (*domain.User, error)
	Deactivate(ctx context.Context, caller *domain.User, username string) (*domain.User, error)
}
