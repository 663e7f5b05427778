package ports

import (
	"context"

	"github.com/udla/user-directory/internal/core/domain"
)

// UserRepository is the credential store. Implementations enforce unique
// usernames and unique lower-cased emails and translate a uniqueness
// violation into domain.ErrUserExists.
type UserRepository interface {
	// Create inserts user and returns it with the store-assigned ID.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// Update rewrites every mutable column of the user identified by user.ID.
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// ExistsByEmail expects an already normalized address.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// List returns at most limit users ordered by ID, skipping the first skip.
	List(ctx context.Context, skip, limit int) ([]*domain.User, error)
	Count(ctx context.Context) (int64, error)
}
