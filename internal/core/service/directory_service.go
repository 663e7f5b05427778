package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/udla/user-directory/internal/core/domain"
	"github.com/udla/user-directory/internal/core/ports"
)

// DirectoryService lists, reads, updates and deactivates accounts.
type DirectoryService struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	rules  *userRules
	log    zerolog.Logger
	now    func() time.Time
}

func NewDirectoryService(users ports.UserRepository, hasher ports.PasswordHasher, emailDomain string, log zerolog.Logger) *DirectoryService {
	return &DirectoryService{
		users:  users,
		hasher: hasher,
		rules:  newUserRules(emailDomain),
		log:    log,
		now:    time.Now,
	}
}

// List returns one page of users ordered by ID. A page past the end yields
// no items and is not an error.
func (s *DirectoryService) List(ctx context.Context, caller *domain.User, page, offset int) (*ports.ListUsersResult, error) {
	if !domain.IsAdmin(caller) {
		return nil, domain.ErrForbidden
	}

	fe := domain.FieldErrors{}
	if page < 1 {
		fe.Add("page", "page must be a positive integer")
	}
	if offset < 1 {
		fe.Add("offset", "offset must be a positive integer")
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}

	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	pagination, skip := domain.Paginate(total, page, offset)
	items := []*domain.User{}
	if pagination.InRange() {
		items, err = s.users.List(ctx, skip, offset)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
	}

	return &ports.ListUsersResult{Items: items, Pagination: pagination}, nil
}

// Get returns the user named username.
func (s *DirectoryService) Get(ctx context.Context, caller *domain.User, username string) (*domain.User, error) {
	if !domain.IsAdmin(caller) {
		return nil, domain.ErrForbidden
	}
	return s.users.FindByUsername(ctx, username)
}

// Update applies the fields present in patch. Uniqueness is re-checked only
// for a username or email that actually changes.
func (s *DirectoryService) Update(ctx context.Context, caller *domain.User, username string, patch domain.UserPatch) (*domain.User, error) {
	if !domain.IsAdmin(caller) {
		return nil, domain.ErrForbidden
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return user, nil
	}

	fe := domain.FieldErrors{}
	next := *user

	if patch.Username.Set {
		if patch.Username.Null {
			fe.Add("username", "username may not be null")
		} else {
			keep := domain.NormalizeUsername(patch.Username.Value) == user.Username
			next.Username = s.rules.username(fe, patch.Username.Value, keep)
		}
	}
	if patch.Email.Set {
		if patch.Email.Null {
			fe.Add("email", "email may not be null")
		} else {
			next.Email = s.rules.email(fe, patch.Email.Value)
		}
	}
	if patch.Password.Set {
		if patch.Password.Null {
			fe.Add("password", "password may not be null")
		} else {
			s.rules.password(fe, patch.Password.Value)
		}
	}
	if patch.Role.Set {
		if patch.Role.Null {
			fe.Add("role", "role may not be null")
		} else {
			next.Role = s.rules.role(fe, patch.Role.Value, true)
		}
	}

	var changedUsername, changedEmail string
	if next.Username != user.Username {
		changedUsername = next.Username
	}
	if next.Email != user.Email {
		changedEmail = next.Email
	}
	dup, err := ensureUnique(ctx, s.users, fe, changedUsername, changedEmail)
	if err != nil {
		return nil, err
	}
	if err := validationFailure(fe, dup); err != nil {
		return nil, err
	}

	if patch.Password.Present() {
		hash, err := s.hasher.Hash(patch.Password.Value)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		next.PasswordHash = hash
	}
	next.UpdatedAt = s.now().UTC()

	updated, err := s.save(ctx, &next)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("user_id", updated.ID).
		Str("fields", strings.Join(patchedFields(patch), ",")).
		Str("updated_by", caller.ID).
		Msg("user updated")
	return updated, nil
}

// Deactivate soft-deletes the user. Deactivating an inactive user fails
// with ErrAlreadyInactive.
func (s *DirectoryService) Deactivate(ctx context.Context, caller *domain.User, username string) (*domain.User, error) {
	if !domain.IsAdmin(caller) {
		return nil, domain.ErrForbidden
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrAlreadyInactive
	}

	user.IsActive = false
	user.UpdatedAt = s.now().UTC()

	updated, err := s.save(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", updated.ID).Str("deactivated_by", caller.ID).Msg("user deactivated")
	return updated, nil
}

func (s *DirectoryService) save(ctx context.Context, user *domain.User) (*domain.User, error) {
	updated, err := s.users.Update(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) || errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return updated, nil
}

func patchedFields(p domain.UserPatch) []string {
	var fields []string
	if p.Username.Set {
		fields = append(fields, "username")
	}
	if p.Email.Set {
		fields = append(fields, "email")
	}
	if p.Password.Set {
		fields = append(fields, "password")
	}
	if p.Role.Set {
		fields = append(fields, "role")
	}
	return fields
}
