package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/udla/user-directory/internal/core/domain"
	"github.com/udla/user-directory/internal/core/ports"
)

const testDomain = "udla.edu.ec"

// stubUserRepo is an in-memory ports.UserRepository that enforces the same
// uniqueness rules as the real stores.
type stubUserRepo struct {
	users  []*domain.User
	nextID int

	// createErr, when set, is returned by Create to simulate a store race.
	createErr error
	listCalls int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{nextID: 1}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) conflicts(u *domain.User) bool {
	for _, existing := range r.users {
		if existing.ID == u.ID {
			continue
		}
		if existing.Username == u.Username || strings.EqualFold(existing.Email, u.Email) {
			return true
		}
	}
	return false
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	if r.conflicts(user) {
		return nil, domain.ErrUserExists
	}
	stored := cloneUser(user)
	stored.ID = strconv.Itoa(r.nextID)
	r.nextID++
	r.users = append(r.users, stored)
	return cloneUser(stored), nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	for i, existing := range r.users {
		if existing.ID != user.ID {
			continue
		}
		if r.conflicts(user) {
			return nil, domain.ErrUserExists
		}
		r.users[i] = cloneUser(user)
		return cloneUser(user), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.FindByUsername(ctx, username)
	return err == nil, nil
}

func (r *stubUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) List(_ context.Context, skip, limit int) ([]*domain.User, error) {
	r.listCalls++
	if skip < 0 || limit < 1 {
		return nil, fmt.Errorf("stub list: invalid window skip=%d limit=%d", skip, limit)
	}
	out := []*domain.User{}
	for i := skip; i < len(r.users) && len(out) < limit; i++ {
		out = append(out, cloneUser(r.users[i]))
	}
	return out, nil
}

func (r *stubUserRepo) Count(context.Context) (int64, error) {
	return int64(len(r.users)), nil
}

// stubTokenRepo is an in-memory ports.TokenRepository.
type stubTokenRepo struct {
	byUser  map[string]string
	byToken map[string]string
	lookups int
}

func newStubTokenRepo() *stubTokenRepo {
	return &stubTokenRepo{byUser: map[string]string{}, byToken: map[string]string{}}
}

func (r *stubTokenRepo) GetOrCreate(_ context.Context, userID, candidate string) (string, error) {
	if tok, ok := r.byUser[userID]; ok {
		return tok, nil
	}
	r.byUser[userID] = candidate
	r.byToken[candidate] = userID
	return candidate, nil
}

func (r *stubTokenRepo) FindUserID(_ context.Context, token string) (string, error) {
	r.lookups++
	id, ok := r.byToken[token]
	if !ok {
		return "", domain.ErrInvalidToken
	}
	return id, nil
}

// fixture bundles the services over shared stubs.
type fixture struct {
	users  *stubUserRepo
	tokens *stubTokenRepo
	hasher *BcryptHasher
	issuer *TokenService
	auth   *AuthService
	reg    *RegistrationService
	dir    *DirectoryService
	admin  *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		users:  newStubUserRepo(),
		tokens: newStubTokenRepo(),
		hasher: NewBcryptHasher(bcrypt.MinCost),
	}
	f.issuer = NewTokenService(f.tokens, "test-secret")

	auth, err := NewAuthService(f.users, f.issuer, f.hasher, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	f.auth = auth
	f.reg = NewRegistrationService(f.users, f.issuer, f.hasher, testDomain, zerolog.Nop())
	f.dir = NewDirectoryService(f.users, f.hasher, testDomain, zerolog.Nop())

	admin, err := f.reg.Bootstrap(context.Background(), ports.RegisterInput{
		Username: "admin",
		Email:    "admin@udla.edu.ec",
		Password: "admin-pass",
	})
	if err != nil {
		t.Fatalf("bootstrap admin: %v", err)
	}
	f.admin = admin
	return f
}

// register creates a standard user through the admin.
func (f *fixture) register(t *testing.T, username, password string) *ports.AuthResult {
	t.Helper()
	res, err := f.reg.Register(context.Background(), f.admin, ports.RegisterInput{
		Username: username,
		Email:    strings.ReplaceAll(strings.ToLower(username), " ", ".") + "@udla.edu.ec",
		Password: password,
	})
	if err != nil {
		t.Fatalf("register %q: %v", username, err)
	}
	return res
}
