package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/udla/user-directory/internal/core/domain"
	"github.com/udla/user-directory/internal/core/ports"
)

// bcrypt ignores input past 72 bytes and x/crypto rejects it outright.
const passwordMaxBytes = 72

var personNamePattern = regexp.MustCompile(`^[\p{L}\p{M} ]+$`)

// userRules applies the field rules shared by registration and update.
// Each method records failures in fe and returns the normalized value.
type userRules struct {
	v           *validator.Validate
	emailDomain string
}

func newUserRules(emailDomain string) *userRules {
	emailDomain = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(emailDomain), "@"))

	v := validator.New()
	_ = v.RegisterValidation("person_name", func(fl validator.FieldLevel) bool {
		return personNamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("institutional_email", func(fl validator.FieldLevel) bool {
		return emailDomain == "" || strings.HasSuffix(fl.Field().String(), "@"+emailDomain)
	})
	return &userRules{v: v, emailDomain: emailDomain}
}

func (r *userRules) username(fe domain.FieldErrors, raw string, allowReserved bool) string {
	name := domain.NormalizeUsername(raw)
	switch {
	case name == "":
		fe.Add("username", "username is required")
	case r.v.Var(name, "person_name") != nil:
		fe.Add("username", "username may only contain letters and spaces")
	case !allowReserved && strings.EqualFold(name, domain.ReservedUsername):
		fe.Add("username", fmt.Sprintf("username %q is reserved", domain.ReservedUsername))
	case r.v.Var(name, fmt.Sprintf("max=%d", domain.UsernameMaxLength)) != nil:
		fe.Add("username", fmt.Sprintf("username must be at most %d characters", domain.UsernameMaxLength))
	}
	return name
}

func (r *userRules) email(fe domain.FieldErrors, raw string) string {
	email := domain.NormalizeEmail(raw)
	switch {
	case email == "":
		fe.Add("email", "email is required")
	case r.v.Var(email, "email") != nil:
		fe.Add("email", "email must be a valid email address")
	case r.v.Var(email, "institutional_email") != nil:
		fe.Add("email", fmt.Sprintf("email must belong to the @%s domain", r.emailDomain))
	case r.v.Var(email, fmt.Sprintf("max=%d", domain.EmailMaxLength)) != nil:
		fe.Add("email", fmt.Sprintf("email must be at most %d characters", domain.EmailMaxLength))
	}
	return email
}

func (r *userRules) password(fe domain.FieldErrors, raw string) {
	switch {
	case raw == "":
		fe.Add("password", "password is required")
	case len(raw) > passwordMaxBytes:
		fe.Add("password", fmt.Sprintf("password must be at most %d bytes", passwordMaxBytes))
	}
}

// role resolves raw to a Role. An empty value means RoleStandard unless
// required is set.
func (r *userRules) role(fe domain.FieldErrors, raw string, required bool) domain.Role {
	if strings.TrimSpace(raw) == "" && !required {
		return domain.RoleStandard
	}
	role, ok := domain.ParseRole(raw)
	if !ok {
		fe.Add("role", fmt.Sprintf("role must be one of: %s, %s", domain.RoleAdmin, domain.RoleStandard))
	}
	return role
}

// ensureUnique records a field error for each of username and email that is
// already taken. Empty values and fields that already failed are skipped.
func ensureUnique(ctx context.Context, users ports.UserRepository, fe domain.FieldErrors, username, email string) (bool, error) {
	dup := false

	if username != "" && !fe.Has("username") {
		exists, err := users.ExistsByUsername(ctx, username)
		if err != nil {
			return false, fmt.Errorf("check username: %w", err)
		}
		if exists {
			fe.Add("username", "a user with this username already exists")
			dup = true
		}
	}

	if email != "" && !fe.Has("email") {
		exists, err := users.ExistsByEmail(ctx, email)
		if err != nil {
			return false, fmt.Errorf("check email: %w", err)
		}
		if exists {
			fe.Add("email", "a user with this email already exists")
			dup = true
		}
	}

	return dup, nil
}

// validationFailure converts collected field errors into the returned error.
func validationFailure(fe domain.FieldErrors, dup bool) error {
	if len(fe) == 0 {
		return nil
	}
	ve := &domain.ValidationError{Fields: fe}
	if dup {
		ve.Cause = domain.ErrUserExists
	}
	return ve
}
