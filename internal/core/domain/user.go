package domain

import (
	"strings"
	"time"
)

// Role is the authorization level of a user account.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStandard Role = "standard"
)

// Legacy role names still sent by older clients.
const (
	legacyRoleSuperuser = "superuser"
	legacyRoleProfesor  = "profesor"
)

// Field limits enforced by every store.
const (
	UsernameMaxLength = 50
	EmailMaxLength    = 254
	ReservedUsername  = "admin"
)

// ParseRole maps an input string to a Role. Legacy names are accepted.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(RoleAdmin), legacyRoleSuperuser:
		return RoleAdmin, true
	case string(RoleStandard), legacyRoleProfesor:
		return RoleStandard, true
	default:
		return "", false
	}
}

// User models an account in the directory.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether u may manage other accounts.
func IsAdmin(u *User) bool {
	return u != nil && u.IsActive && u.Role == RoleAdmin
}

// NormalizeEmail trims and lower-cases an address before storage or comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeUsername trims surrounding whitespace.
func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}
