package users

import "errors"

// Role represents the access level of a user account.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Sentinel errors shared by repositories and services.
var (
	ErrNotFound  = errors.New("user not found")
	ErrDuplicate = errors.New("email or username already in use")
	ErrForbidden = errors.New("user forbidden")
)

// User represents a registered account. PasswordHash is never serialized.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	PasswordHash string `json:"-"`
}

// IsAdmin reports whether the user holds the privileged role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ValidRole checks a role string against the known roles.
func ValidRole(s string) bool {
	return Role(s) == RoleCustomer || Role(s) == RoleAdmin
}
