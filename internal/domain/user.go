package domain

import "time"

// Role is the coarse permission level stored on a user row.
type Role int

const (
	RoleUser  Role = 1
	RoleAdmin Role = 2
)

// Authority names granted to each role.
const (
	AuthorityUser  = "ROLE_USER"
	AuthorityAdmin = "ROLE_ADMIN"
)

// Authority maps the role to the authority string checked by route guards.
func (r Role) Authority() string {
	if r == RoleUser {
		return AuthorityUser
	}
	return AuthorityAdmin
}

// User is the account whose credentials back token issuance.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         Role
	Email        string
	FirstName    string
	LastName     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
