package domain

import "time"

// Role distinguishes administrators from regular parking users.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User is an account that can log in and hold reservations.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	FullName     string
	Address      *string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
