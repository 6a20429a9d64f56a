package model

import (
	"errors"
	"time"
)

// User represents an authentication user.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	Branch       string     `json:"branch,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Roles. A responsable manages the inventory of a single branch.
const (
	RoleAdmin       = "admin"
	RoleResponsable = "responsable"
)

// ValidRole reports whether role is known.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleResponsable
}

// RoleAtLeast checks if role meets or exceeds the minimum required role.
func RoleAtLeast(role, minimum string) bool {
	levels := map[string]int{
		RoleAdmin:       2,
		RoleResponsable: 1,
	}
	return levels[minimum] > 0 && levels[role] >= levels[minimum]
}

// CanAccessBranch reports whether a user with role and home branch may see or
// change records of branch.
func CanAccessBranch(role, home, branch string) bool {
	if role == RoleAdmin {
		return true
	}
	return role == RoleResponsable && home != "" && home == branch
}

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// ValidatePassword checks password strength rules.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}
