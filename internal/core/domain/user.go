package domain

import (
	"strings"
	"time"
)

// Role is the closed set of capabilities a user can hold. Roles are disjoint:
// admin does not imply resident.
type Role string

const (
	RoleResident Role = "resident"
	RoleAdmin    Role = "admin"
)

// ParseRole validates a raw role string, typically taken from a decoded token.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleResident, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

func (r Role) String() string { return string(r) }

// User models a registered member of the society.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	UnitNumber   string    `json:"unit_number,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// NormalizeEmail is the canonical form used for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
