package domain

import (
	"errors"
	"fmt"
)

// Role is the closed set of roles a user can hold. All business logic
// branches on this enum; numeric role IDs exist only inside the sqlite
// driver.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RolePro   Role = "pro"
)

var ErrUnknownRole = errors.New("domain: unknown role")

// ParseRole validates a role name coming from storage or an admin request.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleUser, RolePro:
		return Role(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

func (r Role) String() string { return string(r) }

// RoleChange is the outcome of an entitlement reconciliation pass.
type RoleChange struct {
	Changed bool
	NewRole Role
	Reason  string
}
