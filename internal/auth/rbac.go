package auth

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRole is returned when a role string is not one of the known roles.
var ErrUnknownRole = errors.New("unknown role")

// Role is the access role carried by a console user.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole maps a role string onto a Role. Matching ignores case and
// surrounding whitespace.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleUser:
		return RoleUser, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

func (r Role) String() string {
	return string(r)
}

// HasRole checks if the principal carries the given role
func (p *Principal) HasRole(role Role) bool {
	return p != nil && p.Role == role
}

// IsAdmin checks if the principal has the admin role
func (p *Principal) IsAdmin() bool {
	return p.HasRole(RoleAdmin)
}
