package routeguard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/upb/parking-console/internal/auth"
)

// ErrInvalidTable is returned when a route table fails validation
var ErrInvalidTable = errors.New("invalid route table")

// Table is the ordered, canonical list of console pages.
type Table []Route

// Find returns the route registered under the exact pattern path
func (t Table) Find(path string) (Route, bool) {
	for _, r := range t {
		if r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}

// ByName returns the route with the given name
func (t Table) ByName(name string) (Route, bool) {
	for _, r := range t {
		if r.Name == name {
			return r, true
		}
	}
	return Route{}, false
}

// Validate checks the table for contradictions and for landing pages that
// would redirect in a loop.
func (t Table) Validate(landing Landing) error {
	if len(t) == 0 {
		return fmt.Errorf("%w: no routes", ErrInvalidTable)
	}

	seen := make(map[string]bool, len(t))
	for _, r := range t {
		if !strings.HasPrefix(r.Path, "/") {
			return fmt.Errorf("%w: route %q: path %q must start with /", ErrInvalidTable, r.Name, r.Path)
		}
		if seen[r.Path] {
			return fmt.Errorf("%w: duplicate path %q", ErrInvalidTable, r.Path)
		}
		seen[r.Path] = true

		if r.Access.GuestOnly && r.Access.Protected() {
			return fmt.Errorf("%w: route %q is both guest-only and protected", ErrInvalidTable, r.Path)
		}
		if r.Access.RequiresRole != "" && !r.Access.RequiresRole.Valid() {
			return fmt.Errorf("%w: route %q: %v", ErrInvalidTable, r.Path, auth.ErrUnknownRole)
		}
	}

	login, ok := t.Find(landing.Login)
	if !ok {
		return fmt.Errorf("%w: login page %q not in table", ErrInvalidTable, landing.Login)
	}
	if login.Access.Protected() {
		return fmt.Errorf("%w: login page %q must not require sign-in", ErrInvalidTable, landing.Login)
	}

	for _, role := range []auth.Role{auth.RoleAdmin, auth.RoleUser} {
		path := landing.For(role)
		r, ok := t.Find(path)
		if !ok {
			return fmt.Errorf("%w: %s landing page %q not in table", ErrInvalidTable, role, path)
		}
		if r.Access.GuestOnly {
			return fmt.Errorf("%w: %s landing page %q is guest-only", ErrInvalidTable, role, path)
		}
		if r.Access.RequiresRole != "" && r.Access.RequiresRole != role {
			return fmt.Errorf("%w: %s landing page %q requires role %s", ErrInvalidTable, role, path, r.Access.RequiresRole)
		}
	}

	return nil
}
