package routeguard

import (
	"github.com/upb/parking-console/internal/auth"
)

// Access holds the declarative access flags of a page.
type Access struct {
	GuestOnly    bool      `yaml:"guest_only" json:"guest_only,omitempty"`
	RequiresAuth bool      `yaml:"requires_auth" json:"requires_auth,omitempty"`
	RequiresRole auth.Role `yaml:"requires_role" json:"requires_role,omitempty"`
}

// Protected reports whether the page needs a signed-in user.
func (a Access) Protected() bool {
	return a.RequiresAuth || a.RequiresRole != ""
}

// Open reports whether the page carries no access flags at all.
func (a Access) Open() bool {
	return !a.GuestOnly && !a.Protected()
}

// Route describes one navigable page of the console.
type Route struct {
	Name   string `yaml:"name" json:"name"`
	Path   string `yaml:"path" json:"path"` // chi pattern, e.g. /admin/edit-lot/{id}
	Page   string `yaml:"page" json:"page"`
	Access Access `yaml:"access" json:"access"`
}

// Landing holds the fallback pages used as redirect targets.
type Landing struct {
	Login string `yaml:"login"`
	Admin string `yaml:"admin"`
	User  string `yaml:"user"`
}

// DefaultLanding returns the console's standard fallback pages
func DefaultLanding() Landing {
	return Landing{
		Login: "/login",
		Admin: "/admin/dashboard",
		User:  "/user/dashboard",
	}
}

// For returns the landing page of role
func (l Landing) For(role auth.Role) string {
	if role == auth.RoleAdmin {
		return l.Admin
	}
	return l.User
}
