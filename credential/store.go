// Package credential holds the stored bearer credential of a console session
// and the stores that persist it between navigations.
package credential

import (
	"context"
	"errors"
	"net/http"
)

// ErrNotFound is returned by Store.Get when no credential is stored.
var ErrNotFound = errors.New("credential not found")

// Credential is the bearer token persisted after a successful login.
// Role is the role string the backend reported at login time; it is cached for
// display and is not an authorization input.
type Credential struct {
	Token string `json:"token"`
	Role  string `json:"role,omitempty"`
}

// Present reports whether the credential carries a token.
func (c Credential) Present() bool {
	return c.Token != ""
}

// Store is the get/set/clear capability over one session's credential.
type Store interface {
	// Get returns the stored credential or ErrNotFound
	Get(ctx context.Context) (Credential, error)

	// Set replaces the stored credential
	Set(ctx context.Context, cred Credential) error

	// Clear removes the stored credential
	Clear(ctx context.Context) error
}

// Provider binds a Store to the browser session of a single request.
type Provider interface {
	Open(w http.ResponseWriter, r *http.Request) Store
}

// Pinger is implemented by providers backed by an external service.
type Pinger interface {
	Ping(ctx context.Context) error
}
