package routeguard

import (
	"context"
	"errors"
	"fmt"

	"github.com/upb/parking-console/credential"
	"github.com/upb/parking-console/internal/auth"
)

// Outcome is the kind of a guard decision.
type Outcome int

const (
	// Admit lets the navigation proceed to the requested page
	Admit Outcome = iota
	// Redirect sends the navigation to Decision.Location instead
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Admit:
		return "admit"
	case Redirect:
		return "redirect"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Decision is the result of evaluating one navigation.
type Decision struct {
	Outcome  Outcome
	Location string

	// Reason explains a redirect caused by a failed check; it is nil for
	// admits and for signed-in users leaving a guest-only page.
	Reason error

	// Principal is the decoded identity when the credential could be decoded.
	Principal *auth.Principal
}

// Admitted reports whether the navigation proceeds unchanged
func (d Decision) Admitted() bool {
	return d.Outcome == Admit
}

func admit(p *auth.Principal) Decision {
	return Decision{Outcome: Admit, Principal: p}
}

func redirect(location string, reason error, p *auth.Principal) Decision {
	return Decision{Outcome: Redirect, Location: location, Reason: reason, Principal: p}
}

// Evaluate decides a navigation to route for the given stored credential.
// It has no side effects and the same inputs always give the same decision.
func Evaluate(route Route, cred credential.Credential, landing Landing) Decision {
	access := route.Access
	if access.Open() {
		return admit(nil)
	}

	principal, err := resolve(cred)

	if access.Protected() {
		if err != nil {
			return redirect(landing.Login, err, nil)
		}
		if access.RequiresRole != "" && principal.Role != access.RequiresRole {
			return redirect(landing.For(principal.Role), ErrInsufficientRole, principal)
		}
		return admit(principal)
	}

	// guest-only: an unusable credential counts as signed out
	if err != nil {
		return admit(nil)
	}
	return redirect(landing.For(principal.Role), nil, principal)
}

// resolve decodes the credential, folding every failure into the guard's
// error taxonomy.
func resolve(cred credential.Credential) (*auth.Principal, error) {
	if !cred.Present() {
		return nil, ErrMissingCredential
	}
	principal, err := auth.DecodeToken(cred.Token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCredential, err)
	}
	return principal, nil
}

// Guard evaluates navigations against the credential held by a Store.
type Guard struct {
	store   credential.Store
	landing Landing
}

// New creates a Guard reading from store
func New(store credential.Store, landing Landing) *Guard {
	return &Guard{store: store, landing: landing}
}

// Navigate evaluates a navigation to route. The store is only read; a store
// that fails to load is treated as holding no credential.
func (g *Guard) Navigate(ctx context.Context, route Route) Decision {
	cred, err := g.store.Get(ctx)
	if err != nil {
		if !errors.Is(err, credential.ErrNotFound) {
			decision := Evaluate(route, credential.Credential{}, g.landing)
			if decision.Reason != nil {
				decision.Reason = fmt.Errorf("%w: %v", decision.Reason, err)
			}
			return decision
		}
		cred = credential.Credential{}
	}
	return Evaluate(route, cred, g.landing)
}
