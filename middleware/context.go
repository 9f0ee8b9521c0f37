package middleware

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/upb/parking-console/credential"
	"github.com/upb/parking-console/internal/auth"
	"github.com/upb/parking-console/internal/routeguard"
)

// Context key type to avoid collisions
type contextKey string

const (
	// PrincipalKey is the context key for the decoded principal of an admitted navigation
	PrincipalKey contextKey = "principal"

	// RouteKey is the context key for the matched page route
	RouteKey contextKey = "route"

	// StoreKey is the context key for the request's credential store
	StoreKey contextKey = "credential_store"
)

// GetRequestIDFromContext retrieves the id assigned by chi's RequestID middleware
func GetRequestIDFromContext(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}

// GetPrincipalFromContext retrieves the principal admitted by the gate, or nil
func GetPrincipalFromContext(ctx context.Context) *auth.Principal {
	if val := ctx.Value(PrincipalKey); val != nil {
		if p, ok := val.(*auth.Principal); ok {
			return p
		}
	}
	return nil
}

// WithPrincipal adds a principal to the context
func WithPrincipal(ctx context.Context, p *auth.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

// GetRouteFromContext retrieves the matched page route
func GetRouteFromContext(ctx context.Context) (routeguard.Route, bool) {
	r, ok := ctx.Value(RouteKey).(routeguard.Route)
	return r, ok
}

// WithRoute adds the matched page route to the context
func WithRoute(ctx context.Context, r routeguard.Route) context.Context {
	return context.WithValue(ctx, RouteKey, r)
}

// GetStoreFromContext retrieves the credential store opened for this request
func GetStoreFromContext(ctx context.Context) credential.Store {
	if val := ctx.Value(StoreKey); val != nil {
		if s, ok := val.(credential.Store); ok {
			return s
		}
	}
	return nil
}

// WithStore adds a credential store to the context
func WithStore(ctx context.Context, s credential.Store) context.Context {
	return context.WithValue(ctx, StoreKey, s)
}
