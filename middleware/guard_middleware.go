package middleware

import (
	"net/http"

	"github.com/upb/parking-console/credential"
	"github.com/upb/parking-console/internal/routeguard"
	"go.uber.org/zap"
)

// GuardMiddleware gates page navigations on the session's stored credential
type GuardMiddleware struct {
	provider credential.Provider
	landing  routeguard.Landing
	logger   *zap.Logger
}

// NewGuardMiddleware creates a new GuardMiddleware
func NewGuardMiddleware(provider credential.Provider, landing routeguard.Landing, logger *zap.Logger) *GuardMiddleware {
	return &GuardMiddleware{
		provider: provider,
		landing:  landing,
		logger:   logger,
	}
}

// Landing returns the fallback pages the gate redirects to
func (m *GuardMiddleware) Landing() routeguard.Landing {
	return m.landing
}

// Session opens the credential store for the request's browser session and
// makes it available to later handlers
func (m *GuardMiddleware) Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetStoreFromContext(r.Context()) != nil {
			next.ServeHTTP(w, r)
			return
		}
		store := m.provider.Open(w, r)
		next.ServeHTTP(w, r.WithContext(WithStore(r.Context(), store)))
	})
}

// Store returns the request's credential store, opening one if Session did not run
func (m *GuardMiddleware) Store(w http.ResponseWriter, r *http.Request) credential.Store {
	if s := GetStoreFromContext(r.Context()); s != nil {
		return s
	}
	return m.provider.Open(w, r)
}

// Gate returns middleware that evaluates every navigation to route. Redirect
// decisions answer 302 Found; admitted navigations continue with the route and
// principal in the request context.
func (m *GuardMiddleware) Gate(route routeguard.Route) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestIDFromContext(ctx)

			guard := routeguard.New(m.Store(w, r), m.landing)
			decision := guard.Navigate(ctx, route)

			// Gated answers depend on the caller's credential
			w.Header().Set("Cache-Control", "no-store")
			w.Header().Add("Vary", "Cookie")

			if !decision.Admitted() {
				fields := []zap.Field{
					zap.String("request_id", requestID),
					zap.String("route", route.Name),
					zap.String("path", r.URL.Path),
					zap.String("location", decision.Location),
				}
				if decision.Reason != nil {
					fields = append(fields, zap.String("reason", decision.Reason.Error()))
				}
				if decision.Principal != nil {
					fields = append(fields, zap.String("role", decision.Principal.Role.String()))
				}
				m.logger.Info("navigation redirected", fields...)

				http.Redirect(w, r, decision.Location, http.StatusFound)
				return
			}

			ctx = WithRoute(ctx, route)
			if decision.Principal != nil {
				ctx = WithPrincipal(ctx, decision.Principal)
			}

			m.logger.Debug("navigation admitted",
				zap.String("request_id", requestID),
				zap.String("route", route.Name),
				zap.String("path", r.URL.Path))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
