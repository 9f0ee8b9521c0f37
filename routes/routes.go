package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/parking-console/app"
	"github.com/upb/parking-console/internal/observability"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.RequestLogger(deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.GetHead)

	// Health check endpoints
	r.Get("/healthz", deps.Health.HandleHealth)
	r.Get("/readyz", deps.Health.HandleReadiness)

	r.Group(func(r chi.Router) {
		r.Use(deps.Gate.Session)

		// Pages, each behind the navigation gate
		for _, route := range deps.Config.Navigation.Routes {
			r.With(deps.Gate.Gate(route)).Get(route.Path, deps.Pages.HandlePage)
		}

		// Form posts from the login and register pages
		if login, ok := deps.Config.Navigation.Routes.ByName("login"); ok {
			r.Post(login.Path, deps.Sessions.HandleLogin)
		}
		if register, ok := deps.Config.Navigation.Routes.ByName("register"); ok {
			r.Post(register.Path, deps.Sessions.HandleRegister)
		}
		r.Get("/logout", deps.Sessions.HandleLogout)
		r.Post("/logout", deps.Sessions.HandleLogout)

		// Session endpoints for script clients
		r.Route("/session", func(r chi.Router) {
			r.Post("/login", deps.Sessions.HandleLogin)
			r.Post("/register", deps.Sessions.HandleRegister)
			r.Post("/logout", deps.Sessions.HandleLogout)
			r.Get("/me", deps.Sessions.HandleMe)
		})

		// Backend API passthrough
		r.Route("/api", func(r chi.Router) {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins:   deps.Config.CORS.AllowedOrigins,
				AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
				AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
				ExposedHeaders:   []string{"Link", "X-Request-ID"},
				AllowCredentials: true,
				MaxAge:           300,
			}))
			r.Handle("/*", deps.APIProxy)
		})
	})

	r.NotFound(deps.Pages.HandleNotFound)
	r.MethodNotAllowed(deps.Pages.HandleMethodNotAllowed)

	return r
}
