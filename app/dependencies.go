package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/upb/parking-console/config"
	"github.com/upb/parking-console/credential"
	"github.com/upb/parking-console/handlers"
	"github.com/upb/parking-console/middleware"
	"github.com/upb/parking-console/services"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	Logger *zap.Logger
	Redis  *redis.Client // nil unless CREDENTIAL_STORE=redis

	// Credential storage
	Provider credential.Provider
	Pinger   credential.Pinger

	// Navigation gate
	Gate *middleware.GuardMiddleware

	// Backend
	Backend *services.BackendClient

	// Handlers
	Pages    *handlers.PageHandler
	Sessions *handlers.SessionHandler
	Health   *handlers.HealthHandler
	APIProxy *handlers.APIProxy
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	// Initialize credential storage
	if err := deps.initCredentialStore(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize credential store: %w", err)
	}

	deps.Gate = middleware.NewGuardMiddleware(deps.Provider, cfg.Navigation.Landing, logger)
	deps.Backend = services.NewBackendClient(cfg.Backend)

	// Initialize handlers
	if err := deps.initHandlers(cfg); err != nil {
		_ = deps.closeRedis()
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	logger.Info("all dependencies initialized successfully",
		zap.String("credential_store", cfg.Session.Store),
		zap.String("backend", deps.Backend.BaseURL()),
		zap.Int("routes", len(cfg.Navigation.Routes)))
	return deps, nil
}

func (d *Dependencies) initCredentialStore(ctx context.Context, cfg *config.Config) error {
	switch cfg.Session.Store {
	case config.StoreMemory:
		d.Provider = credential.NewMemoryProvider()
		d.Logger.Warn("using in-process credential store; sessions are shared and lost on restart")

	case config.StoreRedis:
		client, err := credential.NewRedisClient(cfg.Session.RedisURL)
		if err != nil {
			return err
		}
		provider := credential.NewRedisProvider(client, credential.RedisOptions{
			CookieName: cfg.Session.SessionCookieName,
			KeyPrefix:  cfg.Session.RedisKeyPrefix,
			TTL:        cfg.Session.TTL,
			Secure:     cfg.Session.CookieSecure,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := provider.Ping(pingCtx); err != nil {
			_ = client.Close()
			return err
		}

		d.Redis = client
		d.Provider = provider
		d.Pinger = provider
		d.Logger.Info("redis credential store connected", zap.String("redis", cfg.Session.RedisLogString()))

	case config.StoreCookie, "":
		d.Provider = credential.NewCookieProvider(credential.CookieOptions{
			TokenName: cfg.Session.TokenCookieName,
			RoleName:  cfg.Session.RoleCookieName,
			MaxAge:    cfg.Session.TTL,
			Secure:    cfg.Session.CookieSecure,
		})

	default:
		return fmt.Errorf("unknown credential store %q", cfg.Session.Store)
	}

	return nil
}

func (d *Dependencies) initHandlers(cfg *config.Config) error {
	landing := cfg.Navigation.Landing

	d.Pages = handlers.NewPageHandler(landing, d.Logger)
	d.Sessions = handlers.NewSessionHandler(d.Backend, d.Gate, landing, d.Logger)
	d.Health = handlers.NewHealthHandler(d.Pinger, d.Logger)

	proxy, err := handlers.NewAPIProxy(cfg.Backend.BaseURL, d.Gate, d.Logger)
	if err != nil {
		return fmt.Errorf("api proxy: %w", err)
	}
	d.APIProxy = proxy

	return nil
}

func (d *Dependencies) closeRedis() error {
	if d.Redis == nil {
		return nil
	}
	err := d.Redis.Close()
	d.Redis = nil
	return err
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	// Close redis connection
	if d.Redis != nil {
		if err := d.closeRedis(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		} else {
			d.Logger.Info("redis connection closed")
		}
	}

	// Sync logger
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
