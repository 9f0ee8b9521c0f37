package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/upb/parking-console/internal/routeguard"
)

// Credential store kinds accepted by CREDENTIAL_STORE
const (
	StoreCookie = "cookie"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Backend       BackendConfig
	Session       SessionConfig
	Navigation    NavigationConfig
	CORS          CORSConfig
	Observability ObservabilityConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// BackendConfig holds the parking REST backend the console talks to
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SessionConfig holds credential storage configuration
type SessionConfig struct {
	Store             string // cookie, redis or memory
	TokenCookieName   string
	RoleCookieName    string
	SessionCookieName string // redis store only
	CookieSecure      bool
	TTL               time.Duration
	RedisURL          string
	RedisKeyPrefix    string
}

// NavigationConfig holds the page table and the fallback pages used by the
// navigation gate
type NavigationConfig struct {
	RouteTableFile string
	Landing        routeguard.Landing
	Routes         routeguard.Table
}

// CORSConfig holds CORS settings for the /api proxy
type CORSConfig struct {
	AllowedOrigins []string
}

// ObservabilityConfig holds logging configuration
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string // json or console
}

// New creates a new Config instance by loading environment variables
func New(ctx context.Context) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getPort(),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Backend: BackendConfig{
			BaseURL: strings.TrimSuffix(getEnv("BACKEND_URL", "http://localhost:5000"), "/"),
			Timeout: getEnvAsDuration("BACKEND_TIMEOUT", 10*time.Second),
		},
		Session: SessionConfig{
			Store:             strings.ToLower(getEnv("CREDENTIAL_STORE", StoreCookie)),
			TokenCookieName:   getEnv("TOKEN_COOKIE_NAME", "token"),
			RoleCookieName:    getEnv("ROLE_COOKIE_NAME", "user_role"),
			SessionCookieName: getEnv("SESSION_COOKIE_NAME", "sid"),
			CookieSecure:      getEnvAsBool("COOKIE_SECURE", false),
			TTL:               getEnvAsDuration("SESSION_TTL", 24*time.Hour),
			RedisURL:          getEnv("REDIS_URL", ""),
			RedisKeyPrefix:    getEnv("REDIS_KEY_PREFIX", "parking:session:"),
		},
		Navigation: NavigationConfig{
			RouteTableFile: getEnv("ROUTE_TABLE_FILE", ""),
			Landing: routeguard.Landing{
				Login: getEnv("LOGIN_PATH", "/login"),
				Admin: getEnv("ADMIN_LANDING_PATH", "/admin/dashboard"),
				User:  getEnv("USER_LANDING_PATH", "/user/dashboard"),
			},
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:*"}),
		},
		Observability: ObservabilityConfig{
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			LogFormat: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.loadRoutes(); err != nil {
		return nil, fmt.Errorf("failed to load route table: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadRoutes fills Navigation.Routes from ROUTE_TABLE_FILE or the built-in table
func (c *Config) loadRoutes() error {
	if c.Navigation.RouteTableFile == "" {
		c.Navigation.Routes = DefaultRouteTable()
		return nil
	}

	file, err := LoadRouteTable(c.Navigation.RouteTableFile)
	if err != nil {
		return err
	}
	c.Navigation.Routes = file.Routes
	if file.Landing != nil {
		c.Navigation.Landing = *file.Landing
	}
	return nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	// Backend validation
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend URL must be absolute: %q", c.Backend.BaseURL)
	}

	// Credential store validation
	switch c.Session.Store {
	case StoreCookie:
		if c.Session.TokenCookieName == "" {
			return fmt.Errorf("token cookie name is required")
		}
	case StoreRedis:
		if c.Session.RedisURL == "" {
			return fmt.Errorf("redis URL is required when CREDENTIAL_STORE=redis")
		}
	case StoreMemory:
		if c.IsProduction() {
			return fmt.Errorf("memory credential store is not allowed in production")
		}
	default:
		return fmt.Errorf("unknown credential store %q", c.Session.Store)
	}

	// Cookies must be secure in production
	if c.IsProduction() && !c.Session.CookieSecure {
		return fmt.Errorf("COOKIE_SECURE must be enabled in production")
	}

	// Navigation validation
	if err := c.Navigation.Routes.Validate(c.Navigation.Landing); err != nil {
		return err
	}

	// Observability validation
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisLogString returns the Redis address without credentials
func (c *SessionConfig) RedisLogString() string {
	u, err := url.Parse(c.RedisURL)
	if err != nil || u.Host == "" {
		return "<unparsable REDIS_URL>"
	}
	return fmt.Sprintf("host=%s db=%s", u.Host, strings.TrimPrefix(u.Path, "/"))
}

// Helper functions

// getPort returns the server port from PORT or SERVER_PORT env vars (default: 8080)
func getPort() int {
	if value := os.Getenv("PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	if value := os.Getenv("SERVER_PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	return 8080
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma-separated value, dropping empty items
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(valueStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
