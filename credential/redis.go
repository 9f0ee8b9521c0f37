package credential

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultSessionCookieName is the cookie carrying the opaque session id
	DefaultSessionCookieName = "sid"
	// DefaultRedisKeyPrefix namespaces session keys
	DefaultRedisKeyPrefix = "parking:session:"
	defaultSessionTTL     = 24 * time.Hour
)

// RedisClient is the subset of the go-redis API used by RedisProvider.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// RedisOptions configures Redis-backed credential storage.
type RedisOptions struct {
	CookieName string
	KeyPrefix  string
	TTL        time.Duration
	Secure     bool
}

func (o RedisOptions) withDefaults() RedisOptions {
	if o.CookieName == "" {
		o.CookieName = DefaultSessionCookieName
	}
	if o.KeyPrefix == "" {
		o.KeyPrefix = DefaultRedisKeyPrefix
	}
	if o.TTL <= 0 {
		o.TTL = defaultSessionTTL
	}
	return o
}

// RedisProvider keeps credentials server-side in Redis. The browser only holds
// an opaque session id.
type RedisProvider struct {
	client RedisClient
	opts   RedisOptions
}

// NewRedisProvider creates a RedisProvider
func NewRedisProvider(client RedisClient, opts RedisOptions) *RedisProvider {
	return &RedisProvider{client: client, opts: opts.withDefaults()}
}

// NewRedisClient parses a redis:// URL into a client
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

// Open binds a Redis-backed store to the request's session cookie
func (p *RedisProvider) Open(w http.ResponseWriter, r *http.Request) Store {
	return &redisStore{provider: p, w: w, r: r}
}

// Ping checks Redis connectivity
func (p *RedisProvider) Ping(ctx context.Context) error {
	if err := p.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (p *RedisProvider) key(sid uuid.UUID) string {
	return p.opts.KeyPrefix + sid.String()
}

type redisStore struct {
	provider *RedisProvider
	w        http.ResponseWriter
	r        *http.Request
}

// sessionID returns the request's session id, if it carries a well-formed one
func (s *redisStore) sessionID() (uuid.UUID, bool) {
	cookie, err := s.r.Cookie(s.provider.opts.CookieName)
	if err != nil || cookie.Value == "" {
		return uuid.Nil, false
	}
	sid, err := uuid.Parse(cookie.Value)
	if err != nil {
		return uuid.Nil, false
	}
	return sid, true
}

func (s *redisStore) Get(ctx context.Context) (Credential, error) {
	sid, ok := s.sessionID()
	if !ok {
		return Credential{}, ErrNotFound
	}

	raw, err := s.provider.client.Get(ctx, s.provider.key(sid)).Result()
	if errors.Is(err, redis.Nil) {
		return Credential{}, ErrNotFound
	}
	if err != nil {
		return Credential{}, fmt.Errorf("load session: %w", err)
	}

	var cred Credential
	if err := json.Unmarshal([]byte(raw), &cred); err != nil {
		return Credential{}, fmt.Errorf("decode session: %w", err)
	}
	if !cred.Present() {
		return Credential{}, ErrNotFound
	}
	return cred, nil
}

// Set stores cred under a fresh session id so a login never reuses a
// pre-authentication id.
func (s *redisStore) Set(ctx context.Context, cred Credential) error {
	payload, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if old, ok := s.sessionID(); ok {
		if err := s.provider.client.Del(ctx, s.provider.key(old)).Err(); err != nil {
			return fmt.Errorf("drop previous session: %w", err)
		}
	}

	sid := uuid.New()
	ttl := s.provider.opts.TTL
	if err := s.provider.client.Set(ctx, s.provider.key(sid), payload, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}

	http.SetCookie(s.w, s.cookie(sid.String(), int(ttl/time.Second)))
	return nil
}

func (s *redisStore) Clear(ctx context.Context) error {
	if sid, ok := s.sessionID(); ok {
		if err := s.provider.client.Del(ctx, s.provider.key(sid)).Err(); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
	}
	http.SetCookie(s.w, s.cookie("", -1))
	return nil
}

func (s *redisStore) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     s.provider.opts.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.provider.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
