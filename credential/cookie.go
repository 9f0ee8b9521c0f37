package credential

import (
	"context"
	"net/http"
	"time"
)

const (
	// DefaultTokenCookieName matches the storage key used by the SPA
	DefaultTokenCookieName = "token"
	// DefaultRoleCookieName holds the cached role string
	DefaultRoleCookieName = "user_role"
)

// CookieOptions configures cookie-backed credential storage.
type CookieOptions struct {
	TokenName string
	RoleName  string
	Path      string
	MaxAge    time.Duration
	Secure    bool
}

func (o CookieOptions) withDefaults() CookieOptions {
	if o.TokenName == "" {
		o.TokenName = DefaultTokenCookieName
	}
	if o.RoleName == "" {
		o.RoleName = DefaultRoleCookieName
	}
	if o.Path == "" {
		o.Path = "/"
	}
	return o
}

// CookieProvider stores the credential directly in browser cookies.
type CookieProvider struct {
	opts CookieOptions
}

// NewCookieProvider creates a CookieProvider
func NewCookieProvider(opts CookieOptions) *CookieProvider {
	return &CookieProvider{opts: opts.withDefaults()}
}

// Open binds a cookie store to the request and its response writer
func (p *CookieProvider) Open(w http.ResponseWriter, r *http.Request) Store {
	return &cookieStore{w: w, r: r, opts: p.opts}
}

// cookieStore reads from the incoming request and writes Set-Cookie headers.
// A Set followed by Get within the same request still observes the request's
// original cookies.
type cookieStore struct {
	w    http.ResponseWriter
	r    *http.Request
	opts CookieOptions
}

func (s *cookieStore) Get(_ context.Context) (Credential, error) {
	cookie, err := s.r.Cookie(s.opts.TokenName)
	if err != nil || cookie.Value == "" {
		return Credential{}, ErrNotFound
	}
	cred := Credential{Token: cookie.Value}
	if role, err := s.r.Cookie(s.opts.RoleName); err == nil {
		cred.Role = role.Value
	}
	return cred, nil
}

func (s *cookieStore) Set(_ context.Context, cred Credential) error {
	maxAge := int(s.opts.MaxAge / time.Second)
	http.SetCookie(s.w, s.cookie(s.opts.TokenName, cred.Token, maxAge))
	if cred.Role != "" {
		http.SetCookie(s.w, s.cookie(s.opts.RoleName, cred.Role, maxAge))
	} else {
		http.SetCookie(s.w, s.cookie(s.opts.RoleName, "", -1))
	}
	return nil
}

func (s *cookieStore) Clear(_ context.Context) error {
	http.SetCookie(s.w, s.cookie(s.opts.TokenName, "", -1))
	http.SetCookie(s.w, s.cookie(s.opts.RoleName, "", -1))
	return nil
}

func (s *cookieStore) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     s.opts.Path,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
