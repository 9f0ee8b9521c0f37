package credential

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store reports not found", func(t *testing.T) {
		store := NewMemoryStore(Credential{})
		_, err := store.Get(ctx)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("set get clear", func(t *testing.T) {
		store := NewMemoryStore(Credential{})
		require.NoError(t, store.Set(ctx, Credential{Token: "abc", Role: "admin"}))

		cred, err := store.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "abc", cred.Token)
		assert.Equal(t, "admin", cred.Role)

		require.NoError(t, store.Clear(ctx))
		_, err = store.Get(ctx)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("provider shares one store", func(t *testing.T) {
		provider := NewMemoryProvider()
		a := provider.Open(nil, nil)
		b := provider.Open(nil, nil)
		require.NoError(t, a.Set(ctx, Credential{Token: "shared"}))

		cred, err := b.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "shared", cred.Token)
	})
}

func TestCookieStore(t *testing.T) {
	ctx := context.Background()
	provider := NewCookieProvider(CookieOptions{MaxAge: time.Hour, Secure: true})

	t.Run("missing cookie reports not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		store := provider.Open(httptest.NewRecorder(), req)

		_, err := store.Get(ctx)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty token cookie reports not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: ""})
		store := provider.Open(httptest.NewRecorder(), req)

		_, err := store.Get(ctx)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("reads token and cached role", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: "a.b.c"})
		req.AddCookie(&http.Cookie{Name: "user_role", Value: "user"})
		store := provider.Open(httptest.NewRecorder(), req)

		cred, err := store.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, Credential{Token: "a.b.c", Role: "user"}, cred)
	})

	t.Run("set writes both cookies", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/session/login", nil)
		store := provider.Open(rec, req)

		require.NoError(t, store.Set(ctx, Credential{Token: "a.b.c", Role: "admin"}))

		cookies := cookiesByName(rec.Result().Cookies())
		require.Contains(t, cookies, "token")
		require.Contains(t, cookies, "user_role")
		assert.Equal(t, "a.b.c", cookies["token"].Value)
		assert.Equal(t, 3600, cookies["token"].MaxAge)
		assert.True(t, cookies["token"].HttpOnly)
		assert.True(t, cookies["token"].Secure)
		assert.Equal(t, "admin", cookies["user_role"].Value)
	})

	t.Run("clear expires both cookies", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/logout", nil)
		store := provider.Open(rec, req)

		require.NoError(t, store.Clear(ctx))

		cookies := cookiesByName(rec.Result().Cookies())
		assert.Equal(t, -1, cookies["token"].MaxAge)
		assert.Equal(t, -1, cookies["user_role"].MaxAge)
	})

	t.Run("custom cookie names", func(t *testing.T) {
		custom := NewCookieProvider(CookieOptions{TokenName: "access_token"})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: "x.y.z"})

		cred, err := custom.Open(httptest.NewRecorder(), req).Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "x.y.z", cred.Token)
	})
}

func cookiesByName(cookies []*http.Cookie) map[string]*http.Cookie {
	out := make(map[string]*http.Cookie, len(cookies))
	for _, c := range cookies {
		out[c.Name] = c
	}
	return out
}
