package routeguard

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/parking-console/credential"
	"github.com/upb/parking-console/internal/auth"
)

var (
	aboutRoute     = Route{Name: "About", Path: "/about", Page: "about"}
	loginRoute     = Route{Name: "Login", Path: "/login", Page: "login", Access: Access{GuestOnly: true}}
	userDashRoute  = Route{Name: "UserDashboard", Path: "/user/dashboard", Page: "user-dashboard", Access: Access{RequiresAuth: true}}
	adminDashRoute = Route{Name: "AdminDashboard", Path: "/admin/dashboard", Page: "admin-dashboard", Access: Access{RequiresAuth: true, RequiresRole: auth.RoleAdmin}}
	userOnlyRoute  = Route{Name: "UserBookSpot", Path: "/user/book", Page: "user-book", Access: Access{RequiresRole: auth.RoleUser}}
)

func mintToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	s, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	return s
}

func credentials(t *testing.T) map[string]credential.Credential {
	return map[string]credential.Credential{
		"absent":           {},
		"admin":            {Token: mintToken(t, jwt.MapClaims{"sub": "1", "role": "admin"})},
		"user":             {Token: mintToken(t, jwt.MapClaims{"sub": "2", "role": "user"})},
		"legacy admin":     {Token: mintToken(t, jwt.MapClaims{"id": 3, "is_admin": true})},
		"one segment":      {Token: "garbage"},
		"bad payload":      {Token: "header.%%%.sig"},
		"unknown role":     {Token: mintToken(t, jwt.MapClaims{"role": "root"})},
		"cached role only": {Role: "admin"},
	}
}

func TestEvaluate_RequiresAuthWithoutCredential(t *testing.T) {
	landing := DefaultLanding()

	for _, route := range []Route{userDashRoute, adminDashRoute, userOnlyRoute} {
		decision := Evaluate(route, credential.Credential{}, landing)
		assert.Equal(t, Redirect, decision.Outcome, route.Path)
		assert.Equal(t, "/login", decision.Location, route.Path)
		assert.ErrorIs(t, decision.Reason, ErrMissingCredential)
		assert.Nil(t, decision.Principal)
	}
}

func TestEvaluate_CachedRoleIsNotACredential(t *testing.T) {
	decision := Evaluate(adminDashRoute, credential.Credential{Role: "admin"}, DefaultLanding())
	assert.Equal(t, Redirect, decision.Outcome)
	assert.Equal(t, "/login", decision.Location)
	assert.ErrorIs(t, decision.Reason, ErrMissingCredential)
}

func TestEvaluate_RoleMismatch(t *testing.T) {
	landing := DefaultLanding()

	t.Run("user on admin page lands on user dashboard", func(t *testing.T) {
		cred := credential.Credential{Token: mintToken(t, jwt.MapClaims{"role": "user"})}

		decision := Evaluate(adminDashRoute, cred, landing)
		assert.Equal(t, Redirect, decision.Outcome)
		assert.Equal(t, "/user/dashboard", decision.Location)
		assert.ErrorIs(t, decision.Reason, ErrInsufficientRole)
		require.NotNil(t, decision.Principal)
		assert.Equal(t, auth.RoleUser, decision.Principal.Role)
	})

	t.Run("admin on user-only page lands on admin dashboard", func(t *testing.T) {
		cred := credential.Credential{Token: mintToken(t, jwt.MapClaims{"role": "admin"})}

		decision := Evaluate(userOnlyRoute, cred, landing)
		assert.Equal(t, Redirect, decision.Outcome)
		assert.Equal(t, "/admin/dashboard", decision.Location)
		assert.ErrorIs(t, decision.Reason, ErrInsufficientRole)
	})

	t.Run("legacy is_admin flag satisfies admin role", func(t *testing.T) {
		cred := credential.Credential{Token: mintToken(t, jwt.MapClaims{"is_admin": true})}

		decision := Evaluate(adminDashRoute, cred, landing)
		assert.True(t, decision.Admitted())
	})
}

func TestEvaluate_MalformedCredentialActsAsAbsent(t *testing.T) {
	landing := DefaultLanding()
	malformed := []string{
		"garbage",
		"a.b",
		"a.b.c.d",
		"header.%%%.sig",
		"header..sig",
		"eyJhbGciOiJub25lIn0.bm90IGpzb24.sig",
	}
	protected := []Route{userDashRoute, adminDashRoute, userOnlyRoute}

	for _, token := range malformed {
		for _, route := range protected {
			absent := Evaluate(route, credential.Credential{}, landing)
			first := Evaluate(route, credential.Credential{Token: token}, landing)
			second := Evaluate(route, credential.Credential{Token: token}, landing)

			assert.Equal(t, absent.Outcome, first.Outcome, "%s %s", token, route.Path)
			assert.Equal(t, absent.Location, first.Location, "%s %s", token, route.Path)
			assert.ErrorIs(t, first.Reason, ErrMalformedCredential)
			assert.Equal(t, first, second)
		}
	}

	t.Run("malformed credential on guest page is signed out", func(t *testing.T) {
		decision := Evaluate(loginRoute, credential.Credential{Token: "garbage"}, landing)
		assert.True(t, decision.Admitted())
	})
}

func TestEvaluate_OpenRoutesAlwaysAdmit(t *testing.T) {
	for name, cred := range credentials(t) {
		decision := Evaluate(aboutRoute, cred, DefaultLanding())
		assert.True(t, decision.Admitted(), name)
		assert.Empty(t, decision.Location, name)
		assert.NoError(t, decision.Reason, name)
	}
}

func TestEvaluate_GuestOnly(t *testing.T) {
	landing := DefaultLanding()

	t.Run("admin leaves login for admin dashboard", func(t *testing.T) {
		cred := credential.Credential{Token: mintToken(t, jwt.MapClaims{"role": "admin"})}

		decision := Evaluate(loginRoute, cred, landing)
		assert.Equal(t, Redirect, decision.Outcome)
		assert.Equal(t, "/admin/dashboard", decision.Location)
		assert.NoError(t, decision.Reason)
	})

	t.Run("user leaves login for user dashboard", func(t *testing.T) {
		cred := credential.Credential{Token: mintToken(t, jwt.MapClaims{"role": "user"})}

		decision := Evaluate(loginRoute, cred, landing)
		assert.Equal(t, Redirect, decision.Outcome)
		assert.Equal(t, "/user/dashboard", decision.Location)
	})

	t.Run("signed out visitor sees login", func(t *testing.T) {
		decision := Evaluate(loginRoute, credential.Credential{}, landing)
		assert.True(t, decision.Admitted())
	})
}

func TestEvaluate_Admits(t *testing.T) {
	landing := DefaultLanding()
	admin := credential.Credential{Token: mintToken(t, jwt.MapClaims{"sub": "1", "role": "admin"})}
	user := credential.Credential{Token: mintToken(t, jwt.MapClaims{"sub": "2", "role": "user"})}

	decision := Evaluate(adminDashRoute, admin, landing)
	assert.True(t, decision.Admitted())
	require.NotNil(t, decision.Principal)
	assert.Equal(t, "1", decision.Principal.Subject)

	// authenticated pages without a role restriction accept both roles
	assert.True(t, Evaluate(userDashRoute, admin, landing).Admitted())
	assert.True(t, Evaluate(userDashRoute, user, landing).Admitted())
	assert.True(t, Evaluate(userOnlyRoute, user, landing).Admitted())
}

func TestEvaluate_IdentityObjectToken(t *testing.T) {
	landing := DefaultLanding()
	admin := credential.Credential{Token: mintToken(t, jwt.MapClaims{
		"sub": map[string]interface{}{"username": "root", "role": "admin"},
	})}
	user := credential.Credential{Token: mintToken(t, jwt.MapClaims{
		"sub": map[string]interface{}{"username": "ana", "role": "user"},
	})}

	decision := Evaluate(adminDashRoute, admin, landing)
	assert.True(t, decision.Admitted())
	require.NotNil(t, decision.Principal)
	assert.Equal(t, "root", decision.Principal.Username)

	decision = Evaluate(adminDashRoute, user, landing)
	assert.Equal(t, Redirect, decision.Outcome)
	assert.Equal(t, landing.User, decision.Location)
	assert.ErrorIs(t, decision.Reason, ErrInsufficientRole)

	decision = Evaluate(loginRoute, admin, landing)
	assert.Equal(t, Redirect, decision.Outcome)
	assert.Equal(t, landing.Admin, decision.Location)
}

func TestEvaluate_Idempotent(t *testing.T) {
	landing := DefaultLanding()
	routes := []Route{aboutRoute, loginRoute, userDashRoute, adminDashRoute, userOnlyRoute}

	for name, cred := range credentials(t) {
		for _, route := range routes {
			first := Evaluate(route, cred, landing)
			second := Evaluate(route, cred, landing)
			assert.Equal(t, first, second, "%s %s", name, route.Path)
		}
	}
}

func TestEvaluate_NeverAdmitsProtectedWithoutDecodableCredential(t *testing.T) {
	landing := DefaultLanding()
	unusable := []credential.Credential{{}, {Token: "x"}, {Token: "a.b.c"}, {Role: "admin"}}

	for _, cred := range unusable {
		for _, route := range []Route{userDashRoute, adminDashRoute, userOnlyRoute} {
			assert.False(t, Evaluate(route, cred, landing).Admitted(), "%+v %s", cred, route.Path)
		}
	}
}

// MockStore is a mock implementation of credential.Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Get(ctx context.Context) (credential.Credential, error) {
	args := m.Called(ctx)
	return args.Get(0).(credential.Credential), args.Error(1)
}

func (m *MockStore) Set(ctx context.Context, cred credential.Credential) error {
	return m.Called(ctx, cred).Error(0)
}

func (m *MockStore) Clear(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestGuard_Navigate(t *testing.T) {
	ctx := context.Background()

	t.Run("reads the store and never writes it", func(t *testing.T) {
		store := new(MockStore)
		cred := credential.Credential{Token: mintToken(t, jwt.MapClaims{"role": "user"})}
		store.On("Get", mock.Anything).Return(cred, nil)

		guard := New(store, DefaultLanding())
		decision := guard.Navigate(ctx, adminDashRoute)

		assert.Equal(t, "/user/dashboard", decision.Location)
		store.AssertExpectations(t)
		store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "Clear", mock.Anything)
	})

	t.Run("empty store redirects to login", func(t *testing.T) {
		store := new(MockStore)
		store.On("Get", mock.Anything).Return(credential.Credential{}, credential.ErrNotFound)

		decision := New(store, DefaultLanding()).Navigate(ctx, userDashRoute)
		assert.Equal(t, "/login", decision.Location)
		assert.ErrorIs(t, decision.Reason, ErrMissingCredential)
	})

	t.Run("store failure is treated as absent", func(t *testing.T) {
		store := new(MockStore)
		store.On("Get", mock.Anything).Return(credential.Credential{}, errors.New("redis down"))

		guard := New(store, DefaultLanding())
		decision := guard.Navigate(ctx, adminDashRoute)
		assert.Equal(t, Redirect, decision.Outcome)
		assert.Equal(t, "/login", decision.Location)
		assert.ErrorIs(t, decision.Reason, ErrMissingCredential)
		assert.Contains(t, decision.Reason.Error(), "redis down")

		assert.True(t, guard.Navigate(ctx, aboutRoute).Admitted())
		assert.True(t, guard.Navigate(ctx, loginRoute).Admitted())
	})

	t.Run("memory store double", func(t *testing.T) {
		store := credential.NewMemoryStore(credential.Credential{Token: mintToken(t, jwt.MapClaims{"role": "admin"})})
		guard := New(store, DefaultLanding())

		assert.True(t, guard.Navigate(ctx, adminDashRoute).Admitted())
		assert.Equal(t, guard.Navigate(ctx, adminDashRoute), guard.Navigate(ctx, adminDashRoute))

		require.NoError(t, store.Clear(ctx))
		assert.Equal(t, "/login", guard.Navigate(ctx, adminDashRoute).Location)
	})
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "admit", Admit.String())
	assert.Equal(t, "redirect", Redirect.String())
	assert.Equal(t, "outcome(7)", Outcome(7).String())
}
