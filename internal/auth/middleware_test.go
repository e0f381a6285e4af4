package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

type fakeAuthenticator struct {
	user *User
	err  error
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, _ string) (*User, error) {
	return f.user, f.err
}

func newTestContext(authHeader string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	return e.NewContext(req, httptest.NewRecorder())
}

func passthrough(c echo.Context) error { return nil }

func TestMiddlewareStoresUserAndToken(t *testing.T) {
	authn := &fakeAuthenticator{user: &User{Username: "alice", Admin: true}}
	c := newTestContext("Bearer some-token")

	err := Middleware(authn)(passthrough)(c)
	require.NoError(t, err)

	user := UserFrom(c)
	require.NotNil(t, user)
	require.Equal(t, "alice", user.Username)
	require.Equal(t, "some-token", TokenFrom(c))
}

func TestMiddlewareMissingHeader(t *testing.T) {
	authn := &fakeAuthenticator{user: &User{Username: "alice"}}
	c := newTestContext("")

	err := Middleware(authn)(passthrough)(c)
	require.True(t, errors.Is(err, ErrMissingToken))
}

func TestMiddlewareBadHeader(t *testing.T) {
	authn := &fakeAuthenticator{user: &User{Username: "alice"}}

	for _, header := range []string{"some-token", "Basic abc", "Bearer "} {
		c := newTestContext(header)
		err := Middleware(authn)(passthrough)(c)
		require.True(t, errors.Is(err, ErrInvalidAuthHeader), "header %q", header)
	}
}

func TestMiddlewarePropagatesAuthError(t *testing.T) {
	authn := &fakeAuthenticator{err: ErrInvalidToken}
	c := newTestContext("Bearer bad")

	err := Middleware(authn)(passthrough)(c)
	require.True(t, errors.Is(err, ErrInvalidToken))
}

func TestRequireAdmin(t *testing.T) {
	c := newTestContext("")
	c.Set(userContextKey, &User{Username: "alice", Admin: true})
	require.NoError(t, RequireAdmin()(passthrough)(c))

	c = newTestContext("")
	c.Set(userContextKey, &User{Username: "bob"})
	require.True(t, errors.Is(RequireAdmin()(passthrough)(c), ErrMissingRole))

	c = newTestContext("")
	require.True(t, errors.Is(RequireAdmin()(passthrough)(c), ErrMissingToken))
}
