package auth

import (
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	userContextKey  = "auth.user"
	tokenContextKey = "auth.token"
)

// Middleware resolves the caller's identity and stores it, together with the
// raw credential, on the request context. The raw credential is kept so that
// admin endpoints can forward it to the governance API. Errors surface
// through the server's central error handler.
func Middleware(authn Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return ErrMissingToken
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				return ErrInvalidAuthHeader
			}

			user, err := authn.Authenticate(c.Request().Context(), parts[1])
			if err != nil {
				return err
			}

			c.Set(userContextKey, user)
			c.Set(tokenContextKey, parts[1])
			return next(c)
		}
	}
}

// RequireAdmin rejects callers lacking an admin role before any side effect.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := UserFrom(c)
			if user == nil {
				return ErrMissingToken
			}
			if !user.Admin {
				return ErrMissingRole
			}
			return next(c)
		}
	}
}

// UserFrom returns the authenticated user stored by Middleware, or nil.
func UserFrom(c echo.Context) *User {
	if user, ok := c.Get(userContextKey).(*User); ok {
		return user
	}
	return nil
}

// TokenFrom returns the raw bearer credential stored by Middleware.
func TokenFrom(c echo.Context) string {
	if token, ok := c.Get(tokenContextKey).(string); ok {
		return token
	}
	return ""
}
