package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var (
	ErrMissingToken      = errors.New("authentication required")
	ErrInvalidAuthHeader = errors.New("invalid authorization header")
	ErrInvalidToken      = errors.New("invalid token")
	ErrMissingRole       = errors.New("missing required role")
)

// User is a caller identity resolved by the external auth service.
type User struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	Admin    bool     `json:"admin"`
}

// Authenticator resolves a bearer credential to a user identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*User, error)
}

// Client resolves identities against the auth service's "me" endpoint.
// This service never validates credentials itself.
type Client struct {
	meURL         string
	requiredRoles []string
	adminRoles    []string
	client        *http.Client
}

func NewClient(authURL string, requiredRoles, adminRoles []string) *Client {
	return &Client{
		meURL:         strings.TrimRight(authURL, "/") + "/api/V2/me",
		requiredRoles: requiredRoles,
		adminRoles:    adminRoles,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Authenticate resolves the token to a username and role set. Callers must
// hold one of the required roles unless they hold an admin role.
func (c *Client) Authenticate(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.meURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create auth request: %w", err)
	}
	req.Header.Set("Authorization", token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth service unreachable: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrInvalidToken
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("auth service returned status %d", resp.StatusCode)
	}

	var payload struct {
		User        string   `json:"user"`
		CustomRoles []string `json:"customroles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode auth response: %w", err)
	}
	if payload.User == "" {
		return nil, ErrInvalidToken
	}

	user := &User{
		Username: payload.User,
		Roles:    payload.CustomRoles,
		Admin:    hasAny(payload.CustomRoles, c.adminRoles),
	}

	if len(c.requiredRoles) > 0 && !user.Admin && !hasAny(user.Roles, c.requiredRoles) {
		return nil, fmt.Errorf("%w: one of %s is required", ErrMissingRole, strings.Join(c.requiredRoles, ", "))
	}
	return user, nil
}

func hasAny(roles, wanted []string) bool {
	for _, w := range wanted {
		for _, r := range roles {
			if r == w {
				return true
			}
		}
	}
	return false
}
