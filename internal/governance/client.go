package governance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dagbolade/tenant-access-relay/internal/token"
	"github.com/rs/zerolog/log"
)

// APIError is a failed governance operation: an upstream rejection, a
// connectivity failure, or a precondition failure before any call was made.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string { return e.Message }

// Client talks to the external group-membership API. It owns the only
// mutable state in the system worth protecting, so every call is single-shot
// with a bounded timeout and no retries.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeoutSec int) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: time.Duration(timeoutSec) * time.Second,
		},
	}
}

// AddGroupMember adds username to the group derived from the tenant and
// permission. The admin credential is forwarded as-is; its validity and scope
// are the upstream's concern. Adding an already-present member is a no-op
// upstream, which is what makes duplicate approvals harmless.
func (c *Client) AddGroupMember(ctx context.Context, adminToken, tenantName, username string, perm token.Permission) error {
	if adminToken == "" {
		return &APIError{Message: "admin token is required to call the governance API"}
	}

	group := perm.GroupName(tenantName)
	endpoint := fmt.Sprintf("%s/management/groups/%s/members/%s",
		c.baseURL, url.PathEscape(group), url.PathEscape(username))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+adminToken)

	resp, err := c.client.Do(req)
	if err != nil {
		log.Error().Err(err).Str("group", group).Msg("governance API request failed")
		return &APIError{Message: fmt.Sprintf("failed to connect to governance API: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.upstreamError(resp, group)
	}

	log.Info().Str("group", group).Str("username", username).Msg("added group member")
	return nil
}

func (c *Client) upstreamError(resp *http.Response, group string) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	detail := parseErrorDetail(body)
	if detail == "" {
		detail = strings.TrimSpace(string(body))
	}

	log.Error().
		Int("status", resp.StatusCode).
		Str("group", group).
		Str("detail", detail).
		Msg("governance API error")
	return &APIError{StatusCode: resp.StatusCode, Message: detail}
}

// parseErrorDetail extracts the upstream error message. Upstreams answer in
// two formats: {"detail": "..."} or {"message": "...", "error_type": "..."}.
func parseErrorDetail(body []byte) string {
	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Detail != "" {
		return payload.Detail
	}
	return payload.Message
}
