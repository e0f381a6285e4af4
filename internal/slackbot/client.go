package slackbot

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dagbolade/tenant-access-relay/internal/token"
	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"
)

// Error wraps a failed Slack API call.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("slack %s failed: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Client posts and updates approval messages in a single configured channel.
type Client struct {
	api           *slack.Client
	signingSecret string
	channelID     string
}

func New(botToken, signingSecret, channelID string) *Client {
	return &Client{
		api: slack.New(botToken, slack.OptionHTTPClient(&http.Client{
			Timeout: 30 * time.Second,
		})),
		signingSecret: signingSecret,
		channelID:     channelID,
	}
}

// VerifyRequest authenticates an inbound webhook against the signing secret.
func (c *Client) VerifyRequest(signature, timestamp string, body []byte) error {
	return VerifySignature(c.signingSecret, signature, timestamp, body)
}

// SendAccessRequest posts the approval message with Approve/Deny buttons
// carrying the encoded request context. Failures here are fatal to the
// submission: the requester must know the request did not go out.
func (c *Client) SendAccessRequest(ctx context.Context, req token.Context, justification string) (string, string, error) {
	encoded, err := token.Encode(req)
	if err != nil {
		return "", "", fmt.Errorf("encode request context: %w", err)
	}

	channelID, messageTS, err := c.api.PostMessageContext(ctx, c.channelID,
		slack.MsgOptionText(fmt.Sprintf("Tenant access request from %s for %s", req.Requester, req.TenantName), false),
		slack.MsgOptionBlocks(buildRequestBlocks(req, justification, encoded)...),
	)
	if err != nil {
		return "", "", &Error{Op: "post message", Err: err}
	}

	log.Info().
		Str("requester", req.Requester).
		Str("tenant", req.TenantName).
		Str("channel", channelID).
		Msg("sent access request to slack")
	return channelID, messageTS, nil
}

// OpenApprovalModal opens the credential-collection form seeded with the
// encoded context and message coordinates.
func (c *Client) OpenApprovalModal(ctx context.Context, triggerID, encoded, channelID, messageTS string) error {
	view := buildApprovalModal(encoded, channelID, messageTS)
	if _, err := c.api.OpenViewContext(ctx, triggerID, view); err != nil {
		return &Error{Op: "open view", Err: err}
	}
	return nil
}

// UpdateApproved rewrites the request message to its approved display state.
// Update failures are logged only; by the time a message is updated the
// governance action has already succeeded or been rejected.
func (c *Client) UpdateApproved(ctx context.Context, channelID, messageTS string, req token.Context, approvedBy string) {
	text := fmt.Sprintf("✅ Approved: %s → %s (%s)", req.Requester, req.TenantName, req.Permission.Display())
	c.update(ctx, channelID, messageTS, text, buildApprovedBlocks(req, approvedBy))
}

// UpdateDenied rewrites the request message to its denied display state.
func (c *Client) UpdateDenied(ctx context.Context, channelID, messageTS string, req token.Context, deniedBy string) {
	text := fmt.Sprintf("❌ Denied: %s → %s", req.Requester, req.TenantName)
	c.update(ctx, channelID, messageTS, text, buildDeniedBlocks(req, deniedBy))
}

// UpdatePending marks the message as awaiting a direct admin API call. Used
// as the degraded path when the modal cannot be opened.
func (c *Client) UpdatePending(ctx context.Context, channelID, messageTS string, req token.Context, clickedBy string) {
	text := fmt.Sprintf("⏳ Pending: %s → %s (%s)", req.Requester, req.TenantName, req.Permission.Display())
	c.update(ctx, channelID, messageTS, text, buildPendingBlocks(req, clickedBy))
}

func (c *Client) update(ctx context.Context, channelID, messageTS, text string, blocks []slack.Block) {
	_, _, _, err := c.api.UpdateMessageContext(ctx, channelID, messageTS,
		slack.MsgOptionText(text, false),
		slack.MsgOptionBlocks(blocks...),
	)
	if err != nil {
		log.Warn().Err(err).Str("channel", channelID).Str("ts", messageTS).Msg("failed to update slack message")
	}
}
