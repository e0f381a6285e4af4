package server

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInteractRejectsBadSignature(t *testing.T) {
	h := newHarness(t)

	req := httptest.NewRequest(http.MethodPost, "/slack/interact", strings.NewReader("payload=%7B%7D"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Slack-Request-Timestamp", "1700000000")
	req.Header.Set("X-Slack-Signature", "v0=deadbeef")

	rec := h.do(req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "slack_signature_invalid")
}

func TestInteractRejectsMissingHeaders(t *testing.T) {
	h := newHarness(t)

	req := httptest.NewRequest(http.MethodPost, "/slack/interact", strings.NewReader("payload=%7B%7D"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := h.do(req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestInteractTamperedBody(t *testing.T) {
	h := newHarness(t)

	req := signedInteraction(t, map[string]any{"type": "block_actions"})
	req.Body = http.NoBody
	req.ContentLength = 0

	rec := h.do(req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestInteractStaleTimestamp(t *testing.T) {
	h := newHarness(t)

	// Replaying an old timestamp fails before the signature is even checked.
	req := signedInteraction(t, map[string]any{"type": "block_actions"})
	req.Header.Set("X-Slack-Request-Timestamp",
		strconv.FormatInt(time.Now().Add(-10*time.Minute).Unix(), 10))

	rec := h.do(req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestInteractAcksUnknownPayload(t *testing.T) {
	h := newHarness(t)

	rec := h.do(signedInteraction(t, map[string]any{"type": "shortcut"}))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, h.notifier.modals)
	require.Empty(t, *h.govHits)
}

func TestInteractAcksUnparseablePayload(t *testing.T) {
	h := newHarness(t)

	req := signedInteractionRaw(t, "payload=not-json")
	rec := h.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestInteractAcksMissingPayloadField(t *testing.T) {
	h := newHarness(t)

	req := signedInteractionRaw(t, "command=%2Fhelp")
	rec := h.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
}
