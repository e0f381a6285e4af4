package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApproveValidation(t *testing.T) {
	h := newHarness(t)

	tests := map[string]map[string]any{
		"missing requester": {
			"tenant_name": "test-tenant",
			"permission":  "read_only",
		},
		"missing tenant": {
			"requester":  "testuser",
			"permission": "read_only",
		},
		"bad permission": {
			"requester":   "testuser",
			"tenant_name": "test-tenant",
			"permission":  "admin",
		},
		"empty permission": {
			"requester":   "testuser",
			"tenant_name": "test-tenant",
		},
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			rec := h.do(jsonRequest(http.MethodPost, "/approvals/approve", "admin-tok", body))
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	require.Empty(t, *h.govHits)
}

func TestDenyRequiresAdmin(t *testing.T) {
	h := newHarness(t)

	rec := h.do(jsonRequest(http.MethodPost, "/approvals/deny", "user-tok", map[string]any{
		"requester":   "testuser",
		"tenant_name": "test-tenant",
		"permission":  "read_only",
	}))
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Empty(t, h.notifier.denied)
}

func TestApproveGovernanceErrorSurfaces(t *testing.T) {
	h := newHarness(t)
	h.govStatus = http.StatusForbidden
	h.govBody = `{"message":"User alice is not an admin of group test-tenant"}`

	rec := h.do(jsonRequest(http.MethodPost, "/approvals/approve", "admin-tok", map[string]any{
		"requester":   "testuser",
		"tenant_name": "test-tenant",
		"permission":  "read_only",
		"channel_id":  "C123",
		"message_ts":  "1700000000.000100",
	}))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "governance_api_error")
	require.Contains(t, rec.Body.String(), "not an admin of group")
	require.Empty(t, h.notifier.approved, "chat must not read approved after a failed grant")
}
