// Package workflow drives the approval lifecycle. The machine holds no
// server-side state: each transition is a pure function of the decoded
// request context plus the inbound event, and the chat message is the only
// record the outside world sees.
package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/dagbolade/tenant-access-relay/internal/token"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Status string

const (
	StatusApproved Status = "approved"
	StatusDenied   Status = "denied"
)

// Notifier is the chat platform capability. Update calls never fail the
// transition; the implementations log and swallow their own errors.
type Notifier interface {
	SendAccessRequest(ctx context.Context, req token.Context, justification string) (channelID, messageTS string, err error)
	OpenApprovalModal(ctx context.Context, triggerID, encoded, channelID, messageTS string) error
	UpdateApproved(ctx context.Context, channelID, messageTS string, req token.Context, approvedBy string)
	UpdateDenied(ctx context.Context, channelID, messageTS string, req token.Context, deniedBy string)
	UpdatePending(ctx context.Context, channelID, messageTS string, req token.Context, clickedBy string)
}

// Governance is the external group-membership capability.
type Governance interface {
	AddGroupMember(ctx context.Context, adminToken, tenantName, username string, perm token.Permission) error
}

// Outcome is the result of a terminal transition. Constructed once, returned
// to the caller, never stored.
type Outcome struct {
	Status      Status           `json:"status"`
	Requester   string           `json:"requester"`
	TenantName  string           `json:"tenant_name"`
	Permission  token.Permission `json:"permission"`
	PerformedBy string           `json:"performed_by"`
	Message     string           `json:"message"`
	Timestamp   time.Time        `json:"timestamp"`
}

type Workflow struct {
	notifier   Notifier
	governance Governance
}

func New(notifier Notifier, governance Governance) *Workflow {
	return &Workflow{
		notifier:   notifier,
		governance: governance,
	}
}

// Submit opens an approval cycle: the request context is encoded into the
// chat message's interactive controls and nothing is persisted. A chat
// failure is fatal here, since the requester must know the request did not
// reach the admins.
func (w *Workflow) Submit(ctx context.Context, requester, tenantName string, perm token.Permission, justification string) error {
	req := token.New(requester, tenantName, perm)
	requestID := uuid.NewString()

	channelID, messageTS, err := w.notifier.SendAccessRequest(ctx, req, justification)
	if err != nil {
		return err
	}

	log.Info().
		Str("request_id", requestID).
		Str("requester", requester).
		Str("tenant", tenantName).
		Str("permission", string(perm)).
		Str("channel", channelID).
		Str("ts", messageTS).
		Msg("access request submitted")
	return nil
}

// Approve grants membership and then updates the chat message. The order is
// an invariant: the message must never read approved before the grant has
// actually succeeded. Shared by the modal path and the direct endpoint.
func (w *Workflow) Approve(ctx context.Context, adminToken, performedBy string, req token.Context, channelID, messageTS string) (*Outcome, error) {
	if err := w.governance.AddGroupMember(ctx, adminToken, req.TenantName, req.Requester, req.Permission); err != nil {
		return nil, err
	}

	w.notifier.UpdateApproved(ctx, channelID, messageTS, req, performedBy)

	log.Info().
		Str("performed_by", performedBy).
		Str("requester", req.Requester).
		Str("tenant", req.TenantName).
		Str("permission", string(req.Permission)).
		Msg("access request approved")

	return &Outcome{
		Status:      StatusApproved,
		Requester:   req.Requester,
		TenantName:  req.TenantName,
		Permission:  req.Permission,
		PerformedBy: performedBy,
		Message:     fmt.Sprintf("Successfully added %s to %s", req.Requester, req.TenantName),
		Timestamp:   time.Now().UTC(),
	}, nil
}

// Deny is terminal and touches governance not at all.
func (w *Workflow) Deny(ctx context.Context, performedBy string, req token.Context, channelID, messageTS string) (*Outcome, error) {
	w.notifier.UpdateDenied(ctx, channelID, messageTS, req, performedBy)

	log.Info().
		Str("performed_by", performedBy).
		Str("requester", req.Requester).
		Str("tenant", req.TenantName).
		Msg("access request denied")

	return &Outcome{
		Status:      StatusDenied,
		Requester:   req.Requester,
		TenantName:  req.TenantName,
		Permission:  req.Permission,
		PerformedBy: performedBy,
		Message:     fmt.Sprintf("Access request denied for %s", req.Requester),
		Timestamp:   time.Now().UTC(),
	}, nil
}
