package server

import (
	"net/http"
	"strings"

	"github.com/dagbolade/tenant-access-relay/internal/auth"
	"github.com/dagbolade/tenant-access-relay/internal/token"
	"github.com/dagbolade/tenant-access-relay/internal/workflow"
	"github.com/labstack/echo/v4"
)

type ApprovalHandler struct {
	workflow *workflow.Workflow
}

func NewApprovalHandler(wf *workflow.Workflow) *ApprovalHandler {
	return &ApprovalHandler{workflow: wf}
}

type approvalRequest struct {
	Requester  string           `json:"requester"`
	TenantName string           `json:"tenant_name"`
	Permission token.Permission `json:"permission"`
	ChannelID  string           `json:"channel_id"`
	MessageTS  string           `json:"message_ts"`
}

func (h *ApprovalHandler) bindRequest(c echo.Context) (*approvalRequest, error) {
	var req approvalRequest
	if err := c.Bind(&req); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	req.Requester = strings.TrimSpace(req.Requester)
	req.TenantName = strings.TrimSpace(req.TenantName)
	if req.Requester == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "requester is required")
	}
	if req.TenantName == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "tenant_name is required")
	}
	if !req.Permission.Valid() {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "permission must be read_only or read_write")
	}
	return &req, nil
}

// Approve grants access directly, bypassing the chat confirmation. The
// caller's own credential is forwarded to the governance API, never one
// supplied in the body.
func (h *ApprovalHandler) Approve(c echo.Context) error {
	body, err := h.bindRequest(c)
	if err != nil {
		return err
	}

	user := auth.UserFrom(c)
	req := token.Context{
		Requester:  body.Requester,
		TenantName: body.TenantName,
		Permission: body.Permission,
	}

	outcome, err := h.workflow.Approve(c.Request().Context(), auth.TokenFrom(c), user.Username, req, body.ChannelID, body.MessageTS)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, outcome)
}

// Deny records the denial in the chat message only; no membership changes.
func (h *ApprovalHandler) Deny(c echo.Context) error {
	body, err := h.bindRequest(c)
	if err != nil {
		return err
	}

	user := auth.UserFrom(c)
	req := token.Context{
		Requester:  body.Requester,
		TenantName: body.TenantName,
		Permission: body.Permission,
	}

	outcome, err := h.workflow.Deny(c.Request().Context(), user.Username, req, body.ChannelID, body.MessageTS)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, outcome)
}
