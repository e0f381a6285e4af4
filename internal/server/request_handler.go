package server

import (
	"net/http"
	"strings"

	"github.com/dagbolade/tenant-access-relay/internal/auth"
	"github.com/dagbolade/tenant-access-relay/internal/token"
	"github.com/dagbolade/tenant-access-relay/internal/workflow"
	"github.com/labstack/echo/v4"
)

type RequestHandler struct {
	workflow *workflow.Workflow
}

func NewRequestHandler(wf *workflow.Workflow) *RequestHandler {
	return &RequestHandler{workflow: wf}
}

type createRequest struct {
	TenantName    string           `json:"tenant_name"`
	Permission    token.Permission `json:"permission"`
	Justification string           `json:"justification,omitempty"`
}

type createResponse struct {
	Status     string           `json:"status"`
	Message    string           `json:"message"`
	Requester  string           `json:"requester"`
	TenantName string           `json:"tenant_name"`
	Permission token.Permission `json:"permission"`
}

// Create submits an access request: the context is encoded and posted to the
// approval channel, nothing is stored.
func (h *RequestHandler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	req.TenantName = strings.TrimSpace(req.TenantName)
	if req.TenantName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "tenant_name is required")
	}
	if req.Permission == "" {
		req.Permission = token.ReadOnly
	}
	if !req.Permission.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "permission must be read_only or read_write")
	}

	user := auth.UserFrom(c)
	if user == nil {
		return auth.ErrMissingToken
	}

	if err := h.workflow.Submit(c.Request().Context(), user.Username, req.TenantName, req.Permission, req.Justification); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, createResponse{
		Status:     "submitted",
		Message:    "Request received by admins for approval. Check your group membership after approval.",
		Requester:  user.Username,
		TenantName: req.TenantName,
		Permission: req.Permission,
	})
}
