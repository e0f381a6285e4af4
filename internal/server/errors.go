package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dagbolade/tenant-access-relay/internal/auth"
	"github.com/dagbolade/tenant-access-relay/internal/governance"
	"github.com/dagbolade/tenant-access-relay/internal/slackbot"
	"github.com/dagbolade/tenant-access-relay/internal/token"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// errorResponse is the envelope every error path answers with.
type errorResponse struct {
	Error     *int   `json:"error"`
	ErrorType string `json:"error_type,omitempty"`
	Message   string `json:"message"`
}

// httpErrorHandler is the single classification point for every error that
// escapes a handler: domain errors map to 400, authentication failures to
// 401/403, and anything unexpected to an opaque 500.
func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	errType := ""
	message := "An unexpected error occurred"

	var govErr *governance.APIError
	var slackErr *slackbot.Error
	var httpErr *echo.HTTPError

	switch {
	case errors.Is(err, slackbot.ErrSignatureInvalid), errors.Is(err, slackbot.ErrRequestStale):
		status = http.StatusUnauthorized
		errType = "slack_signature_invalid"
		message = err.Error()

	case errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidAuthHeader),
		errors.Is(err, auth.ErrInvalidToken):
		status = http.StatusUnauthorized
		errType = "authentication_failed"
		message = err.Error()

	case errors.Is(err, auth.ErrMissingRole):
		status = http.StatusForbidden
		errType = "missing_role"
		message = err.Error()

	case errors.Is(err, token.ErrMalformed):
		status = http.StatusBadRequest
		errType = "malformed_token"
		message = err.Error()

	case errors.As(err, &govErr):
		status = http.StatusBadRequest
		errType = "governance_api_error"
		message = govErr.Message

	case errors.As(err, &slackErr):
		status = http.StatusBadRequest
		errType = "slack_error"
		message = slackErr.Error()

	case errors.As(err, &httpErr):
		status = httpErr.Code
		message = fmt.Sprintf("%v", httpErr.Message)

	default:
		log.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("unhandled error")
	}

	if err := c.JSON(status, errorResponse{ErrorType: errType, Message: message}); err != nil {
		log.Error().Err(err).Msg("failed to write error response")
	}
}
