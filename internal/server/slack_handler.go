package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/dagbolade/tenant-access-relay/internal/workflow"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"
)

type SlackHandler struct {
	verifier SignatureVerifier
	workflow *workflow.Workflow
}

func NewSlackHandler(verifier SignatureVerifier, wf *workflow.Workflow) *SlackHandler {
	return &SlackHandler{
		verifier: verifier,
		workflow: wf,
	}
}

// Interact handles interactive component callbacks: button clicks and modal
// submissions. Signature and timestamp are verified before the body is
// parsed; after that point every recognized envelope acks with 200 so the
// platform never retries a handled event.
func (h *SlackHandler) Interact(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read request body")
	}

	signature := c.Request().Header.Get("X-Slack-Signature")
	timestamp := c.Request().Header.Get("X-Slack-Request-Timestamp")
	if err := h.verifier.VerifyRequest(signature, timestamp, body); err != nil {
		return err
	}

	values, err := url.ParseQuery(string(body))
	if err != nil {
		log.Warn().Err(err).Msg("callback body is not form-encoded")
		return c.NoContent(http.StatusOK)
	}

	payload := values.Get("payload")
	if payload == "" {
		log.Warn().Msg("callback carried no payload field")
		return c.NoContent(http.StatusOK)
	}

	var cb slack.InteractionCallback
	if err := json.Unmarshal([]byte(payload), &cb); err != nil {
		log.Warn().Err(err).Msg("unparseable interaction payload")
		return c.NoContent(http.StatusOK)
	}

	if resp := h.workflow.HandleInteraction(c.Request().Context(), &cb); resp != nil {
		return c.JSON(http.StatusOK, resp)
	}
	return c.NoContent(http.StatusOK)
}
