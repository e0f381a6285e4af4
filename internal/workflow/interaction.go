package workflow

import (
	"context"

	"github.com/dagbolade/tenant-access-relay/internal/slackbot"
	"github.com/dagbolade/tenant-access-relay/internal/token"
	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"
)

// HandleInteraction interprets a verified callback from the chat platform
// and drives the corresponding transition. It never returns an error:
// unrecognized or broken events are logged and acknowledged so that platform
// retries and schema drift cannot cascade into user-visible failures. A
// non-nil response is written back to keep the modal open with field errors.
func (w *Workflow) HandleInteraction(ctx context.Context, cb *slack.InteractionCallback) *slack.ViewSubmissionResponse {
	switch cb.Type {
	case slack.InteractionTypeBlockActions:
		w.handleBlockAction(ctx, cb)
		return nil
	case slack.InteractionTypeViewSubmission:
		return w.handleViewSubmission(ctx, cb)
	default:
		log.Warn().Str("type", string(cb.Type)).Msg("ignoring unknown interaction type")
		return nil
	}
}

func (w *Workflow) handleBlockAction(ctx context.Context, cb *slack.InteractionCallback) {
	if len(cb.ActionCallback.BlockActions) == 0 {
		log.Warn().Msg("block action payload carried no actions")
		return
	}
	action := cb.ActionCallback.BlockActions[0]

	req, err := token.Decode(action.Value)
	if err != nil {
		log.Warn().Err(err).Str("action_id", action.ActionID).Msg("ignoring action with undecodable value")
		return
	}

	actor := cb.User.Name
	channelID := cb.Channel.ID
	messageTS := cb.Message.Timestamp

	switch action.ActionID {
	case slackbot.ActionApprove:
		if err := w.notifier.OpenApprovalModal(ctx, cb.TriggerID, action.Value, channelID, messageTS); err != nil {
			// Degrade to the pending display state; the callback itself
			// still acks so the button click is not retried.
			log.Error().Err(err).Str("actor", actor).Msg("failed to open approval modal")
			w.notifier.UpdatePending(ctx, channelID, messageTS, req, actor)
			return
		}
		log.Info().
			Str("actor", actor).
			Str("requester", req.Requester).
			Str("tenant", req.TenantName).
			Msg("opened approval modal")

	case slackbot.ActionDeny:
		w.notifier.UpdateDenied(ctx, channelID, messageTS, req, actor)
		log.Info().
			Str("actor", actor).
			Str("requester", req.Requester).
			Str("tenant", req.TenantName).
			Msg("denied via slack")

	default:
		log.Warn().Str("action_id", action.ActionID).Msg("ignoring unknown action")
	}
}

func (w *Workflow) handleViewSubmission(ctx context.Context, cb *slack.InteractionCallback) *slack.ViewSubmissionResponse {
	if cb.View.CallbackID != slackbot.CallbackApproveWithToken {
		log.Warn().Str("callback_id", cb.View.CallbackID).Msg("ignoring unknown view callback")
		return nil
	}

	meta, err := slackbot.ParseModalMetadata(cb.View.PrivateMetadata)
	if err != nil {
		log.Warn().Err(err).Msg("view submission carried bad metadata")
		return nil
	}

	req, err := token.Decode(meta.EncodedValue)
	if err != nil {
		log.Warn().Err(err).Msg("view submission carried an undecodable token")
		return fieldError("Approval failed: invalid request token")
	}

	var credential string
	if cb.View.State != nil {
		credential = cb.View.State.Values[slackbot.TokenBlockID][slackbot.TokenActionID].Value
	}

	if _, err := w.Approve(ctx, credential, cb.User.Name, req, meta.ChannelID, meta.MessageTS); err != nil {
		log.Error().Err(err).Str("actor", cb.User.Name).Msg("approval via modal failed")
		return fieldError("Approval failed: " + truncate(err.Error(), 100))
	}

	// Empty ack closes the modal.
	return nil
}

// fieldError keeps the modal open and shows the message inline on the token
// input, giving the admin a retry affordance without losing context.
func fieldError(message string) *slack.ViewSubmissionResponse {
	return slack.NewErrorsViewSubmissionResponse(map[string]string{
		slackbot.TokenBlockID: message,
	})
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
