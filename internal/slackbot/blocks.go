package slackbot

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dagbolade/tenant-access-relay/internal/token"
	"github.com/slack-go/slack"
)

// Interactive element identifiers. These are wire values round-tripped
// through Slack; changing them breaks in-flight messages.
const (
	ActionApprove = "approve_tenant_access"
	ActionDeny    = "deny_tenant_access"

	CallbackApproveWithToken = "approve_with_token"

	TokenBlockID  = "token_block"
	TokenActionID = "admin_token"
)

// ModalMetadata carries the encoded request context and message coordinates
// through the modal round-trip as private metadata.
type ModalMetadata struct {
	EncodedValue string `json:"encoded_value"`
	ChannelID    string `json:"channel_id"`
	MessageTS    string `json:"message_ts"`
}

func ParseModalMetadata(raw string) (ModalMetadata, error) {
	var m ModalMetadata
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return ModalMetadata{}, fmt.Errorf("parse modal metadata: %w", err)
	}
	return m, nil
}

func utcNow() string {
	return time.Now().UTC().Format("2006-01-02 15:04 UTC")
}

func plainText(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.PlainTextType, text, true, false)
}

func mrkdwn(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.MarkdownType, text, false, false)
}

func requestFields(req token.Context, extraLabel, extraValue string) []*slack.TextBlockObject {
	return []*slack.TextBlockObject{
		mrkdwn(fmt.Sprintf("*Requester:*\n%s", req.Requester)),
		mrkdwn(fmt.Sprintf("*Tenant:*\n%s", req.TenantName)),
		mrkdwn(fmt.Sprintf("*Permission:*\n%s", req.Permission.Display())),
		mrkdwn(fmt.Sprintf("*%s:*\n%s", extraLabel, extraValue)),
	}
}

func buildRequestBlocks(req token.Context, justification, encoded string) []slack.Block {
	blocks := []slack.Block{
		slack.NewHeaderBlock(plainText("🔐 Tenant Access Request")),
		slack.NewSectionBlock(nil, requestFields(req, "Requested", utcNow()), nil),
	}

	if justification != "" {
		blocks = append(blocks, slack.NewSectionBlock(
			mrkdwn(fmt.Sprintf("*Justification:*\n%s", justification)), nil, nil))
	}

	approve := slack.NewButtonBlockElement(ActionApprove, encoded, plainText("✅ Approve"))
	approve.Style = slack.StylePrimary
	deny := slack.NewButtonBlockElement(ActionDeny, encoded, plainText("❌ Deny"))
	deny.Style = slack.StyleDanger

	return append(blocks, slack.NewActionBlock("", approve, deny))
}

func buildApprovedBlocks(req token.Context, approvedBy string) []slack.Block {
	return []slack.Block{
		slack.NewHeaderBlock(plainText("✅ Tenant Access Approved")),
		slack.NewSectionBlock(nil, requestFields(req, "Approved by", approvedBy), nil),
		slack.NewContextBlock("", mrkdwn("Approved at "+utcNow())),
	}
}

func buildDeniedBlocks(req token.Context, deniedBy string) []slack.Block {
	return []slack.Block{
		slack.NewHeaderBlock(plainText("❌ Tenant Access Denied")),
		slack.NewSectionBlock(nil, []*slack.TextBlockObject{
			mrkdwn(fmt.Sprintf("*Requester:*\n%s", req.Requester)),
			mrkdwn(fmt.Sprintf("*Tenant:*\n%s", req.TenantName)),
			mrkdwn(fmt.Sprintf("*Denied by:*\n%s", deniedBy)),
		}, nil),
		slack.NewContextBlock("", mrkdwn("Denied at "+utcNow())),
	}
}

func buildPendingBlocks(req token.Context, clickedBy string) []slack.Block {
	return []slack.Block{
		slack.NewHeaderBlock(plainText("⏳ Approval Pending Admin Action")),
		slack.NewSectionBlock(nil, requestFields(req, "Clicked by", clickedBy), nil),
		slack.NewContextBlock("", mrkdwn(fmt.Sprintf(
			"Awaiting admin API call at %s. Admin should call POST /approvals/approve with their token.",
			utcNow()))),
	}
}

func buildApprovalModal(encoded, channelID, messageTS string) slack.ModalViewRequest {
	meta, _ := json.Marshal(ModalMetadata{
		EncodedValue: encoded,
		ChannelID:    channelID,
		MessageTS:    messageTS,
	})

	input := slack.NewInputBlock(TokenBlockID,
		plainText("Admin Token"), nil,
		slack.NewPlainTextInputBlockElement(plainText("Paste your token here"), TokenActionID))

	return slack.ModalViewRequest{
		Type:            slack.VTModal,
		CallbackID:      CallbackApproveWithToken,
		PrivateMetadata: string(meta),
		Title:           plainText("Approve Access"),
		Submit:          plainText("Approve"),
		Close:           plainText("Cancel"),
		Blocks: slack.Blocks{BlockSet: []slack.Block{
			slack.NewSectionBlock(mrkdwn(
				"Enter your authentication token to approve this request.\n\n"+
					"Your token is used once to add the user to the group and is not stored."), nil, nil),
			input,
		}},
	}
}
