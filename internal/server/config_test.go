package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 30, cfg.Governance.Timeout)
	assert.Equal(t, []string{"BERDL_USER"}, cfg.Auth.RequiredRoles)
	assert.Equal(t, []string{"CDM_JUPYTERHUB_ADMIN"}, cfg.Auth.AdminRoles)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("GOVERNANCE_TIMEOUT", "5")
	t.Setenv("AUTH_REQUIRED_ROLES", "ROLE_A, ROLE_B,")

	cfg := LoadConfig()
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 5, cfg.Governance.Timeout)
	assert.Equal(t, []string{"ROLE_A", "ROLE_B"}, cfg.Auth.RequiredRoles)
}

func TestLoadConfigBadIntFallsBack(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	assert.Equal(t, 8080, LoadConfig().Port)
}

func TestValidate(t *testing.T) {
	cfg := LoadConfig()
	cfg.Slack = SlackConfig{BotToken: "xoxb-1", SigningSecret: "s", ChannelID: "C1"}
	cfg.Governance.BaseURL = "https://gov.example.com"
	require.NoError(t, cfg.Validate())

	cfg.Slack.SigningSecret = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SLACK_SIGNING_SECRET")
}
