package server

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port            int
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int

	Slack      SlackConfig
	Governance GovernanceConfig
	Auth       AuthConfig
}

type SlackConfig struct {
	BotToken      string
	SigningSecret string
	ChannelID     string
}

type GovernanceConfig struct {
	BaseURL string
	Timeout int // seconds
}

type AuthConfig struct {
	URL           string
	RequiredRoles []string
	AdminRoles    []string
}

// LoadConfig reads all recognized options from the environment once at
// startup. Nothing re-reads env mid-request.
func LoadConfig() Config {
	return Config{
		Port:            getEnvInt("PORT", 8080),
		ReadTimeout:     getEnvInt("READ_TIMEOUT", 30),
		WriteTimeout:    getEnvInt("WRITE_TIMEOUT", 30),
		ShutdownTimeout: getEnvInt("SHUTDOWN_TIMEOUT", 10),
		Slack: SlackConfig{
			BotToken:      os.Getenv("SLACK_BOT_TOKEN"),
			SigningSecret: os.Getenv("SLACK_SIGNING_SECRET"),
			ChannelID:     os.Getenv("SLACK_CHANNEL_ID"),
		},
		Governance: GovernanceConfig{
			BaseURL: os.Getenv("GOVERNANCE_API_URL"),
			Timeout: getEnvInt("GOVERNANCE_TIMEOUT", 30),
		},
		Auth: AuthConfig{
			URL:           getEnv("AUTH_URL", "https://ci.kbase.us/services/auth/"),
			RequiredRoles: getEnvList("AUTH_REQUIRED_ROLES", "BERDL_USER"),
			AdminRoles:    getEnvList("AUTH_ADMIN_ROLES", "CDM_JUPYTERHUB_ADMIN"),
		},
	}
}

// Validate reports the first missing required option.
func (c Config) Validate() error {
	required := []struct {
		name, value string
	}{
		{"SLACK_BOT_TOKEN", c.Slack.BotToken},
		{"SLACK_SIGNING_SECRET", c.Slack.SigningSecret},
		{"SLACK_CHANNEL_ID", c.Slack.ChannelID},
		{"GOVERNANCE_API_URL", c.Governance.BaseURL},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s is required and cannot be empty", r.name)
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvList(key, fallback string) []string {
	value := getEnv(key, fallback)
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
