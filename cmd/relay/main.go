package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dagbolade/tenant-access-relay/internal/auth"
	"github.com/dagbolade/tenant-access-relay/internal/governance"
	"github.com/dagbolade/tenant-access-relay/internal/server"
	"github.com/dagbolade/tenant-access-relay/internal/slackbot"
	"github.com/dagbolade/tenant-access-relay/internal/workflow"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	setupLogger()

	log.Info().Msg("starting tenant access relay")

	ctx, cancel := setupSignalHandler()
	defer cancel()

	if err := run(ctx); err != nil {
		log.Fatal().Err(err).Msg("application error")
	}

	log.Info().Msg("relay stopped successfully")
}

func run(ctx context.Context) error {
	cfg := server.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	authClient := initAuthClient(cfg.Auth)
	slackClient := initSlackClient(cfg.Slack)
	governanceClient := initGovernanceClient(cfg.Governance)

	wf := workflow.New(slackClient, governanceClient)
	srv := server.New(cfg, authClient, wf, slackClient)

	return runServer(ctx, srv)
}

func initAuthClient(cfg server.AuthConfig) *auth.Client {
	log.Info().Str("url", cfg.URL).Strs("admin_roles", cfg.AdminRoles).Msg("initializing auth client")
	return auth.NewClient(cfg.URL, cfg.RequiredRoles, cfg.AdminRoles)
}

func initSlackClient(cfg server.SlackConfig) *slackbot.Client {
	log.Info().Str("channel", cfg.ChannelID).Msg("initializing slack client")
	return slackbot.New(cfg.BotToken, cfg.SigningSecret, cfg.ChannelID)
}

func initGovernanceClient(cfg server.GovernanceConfig) *governance.Client {
	log.Info().Str("url", cfg.BaseURL).Msg("initializing governance client")
	return governance.NewClient(cfg.BaseURL, cfg.Timeout)
}

func setupLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	level, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

func setupSignalHandler() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")
		cancel()
	}()

	return ctx, cancel
}

func runServer(ctx context.Context, srv *server.Server) error {
	errChan := make(chan error, 1)

	go func() {
		if err := srv.Start(); err != nil {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
