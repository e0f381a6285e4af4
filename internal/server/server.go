package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dagbolade/tenant-access-relay/internal/auth"
	"github.com/dagbolade/tenant-access-relay/internal/workflow"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
)

// SignatureVerifier authenticates inbound webhook callbacks.
type SignatureVerifier interface {
	VerifyRequest(signature, timestamp string, body []byte) error
}

type Server struct {
	echo   *echo.Echo
	config Config
}

func New(cfg Config, authn auth.Authenticator, wf *workflow.Workflow, verifier SignatureVerifier) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = httpErrorHandler

	s := &Server{
		echo:   e,
		config: cfg,
	}

	s.setupMiddleware()
	s.setupRoutes(authn, wf, verifier)

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	log.Info().Int("port", s.config.Port).Msg("starting HTTP server")

	s.echo.Server.ReadTimeout = time.Duration(s.config.ReadTimeout) * time.Second
	s.echo.Server.WriteTimeout = time.Duration(s.config.WriteTimeout) * time.Second

	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Duration(s.config.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	return nil
}

func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))

	s.echo.Use(middleware.Recover())
}

func (s *Server) setupRoutes(authn auth.Authenticator, wf *workflow.Workflow, verifier SignatureVerifier) {
	requestHandler := NewRequestHandler(wf)
	approvalHandler := NewApprovalHandler(wf)
	slackHandler := NewSlackHandler(verifier, wf)

	// Public endpoints. The webhook authenticates itself by signature.
	s.echo.GET("/health", s.handleHealth)
	s.echo.POST("/slack/interact", slackHandler.Interact)

	// Any authenticated user holding a required role may submit.
	authed := s.echo.Group("/requests", auth.Middleware(authn))
	authed.POST("", requestHandler.Create)
	authed.POST("/", requestHandler.Create)

	// Direct decisions are admin-only, gated before any side effect.
	admin := s.echo.Group("/approvals", auth.Middleware(authn), auth.RequireAdmin())
	admin.POST("/approve", approvalHandler.Approve)
	admin.POST("/deny", approvalHandler.Deny)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
