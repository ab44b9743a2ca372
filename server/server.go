package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/memwallet/memwallet/internal/profile"
	"github.com/memwallet/memwallet/internal/version"
	"github.com/memwallet/memwallet/server/ai"
	apiv1 "github.com/memwallet/memwallet/server/router/api/v1"
	"github.com/memwallet/memwallet/server/runner/embedding"
	"github.com/memwallet/memwallet/store"
)

type Server struct {
	Secret  string
	Profile *profile.Profile
	Store   *store.Store

	echoServer   *echo.Echo
	runnerCancel context.CancelFunc
}

func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	echoServer := echo.New()
	echoServer.Debug = profile.IsDev()
	echoServer.HideBanner = true
	echoServer.HidePort = true

	echoServer.Use(middleware.Recover())
	echoServer.Use(middleware.RequestID())
	echoServer.Use(middleware.CORS())
	echoServer.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logRequest(v)
			return nil
		},
	}))

	s := &Server{
		Secret:     profile.JWTSecret,
		Profile:    profile,
		Store:      store,
		echoServer: echoServer,
	}

	apiV1Service := apiv1.NewAPIV1Service(s.Secret, profile, store)
	apiV1Service.Register(echoServer)

	return s, nil
}

func (s *Server) Start(ctx context.Context) error {
	go s.startBackgroundRunners(ctx)

	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("server listening",
		"address", address,
		"version", version.GetCurrentVersion(s.Profile.Mode),
		"driver", s.Profile.Driver)
	return s.echoServer.Start(address)
}

// startBackgroundRunners launches the embedding backfill when the
// deployment can use it. SQLite wallets have no vector store and skip it.
func (s *Server) startBackgroundRunners(ctx context.Context) {
	if !s.Profile.IsAIEnabled() || s.Profile.Driver != "postgres" {
		return
	}
	provider, err := ai.NewProvider(ai.ConfigFromProfile(s.Profile))
	if err != nil {
		slog.Warn("embedding runner disabled, AI provider unavailable", "error", err)
		return
	}

	runnerCtx, cancel := context.WithCancel(ctx)
	s.runnerCancel = cancel
	embedding.NewRunner(s.Store, provider).Run(runnerCtx)
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if s.runnerCancel != nil {
		s.runnerCancel()
	}
	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}
	slog.Info("memwallet stopped properly")
}

func logRequest(v middleware.RequestLoggerValues) {
	attrs := []any{
		"method", v.Method,
		"uri", v.URI,
		"status", v.Status,
		"latency_ms", v.Latency.Milliseconds(),
		"request_id", v.RequestID,
	}
	if v.Status >= 500 {
		slog.Error("request failed", attrs...)
		return
	}
	slog.Info("request", attrs...)
}
