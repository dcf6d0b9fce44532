// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/jetlog/internal/api"
	"github.com/tomtom215/jetlog/internal/auth"
	"github.com/tomtom215/jetlog/internal/authz"
	"github.com/tomtom215/jetlog/internal/config"
	"github.com/tomtom215/jetlog/internal/database"
	"github.com/tomtom215/jetlog/internal/logging"
	"github.com/tomtom215/jetlog/internal/statistics"
	"github.com/tomtom215/jetlog/internal/supervisor"
	"github.com/tomtom215/jetlog/internal/supervisor/services"
	ws "github.com/tomtom215/jetlog/internal/websocket"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const (
	checkpointInterval = 5 * time.Minute
	shutdownTimeout    = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Jetlog stopped with an error")
	}
}

//nolint:gocyclo // sequential setup steps
func run() error {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	api.Version = version

	logging.Info().
		Str("version", version).
		Str("db_path", cfg.Database.FilePath()).
		Str("auth_mode", cfg.Security.AuthMode).
		Bool("external_apis", cfg.External.Enabled).
		Msg("Starting Jetlog")

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	enforcer, err := authz.NewEnforcer(authz.DefaultEnforcerConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize authorization: %w", err)
	}
	defer enforcer.Close()
	db.SetAuthorizer(enforcer)

	stats := statistics.NewService(db, cfg.Statistics.CacheTTL)
	defer stats.Close()
	db.SetChangeListener(stats.Invalidate)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Password login only exists in jwt mode.
	var (
		jwtManager  *auth.JWTManager
		authService *auth.Service
		lockout     *auth.LockoutManager
	)
	if cfg.Security.AuthMode == auth.ModeJWT {
		if err := auth.EnsureAdmin(ctx, db, &cfg.Security); err != nil {
			return err
		}
		if jwtManager, err = auth.NewJWTManager(&cfg.Security); err != nil {
			return fmt.Errorf("failed to initialize JWT manager: %w", err)
		}
		lockout = auth.NewLockoutManager(auth.DefaultLockoutConfig())
		authService = auth.NewService(db, jwtManager, lockout)
	}

	authMiddleware, err := auth.NewMiddleware(&cfg.Security, jwtManager, db)
	if err != nil {
		return fmt.Errorf("failed to initialize authentication: %w", err)
	}
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	wsHub := ws.NewHub()
	handler := api.NewHandler(db, cfg, authService, stats, wsHub)
	router := api.NewRouter(handler, authMiddleware, api.ChiMiddlewareConfigFromSecurity(&cfg.Security))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	// Streamed passes outlive the request timeout, so there is no write deadline.
	server := &http.Server{
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  shutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create supervisor tree: %w", err)
	}

	tree.AddDataService(services.NewCheckpointService(db, checkpointInterval))
	tree.AddMessagingService(services.NewWebSocketHubService(wsHub))
	if lockout != nil {
		tree.AddAPIService(lockout)
	}
	tree.AddAPIService(services.NewHTTPServerService(server, addr, shutdownTimeout))
	logging.Info().Str("addr", addr).Msg("HTTP server service added")

	errCh := tree.ServeBackground(ctx)

	signaled := false
	select {
	case <-ctx.Done():
		signaled = true
		logging.Info().Msg("Shutdown signal received, waiting for services to stop")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}
	stop()

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}

	if !signaled {
		return errors.New("supervisor tree stopped without a shutdown signal")
	}
	logging.Info().Msg("Jetlog stopped gracefully")
	return nil
}
