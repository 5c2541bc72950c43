// Lowisko - Map-Centric Fishing Log and Lake Analytics
// Copyright 2026 Lowisko Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lowisko/lowisko

// Package main is the entry point for the Lowisko server.
//
// Lowisko is a map-centric fishing log: anglers browse lakes on an
// interactive map, record catches, and follow per-user and platform
// statistics.
//
// The server initializes components in the following order:
//
//  1. Configuration: layered load from defaults, config file and
//     environment variables (Koanf v2)
//  2. Database: PostgreSQL connection pool with schema migration
//  3. WebSocket hub: real-time catch and stats broadcasts
//  4. Authentication: JWT token manager
//  5. HTTP server: REST API under /api plus Prometheus /metrics
//
// All long-running components run under a suture supervisor tree and
// shut down gracefully on SIGINT and SIGTERM.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (DATABASE_URL, JWT_SECRET, ...)
//   - Config file (config.yaml)
//   - Built-in defaults
//
// Required settings:
//   - DATABASE_URL: PostgreSQL connection string
//   - JWT_SECRET: 32+ character secret for token signing
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lowisko/lowisko/internal/api"
	"github.com/lowisko/lowisko/internal/auth"
	"github.com/lowisko/lowisko/internal/cache"
	"github.com/lowisko/lowisko/internal/config"
	"github.com/lowisko/lowisko/internal/database"
	"github.com/lowisko/lowisko/internal/logging"
	"github.com/lowisko/lowisko/internal/supervisor"
	"github.com/lowisko/lowisko/internal/supervisor/services"
	ws "github.com/lowisko/lowisko/internal/websocket"
)

const statsCacheTTL = 60 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Int("port", cfg.Server.Port).
		Msg("Starting Lowisko")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(ctx, &cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()
	logging.Info().Msg("Database initialized")

	if cfg.Database.SeedMockData {
		logging.Info().Msg("Mock data seeding enabled (SEED_MOCK_DATA=true)")
		if err := db.SeedMockData(ctx); err != nil {
			logging.Fatal().Err(err).Msg("Failed to seed mock data")
		}
	}

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
	}
	logging.Info().Msg("JWT authentication enabled")

	if len(cfg.Security.CORSOrigins) == 1 && cfg.Security.CORSOrigins[0] == "*" && cfg.Server.Environment != "development" {
		logging.Warn().Msg("CORS is configured with a wildcard origin; set CORS_ORIGINS for production")
	}

	wsHub := ws.NewHub()
	statsCache := cache.New(statsCacheTTL)
	handler := api.NewHandler(db, jwtManager, wsHub, statsCache, cfg)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler.NewRouter(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// The slog adapter bridges zerolog to sutureslog.
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())

	tree.AddDataService(services.NewCacheJanitorService(statsCache, 5*time.Minute))
	tree.AddMessagingService(services.NewWebSocketHubService(wsHub))
	tree.AddMessagingService(services.NewStatsBroadcastService(db, wsHub, 30*time.Second))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Application stopped gracefully")
}
