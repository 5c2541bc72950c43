// Lowisko - Map-Centric Fishing Log and Lake Analytics
// Copyright 2026 Lowisko Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lowisko/lowisko

// Package api provides the HTTP handlers and Chi routing for the Lowisko
// backend: authentication, fish catch records, statistics and the live
// websocket feed.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/lowisko/lowisko/internal/auth"
	"github.com/lowisko/lowisko/internal/cache"
	"github.com/lowisko/lowisko/internal/config"
	"github.com/lowisko/lowisko/internal/database"
	"github.com/lowisko/lowisko/internal/logging"
	"github.com/lowisko/lowisko/internal/models"
	ws "github.com/lowisko/lowisko/internal/websocket"
)

// Version is the reported application version, set at build time
var Version = "dev"

// Store is the persistence surface the handlers need. Implemented by
// database.Store in production and by fakes in tests.
type Store interface {
	GetUserByEmail(ctx context.Context, email string) (*database.UserRecord, error)
	GetUserByID(ctx context.Context, id int64) (*database.UserRecord, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, username, email, passwordHash string) (*database.UserRecord, error)
	TouchLastLogin(ctx context.Context, id int64) error

	CreateFishCatch(ctx context.Context, userID *int64, req models.CreateFishCatch) (*models.FishCatch, error)
	ListFishCatches(ctx context.Context, lakeID string) ([]models.FishCatch, error)

	UserStats(ctx context.Context, userID int64) (*models.UserStats, error)
	PlatformStats(ctx context.Context) (*models.PlatformStats, error)

	Ping(ctx context.Context) error
}

// Handler holds the dependencies shared by all HTTP handlers
type Handler struct {
	store      Store
	jwtManager *auth.JWTManager
	hub        *ws.Hub
	cache      *cache.Cache
	cfg        *config.Config
	startTime  time.Time
}

// NewHandler creates the API handler
func NewHandler(store Store, jwtManager *auth.JWTManager, hub *ws.Hub, statsCache *cache.Cache, cfg *config.Config) *Handler {
	return &Handler{
		store:      store,
		jwtManager: jwtManager,
		hub:        hub,
		cache:      statsCache,
		cfg:        cfg,
		startTime:  time.Now(),
	}
}

// respondJSON writes a JSON response with the given status
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error().Err(err).Msg("Failed to encode response")
	}
}

// respondError writes the flat {"error": msg} shape used by auth and
// stats endpoints.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, models.ErrorResponse{Error: message})
}

// decodeJSON decodes a request body, limited to 1MB
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(dst)
}

// Health reports service and database status
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dbOK := h.store.Ping(r.Context()) == nil

	status := "ok"
	code := http.StatusOK
	if !dbOK {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	respondJSON(w, code, models.HealthStatus{
		Status:            status,
		Version:           Version,
		DatabaseConnected: dbOK,
		Uptime:            time.Since(h.startTime).Seconds(),
	})
}

// upgrader configures the websocket handshake. Origins are checked
// against the configured CORS origins; an empty list allows any origin
// for development.
func (h *Handler) upgrader() websocket.Upgrader {
	origins := h.cfg.Security.CORSOrigins
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(origins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range origins {
				if allowed == "*" || allowed == origin {
					return true
				}
			}
			return false
		},
	}
}

// WebSocket upgrades the connection and registers the client with the hub
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := h.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := ws.NewClient(h.hub, conn)
	h.hub.Register <- client
	client.Start()
}
