// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package api

import (
	"context"
	"time"

	"github.com/tomtom215/jetlog/internal/auth"
	"github.com/tomtom215/jetlog/internal/config"
	"github.com/tomtom215/jetlog/internal/connections"
	"github.com/tomtom215/jetlog/internal/database"
	"github.com/tomtom215/jetlog/internal/models"
	"github.com/tomtom215/jetlog/internal/progress"
	"github.com/tomtom215/jetlog/internal/statistics"
	syncpkg "github.com/tomtom215/jetlog/internal/sync"
	ws "github.com/tomtom215/jetlog/internal/websocket"
)

// Enricher runs the two enrichment passes.
type Enricher interface {
	AirlinesFromCallsigns(ctx context.Context, username string, sink progress.Sink) (syncpkg.Result, error)
	EnrichDetails(ctx context.Context, username string, sink progress.Sink) (syncpkg.Result, error)
}

// FR24Syncer pushes unsynced flights to myFlightradar24.
type FR24Syncer interface {
	Sync(ctx context.Context, actor models.Principal) (*models.FR24SyncResult, error)
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across files by route group:
//   - handlers_auth.go: login and the current user
//   - handlers_flights.go: flight CRUD, distance and duration
//   - handlers_passes.go: the streamed connection and enrichment passes
//   - handlers_statistics.go: statistics snapshots
//   - handlers_reference.go: airport and airline lookups
//   - handlers_fr24.go: myFlightradar24 sync
//   - handlers_export.go: file exports
//   - handlers_websocket.go: the progress mirror socket
//   - handlers_health.go: health and client config
type Handler struct {
	db        *database.DB
	config    *config.Config
	auth      *auth.Service
	stats     *statistics.Service
	engine    *connections.Engine
	enricher  Enricher
	fr24      FR24Syncer
	wsHub     *ws.Hub
	startTime time.Time
}

// NewHandler creates the API handler. The connection engine, enricher and
// FR24 syncer are built over db from cfg. wsHub may be nil, in which case
// passes stream over SSE only.
//
// Example:
//
//	handler := api.NewHandler(db, cfg, authService, statsService, wsHub)
//	router := api.NewRouter(handler, authMiddleware, cfg)
//	http.ListenAndServe(":3000", router.SetupChi())
func NewHandler(db *database.DB, cfg *config.Config, authService *auth.Service, stats *statistics.Service, wsHub *ws.Hub) *Handler {
	return &Handler{
		db:        db,
		config:    cfg,
		auth:      authService,
		stats:     stats,
		engine:    connections.NewEngine(db),
		enricher:  syncpkg.NewEnricher(db, &cfg.External),
		fr24:      syncpkg.NewSyncer(db, &cfg.External),
		wsHub:     wsHub,
		startTime: time.Now(),
	}
}

// progressSink fans a pass out to the SSE response and, when a hub is
// running, the caller's sockets.
func (h *Handler) progressSink(primary progress.Sink, username, stream string) progress.Sink {
	if h.wsHub == nil {
		return primary
	}
	return progress.NewMulti(primary, h.wsHub.Mirror(username, stream))
}
