// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/jetlog/internal/metrics"
	"github.com/tomtom215/jetlog/internal/models"
)

// Version is the build version, set by main.
var Version = "dev"

// Health reports liveness and database connectivity. A failed database
// ping reports degraded with 503.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	dbConnected := h.db != nil && h.db.Ping(r.Context()) == nil
	uptime := time.Since(h.startTime).Seconds()
	metrics.AppUptime.Set(uptime)

	health := models.HealthStatus{
		Status:            "healthy",
		Version:           Version,
		DatabaseConnected: dbConnected,
		Uptime:            uptime,
	}
	if !dbConnected {
		health.Status = "degraded"
		writeJSON(w, http.StatusServiceUnavailable, &models.APIResponse{
			Success: false,
			Data:    health,
			Error: &models.APIError{
				Code:    ErrCodeDatabaseError,
				Message: "Database is not reachable",
			},
			Meta: models.Metadata{Timestamp: time.Now().UTC()},
		})
		return
	}
	rw.Success(health)
}

// HealthLive handles liveness probe requests. It answers 200 while the
// process is up, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// ClientConfig serves the settings the web client needs before login.
func (h *Handler) ClientConfig(w http.ResponseWriter, r *http.Request) {
	ext := h.config.External
	NewResponseWriter(w, r).Success(models.ClientConfig{
		BaseURL:            h.config.Server.BaseURL,
		EnableExternalAPIs: ext.Enabled,
		FR24Configured:     ext.Enabled && ext.FR24.Configured(),
	})
}
