// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/jetlog/internal/logging"
	"github.com/tomtom215/jetlog/internal/metrics"
	"github.com/tomtom215/jetlog/internal/progress"
	syncpkg "github.com/tomtom215/jetlog/internal/sync"
	ws "github.com/tomtom215/jetlog/internal/websocket"
)

// passFunc runs one streamed pass for username.
type passFunc func(ctx context.Context, username string, sink progress.Sink) error

// streamPass runs pass with its progress written as server-sent events and
// mirrored to the caller's sockets. Once the stream has started, every
// outcome is reported in-band as an error event.
func (h *Handler) streamPass(w http.ResponseWriter, r *http.Request, stream string, pass passFunc) {
	p := principal(r)
	logger := logging.Ctx(r.Context()).With().Str("stream", stream).Logger()

	sse, err := newSSEWriter(w, r)
	if err != nil {
		NewResponseWriter(w, r).InternalError("Streaming is not supported by this connection")
		return
	}

	err = pass(r.Context(), p.Username, h.progressSink(sse, p.Username, stream))
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.Info().Msg("Client left before the pass finished")
	default:
		logger.Warn().Err(err).Msg("Pass ended with an error")
	}
}

// requireExternal writes 400 when outbound calls are switched off.
func (h *Handler) requireExternal(w http.ResponseWriter, r *http.Request) bool {
	if h.config.External.Enabled {
		return true
	}
	NewResponseWriter(w, r).FromError(syncpkg.ErrExternalDisabled)
	return false
}

// InferConnections streams the connection inference pass.
func (h *Handler) InferConnections(w http.ResponseWriter, r *http.Request) {
	h.streamPass(w, r, ws.StreamConnections, func(ctx context.Context, username string, sink progress.Sink) error {
		began := time.Now()
		res, err := h.engine.Infer(ctx, username, sink)
		metrics.RecordPass(metrics.PassConnections, time.Since(began), res.Updated, res.Skipped, 0, err)
		return err
	})
}

// AirlinesFromCallsigns streams the adsbdb airline enrichment pass.
func (h *Handler) AirlinesFromCallsigns(w http.ResponseWriter, r *http.Request) {
	if !h.requireExternal(w, r) {
		return
	}
	h.streamPass(w, r, ws.StreamAirlines, func(ctx context.Context, username string, sink progress.Sink) error {
		_, err := h.enricher.AirlinesFromCallsigns(ctx, username, sink)
		return err
	})
}

// EnrichFlights streams the FR24 and Flightera detail enrichment pass.
func (h *Handler) EnrichFlights(w http.ResponseWriter, r *http.Request) {
	if !h.requireExternal(w, r) {
		return
	}
	h.streamPass(w, r, ws.StreamEnrich, func(ctx context.Context, username string, sink progress.Sink) error {
		_, err := h.enricher.EnrichDetails(ctx, username, sink)
		return err
	})
}
