// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/jetlog/internal/models"
	"github.com/tomtom215/jetlog/internal/progress"
)

// errStreamingUnsupported means the response writer cannot flush.
var errStreamingUnsupported = errors.New("streaming unsupported")

// sseWriter frames progress events as server-sent events, one flush per
// event. It stops accepting events once the client has gone.
type sseWriter struct {
	ctx     context.Context
	w       http.ResponseWriter
	flusher http.Flusher
}

var _ progress.Sink = (*sseWriter)(nil)

// newSSEWriter writes the event-stream headers. Nothing is written when the
// writer cannot flush, so the caller may still send a JSON error.
func newSSEWriter(w http.ResponseWriter, r *http.Request) (*sseWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errStreamingUnsupported
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &sseWriter{ctx: r.Context(), w: w, flusher: flusher}, nil
}

// Emit writes one "data: <json>" frame.
func (s *sseWriter) Emit(ev models.ProgressEvent) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode progress event: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("failed to write progress event: %w", err)
	}
	s.flusher.Flush()
	return nil
}
