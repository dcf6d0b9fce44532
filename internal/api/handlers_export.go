// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/jetlog/internal/export"
	"github.com/tomtom215/jetlog/internal/logging"
)

// Export renders all of the caller's flights in the format named by the
// route and sends it as an attachment.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	name := chi.URLParam(r, "format")
	format, ok := export.Lookup(name)
	if !ok {
		rw.ErrorWithDetails(http.StatusNotFound, ErrCodeUnsupportedFormat,
			fmt.Sprintf("Unknown export format %q", sanitizeLogValue(name)),
			map[string]interface{}{"formats": strings.Join(export.Names(), ",")})
		return
	}

	q := exportQuery()
	flights, err := h.db.ListFlights(r.Context(), principal(r), q, true)
	if err != nil {
		rw.FromError(err)
		return
	}

	var buf bytes.Buffer
	if err := format.Write(&buf, flights); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("format", format.Name).Msg("Export failed")
		rw.InternalError("Failed to render export")
		return
	}

	w.Header().Set("Content-Type", format.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to write export")
		return
	}
	logging.Ctx(r.Context()).Info().
		Str("format", format.Name).
		Int("flights", len(flights)).
		Msg("Flights exported")
}
