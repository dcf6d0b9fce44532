// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package api

import (
	"net/http"
)

// Statistics returns the snapshot for the caller, or for username when the
// caller may read that user's flights.
func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req, err := parseStatisticsRequest(r)
	if err != nil {
		rw.FromError(err)
		return
	}

	p := principal(r)
	username := p.Username
	if req.Username != "" && req.Username != p.Username {
		if err := h.db.AuthorizeRead(r.Context(), p, req.Username); err != nil {
			rw.FromError(err)
			return
		}
		username = req.Username
	}

	snap, cached, err := h.stats.Get(r.Context(), username, req.Start, req.End, req.Metric)
	if err != nil {
		rw.FromError(err)
		return
	}
	rw.Cached(snap, cached)
}
