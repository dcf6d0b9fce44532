// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package api

import (
	"net/http"
)

// SyncFR24 pushes the caller's unsynced flights to myFlightradar24.
// Per-flight failures are listed in the result; a rejected login is 502.
func (h *Handler) SyncFR24(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	res, err := h.fr24.Sync(r.Context(), principal(r))
	if err != nil {
		rw.FromError(err)
		return
	}
	rw.Success(res)
}
