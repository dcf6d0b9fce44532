// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/jetlog/internal/models"
)

// SearchAirports matches airports by code, name or municipality.
func (h *Handler) SearchAirports(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req, err := parseSearchRequest(r)
	if err != nil {
		rw.FromError(err)
		return
	}
	airports, err := h.db.SearchAirports(r.Context(), req.Query, req.Limit)
	if err != nil {
		rw.FromError(err)
		return
	}
	if airports == nil {
		airports = []models.Airport{}
	}
	rw.Success(airports)
}

// GetAirport looks an airport up by ICAO or IATA code.
func (h *Handler) GetAirport(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	airport, err := h.db.GetAirport(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		rw.FromError(err)
		return
	}
	rw.Success(airport)
}

// SearchAirlines matches airlines by code or name.
func (h *Handler) SearchAirlines(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req, err := parseSearchRequest(r)
	if err != nil {
		rw.FromError(err)
		return
	}
	airlines, err := h.db.SearchAirlines(r.Context(), req.Query, req.Limit)
	if err != nil {
		rw.FromError(err)
		return
	}
	if airlines == nil {
		airlines = []models.Airline{}
	}
	rw.Success(airlines)
}

// GetAirline looks an airline up by ICAO or IATA code.
func (h *Handler) GetAirline(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	airline, err := h.db.GetAirline(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		rw.FromError(err)
		return
	}
	rw.Success(airline)
}
