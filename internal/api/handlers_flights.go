// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package api

import (
	"fmt"
	"net/http"

	"github.com/tomtom215/jetlog/internal/flighttime"
	"github.com/tomtom215/jetlog/internal/geo"
	"github.com/tomtom215/jetlog/internal/logging"
	"github.com/tomtom215/jetlog/internal/models"
	"github.com/tomtom215/jetlog/internal/validation"
)

// CreateFlight adds one flight and answers 201 with its id.
func (h *Handler) CreateFlight(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	timezones, err := getBoolParam(r, "timezones", true)
	if err != nil {
		rw.FromError(err)
		return
	}

	var f models.Flight
	if err := decodeJSONBody(w, r, &f); err != nil {
		rw.FromError(err)
		return
	}
	if verr := validation.ValidateStruct(&f); verr != nil {
		rw.FromError(verr)
		return
	}

	id, err := h.db.AddFlight(r.Context(), principal(r), f, timezones)
	if err != nil {
		rw.FromError(err)
		return
	}
	logging.Ctx(r.Context()).Debug().Int64("flight_id", id).Msg("Flight added")
	rw.Created(id)
}

// CreateFlights adds a batch of flights. The answer is the id of the last
// flight owned by the caller, or -1.
func (h *Handler) CreateFlights(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	timezones, err := getBoolParam(r, "timezones", true)
	if err != nil {
		rw.FromError(err)
		return
	}

	var flights []models.Flight
	if err := decodeJSONBody(w, r, &flights); err != nil {
		rw.FromError(err)
		return
	}
	if len(flights) == 0 {
		rw.BadRequest("At least one flight is required")
		return
	}
	for i := range flights {
		if verr := validation.ValidateStruct(&flights[i]); verr != nil {
			apiErr := verr.ToAPIError()
			rw.ErrorWithDetails(http.StatusBadRequest, apiErr.Code,
				fmt.Sprintf("flight %d: %s", i, apiErr.Message), apiErr.Details)
			return
		}
	}

	id, err := h.db.AddFlights(r.Context(), principal(r), flights, timezones)
	if err != nil {
		rw.FromError(err)
		return
	}
	logging.Ctx(r.Context()).Info().Int("count", len(flights)).Msg("Flights imported")
	rw.Created(id)
}

// GetFlights returns one flight when id is given, otherwise a filtered
// listing.
func (h *Handler) GetFlights(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	metric, err := getBoolParam(r, "metric", true)
	if err != nil {
		rw.FromError(err)
		return
	}

	if r.URL.Query().Has("id") {
		id, err := getIDParam(r)
		if err != nil {
			rw.FromError(err)
			return
		}
		f, err := h.db.GetFlight(r.Context(), principal(r), id, metric)
		if err != nil {
			rw.FromError(err)
			return
		}
		rw.Success(f)
		return
	}

	q, err := parseFlightQuery(r)
	if err != nil {
		rw.FromError(err)
		return
	}
	flights, err := h.db.ListFlights(r.Context(), principal(r), q, metric)
	if err != nil {
		rw.FromError(err)
		return
	}
	if flights == nil {
		flights = []models.Flight{}
	}
	rw.Success(flights)
}

// UpdateFlight applies a partial update and answers with the id.
func (h *Handler) UpdateFlight(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, err := getIDParam(r)
	if err != nil {
		rw.FromError(err)
		return
	}
	timezones, err := getBoolParam(r, "timezones", true)
	if err != nil {
		rw.FromError(err)
		return
	}

	var patch models.FlightPatch
	if err := decodeJSONBody(w, r, &patch); err != nil {
		rw.FromError(err)
		return
	}
	if verr := validation.ValidateStruct(&patch); verr != nil {
		rw.FromError(verr)
		return
	}

	if err := h.db.UpdateFlight(r.Context(), principal(r), id, patch, timezones); err != nil {
		rw.FromError(err)
		return
	}
	rw.Success(id)
}

// DeleteFlight removes a flight and answers with its id.
func (h *Handler) DeleteFlight(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, err := getIDParam(r)
	if err != nil {
		rw.FromError(err)
		return
	}
	if err := h.db.DeleteFlight(r.Context(), principal(r), id); err != nil {
		rw.FromError(err)
		return
	}
	logging.Ctx(r.Context()).Info().Int64("flight_id", id).Msg("Flight deleted")
	rw.Success(id)
}

// Distance returns the great-circle distance between two airports in km,
// or in miles when metric=false.
func (h *Handler) Distance(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req := DistanceRequest{
		Origin:      r.URL.Query().Get("origin"),
		Destination: r.URL.Query().Get("destination"),
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.FromError(verr)
		return
	}
	metric, err := getBoolParam(r, "metric", true)
	if err != nil {
		rw.FromError(err)
		return
	}

	origin, err := h.db.ResolveAirport(r.Context(), req.Origin)
	if err != nil {
		rw.FromError(err)
		return
	}
	destination, err := h.db.ResolveAirport(r.Context(), req.Destination)
	if err != nil {
		rw.FromError(err)
		return
	}

	km := geo.AirportDistanceKm(origin, destination)
	if !metric {
		rw.Success(geo.ToMiles(km))
		return
	}
	rw.Success(km)
}

// Duration derives a flight duration in minutes from local times, using
// the airports' zones unless timezones=false.
func (h *Handler) Duration(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req, err := parseDurationRequest(r)
	if err != nil {
		rw.FromError(err)
		return
	}

	in := flighttime.DurationInput{
		Date:          req.Date,
		DepartureTime: req.DepartureTime,
		ArrivalDate:   req.ArrivalDate,
		ArrivalTime:   req.ArrivalTime,
		UseTimezones:  req.Timezones,
	}
	if req.Timezones {
		origin, err := h.db.ResolveAirport(r.Context(), req.Origin)
		if err != nil {
			rw.FromError(err)
			return
		}
		destination, err := h.db.ResolveAirport(r.Context(), req.Destination)
		if err != nil {
			rw.FromError(err)
			return
		}
		in.OriginTZ = origin.Timezone
		in.DestinationTZ = destination.Timezone
	}

	minutes, err := flighttime.ComputeDuration(in)
	if err != nil {
		rw.FromError(err)
		return
	}
	rw.Success(minutes)
}
