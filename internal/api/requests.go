// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package api

import (
	"net/http"
	"strings"

	"github.com/tomtom215/jetlog/internal/models"
	"github.com/tomtom215/jetlog/internal/validation"
)

// StatisticsRequest holds the /api/statistics query parameters.
type StatisticsRequest struct {
	Username string `json:"username" validate:"omitempty,max=64"`
	Start    string `json:"start" validate:"omitempty,datetime=2006-01-02"`
	End      string `json:"end" validate:"omitempty,datetime=2006-01-02"`
	Metric   bool   `json:"metric"`
}

// DistanceRequest holds the /api/flights/distance query parameters.
type DistanceRequest struct {
	Origin      string `json:"origin" validate:"required,airportcode"`
	Destination string `json:"destination" validate:"required,airportcode"`
}

// DurationRequest holds the /api/flights/duration query parameters. The
// airports are only consulted when Timezones is set.
type DurationRequest struct {
	Date          string `json:"date" validate:"required,datetime=2006-01-02"`
	DepartureTime string `json:"departureTime" validate:"required,hhmm"`
	ArrivalDate   string `json:"arrivalDate" validate:"omitempty,datetime=2006-01-02"`
	ArrivalTime   string `json:"arrivalTime" validate:"required,hhmm"`
	Origin        string `json:"origin" validate:"omitempty,airportcode"`
	Destination   string `json:"destination" validate:"omitempty,airportcode"`
	Timezones     bool   `json:"timezones"`
}

// SearchRequest holds reference data search parameters.
type SearchRequest struct {
	Query string `json:"q" validate:"max=64"`
	Limit int    `json:"limit" validate:"min=1,max=100"`
}

// parseFlightQuery reads the flight listing filters with the listing
// defaults applied.
func parseFlightQuery(r *http.Request) (models.FlightQuery, error) {
	q := models.DefaultFlightQuery()
	values := r.URL.Query()

	q.Username = values.Get("username")
	q.Start = values.Get("start")
	q.End = values.Get("end")
	q.Origin = strings.ToUpper(values.Get("origin"))
	q.Destination = strings.ToUpper(values.Get("destination"))
	if s := values.Get("sort"); s != "" {
		q.Sort = s
	}
	if o := values.Get("order"); o != "" {
		q.Order = strings.ToUpper(o)
	}

	var err error
	if q.Limit, err = getIntParam(r, "limit", q.Limit); err != nil {
		return q, err
	}
	if q.Offset, err = getIntParam(r, "offset", 0); err != nil {
		return q, err
	}

	if verr := validation.ValidateStruct(&q); verr != nil {
		return q, verr
	}
	for _, d := range []struct{ name, value string }{{"start", q.Start}, {"end", q.End}} {
		if d.value == "" {
			continue
		}
		if verr := validation.ValidateVar(d.name, d.value, "datetime=2006-01-02"); verr != nil {
			return q, verr
		}
	}
	return q, nil
}

func parseStatisticsRequest(r *http.Request) (StatisticsRequest, error) {
	values := r.URL.Query()
	req := StatisticsRequest{
		Username: values.Get("username"),
		Start:    values.Get("start"),
		End:      values.Get("end"),
	}
	var err error
	if req.Metric, err = getBoolParam(r, "metric", true); err != nil {
		return req, err
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		return req, verr
	}
	return req, nil
}

func parseDurationRequest(r *http.Request) (DurationRequest, error) {
	values := r.URL.Query()
	req := DurationRequest{
		Date:          values.Get("date"),
		DepartureTime: values.Get("departureTime"),
		ArrivalDate:   values.Get("arrivalDate"),
		ArrivalTime:   values.Get("arrivalTime"),
		Origin:        values.Get("origin"),
		Destination:   values.Get("destination"),
	}
	var err error
	if req.Timezones, err = getBoolParam(r, "timezones", true); err != nil {
		return req, err
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		return req, verr
	}
	if req.Timezones && (req.Origin == "" || req.Destination == "") {
		return req, badRequest("origin and destination are required when timezones is true")
	}
	return req, nil
}

func parseSearchRequest(r *http.Request) (SearchRequest, error) {
	req := SearchRequest{Query: strings.TrimSpace(r.URL.Query().Get("q"))}
	var err error
	if req.Limit, err = getIntParam(r, "limit", 20); err != nil {
		return req, err
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		return req, verr
	}
	return req, nil
}

// ProfileRequest updates the caller's profile settings.
type ProfileRequest struct {
	PublicProfile *bool `json:"publicProfile" validate:"required"`
}

// exportQuery selects every flight of the caller, newest first.
func exportQuery() models.FlightQuery {
	q := models.DefaultFlightQuery()
	q.Limit = -1
	return q
}
