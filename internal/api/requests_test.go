// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseFlightQuery(t *testing.T) {
	t.Parallel()

	q, err := parseFlightQuery(httptest.NewRequest(http.MethodGet,
		"/api/flights?origin=kjfk&order=asc&sort=distance&limit=5&offset=10&start=2024-01-01", nil))
	if err != nil {
		t.Fatalf("parseFlightQuery() error = %v", err)
	}
	if q.Origin != "KJFK" || q.Order != "ASC" || q.Sort != "distance" {
		t.Errorf("query = %+v", q)
	}
	if q.Limit != 5 || q.Offset != 10 || q.Start != "2024-01-01" {
		t.Errorf("paging = %d/%d start=%s", q.Limit, q.Offset, q.Start)
	}

	q, err = parseFlightQuery(httptest.NewRequest(http.MethodGet, "/api/flights", nil))
	if err != nil {
		t.Fatalf("defaults error = %v", err)
	}
	if q.Sort != "date" || q.Order != "DESC" || q.Limit != 50 {
		t.Errorf("defaults = %+v", q)
	}

	for _, target := range []string{
		"/api/flights?order=sideways",
		"/api/flights?limit=-2",
		"/api/flights?end=yesterday",
		"/api/flights?offset=x",
	} {
		if _, err := parseFlightQuery(httptest.NewRequest(http.MethodGet, target, nil)); err == nil {
			t.Errorf("%s: error = nil, want rejection", target)
		}
	}
}

func TestParseDurationRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		target  string
		wantErr bool
	}{
		{"zones with airports", "/d?date=2024-01-01&departureTime=08:00&arrivalTime=10:00&origin=JFK&destination=CDG", false},
		{"no zones", "/d?date=2024-01-01&departureTime=08:00&arrivalTime=10:00&timezones=false", false},
		{"zones without airports", "/d?date=2024-01-01&departureTime=08:00&arrivalTime=10:00", true},
		{"bad clock", "/d?date=2024-01-01&departureTime=8am&arrivalTime=10:00&timezones=false", true},
		{"bad flag", "/d?date=2024-01-01&departureTime=08:00&arrivalTime=10:00&timezones=maybe", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := parseDurationRequest(httptest.NewRequest(http.MethodGet, tt.target, nil))
			if (err != nil) != tt.wantErr {
				t.Errorf("parseDurationRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseSearchRequest(t *testing.T) {
	t.Parallel()

	req, err := parseSearchRequest(httptest.NewRequest(http.MethodGet, "/api/airports?q=+rome+", nil))
	if err != nil {
		t.Fatalf("parseSearchRequest() error = %v", err)
	}
	if req.Query != "rome" || req.Limit != 20 {
		t.Errorf("request = %+v, want rome/20", req)
	}

	if _, err := parseSearchRequest(httptest.NewRequest(http.MethodGet, "/api/airports?limit=0", nil)); err == nil {
		t.Error("limit=0 accepted")
	}
}

func TestGetBoolParam(t *testing.T) {
	t.Parallel()

	tests := []struct {
		query   string
		def     bool
		want    bool
		wantErr bool
	}{
		{"", true, true, false},
		{"metric=false", true, false, false},
		{"metric=TRUE", false, true, false},
		{"metric=0", true, false, false},
		{"metric=nah", true, false, true},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
		got, err := getBoolParam(r, "metric", tt.def)
		if (err != nil) != tt.wantErr {
			t.Errorf("%q: error = %v, wantErr %v", tt.query, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("%q: got %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestGetIDParam(t *testing.T) {
	t.Parallel()

	for _, target := range []string{"/", "/?id=abc", "/?id=0", "/?id=-4"} {
		if _, err := getIDParam(httptest.NewRequest(http.MethodGet, target, nil)); err == nil {
			t.Errorf("%s: error = nil", target)
		}
	}
	id, err := getIDParam(httptest.NewRequest(http.MethodGet, "/?id=42", nil))
	if err != nil || id != 42 {
		t.Errorf("getIDParam() = %d, %v, want 42", id, err)
	}
}

func TestDecodeJSONBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"empty", "", "Request body is empty"},
		{"malformed", `{"date": ]`, "Invalid JSON body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var v interface{}
			err := decodeJSONBody(httptest.NewRecorder(), r, &v)
			var breq *badRequestError
			if !errors.As(err, &breq) {
				t.Fatalf("error = %v, want badRequestError", err)
			}
			if !strings.HasPrefix(breq.msg, tt.wantMsg) {
				t.Errorf("message = %q, want prefix %q", breq.msg, tt.wantMsg)
			}
		})
	}
}

func TestSanitizeLogValue(t *testing.T) {
	t.Parallel()

	if got := sanitizeLogValue("a\nb\x7f"); got != `a\x0ab\x7f` {
		t.Errorf("sanitizeLogValue() = %q", got)
	}
}
