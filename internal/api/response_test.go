// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tomtom215/jetlog/internal/auth"
	"github.com/tomtom215/jetlog/internal/database"
	"github.com/tomtom215/jetlog/internal/flighttime"
	syncpkg "github.com/tomtom215/jetlog/internal/sync"
	"github.com/tomtom215/jetlog/internal/validation"
)

func TestResponseWriter_Success(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	NewResponseWriter(rec, httptest.NewRequest(http.MethodGet, "/", nil)).Cached(map[string]int{"n": 1}, true)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", got)
	}
	resp := decodeEnvelope(t, rec)
	if !resp.Success || !resp.Meta.Cached || resp.Meta.Timestamp.IsZero() {
		t.Errorf("envelope = %+v", resp)
	}
}

func TestResponseWriter_Created(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	NewResponseWriter(rec, httptest.NewRequest(http.MethodPost, "/", nil)).Created(7)
	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
	if got := decodeData[int](t, rec); got != 7 {
		t.Errorf("data = %d, want 7", got)
	}
}

func TestClassifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"bad request", badRequest("nope"), http.StatusBadRequest, ErrCodeBadRequest},
		{"validation", validation.ValidateVar("start", "2024-99-99", "datetime=2006-01-02"), http.StatusBadRequest, ErrCodeValidation},
		{"invalid input", fmt.Errorf("wrap: %w", database.ErrInvalidInput), http.StatusBadRequest, ErrCodeValidation},
		{"invalid time", flighttime.ErrInvalidTime, http.StatusBadRequest, ErrCodeValidation},
		{"credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized, ErrCodeUnauthorized},
		{"locked", &auth.LockoutError{Remaining: 30 * time.Second}, http.StatusTooManyRequests, ErrCodeAccountLocked},
		{"forbidden", database.ErrForbidden, http.StatusForbidden, ErrCodeForbidden},
		{"not found", fmt.Errorf("flight 3: %w", database.ErrNotFound), http.StatusNotFound, ErrCodeNotFound},
		{"unknown airport", database.ErrAirportNotFound, http.StatusUnprocessableEntity, ErrCodeReferenceData},
		{"unknown zone", flighttime.ErrUnknownTimezone, http.StatusUnprocessableEntity, ErrCodeReferenceData},
		{"external disabled", syncpkg.ErrExternalDisabled, http.StatusBadRequest, ErrCodeExternalDisabled},
		{"fr24 not configured", syncpkg.ErrFR24NotConfigured, http.StatusBadRequest, ErrCodeExternalDisabled},
		{"fr24 login", syncpkg.ErrLoginFailed, http.StatusBadGateway, ErrCodeExternalService},
		{"store failure", errors.New("connection reset"), http.StatusInternalServerError, ErrCodeDatabaseError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.err == nil {
				t.Fatal("test error is nil")
			}
			m := classifyError(tt.err)
			if m.status != tt.status || m.code != tt.code {
				t.Errorf("classifyError() = %d %s, want %d %s", m.status, m.code, tt.status, tt.code)
			}
		})
	}
}

func TestFromError_LockoutDetails(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	NewResponseWriter(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)).
		FromError(&auth.LockoutError{Remaining: 90 * time.Second})

	expectError(t, rec, http.StatusTooManyRequests, ErrCodeAccountLocked)
	resp := decodeEnvelope(t, rec)
	if got, ok := resp.Error.Details["retry_after_seconds"].(float64); !ok || got != 90 {
		t.Errorf("retry_after_seconds = %v, want 90", resp.Error.Details["retry_after_seconds"])
	}
}

func TestFromError_HidesStoreDetails(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	NewResponseWriter(rec, httptest.NewRequest(http.MethodGet, "/api/flights", nil)).
		FromError(errors.New("duckdb: IO Error: /var/lib/jetlog/jetlog.duckdb"))

	expectError(t, rec, http.StatusInternalServerError, ErrCodeDatabaseError)
	if resp := decodeEnvelope(t, rec); resp.Error.Message != "Database operation failed" {
		t.Errorf("message = %q", resp.Error.Message)
	}
}
