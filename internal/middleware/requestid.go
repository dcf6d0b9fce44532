// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package middleware

import (
	"context"
	"net/http"
	"regexp"

	"github.com/tomtom215/jetlog/internal/logging"
)

const requestIDHeader = "X-Request-ID"

// upstreamIDPattern bounds what a proxy may hand us as a request id.
var upstreamIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// RequestID assigns every request an id, echoes it in X-Request-ID and
// stores it in the context together with a fresh correlation id. A
// well-formed id from an upstream proxy is kept; anything else is replaced.
func RequestID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if !upstreamIDPattern.MatchString(requestID) {
			requestID = logging.GenerateRequestID()
		}

		w.Header().Set(requestIDHeader, requestID)

		ctx := logging.ContextWithRequestID(r.Context(), requestID)
		ctx = logging.ContextWithNewCorrelationID(ctx)

		next(w, r.WithContext(ctx))
	}
}

// GetRequestID returns the id assigned by RequestID, or "".
func GetRequestID(ctx context.Context) string {
	return logging.RequestIDFromContext(ctx)
}

// AccessLog logs one line per request at debug level, or warn for 5xx.
func AccessLog(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sw := newStatusWriter(w)
		next(sw, r)

		event := logging.Ctx(r.Context()).Debug()
		if sw.statusCode >= http.StatusInternalServerError {
			event = logging.Ctx(r.Context()).Warn()
		}
		event.
			Str("method", r.Method).
			Str("endpoint", endpointLabel(r)).
			Int("status", sw.statusCode).
			Msg("request")
	}
}
