// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/jetlog/internal/logging"
	"github.com/tomtom215/jetlog/internal/models"
)

// Error codes for API responses
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeBadRequest        = "BAD_REQUEST"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeReferenceData     = "REFERENCE_DATA_ERROR"
	ErrCodeExternalDisabled  = "EXTERNAL_APIS_DISABLED"
	ErrCodeExternalService   = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTooManyRequests   = "RATE_LIMIT_EXCEEDED"
	ErrCodeDatabaseError     = "DATABASE_ERROR"
	ErrCodeInternalError     = "INTERNAL_ERROR"
	ErrCodeMethodNotAllowed  = "METHOD_NOT_ALLOWED"
	ErrCodeAccountLocked     = "ACCOUNT_LOCKED"
	ErrCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
)

// ResponseWriter writes the JSON envelope for one request.
type ResponseWriter struct {
	w         http.ResponseWriter
	r         *http.Request
	startTime time.Time
}

// NewResponseWriter creates a new response writer. The query time in the
// envelope is measured from this call.
func NewResponseWriter(w http.ResponseWriter, r *http.Request) *ResponseWriter {
	return &ResponseWriter{
		w:         w,
		r:         r,
		startTime: time.Now(),
	}
}

// Success writes a 200 response with data.
func (rw *ResponseWriter) Success(data interface{}) {
	rw.write(http.StatusOK, data, false)
}

// Cached writes a 200 response flagged as served from cache.
func (rw *ResponseWriter) Cached(data interface{}, cached bool) {
	rw.write(http.StatusOK, data, cached)
}

// Created writes a 201 Created response.
func (rw *ResponseWriter) Created(data interface{}) {
	rw.write(http.StatusCreated, data, false)
}

func (rw *ResponseWriter) write(status int, data interface{}, cached bool) {
	writeJSON(rw.w, status, &models.APIResponse{
		Success: true,
		Data:    data,
		Meta: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(rw.startTime).Milliseconds(),
			Cached:      cached,
		},
	})
}

// Error writes an error response with the given status code.
func (rw *ResponseWriter) Error(statusCode int, code, message string) {
	rw.ErrorWithDetails(statusCode, code, message, nil)
}

// ErrorWithDetails writes an error response with additional details.
func (rw *ResponseWriter) ErrorWithDetails(statusCode int, code, message string, details map[string]interface{}) {
	writeJSON(rw.w, statusCode, &models.APIResponse{
		Success: false,
		Error: &models.APIError{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: logging.RequestIDFromContext(rw.r.Context()),
		},
		Meta: models.Metadata{Timestamp: time.Now().UTC()},
	})
}

// BadRequest writes a 400 Bad Request error.
func (rw *ResponseWriter) BadRequest(message string) {
	rw.Error(http.StatusBadRequest, ErrCodeBadRequest, message)
}

// Unauthorized writes a 401 Unauthorized error.
func (rw *ResponseWriter) Unauthorized(message string) {
	rw.Error(http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// NotFound writes a 404 Not Found error.
func (rw *ResponseWriter) NotFound(message string) {
	rw.Error(http.StatusNotFound, ErrCodeNotFound, message)
}

// InternalError writes a 500 Internal Server Error.
func (rw *ResponseWriter) InternalError(message string) {
	rw.Error(http.StatusInternalServerError, ErrCodeInternalError, message)
}

// FromError maps err onto a status and code and writes it. Server side
// failures are logged with the request context.
func (rw *ResponseWriter) FromError(err error) {
	m := classifyError(err)
	if m.status >= http.StatusInternalServerError {
		logging.Ctx(rw.r.Context()).Error().
			Err(err).
			Str("code", m.code).
			Str("path", sanitizeLogValue(rw.r.URL.Path)).
			Msg("Request failed")
	}
	rw.ErrorWithDetails(m.status, m.code, m.message, m.details)
}

// writeJSON writes JSON response with proper headers.
func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(statusCode)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// WriteError is a convenience function for writing error responses.
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string) {
	NewResponseWriter(w, r).Error(statusCode, code, message)
}
