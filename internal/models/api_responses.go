// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package models

import "time"

// APIResponse is the envelope returned by every JSON endpoint.
//
// Example successful response:
//
//	{
//	  "success": true,
//	  "data": 42,
//	  "meta": {"timestamp": "2026-01-02T12:00:00Z", "query_time_ms": 3}
//	}
//
// Example error response:
//
//	{
//	  "success": false,
//	  "error": {
//	    "code": "FORBIDDEN",
//	    "message": "Only admins can modify other users' flights",
//	    "request_id": "6f1c..."
//	  },
//	  "meta": {"timestamp": "2026-01-02T12:00:00Z"}
//	}
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    Metadata    `json:"meta"`
}

// Metadata carries response timing.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError is a machine-readable error.
//
// Codes: VALIDATION_ERROR, BAD_REQUEST, UNAUTHORIZED, FORBIDDEN, NOT_FOUND,
// REFERENCE_DATA_ERROR, EXTERNAL_APIS_DISABLED, EXTERNAL_SERVICE_ERROR,
// RATE_LIMIT_EXCEEDED, DATABASE_ERROR, INTERNAL_ERROR.
type APIError struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// ClientConfig is served at /config for the web client.
type ClientConfig struct {
	BaseURL            string `json:"BASE_URL"`
	EnableExternalAPIs bool   `json:"ENABLE_EXTERNAL_APIS"`
	FR24Configured     bool   `json:"FR24_CONFIGURED"`
}

// HealthStatus is the /health response.
type HealthStatus struct {
	Status            string  `json:"status"`
	Version           string  `json:"version"`
	DatabaseConnected bool    `json:"database_connected"`
	Uptime            float64 `json:"uptime_seconds"`
}
