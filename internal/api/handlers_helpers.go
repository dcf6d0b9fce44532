// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/jetlog/internal/auth"
	"github.com/tomtom215/jetlog/internal/models"
)

// maxBodyBytes bounds JSON request bodies. Bulk imports are the largest.
const maxBodyBytes = 8 << 20

// sanitizeLogValue removes control characters from strings to prevent log injection attacks.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// principal returns the authenticated caller. The auth middleware runs on
// every route that calls this.
func principal(r *http.Request) models.Principal {
	p, _ := auth.PrincipalFromContext(r.Context())
	return p
}

// decodeJSONBody decodes a size-limited JSON body into v.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return badRequest("Request body is empty")
		case errors.As(err, &tooLarge):
			return badRequest("Request body too large")
		default:
			return badRequest("Invalid JSON body: " + err.Error())
		}
	}
	return nil
}

// getIntParam extracts an integer query parameter with a default value.
// A present but malformed value is an error.
func getIntParam(r *http.Request, key string, defaultValue int) (int, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, badRequest(fmt.Sprintf("%s must be an integer", key))
	}
	return n, nil
}

// getBoolParam extracts a boolean query parameter. Accepts the forms
// strconv.ParseBool does.
func getBoolParam(r *http.Request, key string, defaultValue bool) (bool, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(strings.ToLower(value))
	if err != nil {
		return false, badRequest(fmt.Sprintf("%s must be a boolean", key))
	}
	return b, nil
}

// getIDParam reads the required id query parameter.
func getIDParam(r *http.Request) (int64, error) {
	value := r.URL.Query().Get("id")
	if value == "" {
		return 0, badRequest("id is required")
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("id must be a positive integer")
	}
	return id, nil
}
