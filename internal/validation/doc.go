// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

// Package validation provides struct validation using go-playground/validator v10.
//
// The package wraps a thread-safe singleton validator with the custom tags
// used by flight requests and translates failures to the VALIDATION_ERROR
// API format.
//
// # Custom Tags
//
//   - airportcode: 3 to 8 letters, digits or dashes (ICAO, IATA or local ident)
//   - hhmm: a 24-hour clock time, "00:00" to "23:59"
//   - seat: window, middle or aisle
//   - aircraftside: left, right or center
//   - ticketclass: private, first, business, economy+ or economy
//   - purpose: leisure, business, crew or other
//
// # Usage
//
//	var f models.Flight
//	if verr := validation.ValidateStruct(&f); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
//	    return
//	}
//
// Query parameters are checked one at a time:
//
//	if verr := validation.ValidateVar("start", start, "omitempty,datetime=2006-01-02"); verr != nil {
//	    ...
//	}
//
// Error messages name fields by their JSON key, so a bad departure time reads
// "departureTime must be a time in HH:MM format".
package validation
