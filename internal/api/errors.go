// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/jetlog/internal/auth"
	"github.com/tomtom215/jetlog/internal/database"
	"github.com/tomtom215/jetlog/internal/flighttime"
	syncpkg "github.com/tomtom215/jetlog/internal/sync"
	"github.com/tomtom215/jetlog/internal/validation"
)

// badRequestError is a malformed parameter or body.
type badRequestError struct {
	msg string
}

func (e *badRequestError) Error() string { return e.msg }

func badRequest(msg string) error {
	return &badRequestError{msg: msg}
}

type errorMapping struct {
	status  int
	code    string
	message string
	details map[string]interface{}
}

// classifyError maps the error taxonomy onto HTTP. Unclassified errors come
// from the store.
func classifyError(err error) errorMapping {
	var (
		breq    *badRequestError
		verr    *validation.RequestValidationError
		lockErr *auth.LockoutError
	)

	switch {
	case errors.As(err, &verr):
		apiErr := verr.ToAPIError()
		return errorMapping{http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details}
	case errors.As(err, &breq):
		return errorMapping{http.StatusBadRequest, ErrCodeBadRequest, breq.msg, nil}
	case errors.As(err, &lockErr):
		return errorMapping{http.StatusTooManyRequests, ErrCodeAccountLocked, lockErr.Error(),
			map[string]interface{}{"retry_after_seconds": int(lockErr.Remaining.Seconds())}}
	case errors.Is(err, auth.ErrInvalidCredentials):
		return errorMapping{http.StatusUnauthorized, ErrCodeUnauthorized, "Invalid username or password", nil}
	case errors.Is(err, database.ErrInvalidInput), errors.Is(err, flighttime.ErrInvalidTime):
		return errorMapping{http.StatusBadRequest, ErrCodeValidation, err.Error(), nil}
	case errors.Is(err, database.ErrForbidden):
		return errorMapping{http.StatusForbidden, ErrCodeForbidden, "You are not allowed to access these flights", nil}
	case errors.Is(err, database.ErrNotFound):
		return errorMapping{http.StatusNotFound, ErrCodeNotFound, "Not found", nil}
	case errors.Is(err, database.ErrAirportNotFound), errors.Is(err, flighttime.ErrUnknownTimezone):
		return errorMapping{http.StatusUnprocessableEntity, ErrCodeReferenceData, err.Error(), nil}
	case errors.Is(err, syncpkg.ErrExternalDisabled), errors.Is(err, syncpkg.ErrFR24NotConfigured):
		return errorMapping{http.StatusBadRequest, ErrCodeExternalDisabled, err.Error(), nil}
	case errors.Is(err, syncpkg.ErrLoginFailed):
		return errorMapping{http.StatusBadGateway, ErrCodeExternalService, err.Error(), nil}
	default:
		return errorMapping{http.StatusInternalServerError, ErrCodeDatabaseError, "Database operation failed", nil}
	}
}
