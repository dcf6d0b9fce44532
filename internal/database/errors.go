// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package database

import (
	"errors"
	"io"

	"github.com/tomtom215/jetlog/internal/logging"
	"github.com/tomtom215/jetlog/internal/models"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the actor may not read or modify a row.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput is returned for requests the store refuses to apply.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAirportNotFound is returned when an airport code resolves to no
	// reference row.
	ErrAirportNotFound = errors.New("airport not found")
)

// Authorizer decides flight access. The store consults it for every
// read and write of another user's rows.
type Authorizer interface {
	CanModify(actor models.Principal, owner string) bool
	CanRead(actor models.Principal, owner string, public bool) bool
}

// OwnerOrAdmin lets owners and admins modify, and anyone read a public profile.
type OwnerOrAdmin struct{}

// CanModify implements Authorizer.
func (OwnerOrAdmin) CanModify(actor models.Principal, owner string) bool {
	return actor.IsAdmin || actor.Username == owner
}

// CanRead implements Authorizer.
func (OwnerOrAdmin) CanRead(actor models.Principal, owner string, public bool) bool {
	return public || actor.IsAdmin || actor.Username == owner
}

// closeWithLog closes a resource and logs any error
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource and explicitly ignores any error
// Use this for cleanup operations in error paths where Close() errors are not actionable
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
