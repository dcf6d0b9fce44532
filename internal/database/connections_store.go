// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/jetlog/internal/connections"
	"github.com/tomtom215/jetlog/internal/models"
)

// DB is the persistence behind connection inference.
var _ connections.Store = (*DB)(nil)

// successorWindow bounds the date of a plausible next leg relative to the
// current flight, in days.
const (
	successorDaysBefore = 1
	successorDaysAfter  = 2
)

// UnlinkedFlights returns the user's flights with no connection, oldest first.
func (db *DB) UnlinkedFlights(ctx context.Context, username string) ([]models.Flight, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	qb := newQueryBuilder(flightSelect).
		addFilter("f.username = ?", username).
		addFilter("f.connection IS NULL")
	flights, err := db.queryFlights(ctx, qb, "ORDER BY f.date, f.departure_time, f.id")
	if err != nil {
		return nil, fmt.Errorf("failed to list unlinked flights: %w", err)
	}
	return flights, nil
}

// PlausibleSuccessors returns the ids of the owner's flights that may
// continue f. Dates are compared as YYYY-MM-DD strings.
func (db *DB) PlausibleSuccessors(ctx context.Context, f models.Flight) ([]int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	day, err := time.Parse(time.DateOnly, f.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: flight %d has date %q", ErrInvalidInput, f.ID, f.Date)
	}
	from := day.AddDate(0, 0, -successorDaysBefore).Format(time.DateOnly)
	to := day.AddDate(0, 0, successorDaysAfter).Format(time.DateOnly)

	ids, err := queryAndScan(ctx, db.conn, `
		SELECT id FROM flights
		WHERE username = ?
		  AND UPPER(origin) = UPPER(?)
		  AND UPPER(destination) != UPPER(?)
		  AND date BETWEEN ? AND ?
		  AND id != ?
		ORDER BY id`,
		[]interface{}{f.Username, f.Destination, f.Origin, from, to, f.ID},
		func(rows *sql.Rows) (int64, error) {
			var id int64
			err := rows.Scan(&id)
			return id, err
		})
	if err != nil {
		return nil, fmt.Errorf("failed to find successors of flight %d: %w", f.ID, err)
	}
	return ids, nil
}

// SetConnection links flight id to connID.
func (db *DB) SetConnection(ctx context.Context, id, connID int64) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var owner string
	err := db.conn.QueryRowContext(ctx,
		`UPDATE flights SET connection = ? WHERE id = ? RETURNING username`, connID, id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to link flight %d to %d: %w", id, connID, err)
	}

	db.flightsChanged(owner)
	return nil
}
