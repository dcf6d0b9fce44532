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
	"strings"

	"github.com/tomtom215/jetlog/internal/models"
)

// CallsignGroup is a flight number shared by flights with no airline.
type CallsignGroup struct {
	FlightNumber string
	Flights      int
}

// FlightBackfill carries values for columns that are still NULL. Nil
// fields are not written.
type FlightBackfill struct {
	Airplane      *string
	TailNumber    *string
	DepartureTime *string
	ArrivalTime   *string
	Duration      *int
}

// Empty reports whether the backfill sets nothing.
func (b FlightBackfill) Empty() bool {
	return b.Airplane == nil && b.TailNumber == nil && b.DepartureTime == nil &&
		b.ArrivalTime == nil && b.Duration == nil
}

// CallsignGroups lists the user's flight numbers whose flights have no
// airline, with the number of such flights.
func (db *DB) CallsignGroups(ctx context.Context, username string) ([]CallsignGroup, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	groups, err := queryAndScan(ctx, db.conn, `
		SELECT flight_number, COUNT(*) FROM flights
		WHERE username = ? AND flight_number IS NOT NULL AND airline IS NULL
		GROUP BY flight_number
		ORDER BY flight_number`,
		[]interface{}{username},
		func(rows *sql.Rows) (CallsignGroup, error) {
			var g CallsignGroup
			err := rows.Scan(&g.FlightNumber, &g.Flights)
			return g, err
		})
	if err != nil {
		return nil, fmt.Errorf("failed to group flights by callsign: %w", err)
	}
	return groups, nil
}

// SetAirlineForCallsign sets the airline of every flight of the user with
// that flight number and no airline yet. It returns the rows updated.
func (db *DB) SetAirlineForCallsign(ctx context.Context, username, flightNumber, airlineICAO string) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	n, err := db.execWithRetry(ctx, `
		UPDATE flights SET airline = ?
		WHERE username = ? AND flight_number = ? AND airline IS NULL`,
		strings.ToUpper(airlineICAO), username, flightNumber)
	if err != nil {
		return 0, fmt.Errorf("failed to set airline for %s: %w", flightNumber, err)
	}
	if n > 0 {
		db.flightsChanged(username)
	}
	return n, nil
}

// EnrichmentCandidates returns the user's flights with a flight number and
// at least one missing detail, ordered by flight number then date.
func (db *DB) EnrichmentCandidates(ctx context.Context, username string) ([]models.Flight, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	qb := newQueryBuilder(flightSelect).
		addFilter("f.username = ?", username).
		addFilter("f.flight_number IS NOT NULL").
		addFilter("(f.airplane IS NULL OR f.tail_number IS NULL OR f.departure_time IS NULL OR f.arrival_time IS NULL OR f.duration IS NULL)")
	flights, err := db.queryFlights(ctx, qb, "ORDER BY f.flight_number, f.date, f.id")
	if err != nil {
		return nil, fmt.Errorf("failed to list enrichment candidates: %w", err)
	}
	return flights, nil
}

// BackfillFlight writes b into flight id without overwriting existing
// values. It reports whether a row was touched.
func (db *DB) BackfillFlight(ctx context.Context, id int64, b FlightBackfill) (bool, error) {
	if b.Empty() {
		return false, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var (
		sets   []string
		args   []interface{}
		checks []string
	)
	set := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%[1]s = COALESCE(%[1]s, ?)", column))
		args = append(args, value)
		checks = append(checks, column+" IS NULL")
	}
	if b.Airplane != nil {
		set("airplane", *b.Airplane)
	}
	if b.TailNumber != nil {
		set("tail_number", *b.TailNumber)
	}
	if b.DepartureTime != nil {
		set("departure_time", *b.DepartureTime)
	}
	if b.ArrivalTime != nil {
		set("arrival_time", *b.ArrivalTime)
	}
	if b.Duration != nil {
		set("duration", *b.Duration)
	}
	args = append(args, id)

	var owner string
	err := db.conn.QueryRowContext(ctx,
		"UPDATE flights SET "+strings.Join(sets, ", ")+
			" WHERE id = ? AND ("+strings.Join(checks, " OR ")+") RETURNING username",
		args...).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to backfill flight %d: %w", id, err)
	}

	db.flightsChanged(owner)
	return true, nil
}
