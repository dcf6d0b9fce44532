// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package database

import (
	"context"
	"fmt"

	"github.com/tomtom215/jetlog/internal/models"
	"github.com/tomtom215/jetlog/internal/statistics"
)

var _ statistics.Loader = (*DB)(nil)

// StatisticsInput loads the filtered flights of a user together with every
// connection target of that user and the per-continent country totals.
// Date bounds are inclusive.
func (db *DB) StatisticsInput(ctx context.Context, filter statistics.Filter) (statistics.Input, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	qb := newQueryBuilder(flightSelect).
		addFilter("f.username = ?", filter.Username).
		addDateRange("f.date", filter.Start, filter.End)
	flights, err := db.queryFlights(ctx, qb, "ORDER BY f.date, f.departure_time, f.id")
	if err != nil {
		return statistics.Input{}, fmt.Errorf("failed to load flights: %w", err)
	}

	targetsQB := newQueryBuilder(flightSelect).
		addFilter("f.username = ?", filter.Username).
		addFilter("f.id IN (SELECT connection FROM flights WHERE username = ? AND connection IS NOT NULL)", filter.Username)
	targets, err := db.queryFlights(ctx, targetsQB, "")
	if err != nil {
		return statistics.Input{}, fmt.Errorf("failed to load connection targets: %w", err)
	}

	totals, err := db.ContinentCountryTotals(ctx)
	if err != nil {
		return statistics.Input{}, err
	}

	in := statistics.Input{
		Flights:                flights,
		Successors:             make(map[int64]models.Flight, len(targets)),
		ConnectionTargets:      make(map[int64]bool, len(targets)),
		ContinentCountryTotals: totals,
	}
	for _, t := range targets {
		in.Successors[t.ID] = t
		in.ConnectionTargets[t.ID] = true
	}
	return in, nil
}

// AuthorizeRead returns ErrForbidden unless actor may read owner's flights
// and statistics.
func (db *DB) AuthorizeRead(ctx context.Context, actor models.Principal, owner string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	return db.checkRead(ctx, actor, owner)
}
