// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package database

import (
	"context"
	"fmt"
)

// SyncedFlightIDs returns the ids of the user's flights already pushed to
// myFlightradar24.
func (db *DB) SyncedFlightIDs(ctx context.Context, username string) (map[int64]bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT s.flight_id FROM fr24_synced_flights s
		JOIN flights f ON f.id = s.flight_id
		WHERE f.username = ?`, username)
	if err != nil {
		return nil, fmt.Errorf("failed to list synced flights: %w", err)
	}
	defer rows.Close()

	ids := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan synced flight: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// MarkSynced records that a flight was pushed. Repeated calls are no-ops.
func (db *DB) MarkSynced(ctx context.Context, flightID int64) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if _, err := db.execWithRetry(ctx,
		`INSERT INTO fr24_synced_flights (flight_id) VALUES (?) ON CONFLICT DO NOTHING`, flightID); err != nil {
		return fmt.Errorf("failed to mark flight %d synced: %w", flightID, err)
	}
	return nil
}
