// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package database

import (
	"context"
	"runtime"
	"strings"
	"time"
)

// Write retry budget for DuckDB optimistic concurrency conflicts.
const (
	maxConflictRetries = 3
	conflictRetryDelay = 10 * time.Millisecond
)

// configureConnectionPool sets connection pool parameters
func (db *DB) configureConnectionPool() {
	db.conn.SetMaxOpenConns(runtime.NumCPU())
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(time.Hour)
	db.conn.SetConnMaxIdleTime(5 * time.Minute)
}

// isTransactionConflict checks if an error is a DuckDB transaction conflict
func isTransactionConflict(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "Transaction conflict") ||
		strings.Contains(errStr, "Conflict on update") ||
		strings.Contains(errStr, "cannot update a table that has been altered")
}

// execWithRetry runs a single-statement write, retrying transaction
// conflicts with a linear backoff.
func (db *DB) execWithRetry(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var lastErr error
	for attempt := 0; attempt <= maxConflictRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(conflictRetryDelay * time.Duration(attempt)):
			case <-ctx.Done():
				return 0, ctx.Err()
			}
		}

		res, err := db.conn.ExecContext(ctx, query, args...)
		if err == nil {
			n, _ := res.RowsAffected()
			return n, nil
		}
		if !isTransactionConflict(err) {
			return 0, err
		}
		lastErr = err
	}
	return 0, lastErr
}
