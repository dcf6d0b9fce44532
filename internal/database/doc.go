// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

// Package database is the DuckDB store behind Jetlog.
//
// # Architecture
//
// Core Database Operations:
//   - database.go: lifecycle (open, migrate, seed, checkpoint, close)
//   - database_schema.go: table and index DDL
//   - migrations.go: versioned, append-only migrations in schema_migrations
//   - database_connection.go: pool configuration and conflict retry
//   - database_utils.go: profiling, context timeouts, record counts
//   - seed.go: bundled airports and airlines loaded into empty tables
//   - query_helpers.go: filter builder and generic row scanning
//
// Domain Operations:
//   - reference.go: airport and airline resolution and search
//   - flights.go: flight CRUD with derived distance and duration
//   - connections_store.go: the connections.Store used by inference
//   - statistics_input.go: the statistics.Loader used by the statistics service
//   - enrichment.go: callsign groups and NULL-only backfills
//   - fr24.go: myFlightradar24 sync state
//   - users.go: accounts
//
// # Storage Conventions
//
// Dates are YYYY-MM-DD text and local clocks are HH:MM text. Airports are
// stored by ICAO code after resolution; airline codes are stored upper case
// whether or not they resolve.
//
// # Access Control
//
// Every flight read and write by a Principal goes through an Authorizer.
// The default, OwnerOrAdmin, lets owners and admins modify flights and lets
// anyone read the flights of a public profile. Writes notify the listener
// registered with SetChangeListener so derived caches can be dropped.
//
// # Thread Safety
//
// DB is safe for concurrent use. Write statements that hit a DuckDB
// optimistic concurrency conflict are retried up to three times.
//
// # Errors
//
// ErrNotFound, ErrForbidden, ErrInvalidInput and ErrAirportNotFound are
// matched with errors.Is. Timezone failures surface as
// flighttime.ErrUnknownTimezone.
package database
