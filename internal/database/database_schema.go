// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package database

import (
	"context"
	"time"
)

// schemaContext bounds schema and seed operations run at startup.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// Dates are stored as YYYY-MM-DD text and clocks as HH:MM text, so range
// filters compare lexicographically and rows round-trip exactly.

const createAirportsTable = `
CREATE TABLE IF NOT EXISTS airports (
	icao         VARCHAR PRIMARY KEY,
	iata         VARCHAR,
	type         VARCHAR,
	name         VARCHAR NOT NULL,
	municipality VARCHAR,
	region       VARCHAR,
	country      VARCHAR,
	continent    VARCHAR,
	latitude     DOUBLE,
	longitude    DOUBLE,
	timezone     VARCHAR
);`

const createAirlinesTable = `
CREATE TABLE IF NOT EXISTS airlines (
	icao VARCHAR PRIMARY KEY,
	iata VARCHAR,
	name VARCHAR NOT NULL
);`

const createUsersSequence = `CREATE SEQUENCE IF NOT EXISTS users_id_seq START 1;`

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id             BIGINT PRIMARY KEY DEFAULT nextval('users_id_seq'),
	username       VARCHAR NOT NULL UNIQUE,
	password_hash  VARCHAR NOT NULL,
	is_admin       BOOLEAN NOT NULL DEFAULT false,
	public_profile BOOLEAN NOT NULL DEFAULT false,
	created_on     TIMESTAMP NOT NULL DEFAULT current_timestamp,
	last_login     TIMESTAMP
);`

const createFlightsSequence = `CREATE SEQUENCE IF NOT EXISTS flights_id_seq START 1;`

const createFlightsTable = `
CREATE TABLE IF NOT EXISTS flights (
	id             BIGINT PRIMARY KEY DEFAULT nextval('flights_id_seq'),
	username       VARCHAR NOT NULL,
	date           VARCHAR NOT NULL,
	origin         VARCHAR NOT NULL,
	destination    VARCHAR NOT NULL,
	departure_time VARCHAR,
	arrival_time   VARCHAR,
	arrival_date   VARCHAR,
	seat           VARCHAR,
	aircraft_side  VARCHAR,
	ticket_class   VARCHAR,
	purpose        VARCHAR,
	duration       INTEGER,
	distance       INTEGER,
	airplane       VARCHAR,
	airline        VARCHAR,
	tail_number    VARCHAR,
	flight_number  VARCHAR,
	notes          VARCHAR,
	cost           DOUBLE,
	currency       VARCHAR,
	rating         INTEGER,
	connection     BIGINT
);`

const createFR24SyncedTable = `
CREATE TABLE IF NOT EXISTS fr24_synced_flights (
	flight_id BIGINT PRIMARY KEY,
	synced_at TIMESTAMP NOT NULL DEFAULT current_timestamp
);`

const createFlightsIndex = `CREATE INDEX IF NOT EXISTS idx_flights_username_date ON flights(username, date);`

const createAirportsIATAIndex = `CREATE INDEX IF NOT EXISTS idx_airports_iata ON airports(iata);`
