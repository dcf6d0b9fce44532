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

const airportColumns = `icao, iata, type, name, municipality, region, country, continent, latitude, longitude, timezone`

const defaultSearchLimit = 10

func scanAirport(row interface{ Scan(...interface{}) error }) (*models.Airport, error) {
	var (
		a                          models.Airport
		iata, municipality         sql.NullString
		typ, region, country, cont sql.NullString
		tz                         sql.NullString
		lat, lon                   sql.NullFloat64
	)
	if err := row.Scan(&a.ICAO, &iata, &typ, &a.Name, &municipality, &region, &country, &cont, &lat, &lon, &tz); err != nil {
		return nil, err
	}
	a.IATA = stringPtr(iata)
	a.Municipality = stringPtr(municipality)
	a.Type = typ.String
	a.Region = region.String
	a.Country = country.String
	a.Continent = cont.String
	a.Latitude = floatPtr(lat)
	a.Longitude = floatPtr(lon)
	a.Timezone = tz.String
	return &a, nil
}

// ResolveAirport finds an airport by ICAO or IATA code, case-insensitively.
// An ICAO match wins over an IATA match.
func (db *DB) ResolveAirport(ctx context.Context, code string) (*models.Airport, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, fmt.Errorf("%w: empty code", ErrAirportNotFound)
	}

	row := db.conn.QueryRowContext(ctx, `
		SELECT `+airportColumns+` FROM airports
		WHERE UPPER(icao) = ? OR UPPER(iata) = ?
		ORDER BY (UPPER(icao) = ?) DESC
		LIMIT 1`, code, code, code)
	a, err := scanAirport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrAirportNotFound, code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve airport %s: %w", code, err)
	}
	return a, nil
}

// GetAirport returns the airport with the given code or ErrNotFound.
func (db *DB) GetAirport(ctx context.Context, code string) (*models.Airport, error) {
	a, err := db.ResolveAirport(ctx, code)
	if errors.Is(err, ErrAirportNotFound) {
		return nil, ErrNotFound
	}
	return a, err
}

// SearchAirports matches q against codes, name and municipality. Exact code
// matches sort first.
func (db *DB) SearchAirports(ctx context.Context, q string, limit int) ([]models.Airport, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if limit <= 0 {
		limit = defaultSearchLimit
	}
	code := strings.ToUpper(strings.TrimSpace(q))
	like := "%" + strings.TrimSpace(q) + "%"

	results, err := queryAndScan(ctx, db.conn, `
		SELECT `+airportColumns+` FROM airports
		WHERE UPPER(icao) = ? OR UPPER(iata) = ? OR name ILIKE ? OR municipality ILIKE ?
		ORDER BY (UPPER(icao) = ? OR UPPER(iata) = ?) DESC, name
		LIMIT ?`,
		[]interface{}{code, code, like, like, code, code, limit},
		func(rows *sql.Rows) (models.Airport, error) {
			a, err := scanAirport(rows)
			if err != nil {
				return models.Airport{}, err
			}
			return *a, nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to search airports: %w", err)
	}
	return results, nil
}

func scanAirline(row interface{ Scan(...interface{}) error }) (*models.Airline, error) {
	var (
		a    models.Airline
		iata sql.NullString
	)
	if err := row.Scan(&a.ICAO, &iata, &a.Name); err != nil {
		return nil, err
	}
	a.IATA = stringPtr(iata)
	return &a, nil
}

// GetAirline returns the airline with the given ICAO or IATA code or
// ErrNotFound.
func (db *DB) GetAirline(ctx context.Context, code string) (*models.Airline, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	code = strings.ToUpper(strings.TrimSpace(code))
	row := db.conn.QueryRowContext(ctx, `
		SELECT icao, iata, name FROM airlines
		WHERE UPPER(icao) = ? OR UPPER(iata) = ?
		ORDER BY (UPPER(icao) = ?) DESC
		LIMIT 1`, code, code, code)
	a, err := scanAirline(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get airline %s: %w", code, err)
	}
	return a, nil
}

// SearchAirlines matches q against codes and name.
func (db *DB) SearchAirlines(ctx context.Context, q string, limit int) ([]models.Airline, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if limit <= 0 {
		limit = defaultSearchLimit
	}
	code := strings.ToUpper(strings.TrimSpace(q))
	like := "%" + strings.TrimSpace(q) + "%"

	results, err := queryAndScan(ctx, db.conn, `
		SELECT icao, iata, name FROM airlines
		WHERE UPPER(icao) = ? OR UPPER(iata) = ? OR name ILIKE ?
		ORDER BY (UPPER(icao) = ? OR UPPER(iata) = ?) DESC, name
		LIMIT ?`,
		[]interface{}{code, code, like, code, code, limit},
		func(rows *sql.Rows) (models.Airline, error) {
			a, err := scanAirline(rows)
			if err != nil {
				return models.Airline{}, err
			}
			return *a, nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to search airlines: %w", err)
	}
	return results, nil
}

// ContinentCountryTotals counts the distinct countries with at least one
// airport per continent.
func (db *DB) ContinentCountryTotals(ctx context.Context) (map[string]int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT continent, COUNT(DISTINCT country) FROM airports
		WHERE continent IS NOT NULL AND country IS NOT NULL
		GROUP BY continent`)
	if err != nil {
		return nil, fmt.Errorf("failed to count countries per continent: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]int)
	for rows.Next() {
		var (
			continent string
			n         int
		)
		if err := rows.Scan(&continent, &n); err != nil {
			return nil, fmt.Errorf("failed to scan continent totals: %w", err)
		}
		totals[continent] = n
	}
	return totals, rows.Err()
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

func intPtr(i sql.NullInt64) *int {
	if !i.Valid {
		return nil
	}
	v := int(i.Int64)
	return &v
}

func int64Ptr(i sql.NullInt64) *int64 {
	if !i.Valid {
		return nil
	}
	v := i.Int64
	return &v
}
