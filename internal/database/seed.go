// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package database

import (
	"bufio"
	"context"
	"database/sql"
	"embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tomtom215/jetlog/internal/logging"
)

//go:embed seed/*.csv
var seedFS embed.FS

// seedSource names a reference data file: an operator-supplied path, or
// the bundled sample when the path is empty.
type seedSource struct {
	path     string
	embedded string
}

func (s seedSource) name() string {
	if s.path != "" {
		return s.path
	}
	return s.embedded
}

func (s seedSource) open() (io.ReadCloser, error) {
	if s.path != "" {
		return os.Open(s.path)
	}
	return seedFS.Open(s.embedded)
}

// Columns are matched by header name. Each field lists the names accepted
// for it, so OurAirports exports load as-is. The first non-empty column
// wins per record.
var (
	airportSeedColumns = []seedColumn{
		{"icao", []string{"icao", "icao_code", "gps_code", "ident"}, true},
		{"iata", []string{"iata", "iata_code"}, false},
		{"type", []string{"type"}, false},
		{"name", []string{"name"}, true},
		{"municipality", []string{"municipality", "city"}, false},
		{"region", []string{"region", "iso_region"}, false},
		{"country", []string{"country", "iso_country"}, false},
		{"continent", []string{"continent"}, false},
		{"latitude", []string{"latitude", "latitude_deg"}, false},
		{"longitude", []string{"longitude", "longitude_deg"}, false},
		{"timezone", []string{"timezone", "tz", "time_zone"}, false},
	}
	airlineSeedColumns = []seedColumn{
		{"icao", []string{"icao", "icao_code"}, true},
		{"iata", []string{"iata", "iata_code"}, false},
		{"name", []string{"name"}, true},
	}
)

type seedColumn struct {
	field    string
	names    []string
	required bool
}

// seedRecord reads fields of one CSV record through a resolved header.
type seedRecord struct {
	index  map[string][]int
	values []string
}

func (r seedRecord) get(field string) string {
	for _, i := range r.index[field] {
		if i < len(r.values) {
			if v := strings.TrimSpace(r.values[i]); v != "" {
				return v
			}
		}
	}
	return ""
}

// resolveHeader maps each field to the header positions carrying it.
func resolveHeader(header []string, columns []seedColumn) (map[string][]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}
	index := make(map[string][]int, len(columns))
	for _, c := range columns {
		for _, n := range c.names {
			if i, ok := pos[n]; ok {
				index[c.field] = append(index[c.field], i)
			}
		}
		if c.required && len(index[c.field]) == 0 {
			return nil, fmt.Errorf("missing %s column (accepted: %s)", c.field, strings.Join(c.names, ", "))
		}
	}
	return index, nil
}

// SeedReferenceData loads airports and airlines into whichever reference
// table is empty, from the configured CSV files or the bundled sample.
// Populated tables are left alone.
func (db *DB) SeedReferenceData(ctx context.Context) error {
	airports, err := db.seedTable(ctx, "airports", seedSource{path: db.cfg.AirportsCSV, embedded: "seed/airports.csv"},
		airportSeedColumns,
		`INSERT OR IGNORE INTO airports (icao, iata, type, name, municipality, region, country, continent, latitude, longitude, timezone)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, airportSeedArgs)
	if err != nil {
		return err
	}

	airlines, err := db.seedTable(ctx, "airlines", seedSource{path: db.cfg.AirlinesCSV, embedded: "seed/airlines.csv"},
		airlineSeedColumns,
		`INSERT OR IGNORE INTO airlines (icao, iata, name) VALUES (?, ?, ?)`, airlineSeedArgs)
	if err != nil {
		return err
	}

	if airports > 0 || airlines > 0 {
		logging.Info().Int("airports", airports).Int("airlines", airlines).Msg("Seeded reference data")
	}
	return nil
}

// seedTable inserts every usable CSV record of src into table in one
// transaction, unless the table already has rows. Records without a key
// are skipped.
func (db *DB) seedTable(ctx context.Context, table string, src seedSource, columns []seedColumn, insert string,
	toArgs func(seedRecord) ([]interface{}, error)) (int, error) {
	var count int
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	if count > 0 {
		return 0, nil
	}

	file := src.name()
	f, err := src.open()
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", file, err)
	}
	defer closeWithLog(f, "seed file")

	br := bufio.NewReader(f)
	if bom, _ := br.Peek(3); string(bom) == "\ufeff" {
		_, _ = br.Discard(3)
	}
	r := csv.NewReader(br)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read %s header: %w", file, err)
	}
	index, err := resolveHeader(header, columns)
	if err != nil {
		return 0, fmt.Errorf("invalid %s header: %w", file, err)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare %s insert: %w", table, err)
	}
	defer closeQuietly(stmt)

	inserted, skipped := 0, 0
	for line := 2; ; line++ {
		values, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to read %s: %w", file, err)
		}
		rec := seedRecord{index: index, values: values}
		if rec.get("icao") == "" || rec.get("name") == "" {
			skipped++
			continue
		}
		args, err := toArgs(rec)
		if err != nil {
			return 0, fmt.Errorf("invalid record on line %d of %s: %w", line, file, err)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("failed to insert into %s: %w", table, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit %s seed: %w", table, err)
	}
	if skipped > 0 {
		logging.Debug().Str("file", file).Int("skipped", skipped).Msg("Skipped reference records without a code or name")
	}
	return inserted, nil
}

func airportSeedArgs(rec seedRecord) ([]interface{}, error) {
	lat, err := nullFloat(rec.get("latitude"))
	if err != nil {
		return nil, fmt.Errorf("latitude: %w", err)
	}
	lon, err := nullFloat(rec.get("longitude"))
	if err != nil {
		return nil, fmt.Errorf("longitude: %w", err)
	}
	return []interface{}{
		strings.ToUpper(rec.get("icao")), nullString(strings.ToUpper(rec.get("iata"))),
		nullString(rec.get("type")), rec.get("name"), nullString(rec.get("municipality")),
		nullString(rec.get("region")), nullString(rec.get("country")), nullString(rec.get("continent")),
		lat, lon, nullString(rec.get("timezone")),
	}, nil
}

func airlineSeedArgs(rec seedRecord) ([]interface{}, error) {
	return []interface{}{
		strings.ToUpper(rec.get("icao")), nullString(strings.ToUpper(rec.get("iata"))), rec.get("name"),
	}, nil
}

// nullString maps "" to NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullFloat maps "" to NULL.
func nullFloat(s string) (sql.NullFloat64, error) {
	if s == "" {
		return sql.NullFloat64{}, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return sql.NullFloat64{}, err
	}
	return sql.NullFloat64{Float64: v, Valid: true}, nil
}
