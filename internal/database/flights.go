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

	"github.com/tomtom215/jetlog/internal/connections"
	"github.com/tomtom215/jetlog/internal/flighttime"
	"github.com/tomtom215/jetlog/internal/geo"
	"github.com/tomtom215/jetlog/internal/logging"
	"github.com/tomtom215/jetlog/internal/models"
)

// flightSelect joins the resolved reference rows onto each flight. Filters
// are appended after WHERE 1=1 by queryBuilder.
const flightSelect = `
SELECT
	f.id, f.username, f.date, f.origin, f.destination,
	f.departure_time, f.arrival_time, f.arrival_date,
	f.seat, f.aircraft_side, f.ticket_class, f.purpose,
	f.duration, f.distance, f.airplane, f.airline, f.tail_number, f.flight_number,
	f.notes, f.cost, f.currency, f.rating, f.connection,
	o.icao, o.iata, o.type, o.name, o.municipality, o.region, o.country, o.continent, o.latitude, o.longitude, o.timezone,
	d.icao, d.iata, d.type, d.name, d.municipality, d.region, d.country, d.continent, d.latitude, d.longitude, d.timezone,
	a.icao, a.iata, a.name
FROM flights f
LEFT JOIN airports o ON o.icao = UPPER(f.origin)
LEFT JOIN airports d ON d.icao = UPPER(f.destination)
LEFT JOIN airlines a ON a.icao = UPPER(f.airline)
WHERE 1=1`

// sortColumns whitelists FlightQuery.Sort values.
var sortColumns = map[string]string{
	"date":          "f.date %[1]s, f.departure_time %[1]s",
	"seat":          "f.seat %[1]s",
	"aircraft_side": "f.aircraft_side %[1]s",
	"ticket_class":  "f.ticket_class %[1]s",
	"duration":      "f.duration %[1]s",
	"distance":      "f.distance %[1]s",
}

type nullAirport struct {
	icao, iata, typ, name, municipality  sql.NullString
	region, country, continent, timezone sql.NullString
	lat, lon                             sql.NullFloat64
}

func (n *nullAirport) dest() []interface{} {
	return []interface{}{&n.icao, &n.iata, &n.typ, &n.name, &n.municipality,
		&n.region, &n.country, &n.continent, &n.lat, &n.lon, &n.timezone}
}

func (n *nullAirport) airport() *models.Airport {
	if !n.icao.Valid {
		return nil
	}
	return &models.Airport{
		ICAO:         n.icao.String,
		IATA:         stringPtr(n.iata),
		Type:         n.typ.String,
		Name:         n.name.String,
		Municipality: stringPtr(n.municipality),
		Region:       n.region.String,
		Country:      n.country.String,
		Continent:    n.continent.String,
		Latitude:     floatPtr(n.lat),
		Longitude:    floatPtr(n.lon),
		Timezone:     n.timezone.String,
	}
}

// scanFlight scans one flightSelect row.
func scanFlight(row interface{ Scan(...interface{}) error }) (models.Flight, error) {
	var (
		f                                      models.Flight
		depTime, arrTime, arrDate              sql.NullString
		seat, side, class, purpose             sql.NullString
		duration, distance, rating, connection sql.NullInt64
		airplane, airline, tail, number, notes sql.NullString
		cost                                   sql.NullFloat64
		currency                               sql.NullString
		origin, destination                    nullAirport
		airlineICAO, airlineIATA, airlineName  sql.NullString
	)

	dest := []interface{}{
		&f.ID, &f.Username, &f.Date, &f.Origin, &f.Destination,
		&depTime, &arrTime, &arrDate,
		&seat, &side, &class, &purpose,
		&duration, &distance, &airplane, &airline, &tail, &number,
		&notes, &cost, &currency, &rating, &connection,
	}
	dest = append(dest, origin.dest()...)
	dest = append(dest, destination.dest()...)
	dest = append(dest, &airlineICAO, &airlineIATA, &airlineName)

	if err := row.Scan(dest...); err != nil {
		return models.Flight{}, err
	}

	f.DepartureTime = stringPtr(depTime)
	f.ArrivalTime = stringPtr(arrTime)
	f.ArrivalDate = stringPtr(arrDate)
	f.Seat = enumPtr[models.SeatType](seat)
	f.AircraftSide = enumPtr[models.AircraftSide](side)
	f.TicketClass = enumPtr[models.ClassType](class)
	f.Purpose = enumPtr[models.FlightPurpose](purpose)
	f.Duration = intPtr(duration)
	f.Distance = intPtr(distance)
	f.Airplane = stringPtr(airplane)
	f.Airline = stringPtr(airline)
	f.TailNumber = stringPtr(tail)
	f.FlightNumber = stringPtr(number)
	f.Notes = stringPtr(notes)
	f.Cost = floatPtr(cost)
	f.Currency = stringPtr(currency)
	f.Rating = intPtr(rating)
	f.Connection = int64Ptr(connection)

	f.OriginAirport = origin.airport()
	f.DestinationAirport = destination.airport()
	if airlineICAO.Valid {
		f.AirlineInfo = &models.Airline{ICAO: airlineICAO.String, IATA: stringPtr(airlineIATA), Name: airlineName.String}
	}
	return f, nil
}

func enumPtr[T ~string](s sql.NullString) *T {
	if !s.Valid {
		return nil
	}
	v := T(s.String)
	return &v
}

// arg converts an optional model field to a bind parameter.
func arg[T any](p *T) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

// enumArg binds named string types as plain strings.
func enumArg[T ~string](p *T) interface{} {
	if p == nil {
		return nil
	}
	return string(*p)
}

func upperArg(p *string) interface{} {
	if p == nil {
		return nil
	}
	return strings.ToUpper(*p)
}

// queryFlights runs flightSelect with the builder's filters.
func (db *DB) queryFlights(ctx context.Context, qb *queryBuilder, suffix string, suffixArgs ...interface{}) ([]models.Flight, error) {
	query, args := qb.build(suffix, suffixArgs...)
	return queryAndScan(ctx, db.conn, query, args, func(rows *sql.Rows) (models.Flight, error) {
		return scanFlight(rows)
	})
}

// flightByID loads one flight without access checks.
func (db *DB) flightByID(ctx context.Context, id int64) (*models.Flight, error) {
	query, args := newQueryBuilder(flightSelect).addFilter("f.id = ?", id).build("")
	f, err := scanFlight(db.conn.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get flight %d: %w", id, err)
	}
	return &f, nil
}

// SetChangeListener registers fn to run after every write to a user's
// flights, with the owner's username.
func (db *DB) SetChangeListener(fn func(username string)) {
	db.onChange = fn
}

func (db *DB) flightsChanged(username string) {
	if db.onChange != nil {
		db.onChange(username)
	}
}

// AddFlight stores f for its owner and returns the new id. Missing
// distance and duration are derived from the resolved airports.
func (db *DB) AddFlight(ctx context.Context, actor models.Principal, f models.Flight, timezones bool) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if f.Username == "" {
		f.Username = actor.Username
	}
	if !db.authz.CanModify(actor, f.Username) {
		return 0, fmt.Errorf("%w: only admins can add flights for other users", ErrForbidden)
	}
	if f.Date == "" || f.Origin == "" || f.Destination == "" {
		return 0, fmt.Errorf("%w: date, origin and destination are required", ErrInvalidInput)
	}

	origin, err := db.ResolveAirport(ctx, f.Origin)
	if err != nil {
		return 0, err
	}
	destination, err := db.ResolveAirport(ctx, f.Destination)
	if err != nil {
		return 0, err
	}
	f.Origin, f.Destination = origin.ICAO, destination.ICAO

	if f.Distance == nil || *f.Distance == 0 {
		d := geo.AirportDistanceKm(origin, destination)
		f.Distance = &d
	}

	if (f.Duration == nil || *f.Duration == 0) && f.DepartureTime != nil && f.ArrivalTime != nil {
		d, err := flighttime.ComputeDuration(flighttime.DurationInput{
			Date:          f.Date,
			DepartureTime: *f.DepartureTime,
			ArrivalDate:   derefString(f.ArrivalDate),
			ArrivalTime:   *f.ArrivalTime,
			OriginTZ:      origin.Timezone,
			DestinationTZ: destination.Timezone,
			UseTimezones:  timezones,
		})
		if err != nil {
			return 0, fmt.Errorf("failed to compute duration: %w", err)
		}
		f.Duration = &d
	}

	var id int64
	err = db.conn.QueryRowContext(ctx, `
		INSERT INTO flights (
			username, date, origin, destination, departure_time, arrival_time, arrival_date,
			seat, aircraft_side, ticket_class, purpose, duration, distance,
			airplane, airline, tail_number, flight_number, notes, cost, currency, rating, connection
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		f.Username, f.Date, f.Origin, f.Destination,
		arg(f.DepartureTime), arg(f.ArrivalTime), arg(f.ArrivalDate),
		enumArg(f.Seat), enumArg(f.AircraftSide), enumArg(f.TicketClass), enumArg(f.Purpose),
		arg(f.Duration), arg(f.Distance),
		arg(f.Airplane), upperArg(f.Airline), arg(f.TailNumber), arg(f.FlightNumber), arg(f.Notes),
		arg(f.Cost), upperArg(f.Currency), arg(f.Rating), arg(f.Connection),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert flight: %w", err)
	}

	db.flightsChanged(f.Username)
	logging.Ctx(ctx).Debug().Int64("id", id).Str("username", f.Username).Str("route", f.Label()).Msg("Flight added")
	return id, nil
}

// AddFlights adds each flight in order and returns the id of the last one
// owned by the actor, or -1 when none is. Every flight is authorized before
// any is stored.
func (db *DB) AddFlights(ctx context.Context, actor models.Principal, flights []models.Flight, timezones bool) (int64, error) {
	for _, f := range flights {
		if f.Username != "" && !db.authz.CanModify(actor, f.Username) {
			return -1, fmt.Errorf("%w: only admins can add flights for other users", ErrForbidden)
		}
	}

	lastID := int64(-1)
	for i, f := range flights {
		id, err := db.AddFlight(ctx, actor, f, timezones)
		if err != nil {
			return lastID, fmt.Errorf("flight %d: %w", i, err)
		}
		if f.Username == "" || f.Username == actor.Username {
			lastID = id
		}
	}
	return lastID, nil
}

// UpdateFlight applies patch to flight id. Distance and duration are
// recomputed from the merged row when their inputs change and the patch
// does not supply them. A connection of 0 clears the link.
func (db *DB) UpdateFlight(ctx context.Context, actor models.Principal, id int64, patch models.FlightPatch, timezones bool) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	current, err := db.flightByID(ctx, id)
	if err != nil {
		return err
	}
	if !db.authz.CanModify(actor, current.Username) {
		return fmt.Errorf("%w: only admins can modify other users' flights", ErrForbidden)
	}
	if patch.Empty() {
		return nil
	}

	origin, destination := current.OriginAirport, current.DestinationAirport
	if patch.Origin != nil {
		if origin, err = db.ResolveAirport(ctx, *patch.Origin); err != nil {
			return err
		}
		patch.Origin = &origin.ICAO
	}
	if patch.Destination != nil {
		if destination, err = db.ResolveAirport(ctx, *patch.Destination); err != nil {
			return err
		}
		patch.Destination = &destination.ICAO
	}

	if patch.TouchesAirports() && patch.Distance == nil {
		d := geo.AirportDistanceKm(origin, destination)
		patch.Distance = &d
	}

	merged := mergePatch(*current, patch)

	if patch.TouchesSchedule() && patch.Duration == nil &&
		merged.DepartureTime != nil && merged.ArrivalTime != nil {
		in := flighttime.DurationInput{
			Date:          merged.Date,
			DepartureTime: *merged.DepartureTime,
			ArrivalDate:   derefString(merged.ArrivalDate),
			ArrivalTime:   *merged.ArrivalTime,
			UseTimezones:  timezones,
		}
		if timezones {
			if origin == nil || destination == nil {
				return fmt.Errorf("%w: flight %d has unresolved airports", ErrAirportNotFound, id)
			}
			in.OriginTZ, in.DestinationTZ = origin.Timezone, destination.Timezone
		}
		d, err := flighttime.ComputeDuration(in)
		if err != nil {
			return fmt.Errorf("failed to compute duration: %w", err)
		}
		patch.Duration = &d
	}

	var clearConnection bool
	if patch.Connection != nil {
		if *patch.Connection <= 0 {
			clearConnection = true
		} else if err := db.checkConnection(ctx, &merged, *patch.Connection); err != nil {
			return err
		}
	}

	sets, args := patchAssignments(patch, clearConnection)
	args = append(args, id)
	if _, err := db.execWithRetry(ctx, "UPDATE flights SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...); err != nil {
		return fmt.Errorf("failed to update flight %d: %w", id, err)
	}

	db.flightsChanged(current.Username)
	return nil
}

// checkConnection validates an explicit link from f to target.
func (db *DB) checkConnection(ctx context.Context, f *models.Flight, target int64) error {
	c, err := db.flightByID(ctx, target)
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: connection target %d does not exist", ErrInvalidInput, target)
	}
	if err != nil {
		return err
	}
	if !connections.IsPlausibleSuccessor(f, c) {
		return fmt.Errorf("%w: flight %d is not a plausible next leg", ErrInvalidInput, target)
	}
	return nil
}

// mergePatch overlays the set fields of p onto f.
func mergePatch(f models.Flight, p models.FlightPatch) models.Flight {
	if p.Date != nil {
		f.Date = *p.Date
	}
	if p.Origin != nil {
		f.Origin = *p.Origin
	}
	if p.Destination != nil {
		f.Destination = *p.Destination
	}
	if p.DepartureTime != nil {
		f.DepartureTime = p.DepartureTime
	}
	if p.ArrivalTime != nil {
		f.ArrivalTime = p.ArrivalTime
	}
	if p.ArrivalDate != nil {
		f.ArrivalDate = p.ArrivalDate
	}
	return f
}

// patchAssignments lists the SET clauses for the non-nil fields of p.
func patchAssignments(p models.FlightPatch, clearConnection bool) ([]string, []interface{}) {
	var (
		sets []string
		args []interface{}
	)
	add := func(column string, value interface{}) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if p.Date != nil {
		add("date", *p.Date)
	}
	if p.Origin != nil {
		add("origin", *p.Origin)
	}
	if p.Destination != nil {
		add("destination", *p.Destination)
	}
	if p.DepartureTime != nil {
		add("departure_time", *p.DepartureTime)
	}
	if p.ArrivalTime != nil {
		add("arrival_time", *p.ArrivalTime)
	}
	if p.ArrivalDate != nil {
		add("arrival_date", *p.ArrivalDate)
	}
	if p.Seat != nil {
		add("seat", enumArg(p.Seat))
	}
	if p.AircraftSide != nil {
		add("aircraft_side", enumArg(p.AircraftSide))
	}
	if p.TicketClass != nil {
		add("ticket_class", enumArg(p.TicketClass))
	}
	if p.Purpose != nil {
		add("purpose", enumArg(p.Purpose))
	}
	if p.Duration != nil {
		add("duration", *p.Duration)
	}
	if p.Distance != nil {
		add("distance", *p.Distance)
	}
	if p.Airplane != nil {
		add("airplane", *p.Airplane)
	}
	if p.Airline != nil {
		add("airline", upperArg(p.Airline))
	}
	if p.TailNumber != nil {
		add("tail_number", *p.TailNumber)
	}
	if p.FlightNumber != nil {
		add("flight_number", *p.FlightNumber)
	}
	if p.Notes != nil {
		add("notes", *p.Notes)
	}
	if p.Cost != nil {
		add("cost", *p.Cost)
	}
	if p.Currency != nil {
		add("currency", upperArg(p.Currency))
	}
	if p.Rating != nil {
		add("rating", *p.Rating)
	}
	if clearConnection {
		sets = append(sets, "connection = NULL")
	} else if p.Connection != nil {
		add("connection", *p.Connection)
	}
	return sets, args
}

// DeleteFlight removes flight id, clears links pointing to it and drops its
// myFlightradar24 sync record.
func (db *DB) DeleteFlight(ctx context.Context, actor models.Principal, id int64) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var owner string
	err := db.conn.QueryRowContext(ctx, `SELECT username FROM flights WHERE id = ?`, id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to look up flight %d: %w", id, err)
	}
	if !db.authz.CanModify(actor, owner) {
		return fmt.Errorf("%w: only admins can modify other users' flights", ErrForbidden)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{
		`UPDATE flights SET connection = NULL WHERE connection = ?`,
		`DELETE FROM fr24_synced_flights WHERE flight_id = ?`,
		`DELETE FROM flights WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("failed to delete flight %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete of flight %d: %w", id, err)
	}

	db.flightsChanged(owner)
	return nil
}

// GetFlight returns one flight the actor may read. With metric false the
// distance is reported in miles.
func (db *DB) GetFlight(ctx context.Context, actor models.Principal, id int64, metric bool) (*models.Flight, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	f, err := db.flightByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := db.checkRead(ctx, actor, f.Username); err != nil {
		return nil, err
	}
	if !metric {
		toMiles(f)
	}
	return f, nil
}

// ListFlights returns the flights matching q. The username defaults to the
// actor's own.
func (db *DB) ListFlights(ctx context.Context, actor models.Principal, q models.FlightQuery, metric bool) ([]models.Flight, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if q.Username == "" {
		q.Username = actor.Username
	}
	if err := db.checkRead(ctx, actor, q.Username); err != nil {
		return nil, err
	}

	qb := newQueryBuilder(flightSelect).
		addFilter("f.username = ?", q.Username).
		addDateRange("f.date", q.Start, q.End)
	if q.Origin != "" {
		code := strings.ToUpper(q.Origin)
		qb.addFilter("(UPPER(f.origin) = ? OR o.iata = ?)", code, code)
	}
	if q.Destination != "" {
		code := strings.ToUpper(q.Destination)
		qb.addFilter("(UPPER(f.destination) = ? OR d.iata = ?)", code, code)
	}

	suffix, suffixArgs := listSuffix(q)
	flights, err := db.queryFlights(ctx, qb, suffix, suffixArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to list flights: %w", err)
	}

	if !metric {
		for i := range flights {
			toMiles(&flights[i])
		}
	}
	return flights, nil
}

// listSuffix renders ORDER BY, LIMIT and OFFSET from whitelisted values.
func listSuffix(q models.FlightQuery) (string, []interface{}) {
	order := strings.ToUpper(q.Order)
	if order != "ASC" {
		order = "DESC"
	}
	pattern, ok := sortColumns[q.Sort]
	if !ok {
		pattern = sortColumns["date"]
	}

	suffix := "ORDER BY " + fmt.Sprintf(pattern, order) + ", f.id " + order
	var args []interface{}
	if q.Limit >= 0 {
		suffix += " LIMIT ?"
		args = append(args, q.Limit)
	}
	if q.Offset > 0 {
		suffix += " OFFSET ?"
		args = append(args, q.Offset)
	}
	return suffix, args
}

// checkRead applies the read policy for the owner's flights.
func (db *DB) checkRead(ctx context.Context, actor models.Principal, owner string) error {
	if actor.Username == owner {
		return nil
	}
	public, err := db.isPublicProfile(ctx, owner)
	if err != nil {
		return err
	}
	if !db.authz.CanRead(actor, owner, public) {
		return fmt.Errorf("%w: flights of %s are private", ErrForbidden, owner)
	}
	return nil
}

func toMiles(f *models.Flight) {
	if f.Distance != nil {
		mi := geo.ToMiles(*f.Distance)
		f.Distance = &mi
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
