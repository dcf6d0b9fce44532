// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package models

// Flight is one logged flight. Origin, Destination and Airline hold codes as
// stored; the resolved reference rows are attached on read.
//
// Connection points at the next leg of the same itinerary. It is set by
// connection inference or by an explicit edit, never both at once.
type Flight struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Origin      string `json:"origin" validate:"required,airportcode"`
	Destination string `json:"destination" validate:"required,airportcode"`

	DepartureTime *string `json:"departureTime,omitempty" validate:"omitempty,hhmm"`
	ArrivalTime   *string `json:"arrivalTime,omitempty" validate:"omitempty,hhmm"`
	ArrivalDate   *string `json:"arrivalDate,omitempty" validate:"omitempty,datetime=2006-01-02"`

	Seat         *SeatType      `json:"seat,omitempty" validate:"omitempty,seat"`
	AircraftSide *AircraftSide  `json:"aircraftSide,omitempty" validate:"omitempty,aircraftside"`
	TicketClass  *ClassType     `json:"ticketClass,omitempty" validate:"omitempty,ticketclass"`
	Purpose      *FlightPurpose `json:"purpose,omitempty" validate:"omitempty,purpose"`

	// Duration is in minutes, Distance in km unless converted for display.
	Duration *int `json:"duration,omitempty" validate:"omitempty,min=0"`
	Distance *int `json:"distance,omitempty" validate:"omitempty,min=0"`

	Airplane     *string  `json:"airplane,omitempty" validate:"omitempty,max=255"`
	Airline      *string  `json:"airline,omitempty" validate:"omitempty,max=8"`
	TailNumber   *string  `json:"tailNumber,omitempty" validate:"omitempty,max=32"`
	FlightNumber *string  `json:"flightNumber,omitempty" validate:"omitempty,max=16"`
	Notes        *string  `json:"notes,omitempty"`
	Cost         *float64 `json:"cost,omitempty" validate:"omitempty,min=0"`
	Currency     *string  `json:"currency,omitempty" validate:"omitempty,len=3"`
	Rating       *int     `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Connection   *int64   `json:"connection,omitempty"`

	OriginAirport      *Airport `json:"originAirport,omitempty" validate:"-"`
	DestinationAirport *Airport `json:"destinationAirport,omitempty" validate:"-"`
	AirlineInfo        *Airline `json:"airlineInfo,omitempty" validate:"-"`
}

// EffectiveArrivalDate returns ArrivalDate, or Date when unset.
func (f *Flight) EffectiveArrivalDate() string {
	if f.ArrivalDate != nil && *f.ArrivalDate != "" {
		return *f.ArrivalDate
	}
	return f.Date
}

// Label renders "ORIGIN->DEST date" for progress items and log lines.
func (f *Flight) Label() string {
	return f.Origin + "->" + f.Destination + " " + f.Date
}

// FlightPatch is a partial update. Nil fields are left untouched; a nil
// pointer cannot clear a column.
type FlightPatch struct {
	Date          *string        `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Origin        *string        `json:"origin,omitempty" validate:"omitempty,airportcode"`
	Destination   *string        `json:"destination,omitempty" validate:"omitempty,airportcode"`
	DepartureTime *string        `json:"departureTime,omitempty" validate:"omitempty,hhmm"`
	ArrivalTime   *string        `json:"arrivalTime,omitempty" validate:"omitempty,hhmm"`
	ArrivalDate   *string        `json:"arrivalDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Seat          *SeatType      `json:"seat,omitempty" validate:"omitempty,seat"`
	AircraftSide  *AircraftSide  `json:"aircraftSide,omitempty" validate:"omitempty,aircraftside"`
	TicketClass   *ClassType     `json:"ticketClass,omitempty" validate:"omitempty,ticketclass"`
	Purpose       *FlightPurpose `json:"purpose,omitempty" validate:"omitempty,purpose"`
	Duration      *int           `json:"duration,omitempty" validate:"omitempty,min=0"`
	Distance      *int           `json:"distance,omitempty" validate:"omitempty,min=0"`
	Airplane      *string        `json:"airplane,omitempty" validate:"omitempty,max=255"`
	Airline       *string        `json:"airline,omitempty" validate:"omitempty,max=8"`
	TailNumber    *string        `json:"tailNumber,omitempty" validate:"omitempty,max=32"`
	FlightNumber  *string        `json:"flightNumber,omitempty" validate:"omitempty,max=16"`
	Notes         *string        `json:"notes,omitempty"`
	Cost          *float64       `json:"cost,omitempty" validate:"omitempty,min=0"`
	Currency      *string        `json:"currency,omitempty" validate:"omitempty,len=3"`
	Rating        *int           `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Connection    *int64         `json:"connection,omitempty"`
}

// Empty reports whether the patch sets nothing.
func (p *FlightPatch) Empty() bool {
	return p.Date == nil && p.Origin == nil && p.Destination == nil &&
		p.DepartureTime == nil && p.ArrivalTime == nil && p.ArrivalDate == nil &&
		p.Seat == nil && p.AircraftSide == nil && p.TicketClass == nil && p.Purpose == nil &&
		p.Duration == nil && p.Distance == nil && p.Airplane == nil && p.Airline == nil &&
		p.TailNumber == nil && p.FlightNumber == nil && p.Notes == nil &&
		p.Cost == nil && p.Currency == nil && p.Rating == nil && p.Connection == nil
}

// TouchesAirports reports whether the patch changes either endpoint.
func (p *FlightPatch) TouchesAirports() bool {
	return p.Origin != nil || p.Destination != nil
}

// TouchesSchedule reports whether the patch changes any input of the
// duration computation.
func (p *FlightPatch) TouchesSchedule() bool {
	return p.Date != nil || p.DepartureTime != nil || p.ArrivalDate != nil || p.ArrivalTime != nil
}

// FlightQuery filters ListFlights.
type FlightQuery struct {
	Username    string
	Start       string
	End         string
	Origin      string
	Destination string

	// Sort is one of date, seat, aircraft_side, ticket_class, duration, distance.
	Sort string `validate:"omitempty,oneof=date seat aircraft_side ticket_class duration distance"`

	// Order is ASC or DESC.
	Order string `validate:"omitempty,oneof=ASC DESC"`

	// Limit of -1 returns every row.
	Limit  int `validate:"min=-1"`
	Offset int `validate:"min=0"`
}

// DefaultFlightQuery mirrors the web client's defaults.
func DefaultFlightQuery() FlightQuery {
	return FlightQuery{Sort: "date", Order: "DESC", Limit: 50}
}

// FR24SyncResult is the outcome of pushing flights to myFlightradar24.
type FR24SyncResult struct {
	Synced int      `json:"synced"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors"`
}
