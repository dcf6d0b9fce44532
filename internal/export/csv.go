// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/tomtom215/jetlog/internal/models"
)

// CSVColumns is the header of WriteCSV. It matches the flights table minus
// id, username and connection, in schema order.
var CSVColumns = []string{
	"date", "origin", "destination", "departure_time", "arrival_time", "arrival_date",
	"seat", "aircraft_side", "ticket_class", "purpose", "duration", "distance",
	"airplane", "airline", "tail_number", "flight_number", "notes", "cost", "currency", "rating",
}

var newlineEscaper = strings.NewReplacer("\r\n", `\n`, "\n", `\n`)

// WriteCSV writes one row per flight. Missing values are empty cells and
// newlines inside values are written as a literal \n.
func WriteCSV(w io.Writer, flights []models.Flight) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVColumns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for i := range flights {
		f := &flights[i]
		row := []string{
			f.Date, f.Origin, f.Destination,
			str(f.DepartureTime), str(f.ArrivalTime), str(f.ArrivalDate),
			enum(f.Seat), enum(f.AircraftSide), enum(f.TicketClass), enum(f.Purpose),
			itoa(f.Duration), itoa(f.Distance),
			str(f.Airplane), str(f.Airline), str(f.TailNumber), str(f.FlightNumber),
			str(f.Notes), ftoa(f.Cost), str(f.Currency), itoa(f.Rating),
		}
		for j := range row {
			row[j] = newlineEscaper.Replace(row[j])
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row for flight %d: %w", f.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
