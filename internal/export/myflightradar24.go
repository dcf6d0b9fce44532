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

// MyFlightradar24Columns is the header myFlightradar24's importer expects.
var MyFlightradar24Columns = []string{
	"Date", "Flight number", "From", "To", "Dep time", "Arr time",
	"Duration", "Airline", "Aircraft", "Registration", "Seat number",
	"Seat type", "Flight class", "Flight reason", "Note", "Dep_id",
	"Arr_id", "Airline_id", "Aircraft_id",
}

var (
	mfr24Seat = map[models.SeatType]string{
		models.SeatWindow: "1",
		models.SeatMiddle: "2",
		models.SeatAisle:  "3",
	}
	mfr24Class = map[models.ClassType]string{
		models.ClassEconomy:     "1",
		models.ClassBusiness:    "2",
		models.ClassFirst:       "3",
		models.ClassEconomyPlus: "4",
		models.ClassPrivate:     "5",
	}
	mfr24Purpose = map[models.FlightPurpose]string{
		models.PurposeLeisure:  "1",
		models.PurposeBusiness: "2",
		models.PurposeCrew:     "3",
		models.PurposeOther:    "4",
	}
)

// mfr24Code maps an optional enum through m; unset or unknown is "0".
func mfr24Code[T comparable](p *T, m map[T]string) string {
	if p == nil {
		return "0"
	}
	if code, ok := m[*p]; ok {
		return code
	}
	return "0"
}

// mfr24Airport renders "Municipality (ICAO)".
func mfr24Airport(a *models.Airport, stored string) string {
	if a == nil {
		return " (" + stored + ")"
	}
	return municipality(a, stored) + " (" + a.ICAO + ")"
}

// mfr24Airline renders "Name (ICAO)". A bare stored code becomes " (CODE)"
// and no airline at all " (/)".
func mfr24Airline(f *models.Flight) string {
	switch {
	case f.AirlineInfo != nil:
		return f.AirlineInfo.Name + " (" + f.AirlineInfo.ICAO + ")"
	case f.Airline != nil && *f.Airline != "":
		return " (" + *f.Airline + ")"
	default:
		return " (/)"
	}
}

// mfr24Duration renders minutes as HH:MM:00.
func mfr24Duration(minutes *int) string {
	if minutes == nil {
		return ""
	}
	return fmt.Sprintf("%02d:%02d:00", *minutes/60, *minutes%60)
}

// WriteMyFlightradar24CSV writes flights in myFlightradar24's import format.
// Seat numbers and the FR24-internal id columns are always empty.
func WriteMyFlightradar24CSV(w io.Writer, flights []models.Flight) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(MyFlightradar24Columns); err != nil {
		return fmt.Errorf("failed to write myflightradar24 header: %w", err)
	}

	for i := range flights {
		f := &flights[i]
		aircraft := str(f.Airplane)
		if aircraft == "" {
			aircraft = " ()"
		}
		row := []string{
			f.Date,
			str(f.FlightNumber),
			mfr24Airport(f.OriginAirport, f.Origin),
			mfr24Airport(f.DestinationAirport, f.Destination),
			str(f.DepartureTime),
			str(f.ArrivalTime),
			mfr24Duration(f.Duration),
			mfr24Airline(f),
			aircraft,
			str(f.TailNumber),
			"",
			mfr24Code(f.Seat, mfr24Seat),
			mfr24Code(f.TicketClass, mfr24Class),
			mfr24Code(f.Purpose, mfr24Purpose),
			strings.ReplaceAll(str(f.Notes), "\n", " "),
			"", "", "", "",
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write myflightradar24 row for flight %d: %w", f.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
