// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tomtom215/jetlog/internal/flighttime"
	"github.com/tomtom215/jetlog/internal/models"
)

const (
	icalDateTime = "20060102T150405"
	icalDate     = "20060102"
)

var icalEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\r\n", `\n`, "\n", `\n`)

// now is replaced in tests.
var now = time.Now

// WriteICal writes a VCALENDAR with one VEVENT per flight. Events with a
// departure time and a duration are timed in the departure airport's local
// wall clock (floating time); the rest are all-day events on the flight
// date.
func WriteICal(w io.Writer, flights []models.Flight) error {
	bw := bufio.NewWriter(w)
	stamp := now().UTC().Format(icalDateTime) + "Z"

	line := func(s string) {
		_, _ = bw.WriteString(s)
		_, _ = bw.WriteString("\r\n")
	}

	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:-//Jetlog//Flight Logbook//EN")
	line("CALSCALE:GREGORIAN")

	for i := range flights {
		f := &flights[i]
		line("BEGIN:VEVENT")
		line(fmt.Sprintf("UID:flight-%d@jetlog", f.ID))
		line("DTSTAMP:" + stamp)
		line("SUMMARY:" + icalEscaper.Replace(fmt.Sprintf("Flight from %s to %s",
			municipality(f.OriginAirport, f.Origin), municipality(f.DestinationAirport, f.Destination))))

		desc := "Origin: " + airportLabel(f.OriginAirport, f.Origin) +
			"\nDestination: " + airportLabel(f.DestinationAirport, f.Destination)
		if f.Notes != nil && *f.Notes != "" {
			desc += "\n\nNotes: " + *f.Notes
		}
		line("DESCRIPTION:" + icalEscaper.Replace(desc))

		if err := writeEventTimes(line, f); err != nil {
			return err
		}
		line("END:VEVENT")
	}

	line("END:VCALENDAR")
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write ical: %w", err)
	}
	return nil
}

func writeEventTimes(line func(string), f *models.Flight) error {
	if f.DepartureTime != nil && *f.DepartureTime != "" && f.Duration != nil && *f.Duration > 0 {
		dep, err := flighttime.ParseLocal(f.Date, *f.DepartureTime)
		if err != nil {
			return fmt.Errorf("failed to parse departure of flight %d: %w", f.ID, err)
		}
		arr := dep.Add(time.Duration(*f.Duration) * time.Minute)
		line("DTSTART:" + dep.Format(icalDateTime))
		line("DTEND:" + arr.Format(icalDateTime))
		return nil
	}

	day, err := time.Parse(time.DateOnly, f.Date)
	if err != nil {
		return fmt.Errorf("failed to parse date of flight %d: %w", f.ID, err)
	}
	// All-day DTEND is exclusive.
	line("DTSTART;VALUE=DATE:" + day.Format(icalDate))
	line("DTEND;VALUE=DATE:" + day.AddDate(0, 0, 1).Format(icalDate))
	return nil
}
