// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

// Package flighttime turns local departure and arrival wall-clock times into
// UTC instants and flight durations.
//
// Durations follow one rule: when the arrival clock time is at or before the
// departure clock time the flight is assumed to cross midnight, and one day
// is added to the arrival before differencing. The comparison uses the
// values the caller passes in, so after UTC conversion it compares UTC
// clocks. The rollover is applied exactly once here; callers must not add a
// day of their own.
package flighttime

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	// DateLayout is the stored flight date format.
	DateLayout = "2006-01-02"

	// ClockLayout is the stored local time format.
	ClockLayout = "15:04"

	day = 24 * time.Hour
)

var (
	// ErrUnknownTimezone means an airport's IANA zone could not be loaded.
	// This is a reference data problem, not a request problem.
	ErrUnknownTimezone = errors.New("unknown timezone")

	// ErrInvalidTime means a date or HH:MM value did not parse.
	ErrInvalidTime = errors.New("invalid date or time")
)

var locations sync.Map // zone name -> *time.Location

// ParseLocal combines a YYYY-MM-DD date and an HH:MM time into a naive
// timestamp located in UTC.
func ParseLocal(date, hhmm string) (time.Time, error) {
	t, err := time.Parse(DateLayout+" "+ClockLayout, date+" "+hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q %q", ErrInvalidTime, date, hhmm)
	}
	return t, nil
}

// Location returns the named IANA zone, memoised.
func Location(tz string) (*time.Location, error) {
	if tz == "" {
		return nil, fmt.Errorf("%w: empty zone name", ErrUnknownTimezone)
	}
	if loc, ok := locations.Load(tz); ok {
		return loc.(*time.Location), nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTimezone, tz)
	}
	locations.Store(tz, loc)
	return loc, nil
}

// LocalToUTC interprets date and hhmm as wall-clock time in tz and returns
// the UTC instant.
func LocalToUTC(date, hhmm, tz string) (time.Time, error) {
	naive, err := ParseLocal(date, hhmm)
	if err != nil {
		return time.Time{}, err
	}
	loc, err := Location(tz)
	if err != nil {
		return time.Time{}, err
	}
	return toZone(naive, loc).UTC(), nil
}

func toZone(naive time.Time, loc *time.Location) time.Time {
	y, m, d := naive.Date()
	hh, mm, ss := naive.Clock()
	return time.Date(y, m, d, hh, mm, ss, 0, loc)
}

// DurationMinutes returns the minutes from dep to arr, always in [0, 1439].
func DurationMinutes(dep, arr time.Time) int {
	if clockSeconds(arr) <= clockSeconds(dep) {
		arr = arr.Add(day)
	}
	delta := arr.Sub(dep) % day
	if delta < 0 {
		delta += day
	}
	return int(delta / time.Minute)
}

func clockSeconds(t time.Time) int {
	h, m, s := t.Clock()
	return h*3600 + m*60 + s
}

// DurationInput holds everything needed to derive a flight duration.
type DurationInput struct {
	Date          string
	DepartureTime string
	ArrivalDate   string // defaults to Date
	ArrivalTime   string
	OriginTZ      string
	DestinationTZ string
	UseTimezones  bool
}

// ComputeDuration derives the flight duration in minutes. Without timezones
// the naive local times are differenced directly.
func ComputeDuration(in DurationInput) (int, error) {
	arrivalDate := in.ArrivalDate
	if arrivalDate == "" {
		arrivalDate = in.Date
	}

	if !in.UseTimezones {
		dep, err := ParseLocal(in.Date, in.DepartureTime)
		if err != nil {
			return 0, err
		}
		arr, err := ParseLocal(arrivalDate, in.ArrivalTime)
		if err != nil {
			return 0, err
		}
		return DurationMinutes(dep, arr), nil
	}

	dep, err := LocalToUTC(in.Date, in.DepartureTime, in.OriginTZ)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve departure: %w", err)
	}
	arr, err := LocalToUTC(arrivalDate, in.ArrivalTime, in.DestinationTZ)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve arrival: %w", err)
	}
	return DurationMinutes(dep, arr), nil
}

// LocalClock formats a unix timestamp shifted by offsetSeconds as HH:MM.
// Used for provider payloads that carry epoch times plus a zone offset.
func LocalClock(unix int64, offsetSeconds int) string {
	return time.Unix(unix+int64(offsetSeconds), 0).UTC().Format(ClockLayout)
}

// UTCDate formats a unix timestamp as a UTC YYYY-MM-DD date.
func UTCDate(unix int64) string {
	return time.Unix(unix, 0).UTC().Format(DateLayout)
}

// ValidClock reports whether s is a valid HH:MM time.
func ValidClock(s string) bool {
	if len(s) != 5 {
		return false
	}
	_, err := time.Parse(ClockLayout, s)
	return err == nil
}
