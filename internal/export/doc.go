// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

// Package export renders a user's flights as downloadable files.
//
//   - csv: every flight attribute except id, username and connection
//   - ical: one VEVENT per flight
//   - myflightradar24: the myFlightradar24 import CSV
//   - kml: airports as points and routes as tessellated line strings
//
// Writers expect flights as returned by the store, with OriginAirport and
// DestinationAirport attached and distances in kilometres. A flight whose
// airports were not attached is written with its stored codes only.
package export
