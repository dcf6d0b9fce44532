// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

/*
Package models defines the data structures shared across Jetlog.

Key Components:

  - Flight: a logged flight owned by one user, with an optional connection
    to the next leg of the same itinerary
  - Airport, Airline: seeded reference data keyed by ICAO
  - User: an account with an admin flag and a public profile switch
  - ProgressEvent: one frame of a long-running pass (start, progress, done, error)
  - StatisticsSnapshot: an on-demand report computed over a filtered flight set
  - APIResponse: the JSON envelope used by every handler

Nullable columns are pointers. JSON field names are camelCase to match the
web client.

Thread Safety:

Values in this package carry no synchronization. Share them read-only or copy.
*/
package models
