// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

/*
Package sync talks to the third-party flight data providers.

It holds the HTTP clients and the passes built on them:

  - ADSBDBClient: resolves a callsign to an airline ICAO code
  - FR24HistoryClient: lists recent flights for a flight number
  - FlighteraClient: looks up one flight on one date (RapidAPI key required)
  - FR24Client: logged-in myFlightradar24 web session used to add flights
  - Enricher: the airline-from-callsign and detail enrichment passes
  - Syncer: pushes unsynced flights to myFlightradar24

# Circuit Breakers

Every provider call runs through a gobreaker circuit breaker. A breaker
opens when at least 60% of 10 or more requests in a one minute window fail,
and probes again after two minutes. Client errors (4xx other than 429) and
"no airline" answers are a provider answering, so they do not count as
failures. Breaker state is exported through the circuit_breaker_* metrics.

# Rate Limiting

The FR24 history API backs off exponentially on HTTP 429, five attempts
starting at two seconds. Flightera retries a 429 once after five seconds.
Enrichment groups, Flightera lookups and FR24 add-flight posts are paced
with golang.org/x/time/rate limiters.

# Progress

Both enrichment passes report through a progress.Sink:

	tr := progress.NewTracker(sink)
	tr.Start(len(groups))
	tr.Step("AAL100 -> AAL (2 flights)", true, "")
	tr.Done(updated, skipped)

A pass with nothing to do emits a single done frame. A consumer that stops
accepting frames aborts the pass.

# Enrichment Rules

Detail enrichment only writes columns that are NULL. A flight matches an
FR24 history entry by the UTC date of its scheduled departure; times are
converted to the local clock of each airport. Flights without a match fall
back to Flightera when configured and count as skipped otherwise.

# Thread Safety

Clients are safe for concurrent use. An FR24Client holds one login session
and is meant for a single sync.
*/
package sync
