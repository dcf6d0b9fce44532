// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

/*
Package middleware provides the infrastructure middleware of the HTTP API.

  - RequestID: assigns or forwards X-Request-ID and seeds the logging context
  - AccessLog: one debug line per request
  - PrometheusMetrics: request count, latency and in-flight gauge, labelled
    by chi route pattern
  - Compression: gzip for large bodies such as exports

All middleware here has the http.HandlerFunc shape. The api package adapts
it to chi's func(http.Handler) http.Handler with chiMiddleware.

The status-capturing writer used by PrometheusMetrics and AccessLog passes
Flush and Hijack through, so server-sent event streams and websocket
upgrades can sit behind it.
*/
package middleware
