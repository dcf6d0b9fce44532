// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered on the default registry through promauto and are
exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:3000/metrics

# Available Metrics

API Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: Requests in flight (gauge)
  - api_rate_limit_hits_total: Rate limit rejections (counter)
    Labels: endpoint

Batch Pass Metrics (connection inference, enrichment, FR24 sync):
  - pass_duration_seconds: Pass duration (histogram)
    Labels: pass
  - pass_items_total: Items handled (counter)
    Labels: pass, outcome (updated, skipped, failed)
  - pass_errors_total: Passes that ended with a setup failure (counter)
    Labels: pass

External API Metrics:
  - external_requests_total: Calls to adsbdb, FR24 and Flightera (counter)
    Labels: provider, status
  - external_request_duration_seconds: Call latency (histogram)
    Labels: provider

Cache Metrics:
  - cache_hits_total, cache_misses_total, cache_invalidations_total
    Labels: cache_type (statistics, fr24_airport, fr24_airline)

Circuit Breaker Metrics:
  - circuit_breaker_state: Current state (gauge)
    Labels: name
    Values: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total: Requests by result (counter)
    Labels: name, result (success, failure, rejected)
  - circuit_breaker_consecutive_failures: Current failure streak (gauge)
  - circuit_breaker_state_transitions_total: Transitions (counter)
    Labels: name, from_state, to_state

WebSocket Metrics:
  - websocket_connections, websocket_messages_sent_total,
    websocket_messages_dropped_total, websocket_errors_total

# Usage

	start := time.Now()
	res, err := engine.Infer(ctx, username, sink)
	metrics.RecordPass(metrics.PassConnections, time.Since(start), res.Updated, res.Skipped, 0, err)

# Thread Safety

All collectors and helpers are safe for concurrent use.
*/
package metrics
