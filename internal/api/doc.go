// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

/*
Package api provides the HTTP REST API layer for Jetlog.

Key Components:

  - Router: chi route tree and middleware stack
  - Handler: request handlers, split by route group
  - ResponseWriter: the JSON envelope and error mapping
  - sseWriter: server-sent event framing for the streamed passes

Endpoints:

All routes under /api require authentication except /api/auth/login.

 1. Flights (/api/flights): create, bulk create, get or list, patch and
    delete, plus /distance and /duration calculators.
 2. Passes: POST /api/flights/connections, /airlines_from_callsigns and
    /enrich answer with text/event-stream. Each frame is
    "data: <json>\n\n" carrying one progress event. The same frames are
    copied to the caller's /api/ws sockets.
 3. Statistics (/api/statistics): snapshot for a user and date range.
 4. Reference data (/api/airports, /api/airlines).
 5. FR24 sync (/api/fr24/sync) and exports (/api/exporting/{format}).
 6. Unauthenticated: /health, /health/live, /config and /metrics.

Responses:

Every JSON response uses models.APIResponse:

	{"success": true, "data": 42, "meta": {"timestamp": "...", "query_time_ms": 3}}

Errors carry a machine-readable code and the request id:

	{"success": false, "error": {"code": "FORBIDDEN", "message": "...", "request_id": "..."}}

Status mapping: validation 400, unauthenticated 401, forbidden 403, missing
404, unknown airport or timezone 422, external APIs disabled 400, FR24
login failure 502, store failure 500.

Usage Example:

	handler := api.NewHandler(db, cfg, authService, statsService, wsHub)
	router := api.NewRouter(handler, authMiddleware, api.ChiMiddlewareConfigFromSecurity(&cfg.Security))
	srv := &http.Server{Handler: router.SetupChi()}

Thread Safety:

All handlers are safe for concurrent use. A client disconnect cancels the
request context, which stops a running pass at its next item.
*/
package api
