// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

/*
Package auth authenticates API callers.

Three modes are supported, selected with AUTH_MODE:

  - jwt (default): POST /api/auth/login checks a bcrypt password and
    returns an HS256 token; requests carry it as a Bearer header or the
    token cookie
  - header: a trusted reverse proxy puts the username in AUTH_HEADER;
    unknown users are provisioned as non-admins
  - none: every request acts as the configured admin

The middleware stores a models.Principal in the request context:

	p, ok := auth.PrincipalFromContext(r.Context())

Repeated failed logins lock the username for 15 minutes, doubling per
lockout up to 24 hours.
*/
package auth
