// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

/*
Package main is the entry point for the Jetlog server.

Jetlog is a self-hosted personal flight logbook. It stores flights in
DuckDB, resolves airports and airlines against bundled reference data,
computes travel statistics, and optionally enriches flights from adsbdb,
Flightradar24 and Flightera.

# Application Architecture

The server runs under a Suture v4 supervisor tree:

	RootSupervisor ("jetlog")
	├── DataSupervisor ("data-layer")
	│   └── DuckDB checkpoint (every 5m)
	├── MessagingSupervisor ("messaging-layer")
	│   └── WebSocket hub (progress mirror)
	└── APISupervisor ("api-layer")
	    ├── Login lockout janitor (jwt mode)
	    └── HTTP server

Initialization order:

 1. Configuration: Koanf v2 over defaults, config.yaml, .env and environment
 2. Logging: zerolog with JSON or console output
 3. Database: DuckDB, migrations and reference data seeding
 4. Authorization: Casbin enforcer installed on the store
 5. Statistics: snapshot cache, invalidated on every flight write
 6. Authentication: jwt, header or none mode
 7. HTTP: chi router and middleware stack
 8. Supervisor tree

# Configuration

	# Server
	HTTP_PORT=3000
	BASE_URL=/
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console

	# Storage
	DATA_PATH=./data             # jetlog.duckdb lives here
	DUCKDB_PATH=                 # overrides the file location
	AIRPORTS_CSV=                # OurAirports airports.csv; bundled sample if unset
	AIRLINES_CSV=                # airlines.csv; bundled sample if unset

	# Authentication
	AUTH_MODE=jwt                # jwt, header or none
	SECRET_KEY=<32+ chars>       # jwt mode
	ADMIN_USERNAME=admin
	ADMIN_PASSWORD=<password>
	AUTH_HEADER=Remote-User      # header mode, set by the reverse proxy

	# External providers
	ENABLE_EXTERNAL_APIS=false
	FR24_EMAIL=
	FR24_PASSWORD=
	FLIGHTERA_API_KEY=

A .env file in the working directory (or DOTENV_PATH) is read before the
process environment.

# Signal Handling

On SIGINT or SIGTERM the tree stops the HTTP server (10s grace), the hub
and the checkpoint service. Closing the database checkpoints it once more.

# Usage Examples

Behind an authenticating reverse proxy:

	export AUTH_MODE=header AUTH_HEADER=Remote-User
	./jetlog

Standalone with password login:

	export SECRET_KEY=$(openssl rand -base64 32)
	export ADMIN_USERNAME=admin ADMIN_PASSWORD=secure-password
	./jetlog
*/
package main
