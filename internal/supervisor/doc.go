// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

/*
Package supervisor runs Jetlog's long-lived services under suture/v4.

	root (jetlog)
	├── data-layer       duckdb-checkpoint
	├── messaging-layer  websocket-hub
	└── api-layer        http-server, login-lockout

Each layer is its own suture.Supervisor, so a service that keeps failing
backs off inside its layer while the others keep running. Supervisor
events (restarts, backoff, timeouts) go through sutureslog to the slog
logger from logging.NewSlogLogger, which writes through zerolog.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewCheckpointService(db, 5*time.Minute))
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(lockout)
	tree.AddAPIService(services.NewHTTPServerService(server, addr, 10*time.Second))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = tree.Serve(ctx)

The service adapters live in the services subpackage.
*/
package supervisor
