// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

// Package services adapts Jetlog's long-running components to suture.Service.
//
//   - HTTPServerService: binds the listener and serves the API; graceful
//     shutdown on context cancellation
//   - RunnerService: wraps any RunWithContext loop, used for the websocket hub
//   - CheckpointService: periodic DuckDB WAL checkpoint in the data layer
//
// The login lockout manager implements suture.Service itself and is added
// to the tree directly.
package services
