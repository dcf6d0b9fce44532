// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Login outcomes used as the "outcome" label.
const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
	outcomeLocked  = "locked"
	outcomeError   = "error"
)

var (
	// LoginAttempts counts password logins.
	// Labels:
	//   - outcome: "success", "failure", "locked", "error"
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_login_attempts_total",
			Help: "Total number of password login attempts",
		},
		[]string{"outcome"},
	)

	// LockoutsTotal counts accounts locked after repeated failures.
	LockoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_lockouts_total",
			Help: "Total number of account lockouts",
		},
	)

	// AuthRejections counts requests refused by the authentication
	// middleware.
	// Labels:
	//   - mode: "jwt", "header"
	//   - reason: "missing", "invalid"
	AuthRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_rejections_total",
			Help: "Total number of requests rejected by authentication",
		},
		[]string{"mode", "reason"},
	)
)
