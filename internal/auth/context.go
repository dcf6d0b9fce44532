// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package auth

import (
	"context"

	"github.com/tomtom215/jetlog/internal/models"
)

type contextKey string

// PrincipalContextKey holds the authenticated models.Principal.
const PrincipalContextKey contextKey = "principal"

// ContextWithPrincipal returns ctx carrying p.
func ContextWithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, PrincipalContextKey, p)
}

// PrincipalFromContext returns the authenticated caller.
func PrincipalFromContext(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(PrincipalContextKey).(models.Principal)
	return p, ok && p.Username != ""
}
