// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tomtom215/jetlog/internal/config"
	"github.com/tomtom215/jetlog/internal/logging"
	"github.com/tomtom215/jetlog/internal/models"
)

// Authentication modes.
const (
	ModeJWT    = "jwt"
	ModeHeader = "header"
	ModeNone   = "none"
)

// defaultNoneUser is the caller in none mode when no admin is configured.
const defaultNoneUser = "admin"

// tokenCookie is the cookie the web client stores the token in.
const tokenCookie = "token"

// Middleware authenticates requests and stores the caller in the context.
type Middleware struct {
	mode     string
	jwt      *JWTManager
	header   string
	users    UserStore
	noneUser string

	// Unauthorized writes the 401 response. It defaults to http.Error.
	Unauthorized func(w http.ResponseWriter, r *http.Request, message string)
}

// NewMiddleware creates the middleware for cfg.AuthMode. jwt is required in
// jwt mode and users in header mode.
func NewMiddleware(cfg *config.SecurityConfig, jwt *JWTManager, users UserStore) (*Middleware, error) {
	m := &Middleware{
		mode:     cfg.AuthMode,
		jwt:      jwt,
		header:   cfg.AuthHeader,
		users:    users,
		noneUser: cfg.AdminUsername,
		Unauthorized: func(w http.ResponseWriter, _ *http.Request, message string) {
			http.Error(w, message, http.StatusUnauthorized)
		},
	}
	if m.noneUser == "" {
		m.noneUser = defaultNoneUser
	}

	switch m.mode {
	case ModeJWT:
		if jwt == nil {
			return nil, errors.New("jwt mode requires a JWT manager")
		}
	case ModeHeader:
		if m.header == "" || users == nil {
			return nil, errors.New("header mode requires AUTH_HEADER and a user store")
		}
	case ModeNone:
		logging.Warn().Str("username", m.noneUser).Msg("Authentication disabled, every request acts as admin")
	default:
		return nil, fmt.Errorf("unknown auth mode %q", m.mode)
	}
	return m, nil
}

// Mode returns the configured authentication mode.
func (m *Middleware) Mode() string { return m.mode }

// Authenticate is middleware that enforces authentication
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			p      models.Principal
			reason string
		)
		switch m.mode {
		case ModeNone:
			p = models.Principal{Username: m.noneUser, IsAdmin: true}
		case ModeHeader:
			p, reason = m.fromHeader(r)
		default:
			p, reason = m.fromToken(r)
		}

		if reason != "" {
			AuthRejections.WithLabelValues(m.mode, reason).Inc()
			m.Unauthorized(w, r, "Unauthorized: "+reason+" credentials")
			return
		}

		ctx := ContextWithPrincipal(r.Context(), p)
		ctx = logging.ContextWithUsername(ctx, p.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) fromHeader(r *http.Request) (models.Principal, string) {
	username := strings.TrimSpace(r.Header.Get(m.header))
	if username == "" {
		return models.Principal{}, "missing"
	}
	u, err := provisionUser(r.Context(), m.users, username)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("username", username).Msg("Header user lookup failed")
		return models.Principal{}, "invalid"
	}
	return models.Principal{Username: u.Username, IsAdmin: u.IsAdmin}, ""
}

func (m *Middleware) fromToken(r *http.Request) (models.Principal, string) {
	token := extractToken(r)
	if token == "" {
		return models.Principal{}, "missing"
	}
	claims, err := m.jwt.ValidateToken(token)
	if err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Token validation failed")
		return models.Principal{}, "invalid"
	}
	return claims.Principal(), ""
}

// extractToken reads a bearer token from the Authorization header, the
// token cookie or, for websocket upgrades, the token query parameter.
func extractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return ""
		}
		return strings.TrimSpace(token)
	}
	if c, err := r.Cookie(tokenCookie); err == nil {
		return c.Value
	}
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return r.URL.Query().Get("token")
	}
	return ""
}
