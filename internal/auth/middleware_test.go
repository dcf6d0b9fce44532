// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// echoPrincipal writes "username admin" of the authenticated caller.
var echoPrincipal = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, "no principal", http.StatusInternalServerError)
		return
	}
	_, _ = fmt.Fprintf(w, "%s %v", p.Username, p.IsAdmin)
})

func TestAuthenticateJWT(t *testing.T) {
	t.Parallel()

	cfg := testSecurityConfig()
	jwtm, err := NewJWTManager(cfg)
	if err != nil {
		t.Fatal(err)
	}
	m, err := NewMiddleware(cfg, jwtm, nil)
	if err != nil {
		t.Fatal(err)
	}
	token, err := jwtm.GenerateToken("alice", true)
	if err != nil {
		t.Fatal(err)
	}
	handler := m.Authenticate(echoPrincipal)

	tests := []struct {
		name     string
		setup    func(r *http.Request)
		wantCode int
		wantBody string
	}{
		{"bearer header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, http.StatusOK, "alice true"},
		{"lowercase scheme", func(r *http.Request) { r.Header.Set("Authorization", "bearer "+token) }, http.StatusOK, "alice true"},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "token", Value: token}) }, http.StatusOK, "alice true"},
		{"websocket query", func(r *http.Request) {
			r.Header.Set("Upgrade", "websocket")
			q := r.URL.Query()
			q.Set("token", token)
			r.URL.RawQuery = q.Encode()
		}, http.StatusOK, "alice true"},
		{"query without upgrade", func(r *http.Request) {
			q := r.URL.Query()
			q.Set("token", token)
			r.URL.RawQuery = q.Encode()
		}, http.StatusUnauthorized, ""},
		{"missing", func(*http.Request) {}, http.StatusUnauthorized, ""},
		{"basic scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic abc") }, http.StatusUnauthorized, ""},
		{"garbage token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
			tt.setup(req)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantCode)
			}
			if tt.wantBody != "" && rr.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rr.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestAuthenticateHeader(t *testing.T) {
	t.Parallel()

	users := newMemUsers()
	mustUser(t, users, "root", "correct-horse", true)

	cfg := testSecurityConfig()
	cfg.AuthMode = ModeHeader
	cfg.AuthHeader = "Remote-User"
	m, err := NewMiddleware(cfg, nil, users)
	if err != nil {
		t.Fatal(err)
	}
	handler := m.Authenticate(echoPrincipal)

	tests := []struct {
		user     string
		wantCode int
		wantBody string
	}{
		{"root", http.StatusOK, "root true"},
		{"newcomer", http.StatusOK, "newcomer false"},
		{"", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
		if tt.user != "" {
			req.Header.Set("Remote-User", tt.user)
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != tt.wantCode || (tt.wantBody != "" && rr.Body.String() != tt.wantBody) {
			t.Errorf("user %q: got %d %q, want %d %q", tt.user, rr.Code, rr.Body.String(), tt.wantCode, tt.wantBody)
		}
	}

	if _, err := users.GetUserByUsername(context.Background(), "newcomer"); err != nil {
		t.Errorf("newcomer not provisioned: %v", err)
	}
}

func TestAuthenticateNone(t *testing.T) {
	t.Parallel()

	cfg := testSecurityConfig()
	cfg.AuthMode = ModeNone
	m, err := NewMiddleware(cfg, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	m.Authenticate(echoPrincipal).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Body.String() != "admin true" {
		t.Errorf("body = %q, want %q", rr.Body.String(), "admin true")
	}
}

func TestNewMiddlewareErrors(t *testing.T) {
	t.Parallel()

	jwtMode := testSecurityConfig()
	headerMode := testSecurityConfig()
	headerMode.AuthMode = ModeHeader
	unknown := testSecurityConfig()
	unknown.AuthMode = "basic"

	if _, err := NewMiddleware(jwtMode, nil, nil); err == nil {
		t.Error("jwt mode without manager: expected error")
	}
	if _, err := NewMiddleware(headerMode, nil, newMemUsers()); err == nil {
		t.Error("header mode without header name: expected error")
	}
	if _, err := NewMiddleware(unknown, nil, nil); err == nil {
		t.Error("unknown mode: expected error")
	}
}

func TestUnauthorizedHook(t *testing.T) {
	t.Parallel()

	cfg := testSecurityConfig()
	jwtm, _ := NewJWTManager(cfg) //nolint:errcheck // valid test config
	m, err := NewMiddleware(cfg, jwtm, nil)
	if err != nil {
		t.Fatal(err)
	}
	var gotMessage string
	m.Unauthorized = func(w http.ResponseWriter, _ *http.Request, message string) {
		gotMessage = message
		w.WriteHeader(http.StatusTeapot)
	}

	rr := httptest.NewRecorder()
	m.Authenticate(echoPrincipal).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusTeapot || gotMessage != "Unauthorized: missing credentials" {
		t.Errorf("got %d %q", rr.Code, gotMessage)
	}
}
