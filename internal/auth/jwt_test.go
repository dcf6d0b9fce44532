// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/jetlog/internal/config"
)

func TestNewJWTManager(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		secret  string
		minutes int
		wantErr string
	}{
		{"valid secret", testSecret, 60, ""},
		{"empty secret", "", 60, "required"},
		{"short secret", "too-short", 60, "at least 32"},
		{"zero duration", testSecret, 0, "positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			manager, err := NewJWTManager(&config.SecurityConfig{SecretKey: tt.secret, TokenDurationMinutes: tt.minutes})
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("NewJWTManager() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil || manager == nil {
				t.Fatalf("NewJWTManager() = %v, %v", manager, err)
			}
		})
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	t.Parallel()

	manager, err := NewJWTManager(testSecurityConfig())
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}

	tests := []struct {
		username string
		isAdmin  bool
	}{
		{"alice", false},
		{"admin", true},
	}
	for _, tt := range tests {
		token, err := manager.GenerateToken(tt.username, tt.isAdmin)
		if err != nil {
			t.Fatalf("GenerateToken() error = %v", err)
		}
		claims, err := manager.ValidateToken(token)
		if err != nil {
			t.Fatalf("ValidateToken() error = %v", err)
		}
		p := claims.Principal()
		if p.Username != tt.username || p.IsAdmin != tt.isAdmin {
			t.Errorf("principal = %+v, want {%s %v}", p, tt.username, tt.isAdmin)
		}
		if claims.Subject != tt.username {
			t.Errorf("subject = %q, want %q", claims.Subject, tt.username)
		}
	}
}

func TestValidateTokenRejects(t *testing.T) {
	t.Parallel()

	manager, err := NewJWTManager(testSecurityConfig())
	if err != nil {
		t.Fatal(err)
	}

	other, err := NewJWTManager(&config.SecurityConfig{
		SecretKey:            strings.Repeat("x", 40),
		TokenDurationMinutes: 60,
	})
	if err != nil {
		t.Fatal(err)
	}
	foreign, _ := other.GenerateToken("alice", true) //nolint:errcheck // checked by validation below

	expiredManager, _ := NewJWTManager(testSecurityConfig()) //nolint:errcheck // same config as above
	expiredManager.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _ := expiredManager.GenerateToken("alice", false) //nolint:errcheck // checked by validation below

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Username: "alice", IsAdmin: true})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"malformed", "not.a.token"},
		{"wrong secret", foreign},
		{"expired", expired},
		{"alg none", unsigned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := manager.ValidateToken(tt.token); err == nil {
				t.Error("ValidateToken() expected error, got nil")
			}
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct-horse")
	if err != nil {
		t.Fatal(err)
	}
	if hash == "correct-horse" {
		t.Fatal("hash equals the password")
	}
	if !CheckPassword(hash, "correct-horse") {
		t.Error("CheckPassword() = false for the right password")
	}
	if CheckPassword(hash, "battery-staple") {
		t.Error("CheckPassword() = true for a wrong password")
	}
	if _, err := HashPassword(""); err == nil {
		t.Error("HashPassword(\"\") expected error")
	}
}
