// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestLockout(now *time.Time) *LockoutManager {
	cfg := DefaultLockoutConfig()
	cfg.MaxAttempts = 3
	m := NewLockoutManager(cfg)
	m.now = func() time.Time { return *now }
	return m
}

func TestLockoutLocksAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := newTestLockout(&now)

	for i := 1; i < 3; i++ {
		if locked, _ := m.RecordFailedAttempt("alice"); locked {
			t.Fatalf("locked after %d attempts", i)
		}
	}
	locked, d := m.RecordFailedAttempt("alice")
	if !locked || d != 15*time.Minute {
		t.Fatalf("third attempt = %v, %v, want locked for 15m", locked, d)
	}

	if locked, remaining := m.CheckLocked("alice"); !locked || remaining != 15*time.Minute {
		t.Errorf("CheckLocked() = %v, %v", locked, remaining)
	}
	if locked, _ := m.CheckLocked("bob"); locked {
		t.Error("other users must not be locked")
	}

	now = now.Add(16 * time.Minute)
	if locked, _ := m.CheckLocked("alice"); locked {
		t.Error("lock should expire")
	}
}

func TestLockoutBackoff(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := newTestLockout(&now)

	want := []time.Duration{15 * time.Minute, 30 * time.Minute, time.Hour}
	for i, w := range want {
		var d time.Duration
		for j := 0; j < 3; j++ {
			_, d = m.RecordFailedAttempt("alice")
		}
		if d != w {
			t.Errorf("lockout %d = %v, want %v", i+1, d, w)
		}
		now = now.Add(d + time.Second)
	}

	m.config.MaxLockoutDuration = 45 * time.Minute
	for j := 0; j < 3; j++ {
		_, _ = m.RecordFailedAttempt("alice")
	}
	if _, remaining := m.CheckLocked("alice"); remaining != 45*time.Minute {
		t.Errorf("capped lockout = %v, want 45m", remaining)
	}
}

func TestLockoutSuccessAndCleanup(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := newTestLockout(&now)

	_, _ = m.RecordFailedAttempt("alice")
	_, _ = m.RecordFailedAttempt("alice")
	m.RecordSuccess("alice")
	if locked, _ := m.RecordFailedAttempt("alice"); locked {
		t.Error("success should reset the failure count")
	}

	_, _ = m.RecordFailedAttempt("bob")
	now = now.Add(25 * time.Hour)
	if n := m.Cleanup(); n != 2 {
		t.Errorf("Cleanup() = %d, want 2", n)
	}
}

func TestLockoutDisabled(t *testing.T) {
	t.Parallel()

	cfg := DefaultLockoutConfig()
	cfg.Enabled = false
	cfg.MaxAttempts = 1
	m := NewLockoutManager(cfg)
	if locked, _ := m.RecordFailedAttempt("alice"); locked {
		t.Error("disabled manager must not lock")
	}
}

func TestLockoutServeStops(t *testing.T) {
	t.Parallel()

	cfg := DefaultLockoutConfig()
	cfg.CleanupInterval = time.Millisecond
	m := NewLockoutManager(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := m.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve() = %v, want DeadlineExceeded", err)
	}
}
