// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package auth

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/jetlog/internal/logging"
)

// LockoutConfig holds configuration for the account lockout system.
type LockoutConfig struct {
	// MaxAttempts is the number of failed attempts before lockout.
	MaxAttempts int

	// LockoutDuration is the base lockout period. It doubles on each
	// subsequent lockout up to MaxLockoutDuration.
	LockoutDuration    time.Duration
	MaxLockoutDuration time.Duration

	// CleanupInterval is how often expired entries are dropped.
	CleanupInterval time.Duration

	Enabled bool
}

// DefaultLockoutConfig returns the login lockout defaults.
func DefaultLockoutConfig() LockoutConfig {
	return LockoutConfig{
		MaxAttempts:        5,
		LockoutDuration:    15 * time.Minute,
		MaxLockoutDuration: 24 * time.Hour,
		CleanupInterval:    5 * time.Minute,
		Enabled:            true,
	}
}

// lockoutEntry tracks failed logins of one username.
type lockoutEntry struct {
	failedAttempts int
	lockoutCount   int
	lastAttempt    time.Time
	lockedUntil    time.Time
}

// LockoutManager locks a username after repeated failed logins.
type LockoutManager struct {
	mu      sync.Mutex
	config  LockoutConfig
	entries map[string]*lockoutEntry
	now     func() time.Time
}

// NewLockoutManager creates an in-memory lockout manager.
func NewLockoutManager(config LockoutConfig) *LockoutManager {
	return &LockoutManager{
		config:  config,
		entries: make(map[string]*lockoutEntry),
		now:     time.Now,
	}
}

// CheckLocked reports whether subject is locked and for how long.
func (m *LockoutManager) CheckLocked(subject string) (bool, time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.config.Enabled {
		return false, 0
	}
	e, ok := m.entries[subject]
	if !ok {
		return false, 0
	}
	if now := m.now(); now.Before(e.lockedUntil) {
		return true, e.lockedUntil.Sub(now)
	}
	return false, 0
}

// RecordFailedAttempt counts a failed login and reports whether it locked
// the subject.
func (m *LockoutManager) RecordFailedAttempt(subject string) (bool, time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.config.Enabled {
		return false, 0
	}

	now := m.now()
	e, ok := m.entries[subject]
	if !ok {
		e = &lockoutEntry{}
		m.entries[subject] = e
	}
	e.failedAttempts++
	e.lastAttempt = now

	if e.failedAttempts < m.config.MaxAttempts {
		return false, 0
	}

	d := m.lockoutDuration(e.lockoutCount)
	e.lockoutCount++
	e.failedAttempts = 0
	e.lockedUntil = now.Add(d)
	LockoutsTotal.Inc()
	logging.Warn().Str("username", subject).Dur("duration", d).Msg("Account locked after failed logins")
	return true, d
}

// lockoutDuration doubles the base period per previous lockout.
func (m *LockoutManager) lockoutDuration(previous int) time.Duration {
	d := m.config.LockoutDuration
	for i := 0; i < previous; i++ {
		d *= 2
		if m.config.MaxLockoutDuration > 0 && d >= m.config.MaxLockoutDuration {
			return m.config.MaxLockoutDuration
		}
	}
	return d
}

// RecordSuccess clears the subject's failed attempts.
func (m *LockoutManager) RecordSuccess(subject string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, subject)
}

// Cleanup drops unlocked entries idle for longer than the maximum lockout
// and returns how many were removed.
func (m *LockoutManager) Cleanup() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	threshold := now.Add(-m.config.MaxLockoutDuration)
	removed := 0
	for subject, e := range m.entries {
		if now.After(e.lockedUntil) && e.lastAttempt.Before(threshold) {
			delete(m.entries, subject)
			removed++
		}
	}
	return removed
}

// Serve runs the cleanup loop until ctx is done.
func (m *LockoutManager) Serve(ctx context.Context) error {
	interval := m.config.CleanupInterval
	if interval <= 0 {
		interval = DefaultLockoutConfig().CleanupInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := m.Cleanup(); n > 0 {
				logging.Debug().Int("entries", n).Msg("Cleaned up expired lockout entries")
			}
		}
	}
}

// String names the service in supervisor logs.
func (m *LockoutManager) String() string {
	return "login-lockout"
}
