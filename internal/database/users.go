// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/jetlog/internal/models"
)

// CreateUser inserts an account with an already hashed password.
func (db *DB) CreateUser(ctx context.Context, username, passwordHash string, isAdmin bool) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if username == "" || passwordHash == "" {
		return 0, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}

	var id int64
	err := db.conn.QueryRowContext(ctx,
		`INSERT INTO users (username, password_hash, is_admin) VALUES (?, ?, ?) RETURNING id`,
		username, passwordHash, isAdmin).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create user %s: %w", username, err)
	}
	return id, nil
}

// GetUserByUsername returns the account or ErrNotFound.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var (
		u         models.User
		lastLogin sql.NullTime
	)
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, username, password_hash, is_admin, public_profile, created_on, last_login
		FROM users WHERE username = ?`, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsAdmin, &u.PublicProfile, &u.CreatedOn, &lastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", username, err)
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}
	return &u, nil
}

// EnsureAdmin creates the admin account unless a user with that name
// exists. It reports whether an account was created.
func (db *DB) EnsureAdmin(ctx context.Context, username, passwordHash string) (bool, error) {
	_, err := db.GetUserByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}
	if _, err := db.CreateUser(ctx, username, passwordHash, true); err != nil {
		return false, err
	}
	return true, nil
}

// SetLastLogin records a successful login.
func (db *DB) SetLastLogin(ctx context.Context, username string, at time.Time) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if _, err := db.execWithRetry(ctx, `UPDATE users SET last_login = ? WHERE username = ?`, at.UTC(), username); err != nil {
		return fmt.Errorf("failed to record login for %s: %w", username, err)
	}
	return nil
}

// SetPublicProfile toggles whether other users may read the user's flights
// and statistics.
func (db *DB) SetPublicProfile(ctx context.Context, username string, public bool) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	n, err := db.execWithRetry(ctx, `UPDATE users SET public_profile = ? WHERE username = ?`, public, username)
	if err != nil {
		return fmt.Errorf("failed to update profile of %s: %w", username, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// isPublicProfile reports false for unknown users.
func (db *DB) isPublicProfile(ctx context.Context, username string) (bool, error) {
	var public bool
	err := db.conn.QueryRowContext(ctx, `SELECT public_profile FROM users WHERE username = ?`, username).Scan(&public)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up profile of %s: %w", username, err)
	}
	return public, nil
}
