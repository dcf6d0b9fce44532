// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/jetlog/internal/config"
	"github.com/tomtom215/jetlog/internal/database"
	"github.com/tomtom215/jetlog/internal/logging"
	"github.com/tomtom215/jetlog/internal/models"
)

// ErrAccountLocked is returned for logins of a locked account.
var ErrAccountLocked = errors.New("account temporarily locked")

// UserStore is the account persistence auth needs.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string, isAdmin bool) (int64, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	EnsureAdmin(ctx context.Context, username, passwordHash string) (bool, error)
	SetLastLogin(ctx context.Context, username string, at time.Time) error
}

// Service issues tokens for password logins.
type Service struct {
	users   UserStore
	jwt     *JWTManager
	lockout *LockoutManager
}

// NewService creates the login service. jwt may be nil when tokens are not
// issued (header and none modes); Login then fails.
func NewService(users UserStore, jwt *JWTManager, lockout *LockoutManager) *Service {
	return &Service{users: users, jwt: jwt, lockout: lockout}
}

// LockoutError carries the remaining lock time of ErrAccountLocked.
type LockoutError struct {
	Remaining time.Duration
}

func (e *LockoutError) Error() string {
	return fmt.Sprintf("%v, retry in %v", ErrAccountLocked, e.Remaining.Round(time.Second))
}

func (e *LockoutError) Unwrap() error { return ErrAccountLocked }

// Login checks the credentials and returns a bearer token.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.TokenResponse, error) {
	if s.jwt == nil {
		return nil, errors.New("password login is not enabled in this auth mode")
	}
	logger := logging.Ctx(ctx).With().Str("component", "auth").Str("username", req.Username).Logger()

	if s.lockout != nil {
		if locked, remaining := s.lockout.CheckLocked(req.Username); locked {
			LoginAttempts.WithLabelValues(outcomeLocked).Inc()
			return nil, &LockoutError{Remaining: remaining}
		}
	}

	user, err := s.users.GetUserByUsername(ctx, req.Username)
	switch {
	case errors.Is(err, database.ErrNotFound):
		burnCompare(req.Password)
		return nil, s.failed(req.Username)
	case err != nil:
		LoginAttempts.WithLabelValues(outcomeError).Inc()
		return nil, err
	}

	if !CheckPassword(user.PasswordHash, req.Password) {
		logger.Info().Msg("Login rejected")
		return nil, s.failed(req.Username)
	}

	token, err := s.jwt.GenerateToken(user.Username, user.IsAdmin)
	if err != nil {
		LoginAttempts.WithLabelValues(outcomeError).Inc()
		return nil, err
	}
	if s.lockout != nil {
		s.lockout.RecordSuccess(req.Username)
	}
	if err := s.users.SetLastLogin(ctx, user.Username, time.Now()); err != nil {
		logger.Warn().Err(err).Msg("Failed to record last login")
	}

	LoginAttempts.WithLabelValues(outcomeSuccess).Inc()
	logger.Info().Bool("is_admin", user.IsAdmin).Msg("Login succeeded")
	return &models.TokenResponse{AccessToken: token, TokenType: "bearer"}, nil
}

func (s *Service) failed(username string) error {
	LoginAttempts.WithLabelValues(outcomeFailure).Inc()
	if s.lockout == nil {
		return ErrInvalidCredentials
	}
	if locked, remaining := s.lockout.RecordFailedAttempt(username); locked {
		return &LockoutError{Remaining: remaining}
	}
	return ErrInvalidCredentials
}

// EnsureAdmin creates the configured admin account if it does not exist.
// Nothing happens when no admin username is configured.
func EnsureAdmin(ctx context.Context, users UserStore, cfg *config.SecurityConfig) error {
	if cfg.AdminUsername == "" {
		return nil
	}
	if len(cfg.AdminPassword) < minPasswordLength {
		return fmt.Errorf("ADMIN_PASSWORD must be at least %d characters", minPasswordLength)
	}
	hash, err := HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	created, err := users.EnsureAdmin(ctx, cfg.AdminUsername, hash)
	if err != nil {
		return fmt.Errorf("failed to ensure admin user: %w", err)
	}
	if created {
		logging.Info().Str("username", cfg.AdminUsername).Msg("Created admin user")
	}
	return nil
}

// provisionUser returns the account of username, creating a non-admin
// account with an unusable password when it is missing.
func provisionUser(ctx context.Context, users UserStore, username string) (*models.User, error) {
	u, err := users.GetUserByUsername(ctx, username)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	hash, err := HashPassword(uuid.NewString())
	if err != nil {
		return nil, err
	}
	if _, err := users.CreateUser(ctx, username, hash, false); err != nil {
		// Lost a race with a concurrent first request.
		if u, getErr := users.GetUserByUsername(ctx, username); getErr == nil {
			return u, nil
		}
		return nil, err
	}
	logging.Ctx(ctx).Info().Str("username", username).Msg("Provisioned user from auth header")
	return users.GetUserByUsername(ctx, username)
}
