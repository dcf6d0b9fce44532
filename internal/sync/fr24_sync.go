// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/jetlog/internal/config"
	"github.com/tomtom215/jetlog/internal/logging"
	"github.com/tomtom215/jetlog/internal/metrics"
	"github.com/tomtom215/jetlog/internal/models"
)

// fr24PostInterval paces add-flight posts within one sync.
const fr24PostInterval = 500 * time.Millisecond

var (
	// ErrExternalDisabled is returned by every pass when outbound calls are
	// switched off.
	ErrExternalDisabled = errors.New("external APIs are disabled")

	// ErrFR24NotConfigured is returned when no FR24 credentials are set.
	ErrFR24NotConfigured = errors.New("FR24 credentials are not configured")
)

// SyncStore is the persistence the FR24 sync needs.
type SyncStore interface {
	ListFlights(ctx context.Context, actor models.Principal, q models.FlightQuery, metric bool) ([]models.Flight, error)
	SyncedFlightIDs(ctx context.Context, username string) (map[int64]bool, error)
	MarkSynced(ctx context.Context, flightID int64) error
}

// FR24Session is a logged-in myFlightradar24 session.
type FR24Session interface {
	Login(ctx context.Context) error
	AddFlight(ctx context.Context, f *models.Flight) error
	Close()
}

// Syncer pushes a user's unsynced flights to myFlightradar24.
type Syncer struct {
	store      SyncStore
	cfg        *config.ExternalConfig
	newSession func() (FR24Session, error)
	interval   time.Duration
}

// NewSyncer creates a syncer that opens one FR24Client per sync.
func NewSyncer(store SyncStore, cfg *config.ExternalConfig) *Syncer {
	return &Syncer{
		store: store,
		cfg:   cfg,
		newSession: func() (FR24Session, error) {
			return NewFR24Client(cfg)
		},
		interval: fr24PostInterval,
	}
}

// Sync adds every flight of actor not yet recorded as synced. Per-flight
// failures are collected in the result; a login failure aborts the sync and
// wraps ErrLoginFailed.
func (s *Syncer) Sync(ctx context.Context, actor models.Principal) (*models.FR24SyncResult, error) {
	if !s.cfg.Enabled {
		return nil, ErrExternalDisabled
	}
	if !s.cfg.FR24.Configured() {
		return nil, ErrFR24NotConfigured
	}

	ctx = logging.ContextWithUsername(ctx, actor.Username)
	logger := logging.Ctx(ctx).With().Str("component", "fr24_sync").Logger()
	began := time.Now()

	pending, err := s.pending(ctx, actor)
	if err != nil {
		metrics.RecordPass(metrics.PassFR24Sync, time.Since(began), 0, 0, 0, err)
		return nil, err
	}

	res := &models.FR24SyncResult{Errors: []string{}}
	if len(pending) == 0 {
		return res, nil
	}

	session, err := s.newSession()
	if err != nil {
		metrics.RecordPass(metrics.PassFR24Sync, time.Since(began), 0, 0, 0, err)
		return nil, err
	}
	defer session.Close()

	if err := session.Login(ctx); err != nil {
		logger.Error().Err(err).Msg("FR24 login failed")
		metrics.RecordPass(metrics.PassFR24Sync, time.Since(began), 0, 0, 0, err)
		return nil, err
	}
	logger.Info().Int("total", len(pending)).Msg("FR24 sync started")

	limiter := rate.NewLimiter(rate.Every(s.interval), 1)
	for i := range pending {
		if err := limiter.Wait(ctx); err != nil {
			logger.Warn().Int("synced", res.Synced).Msg("FR24 sync cancelled")
			return res, err
		}

		f := &pending[i]
		if err := s.syncOne(ctx, session, f); err != nil {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("Flight %d (%s -> %s): %v", f.ID, airportCode(f.OriginAirport, f.Origin), airportCode(f.DestinationAirport, f.Destination), err))
			continue
		}
		res.Synced++
	}

	metrics.RecordPass(metrics.PassFR24Sync, time.Since(began), res.Synced, 0, res.Failed, nil)
	logger.Info().
		Int("updated", res.Synced).
		Int("skipped", res.Failed).
		Int("total", len(pending)).
		Int64("duration_ms", time.Since(began).Milliseconds()).
		Msg("FR24 sync finished")
	return res, nil
}

// pending lists the actor's flights not yet pushed.
func (s *Syncer) pending(ctx context.Context, actor models.Principal) ([]models.Flight, error) {
	q := models.DefaultFlightQuery()
	q.Username = actor.Username
	q.Limit = -1
	q.Order = "ASC"

	flights, err := s.store.ListFlights(ctx, actor, q, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list flights: %w", err)
	}
	synced, err := s.store.SyncedFlightIDs(ctx, actor.Username)
	if err != nil {
		return nil, err
	}

	out := make([]models.Flight, 0, len(flights))
	for _, f := range flights {
		if !synced[f.ID] {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *Syncer) syncOne(ctx context.Context, session FR24Session, f *models.Flight) error {
	if err := session.AddFlight(ctx, f); err != nil {
		return err
	}
	return s.store.MarkSynced(ctx, f.ID)
}

// airportCode prefers the resolved ICAO code over the stored one.
func airportCode(a *models.Airport, stored string) string {
	if a != nil {
		return a.ICAO
	}
	return stored
}
