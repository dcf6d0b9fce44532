// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

// Package connections infers which flights are consecutive legs of one
// itinerary.
//
// For every flight f of a user with no connection, the plausible successors
// are the same user's flights c with:
//
//	c.origin == f.destination
//	c.destination != f.origin
//	c.date within [f.date - 1 day, f.date + 2 days]
//	c.id != f.id
//
// Exactly one successor links f to it. More than one is ambiguous and f is
// skipped; ambiguity is never resolved by guessing. None leaves f alone and
// is not counted. Each link commits on its own, so a cancelled pass leaves
// the links made so far in place.
package connections

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/jetlog/internal/logging"
	"github.com/tomtom215/jetlog/internal/models"
	"github.com/tomtom215/jetlog/internal/progress"
)

// Store is the persistence the engine needs.
type Store interface {
	// UnlinkedFlights returns the user's flights whose connection is NULL.
	UnlinkedFlights(ctx context.Context, username string) ([]models.Flight, error)

	// PlausibleSuccessors returns the ids of flights matching the
	// successor rule for f, in any link state.
	PlausibleSuccessors(ctx context.Context, f models.Flight) ([]int64, error)

	// SetConnection links id to connID.
	SetConnection(ctx context.Context, id, connID int64) error
}

// Result summarizes one pass.
type Result struct {
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Total   int `json:"total"`
}

// Engine runs connection inference against a Store.
type Engine struct {
	store Store
}

// NewEngine creates an engine.
func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// Infer runs one pass for username, streaming one progress frame per source
// flight to sink. It returns an error only when the pass could not start,
// the consumer went away, or ctx was cancelled; per-flight failures are
// reported as failed steps.
func (e *Engine) Infer(ctx context.Context, username string, sink progress.Sink) (Result, error) {
	ctx = logging.ContextWithUsername(ctx, username)
	logger := logging.Ctx(ctx).With().Str("component", "connections").Logger()
	tr := progress.NewTracker(sink)
	began := time.Now()

	sources, err := e.store.UnlinkedFlights(ctx, username)
	if err != nil {
		err = fmt.Errorf("failed to list unlinked flights: %w", err)
		_ = tr.Fail(err) //nolint:errcheck // already failing
		logger.Error().Err(err).Msg("connection inference could not start")
		return Result{}, err
	}

	res := Result{Total: len(sources)}
	logger.Info().Int("total", res.Total).Msg("connection inference started")

	if err := tr.Start(res.Total); err != nil {
		return res, err
	}

	for _, f := range sources {
		if err := ctx.Err(); err != nil {
			logger.Warn().Int("processed", tr.Current()).Msg("connection inference cancelled")
			return res, err
		}

		ok, errMsg := e.linkOne(ctx, f, &res)
		if !ok {
			logger.Warn().Int64("flight_id", f.ID).Str("error", errMsg).Msg("connection lookup failed")
		}
		if err := tr.Step(f.Label(), ok, errMsg); err != nil {
			return res, fmt.Errorf("progress consumer gone: %w", err)
		}
	}

	if err := tr.Done(res.Updated, res.Skipped); err != nil {
		return res, fmt.Errorf("progress consumer gone: %w", err)
	}

	logger.Info().
		Int("updated", res.Updated).
		Int("skipped", res.Skipped).
		Int("total", res.Total).
		Int64("duration_ms", time.Since(began).Milliseconds()).
		Msg("connection inference finished")
	return res, nil
}

// linkOne resolves a single source flight and updates res.
func (e *Engine) linkOne(ctx context.Context, f models.Flight, res *Result) (ok bool, errMsg string) {
	candidates, err := e.store.PlausibleSuccessors(ctx, f)
	if err != nil {
		return false, err.Error()
	}

	switch len(candidates) {
	case 0:
		return true, ""
	case 1:
		if err := e.store.SetConnection(ctx, f.ID, candidates[0]); err != nil {
			return false, err.Error()
		}
		res.Updated++
		return true, ""
	default:
		res.Skipped++
		return true, ""
	}
}

// IsPlausibleSuccessor applies the successor rule to two in-memory flights.
// Stores that cannot express the rule in a query can filter with it.
func IsPlausibleSuccessor(f, c *models.Flight) bool {
	if c.ID == f.ID || c.Username != f.Username {
		return false
	}
	if c.Origin != f.Destination || c.Destination == f.Origin {
		return false
	}
	fd, err := time.Parse(time.DateOnly, f.Date)
	if err != nil {
		return false
	}
	cd, err := time.Parse(time.DateOnly, c.Date)
	if err != nil {
		return false
	}
	return !cd.Before(fd.AddDate(0, 0, -1)) && !cd.After(fd.AddDate(0, 0, 2))
}
