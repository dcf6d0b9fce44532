// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package services

import (
	"context"
	"time"

	"github.com/tomtom215/jetlog/internal/logging"
)

// Checkpointer is satisfied by *database.DB.
type Checkpointer interface {
	Checkpoint(ctx context.Context) error
}

// CheckpointService folds the DuckDB WAL into the database file on a fixed
// interval. A failed checkpoint is logged and retried on the next tick.
type CheckpointService struct {
	store    Checkpointer
	interval time.Duration
	timeout  time.Duration
}

// NewCheckpointService checkpoints store every interval (default 5m).
func NewCheckpointService(store Checkpointer, interval time.Duration) *CheckpointService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &CheckpointService{store: store, interval: interval, timeout: 30 * time.Second}
}

// Serve implements suture.Service.
func (c *CheckpointService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.checkpoint(ctx)
		}
	}
}

func (c *CheckpointService) checkpoint(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	if err := c.store.Checkpoint(runCtx); err != nil {
		logging.Warn().Err(err).Str("component", c.String()).Msg("checkpoint failed")
		return
	}
	logging.Debug().
		Str("component", c.String()).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("checkpoint complete")
}

// String implements fmt.Stringer.
func (c *CheckpointService) String() string {
	return "duckdb-checkpoint"
}
