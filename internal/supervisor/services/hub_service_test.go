// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

var _ suture.Service = (*RunnerService)(nil)

type countingRunner struct {
	runs    atomic.Int32
	failFor int32
}

func (r *countingRunner) RunWithContext(ctx context.Context) error {
	if n := r.runs.Add(1); n <= r.failFor {
		return errors.New("hub crashed")
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestRunnerService(t *testing.T) {
	t.Parallel()

	runner := &countingRunner{}
	svc := NewWebSocketHubService(runner)
	if svc.String() != "websocket-hub" {
		t.Errorf("String() = %q, want websocket-hub", svc.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := svc.Serve(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
	if runner.runs.Load() != 1 {
		t.Errorf("runs = %d, want 1", runner.runs.Load())
	}
}

func TestRunnerService_RestartedBySupervisor(t *testing.T) {
	t.Parallel()

	runner := &countingRunner{failFor: 2}
	sup := suture.New("test", suture.Spec{FailureBackoff: 10 * time.Millisecond, FailureThreshold: 10})
	sup.Add(NewRunnerService("flaky", runner))

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	errCh := sup.ServeBackground(ctx)

	deadline := time.Now().Add(400 * time.Millisecond)
	for runner.runs.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := runner.runs.Load(); got < 3 {
		t.Errorf("runs = %d, want the supervisor to restart until the third run", got)
	}
	cancel()
	<-errCh
}
