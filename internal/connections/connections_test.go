// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package connections

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/tomtom215/jetlog/internal/models"
	"github.com/tomtom215/jetlog/internal/progress"
)

// memStore is an in-memory Store built on IsPlausibleSuccessor.
type memStore struct {
	mu      sync.Mutex
	flights map[int64]*models.Flight

	listErr  error
	lookupOn int64 // PlausibleSuccessors fails for this id
	setCalls int
}

func newMemStore(flights ...models.Flight) *memStore {
	s := &memStore{flights: make(map[int64]*models.Flight)}
	for i := range flights {
		f := flights[i]
		s.flights[f.ID] = &f
	}
	return s
}

func (s *memStore) UnlinkedFlights(_ context.Context, username string) ([]models.Flight, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Flight
	for _, f := range s.flights {
		if f.Username == username && f.Connection == nil {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) PlausibleSuccessors(_ context.Context, f models.Flight) ([]int64, error) {
	if s.lookupOn != 0 && f.ID == s.lookupOn {
		return nil, errors.New("lookup failed")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []int64
	for _, c := range s.flights {
		if IsPlausibleSuccessor(&f, c) {
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}

func (s *memStore) SetConnection(_ context.Context, id, connID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setCalls++
	s.flights[id].Connection = &connID
	return nil
}

func (s *memStore) connection(id int64) *int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flights[id].Connection
}

func flight(id int64, origin, dest, date string) models.Flight {
	return models.Flight{ID: id, Username: "alice", Origin: origin, Destination: dest, Date: date}
}

func TestInferSingleSuccessor(t *testing.T) {
	t.Parallel()

	store := newMemStore(
		flight(1, "KJFK", "LFPG", "2024-01-01"),
		flight(2, "LFPG", "LIRF", "2024-01-01"),
	)
	rec := &progress.Recorder{}

	res, err := NewEngine(store).Infer(context.Background(), "alice", rec)
	if err != nil {
		t.Fatalf("Infer() error = %v", err)
	}
	if res.Updated != 1 || res.Skipped != 0 || res.Total != 2 {
		t.Errorf("Infer() = %+v, want updated=1 skipped=0 total=2", res)
	}
	if c := store.connection(1); c == nil || *c != 2 {
		t.Errorf("flight 1 connection = %v, want 2", c)
	}
	if c := store.connection(2); c != nil {
		t.Errorf("flight 2 connection = %v, want nil", *c)
	}

	events := rec.Events()
	if len(events) != 4 {
		t.Fatalf("got %d events, want start + 2 progress + done", len(events))
	}
	if events[0].Type != models.ProgressStart || events[0].Total != 2 {
		t.Errorf("first event = %+v", events[0])
	}
	if events[1].Item != "KJFK->LFPG 2024-01-01" {
		t.Errorf("item label = %q", events[1].Item)
	}
	last := events[3]
	if last.Type != models.ProgressDone || *last.Updated != 1 || *last.Skipped != 0 {
		t.Errorf("done event = %+v", last)
	}
}

func TestInferAmbiguousIsSkipped(t *testing.T) {
	t.Parallel()

	store := newMemStore(
		flight(1, "KJFK", "LFPG", "2024-01-01"),
		flight(2, "LFPG", "LIRF", "2024-01-01"),
		flight(3, "LFPG", "LIRF", "2024-01-02"),
	)

	res, err := NewEngine(store).Infer(context.Background(), "alice", nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Updated != 0 || res.Skipped != 1 {
		t.Errorf("Infer() = %+v, want updated=0 skipped=1", res)
	}
	if c := store.connection(1); c != nil {
		t.Errorf("ambiguous flight linked to %d", *c)
	}
}

func TestInferIsIdempotent(t *testing.T) {
	t.Parallel()

	store := newMemStore(
		flight(1, "KJFK", "LFPG", "2024-01-01"),
		flight(2, "LFPG", "LIRF", "2024-01-01"),
		flight(3, "EGLL", "EDDF", "2024-02-01"),
		flight(4, "EDDF", "LOWW", "2024-02-01"),
		flight(5, "EDDF", "LKPR", "2024-02-02"),
	)
	engine := NewEngine(store)

	first, err := engine.Infer(context.Background(), "alice", nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := engine.Infer(context.Background(), "alice", nil)
	if err != nil {
		t.Fatal(err)
	}

	if first.Updated != 1 || first.Skipped != 1 {
		t.Errorf("first pass = %+v, want updated=1 skipped=1", first)
	}
	if second.Updated != 0 {
		t.Errorf("second pass updated = %d, want 0", second.Updated)
	}
	if second.Skipped != first.Skipped {
		t.Errorf("second pass skipped = %d, want %d", second.Skipped, first.Skipped)
	}
}

func TestInferRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		successor models.Flight
		wantLink  bool
	}{
		{"day before is allowed", flight(2, "LFPG", "LIRF", "2023-12-31"), true},
		{"two days after is allowed", flight(2, "LFPG", "LIRF", "2024-01-03"), true},
		{"three days after is too late", flight(2, "LFPG", "LIRF", "2024-01-04"), false},
		{"two days before is too early", flight(2, "LFPG", "LIRF", "2023-12-30"), false},
		{"round trip is excluded", flight(2, "LFPG", "KJFK", "2024-01-02"), false},
		{"wrong origin", flight(2, "EGLL", "LIRF", "2024-01-01"), false},
		{"other user", models.Flight{ID: 2, Username: "bob", Origin: "LFPG", Destination: "LIRF", Date: "2024-01-01"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := newMemStore(flight(1, "KJFK", "LFPG", "2024-01-01"), tt.successor)
			if _, err := NewEngine(store).Infer(context.Background(), "alice", nil); err != nil {
				t.Fatal(err)
			}
			linked := store.connection(1) != nil
			if linked != tt.wantLink {
				t.Errorf("linked = %v, want %v", linked, tt.wantLink)
			}
		})
	}
}

func TestInferSetupFailureEmitsSingleError(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.listErr = errors.New("database is locked")
	rec := &progress.Recorder{}

	_, err := NewEngine(store).Infer(context.Background(), "alice", rec)
	if err == nil {
		t.Fatal("Infer() error = nil, want setup failure")
	}
	events := rec.Events()
	if len(events) != 1 || events[0].Type != models.ProgressError {
		t.Fatalf("events = %+v, want one error event", events)
	}
}

func TestInferPerItemFailureContinues(t *testing.T) {
	t.Parallel()

	store := newMemStore(
		flight(1, "KJFK", "LFPG", "2024-01-01"),
		flight(2, "LFPG", "LIRF", "2024-01-01"),
		flight(3, "EGLL", "EDDF", "2024-02-01"),
		flight(4, "EDDF", "LOWW", "2024-02-01"),
	)
	store.lookupOn = 1
	rec := &progress.Recorder{}

	res, err := NewEngine(store).Infer(context.Background(), "alice", rec)
	if err != nil {
		t.Fatal(err)
	}
	if res.Updated != 1 {
		t.Errorf("updated = %d, want 1", res.Updated)
	}
	events := rec.Events()
	if events[1].Status != models.StatusFailed || events[1].Error == "" {
		t.Errorf("first step = %+v, want failed with error", events[1])
	}
	if rec.Last().Type != models.ProgressDone {
		t.Errorf("last event = %+v, want done", rec.Last())
	}
}

func TestInferStopsWhenConsumerLeaves(t *testing.T) {
	t.Parallel()

	store := newMemStore(
		flight(1, "KJFK", "LFPG", "2024-01-01"),
		flight(2, "LFPG", "LIRF", "2024-01-01"),
		flight(3, "EGLL", "EDDF", "2024-02-01"),
		flight(4, "EDDF", "LOWW", "2024-02-01"),
	)
	rec := &progress.Recorder{FailAfter: 2} // start + first step

	_, err := NewEngine(store).Infer(context.Background(), "alice", rec)
	if !errors.Is(err, progress.ErrRecorderFull) {
		t.Fatalf("Infer() error = %v, want consumer error", err)
	}
	if store.setCalls != 1 {
		t.Errorf("setCalls = %d, want 1 (stopped after second item)", store.setCalls)
	}
	if c := store.connection(1); c == nil {
		t.Error("committed link should remain after the consumer left")
	}
}

func TestInferCancelled(t *testing.T) {
	t.Parallel()

	store := newMemStore(
		flight(1, "KJFK", "LFPG", "2024-01-01"),
		flight(2, "LFPG", "LIRF", "2024-01-01"),
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine(store).Infer(ctx, "alice", nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Infer() error = %v, want context.Canceled", err)
	}
	if store.setCalls != 0 {
		t.Errorf("setCalls = %d, want 0", store.setCalls)
	}
}
