// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/jetlog/internal/config"
	"github.com/tomtom215/jetlog/internal/models"
)

// testDBSemaphore serializes DuckDB use across tests. DuckDB CGO calls can
// hang when several in-memory databases do concurrent work under CI load.
var testDBSemaphore = make(chan struct{}, 1)

// testDBMutex serializes the New() call itself.
var testDBMutex sync.Mutex

var (
	alice = models.Principal{Username: "alice"}
	bob   = models.Principal{Username: "bob"}
	admin = models.Principal{Username: "root", IsAdmin: true}
)

// setupTestDB creates a seeded in-memory database. The semaphore is held
// until the test completes, not just during creation.
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	return setupTestDBWith(t, nil)
}

// setupTestDBWith is setupTestDB with mutate applied to the config first.
func setupTestDBWith(t *testing.T, mutate func(*config.DatabaseConfig)) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	cfg := &config.DatabaseConfig{
		Path:              ":memory:",
		MaxMemory:         "1GB",
		SeedReferenceData: true,
	}
	if mutate != nil {
		mutate(cfg)
	}

	type result struct {
		db  *DB
		err error
	}

	resultCh := make(chan result, 1)
	go func() {
		testDBMutex.Lock()
		db, err := New(cfg)
		testDBMutex.Unlock()
		resultCh <- result{db: db, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			t.Fatalf("Failed to create test database: %v", res.err)
		}
		t.Cleanup(func() {
			if err := res.db.Close(); err != nil {
				t.Errorf("Close() error = %v", err)
			}
		})
		return res.db
	case <-time.After(120 * time.Second):
		t.Fatalf("Timeout: database creation took longer than 120s (DuckDB may be under resource pressure)")
		return nil
	}
}

func ptr[T any](v T) *T { return &v }

// mustAdd stores a flight for its owner and returns the id.
func mustAdd(t *testing.T, db *DB, f models.Flight) int64 {
	t.Helper()
	actor := models.Principal{Username: f.Username}
	if actor.Username == "" {
		actor = alice
	}
	id, err := db.AddFlight(context.Background(), actor, f, true)
	if err != nil {
		t.Fatalf("AddFlight(%s) error = %v", f.Label(), err)
	}
	return id
}

func route(username, origin, destination, date string) models.Flight {
	return models.Flight{Username: username, Origin: origin, Destination: destination, Date: date}
}

func TestNewAppliesMigrations(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	version, err := db.GetCurrentSchemaVersion(ctx)
	if err != nil {
		t.Fatalf("GetCurrentSchemaVersion() error = %v", err)
	}
	if want := len(db.getMigrations()); version != want {
		t.Errorf("schema version = %d, want %d", version, want)
	}

	// A second run finds nothing to apply.
	if err := db.runVersionedMigrations(); err != nil {
		t.Fatalf("runVersionedMigrations() second run error = %v", err)
	}
	applied, err := db.getAppliedMigrations(ctx)
	if err != nil {
		t.Fatalf("getAppliedMigrations() error = %v", err)
	}
	if len(applied) != version {
		t.Errorf("applied migrations = %d, want %d", len(applied), version)
	}
}

func TestMigrationVersionsIncrease(t *testing.T) {
	t.Parallel()

	db := &DB{}
	prev := 0
	for _, m := range db.getMigrations() {
		if m.Version <= prev {
			t.Errorf("migration %s version %d not greater than %d", m.Name, m.Version, prev)
		}
		if len(m.Statements) == 0 {
			t.Errorf("migration %s has no statements", m.Name)
		}
		prev = m.Version
	}
}

func TestSeedReferenceData(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	flights, airports, err := db.GetRecordCounts(ctx)
	if err != nil {
		t.Fatalf("GetRecordCounts() error = %v", err)
	}
	if flights != 0 {
		t.Errorf("flights = %d, want 0", flights)
	}
	if airports < 50 {
		t.Errorf("airports = %d, want at least 50", airports)
	}

	// Seeding again leaves populated tables alone.
	if err := db.SeedReferenceData(ctx); err != nil {
		t.Fatalf("SeedReferenceData() second run error = %v", err)
	}
	_, again, err := db.GetRecordCounts(ctx)
	if err != nil {
		t.Fatalf("GetRecordCounts() error = %v", err)
	}
	if again != airports {
		t.Errorf("airports after reseed = %d, want %d", again, airports)
	}
}

func TestPing(t *testing.T) {
	db := setupTestDB(t)
	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestOwnerOrAdmin(t *testing.T) {
	t.Parallel()

	a := OwnerOrAdmin{}
	tests := []struct {
		name       string
		actor      models.Principal
		owner      string
		public     bool
		wantModify bool
		wantRead   bool
	}{
		{"owner", alice, "alice", false, true, true},
		{"other user private", bob, "alice", false, false, false},
		{"other user public", bob, "alice", true, false, true},
		{"admin", admin, "alice", false, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := a.CanModify(tt.actor, tt.owner); got != tt.wantModify {
				t.Errorf("CanModify() = %v, want %v", got, tt.wantModify)
			}
			if got := a.CanRead(tt.actor, tt.owner, tt.public); got != tt.wantRead {
				t.Errorf("CanRead() = %v, want %v", got, tt.wantRead)
			}
		})
	}
}
