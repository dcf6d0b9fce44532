// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package api

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/jetlog/internal/auth"
	"github.com/tomtom215/jetlog/internal/config"
	"github.com/tomtom215/jetlog/internal/database"
	"github.com/tomtom215/jetlog/internal/models"
	"github.com/tomtom215/jetlog/internal/statistics"
	ws "github.com/tomtom215/jetlog/internal/websocket"
)

// userHeader carries the caller in tests; the API runs in header auth mode.
const userHeader = "X-Jetlog-User"

const testSecret = "api-test-secret-key-0123456789abcdef"

// testDBSemaphore limits concurrent DuckDB instances.
var testDBSemaphore = make(chan struct{}, 1)

var testDBMutex sync.Mutex

// setupTestDB creates a seeded in-memory database.
func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	testDBMutex.Lock()
	db, err := database.New(&config.DatabaseConfig{
		Path:              ":memory:",
		MaxMemory:         "1GB",
		SeedReferenceData: true,
	})
	testDBMutex.Unlock()
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{BaseURL: "/jetlog/"},
		Security: config.SecurityConfig{
			AuthMode:             auth.ModeHeader,
			AuthHeader:           userHeader,
			SecretKey:            testSecret,
			TokenDurationMinutes: 60,
			RateLimitDisabled:    true,
		},
		External: config.ExternalConfig{
			Timeout: 5 * time.Second,
		},
		Statistics: config.StatisticsConfig{CacheTTL: time.Minute},
	}
}

type testAPI struct {
	t       *testing.T
	db      *database.DB
	cfg     *config.Config
	hub     *ws.Hub
	handler *Handler
	server  http.Handler
}

// newTestAPI builds the full router over a fresh database. mutate may
// adjust the configuration before anything is constructed.
func newTestAPI(t *testing.T, mutate func(*config.Config)) *testAPI {
	t.Helper()

	db := setupTestDB(t)
	cfg := testConfig()
	if mutate != nil {
		mutate(cfg)
	}

	jwt, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	authMW, err := auth.NewMiddleware(&cfg.Security, jwt, db)
	if err != nil {
		t.Fatalf("NewMiddleware() error = %v", err)
	}

	stats := statistics.NewService(db, cfg.Statistics.CacheTTL)
	t.Cleanup(stats.Close)
	db.SetChangeListener(stats.Invalidate)

	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = hub.RunWithContext(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	authService := auth.NewService(db, jwt, auth.NewLockoutManager(auth.DefaultLockoutConfig()))
	handler := NewHandler(db, cfg, authService, stats, hub)
	router := NewRouter(handler, authMW, ChiMiddlewareConfigFromSecurity(&cfg.Security))

	return &testAPI{
		t:       t,
		db:      db,
		cfg:     cfg,
		hub:     hub,
		handler: handler,
		server:  router.SetupChi(),
	}
}

// do sends a request as user. body is JSON encoded unless it is nil.
func (a *testAPI) do(method, target, user string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			a.t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set(userHeader, user)
	}
	rec := httptest.NewRecorder()
	a.server.ServeHTTP(rec, req)
	return rec
}

// addFlight creates a flight as user and returns its id.
func (a *testAPI) addFlight(user, origin, destination, date string) int64 {
	a.t.Helper()

	rec := a.do(http.MethodPost, "/api/flights", user, map[string]string{
		"date":        date,
		"origin":      origin,
		"destination": destination,
	})
	if rec.Code != http.StatusCreated {
		a.t.Fatalf("POST /api/flights status = %d, body = %s", rec.Code, rec.Body.String())
	}
	return decodeData[int64](a.t, rec)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()

	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rec.Body.String())
	}
	return resp
}

// decodeData decodes the envelope's data field into T.
func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var resp struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rec.Body.String())
	}
	if !resp.Success {
		t.Fatalf("success = false, body = %s", rec.Body.String())
	}
	var v T
	if err := json.Unmarshal(resp.Data, &v); err != nil {
		t.Fatalf("decode data: %v (data %s)", err, resp.Data)
	}
	return v
}

// expectError checks status and error code of an envelope.
func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()

	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	resp := decodeEnvelope(t, rec)
	if resp.Success {
		t.Error("success = true, want false")
	}
	if resp.Error == nil || resp.Error.Code != code {
		t.Fatalf("error = %+v, want code %s", resp.Error, code)
	}
}

// readSSE parses "data: <json>" frames.
func readSSE(t *testing.T, body io.Reader) []models.ProgressEvent {
	t.Helper()

	var events []models.ProgressEvent
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := scanner.Text()
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		var ev models.ProgressEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			t.Fatalf("decode frame %q: %v", data, err)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("read stream: %v", err)
	}
	return events
}
