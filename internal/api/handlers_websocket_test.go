// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/jetlog/internal/config"
	"github.com/tomtom215/jetlog/internal/models"
	ws "github.com/tomtom215/jetlog/internal/websocket"
)

func TestCheckWebSocketOrigin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		host    string
		origin  string
		allowed []string
		want    bool
	}{
		{"missing origin", "jetlog.local", "", nil, false},
		{"same host", "jetlog.local:3000", "http://jetlog.local:3000", nil, true},
		{"configured origin", "api.jetlog.local", "https://app.jetlog.local", []string{"https://app.jetlog.local"}, true},
		{"wildcard", "api.jetlog.local", "https://anything.example", []string{"*"}, true},
		{"foreign origin", "jetlog.local", "https://evil.example", []string{"https://app.jetlog.local"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := &Handler{config: &config.Config{Security: config.SecurityConfig{CORSOrigins: tt.allowed}}}
			req := httptest.NewRequest(http.MethodGet, "/api/ws", nil)
			req.Host = tt.host
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if got := h.checkWebSocketOrigin(req); got != tt.want {
				t.Errorf("checkWebSocketOrigin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWebSocket_MirrorsPassProgress(t *testing.T) {
	a := newTestAPI(t, nil)
	srv := httptest.NewServer(a.server)
	t.Cleanup(srv.Close)

	header := http.Header{}
	header.Set(userHeader, "alice")
	header.Set("Origin", srv.URL)
	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/ws", header)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	if resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })

	deadline := time.Now().Add(5 * time.Second)
	for a.hub.UserClientCount("alice") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	a.addFlight("alice", "JFK", "CDG", "2024-01-01")
	if rec := a.do(http.MethodPost, "/api/flights/connections", "alice", nil); rec.Code != http.StatusOK {
		t.Fatalf("pass status = %d", rec.Code)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("ReadMessage() error = %v", err)
		}
		var msg struct {
			Type   string               `json:"type"`
			Stream string               `json:"stream"`
			Data   models.ProgressEvent `json:"data"`
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("decode %q: %v", data, err)
		}
		if msg.Type != ws.MessageTypeProgress {
			continue
		}
		if msg.Stream != ws.StreamConnections {
			t.Errorf("stream = %q, want %q", msg.Stream, ws.StreamConnections)
		}
		if msg.Data.Type == models.ProgressDone {
			return
		}
	}
}

func TestWebSocket_RejectsForeignOrigin(t *testing.T) {
	a := newTestAPI(t, nil)
	srv := httptest.NewServer(a.server)
	t.Cleanup(srv.Close)

	header := http.Header{}
	header.Set(userHeader, "alice")
	header.Set("Origin", "https://evil.example")
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/ws", header)
	if err == nil {
		t.Fatal("Dial() succeeded, want handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("response = %v, want 403", resp)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
}
