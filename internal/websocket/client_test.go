// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// serveHub upgrades every request and attaches the socket to hub as the
// user named in the ?user= query.
func serveHub(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Upgrade() error = %v", err)
			return
		}
		client := NewClient(hub, conn, r.URL.Query().Get("user"))
		hub.Register <- client
		client.Start()
	}))
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server, user string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/?user=" + user
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, user string, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for hub.UserClientCount(user) != n {
		if time.Now().After(deadline) {
			t.Fatalf("UserClientCount(%s) = %d, want %d", user, hub.UserClientCount(user), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return msg
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	c1 := NewClient(hub, nil, "alice")
	c2 := NewClient(hub, nil, "alice")

	if c1.Username() != "alice" || c1.hub != hub {
		t.Errorf("client = %+v", c1)
	}
	if c2.ID() <= c1.ID() {
		t.Errorf("ids not increasing: %d then %d", c1.ID(), c2.ID())
	}
	if cap(c1.send) != 256 {
		t.Errorf("send capacity = %d, want 256", cap(c1.send))
	}
}

func TestClient_ReceivesOwnProgress(t *testing.T) {
	hub := startHub(t)
	server := serveHub(t, hub)

	alice := dial(t, server, "alice")
	bob := dial(t, server, "bob")
	waitForClients(t, hub, "alice", 1)
	waitForClients(t, hub, "bob", 1)

	hub.Send("alice", Message{Type: MessageTypeProgress, Stream: StreamConnections, Data: map[string]int{"total": 3}})

	msg := readMessage(t, alice)
	if msg.Type != MessageTypeProgress || msg.Stream != StreamConnections {
		t.Errorf("message = %+v", msg)
	}

	_ = bob.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	var stray Message
	if err := bob.ReadJSON(&stray); err == nil {
		t.Errorf("bob received %+v", stray)
	}
}

func TestClient_PingPong(t *testing.T) {
	hub := startHub(t)
	server := serveHub(t, hub)
	conn := dial(t, server, "alice")

	if err := conn.WriteJSON(Message{Type: MessageTypePing}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if msg := readMessage(t, conn); msg.Type != MessageTypePong {
		t.Errorf("reply type = %q, want pong", msg.Type)
	}
}

func TestClient_DisconnectUnregisters(t *testing.T) {
	hub := startHub(t)
	server := serveHub(t, hub)
	conn := dial(t, server, "alice")
	waitForClients(t, hub, "alice", 1)

	_ = conn.Close()
	waitForClients(t, hub, "alice", 0)
}

func TestClient_HubShutdownClosesSocket(t *testing.T) {
	hub := NewHub()
	server := serveHub(t, hub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = hub.RunWithContext(ctx) }()

	conn := dial(t, server, "alice")
	waitForClients(t, hub, "alice", 1)
	cancel()

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("expected the socket to close")
	}
}
