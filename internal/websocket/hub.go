// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/goccy/go-json"

	"github.com/tomtom215/jetlog/internal/logging"
	"github.com/tomtom215/jetlog/internal/metrics"
	"github.com/tomtom215/jetlog/internal/models"
	"github.com/tomtom215/jetlog/internal/progress"
)

// ShutdownReason identifies why the hub stopped.
type ShutdownReason string

const (
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Message types
const (
	MessageTypeProgress = "progress"
	MessageTypePing     = "ping"
	MessageTypePong     = "pong"
)

// Stream names carried in Message.Stream.
const (
	StreamConnections = "connections"
	StreamAirlines    = "airlines_from_callsigns"
	StreamEnrich      = "enrich"
)

// Message is one frame on the socket. Stream names the pass a progress
// frame belongs to.
type Message struct {
	Type   string      `json:"type"`
	Stream string      `json:"stream,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

// delivery is a message addressed to one user's sockets.
type delivery struct {
	username string
	message  Message
}

// Hub tracks connected clients by user and delivers each message only to
// the sockets of the user it is addressed to.
type Hub struct {
	clients    map[*Client]bool
	deliveries chan delivery
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a hub. RunWithContext must be running for clients to be
// registered and messages delivered.
func NewHub() *Hub {
	return &Hub{
		deliveries: make(chan delivery, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// RunWithContext runs the hub until ctx is done, then closes every client.
// Lifecycle events are drained before deliveries so a client registered
// ahead of a message receives it.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.register(client)
			continue
		case client := <-h.Unregister:
			h.unregister(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.register(client)
		case client := <-h.Unregister:
			h.unregister(client)
		case d := <-h.deliveries:
			h.deliver(d)
		}
	}
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Inc()
	logging.Debug().
		Str("username", client.username).
		Int("total_clients", total).
		Msg("websocket client connected")
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if ok {
		metrics.WSConnections.Dec()
		logging.Debug().
			Str("username", client.username).
			Int("total_clients", total).
			Msg("websocket client disconnected")
	}
}

// deliver sends d to the addressed user's clients in id order. A client
// whose buffer is full is dropped.
func (h *Hub) deliver(d delivery) {
	h.mu.Lock()
	defer h.mu.Unlock()

	targets := make([]*Client, 0, 2)
	for client := range h.clients {
		if client.username == d.username {
			targets = append(targets, client)
		}
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].id < targets[j].id })

	for _, client := range targets {
		select {
		case client.send <- d.message:
			metrics.WSMessagesSent.Inc()
		default:
			metrics.WSMessagesDropped.Inc()
			metrics.WSErrors.WithLabelValues("slow_client").Inc()
			close(client.send)
			delete(h.clients, client)
			metrics.WSConnections.Dec()
		}
	}
}

func (h *Hub) shutdown(ctx context.Context) {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })
	for _, client := range clients {
		close(client.send)
		delete(h.clients, client)
		metrics.WSConnections.Dec()
	}
	h.mu.Unlock()

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", len(clients)).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	if ctx.Err() == context.DeadlineExceeded {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}

// Send queues msg for username's sockets. It never blocks; a full queue
// drops the message.
func (h *Hub) Send(username string, msg Message) bool {
	select {
	case h.deliveries <- delivery{username: username, message: msg}:
		return true
	default:
		metrics.WSMessagesDropped.Inc()
		logging.Warn().Str("message_type", msg.Type).Msg("websocket delivery queue full, dropping message")
		return false
	}
}

// Mirror returns a progress sink that copies every frame of one stream to
// username's sockets. It always returns nil so it can sit behind
// progress.Multi without affecting the pass.
func (h *Hub) Mirror(username, stream string) progress.Sink {
	return progress.SinkFunc(func(ev models.ProgressEvent) error {
		h.Send(username, Message{Type: MessageTypeProgress, Stream: stream, Data: ev})
		return nil
	})
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// UserClientCount returns the number of sockets username has open.
func (h *Hub) UserClientCount(username string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for client := range h.clients {
		if client.username == username {
			n++
		}
	}
	return n
}

// MarshalMessage converts a message to JSON.
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
