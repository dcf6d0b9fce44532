// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package websocket

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/jetlog/internal/logging"
	"github.com/tomtom215/jetlog/internal/metrics"
	"github.com/tomtom215/jetlog/internal/models"
	"github.com/tomtom215/jetlog/internal/progress"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "info",
		Format: "console",
		Output: io.Discard,
	})
}

// startHub runs a hub until the test ends.
func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.RunWithContext(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return hub
}

// testClient is a client without a socket. Register is unbuffered, so the
// hub owns the client once the send returns.
func testClient(hub *Hub, username string, buffer int) *Client {
	c := &Client{id: clientIDCounter.Add(1), username: username, hub: hub, send: make(chan Message, buffer)}
	hub.Register <- c
	return c
}

func receive(t *testing.T, c *Client) (Message, bool) {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		return msg, ok
	case <-time.After(time.Second):
		t.Fatalf("no message for %s", c.username)
		return Message{}, false
	}
}

func expectNothing(t *testing.T, c *Client) {
	t.Helper()
	select {
	case msg := <-c.send:
		t.Errorf("%s received unexpected %+v", c.username, msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_DeliversOnlyToOwner(t *testing.T) {
	hub := startHub(t)
	alice1 := testClient(hub, "alice", 8)
	alice2 := testClient(hub, "alice", 8)
	bob := testClient(hub, "bob", 8)

	if got := hub.UserClientCount("alice"); got != 2 {
		t.Errorf("UserClientCount(alice) = %d, want 2", got)
	}
	if got := hub.GetClientCount(); got != 3 {
		t.Errorf("GetClientCount() = %d, want 3", got)
	}

	if !hub.Send("alice", Message{Type: MessageTypeProgress, Stream: StreamConnections}) {
		t.Fatal("Send() = false")
	}

	for _, c := range []*Client{alice1, alice2} {
		msg, _ := receive(t, c)
		if msg.Stream != StreamConnections {
			t.Errorf("stream = %q, want %q", msg.Stream, StreamConnections)
		}
	}
	expectNothing(t, bob)
}

func TestHub_Mirror(t *testing.T) {
	hub := startHub(t)
	alice := testClient(hub, "alice", 8)

	rec := &progress.Recorder{}
	tracker := progress.NewTracker(progress.NewMulti(rec, hub.Mirror("alice", StreamEnrich)))
	if err := tracker.Start(1); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := tracker.Step("LH100", true, ""); err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if err := tracker.Done(1, 0); err != nil {
		t.Fatalf("Done() error = %v", err)
	}

	wantTypes := []models.ProgressType{models.ProgressStart, models.ProgressStep, models.ProgressDone}
	for i, want := range wantTypes {
		msg, _ := receive(t, alice)
		ev, ok := msg.Data.(models.ProgressEvent)
		if !ok {
			t.Fatalf("frame %d data = %T, want models.ProgressEvent", i, msg.Data)
		}
		if ev.Type != want || msg.Type != MessageTypeProgress || msg.Stream != StreamEnrich {
			t.Errorf("frame %d = %s/%s/%s, want progress/enrich/%s", i, msg.Type, msg.Stream, ev.Type, want)
		}
	}
	if got := len(rec.Events()); got != 3 {
		t.Errorf("primary sink got %d frames, want 3", got)
	}
}

func TestHub_DropsSlowClient(t *testing.T) {
	hub := startHub(t)
	slow := testClient(hub, "alice", 1)
	before := testutil.ToFloat64(metrics.WSMessagesDropped)

	hub.Send("alice", Message{Type: MessageTypeProgress})
	hub.Send("alice", Message{Type: MessageTypeProgress})

	deadline := time.Now().Add(time.Second)
	for hub.UserClientCount("alice") != 0 {
		if time.Now().After(deadline) {
			t.Fatal("slow client was not dropped")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if _, ok := receive(t, slow); !ok {
		t.Fatal("first message missing")
	}
	if _, ok := receive(t, slow); ok {
		t.Error("slow client channel should be closed after overflow")
	}
	if got := testutil.ToFloat64(metrics.WSMessagesDropped) - before; got < 1 {
		t.Errorf("dropped delta = %v, want >= 1", got)
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := startHub(t)
	c := testClient(hub, "alice", 8)

	hub.Unregister <- c
	if _, ok := receive(t, c); ok {
		t.Error("send channel should be closed after unregister")
	}

	// A second unregister is a no-op.
	hub.Unregister <- c
	if got := hub.GetClientCount(); got != 0 {
		t.Errorf("GetClientCount() = %d, want 0", got)
	}
}

func TestHub_SendQueueFull(t *testing.T) {
	hub := NewHub()
	for i := 0; i < cap(hub.deliveries); i++ {
		if !hub.Send("alice", Message{Type: MessageTypePing}) {
			t.Fatalf("Send() #%d = false before queue was full", i)
		}
	}
	if hub.Send("alice", Message{Type: MessageTypePing}) {
		t.Error("Send() on a full queue = true, want false")
	}
}

func TestHub_RunWithContext(t *testing.T) {
	tests := []struct {
		name    string
		ctx     func() (context.Context, context.CancelFunc)
		cancel  bool
		wantErr error
	}{
		{"canceled", func() (context.Context, context.CancelFunc) { return context.WithCancel(context.Background()) }, true, context.Canceled},
		{"deadline", func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.Background(), 50*time.Millisecond)
		}, false, context.DeadlineExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := NewHub()
			ctx, cancel := tt.ctx()
			defer cancel()

			errCh := make(chan error, 1)
			go func() { errCh <- hub.RunWithContext(ctx) }()

			c := testClient(hub, "alice", 8)
			if tt.cancel {
				cancel()
			}

			select {
			case err := <-errCh:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("RunWithContext() = %v, want %v", err, tt.wantErr)
				}
			case <-time.After(time.Second):
				t.Fatal("RunWithContext did not return")
			}
			if _, ok := <-c.send; ok {
				t.Error("client channel should be closed on shutdown")
			}
			if got := hub.GetClientCount(); got != 0 {
				t.Errorf("GetClientCount() = %d after shutdown, want 0", got)
			}
		})
	}
}

func TestGetShutdownReason(t *testing.T) {
	t.Parallel()

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	expired, cancel2 := context.WithTimeout(context.Background(), -time.Second)
	defer cancel2()

	if got := getShutdownReason(canceled); got != ShutdownReasonContextCanceled {
		t.Errorf("canceled reason = %q", got)
	}
	if got := getShutdownReason(expired); got != ShutdownReasonContextDeadline {
		t.Errorf("deadline reason = %q", got)
	}
}

func TestMarshalMessage(t *testing.T) {
	t.Parallel()

	updated := 2
	data, err := MarshalMessage(Message{
		Type:   MessageTypeProgress,
		Stream: StreamAirlines,
		Data:   models.ProgressEvent{Type: models.ProgressDone, Updated: &updated},
	})
	if err != nil {
		t.Fatalf("MarshalMessage() error = %v", err)
	}
	got := string(data)
	for _, want := range []string{`"type":"progress"`, `"stream":"airlines_from_callsigns"`, `"updated":2`} {
		if !strings.Contains(got, want) {
			t.Errorf("MarshalMessage() = %s, missing %s", got, want)
		}
	}

	pong, _ := MarshalMessage(Message{Type: MessageTypePong})
	if string(pong) != `{"type":"pong"}` {
		t.Errorf("pong = %s", pong)
	}
}

func BenchmarkHub_Send(b *testing.B) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = hub.RunWithContext(ctx) }()

	msg := Message{Type: MessageTypeProgress, Stream: StreamEnrich}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		hub.Send("alice", msg)
	}
}
