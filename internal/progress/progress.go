// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

// Package progress carries ordered progress frames from long-running passes
// (connection inference, enrichment) to their consumers.
//
// A stream is: exactly one start frame, then progress frames with strictly
// increasing current values, then at most one terminal frame (done or error).
// Tracker enforces that shape on top of any Sink.
//
//	tr := progress.NewTracker(sink)
//	tr.Start(len(items))
//	for _, it := range items {
//	    if err := tr.Step(it.Label(), ok, ""); err != nil {
//	        return err // consumer went away
//	    }
//	}
//	tr.Done(updated, skipped)
package progress

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tomtom215/jetlog/internal/models"
)

var (
	// ErrStreamClosed is returned for any frame after the terminal one.
	ErrStreamClosed = errors.New("progress stream closed")

	// ErrNotStarted is returned for frames emitted before Start.
	ErrNotStarted = errors.New("progress stream not started")

	// ErrOutOfOrder is returned when current does not strictly increase.
	ErrOutOfOrder = errors.New("progress current must strictly increase")
)

// Sink consumes progress frames. A returned error means the consumer is
// gone and the pass should stop at the next item.
type Sink interface {
	Emit(models.ProgressEvent) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(models.ProgressEvent) error

// Emit implements Sink.
func (f SinkFunc) Emit(ev models.ProgressEvent) error { return f(ev) }

// Discard drops every frame.
var Discard Sink = SinkFunc(func(models.ProgressEvent) error { return nil })

// Tracker validates frame order and forwards frames to a Sink.
type Tracker struct {
	sink    Sink
	started bool
	closed  bool
	total   int
	current int
}

// NewTracker wraps sink. A nil sink discards frames.
func NewTracker(sink Sink) *Tracker {
	if sink == nil {
		sink = Discard
	}
	return &Tracker{sink: sink}
}

// Start emits the start frame. It must be the first call.
func (t *Tracker) Start(total int) error {
	if t.closed {
		return ErrStreamClosed
	}
	if t.started {
		return fmt.Errorf("%w: start emitted twice", ErrOutOfOrder)
	}
	t.started = true
	t.total = total
	return t.sink.Emit(models.ProgressEvent{Type: models.ProgressStart, Total: total})
}

// Step emits the next progress frame with current = previous + 1.
func (t *Tracker) Step(item string, ok bool, errMsg string) error {
	return t.StepAt(t.current+1, item, ok, errMsg)
}

// StepAt emits a progress frame with an explicit current value.
func (t *Tracker) StepAt(current int, item string, ok bool, errMsg string) error {
	if t.closed {
		return ErrStreamClosed
	}
	if !t.started {
		return ErrNotStarted
	}
	if current <= t.current {
		return fmt.Errorf("%w: %d after %d", ErrOutOfOrder, current, t.current)
	}
	t.current = current

	ev := models.ProgressEvent{
		Type:    models.ProgressStep,
		Total:   t.total,
		Current: current,
		Item:    item,
		Status:  models.StatusOK,
	}
	if !ok {
		ev.Status = models.StatusFailed
		ev.Error = errMsg
	}
	return t.sink.Emit(ev)
}

// Done emits the terminal done frame. A Done without Start is allowed and
// describes an empty pass.
func (t *Tracker) Done(updated, skipped int) error {
	if t.closed {
		return ErrStreamClosed
	}
	t.closed = true
	return t.sink.Emit(models.ProgressEvent{
		Type:    models.ProgressDone,
		Total:   t.total,
		Updated: &updated,
		Skipped: &skipped,
	})
}

// Fail emits the terminal error frame.
func (t *Tracker) Fail(err error) error {
	if t.closed {
		return ErrStreamClosed
	}
	t.closed = true
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return t.sink.Emit(models.ProgressEvent{Type: models.ProgressError, Total: t.total, Error: msg})
}

// Current returns the last emitted current value.
func (t *Tracker) Current() int { return t.current }

// Closed reports whether a terminal frame was emitted.
func (t *Tracker) Closed() bool { return t.closed }

// Multi fans frames out to a primary sink and any number of mirrors. Only
// the primary's error is returned; mirrors are best effort.
type Multi struct {
	primary Sink
	mirrors []Sink
}

// NewMulti builds a fan-out sink. Nil mirrors are ignored.
func NewMulti(primary Sink, mirrors ...Sink) *Multi {
	m := &Multi{primary: primary}
	for _, s := range mirrors {
		if s != nil {
			m.mirrors = append(m.mirrors, s)
		}
	}
	return m
}

// Emit implements Sink.
func (m *Multi) Emit(ev models.ProgressEvent) error {
	for _, s := range m.mirrors {
		_ = s.Emit(ev) //nolint:errcheck // mirrors are best effort
	}
	return m.primary.Emit(ev)
}

// Recorder is an in-memory Sink, safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []models.ProgressEvent

	// FailAfter makes Emit return an error once this many frames were
	// recorded. Zero disables it.
	FailAfter int
}

// ErrRecorderFull is returned once FailAfter frames were recorded.
var ErrRecorderFull = errors.New("recorder refused frame")

// Emit implements Sink.
func (r *Recorder) Emit(ev models.ProgressEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailAfter > 0 && len(r.events) >= r.FailAfter {
		return ErrRecorderFull
	}
	r.events = append(r.events, ev)
	return nil
}

// Events returns a copy of the recorded frames.
func (r *Recorder) Events() []models.ProgressEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.ProgressEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Last returns the most recent frame, or the zero value.
func (r *Recorder) Last() models.ProgressEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return models.ProgressEvent{}
	}
	return r.events[len(r.events)-1]
}
