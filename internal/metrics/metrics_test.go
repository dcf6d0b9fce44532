// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestRecordAPIRequest tests API request metric recording
func TestRecordAPIRequest(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		endpoint   string
		statusCode string
		duration   time.Duration
	}{
		{
			name:       "list flights",
			method:     "GET",
			endpoint:   "/api/flights",
			statusCode: "200",
			duration:   25 * time.Millisecond,
		},
		{
			name:       "login",
			method:     "POST",
			endpoint:   "/api/auth/login",
			statusCode: "200",
			duration:   150 * time.Millisecond,
		},
		{
			name:       "unauthorized statistics",
			method:     "GET",
			endpoint:   "/api/statistics",
			statusCode: "401",
			duration:   5 * time.Millisecond,
		},
		{
			name:       "forbidden patch",
			method:     "PATCH",
			endpoint:   "/api/flights",
			statusCode: "403",
			duration:   3 * time.Millisecond,
		},
		{
			name:       "sync failure",
			method:     "POST",
			endpoint:   "/api/fr24/sync",
			statusCode: "502",
			duration:   500 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues(tt.method, tt.endpoint, tt.statusCode))
			RecordAPIRequest(tt.method, tt.endpoint, tt.statusCode, tt.duration)
			after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues(tt.method, tt.endpoint, tt.statusCode))
			if after-before != 1 {
				t.Errorf("api_requests_total delta = %v, want 1", after-before)
			}
		})
	}
}

// TestTrackActiveRequest_RequestLifecycle simulates a realistic request lifecycle
func TestTrackActiveRequest_RequestLifecycle(t *testing.T) {
	start := testutil.ToFloat64(APIActiveRequests)

	for i := 0; i < 10; i++ {
		TrackActiveRequest(true)
	}
	if got := testutil.ToFloat64(APIActiveRequests) - start; got != 10 {
		t.Errorf("active requests = %v, want 10", got)
	}

	for i := 0; i < 10; i++ {
		TrackActiveRequest(false)
	}
	if got := testutil.ToFloat64(APIActiveRequests) - start; got != 0 {
		t.Errorf("active requests after completion = %v, want 0", got)
	}
}

func TestRecordPass(t *testing.T) {
	tests := []struct {
		name    string
		pass    string
		updated int
		skipped int
		failed  int
		err     error
	}{
		{name: "clean inference", pass: PassConnections, updated: 3, skipped: 1},
		{name: "partial enrichment", pass: PassEnrich, updated: 2, skipped: 4, failed: 1},
		{name: "setup failure", pass: PassFR24Sync, err: errors.New("login failed")},
		{name: "empty pass", pass: PassAirlines},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated := PassItems.WithLabelValues(tt.pass, OutcomeUpdated)
			skipped := PassItems.WithLabelValues(tt.pass, OutcomeSkipped)
			failed := PassItems.WithLabelValues(tt.pass, OutcomeFailed)
			errs := PassErrors.WithLabelValues(tt.pass)

			u0, s0, f0, e0 := testutil.ToFloat64(updated), testutil.ToFloat64(skipped), testutil.ToFloat64(failed), testutil.ToFloat64(errs)
			RecordPass(tt.pass, time.Second, tt.updated, tt.skipped, tt.failed, tt.err)

			if got := testutil.ToFloat64(updated) - u0; got != float64(tt.updated) {
				t.Errorf("updated delta = %v, want %d", got, tt.updated)
			}
			if got := testutil.ToFloat64(skipped) - s0; got != float64(tt.skipped) {
				t.Errorf("skipped delta = %v, want %d", got, tt.skipped)
			}
			if got := testutil.ToFloat64(failed) - f0; got != float64(tt.failed) {
				t.Errorf("failed delta = %v, want %d", got, tt.failed)
			}
			wantErr := 0.0
			if tt.err != nil {
				wantErr = 1
			}
			if got := testutil.ToFloat64(errs) - e0; got != wantErr {
				t.Errorf("errors delta = %v, want %v", got, wantErr)
			}
		})
	}
}

func TestRecordExternalRequest(t *testing.T) {
	c := ExternalRequests.WithLabelValues("adsbdb", "404")
	before := testutil.ToFloat64(c)
	RecordExternalRequest("adsbdb", "404", 40*time.Millisecond)
	RecordExternalRequest("adsbdb", "404", 20*time.Millisecond)
	if got := testutil.ToFloat64(c) - before; got != 2 {
		t.Errorf("external_requests_total delta = %v, want 2", got)
	}
}

func TestRecordCacheLookup(t *testing.T) {
	hits := CacheHits.WithLabelValues("statistics_test")
	misses := CacheMisses.WithLabelValues("statistics_test")
	h0, m0 := testutil.ToFloat64(hits), testutil.ToFloat64(misses)

	RecordCacheLookup("statistics_test", true)
	RecordCacheLookup("statistics_test", false)
	RecordCacheLookup("statistics_test", false)

	if got := testutil.ToFloat64(hits) - h0; got != 1 {
		t.Errorf("hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(misses) - m0; got != 2 {
		t.Errorf("misses = %v, want 2", got)
	}
}

// TestCircuitBreakerMetrics tests circuit breaker metric recording
func TestCircuitBreakerMetrics(t *testing.T) {
	cbName := "test_breaker"

	CircuitBreakerState.WithLabelValues(cbName).Set(2)
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues(cbName)); got != 2 {
		t.Errorf("state = %v, want 2", got)
	}

	CircuitBreakerRequests.WithLabelValues(cbName, "success").Inc()
	CircuitBreakerRequests.WithLabelValues(cbName, "failure").Inc()
	CircuitBreakerRequests.WithLabelValues(cbName, "rejected").Inc()
	CircuitBreakerConsecutiveFailures.WithLabelValues(cbName).Set(5)
	transitions := CircuitBreakerTransitions.WithLabelValues(cbName, "closed", "open")
	before := testutil.ToFloat64(transitions)
	transitions.Inc()

	if got := testutil.ToFloat64(transitions) - before; got != 1 {
		t.Errorf("transitions = %v, want 1", got)
	}
}

// TestWebSocketMetrics tests WebSocket metric recording
func TestWebSocketMetrics(t *testing.T) {
	WSConnections.Set(10)
	WSConnections.Inc()
	WSConnections.Dec()
	if got := testutil.ToFloat64(WSConnections); got != 10 {
		t.Errorf("connections = %v, want 10", got)
	}

	WSMessagesSent.Add(100)
	WSMessagesDropped.Inc()
	WSErrors.WithLabelValues("write_timeout").Inc()
}

// TestConcurrentMetricRecording tests thread-safety of metric helpers
func TestConcurrentMetricRecording(t *testing.T) {
	const goroutines = 50

	c := PassItems.WithLabelValues("concurrent_test", OutcomeUpdated)
	before := testutil.ToFloat64(c)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			RecordPass("concurrent_test", time.Millisecond, 1, 0, 0, nil)
			RecordAPIRequest("GET", "/api/flights", "200", time.Millisecond)
			TrackActiveRequest(true)
			TrackActiveRequest(false)
		}()
	}
	wg.Wait()

	if got := testutil.ToFloat64(c) - before; got != goroutines {
		t.Errorf("updated delta = %v, want %d", got, goroutines)
	}
}

// TestMetricsRegistration verifies all metrics are properly registered
func TestMetricsRegistration(t *testing.T) {
	collectors := []prometheus.Collector{
		APIRequestsTotal,
		APIRequestDuration,
		APIActiveRequests,
		APIRateLimitHits,
		PassDuration,
		PassItems,
		PassErrors,
		ExternalRequests,
		ExternalRequestDuration,
		CacheHits,
		CacheMisses,
		CacheInvalidations,
		WSConnections,
		WSMessagesSent,
		WSMessagesDropped,
		WSErrors,
		CircuitBreakerState,
		CircuitBreakerRequests,
		CircuitBreakerConsecutiveFailures,
		CircuitBreakerTransitions,
		AppInfo,
		AppUptime,
	}

	for _, m := range collectors {
		ch := make(chan *prometheus.Desc, 10)
		m.Describe(ch)
		close(ch)

		count := 0
		for range ch {
			count++
		}
		if count == 0 {
			t.Errorf("Metric has no descriptors")
		}
	}
}

// TestMetricGathering tests that metrics can be gathered using testutil
func TestMetricGathering(t *testing.T) {
	RecordAPIRequest("GET", "/health", "200", time.Millisecond)

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Logf("Lint errors (may be expected): %v", err)
	}
	for _, p := range problems {
		t.Logf("Metric lint problem: %s", p.Text)
	}
}

func BenchmarkRecordAPIRequest(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordAPIRequest("GET", "/api/flights", "200", 25*time.Millisecond)
	}
}

func BenchmarkRecordPass(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordPass(PassConnections, time.Second, 1, 1, 0, nil)
	}
}
