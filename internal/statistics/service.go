// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package statistics

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/jetlog/internal/cache"
	"github.com/tomtom215/jetlog/internal/logging"
	"github.com/tomtom215/jetlog/internal/metrics"
	"github.com/tomtom215/jetlog/internal/models"
)

// Loader reads the input of one snapshot from the store.
type Loader interface {
	StatisticsInput(ctx context.Context, filter Filter) (Input, error)
}

// Service serves snapshots, sharing concurrent identical requests and
// caching results per user until that user writes a flight.
type Service struct {
	loader Loader
	cache  *cache.Cache
	group  singleflight.Group

	// generations counts invalidations per user. A load only caches its
	// snapshot if no invalidation happened while it ran.
	mu          sync.Mutex
	generations map[string]uint64
}

// loadTimeout bounds a shared load, which outlives any single caller.
const loadTimeout = 30 * time.Second

// NewService creates a Service. A ttl of 0 disables caching.
func NewService(loader Loader, ttl time.Duration) *Service {
	s := &Service{loader: loader, generations: make(map[string]uint64)}
	if ttl > 0 {
		s.cache = cache.New(ttl)
	}
	return s
}

// Close stops the cache's cleanup goroutine.
func (s *Service) Close() {
	if s.cache != nil {
		s.cache.Close()
	}
}

// cacheType labels the snapshot cache in the cache metrics.
const cacheType = "statistics"

type cacheParams struct {
	Filter Filter `json:"filter"`
	Metric bool   `json:"metric"`
}

func userPrefix(username string) string {
	return "stats:" + username
}

// Get returns the snapshot for username over [start, end]. The bool reports
// whether it came from the cache.
func (s *Service) Get(ctx context.Context, username, start, end string, metric bool) (*models.StatisticsSnapshot, bool, error) {
	filter := Filter{Username: username, Start: start, End: end}
	key := cache.GenerateKey(userPrefix(username), cacheParams{Filter: filter, Metric: metric})

	if s.cache != nil {
		v, ok := s.cache.Get(key)
		snap, isSnap := v.(*models.StatisticsSnapshot)
		metrics.RecordCacheLookup(cacheType, ok && isSnap)
		if ok && isSnap {
			return snap, true, nil
		}
	}

	gen := s.generation(username)
	// Callers after a write must not join a load that started before it.
	flightKey := key + "#" + strconv.FormatUint(gen, 10)
	ch := s.group.DoChan(flightKey, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		begin := time.Now()
		in, err := s.loader.StatisticsInput(loadCtx, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to load statistics input: %w", err)
		}
		snap := Compute(in, UnitFromMetric(metric))
		if s.cache != nil {
			s.setIfCurrent(username, gen, key, &snap)
		}
		logging.Ctx(ctx).Debug().
			Str("component", "statistics").
			Str("username", username).
			Int("flights", snap.TotalFlights).
			Int64("duration_ms", time.Since(begin).Milliseconds()).
			Msg("Computed statistics snapshot")
		return &snap, nil
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val.(*models.StatisticsSnapshot), false, nil
	}
}

func (s *Service) generation(username string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[username]
}

// setIfCurrent caches snap unless username was invalidated after gen was
// read. Holding mu orders the write against Invalidate.
func (s *Service) setIfCurrent(username string, gen uint64, key string, snap *models.StatisticsSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generations[username] != gen {
		logging.Debug().Str("username", username).Msg("Discarded statistics snapshot computed before a write")
		return
	}
	s.cache.Set(key, snap)
}

// Invalidate drops every cached snapshot of username.
func (s *Service) Invalidate(username string) {
	s.mu.Lock()
	s.generations[username]++
	s.mu.Unlock()

	if s.cache == nil {
		return
	}
	if n := s.cache.DeletePrefix(userPrefix(username) + ":"); n > 0 {
		metrics.CacheInvalidations.WithLabelValues(cacheType).Add(float64(n))
		logging.Debug().Str("username", username).Int("entries", n).Msg("Invalidated statistics cache")
	}
}
