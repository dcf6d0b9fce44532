// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package sync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/jetlog/internal/config"
	"github.com/tomtom215/jetlog/internal/database"
	"github.com/tomtom215/jetlog/internal/logging"
	"github.com/tomtom215/jetlog/internal/metrics"
	"github.com/tomtom215/jetlog/internal/models"
	"github.com/tomtom215/jetlog/internal/progress"
)

// Source labels of the detail enrichment progress items.
const (
	sourceFR24      = "FR24"
	sourceFlightera = "Flightera"
	sourceFR24Only  = "FR24 only"
)

// maxDetailValues caps the values listed in a progress item.
const maxDetailValues = 2

// EnrichmentStore is the persistence the enrichment passes need.
type EnrichmentStore interface {
	CallsignGroups(ctx context.Context, username string) ([]database.CallsignGroup, error)
	SetAirlineForCallsign(ctx context.Context, username, flightNumber, airlineICAO string) (int64, error)
	EnrichmentCandidates(ctx context.Context, username string) ([]models.Flight, error)
	BackfillFlight(ctx context.Context, id int64, b database.FlightBackfill) (bool, error)
}

// CallsignResolver maps a callsign to an airline ICAO code.
type CallsignResolver interface {
	AirlineForCallsign(ctx context.Context, callsign string) (string, error)
}

// HistorySource lists recent flights for a flight number.
type HistorySource interface {
	FlightHistory(ctx context.Context, flightNumber string) ([]HistoryEntry, error)
}

// FallbackSource looks up one flight on one date.
type FallbackSource interface {
	Lookup(ctx context.Context, flightNumber, date string) (*FlighteraResult, error)
}

// Result summarizes one enrichment pass.
type Result struct {
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Total   int `json:"total"`
}

// Enricher runs the airline and detail enrichment passes.
type Enricher struct {
	store     EnrichmentStore
	enabled   bool
	callsigns CallsignResolver
	history   HistorySource
	fallback  FallbackSource

	groupInterval    time.Duration
	fallbackInterval time.Duration
}

// NewEnricher wires the adsbdb, FR24 history and, when a key is set,
// Flightera clients.
func NewEnricher(store EnrichmentStore, cfg *config.ExternalConfig) *Enricher {
	e := &Enricher{
		store:            store,
		enabled:          cfg.Enabled,
		callsigns:        NewADSBDBClient(cfg),
		history:          NewFR24HistoryClient(cfg),
		groupInterval:    cfg.EnrichGroupInterval,
		fallbackInterval: cfg.FlighteraInterval,
	}
	if cfg.Flightera.Configured() {
		e.fallback = NewFlighteraClient(cfg)
	}
	return e
}

// AirlinesFromCallsigns fills the airline of flights that have a flight
// number but no airline, one adsbdb call per distinct flight number. A
// failed group counts all its flights as skipped and the pass continues.
func (e *Enricher) AirlinesFromCallsigns(ctx context.Context, username string, sink progress.Sink) (Result, error) {
	if !e.enabled {
		return Result{}, ErrExternalDisabled
	}

	ctx = logging.ContextWithUsername(ctx, username)
	logger := logging.Ctx(ctx).With().Str("component", "enrichment").Str("pass", metrics.PassAirlines).Logger()
	tr := progress.NewTracker(sink)
	began := time.Now()

	groups, err := e.store.CallsignGroups(ctx, username)
	if err != nil {
		_ = tr.Fail(err) //nolint:errcheck // already failing
		metrics.RecordPass(metrics.PassAirlines, time.Since(began), 0, 0, 0, err)
		return Result{}, err
	}

	res := Result{Total: len(groups)}
	if res.Total == 0 {
		return res, tr.Done(0, 0)
	}
	logger.Info().Int("total", res.Total).Msg("airline enrichment started")
	if err := tr.Start(res.Total); err != nil {
		return res, err
	}

	failed := 0
	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			logger.Warn().Int("processed", tr.Current()).Msg("airline enrichment cancelled")
			return res, err
		}

		item, errMsg := e.resolveGroup(ctx, username, g)
		ok := errMsg == ""
		if ok {
			res.Updated += g.Flights
		} else {
			res.Skipped += g.Flights
			failed++
			logger.Debug().Str("callsign", g.FlightNumber).Str("error", errMsg).Msg("callsign lookup failed")
		}
		if err := tr.Step(item, ok, errMsg); err != nil {
			return res, fmt.Errorf("progress consumer gone: %w", err)
		}
	}

	if err := tr.Done(res.Updated, res.Skipped); err != nil {
		return res, fmt.Errorf("progress consumer gone: %w", err)
	}

	metrics.RecordPass(metrics.PassAirlines, time.Since(began), res.Updated, res.Skipped, failed, nil)
	logger.Info().
		Int("updated", res.Updated).
		Int("skipped", res.Skipped).
		Int("total", res.Total).
		Int64("duration_ms", time.Since(began).Milliseconds()).
		Msg("airline enrichment finished")
	return res, nil
}

// resolveGroup looks up and stores the airline of one callsign group. An
// empty errMsg means success.
func (e *Enricher) resolveGroup(ctx context.Context, username string, g database.CallsignGroup) (item, errMsg string) {
	failedItem := fmt.Sprintf("%s (%d flights)", g.FlightNumber, g.Flights)

	icao, err := e.callsigns.AirlineForCallsign(ctx, g.FlightNumber)
	if err != nil {
		return failedItem, err.Error()
	}
	if _, err := e.store.SetAirlineForCallsign(ctx, username, g.FlightNumber, icao); err != nil {
		return failedItem, err.Error()
	}
	return fmt.Sprintf("%s -> %s (%d flights)", g.FlightNumber, icao, g.Flights), ""
}

// flightGroup is the candidates sharing one flight number.
type flightGroup struct {
	flightNumber string
	flights      []models.Flight
}

// groupByFlightNumber keeps first-seen group order.
func groupByFlightNumber(flights []models.Flight) []flightGroup {
	var groups []flightGroup
	index := make(map[string]int)
	for _, f := range flights {
		fn := deref(f.FlightNumber)
		i, ok := index[fn]
		if !ok {
			i = len(groups)
			index[fn] = i
			groups = append(groups, flightGroup{flightNumber: fn})
		}
		groups[i].flights = append(groups[i].flights, f)
	}
	return groups
}

// EnrichDetails backfills aircraft, registration, times and duration. Each
// flight-number group queries the FR24 history once; flights with no FR24
// match fall back to Flightera when it is configured. Only NULL columns are
// written.
func (e *Enricher) EnrichDetails(ctx context.Context, username string, sink progress.Sink) (Result, error) {
	if !e.enabled {
		return Result{}, ErrExternalDisabled
	}

	ctx = logging.ContextWithUsername(ctx, username)
	logger := logging.Ctx(ctx).With().Str("component", "enrichment").Str("pass", metrics.PassEnrich).Logger()
	tr := progress.NewTracker(sink)
	began := time.Now()

	candidates, err := e.store.EnrichmentCandidates(ctx, username)
	if err != nil {
		_ = tr.Fail(err) //nolint:errcheck // already failing
		metrics.RecordPass(metrics.PassEnrich, time.Since(began), 0, 0, 0, err)
		return Result{}, err
	}

	groups := groupByFlightNumber(candidates)
	res := Result{Total: len(groups)}
	if res.Total == 0 {
		return res, tr.Done(0, 0)
	}
	logger.Info().Int("total", res.Total).Int("flights", len(candidates)).Msg("detail enrichment started")
	if err := tr.Start(res.Total); err != nil {
		return res, err
	}

	groupLimiter := rate.NewLimiter(rate.Every(e.groupInterval), 1)
	fallbackLimiter := rate.NewLimiter(rate.Every(e.fallbackInterval), 1)
	failed := 0

	for _, g := range groups {
		if err := groupLimiter.Wait(ctx); err != nil {
			logger.Warn().Int("processed", tr.Current()).Msg("detail enrichment cancelled")
			return res, err
		}

		gr, err := e.enrichGroup(ctx, g, fallbackLimiter)
		if err != nil {
			logger.Warn().Int("processed", tr.Current()).Msg("detail enrichment cancelled")
			return res, err
		}
		res.Updated += gr.updated
		res.Skipped += gr.skipped

		ok := gr.updated > 0
		if !ok {
			failed++
		}
		if err := tr.Step(gr.label(g), ok, gr.errMsg); err != nil {
			return res, fmt.Errorf("progress consumer gone: %w", err)
		}
	}

	if err := tr.Done(res.Updated, res.Skipped); err != nil {
		return res, fmt.Errorf("progress consumer gone: %w", err)
	}

	metrics.RecordPass(metrics.PassEnrich, time.Since(began), res.Updated, res.Skipped, failed, nil)
	logger.Info().
		Int("updated", res.Updated).
		Int("skipped", res.Skipped).
		Int("total", res.Total).
		Int64("duration_ms", time.Since(began).Milliseconds()).
		Msg("detail enrichment finished")
	return res, nil
}

// groupResult tallies one flight-number group.
type groupResult struct {
	updated int
	skipped int
	pending int
	detail  []string
	errMsg  string

	hasFallback bool
}

func (gr *groupResult) source() string {
	switch {
	case gr.pending == 0:
		return sourceFR24
	case gr.hasFallback:
		return sourceFlightera
	default:
		return sourceFR24Only
	}
}

func (gr *groupResult) label(g flightGroup) string {
	detail := "no match"
	if len(gr.detail) > 0 {
		n := min(len(gr.detail), maxDetailValues)
		detail = strings.Join(gr.detail[:n], ", ")
	}
	return fmt.Sprintf("%s: %d/%d enriched via %s (%s)", g.flightNumber, gr.updated, len(g.flights), gr.source(), detail)
}

// addDetail records aircraft and registration values, once each.
func (gr *groupResult) addDetail(v string) {
	for _, d := range gr.detail {
		if d == v {
			return
		}
	}
	gr.detail = append(gr.detail, v)
}

// apply writes b to f and updates the tally.
func (e *Enricher) apply(ctx context.Context, f *models.Flight, b database.FlightBackfill, gr *groupResult) {
	if b.Empty() {
		gr.skipped++
		return
	}
	touched, err := e.store.BackfillFlight(ctx, f.ID, b)
	if err != nil {
		gr.skipped++
		gr.errMsg = err.Error()
		return
	}
	if touched {
		gr.updated++
	} else {
		gr.skipped++
	}
}

// enrichGroup enriches one group. It returns an error only when ctx is done.
func (e *Enricher) enrichGroup(ctx context.Context, g flightGroup, fallbackLimiter *rate.Limiter) (*groupResult, error) {
	gr := &groupResult{hasFallback: e.fallback != nil}

	byDate := make(map[string]*HistoryEntry)
	history, err := e.history.FlightHistory(ctx, g.flightNumber)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logging.Ctx(ctx).Debug().Err(err).Str("flight_number", g.flightNumber).Msg("FR24 history lookup failed")
	}
	for i := range history {
		if d := history[i].DepartureDate(); d != "" {
			byDate[d] = &history[i]
		}
	}

	var pending []*models.Flight
	for i := range g.flights {
		f := &g.flights[i]
		entry, ok := byDate[f.Date]
		if !ok {
			pending = append(pending, f)
			continue
		}
		e.apply(ctx, f, historyBackfill(f, entry, gr), gr)
	}
	gr.pending = len(pending)

	if e.fallback == nil {
		gr.skipped += len(pending)
		return gr, nil
	}

	for _, f := range pending {
		if err := fallbackLimiter.Wait(ctx); err != nil {
			return nil, err
		}
		found, err := e.fallback.Lookup(ctx, g.flightNumber, f.Date)
		if err != nil || found == nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			gr.skipped++
			continue
		}
		e.apply(ctx, f, flighteraBackfill(f, found, gr), gr)
	}
	return gr, nil
}

// historyBackfill picks the values of entry for the NULL columns of f.
func historyBackfill(f *models.Flight, entry *HistoryEntry, gr *groupResult) database.FlightBackfill {
	var b database.FlightBackfill

	if f.Airplane == nil && entry.Aircraft.Model.Text != "" {
		b.Airplane = &entry.Aircraft.Model.Text
		gr.addDetail(entry.Aircraft.Model.Text)
	}
	if f.TailNumber == nil && entry.Aircraft.Registration != "" {
		b.TailNumber = &entry.Aircraft.Registration
		gr.addDetail(entry.Aircraft.Registration)
	}

	dep, arr := entry.Time.Real.Departure, entry.Time.Real.Arrival
	hasDep := dep != nil && *dep != 0
	hasArr := arr != nil && *arr != 0

	if f.DepartureTime == nil && hasDep {
		s := localClock(*dep, entry.Airport.Origin.Timezone.Offset)
		b.DepartureTime = &s
	}
	if f.ArrivalTime == nil && hasArr {
		s := localClock(*arr, entry.Airport.Destination.Timezone.Offset)
		b.ArrivalTime = &s
	}
	if f.Duration == nil && hasDep && hasArr {
		if minutes := int((*arr - *dep) / 60); minutes > 0 {
			b.Duration = &minutes
		}
	}
	return b
}

// flighteraBackfill picks the values of r for the NULL columns of f.
// Flightera reports local times already.
func flighteraBackfill(f *models.Flight, r *FlighteraResult, gr *groupResult) database.FlightBackfill {
	var b database.FlightBackfill

	if f.Airplane == nil && r.Aircraft != "" {
		b.Airplane = &r.Aircraft
		gr.addDetail(r.Aircraft)
	}
	if f.TailNumber == nil && r.Registration != "" {
		b.TailNumber = &r.Registration
		gr.addDetail(r.Registration)
	}
	if f.DepartureTime == nil && strings.Contains(r.DepartureTime, ":") {
		b.DepartureTime = &r.DepartureTime
	}
	if f.ArrivalTime == nil && strings.Contains(r.ArrivalTime, ":") {
		b.ArrivalTime = &r.ArrivalTime
	}
	return b
}
