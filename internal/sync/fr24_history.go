// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package sync

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/tomtom215/jetlog/internal/config"
)

const providerFR24History = "fr24_history"

const (
	historyAttempts  = 5
	historyBaseDelay = 2 * time.Second
	historyPageLimit = "100"
)

var flightNumberPattern = regexp.MustCompile(`(?i)^([A-Z]{1,3})0*(\d+)$`)

// NormalizeFlightNumber strips spaces and the leading zeros of the numeric
// part: "DL 0271" becomes "DL271". Anything else is returned without spaces.
func NormalizeFlightNumber(fn string) string {
	fn = strings.ReplaceAll(fn, " ", "")
	if m := flightNumberPattern.FindStringSubmatch(fn); m != nil {
		return m[1] + m[2]
	}
	return fn
}

// HistoryEntry is one flight of the FR24 public history list.
type HistoryEntry struct {
	Aircraft struct {
		Model struct {
			Text string `json:"text"`
		} `json:"model"`
		Registration string `json:"registration"`
	} `json:"aircraft"`
	Time struct {
		Scheduled historyTimes `json:"scheduled"`
		Real      historyTimes `json:"real"`
	} `json:"time"`
	Airport struct {
		Origin      historyAirport `json:"origin"`
		Destination historyAirport `json:"destination"`
	} `json:"airport"`
}

type historyTimes struct {
	Departure *int64 `json:"departure"`
	Arrival   *int64 `json:"arrival"`
}

type historyAirport struct {
	Timezone struct {
		Offset int64 `json:"offset"`
	} `json:"timezone"`
}

// DepartureDate returns the UTC date of the scheduled departure, or of the
// real one when no schedule is known. It is empty when neither is set.
func (e *HistoryEntry) DepartureDate() string {
	dep := e.Time.Scheduled.Departure
	if dep == nil || *dep == 0 {
		dep = e.Time.Real.Departure
	}
	if dep == nil || *dep == 0 {
		return ""
	}
	return time.Unix(*dep, 0).UTC().Format(time.DateOnly)
}

// localClock renders epoch+offset as HH:MM.
func localClock(epoch, offset int64) string {
	return time.Unix(epoch+offset, 0).UTC().Format("15:04")
}

type historyResponse struct {
	Result struct {
		Response struct {
			Data []HistoryEntry `json:"data"`
		} `json:"response"`
	} `json:"result"`
}

// FR24HistoryClient reads the public FR24 flight history list. It needs no
// credentials.
type FR24HistoryClient struct {
	baseURL   string
	client    *http.Client
	breaker   *breaker
	attempts  int
	baseDelay time.Duration
}

// NewFR24HistoryClient creates a history client.
func NewFR24HistoryClient(cfg *config.ExternalConfig) *FR24HistoryClient {
	return &FR24HistoryClient{
		baseURL:   strings.TrimRight(cfg.FR24.APIURL, "/"),
		client:    newHTTPClient(cfg.Timeout),
		breaker:   newBreaker(breakerFR24History),
		attempts:  historyAttempts,
		baseDelay: historyBaseDelay,
	}
}

// FlightHistory returns the recent flights operated under flightNumber.
// HTTP 429 is retried with exponential backoff; once the attempts are used
// up the 429 is returned as a *StatusError.
func (c *FR24HistoryClient) FlightHistory(ctx context.Context, flightNumber string) ([]HistoryEntry, error) {
	query := url.Values{}
	query.Set("query", NormalizeFlightNumber(flightNumber))
	query.Set("fetchBy", "flight")
	query.Set("page", "1")
	query.Set("limit", historyPageLimit)

	res, err := castResult[[]HistoryEntry](c.breaker.execute(func() (interface{}, error) {
		resp, err := doWithBackoff(ctx, c.client, requestConfig{
			url:      c.baseURL + "/common/v1/flight/list.json",
			query:    query,
			header:   map[string]string{"User-Agent": userAgent},
			provider: providerFR24History,
		}, c.attempts, c.baseDelay)
		if err != nil {
			return nil, err
		}

		var body historyResponse
		if err := decodeJSON(providerFR24History, resp, &body); err != nil {
			return nil, err
		}
		data := body.Result.Response.Data
		return &data, nil
	}))
	if err != nil {
		return nil, err
	}
	if *res == nil {
		return []HistoryEntry{}, nil
	}
	return *res, nil
}
