// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package sync

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/tomtom215/jetlog/internal/config"
)

const (
	providerFlightera   = "flightera"
	flighteraRetryDelay = 5 * time.Second
	flighteraLanded     = "landed"
)

// FlighteraResult holds the details of one landed flight. Times are local
// HH:MM and may be empty.
type FlighteraResult struct {
	Aircraft      string
	Registration  string
	DepartureTime string
	ArrivalTime   string
}

type flighteraFlight struct {
	Status                  string `json:"status"`
	Model                   string `json:"model"`
	Family                  string `json:"family"`
	Reg                     string `json:"reg"`
	ActualDepartureLocal    string `json:"actual_departure_local"`
	ScheduledDepartureLocal string `json:"scheduled_departure_local"`
	ActualArrivalLocal      string `json:"actual_arrival_local"`
	ScheduledArrivalLocal   string `json:"scheduled_arrival_local"`
}

// FlighteraClient looks up historical flights on the Flightera RapidAPI.
type FlighteraClient struct {
	baseURL    string
	host       string
	apiKey     string
	client     *http.Client
	breaker    *breaker
	retryDelay time.Duration
}

// NewFlighteraClient creates a Flightera client.
func NewFlighteraClient(cfg *config.ExternalConfig) *FlighteraClient {
	base := strings.TrimRight(cfg.Flightera.URL, "/")
	host := base
	if u, err := url.Parse(base); err == nil && u.Host != "" {
		host = u.Host
	}
	return &FlighteraClient{
		baseURL:    base,
		host:       host,
		apiKey:     cfg.Flightera.APIKey,
		client:     newHTTPClient(cfg.Timeout),
		breaker:    newBreaker(breakerFlightera),
		retryDelay: flighteraRetryDelay,
	}
}

// Lookup returns the first landed flight for flightNumber on date
// (YYYY-MM-DD). It returns nil without error when Flightera has no match,
// answers with an error object, or rejects the request.
func (c *FlighteraClient) Lookup(ctx context.Context, flightNumber, date string) (*FlighteraResult, error) {
	query := url.Values{}
	query.Set("flnr", NormalizeFlightNumber(flightNumber))
	query.Set("date", date)
	cfg := requestConfig{
		url:   c.baseURL + "/flight/info",
		query: query,
		header: map[string]string{
			"X-RapidAPI-Key":  c.apiKey,
			"X-RapidAPI-Host": c.host,
		},
		provider: providerFlightera,
	}

	return castResult[FlighteraResult](c.breaker.execute(func() (interface{}, error) {
		resp, err := do(ctx, c.client, cfg)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			_ = resp.Body.Close()
			if err := sleep(ctx, c.retryDelay); err != nil {
				return nil, err
			}
			if resp, err = do(ctx, c.client, cfg); err != nil {
				return nil, err
			}
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, nil
		}

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read flightera response: %w", err)
		}
		flights, err := decodeFlighteraFlights(raw)
		if err != nil {
			return nil, err
		}
		return firstLanded(flights), nil
	}))
}

// decodeFlighteraFlights accepts a single object or a list. An object with
// an "Error" key decodes to no flights.
func decodeFlighteraFlights(raw []byte) ([]flighteraFlight, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}

	if raw[0] == '[' {
		var flights []flighteraFlight
		if err := json.Unmarshal(raw, &flights); err != nil {
			return nil, fmt.Errorf("failed to decode flightera response: %w", err)
		}
		return flights, nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("failed to decode flightera response: %w", err)
	}
	if _, isError := probe["Error"]; isError {
		return nil, nil
	}
	var f flighteraFlight
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to decode flightera response: %w", err)
	}
	return []flighteraFlight{f}, nil
}

// firstLanded picks the first landed flight that carries any usable detail.
func firstLanded(flights []flighteraFlight) *FlighteraResult {
	for i := range flights {
		f := &flights[i]
		if f.Status != flighteraLanded {
			continue
		}

		res := &FlighteraResult{
			Aircraft:      firstNonEmpty(f.Model, f.Family),
			Registration:  f.Reg,
			DepartureTime: localHHMM(firstNonEmpty(f.ActualDepartureLocal, f.ScheduledDepartureLocal)),
			ArrivalTime:   localHHMM(firstNonEmpty(f.ActualArrivalLocal, f.ScheduledArrivalLocal)),
		}
		if res.Aircraft != "" || res.Registration != "" || res.DepartureTime != "" {
			return res
		}
	}
	return nil
}

// localHHMM cuts HH:MM out of "2026-02-10T22:40:17-05:00".
func localHHMM(ts string) string {
	if len(ts) < 16 {
		return ""
	}
	return ts[11:16]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
