// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package sync

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/tomtom215/jetlog/internal/config"
)

const providerADSBDB = "adsbdb"

// ErrNoAirline is returned when adsbdb knows the callsign but not its airline.
var ErrNoAirline = errors.New("callsign has no airline")

// ADSBDBClient resolves callsigns to airlines through adsbdb.
type ADSBDBClient struct {
	baseURL string
	client  *http.Client
	breaker *breaker
}

// NewADSBDBClient creates an adsbdb client.
func NewADSBDBClient(cfg *config.ExternalConfig) *ADSBDBClient {
	return &ADSBDBClient{
		baseURL: strings.TrimRight(cfg.ADSBDB.URL, "/"),
		client:  newHTTPClient(cfg.Timeout),
		breaker: newBreaker(breakerADSBDB),
	}
}

type adsbdbCallsignResponse struct {
	Response struct {
		FlightRoute *struct {
			Airline *struct {
				ICAO string `json:"icao"`
			} `json:"airline"`
		} `json:"flightroute"`
	} `json:"response"`
}

// AirlineForCallsign returns the ICAO code of the airline operating
// callsign. A non-200 answer is a *StatusError.
func (c *ADSBDBClient) AirlineForCallsign(ctx context.Context, callsign string) (string, error) {
	res, err := castResult[string](c.breaker.execute(func() (interface{}, error) {
		resp, err := do(ctx, c.client, requestConfig{
			url:      c.baseURL + "/v0/callsign/" + url.PathEscape(callsign),
			provider: providerADSBDB,
		})
		if err != nil {
			return nil, err
		}

		var body adsbdbCallsignResponse
		if err := decodeJSON(providerADSBDB, resp, &body); err != nil {
			return nil, err
		}
		route := body.Response.FlightRoute
		if route == nil || route.Airline == nil || route.Airline.ICAO == "" {
			return nil, ErrNoAirline
		}
		icao := route.Airline.ICAO
		return &icao, nil
	}))
	if err != nil {
		return "", err
	}
	return *res, nil
}
