// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package models

// Airport is reference data keyed by ICAO, with IATA as an alternate key.
type Airport struct {
	ICAO         string   `json:"icao"`
	IATA         *string  `json:"iata,omitempty"`
	Type         string   `json:"type"`
	Name         string   `json:"name"`
	Municipality *string  `json:"municipality,omitempty"`
	Region       string   `json:"region"`
	Country      string   `json:"country"`
	Continent    string   `json:"continent"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	Timezone     string   `json:"timezone"`
}

// Code returns the IATA code when present, otherwise the ICAO code.
func (a *Airport) Code() string {
	if a.IATA != nil && *a.IATA != "" {
		return *a.IATA
	}
	return a.ICAO
}

// City returns the municipality, falling back to the airport name.
func (a *Airport) City() string {
	if a.Municipality != nil && *a.Municipality != "" {
		return *a.Municipality
	}
	return a.Name
}

// String renders "JFK - New York/US".
func (a *Airport) String() string {
	municipality := ""
	if a.Municipality != nil {
		municipality = *a.Municipality
	}
	return a.Code() + " - " + municipality + "/" + a.Country
}

// Airline is reference data keyed by ICAO.
type Airline struct {
	ICAO string  `json:"icao"`
	IATA *string `json:"iata,omitempty"`
	Name string  `json:"name"`
}

// Code returns the IATA code when present, otherwise the ICAO code.
func (a *Airline) Code() string {
	if a.IATA != nil && *a.IATA != "" {
		return *a.IATA
	}
	return a.ICAO
}
