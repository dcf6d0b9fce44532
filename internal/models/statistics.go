// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package models

import (
	"bytes"
	"strconv"

	"github.com/goccy/go-json"
)

// StatisticsSnapshot is a read-only report over one filtered flight set.
// It is computed on demand and never persisted.
type StatisticsSnapshot struct {
	TotalFlights        int `json:"totalFlights"`
	TotalDuration       int `json:"totalDuration"`
	TotalDistance       int `json:"totalDistance"`
	TotalUniqueAirports int `json:"totalUniqueAirports"`
	DaysRange           int `json:"daysRange"`
	VisitedAirports     int `json:"visitedAirports"`
	VisitedCountries    int `json:"visitedCountries"`

	MostVisitedAirports  Ranking `json:"mostVisitedAirports"`
	MostCommonCountries  Ranking `json:"mostCommonCountries"`
	SeatFrequency        Ranking `json:"seatFrequency"`
	TicketClassFrequency Ranking `json:"ticketClassFrequency"`
	MostCommonAirlines   Ranking `json:"mostCommonAirlines"`

	FlightsByMonth  []MonthCount    `json:"flightsByMonth"`
	DistanceByMonth []MonthDistance `json:"distanceByMonth"`
	TopRoutes       []RouteCount    `json:"topRoutes"`
	TopAircraft     []AircraftCount `json:"topAircraft"`

	Records Records `json:"records"`

	TotalCost      map[string]float64 `json:"totalCost"`
	CostPerKm      map[string]float64 `json:"costPerKm"`
	AvgCostByClass []ClassCost        `json:"avgCostByClass"`

	TotalCO2Kg          float64               `json:"totalCo2Kg"`
	AvgSpeedKmh         float64               `json:"avgSpeedKmh"`
	UniqueTimezones     int                   `json:"uniqueTimezones"`
	ContinentCompletion []ContinentCompletion `json:"continentCompletion"`
	FlightsByDay        []DayCount            `json:"flightsByDay"`

	AvgRating          float64         `json:"avgRating"`
	RatedFlights       int             `json:"ratedFlights"`
	RatingByAirline    []AirlineRating `json:"ratingByAirline"`
	RatingDistribution Ranking         `json:"ratingDistribution"`

	SideFrequency Ranking      `json:"sideFrequency"`
	LayoverStats  LayoverStats `json:"layoverStats"`
	RedeyeCount   int          `json:"redeyeCount"`
}

// RankEntry is one key of a frequency ranking.
type RankEntry struct {
	Key   string
	Count int
}

// Ranking is an ordered frequency table. It marshals as a JSON object whose
// keys keep the slice order, which a Go map cannot do.
type Ranking []RankEntry

// Get returns the count for key and whether it is present.
func (r Ranking) Get(key string) (int, bool) {
	for _, e := range r {
		if e.Key == key {
			return e.Count, true
		}
	}
	return 0, false
}

// MarshalJSON implements json.Marshaler.
func (r Ranking) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(e.Count))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MonthCount is a count for a YYYY-MM month.
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// MonthDistance is the distance flown in a YYYY-MM month.
type MonthDistance struct {
	Month    string `json:"month"`
	Distance int    `json:"distance"`
}

// DayCount is a count for a YYYY-MM-DD date.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// RouteCount counts flights on a directed route.
type RouteCount struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Count       int    `json:"count"`
}

// AircraftCount counts flights on an aircraft type.
type AircraftCount struct {
	Airplane string `json:"airplane"`
	Count    int    `json:"count"`
}

// Records holds single-flight extremes. A nil record had no qualifying flight.
type Records struct {
	LongestDistance  *DistanceRecord `json:"longestDistance,omitempty"`
	ShortestDistance *DistanceRecord `json:"shortestDistance,omitempty"`
	LongestDuration  *DurationRecord `json:"longestDuration,omitempty"`
	MostFlightsInDay *DayCount       `json:"mostFlightsInDay,omitempty"`
	BusiestMonth     *MonthCount     `json:"busiestMonth,omitempty"`
}

// DistanceRecord is a distance extreme.
type DistanceRecord struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Distance    int    `json:"distance"`
	Date        string `json:"date"`
}

// DurationRecord is a duration extreme.
type DurationRecord struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Duration    int    `json:"duration"`
	Date        string `json:"date"`
}

// ClassCost is the average cost of one ticket class in one currency.
type ClassCost struct {
	Class    string  `json:"class"`
	Currency string  `json:"currency"`
	Avg      float64 `json:"avg"`
}

// ContinentCompletion compares visited countries against reference totals.
type ContinentCompletion struct {
	Continent string `json:"continent"`
	Visited   int    `json:"visited"`
	Total     int    `json:"total"`
}

// AirlineRating is the average rating of one airline.
type AirlineRating struct {
	Airline string  `json:"airline"`
	Avg     float64 `json:"avg"`
	Count   int     `json:"count"`
}

// LayoverStats summarizes time spent between connected legs. Every field is
// nil when no layover could be measured.
type LayoverStats struct {
	AvgMinutes *int      `json:"avgMinutes,omitempty"`
	Shortest   *Layover  `json:"shortest,omitempty"`
	Longest    *Layover  `json:"longest,omitempty"`
	Count      *int      `json:"count,omitempty"`
	BusiestHub *HubCount `json:"busiestHub,omitempty"`
}

// Layover is one measured connection.
type Layover struct {
	Hub     string `json:"hub"`
	Minutes int    `json:"minutes"`
}

// HubCount counts layovers at one airport.
type HubCount struct {
	ICAO  string `json:"icao"`
	Count int    `json:"count"`
}
