// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package statistics

import (
	"math"

	"github.com/tomtom215/jetlog/internal/flighttime"
	"github.com/tomtom215/jetlog/internal/models"
)

// layovers measures the ground time between each flight and its connection.
// Arrival is the flight's arrival date (or date) at its arrival time;
// departure is the successor's date at its departure time, both naive local
// clocks at the hub. Pairs missing a clock, failing to parse, or not
// positive are left out.
func layovers(flights []models.Flight, successors map[int64]models.Flight) models.LayoverStats {
	var (
		stats    models.LayoverStats
		total    int
		count    int
		hubs     = newCounter()
		shortest *models.Layover
		longest  *models.Layover
	)

	for i := range flights {
		f := &flights[i]
		if f.Connection == nil || f.ArrivalTime == nil {
			continue
		}
		next, ok := successors[*f.Connection]
		if !ok || next.DepartureTime == nil {
			continue
		}

		arr, err := flighttime.ParseLocal(f.EffectiveArrivalDate(), *f.ArrivalTime)
		if err != nil {
			continue
		}
		dep, err := flighttime.ParseLocal(next.Date, *next.DepartureTime)
		if err != nil {
			continue
		}

		minutes := int(dep.Sub(arr).Minutes())
		if minutes <= 0 {
			continue
		}

		l := models.Layover{Hub: f.Destination, Minutes: minutes}
		if shortest == nil || minutes < shortest.Minutes {
			shortest = &l
		}
		if longest == nil || minutes > longest.Minutes {
			longest = &l
		}
		total += minutes
		count++
		hubs.add(f.Destination, 1)
	}

	if count == 0 {
		return stats
	}

	avg := int(math.Round(float64(total) / float64(count)))
	stats.AvgMinutes = &avg
	stats.Count = &count
	stats.Shortest = shortest
	stats.Longest = longest
	if top := hubs.ranked(1); len(top) == 1 {
		stats.BusiestHub = &models.HubCount{ICAO: top[0].Key, Count: top[0].Count}
	}
	return stats
}
