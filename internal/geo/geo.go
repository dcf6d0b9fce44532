// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

// Package geo computes great-circle distances between airports.
package geo

import (
	"math"

	"github.com/jftuga/geodist"

	"github.com/tomtom215/jetlog/internal/models"
)

// KmToMiles converts kilometres to statute miles.
const KmToMiles = 0.6213711922

const (
	// EarthRadiusKm is the mean radius used for every stored distance.
	EarthRadiusKm = 6371.0
	// geodistRadiusKm is the radius geodist.HaversineDistance hard-codes.
	geodistRadiusKm = 6378.1
)

// DistanceKm returns the haversine distance in whole kilometres on a sphere
// of radius 6371 km.
func DistanceKm(lat1, lon1, lat2, lon2 float64) int {
	_, km := geodist.HaversineDistance(
		geodist.Coord{Lat: lat1, Lon: lon1},
		geodist.Coord{Lat: lat2, Lon: lon2},
	)
	// Haversine is linear in the radius.
	return int(math.Round(km * EarthRadiusKm / geodistRadiusKm))
}

// AirportDistanceKm returns the distance between two airports, or 0 when
// either airport or any of its coordinates is unknown. A zero coordinate
// counts as unknown.
func AirportDistanceKm(origin, destination *models.Airport) int {
	if origin == nil || destination == nil {
		return 0
	}
	if !known(origin.Latitude) || !known(origin.Longitude) ||
		!known(destination.Latitude) || !known(destination.Longitude) {
		return 0
	}
	return DistanceKm(*origin.Latitude, *origin.Longitude, *destination.Latitude, *destination.Longitude)
}

func known(coord *float64) bool {
	return coord != nil && *coord != 0
}

// ToMiles converts a kilometre distance to whole miles.
func ToMiles(km int) int {
	return int(math.Round(float64(km) * KmToMiles))
}
