// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package export

import (
	"fmt"
	"image/color"
	"io"
	"sort"
	"strconv"

	"github.com/twpayne/go-kml"

	"github.com/tomtom215/jetlog/internal/models"
)

const (
	routeStyleID   = "route"
	airportStyleID = "airport"
)

type kmlRoute struct {
	from, to *models.Airport
	count    int
}

// WriteKML writes a KML document with one point per distinct airport and
// one tessellated line per distinct route. Routes are undirected, so
// KJFK-LFPG and LFPG-KJFK share a line whose name carries the flight
// count. Airports without coordinates are left out, and so are routes
// touching them.
func WriteKML(w io.Writer, flights []models.Flight) error {
	airports := make(map[string]*models.Airport)
	routes := make(map[string]*kmlRoute)

	for i := range flights {
		f := &flights[i]
		from, to := f.OriginAirport, f.DestinationAirport
		if !hasCoordinates(from) || !hasCoordinates(to) {
			continue
		}
		airports[from.ICAO] = from
		airports[to.ICAO] = to

		a, b := from, to
		if b.ICAO < a.ICAO {
			a, b = b, a
		}
		key := a.ICAO + "-" + b.ICAO
		if r, ok := routes[key]; ok {
			r.count++
		} else {
			routes[key] = &kmlRoute{from: a, to: b, count: 1}
		}
	}

	doc := kml.Document(
		kml.Name("Jetlog flights"),
		kml.SharedStyle(routeStyleID,
			kml.LineStyle(
				kml.Color(color.RGBA{R: 0, G: 120, B: 255, A: 200}),
				kml.Width(2),
			),
		),
		kml.SharedStyle(airportStyleID,
			kml.IconStyle(kml.Scale(0.6)),
		),
	)

	for _, code := range sortedKeys(airports) {
		a := airports[code]
		doc.Add(kml.Placemark(
			kml.Name(a.Code()),
			kml.Description(a.Name),
			kml.StyleURL("#"+airportStyleID),
			kml.Point(kml.Coordinates(coordinate(a))),
		))
	}

	for _, key := range sortedKeys(routes) {
		r := routes[key]
		doc.Add(kml.Placemark(
			kml.Name(r.from.Code()+" - "+r.to.Code()),
			kml.Description(flightCount(r.count)),
			kml.StyleURL("#"+routeStyleID),
			kml.LineString(
				kml.Tessellate(true),
				kml.Coordinates(coordinate(r.from), coordinate(r.to)),
			),
		))
	}

	if err := kml.KML(doc).WriteIndent(w, "", "  "); err != nil {
		return fmt.Errorf("failed to write kml: %w", err)
	}
	return nil
}

func flightCount(n int) string {
	if n == 1 {
		return "1 flight"
	}
	return strconv.Itoa(n) + " flights"
}

func hasCoordinates(a *models.Airport) bool {
	return a != nil && a.Latitude != nil && a.Longitude != nil
}

func coordinate(a *models.Airport) kml.Coordinate {
	return kml.Coordinate{Lon: *a.Longitude, Lat: *a.Latitude}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
