// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package export

import (
	"io"
	"sort"
	"strconv"

	"github.com/tomtom215/jetlog/internal/models"
)

// Format is one export target.
type Format struct {
	Name        string
	Filename    string
	ContentType string
	Write       func(w io.Writer, flights []models.Flight) error
}

var formats = map[string]Format{
	"csv":             {Name: "csv", Filename: "jetlog.csv", ContentType: "text/csv; charset=utf-8", Write: WriteCSV},
	"ical":            {Name: "ical", Filename: "jetlog.ics", ContentType: "text/calendar; charset=utf-8", Write: WriteICal},
	"myflightradar24": {Name: "myflightradar24", Filename: "jetlog_myflightradar24.csv", ContentType: "text/csv; charset=utf-8", Write: WriteMyFlightradar24CSV},
	"kml":             {Name: "kml", Filename: "jetlog.kml", ContentType: "application/vnd.google-earth.kml+xml", Write: WriteKML},
}

// Lookup returns the format registered under name.
func Lookup(name string) (Format, bool) {
	f, ok := formats[name]
	return f, ok
}

// Names lists the registered formats in sorted order.
func Names() []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func itoa(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func ftoa(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func enum[T ~string](p *T) string {
	if p == nil {
		return ""
	}
	return string(*p)
}

// airportLabel renders "CODE - Municipality/Country", falling back to the
// stored code when the airport was not resolved.
func airportLabel(a *models.Airport, stored string) string {
	if a == nil {
		return stored
	}
	return a.Code() + " - " + str(a.Municipality) + "/" + a.Country
}

func municipality(a *models.Airport, stored string) string {
	if a == nil {
		return stored
	}
	if a.Municipality != nil && *a.Municipality != "" {
		return *a.Municipality
	}
	return a.Name
}
