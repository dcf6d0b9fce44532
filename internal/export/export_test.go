// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package export

import (
	"bytes"
	"encoding/csv"
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/jetlog/internal/models"
)

func ptr[T any](v T) *T { return &v }

var (
	jfk = &models.Airport{
		ICAO: "KJFK", IATA: ptr("JFK"), Name: "John F Kennedy International Airport",
		Municipality: ptr("New York"), Country: "US", Latitude: ptr(40.6398), Longitude: ptr(-73.7789),
		Timezone: "America/New_York",
	}
	cdg = &models.Airport{
		ICAO: "LFPG", IATA: ptr("CDG"), Name: "Charles de Gaulle International Airport",
		Municipality: ptr("Paris"), Country: "FR", Latitude: ptr(49.0128), Longitude: ptr(2.5500),
		Timezone: "Europe/Paris",
	}
	nowhere = &models.Airport{ICAO: "XXXX", Name: "Unsurveyed Strip", Country: "ZZ"}
)

// sampleFlights covers a fully populated outbound leg, a bare return leg
// and a flight to an airport without coordinates.
func sampleFlights() []models.Flight {
	return []models.Flight{
		{
			ID: 1, Username: "alice", Date: "2025-02-10", Origin: "KJFK", Destination: "LFPG",
			DepartureTime: ptr("18:30"), ArrivalTime: ptr("07:45"), ArrivalDate: ptr("2025-02-11"),
			Seat: ptr(models.SeatWindow), AircraftSide: ptr(models.SideLeft),
			TicketClass: ptr(models.ClassEconomyPlus), Purpose: ptr(models.PurposeLeisure),
			Duration: ptr(435), Distance: ptr(5837), Airplane: ptr("Boeing 777-300ER"),
			Airline: ptr("AFR"), TailNumber: ptr("F-GSQA"), FlightNumber: ptr("AF7"),
			Notes: ptr("Window seat\nGood food, great crew"), Cost: ptr(612.5), Currency: ptr("EUR"),
			Rating: ptr(4), Connection: ptr(int64(9)),
			OriginAirport: jfk, DestinationAirport: cdg,
			AirlineInfo: &models.Airline{ICAO: "AFR", IATA: ptr("AF"), Name: "Air France"},
		},
		{
			ID: 2, Username: "alice", Date: "2025-02-20", Origin: "LFPG", Destination: "KJFK",
			OriginAirport: cdg, DestinationAirport: jfk,
		},
		{
			ID: 3, Username: "alice", Date: "2025-03-01", Origin: "KJFK", Destination: "XXXX",
			Airline: ptr("ZZZ"), OriginAirport: jfk, DestinationAirport: nowhere,
		},
	}
}

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	return rows
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleFlights()); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	rows := readCSV(t, buf.Bytes())

	if len(rows) != 4 {
		t.Fatalf("rows = %d, want header + 3", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(CSVColumns, ",") {
		t.Errorf("header = %v", rows[0])
	}
	for _, col := range rows[0] {
		if col == "id" || col == "username" || col == "connection" {
			t.Errorf("header contains excluded column %q", col)
		}
	}

	got := map[string]string{}
	for i, col := range rows[0] {
		got[col] = rows[1][i]
	}
	want := map[string]string{
		"date": "2025-02-10", "origin": "KJFK", "ticket_class": "economy+", "duration": "435",
		"distance": "5837", "cost": "612.5", "rating": "4", "notes": `Window seat\nGood food, great crew`,
	}
	for col, w := range want {
		if got[col] != w {
			t.Errorf("%s = %q, want %q", col, got[col], w)
		}
	}

	for i, cell := range rows[2] {
		if i > 2 && cell != "" {
			t.Errorf("bare flight column %s = %q, want empty", rows[0][i], cell)
		}
	}
}

func TestWriteICal(t *testing.T) {
	prev := now
	now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = prev })

	var buf bytes.Buffer
	if err := WriteICal(&buf, sampleFlights()[:2]); err != nil {
		t.Fatalf("WriteICal() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"BEGIN:VCALENDAR\r\n",
		"UID:flight-1@jetlog\r\n",
		"DTSTAMP:20250601T120000Z\r\n",
		"SUMMARY:Flight from New York to Paris\r\n",
		`DESCRIPTION:Origin: JFK - New York/US\nDestination: CDG - Paris/FR\n\nNotes: Window seat\nGood food\, great crew` + "\r\n",
		"DTSTART:20250210T183000\r\n",
		"DTEND:20250211T014500\r\n",
		"DTSTART;VALUE=DATE:20250220\r\n",
		"DTEND;VALUE=DATE:20250221\r\n",
		"END:VCALENDAR\r\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("ical missing %q\n%s", want, out)
		}
	}
	if got := strings.Count(out, "BEGIN:VEVENT"); got != 2 {
		t.Errorf("events = %d, want 2", got)
	}
}

func TestWriteICal_BadDate(t *testing.T) {
	t.Parallel()

	err := WriteICal(&bytes.Buffer{}, []models.Flight{{ID: 7, Date: "10/02/2025", Origin: "KJFK", Destination: "LFPG"}})
	if err == nil || !strings.Contains(err.Error(), "flight 7") {
		t.Errorf("WriteICal() = %v, want error naming flight 7", err)
	}
}

func TestWriteMyFlightradar24CSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteMyFlightradar24CSV(&buf, sampleFlights()); err != nil {
		t.Fatalf("WriteMyFlightradar24CSV() error = %v", err)
	}
	rows := readCSV(t, buf.Bytes())
	if len(rows) != 4 || len(rows[0]) != len(MyFlightradar24Columns) {
		t.Fatalf("shape = %d rows x %d cols", len(rows), len(rows[0]))
	}

	tests := []struct {
		row  int
		col  string
		want string
	}{
		{1, "From", "New York (KJFK)"},
		{1, "To", "Paris (LFPG)"},
		{1, "Duration", "07:15:00"},
		{1, "Airline", "Air France (AFR)"},
		{1, "Aircraft", "Boeing 777-300ER"},
		{1, "Seat type", "1"},
		{1, "Flight class", "4"},
		{1, "Flight reason", "1"},
		{1, "Note", "Window seat Good food, great crew"},
		{2, "Airline", " (/)"},
		{2, "Aircraft", " ()"},
		{2, "Duration", ""},
		{2, "Seat type", "0"},
		{3, "Airline", " (ZZZ)"},
		{3, "To", "Unsurveyed Strip (XXXX)"},
	}
	index := map[string]int{}
	for i, col := range rows[0] {
		index[col] = i
	}
	for _, tt := range tests {
		if got := rows[tt.row][index[tt.col]]; got != tt.want {
			t.Errorf("row %d %s = %q, want %q", tt.row, tt.col, got, tt.want)
		}
	}
}

func TestWriteKML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteKML(&buf, sampleFlights()); err != nil {
		t.Fatalf("WriteKML() error = %v", err)
	}

	var doc struct {
		Document struct {
			Placemarks []struct {
				Name        string `xml:"name"`
				Description string `xml:"description"`
				Point       *struct {
					Coordinates string `xml:"coordinates"`
				} `xml:"Point"`
				LineString *struct {
					Tessellate  string `xml:"tessellate"`
					Coordinates string `xml:"coordinates"`
				} `xml:"LineString"`
			} `xml:"Placemark"`
		} `xml:"Document"`
	}
	if err := xml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid XML: %v\n%s", err, buf.String())
	}

	var points, lines []string
	for _, p := range doc.Document.Placemarks {
		switch {
		case p.Point != nil:
			points = append(points, p.Name)
		case p.LineString != nil:
			lines = append(lines, p.Name+" / "+p.Description)
			if p.LineString.Tessellate != "1" && p.LineString.Tessellate != "true" {
				t.Errorf("%s not tessellated", p.Name)
			}
		}
	}

	if strings.Join(points, ",") != "JFK,CDG" {
		t.Errorf("points = %v, want [JFK CDG]", points)
	}
	if len(lines) != 1 || lines[0] != "JFK - CDG / 2 flights" {
		t.Errorf("lines = %v, want one JFK - CDG route with 2 flights", lines)
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	if got := strings.Join(Names(), ","); got != "csv,ical,kml,myflightradar24" {
		t.Errorf("Names() = %s", got)
	}
	f, ok := Lookup("ical")
	if !ok || f.Filename != "jetlog.ics" || !strings.HasPrefix(f.ContentType, "text/calendar") {
		t.Errorf("Lookup(ical) = %+v, %v", f, ok)
	}
	if _, ok := Lookup("pdf"); ok {
		t.Error("Lookup(pdf) should fail")
	}

	var buf bytes.Buffer
	if err := f.Write(&buf, nil); err != nil || !strings.Contains(buf.String(), "END:VCALENDAR") {
		t.Errorf("empty ical = %q, %v", buf.String(), err)
	}
}
