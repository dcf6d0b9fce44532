// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

// Package statistics aggregates a filtered flight set into a
// models.StatisticsSnapshot.
//
// Compute is pure: every metric is derived from the same Input, so a report
// never mixes two views of the store. Rows that cannot feed a metric (an
// unresolved airport, an unparseable layover clock) are skipped for that
// metric only.
//
// Distances are aggregated in kilometres. Imperial output converts total
// distance, distance by month and record distances at the end.
package statistics

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/tomtom215/jetlog/internal/flighttime"
	"github.com/tomtom215/jetlog/internal/geo"
	"github.com/tomtom215/jetlog/internal/models"
)

// Ranking limits.
const (
	topN           = 5
	topAirlineRate = 10
)

// co2PerKm is kilograms of CO2 per economy passenger-kilometre.
const co2PerKm = 0.09

var classFactor = map[models.ClassType]float64{
	models.ClassEconomy:     1.0,
	models.ClassEconomyPlus: 1.2,
	models.ClassBusiness:    2.0,
	models.ClassFirst:       3.0,
	models.ClassPrivate:     4.0,
}

// continents lists the reported continents in output order.
var continents = []struct{ code, name string }{
	{"AF", "Africa"},
	{"AN", "Antarctica"},
	{"AS", "Asia"},
	{"EU", "Europe"},
	{"NA", "North America"},
	{"OC", "Oceania"},
	{"SA", "South America"},
}

// Filter selects the flights of one snapshot. Start and End are inclusive
// YYYY-MM-DD bounds; empty means open.
type Filter struct {
	Username string `json:"username"`
	Start    string `json:"start,omitempty"`
	End      string `json:"end,omitempty"`
}

// UnitSystem selects the distance unit of the output.
type UnitSystem int

const (
	Metric UnitSystem = iota
	Imperial
)

// UnitFromMetric maps the API's metric flag to a UnitSystem.
func UnitFromMetric(metric bool) UnitSystem {
	if metric {
		return Metric
	}
	return Imperial
}

// Input is everything Compute reads.
type Input struct {
	// Flights is the filtered set, with airports and airlines attached
	// where they resolve.
	Flights []models.Flight

	// Successors holds the connection targets of Flights by id. Targets may
	// fall outside the filter.
	Successors map[int64]models.Flight

	// ConnectionTargets is every flight id of the user that some flight
	// connects to, regardless of the filter.
	ConnectionTargets map[int64]bool

	// ContinentCountryTotals maps a continent code to the number of
	// distinct countries with airports there.
	ContinentCountryTotals map[string]int
}

// Compute builds the snapshot for in.
func Compute(in Input, unit UnitSystem) models.StatisticsSnapshot {
	flights := sortedFlights(in.Flights)

	s := models.StatisticsSnapshot{TotalFlights: len(flights)}
	computeTotals(&s, flights, in.ConnectionTargets, in.ContinentCountryTotals)
	computeRankings(&s, flights)
	computeMonthly(&s, flights)
	s.Records = computeRecords(flights)
	computeCosts(&s, flights)
	s.TotalCO2Kg = co2Kg(flights)
	s.AvgSpeedKmh = avgSpeed(flights)
	s.UniqueTimezones = uniqueTimezones(flights)
	s.FlightsByDay = flightsByDay(flights)
	computeRatings(&s, flights)
	s.LayoverStats = layovers(flights, in.Successors)
	s.RedeyeCount = redeyes(flights)

	if unit == Imperial {
		toImperial(&s)
	}
	return s
}

// sortedFlights orders a copy by (date, departure time, id). Ranking ties
// keep this order.
func sortedFlights(in []models.Flight) []models.Flight {
	out := make([]models.Flight, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := &out[i], &out[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if da, db := deref(a.DepartureTime), deref(b.DepartureTime); da != db {
			return da < db
		}
		return a.ID < b.ID
	})
	return out
}

func computeTotals(s *models.StatisticsSnapshot, flights []models.Flight, targets map[int64]bool, totals map[string]int) {
	codes := make(map[string]struct{})
	var first, last string
	for i := range flights {
		f := &flights[i]
		s.TotalDuration += derefInt(f.Duration)
		s.TotalDistance += derefInt(f.Distance)
		codes[f.Origin] = struct{}{}
		codes[f.Destination] = struct{}{}
		if first == "" || f.Date < first {
			first = f.Date
		}
		if f.Date > last {
			last = f.Date
		}
	}
	s.TotalUniqueAirports = len(codes)
	s.DaysRange = daysBetween(first, last)

	s.VisitedAirports = len(VisitedAirportCodes(flights, targets))

	visited := VisitedAirports(flights, targets)
	countries := make(map[string]struct{})
	byContinent := make(map[string]map[string]struct{})
	for _, a := range visited {
		if a.Country == "" {
			continue
		}
		countries[a.Country] = struct{}{}
		if a.Continent == "" {
			continue
		}
		if byContinent[a.Continent] == nil {
			byContinent[a.Continent] = make(map[string]struct{})
		}
		byContinent[a.Continent][a.Country] = struct{}{}
	}
	s.VisitedCountries = len(countries)

	s.ContinentCompletion = []models.ContinentCompletion{}
	for _, c := range continents {
		total := totals[c.code]
		if total <= 0 {
			continue
		}
		s.ContinentCompletion = append(s.ContinentCompletion, models.ContinentCompletion{
			Continent: c.name,
			Visited:   len(byContinent[c.code]),
			Total:     total,
		})
	}
}

// visit walks the visited-airport rule: the destination of a flight that
// does not continue, and the origin of a flight that is not a
// continuation. Layover airports drop out. fn sees each ICAO code once, in
// first-seen order, with its airport when it resolved.
func visit(flights []models.Flight, targets map[int64]bool, fn func(code string, a *models.Airport)) {
	seen := make(map[string]bool)
	add := func(code string, a *models.Airport) {
		if code == "" || seen[code] {
			return
		}
		seen[code] = true
		fn(code, a)
	}
	for i := range flights {
		f := &flights[i]
		if f.Connection == nil {
			add(f.Destination, f.DestinationAirport)
		}
		if !targets[f.ID] {
			add(f.Origin, f.OriginAirport)
		}
	}
}

// VisitedAirportCodes returns the ICAO codes of the visited airports,
// whether or not they resolve against reference data.
func VisitedAirportCodes(flights []models.Flight, targets map[int64]bool) []string {
	var out []string
	visit(flights, targets, func(code string, _ *models.Airport) {
		out = append(out, code)
	})
	return out
}

// VisitedAirports returns the visited airports that resolved.
func VisitedAirports(flights []models.Flight, targets map[int64]bool) []*models.Airport {
	var out []*models.Airport
	visit(flights, targets, func(_ string, a *models.Airport) {
		if a != nil {
			out = append(out, a)
		}
	})
	return out
}

func computeRankings(s *models.StatisticsSnapshot, flights []models.Flight) {
	airports := newCounter()
	countries := newCounter()
	seats := newCounter()
	classes := newCounter()
	sides := newCounter()
	airlines := newCounter()
	airlineNames := make(map[string]string)
	routes := newCounter()
	routeEnds := make(map[string][2]string)
	aircraft := newCounter()

	for i := range flights {
		f := &flights[i]

		if o := f.OriginAirport; o != nil {
			airports.add(o.String(), 1)
			countries.add(o.Country, 1)
		}
		if d := f.DestinationAirport; d != nil {
			if f.Connection == nil && (f.OriginAirport == nil || d.ICAO != f.OriginAirport.ICAO) {
				airports.add(d.String(), 1)
			}
			countries.add(d.Country, 1)
		}

		if f.Seat != nil {
			seats.add(string(*f.Seat), 1)
		}
		if f.TicketClass != nil {
			classes.add(string(*f.TicketClass), 1)
		}
		if f.AircraftSide != nil {
			sides.add(string(*f.AircraftSide), 1)
		}
		if a := f.AirlineInfo; a != nil {
			airlines.add(a.ICAO, 1)
			airlineNames[a.ICAO] = a.Name
		}

		key := f.Origin + "\x00" + f.Destination
		routes.add(key, 1)
		routeEnds[key] = [2]string{f.Origin, f.Destination}

		if f.Airplane != nil && *f.Airplane != "" {
			aircraft.add(*f.Airplane, 1)
		}
	}

	s.MostVisitedAirports = airports.ranked(topN)
	s.MostCommonCountries = countries.ranked(topN)
	s.SeatFrequency = seats.ranked(0)
	s.TicketClassFrequency = classes.ranked(0)
	s.SideFrequency = sides.ranked(0)

	s.MostCommonAirlines = airlines.ranked(topN)
	for i := range s.MostCommonAirlines {
		s.MostCommonAirlines[i].Key = airlineNames[s.MostCommonAirlines[i].Key]
	}

	s.TopRoutes = []models.RouteCount{}
	for _, e := range routes.ranked(topN) {
		ends := routeEnds[e.Key]
		s.TopRoutes = append(s.TopRoutes, models.RouteCount{Origin: ends[0], Destination: ends[1], Count: e.Count})
	}

	s.TopAircraft = []models.AircraftCount{}
	for _, e := range aircraft.ranked(topN) {
		s.TopAircraft = append(s.TopAircraft, models.AircraftCount{Airplane: e.Key, Count: e.Count})
	}
}

func computeMonthly(s *models.StatisticsSnapshot, flights []models.Flight) {
	counts := make(map[string]int)
	distances := make(map[string]int)
	for i := range flights {
		m := month(flights[i].Date)
		counts[m]++
		distances[m] += derefInt(flights[i].Distance)
	}

	months := make([]string, 0, len(counts))
	for m := range counts {
		months = append(months, m)
	}
	sort.Strings(months)

	s.FlightsByMonth = make([]models.MonthCount, 0, len(months))
	s.DistanceByMonth = make([]models.MonthDistance, 0, len(months))
	for _, m := range months {
		s.FlightsByMonth = append(s.FlightsByMonth, models.MonthCount{Month: m, Count: counts[m]})
		s.DistanceByMonth = append(s.DistanceByMonth, models.MonthDistance{Month: m, Distance: distances[m]})
	}
}

func computeRecords(flights []models.Flight) models.Records {
	var r models.Records
	days := newCounter()
	months := newCounter()

	for i := range flights {
		f := &flights[i]
		days.add(f.Date, 1)
		months.add(month(f.Date), 1)

		if d := derefInt(f.Distance); d > 0 {
			if r.LongestDistance == nil || d > r.LongestDistance.Distance {
				r.LongestDistance = distanceRecord(f, d)
			}
			if r.ShortestDistance == nil || d < r.ShortestDistance.Distance {
				r.ShortestDistance = distanceRecord(f, d)
			}
		}
		if d := derefInt(f.Duration); d > 0 {
			if r.LongestDuration == nil || d > r.LongestDuration.Duration {
				r.LongestDuration = &models.DurationRecord{
					Origin: f.Origin, Destination: f.Destination, Duration: d, Date: f.Date,
				}
			}
		}
	}

	if top := days.ranked(1); len(top) == 1 {
		r.MostFlightsInDay = &models.DayCount{Date: top[0].Key, Count: top[0].Count}
	}
	if top := months.ranked(1); len(top) == 1 {
		r.BusiestMonth = &models.MonthCount{Month: top[0].Key, Count: top[0].Count}
	}
	return r
}

func distanceRecord(f *models.Flight, d int) *models.DistanceRecord {
	return &models.DistanceRecord{Origin: f.Origin, Destination: f.Destination, Distance: d, Date: f.Date}
}

func computeCosts(s *models.StatisticsSnapshot, flights []models.Flight) {
	totals := make(map[string]float64)
	perKmCost := make(map[string]float64)
	perKmDist := make(map[string]int)

	type classKey struct{ class, currency string }
	var classOrder []classKey
	classSums := make(map[classKey]float64)
	classCounts := make(map[classKey]int)

	for i := range flights {
		f := &flights[i]
		cost := derefFloat(f.Cost)
		currency := deref(f.Currency)
		if cost <= 0 || currency == "" {
			continue
		}
		totals[currency] += cost
		if d := derefInt(f.Distance); d > 0 {
			perKmCost[currency] += cost
			perKmDist[currency] += d
		}
		if f.TicketClass != nil && *f.TicketClass != "" {
			k := classKey{string(*f.TicketClass), currency}
			if classCounts[k] == 0 {
				classOrder = append(classOrder, k)
			}
			classSums[k] += cost
			classCounts[k]++
		}
	}

	s.TotalCost = make(map[string]float64, len(totals))
	for c, v := range totals {
		s.TotalCost[c] = round(v, 2)
	}
	s.CostPerKm = make(map[string]float64, len(perKmCost))
	for c, v := range perKmCost {
		s.CostPerKm[c] = round(v/float64(perKmDist[c]), 2)
	}

	avgs := make([]models.ClassCost, 0, len(classOrder))
	for _, k := range classOrder {
		avgs = append(avgs, models.ClassCost{
			Class:    k.class,
			Currency: k.currency,
			Avg:      classSums[k] / float64(classCounts[k]),
		})
	}
	sort.SliceStable(avgs, func(i, j int) bool { return avgs[i].Avg > avgs[j].Avg })
	for i := range avgs {
		avgs[i].Avg = round(avgs[i].Avg, 2)
	}
	s.AvgCostByClass = avgs
}

func co2Kg(flights []models.Flight) float64 {
	total := 0.0
	for i := range flights {
		d := derefInt(flights[i].Distance)
		if d <= 0 {
			continue
		}
		factor := 1.0
		if c := flights[i].TicketClass; c != nil {
			if v, ok := classFactor[*c]; ok {
				factor = v
			}
		}
		total += float64(d) * co2PerKm * factor
	}
	return round(total, 1)
}

func avgSpeed(flights []models.Flight) float64 {
	var distance, minutes int
	for i := range flights {
		d, m := derefInt(flights[i].Distance), derefInt(flights[i].Duration)
		if d > 0 && m > 0 {
			distance += d
			minutes += m
		}
	}
	if minutes == 0 {
		return 0
	}
	return round(float64(distance)/(float64(minutes)/60), 1)
}

func uniqueTimezones(flights []models.Flight) int {
	zones := make(map[string]struct{})
	for i := range flights {
		for _, a := range []*models.Airport{flights[i].OriginAirport, flights[i].DestinationAirport} {
			if a != nil && a.Timezone != "" {
				zones[a.Timezone] = struct{}{}
			}
		}
	}
	return len(zones)
}

func flightsByDay(flights []models.Flight) []models.DayCount {
	counts := make(map[string]int)
	for i := range flights {
		counts[flights[i].Date]++
	}
	out := make([]models.DayCount, 0, len(counts))
	for d, n := range counts {
		out = append(out, models.DayCount{Date: d, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func computeRatings(s *models.StatisticsSnapshot, flights []models.Flight) {
	type airlineRating struct {
		name  string
		sum   int
		count int
	}
	var order []string
	byAirline := make(map[string]*airlineRating)
	distribution := make(map[int]int)
	sum := 0

	for i := range flights {
		f := &flights[i]
		if f.Rating == nil {
			continue
		}
		r := *f.Rating
		s.RatedFlights++
		sum += r
		distribution[r]++

		if a := f.AirlineInfo; a != nil {
			ar, ok := byAirline[a.ICAO]
			if !ok {
				ar = &airlineRating{name: a.Name}
				byAirline[a.ICAO] = ar
				order = append(order, a.ICAO)
			}
			ar.sum += r
			ar.count++
		}
	}

	if s.RatedFlights > 0 {
		s.AvgRating = round(float64(sum)/float64(s.RatedFlights), 1)
	}

	rated := make([]models.AirlineRating, 0, len(order))
	for _, icao := range order {
		ar := byAirline[icao]
		rated = append(rated, models.AirlineRating{
			Airline: ar.name,
			Avg:     float64(ar.sum) / float64(ar.count),
			Count:   ar.count,
		})
	}
	sort.SliceStable(rated, func(i, j int) bool { return rated[i].Avg > rated[j].Avg })
	if len(rated) > topAirlineRate {
		rated = rated[:topAirlineRate]
	}
	for i := range rated {
		rated[i].Avg = round(rated[i].Avg, 1)
	}
	s.RatingByAirline = rated

	ratings := make([]int, 0, len(distribution))
	for r := range distribution {
		ratings = append(ratings, r)
	}
	sort.Ints(ratings)
	s.RatingDistribution = make(models.Ranking, 0, len(ratings))
	for _, r := range ratings {
		s.RatingDistribution = append(s.RatingDistribution, models.RankEntry{Key: strconv.Itoa(r), Count: distribution[r]})
	}
}

func redeyes(flights []models.Flight) int {
	n := 0
	for i := range flights {
		t := deref(flights[i].DepartureTime)
		if t == "" {
			continue
		}
		if t >= "21:00" || t < "06:00" {
			n++
		}
	}
	return n
}

func toImperial(s *models.StatisticsSnapshot) {
	s.TotalDistance = geo.ToMiles(s.TotalDistance)
	for i := range s.DistanceByMonth {
		s.DistanceByMonth[i].Distance = geo.ToMiles(s.DistanceByMonth[i].Distance)
	}
	if r := s.Records.LongestDistance; r != nil {
		r.Distance = geo.ToMiles(r.Distance)
	}
	if r := s.Records.ShortestDistance; r != nil {
		r.Distance = geo.ToMiles(r.Distance)
	}
}

// daysBetween returns the whole days from first to last, or 0 when either
// does not parse.
func daysBetween(first, last string) int {
	a, errA := time.Parse(flighttime.DateLayout, first)
	b, errB := time.Parse(flighttime.DateLayout, last)
	if errA != nil || errB != nil {
		return 0
	}
	return int(b.Sub(a).Hours() / 24)
}

func month(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func derefFloat(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
