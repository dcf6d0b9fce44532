// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/tomtom215/jetlog/internal/cache"
	"github.com/tomtom215/jetlog/internal/config"
	"github.com/tomtom215/jetlog/internal/metrics"
	"github.com/tomtom215/jetlog/internal/models"
)

const providerFR24Web = "fr24_web"

// Cache type labels for the session search caches.
const (
	cacheFR24Airport = "fr24_airport"
	cacheFR24Airline = "fr24_airline"
)

var (
	// ErrLoginFailed is returned when myFlightradar24 rejects the credentials.
	ErrLoginFailed = errors.New("FR24 login failed")

	// ErrUnresolvedAirport is returned when an endpoint has no FR24 match.
	ErrUnresolvedAirport = errors.New("could not resolve airports")

	userIDPattern = regexp.MustCompile(`name="userId"\s+value="(\d+)"`)
)

// myFlightradar24 form codes.
var (
	fr24SeatCodes = map[models.SeatType]string{
		models.SeatWindow: "1",
		models.SeatMiddle: "2",
		models.SeatAisle:  "3",
	}
	fr24ClassCodes = map[models.ClassType]string{
		models.ClassEconomy:     "1",
		models.ClassBusiness:    "2",
		models.ClassFirst:       "3",
		models.ClassEconomyPlus: "4",
		models.ClassPrivate:     "5",
	}
	fr24PurposeCodes = map[models.FlightPurpose]string{
		models.PurposeLeisure:  "1",
		models.PurposeBusiness: "2",
		models.PurposeCrew:     "3",
		models.PurposeOther:    "4",
	}
)

// SearchHit is one autocomplete result of the add-flight form.
type SearchHit struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// FR24Client is one logged-in myFlightradar24 web session. Search results,
// misses included, are cached for the life of the client and never
// invalidated. A client is not safe for concurrent use.
type FR24Client struct {
	webURL   string
	loginURL string
	email    string
	password string

	client  *http.Client
	breaker *breaker

	airports *cache.Cache
	airlines *cache.Cache
	userID   string
}

// NewFR24Client creates a session client. Call Login before anything else
// and Close when done.
func NewFR24Client(cfg *config.ExternalConfig) (*FR24Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	client := newHTTPClient(cfg.Timeout)
	client.Jar = jar

	return &FR24Client{
		webURL:   strings.TrimRight(cfg.FR24.WebURL, "/"),
		loginURL: cfg.FR24.LoginURL,
		email:    cfg.FR24.Email,
		password: cfg.FR24.Password,
		client:   client,
		breaker:  newBreaker(breakerFR24Web),
		airports: cache.New(0),
		airlines: cache.New(0),
	}, nil
}

// Close releases the session caches.
func (c *FR24Client) Close() {
	c.airports.Close()
	c.airlines.Close()
}

func (c *FR24Client) request(ctx context.Context, cfg requestConfig) (*http.Response, error) {
	if cfg.header == nil {
		cfg.header = map[string]string{}
	}
	cfg.header["User-Agent"] = userAgent
	cfg.provider = providerFR24Web

	return castResult[http.Response](c.breaker.execute(func() (interface{}, error) {
		resp, err := do(ctx, c.client, cfg)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			defer resp.Body.Close()
			return nil, &StatusError{Provider: providerFR24Web, Code: resp.StatusCode, Body: string(readBodyForError(resp.Body))}
		}
		return resp, nil
	}))
}

type loginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Login authenticates on flightradar24.com and then opens the session on
// the myFlightradar24 site.
func (c *FR24Client) Login(ctx context.Context) error {
	form := url.Values{}
	form.Set("email", c.email)
	form.Set("password", c.password)

	resp, err := c.request(ctx, requestConfig{method: http.MethodPost, url: c.loginURL, form: form})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
	var body loginResponse
	if err := decodeJSON(providerFR24Web, resp, &body); err != nil {
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
	if !body.Success {
		return fmt.Errorf("%w: check email/password", ErrLoginFailed)
	}

	resp, err = c.request(ctx, requestConfig{url: c.webURL + "/sign-in"})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

// search runs one autocomplete lookup through the given cache.
func (c *FR24Client) search(ctx context.Context, kind string, store *cache.Cache, cacheType, term string) (*SearchHit, error) {
	if v, ok := store.Get(term); ok {
		metrics.RecordCacheLookup(cacheType, true)
		hit, _ := v.(*SearchHit)
		return hit, nil
	}
	metrics.RecordCacheLookup(cacheType, false)

	query := url.Values{}
	query.Set("term", term)
	resp, err := c.request(ctx, requestConfig{url: c.webURL + "/add-flight/search/" + kind + "/", query: query})
	if err != nil {
		return nil, err
	}
	var hits []SearchHit
	if err := decodeJSON(providerFR24Web, resp, &hits); err != nil {
		return nil, err
	}

	var hit *SearchHit
	if len(hits) > 0 {
		hit = &hits[0]
	}
	store.Set(term, hit)
	return hit, nil
}

// searchCodes tries iata first, then icao.
func (c *FR24Client) searchCodes(ctx context.Context, kind string, store *cache.Cache, cacheType string, iata *string, icao string) (*SearchHit, error) {
	if iata != nil && *iata != "" {
		hit, err := c.search(ctx, kind, store, cacheType, *iata)
		if err != nil || hit != nil {
			return hit, err
		}
	}
	if icao == "" {
		return nil, nil
	}
	return c.search(ctx, kind, store, cacheType, icao)
}

// SearchAirport finds the FR24 entry for an airport, by IATA then ICAO.
func (c *FR24Client) SearchAirport(ctx context.Context, a *models.Airport) (*SearchHit, error) {
	if a == nil {
		return nil, nil
	}
	return c.searchCodes(ctx, "airport", c.airports, cacheFR24Airport, a.IATA, a.ICAO)
}

// SearchAirline finds the FR24 entry for an airline, by IATA then ICAO.
func (c *FR24Client) SearchAirline(ctx context.Context, a *models.Airline) (*SearchHit, error) {
	if a == nil {
		return nil, nil
	}
	return c.searchCodes(ctx, "airline", c.airlines, cacheFR24Airline, a.IATA, a.ICAO)
}

// getUserID scrapes the hidden userId field once per session.
func (c *FR24Client) getUserID(ctx context.Context) (string, error) {
	if c.userID != "" {
		return c.userID, nil
	}
	resp, err := c.request(ctx, requestConfig{url: c.webURL + "/add-flight"})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	page, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read add-flight page: %w", err)
	}
	m := userIDPattern.FindSubmatch(page)
	if m == nil {
		return "", errors.New("could not find userId on add-flight page")
	}
	c.userID = string(m[1])
	return c.userID, nil
}

// AddFlight posts f to the add-flight form. f must carry its resolved
// airports.
func (c *FR24Client) AddFlight(ctx context.Context, f *models.Flight) error {
	origin, err := c.SearchAirport(ctx, f.OriginAirport)
	if err != nil {
		return err
	}
	dest, err := c.SearchAirport(ctx, f.DestinationAirport)
	if err != nil {
		return err
	}
	if origin == nil || dest == nil {
		return fmt.Errorf("%w: origin=%s, destination=%s", ErrUnresolvedAirport, f.Origin, f.Destination)
	}

	airline := f.AirlineInfo
	if airline == nil && f.Airline != nil && *f.Airline != "" {
		airline = &models.Airline{ICAO: *f.Airline}
	}
	airlineHit, err := c.SearchAirline(ctx, airline)
	if err != nil {
		return err
	}

	userID, err := c.getUserID(ctx)
	if err != nil {
		return err
	}

	form := addFlightForm(f, userID, origin, dest, airlineHit)
	resp, err := c.request(ctx, requestConfig{method: http.MethodPost, url: c.webURL + "/add-flight", form: form})
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

// addFlightForm builds the add-flight form body.
func addFlightForm(f *models.Flight, userID string, origin, dest, airline *SearchHit) url.Values {
	depHour, depMin := splitClock(f.DepartureTime)
	arrHour, arrMin := splitClock(f.ArrivalTime)

	durHour, durMin := "", ""
	if f.Duration != nil {
		durHour = strconv.Itoa(*f.Duration / 60)
		durMin = strconv.Itoa(*f.Duration % 60)
	}

	airlineLabel, airlineID := "", ""
	if airline != nil {
		airlineLabel, airlineID = airline.Label, airline.ID
	}

	form := url.Values{}
	form.Set("userId", userID)
	form.Set("departure-date", f.Date)
	form.Set("flight-number", deref(f.FlightNumber))
	form.Set("departure-airport", origin.Label)
	form.Set("departure-airport-value", origin.ID)
	form.Set("departure-time-hour", depHour)
	form.Set("departure-time-minute", depMin)
	form.Set("arrival-airport", dest.Label)
	form.Set("arrival-airport-value", dest.ID)
	form.Set("arrival-time-hour", arrHour)
	form.Set("arrival-time-minute", arrMin)
	form.Set("duration-hour", durHour)
	form.Set("duration-minute", durMin)
	form.Set("airline", airlineLabel)
	form.Set("airline-value", airlineID)
	form.Set("aircraft", deref(f.Airplane))
	form.Set("aircraft-value", "")
	form.Set("aircraft-reg", deref(f.TailNumber))
	form.Set("seat-number", "")
	form.Set("flight-class", enumCode(fr24ClassCodes, f.TicketClass))
	form.Set("flight-seat", enumCode(fr24SeatCodes, f.Seat))
	form.Set("flight-reason", enumCode(fr24PurposeCodes, f.Purpose))
	form.Set("flight-comment", strings.ReplaceAll(deref(f.Notes), "\n", " "))
	form.Set("PostToTwitter", "0")
	form.Set("automatic-updates", "")
	form.Set("hasUploadedCSV", "false")
	return form
}

// splitClock splits "HH:MM" into its parts; nil gives two empty strings.
func splitClock(hhmm *string) (string, string) {
	if hhmm == nil {
		return "", ""
	}
	h, m, ok := strings.Cut(*hhmm, ":")
	if !ok {
		return "", ""
	}
	return h, m
}

func enumCode[T comparable](codes map[T]string, v *T) string {
	if v == nil {
		return ""
	}
	return codes[*v]
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
