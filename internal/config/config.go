// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

// Package config loads Jetlog configuration from layered sources.
//
// Loading order, lowest priority first:
//  1. Defaults: built-in values from defaultConfig
//  2. Config file: optional YAML (config.yaml, or CONFIG_PATH)
//  3. Dotenv file: optional .env (or DOTENV_PATH)
//  4. Environment variables
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Failed to load config")
//	}
//	db, err := database.New(&cfg.Database)
//
// Config is immutable after Load and safe for concurrent reads.
package config

import (
	"path/filepath"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Database   DatabaseConfig   `koanf:"database"`
	Server     ServerConfig     `koanf:"server"`
	Security   SecurityConfig   `koanf:"security"`
	External   ExternalConfig   `koanf:"external"`
	Statistics StatisticsConfig `koanf:"statistics"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// DataPath is the directory holding the database file when Path is empty.
	DataPath string `koanf:"data_path"`

	// Path overrides the database file location. ":memory:" opens an
	// in-memory database.
	Path string `koanf:"path"`

	MaxMemory string `koanf:"max_memory"`

	// Threads is the DuckDB worker count; 0 means runtime.NumCPU().
	Threads int `koanf:"threads"`

	// SeedReferenceData loads airports and airlines when the reference
	// tables are empty.
	SeedReferenceData bool `koanf:"seed_reference_data"`

	// AirportsCSV and AirlinesCSV replace the bundled sample, for example
	// with an OurAirports airports.csv export. Columns are matched by
	// header name.
	AirportsCSV string `koanf:"airports_csv"`
	AirlinesCSV string `koanf:"airlines_csv"`
}

// FilePath returns the resolved database file path.
func (d *DatabaseConfig) FilePath() string {
	if d.Path != "" {
		return d.Path
	}
	return filepath.Join(d.DataPath, "jetlog.duckdb")
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`

	// BaseURL is the path prefix the frontend is served under.
	BaseURL string `koanf:"base_url"`
}

// SecurityConfig holds authentication, CORS and rate limit settings.
type SecurityConfig struct {
	// AuthMode is jwt, header or none.
	AuthMode string `koanf:"auth_mode"`

	SecretKey            string `koanf:"secret_key"`
	TokenDurationMinutes int    `koanf:"token_duration_minutes"`

	// AuthHeader names a header set by a trusted reverse proxy. Used when
	// AuthMode is header.
	AuthHeader string `koanf:"auth_header"`

	AdminUsername string `koanf:"admin_username"`
	AdminPassword string `koanf:"admin_password"`

	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// TokenDuration returns the JWT lifetime.
func (s *SecurityConfig) TokenDuration() time.Duration {
	return time.Duration(s.TokenDurationMinutes) * time.Minute
}

// ExternalConfig holds third-party flight data provider settings.
type ExternalConfig struct {
	// Enabled gates every outbound call (enrichment and FR24 sync).
	Enabled bool `koanf:"enabled"`

	Timeout time.Duration `koanf:"timeout"`

	// EnrichGroupInterval is the minimum gap between flight-number groups.
	EnrichGroupInterval time.Duration `koanf:"enrich_group_interval"`

	// FlighteraInterval is the minimum gap between Flightera calls.
	FlighteraInterval time.Duration `koanf:"flightera_interval"`

	ADSBDB    ADSBDBConfig    `koanf:"adsbdb"`
	FR24      FR24Config      `koanf:"fr24"`
	Flightera FlighteraConfig `koanf:"flightera"`
}

// ADSBDBConfig configures the adsbdb callsign API.
type ADSBDBConfig struct {
	URL string `koanf:"url"`
}

// FR24Config configures both the public flight history API and the
// myFlightradar24 web session.
type FR24Config struct {
	APIURL   string `koanf:"api_url"`
	WebURL   string `koanf:"web_url"`
	LoginURL string `koanf:"login_url"`
	Email    string `koanf:"email"`
	Password string `koanf:"password"`
}

// Configured reports whether myFlightradar24 credentials are present.
func (f *FR24Config) Configured() bool {
	return f.Email != "" && f.Password != ""
}

// FlighteraConfig configures the Flightera RapidAPI fallback.
type FlighteraConfig struct {
	URL    string `koanf:"url"`
	APIKey string `koanf:"api_key"`
}

// Configured reports whether a RapidAPI key is present.
func (f *FlighteraConfig) Configured() bool {
	return f.APIKey != ""
}

// StatisticsConfig tunes the statistics snapshot cache.
type StatisticsConfig struct {
	// CacheTTL of 0 disables snapshot caching.
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level: trace, debug, info, warn, error. Default: info.
	Level string `koanf:"level"`

	// Format: json or console. Default: json.
	Format string `koanf:"format"`

	// Caller adds file:line to each entry.
	Caller bool `koanf:"caller"`
}

// Load reads configuration from all sources and validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
