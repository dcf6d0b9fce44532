// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package config

import (
	"fmt"
	"os"
	"strings"
)

// MinSecretKeyLength is the shortest SECRET_KEY accepted in jwt mode.
const MinSecretKeyLength = 32

var validAuthModes = map[string]bool{
	"jwt":    true,
	"header": true,
	"none":   true,
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateExternal(); err != nil {
		return err
	}
	if c.Statistics.CacheTTL < 0 {
		return fmt.Errorf("STATS_CACHE_TTL must not be negative")
	}
	return c.validateLogging()
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" && c.Database.DataPath == "" {
		return fmt.Errorf("DATA_PATH or DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must not be negative")
	}
	for name, path := range map[string]string{
		"AIRPORTS_CSV": c.Database.AirportsCSV,
		"AIRLINES_CSV": c.Database.AirlinesCSV,
	} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if !strings.HasPrefix(c.Server.BaseURL, "/") {
		return fmt.Errorf("BASE_URL must start with /")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if !validAuthModes[c.Security.AuthMode] {
		return fmt.Errorf("AUTH_MODE must be one of: jwt, header, none")
	}

	switch c.Security.AuthMode {
	case "jwt":
		if len(c.Security.SecretKey) < MinSecretKeyLength {
			return fmt.Errorf("SECRET_KEY must be at least %d characters when AUTH_MODE=jwt", MinSecretKeyLength)
		}
		if containsPlaceholder(c.Security.SecretKey) {
			return fmt.Errorf("SECRET_KEY contains a placeholder value, set a real secret")
		}
	case "header":
		if c.Security.AuthHeader == "" {
			return fmt.Errorf("AUTH_HEADER is required when AUTH_MODE=header")
		}
	}

	if c.Security.TokenDurationMinutes <= 0 {
		return fmt.Errorf("TOKEN_DURATION must be positive")
	}

	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

func (c *Config) validateExternal() error {
	ext := &c.External
	if ext.Timeout <= 0 {
		return fmt.Errorf("EXTERNAL_TIMEOUT must be positive")
	}
	if ext.EnrichGroupInterval < 0 || ext.FlighteraInterval < 0 {
		return fmt.Errorf("ENRICH_GROUP_INTERVAL and FLIGHTERA_INTERVAL must not be negative")
	}
	if !ext.Enabled {
		return nil
	}

	urls := []struct {
		value string
		name  string
	}{
		{ext.ADSBDB.URL, "ADSBDB_URL"},
		{ext.FR24.APIURL, "FR24_API_URL"},
		{ext.FR24.WebURL, "FR24_WEB_URL"},
		{ext.FR24.LoginURL, "FR24_LOGIN_URL"},
		{ext.Flightera.URL, "FLIGHTERA_URL"},
	}
	for _, u := range urls {
		if err := validateHTTPURL(u.value, u.name); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// placeholderPatterns catch secrets copied from example files.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_SECRET",
	"PLACEHOLDER",
}

func containsPlaceholder(value string) bool {
	upper := strings.ToUpper(value)
	for _, pattern := range placeholderPatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return false
}
