// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the config file locations searched in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/jetlog/config.yaml",
	"/etc/jetlog/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DotenvPathEnvVar overrides the dotenv file path. Default: .env
const DotenvPathEnvVar = "DOTENV_PATH"

func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DataPath:          "./data",
			Path:              "",
			MaxMemory:         "1GB",
			Threads:           0,
			SeedReferenceData: true,
			AirportsCSV:       "",
			AirlinesCSV:       "",
		},
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    3000,
			Timeout: 30 * time.Second,
			BaseURL: "/",
		},
		Security: SecurityConfig{
			AuthMode:             "jwt",
			SecretKey:            "",
			TokenDurationMinutes: 7 * 24 * 60,
			AuthHeader:           "",
			AdminUsername:        "admin",
			AdminPassword:        "",
			CORSOrigins:          []string{"*"},
			RateLimitReqs:        100,
			RateLimitWindow:      time.Minute,
			RateLimitDisabled:    false,
		},
		External: ExternalConfig{
			Enabled:             false,
			Timeout:             30 * time.Second,
			EnrichGroupInterval: 2 * time.Second,
			FlighteraInterval:   time.Second,
			ADSBDB: ADSBDBConfig{
				URL: "https://api.adsbdb.com",
			},
			FR24: FR24Config{
				APIURL:   "https://api.flightradar24.com",
				WebURL:   "https://my.flightradar24.com",
				LoginURL: "https://www.flightradar24.com/user/login",
			},
			Flightera: FlighteraConfig{
				URL: "https://flightera-flight-data.p.rapidapi.com",
			},
		},
		Statistics: StatisticsConfig{
			CacheTTL: 5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration from defaults, an optional YAML file,
// an optional dotenv file and the process environment, in that order of
// increasing priority.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := loadDotenv(k, dotenvPath()); err != nil {
		return nil, err
	}

	// DUCKDB_PATH -> database.path, HTTP_PORT -> server.port
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func dotenvPath() string {
	if p := os.Getenv(DotenvPathEnvVar); p != "" {
		return p
	}
	return ".env"
}

// loadDotenv merges a dotenv file into k through the same name mapping as
// the process environment. A missing file is not an error.
func loadDotenv(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		return fmt.Errorf("failed to read dotenv file %s: %w", path, err)
	}
	for name, value := range values {
		key := envTransformFunc(name)
		if key == "" {
			continue
		}
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("failed to set %s from dotenv: %w", key, err)
		}
	}
	return nil
}

var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields splits comma-separated env values for slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

var envMappings = map[string]string{
	// Database
	"data_path":           "database.data_path",
	"duckdb_path":         "database.path",
	"duckdb_max_memory":   "database.max_memory",
	"duckdb_threads":      "database.threads",
	"seed_reference_data": "database.seed_reference_data",
	"airports_csv":        "database.airports_csv",
	"airlines_csv":        "database.airlines_csv",

	// Server
	"http_host":    "server.host",
	"http_port":    "server.port",
	"http_timeout": "server.timeout",
	"base_url":     "server.base_url",

	// Security
	"auth_mode":           "security.auth_mode",
	"secret_key":          "security.secret_key",
	"token_duration":      "security.token_duration_minutes",
	"auth_header":         "security.auth_header",
	"admin_username":      "security.admin_username",
	"admin_password":      "security.admin_password",
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// External providers
	"enable_external_apis":  "external.enabled",
	"external_timeout":      "external.timeout",
	"enrich_group_interval": "external.enrich_group_interval",
	"flightera_interval":    "external.flightera_interval",
	"adsbdb_url":            "external.adsbdb.url",
	"fr24_api_url":          "external.fr24.api_url",
	"fr24_web_url":          "external.fr24.web_url",
	"fr24_login_url":        "external.fr24.login_url",
	"fr24_email":            "external.fr24.email",
	"fr24_password":         "external.fr24.password",
	"flightera_url":         "external.flightera.url",
	"flightera_api_key":     "external.flightera.api_key",

	// Statistics
	"stats_cache_ttl": "statistics.cache_ttl",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to its koanf path.
// Unmapped names return "" and are skipped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
