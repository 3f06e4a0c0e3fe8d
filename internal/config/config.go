// Package config provides application configuration loading from environment.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultHTTPAddr is used when HTTP_ADDR is not set.
const DefaultHTTPAddr = ":8080"

// Telemetry exporters accepted in OTEL_EXPORTER.
const (
	ExporterNone     = "none"
	ExporterStdout   = "stdout"
	ExporterOTLPHTTP = "otlp-http"
	ExporterOTLPGRPC = "otlp-grpc"
)

// Config holds all configuration for the application.
// It is read once at startup and never changes afterwards.
type Config struct {
	StoreURL    string
	StoreAPIKey string

	HTTPAddr    string
	CORSOrigins string

	LogLevel    string
	LogFormat   string
	LogHashSalt string

	TelegramBotToken     string
	WhitelistedUserIDs   []int64
	WhitelistedUsernames []string

	GeminiAPIKey string
	OTelExporter string
}

// Load reads configuration from environment variables, after loading a .env file if present.
// Missing store parameters are not an error: the application then runs in setup mode.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		StoreURL:         strings.TrimSpace(os.Getenv("STORE_URL")),
		StoreAPIKey:      strings.TrimSpace(os.Getenv("STORE_API_KEY")),
		HTTPAddr:         os.Getenv("HTTP_ADDR"),
		CORSOrigins:      os.Getenv("CORS_ORIGINS"),
		LogLevel:         os.Getenv("LOG_LEVEL"),
		LogFormat:        os.Getenv("LOG_FORMAT"),
		LogHashSalt:      os.Getenv("LOG_HASH_SALT"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		OTelExporter:     strings.ToLower(strings.TrimSpace(os.Getenv("OTEL_EXPORTER"))),
	}

	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = DefaultHTTPAddr
	}
	if cfg.CORSOrigins == "" {
		cfg.CORSOrigins = "*"
	}
	if cfg.OTelExporter == "" {
		cfg.OTelExporter = ExporterNone
	}

	for idStr := range strings.SplitSeq(os.Getenv("WHITELISTED_USER_IDS"), ",") {
		idStr = strings.TrimSpace(idStr)
		if idStr == "" {
			continue
		}
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			continue
		}
		cfg.WhitelistedUserIDs = append(cfg.WhitelistedUserIDs, id)
	}

	for username := range strings.SplitSeq(os.Getenv("WHITELISTED_USERNAMES"), ",") {
		username = strings.TrimPrefix(strings.TrimSpace(username), "@")
		if username == "" {
			continue
		}
		cfg.WhitelistedUsernames = append(cfg.WhitelistedUsernames, username)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks that optional features are configured consistently.
func (c *Config) validate() error {
	var errs []string

	if c.BotEnabled() && len(c.WhitelistedUserIDs) == 0 && len(c.WhitelistedUsernames) == 0 {
		errs = append(errs, "TELEGRAM_BOT_TOKEN requires at least one whitelisted user (WHITELISTED_USER_IDS or WHITELISTED_USERNAMES)")
	}

	switch c.OTelExporter {
	case ExporterNone, ExporterStdout, ExporterOTLPHTTP, ExporterOTLPGRPC:
	default:
		errs = append(errs, fmt.Sprintf("OTEL_EXPORTER %q is not one of none, stdout, otlp-http, otlp-grpc", c.OTelExporter))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// StoreConfigured reports whether both store connection parameters are present.
func (c *Config) StoreConfigured() bool {
	return c.StoreURL != "" && c.StoreAPIKey != ""
}

// MissingStoreSettings lists the store variables that still need to be set.
func (c *Config) MissingStoreSettings() []string {
	var missing []string
	if c.StoreURL == "" {
		missing = append(missing, "STORE_URL")
	}
	if c.StoreAPIKey == "" {
		missing = append(missing, "STORE_API_KEY")
	}
	return missing
}

// BotEnabled reports whether the Telegram bot should be started.
func (c *Config) BotEnabled() bool {
	return c.TelegramBotToken != ""
}

// SuggestionsEnabled reports whether category suggestions are available.
func (c *Config) SuggestionsEnabled() bool {
	return c.GeminiAPIKey != ""
}

// IsUserWhitelisted checks if a Telegram user ID or username is in the whitelist.
// Returns true if either the user ID or username is whitelisted.
func (c *Config) IsUserWhitelisted(userID int64, username string) bool {
	if slices.Contains(c.WhitelistedUserIDs, userID) {
		return true
	}

	if username != "" {
		username = strings.TrimPrefix(username, "@")
		for _, whitelisted := range c.WhitelistedUsernames {
			if strings.EqualFold(whitelisted, username) {
				return true
			}
		}
	}

	return false
}
