// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

// StoreBackend selects which ResidentStore adapter the binary wires in.
type StoreBackend string

const (
	StoreSupabase StoreBackend = "supabase"
	StorePostgres StoreBackend = "postgres"
	StoreSQLite   StoreBackend = "sqlite"
)

// LogFormat selects the slog handler.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// DefaultTable is the table residents are inserted into. The sqlite schema
// only creates this table.
const DefaultTable = "new_residents"

// DefaultWebhookURL is the n8n welcome workflow on the local machine.
const DefaultWebhookURL = "http://localhost:5678/webhook/new-resident-welcome"

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Store       StoreBackend
	SupabaseURL string
	SupabaseKey string
	DatabaseURL string
	DBPath      string
	Table       string
	WebhookURL  string
	HTTPTimeout time.Duration
	LogFormat   LogFormat
}

// Load reads configuration from environment variables and returns a validated Config.
// RESIDENTWELCOME_STORE picks the backend (supabase, postgres, sqlite; default supabase).
// The supabase backend requires RESIDENTWELCOME_SUPABASE_URL and RESIDENTWELCOME_SUPABASE_KEY;
// the postgres backend requires RESIDENTWELCOME_DATABASE_URL.
// Optional variables with defaults: RESIDENTWELCOME_DB_PATH (residentwelcome.db),
// RESIDENTWELCOME_TABLE (new_residents), RESIDENTWELCOME_WEBHOOK_URL (local n8n),
// RESIDENTWELCOME_HTTP_TIMEOUT (30s), RESIDENTWELCOME_LOG_FORMAT (text).
// The sqlite backend rejects any table other than DefaultTable.
func Load() (*Config, error) {
	store := StoreSupabase
	if v, ok := os.LookupEnv("RESIDENTWELCOME_STORE"); ok && v != "" {
		store = StoreBackend(strings.ToLower(strings.TrimSpace(v)))
	}

	cfg := &Config{
		Store:       store,
		SupabaseURL: os.Getenv("RESIDENTWELCOME_SUPABASE_URL"),
		SupabaseKey: os.Getenv("RESIDENTWELCOME_SUPABASE_KEY"),
		DatabaseURL: os.Getenv("RESIDENTWELCOME_DATABASE_URL"),
		DBPath:      "residentwelcome.db",
		Table:       DefaultTable,
		WebhookURL:  DefaultWebhookURL,
		HTTPTimeout: 30 * time.Second,
		LogFormat:   LogFormatText,
	}

	if v, ok := os.LookupEnv("RESIDENTWELCOME_DB_PATH"); ok && v != "" {
		cfg.DBPath = v
	}
	if v, ok := os.LookupEnv("RESIDENTWELCOME_TABLE"); ok && v != "" {
		cfg.Table = v
	}
	if v, ok := os.LookupEnv("RESIDENTWELCOME_WEBHOOK_URL"); ok && v != "" {
		cfg.WebhookURL = v
	}

	if v, ok := os.LookupEnv("RESIDENTWELCOME_HTTP_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("RESIDENTWELCOME_HTTP_TIMEOUT has invalid duration %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("RESIDENTWELCOME_HTTP_TIMEOUT must be positive, got %q", v)
		}
		cfg.HTTPTimeout = parsed
	}

	if v, ok := os.LookupEnv("RESIDENTWELCOME_LOG_FORMAT"); ok && v != "" {
		cfg.LogFormat = LogFormat(strings.ToLower(v))
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store {
	case StoreSupabase:
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			return fmt.Errorf("store %q requires RESIDENTWELCOME_SUPABASE_URL and RESIDENTWELCOME_SUPABASE_KEY", c.Store)
		}
		if err := requireHTTPURL(c.SupabaseURL); err != nil {
			return fmt.Errorf("RESIDENTWELCOME_SUPABASE_URL: %w", err)
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("store %q requires RESIDENTWELCOME_DATABASE_URL", c.Store)
		}
	case StoreSQLite:
		if c.Table != DefaultTable {
			return fmt.Errorf("store %q only supports table %q, got RESIDENTWELCOME_TABLE=%q", c.Store, DefaultTable, c.Table)
		}
	default:
		return fmt.Errorf("RESIDENTWELCOME_STORE has unknown backend %q", c.Store)
	}

	if err := requireHTTPURL(c.WebhookURL); err != nil {
		return fmt.Errorf("RESIDENTWELCOME_WEBHOOK_URL: %w", err)
	}

	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("RESIDENTWELCOME_LOG_FORMAT has unknown format %q", c.LogFormat)
	}

	return nil
}

func requireHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%q is not an absolute http(s) URL", raw)
	}
	return nil
}
