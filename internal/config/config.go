package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

const (
	BackendSupabase = "supabase"
	BackendMemory   = "memory"
)

type Config struct {
	SupabaseURL        string
	SupabaseKey        string
	SupabaseServiceKey string
	TelegramToken      string

	// supabase | memory
	DataBackend string

	PreferencesDBPath  string
	AlertCheckSchedule string
	LogLevel           string
	ElasticsearchURL   string
}

// LoadConfig reads .env when present and then the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	return &Config{
		SupabaseURL:        os.Getenv("SUPABASE_URL"),
		SupabaseKey:        os.Getenv("SUPABASE_KEY"),
		SupabaseServiceKey: os.Getenv("SUPABASE_SERVICE_KEY"),
		TelegramToken:      os.Getenv("TELEGRAM_TOKEN"),
		DataBackend:        getEnv("DATA_BACKEND", BackendSupabase),
		PreferencesDBPath:  getEnv("PREFERENCES_DB_PATH", "./data/preferences.db"),
		AlertCheckSchedule: getEnv("ALERT_CHECK_SCHEDULE", "0 9 * * *"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		ElasticsearchURL:   os.Getenv("ELASTICSEARCH_URL"),
	}, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	switch c.DataBackend {
	case BackendSupabase:
		if c.SupabaseURL == "" {
			problems = append(problems, "SUPABASE_URL is required when using supabase backend")
		} else if u, err := url.Parse(c.SupabaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			problems = append(problems, fmt.Sprintf("invalid SUPABASE_URL '%s'", c.SupabaseURL))
		}
		if c.SupabaseKey == "" {
			problems = append(problems, "SUPABASE_KEY is required when using supabase backend")
		}
	case BackendMemory:
	default:
		problems = append(problems, fmt.Sprintf("invalid data backend '%s': must be one of [%s %s]",
			c.DataBackend, BackendSupabase, BackendMemory))
	}

	if c.PreferencesDBPath == "" {
		problems = append(problems, "PREFERENCES_DB_PATH cannot be empty")
	}

	if c.AlertCheckSchedule != "" {
		if _, err := cron.ParseStandard(c.AlertCheckSchedule); err != nil {
			problems = append(problems, fmt.Sprintf("invalid ALERT_CHECK_SCHEDULE '%s': %v", c.AlertCheckSchedule, err))
		}
	}

	if c.ElasticsearchURL != "" {
		if u, err := url.Parse(c.ElasticsearchURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			problems = append(problems, fmt.Sprintf("invalid ELASTICSEARCH_URL '%s': must be http or https", c.ElasticsearchURL))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// RequireTelegram is checked by the bot entry points only.
func (c *Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return errors.New("TELEGRAM_TOKEN is required")
	}
	return nil
}

// AdminKey prefers the service-role key, which bypasses row level security.
func (c *Config) AdminKey() string {
	if c.SupabaseServiceKey != "" {
		return c.SupabaseServiceKey
	}
	return c.SupabaseKey
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
