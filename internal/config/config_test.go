package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			SupabaseURL:        "https://abc.supabase.co",
			SupabaseKey:        "anon",
			DataBackend:        BackendSupabase,
			PreferencesDBPath:  "./prefs.db",
			AlertCheckSchedule: "0 9 * * *",
		}
	}

	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errorString string
	}{
		{
			name:   "valid supabase config",
			mutate: func(*Config) {},
		},
		{
			name: "memory backend needs no supabase",
			mutate: func(c *Config) {
				c.DataBackend = BackendMemory
				c.SupabaseURL = ""
				c.SupabaseKey = ""
			},
		},
		{
			name:        "invalid data backend",
			mutate:      func(c *Config) { c.DataBackend = "sheets" },
			wantErr:     true,
			errorString: "invalid data backend 'sheets': must be one of [supabase memory]",
		},
		{
			name:        "missing supabase url",
			mutate:      func(c *Config) { c.SupabaseURL = "" },
			wantErr:     true,
			errorString: "SUPABASE_URL is required when using supabase backend",
		},
		{
			name:        "malformed supabase url",
			mutate:      func(c *Config) { c.SupabaseURL = "not a url" },
			wantErr:     true,
			errorString: "invalid SUPABASE_URL 'not a url'",
		},
		{
			name:        "missing supabase key",
			mutate:      func(c *Config) { c.SupabaseKey = "" },
			wantErr:     true,
			errorString: "SUPABASE_KEY is required when using supabase backend",
		},
		{
			name:        "empty preferences path",
			mutate:      func(c *Config) { c.PreferencesDBPath = "" },
			wantErr:     true,
			errorString: "PREFERENCES_DB_PATH cannot be empty",
		},
		{
			name:        "bad schedule",
			mutate:      func(c *Config) { c.AlertCheckSchedule = "every day" },
			wantErr:     true,
			errorString: "invalid ALERT_CHECK_SCHEDULE 'every day'",
		},
		{
			name:   "descriptor schedule",
			mutate: func(c *Config) { c.AlertCheckSchedule = "@daily" },
		},
		{
			name:        "elasticsearch url scheme",
			mutate:      func(c *Config) { c.ElasticsearchURL = "ftp://es:9200" },
			wantErr:     true,
			errorString: "invalid ELASTICSEARCH_URL 'ftp://es:9200': must be http or https",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorString)
		})
	}
}

func TestConfig_ValidateCollectsAllProblems(t *testing.T) {
	cfg := Config{DataBackend: BackendSupabase}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SUPABASE_URL")
	assert.Contains(t, err.Error(), "SUPABASE_KEY")
	assert.Contains(t, err.Error(), "PREFERENCES_DB_PATH")
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATA_BACKEND", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("ALERT_CHECK_SCHEDULE", "")
	t.Setenv("SUPABASE_SERVICE_KEY", "service")
	t.Setenv("SUPABASE_KEY", "anon")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, BackendSupabase, cfg.DataBackend)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "0 9 * * *", cfg.AlertCheckSchedule)
	assert.Equal(t, "service", cfg.AdminKey())
}

func TestRequireTelegram(t *testing.T) {
	assert.Error(t, (&Config{}).RequireTelegram())
	assert.NoError(t, (&Config{TelegramToken: "t"}).RequireTelegram())
}
