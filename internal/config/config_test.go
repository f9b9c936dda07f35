package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PUBLIC_BASE_URL", "https://api.example.com/")
	t.Setenv("POLL_INTERVAL", "500ms")
	t.Setenv("PAGE_WIDTH_PX", "not-a-number")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "https://api.example.com", cfg.PublicBaseURL)
	assert.Equal(t, "https://api.example.com/webhooks/automation", cfg.CallbackURL())
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 90*time.Second, cfg.WaitTimeout)
	assert.Equal(t, 794, cfg.PageWidth)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{JWTSecret: "jwt", AutomationSecret: "s", PollInterval: time.Second, WaitTimeout: time.Minute, PageWidth: 794}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name  string
		mut   func(*Config)
		field string
	}{
		{"jwt", func(c *Config) { c.JWTSecret = "" }, "SUPABASE_JWT_SECRET"},
		{"callback secret", func(c *Config) { c.AutomationSecret = "" }, "AUTOMATION_SECRET"},
		{"poll", func(c *Config) { c.PollInterval = 0 }, "POLL_INTERVAL"},
		{"wait", func(c *Config) { c.WaitTimeout = time.Millisecond }, "WAIT_TIMEOUT"},
		{"width", func(c *Config) { c.PageWidth = 10 }, "PAGE_WIDTH_PX"},
		{"storage key", func(c *Config) { c.SupabaseURL = "https://x.supabase.co" }, "SUPABASE_SERVICE_KEY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mut(c)
			err := c.Validate()
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}
