package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the server.
type Config struct {
	// Server
	Port          string
	PublicBaseURL string
	LogLevel      slog.Level

	// Backend-as-a-service
	DatabaseURL        string
	SupabaseURL        string
	SupabaseServiceKey string
	JWTSecret          string
	StorageBucket      string
	LocalStorageDir    string

	// Payments
	StripeWebhookSecret string

	// Automation platform
	AutomationAnalyzeURL  string
	AutomationGenerateURL string
	AutomationOptimizeURL string
	AutomationAPIKey      string
	AutomationSecret      string

	// Status polling
	PollInterval time.Duration
	WaitTimeout  time.Duration

	// Rendering
	ChromePath string
	PageWidth  int
}

// Load reads an optional .env file and then the environment.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "3000"),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:3000"), "/"),
		LogLevel:      getEnvLevel("LOG_LEVEL", slog.LevelInfo),

		DatabaseURL:        getEnv("DATABASE_URL", ""),
		SupabaseURL:        getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_KEY", ""),
		JWTSecret:          getEnv("SUPABASE_JWT_SECRET", ""),
		StorageBucket:      getEnv("STORAGE_BUCKET", "cv-exports"),
		LocalStorageDir:    getEnv("LOCAL_STORAGE_DIR", "cv-data"),

		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),

		AutomationAnalyzeURL:  getEnv("AUTOMATION_ANALYZE_URL", ""),
		AutomationGenerateURL: getEnv("AUTOMATION_GENERATE_URL", ""),
		AutomationOptimizeURL: getEnv("AUTOMATION_OPTIMIZE_URL", ""),
		AutomationAPIKey:      getEnv("AUTOMATION_API_KEY", ""),
		AutomationSecret:      getEnv("AUTOMATION_SECRET", ""),

		PollInterval: getEnvDuration("POLL_INTERVAL", 2*time.Second),
		WaitTimeout:  getEnvDuration("WAIT_TIMEOUT", 90*time.Second),

		ChromePath: getEnv("CHROME_PATH", ""),
		PageWidth:  getEnvInt("PAGE_WIDTH_PX", 794),
	}
	return cfg
}

// Validate checks that the secrets guarding every inbound surface are set.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return &ConfigError{Field: "SUPABASE_JWT_SECRET", Message: "SUPABASE_JWT_SECRET is required to authenticate API calls"}
	}
	if c.AutomationSecret == "" {
		return &ConfigError{Field: "AUTOMATION_SECRET", Message: "AUTOMATION_SECRET is required to accept automation callbacks"}
	}
	if c.PollInterval <= 0 {
		return &ConfigError{Field: "POLL_INTERVAL", Message: "POLL_INTERVAL must be positive"}
	}
	if c.WaitTimeout < c.PollInterval {
		return &ConfigError{Field: "WAIT_TIMEOUT", Message: "WAIT_TIMEOUT must not be shorter than POLL_INTERVAL"}
	}
	if c.PageWidth < 100 {
		return &ConfigError{Field: "PAGE_WIDTH_PX", Message: "PAGE_WIDTH_PX must be at least 100"}
	}
	if c.SupabaseURL != "" && c.SupabaseServiceKey == "" {
		return &ConfigError{Field: "SUPABASE_SERVICE_KEY", Message: "SUPABASE_SERVICE_KEY is required when SUPABASE_URL is set"}
	}
	return nil
}

// CallbackURL is where the automation platform posts results.
func (c *Config) CallbackURL() string {
	return c.PublicBaseURL + "/webhooks/automation"
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvLevel(key string, defaultValue slog.Level) slog.Level {
	if value := os.Getenv(key); value != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(value)); err == nil {
			return lvl
		}
	}
	return defaultValue
}
