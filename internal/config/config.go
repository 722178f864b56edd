// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/relayctl.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Provider and timezone constants
// --------------------------------------------------------------------------

const (
	ProviderSolapi   = "solapi"
	ProviderPinpoint = "pinpoint"
)

// DefaultTimezone is the operating zone for date windows and cron triggers.
const DefaultTimezone = "Asia/Seoul"

// kstOffset is used when the tz database is unavailable. Korea has no DST.
const kstOffset = 9 * 60 * 60

// --------------------------------------------------------------------------
// Firestore collection names
// --------------------------------------------------------------------------

const (
	AppUserCollection   = "intention_app_user"
	DashboardCollection = "personal_dashboard"
	SessionsCollection  = "sessions"
)

// --------------------------------------------------------------------------
// Config struct, populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Logging
	LogLevel slog.Level

	// Delivery log database (optional)
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration
	DeliveryRetain time.Duration

	// Recipient list
	RecipientsDBPath string

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Cache
	CacheEnabled bool

	// SMS provider
	SMSProvider     string
	SenderPhone     string
	SolapiAPIKey    string
	SolapiAPISecret string
	SolapiBaseURL   string
	AWSRegion       string
	SMSSendTimeout  time.Duration

	// Chat webhook log sink (optional)
	SlackWebhookURL string
	ReportTimeout   time.Duration

	// Firestore
	FirestoreProjectID  string
	FirestoreDatabaseID string

	// Notification policy
	Location                  *time.Location
	UsageCeiling              time.Duration
	RosterRole                string
	RosterRequireActiveWindow bool
	MorningHour               int
	MorningMinute             int
	EveningHour               int
	EveningMinute             int
	RunTimeout                time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
// Missing messaging credentials are fatal: the relay cannot do anything useful
// without them.
func Load() (*Config, error) {
	loc, err := loadLocation(envOr("OPERATING_TZ", DefaultTimezone))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		LogLevel: parseLevel(envOr("LOG_LEVEL", "info")),

		DatabaseURL:    envOr("DATABASE_URL", ""),
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 1),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 5),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,
		DeliveryRetain: time.Duration(envInt("DELIVERY_RETAIN_DAYS", 30)) * 24 * time.Hour,

		RecipientsDBPath: envOr("RECIPIENTS_DB_PATH", "./data/recipients.db"),

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		CacheEnabled: envBool("CACHE_ENABLED", true),

		SMSProvider:     strings.ToLower(envOr("SMS_PROVIDER", ProviderSolapi)),
		SenderPhone:     envOr("SENDER_PHONE", ""),
		SolapiAPIKey:    envOr("SOLAPI_API_KEY", ""),
		SolapiAPISecret: envOr("SOLAPI_API_SECRET", ""),
		SolapiBaseURL:   envOr("SOLAPI_BASE_URL", "https://api.solapi.com"),
		AWSRegion:       envOr("AWS_REGION", ""),
		SMSSendTimeout:  envDuration("SMS_SEND_TIMEOUT", 5*time.Second),

		SlackWebhookURL: envOr("SLACK_WEBHOOK_URL", ""),
		ReportTimeout:   envDuration("REPORT_TIMEOUT", 15*time.Second),

		FirestoreProjectID:  envOr("FIRESTORE_PROJECT_ID", "intention-computing-451401"),
		FirestoreDatabaseID: envOr("FIRESTORE_DATABASE_ID", "intention-computing"),

		Location:                  loc,
		UsageCeiling:              time.Duration(envInt("USAGE_CEILING_SECONDS", 7200)) * time.Second,
		RosterRole:                strings.TrimSpace(envOr("ROSTER_ROLE", "real")),
		RosterRequireActiveWindow: envBool("ROSTER_REQUIRE_ACTIVE_WINDOW", true),
		MorningHour:               envInt("MORNING_HOUR", 7),
		MorningMinute:             envInt("MORNING_MINUTE", 0),
		EveningHour:               envInt("EVENING_HOUR", 19),
		EveningMinute:             envInt("EVENING_MINUTE", 0),
		RunTimeout:                envDuration("RUN_TIMEOUT", 10*time.Minute),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings and value ranges.
func (c *Config) Validate() error {
	if c.SenderPhone == "" {
		return fmt.Errorf("SENDER_PHONE must be set")
	}
	switch c.SMSProvider {
	case ProviderSolapi:
		if c.SolapiAPIKey == "" {
			return fmt.Errorf("SOLAPI_API_KEY must be set")
		}
		if c.SolapiAPISecret == "" {
			return fmt.Errorf("SOLAPI_API_SECRET must be set")
		}
	case ProviderPinpoint:
		if c.AWSRegion == "" {
			return fmt.Errorf("AWS_REGION must be set for the pinpoint provider")
		}
	default:
		return fmt.Errorf("unknown SMS_PROVIDER %q (want %s or %s)", c.SMSProvider, ProviderSolapi, ProviderPinpoint)
	}
	if c.UsageCeiling <= 0 {
		return fmt.Errorf("USAGE_CEILING_SECONDS must be positive")
	}
	if err := checkClock("MORNING", c.MorningHour, c.MorningMinute); err != nil {
		return err
	}
	if err := checkClock("EVENING", c.EveningHour, c.EveningMinute); err != nil {
		return err
	}
	if c.SMSSendTimeout <= 0 {
		return fmt.Errorf("SMS_SEND_TIMEOUT must be positive")
	}
	return nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// HasDeliveryLog reports whether a Postgres delivery log is configured.
func (c *Config) HasDeliveryLog() bool {
	return c.DatabaseURL != ""
}

func checkClock(prefix string, hour, minute int) error {
	if hour < 0 || hour > 23 {
		return fmt.Errorf("%s_HOUR out of range: %d", prefix, hour)
	}
	if minute < 0 || minute > 59 {
		return fmt.Errorf("%s_MINUTE out of range: %d", prefix, minute)
	}
	return nil
}

// loadLocation resolves the operating zone. Asia/Seoul falls back to a fixed
// +09:00 zone when no tz database is available.
func loadLocation(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err == nil {
		return loc, nil
	}
	if name == DefaultTimezone {
		return time.FixedZone("KST", kstOffset), nil
	}
	return nil, fmt.Errorf("load OPERATING_TZ %q: %w", name, err)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

// envDuration accepts Go duration strings ("5s") or bare seconds ("5").
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
