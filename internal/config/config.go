package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Port        string
	BaseURL     string
	FrontendURL string
	Env         string

	LogLevel string
	LogDir   string

	DBDriver    string
	DBName      string
	DatabaseURL string

	GoogleClientID     string
	GoogleClientSecret string
	SessionSecret      string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string

	RedisAddr     string
	RedisPassword string
	StatsCacheTTL time.Duration

	FallbackCategory string
	CategoriesFile   string
	StaticDir        string

	SyncSchedule     string
	ReminderSchedule string
	MaxFetchEmails   int64

	RateLimitRPS   float64
	RateLimitBurst int
}

func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	smtpPort, err := strconv.Atoi(GetEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}
	cacheTTL, err := strconv.Atoi(GetEnv("STATS_CACHE_TTL_SECONDS", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid STATS_CACHE_TTL_SECONDS: %w", err)
	}
	maxFetch, err := strconv.ParseInt(GetEnv("MAX_FETCH_EMAILS", "10"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_FETCH_EMAILS: %w", err)
	}
	rps, err := strconv.ParseFloat(GetEnv("RATE_LIMIT_RPS", "20"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}
	burst, err := strconv.Atoi(GetEnv("RATE_LIMIT_BURST", "40"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	port := GetEnv("PORT", "8080")

	return &Config{
		Port:        port,
		BaseURL:     GetEnv("BASE_URL", "http://localhost:"+port),
		FrontendURL: GetEnv("FRONTEND_URL", "http://localhost:3000"),
		Env:         GetEnv("ENV", "development"),

		LogLevel: strings.ToLower(GetEnv("LOG_LEVEL", "info")),
		LogDir:   GetEnv("LOG_DIR", "logs"),

		DBDriver:    strings.ToLower(GetEnv("DB_DRIVER", DriverSQLite)),
		DBName:      GetEnv("DB_NAME", "business_admin.db"),
		DatabaseURL: GetEnv("DATABASE_URL", ""),

		GoogleClientID:     GetEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: GetEnv("GOOGLE_CLIENT_SECRET", ""),
		SessionSecret:      GetEnv("SESSION_SECRET", "change-me-in-production"),

		SMTPHost: GetEnv("SMTP_HOST", ""),
		SMTPPort: smtpPort,
		SMTPUser: GetEnv("SMTP_USER", ""),
		SMTPPass: GetEnv("SMTP_PASS", ""),
		MailFrom: GetEnv("MAIL_FROM", "no-reply@localhost"),

		RedisAddr:     GetEnv("REDIS_ADDR", ""),
		RedisPassword: GetEnv("REDIS_PASSWORD", ""),
		StatsCacheTTL: time.Duration(cacheTTL) * time.Second,

		FallbackCategory: GetEnv("FALLBACK_CATEGORY", "General"),
		CategoriesFile:   GetEnv("CATEGORIES_FILE", "categories.json"),
		StaticDir:        GetEnv("STATIC_DIR", ""),

		SyncSchedule:     GetEnv("SYNC_SCHEDULE", "@every 5m"),
		ReminderSchedule: GetEnv("REMINDER_SCHEDULE", "* * * * *"),
		MaxFetchEmails:   maxFetch,

		RateLimitRPS:   rps,
		RateLimitBurst: burst,
	}, nil
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// AuthEnabled reports whether Google sign-in is configured. Without it the
// API runs open, which is only meant for local development.
func (c *Config) AuthEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func (c *Config) MailEnabled() bool {
	return c.SMTPHost != ""
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverSQLite:
		if c.DBName == "" {
			return fmt.Errorf("DB_NAME is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if (c.GoogleClientID == "") != (c.GoogleClientSecret == "") {
		return fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set together")
	}
	if c.AuthEnabled() && c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported LOG_LEVEL %q", c.LogLevel)
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric: %w", err)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return nil
}
