package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Site     SiteConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Mail     MailConfig
	Digest   DigestConfig
	Scraper  ScraperConfig
	Admin    AdminConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// SiteConfig describes the public identity of the deployment.
type SiteConfig struct {
	Name            string
	Domain          string
	AccountRequired bool
	EditRemove      bool
	SearchMax       int
	CacheTTLSeconds int
	InviteDefault   int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret               string
	AccessTokenTTLMinutes   int
	PasswordResetTTLMinutes int
	BcryptCost              int
}

// MailConfig holds outbound email settings.
type MailConfig struct {
	From     string
	SMTPHost string
	SMTPPort string
	Username string
	Password string
}

// DigestConfig schedules notification digest emails.
type DigestConfig struct {
	DailyCron   string
	WeeklyCron  string
	Concurrency int
}

// ScraperConfig controls the source metadata fetcher.
type ScraperConfig struct {
	QueueKey       string
	TimeoutSeconds int
	MaxRetries     int
	UserAgent      string
}

// AdminConfig seeds the bootstrap staff account.
type AdminConfig struct {
	Username string
	Email    string
	Password string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "achboard"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Site: SiteConfig{
			Name:            getEnv("SITE_NAME", "Open Synthesis"),
			Domain:          getEnv("SITE_DOMAIN", "localhost:8080"),
			AccountRequired: getEnvAsBool("SITE_ACCOUNT_REQUIRED", false),
			EditRemove:      getEnvAsBool("SITE_EDIT_REMOVE_ENABLED", true),
			SearchMax:       getEnvAsInt("SITE_BOARD_SEARCH_RESULTS_MAX", 5),
			CacheTTLSeconds: getEnvAsInt("SITE_STATS_CACHE_TTL_SECONDS", 120),
			InviteDefault:   getEnvAsInt("SITE_INVITES_PER_USER", 5),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:               getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes:   getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			PasswordResetTTLMinutes: getEnvAsInt("AUTH_PASSWORD_RESET_TTL_MINUTES", 30),
			BcryptCost:              getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Mail: MailConfig{
			From:     getEnv("MAIL_FROM", "noreply@example.com"),
			SMTPHost: getEnv("MAIL_SMTP_HOST", ""),
			SMTPPort: getEnv("MAIL_SMTP_PORT", "587"),
			Username: os.Getenv("MAIL_SMTP_USERNAME"),
			Password: os.Getenv("MAIL_SMTP_PASSWORD"),
		},
		Digest: DigestConfig{
			DailyCron:   getEnv("DIGEST_DAILY_CRON", "0 6 * * *"),
			WeeklyCron:  getEnv("DIGEST_WEEKLY_CRON", "0 6 * * 1"),
			Concurrency: getEnvAsInt("DIGEST_CONCURRENCY", 4),
		},
		Scraper: ScraperConfig{
			QueueKey:       getEnv("SCRAPER_QUEUE_KEY", "achboard:source-metadata"),
			TimeoutSeconds: getEnvAsInt("SCRAPER_TIMEOUT_SECONDS", 10),
			MaxRetries:     getEnvAsInt("SCRAPER_MAX_RETRIES", 3),
			UserAgent:      getEnv("SCRAPER_USER_AGENT", "achboard-metadata-fetcher/1.0"),
		},
		Admin: AdminConfig{
			Username: os.Getenv("ADMIN_USERNAME"),
			Email:    os.Getenv("ADMIN_EMAIL_ADDRESS"),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// StatsCacheTTL returns how long cached board statistics remain fresh.
func (s SiteConfig) StatsCacheTTL() time.Duration {
	if s.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(s.CacheTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
