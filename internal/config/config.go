package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	maxRecentAdmins = 10
	devJWTSecret    = "dev-secret"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
	Dashboard    DashboardConfig
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

// PostgresConfig holds pool settings. An empty DSN selects the in-memory store.
type PostgresConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	RunMigrations   bool
	MaxConnIdleTime time.Duration
	MaxConnLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures zap. Format is "json" or "console".
type LoggerConfig struct {
	Level   string
	Format  string
	Service string
}

type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

type DashboardConfig struct {
	RecentAdminsLimit int
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var r envReader
	name := r.asString("APP_NAME", "laundry-service")
	cfg := &Config{
		App: AppConfig{
			Name:                  name,
			Env:                   r.asString("APP_ENV", "development"),
			Host:                  r.asString("APP_HOST", "0.0.0.0"),
			Port:                  r.asString("APP_PORT", "8080"),
			Version:               r.asString("APP_VERSION", "dev"),
			RequestTimeoutSeconds: r.asInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:             os.Getenv("POSTGRES_DSN"),
			MaxConns:        int32(r.asInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:        int32(r.asInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:   r.asBool("POSTGRES_RUN_MIGRATIONS", true),
			MaxConnIdleTime: r.asSeconds("POSTGRES_CONN_MAX_IDLE_SECONDS", 30),
			MaxConnLifetime: r.asSeconds("POSTGRES_CONN_MAX_LIFE_SECONDS", 300),
		},
		Redis: RedisConfig{
			Addr:     r.asString("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       r.asInt("REDIS_DB", 0),
		},
		Logger: LoggerConfig{
			Level:   r.asString("LOG_LEVEL", "info"),
			Format:  r.asString("LOG_FORMAT", "json"),
			Service: name,
		},
		Auth: AuthConfig{
			JWTSecret:             r.asString("AUTH_JWT_SECRET", devJWTSecret),
			AccessTokenTTLMinutes: r.asInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            r.asInt("AUTH_BCRYPT_COST", 12),
		},
		Notification: NotificationConfig{
			EmailFrom:  r.asString("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
		},
		Dashboard: DashboardConfig{
			RecentAdminsLimit: clamp(r.asInt("DASHBOARD_RECENT_ADMINS_LIMIT", maxRecentAdmins), 1, maxRecentAdmins),
		},
	}
	if err := errors.Join(r.errs...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings that are unsafe for the configured environment.
func (c *Config) Validate() error {
	var errs []error
	if c.App.Env == "production" && c.Auth.JWTSecret == devJWTSecret {
		errs = append(errs, errors.New("AUTH_JWT_SECRET must be set in production"))
	}
	if c.Postgres.MinConns > c.Postgres.MaxConns && c.Postgres.MaxConns > 0 {
		errs = append(errs, fmt.Errorf("POSTGRES_MIN_CONNS (%d) exceeds POSTGRES_MAX_CONNS (%d)", c.Postgres.MinConns, c.Postgres.MaxConns))
	}
	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logger.Format))
	}
	return errors.Join(errs...)
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns zero when timeouts are disabled.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// envReader collects parse failures so Load can report all of them at once.
type envReader struct {
	errs []error
}

func (r *envReader) asString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func (r *envReader) asInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return parsed
}

func (r *envReader) asBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return parsed
}

func (r *envReader) asSeconds(key string, fallback int) time.Duration {
	return time.Duration(r.asInt(key, fallback)) * time.Second
}
