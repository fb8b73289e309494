package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Snapshot backend names.
const (
	SnapshotBackendMemory   = "memory"
	SnapshotBackendPostgres = "postgres"
	SnapshotBackendRedis    = "redis"
)

type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"local"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	HTTPPort int    `env:"HTTP_PORT" envDefault:"8080"`

	// Analysis backend
	AnalysisURL     string        `env:"ANALYSIS_URL" envDefault:"http://localhost:8000/detect_fake_news"`
	AnalysisTimeout time.Duration `env:"ANALYSIS_TIMEOUT" envDefault:"90s"`
	AnalysisRPS     float64       `env:"ANALYSIS_RPS" envDefault:"2"`
	MaxUploadBytes  int64         `env:"MAX_UPLOAD_BYTES" envDefault:"5242880"`

	// Submission throttling per client IP
	SubmitRatePerMinute int `env:"SUBMIT_RATE_PER_MINUTE" envDefault:"20"`
	SubmitRateBurst     int `env:"SUBMIT_RATE_BURST" envDefault:"5"`

	// Reverse proxies whose X-Forwarded-For and X-Real-IP headers are honoured,
	// as IPs or CIDR prefixes. Empty means clients connect directly.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	// Evidence snapshot storage
	SnapshotBackend string        `env:"SNAPSHOT_BACKEND" envDefault:"memory"`
	SnapshotTTL     time.Duration `env:"SNAPSHOT_TTL" envDefault:"0s"`
	RedisURL        string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	PostgresDSN         string        `env:"POSTGRES_DSN"`
	DBMaxConnections    int32         `env:"DB_MAX_CONNECTIONS" envDefault:"10"`
	DBMinConnections    int32         `env:"DB_MIN_CONNECTIONS" envDefault:"1"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"5m"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// Browser sessions
	SessionSecret string        `env:"SESSION_SECRET"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"720h"`
	CookieSecure  bool          `env:"COOKIE_SECURE" envDefault:"false"`
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	applyAliases(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.SnapshotBackend {
	case SnapshotBackendMemory, SnapshotBackendRedis:
	case SnapshotBackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for snapshot backend %q", c.SnapshotBackend)
		}
	default:
		return fmt.Errorf("unsupported SNAPSHOT_BACKEND %q", c.SnapshotBackend)
	}

	return nil
}

// applyAliases honours the names used by common hosting platforms and by
// earlier deployments of the page.
func applyAliases(cfg *Config) {
	if !hasEnv("HTTP_PORT") {
		setIntFromEnv("PORT", &cfg.HTTPPort)
	}

	if !hasEnv("ANALYSIS_URL") {
		setStringFromEnv("DETECT_FAKE_NEWS_URL", &cfg.AnalysisURL)
	}

	if !hasEnv("ANALYSIS_TIMEOUT") {
		setDurationFromEnv("DETECT_FAKE_NEWS_TIMEOUT", &cfg.AnalysisTimeout)
	}

	if !hasEnv("COOKIE_SECURE") {
		setBoolFromEnv("SESSION_COOKIE_SECURE", &cfg.CookieSecure)
	}
}

func hasEnv(key string) bool {
	_, ok := os.LookupEnv(key)
	return ok
}

func setStringFromEnv(key string, target *string) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return
	}

	val = strings.TrimSpace(val)
	if val == "" {
		return
	}

	*target = val
}

func setBoolFromEnv(key string, target *bool) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return
	}

	parsed, err := strconv.ParseBool(strings.TrimSpace(val))
	if err != nil {
		return
	}

	*target = parsed
}

func setIntFromEnv(key string, target *int) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return
	}

	parsed, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return
	}

	*target = parsed
}

func setDurationFromEnv(key string, target *time.Duration) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return
	}

	parsed, err := time.ParseDuration(strings.TrimSpace(val))
	if err != nil {
		return
	}

	*target = parsed
}
