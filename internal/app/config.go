package app

import (
	"errors"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// PGDSN selects the PostgreSQL backend. Empty keeps the seeded in-memory
	// repositories.
	PGDSN      string `envconfig:"PG_DSN"`
	PGMaxConns int32  `envconfig:"PG_MAX_CONNS" default:"10"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"720h"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	CartTTL        time.Duration `envconfig:"CART_TTL" default:"168h"`
	IdempotencyTTL time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`

	AdminEmail        string `envconfig:"ADMIN_EMAIL" default:"admin@sneakerstore.com"`
	AdminName         string `envconfig:"ADMIN_NAME" default:"Administrateur"`
	AdminPasswordHash string `envconfig:"ADMIN_PASSWORD_HASH"`

	// OrderPhone is the shop number orders are handed off to.
	OrderPhone string `envconfig:"ORDER_PHONE" default:"+221770000000"`

	LowStockThreshold int           `envconfig:"LOW_STOCK_THRESHOLD" default:"5"`
	LowStockCron      string        `envconfig:"LOW_STOCK_CRON" default:"0 7 * * *"`
	AnalyticsCacheTTL time.Duration `envconfig:"ANALYTICS_CACHE_TTL" default:"10m"`

	WorkerConcurrency int `envconfig:"WORKER_CONCURRENCY" default:"5"`
}

// LoadConfig reads configuration from a .env file, when present, and the
// environment. Variables already set win over the file.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("session secret must be provided")
	}
	if cfg.CSRFSecret == "" {
		return nil, errors.New("csrf secret must be provided")
	}
	if cfg.IsProduction() && cfg.AdminPasswordHash == "" {
		return nil, errors.New("admin password hash must be provided in production")
	}
	if cfg.LowStockThreshold < 0 {
		return nil, errors.New("low stock threshold must not be negative")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// UsesPostgres reports whether a database DSN was configured.
func (c *Config) UsesPostgres() bool {
	return c != nil && c.PGDSN != ""
}
