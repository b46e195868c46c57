package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/studentsenior/appcore/pkg/config"
)

// Config holds all configuration for the appcore service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"APPCORE_HTTP_PORT" envDefault:"8010"`

	// Backend platform API
	BackendBaseURL   string        `env:"BACKEND_BASE_URL" envDefault:"http://localhost:4000"`
	BackendTimeout   time.Duration `env:"BACKEND_TIMEOUT" envDefault:"10s"`
	BackendRateLimit float64       `env:"BACKEND_RATE_LIMIT" envDefault:"20"`
	BackendRateBurst int           `env:"BACKEND_RATE_BURST" envDefault:"40"`

	// Redis snapshot storage
	RedisEnabled  bool   `env:"REDIS_ENABLED" envDefault:"false"`
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// State snapshots
	SnapshotNamespace string `env:"SNAPSHOT_NAMESPACE" envDefault:"appcore"`
	SnapshotKey       string `env:"SNAPSHOT_KEY" envDefault:"root"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load appcore config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}
	if cfg.BackendTimeout <= 0 {
		return nil, fmt.Errorf("invalid backend timeout: %s", cfg.BackendTimeout)
	}
	if cfg.BackendRateLimit <= 0 {
		return nil, fmt.Errorf("invalid backend rate limit: %f", cfg.BackendRateLimit)
	}
	return cfg, nil
}
