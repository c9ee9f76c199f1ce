package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration. A missing DATABASE_URL or REDIS_URL
// selects the in-memory fallbacks, which keeps local development and tests
// free of external services.
type Config struct {
	Addr           string        `env:"GIFTLIST_ADDR" envDefault:":8080"`
	DatabaseURL    string        `env:"DATABASE_URL"`
	MigrationsPath string        `env:"MIGRATIONS_PATH" envDefault:"migrations"`
	RedisURL       string        `env:"REDIS_URL"`
	JWTSigningKey  string        `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-change-in-production"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`

	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads .env if present, then parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load() // no .env is fine in prod

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
