package config

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the service.
type Config struct {
	AppEnv       string        `envconfig:"APP_ENV" default:"development"`
	Addr         string        `envconfig:"APP_ADDR" default:":4000"`
	ReadTimeout  time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`

	DatabaseURL    string        `envconfig:"DATABASE_URL" required:"true"`
	DBMaxOpenConns int           `envconfig:"DB_MAX_OPEN" default:"25"`
	DBMaxIdleConns int           `envconfig:"DB_MAX_IDLE" default:"25"`
	DBConnLifetime time.Duration `envconfig:"DB_MAX_LIFETIME" default:"5m"`

	RedisAddr string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`

	// JWTSecret signs access tokens; it must come from the environment so it
	// can be rotated without a rebuild.
	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL  time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"30m"`

	PostsCacheTTL  time.Duration `envconfig:"POSTS_CACHE_TTL" default:"5m"`
	MaxUploadBytes int64         `envconfig:"MAX_UPLOAD_BYTES" default:"1000000"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt secret must be provided")
	}
	return &cfg, nil
}

// IsProduction returns true when the service runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
