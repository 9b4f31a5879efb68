// Package config loads server settings from the environment, optionally
// seeded from a .env file in the working directory.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/Skryldev/disposition-api/db"
)

// Config holds application configuration.
type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Log struct {
		// Pretty selects the console writer; otherwise one JSON object per line.
		Pretty bool `env:"LOG_PRETTY" envDefault:"true"`
	}

	Server struct {
		Addr        string   `env:"SERVER_ADDR" envDefault:"127.0.0.1:8888" validate:"required,hostname_port"`
		CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5174,http://localhost:3000,http://127.0.0.1:5174,http://127.0.0.1:3000" validate:"dive,url"`
	}

	Database struct {
		URL string `env:"DATABASE_URL,required" validate:"required"`

		MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"0" validate:"gte=0"`
		MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"0" validate:"gte=0"`
		ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"0s" validate:"gte=0"`
		ConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"0s" validate:"gte=0"`
		AcquireTimeout  time.Duration `env:"DB_ACQUIRE_TIMEOUT" envDefault:"0s" validate:"gte=0"`

		SlowQueryThreshold time.Duration `env:"DB_SLOW_QUERY_THRESHOLD" envDefault:"200ms" validate:"gte=0"`
		LogQueryArgs       bool          `env:"DB_LOG_QUERY_ARGS" envDefault:"false"`
	}
}

var validate = validator.New()

// Load reads .env when present, then the process environment, and validates
// the result. Variables already set in the environment win over .env.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return Parse()
}

// Parse builds a Config from the process environment alone.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// DB returns the pool settings for db.OpenURL. hooks are attached as given.
func (c *Config) DB(hooks ...db.Hook) db.Config {
	return db.Config{
		MaxOpenConns:    c.Database.MaxOpenConns,
		MaxIdleConns:    c.Database.MaxIdleConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
		ConnMaxIdleTime: c.Database.ConnMaxIdleTime,
		AcquireTimeout:  c.Database.AcquireTimeout,
		Hooks:           hooks,
	}
}
