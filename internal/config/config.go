// Package config loads process settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full set of runtime settings.
type Config struct {
	Port     string `env:"PORT" envDefault:"5175"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DBDriver    string `env:"DB_DRIVER" envDefault:"sqlite3"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"./data/app.db"`

	KVBackend     string `env:"KV_BACKEND" envDefault:"sql"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret      string `env:"JWT_SECRET" envDefault:"dev_secret_change_me"`
	JWTExpiresDays int    `env:"JWT_EXPIRES_DAYS" envDefault:"14"`
	CookieName     string `env:"COOKIE_NAME" envDefault:"hanzi_token"`
	ClientOrigin   string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	NodeEnv        string `env:"NODE_ENV" envDefault:"development"`

	DailySalt  string `env:"DAILY_SALT" envDefault:"local_dev_salt"`
	WordsFile  string `env:"WORDS_FILE"`
	LevelsFile string `env:"LEVELS_FILE"`

	SessionIdleTTL    time.Duration `env:"SESSION_IDLE_TTL" envDefault:"2h"`
	SweepEveryMinutes int           `env:"SWEEP_EVERY_MINUTES" envDefault:"10"`
}

// Production reports whether cookies should be Secure/SameSite=None.
func (c Config) Production() bool { return c.NodeEnv == "production" }

// JWTExpiry is the lifetime of issued tokens.
func (c Config) JWTExpiry() time.Duration {
	return time.Duration(c.JWTExpiresDays) * 24 * time.Hour
}

// SweepInterval is how often idle sessions are dropped.
func (c Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepEveryMinutes) * time.Minute
}

// Load reads an optional .env file and parses the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c Config) validate() error {
	switch c.DBDriver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("DB_DRIVER %q: want sqlite3 or postgres", c.DBDriver)
	}
	switch c.KVBackend {
	case "sql", "redis", "memory":
	default:
		return fmt.Errorf("KV_BACKEND %q: want sql, redis or memory", c.KVBackend)
	}
	if c.SweepEveryMinutes <= 0 {
		return fmt.Errorf("SWEEP_EVERY_MINUTES must be positive")
	}
	if c.SessionIdleTTL <= 0 {
		return fmt.Errorf("SESSION_IDLE_TTL must be positive")
	}
	return nil
}
