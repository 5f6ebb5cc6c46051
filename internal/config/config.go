// Package config loads process settings from the environment, reading a
// .env file first when one is present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Postgres struct {
	Host     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port     string `env:"POSTGRES_PORT" envDefault:"5432"`
	User     string `env:"POSTGRES_USER"`
	Password string `env:"POSTGRES_PASSWORD"`
	DB       string `env:"POSTGRES_DB"`
	SSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
}

// ConnString builds a lib/pq connection URL.
func (p Postgres) ConnString() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     p.Host + ":" + p.Port,
		Path:     "/" + p.DB,
		RawQuery: "sslmode=" + url.QueryEscape(p.SSLMode),
	}
	return u.String()
}

type RateLimit struct {
	RPS   float64       `env:"RATE_LIMIT_RPS" envDefault:"10"`
	Burst int           `env:"RATE_LIMIT_BURST" envDefault:"20"`
	Idle  time.Duration `env:"RATE_LIMIT_IDLE" envDefault:"10m"`
}

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Port        string `env:"PORT" envDefault:"8080"`
	Storage     string `env:"STORAGE" envDefault:"postgres"`
	JWTSecret   string `env:"JWT_SECRET"`

	// Credentials are allowed cross-origin, so origins must be listed.
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	RedisURL      string        `env:"REDIS_URL"`
	SpendCacheTTL time.Duration `env:"SPEND_CACHE_TTL" envDefault:"5m"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	Postgres  Postgres
	RateLimit RateLimit
}

// Load reads .env if it exists, then parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// LoadPostgres reads only the database settings, for tools that need nothing
// else.
func LoadPostgres() (Postgres, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Postgres{}, fmt.Errorf("load .env: %w", err)
	}
	p, err := env.ParseAs[Postgres]()
	if err != nil {
		return Postgres{}, fmt.Errorf("parse env: %w", err)
	}
	if p.DB == "" || p.User == "" {
		return Postgres{}, errors.New("POSTGRES_DB and POSTGRES_USER are required")
	}
	return p, nil
}

// Parse reads the environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	for _, origin := range c.CORSAllowedOrigins {
		if strings.Contains(origin, "*") {
			return fmt.Errorf("CORS_ALLOWED_ORIGINS may not contain wildcards: %q", origin)
		}
	}
	switch c.Storage {
	case StoragePostgres:
		if c.Postgres.DB == "" || c.Postgres.User == "" {
			return errors.New("POSTGRES_DB and POSTGRES_USER are required for postgres storage")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE %q", c.Storage)
	}
	return nil
}
