package dbconfig

import (
	"fmt"
	"net/url"

	"github.com/caarlos0/env/v11"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Config holds database connection settings. SQLite is the default for a
// single machine; Postgres is used when DB_DRIVER=postgres.
type Config struct {
	Driver     string `env:"DB_DRIVER"   envDefault:"sqlite3"`
	URL        string `env:"DB_DSN"`
	SQLitePath string `env:"DB_PATH"     envDefault:"./data/multis.db"`
	Host       string `env:"DB_HOST"     envDefault:"localhost"`
	Port       int    `env:"DB_PORT"     envDefault:"5432"`
	User       string `env:"DB_USER"     envDefault:"postgres"`
	Password   string `env:"DB_PASSWORD" envDefault:"postgres"`
	Database   string `env:"DB_NAME"     envDefault:"multis"`
	SSLMode    string `env:"DB_SSLMODE"  envDefault:"disable"`
}

// NewConfigFromEnv reads DB_* environment variables (with defaults).
func NewConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse db env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unknown drivers.
func (c Config) Validate() error {
	switch c.Driver {
	case DriverSQLite, DriverPostgres:
		return nil
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Driver)
	}
}

// DSN returns the connection string for the configured driver. An explicit
// DB_DSN always wins.
func (c Config) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	if c.Driver == DriverSQLite {
		return c.SQLitePath
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     c.Database,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}
