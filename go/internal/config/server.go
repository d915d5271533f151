package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// ServerConfig is the process configuration read from the environment.
type ServerConfig struct {
	Port            string        `env:"PORT"             envDefault:"8080"`
	LogLevel        string        `env:"LOG_LEVEL"        envDefault:"info"`
	NATSURL         string        `env:"NATS_URL"`
	GameConfigPath  string        `env:"GAME_CONFIG"      envDefault:"config/game.yaml"`
	DefaultLocale   string        `env:"DEFAULT_LOCALE"   envDefault:"en-US"`
	ClientOrigins   []string      `env:"CLIENT_ORIGIN"    envDefault:"*" envSeparator:","`
	MaxPlayers      int           `env:"MAX_PLAYERS"      envDefault:"50"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// LoadServerConfig parses the environment.
func LoadServerConfig() (ServerConfig, error) {
	var cfg ServerConfig
	if err := env.Parse(&cfg); err != nil {
		return ServerConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Level returns the configured log level, info when unparseable.
func (c ServerConfig) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(c.LogLevel)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Addr is the listen address.
func (c ServerConfig) Addr() string {
	return ":" + c.Port
}
