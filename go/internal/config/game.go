// Package config loads process settings from the environment and game
// tuning from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/mcdev12/multis/go/internal/round/engine"
	"github.com/mcdev12/multis/go/internal/round/formula"
)

// GameConfig tunes every session started by the server.
type GameConfig struct {
	TotalRounds      int                      `yaml:"total_rounds"`
	RoundDuration    time.Duration            `yaml:"round_duration"`
	FeedbackDuration time.Duration            `yaml:"feedback_duration"`
	TickInterval     time.Duration            `yaml:"tick_interval"`
	MaxDigits        int                      `yaml:"max_digits"`
	Difficulty       formula.DifficultyConfig `yaml:"difficulty"`
	ReplayMissed     bool                     `yaml:"replay_missed"`
}

// DefaultGameConfig mirrors engine.DefaultConfig.
func DefaultGameConfig() GameConfig {
	d := engine.DefaultConfig()
	return GameConfig{
		TotalRounds:      d.TotalRounds,
		RoundDuration:    d.RoundDuration,
		FeedbackDuration: d.FeedbackDuration,
		TickInterval:     d.TickInterval,
		MaxDigits:        d.MaxDigits,
		Difficulty:       d.Difficulty,
		ReplayMissed:     d.ReplayMissed,
	}
}

// LoadGameConfig reads path over the defaults. A missing file yields the
// defaults. The result is validated against the engine's rules.
func LoadGameConfig(path string) (GameConfig, error) {
	cfg := DefaultGameConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn().Str("path", path).Msg("game config not found, using defaults")
		return cfg, nil
	}
	if err != nil {
		return GameConfig{}, fmt.Errorf("failed to read game config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return GameConfig{}, fmt.Errorf("failed to parse game config: %w", err)
	}
	if err := cfg.EngineConfig().Validate(); err != nil {
		return GameConfig{}, fmt.Errorf("invalid game config %s: %w", path, err)
	}
	return cfg, nil
}

// EngineConfig converts to the round engine's settings.
func (g GameConfig) EngineConfig() engine.Config {
	return engine.Config{
		TotalRounds:      g.TotalRounds,
		Difficulty:       g.Difficulty,
		MaxDigits:        g.MaxDigits,
		RoundDuration:    g.RoundDuration,
		FeedbackDuration: g.FeedbackDuration,
		TickInterval:     g.TickInterval,
		ReplayMissed:     g.ReplayMissed,
	}
}
