package main

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/multis/go/internal/config"
)

func loadConfig() (config.ServerConfig, config.GameConfig, error) {
	serverCfg, err := config.LoadServerConfig()
	if err != nil {
		return config.ServerConfig{}, config.GameConfig{}, err
	}

	gameCfg, err := config.LoadGameConfig(serverCfg.GameConfigPath)
	if err != nil {
		return config.ServerConfig{}, config.GameConfig{}, fmt.Errorf("failed to load game config: %w", err)
	}

	log.Info().
		Str("game_config", serverCfg.GameConfigPath).
		Int("total_rounds", gameCfg.TotalRounds).
		Dur("round_duration", gameCfg.RoundDuration).
		Int("min_factor", gameCfg.Difficulty.MinFactor).
		Int("max_factor", gameCfg.Difficulty.MaxFactor).
		Bool("replay_missed", gameCfg.ReplayMissed).
		Msg("loaded game config")
	return serverCfg, gameCfg, nil
}
