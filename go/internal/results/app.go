// Package results persists completed sessions. The round engine never
// stores anything itself; the gateway hands finished sessions to this App.
package results

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/multis/go/internal/models"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// ResultsRepository defines what the app layer needs from the repository
type ResultsRepository interface {
	SaveResult(ctx context.Context, res models.SessionResult) error
	ListResults(ctx context.Context, playerID uuid.UUID, limit int) ([]models.SessionResult, error)
}

// App handles session result business logic
type App struct {
	repo ResultsRepository
}

// NewApp creates a new results App
func NewApp(repo ResultsRepository) *App {
	return &App{repo: repo}
}

// Record saves a completed session.
func (a *App) Record(ctx context.Context, summary models.SessionSummary, history []models.RoundRecord) error {
	if summary.SessionID == uuid.Nil || summary.PlayerID == uuid.Nil {
		return fmt.Errorf("result is missing session or player id")
	}
	if summary.TotalRounds != len(history) {
		return fmt.Errorf("summary covers %d rounds but history has %d", summary.TotalRounds, len(history))
	}

	if err := a.repo.SaveResult(ctx, models.SessionResult{Summary: summary, History: history}); err != nil {
		return fmt.Errorf("failed to record result: %w", err)
	}

	log.Info().
		Str("session_id", summary.SessionID.String()).
		Str("player_id", summary.PlayerID.String()).
		Int("score", summary.Score).
		Int("total_rounds", summary.TotalRounds).
		Msg("recorded session result")
	return nil
}

// Recent lists a player's latest results. limit is clamped to 1..MaxListLimit.
func (a *App) Recent(ctx context.Context, playerID uuid.UUID, limit int) ([]models.SessionResult, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	res, err := a.repo.ListResults(ctx, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	return res, nil
}
