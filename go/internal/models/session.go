package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionState is the live aggregate owned by the round engine.
type SessionState struct {
	SessionID         uuid.UUID     `json:"session_id"`
	Player            ProfileRef    `json:"player"`
	CurrentRoundIndex int           `json:"current_round_index"`
	Score             int           `json:"score"`
	Phase             Phase         `json:"phase"`
	History           []RoundRecord `json:"history"`
	IsReplay          bool          `json:"is_replay"`
	TotalRounds       int           `json:"total_rounds"`
}

// SessionSummary is the final accounting of a completed session.
type SessionSummary struct {
	SessionID     uuid.UUID `json:"session_id"`
	PlayerID      uuid.UUID `json:"player_id"`
	TotalRounds   int       `json:"total_rounds"`
	CorrectCount  int       `json:"correct_count"`
	Score         int       `json:"score"`
	Accuracy      float64   `json:"accuracy"`
	DurationMs    int64     `json:"duration_ms"`
	ReplayRounds  int       `json:"replay_rounds"`
	ReplayCorrect int       `json:"replay_correct"`
	CompletedAt   time.Time `json:"completed_at"`
}
