package engine

import (
	"github.com/google/uuid"

	"github.com/mcdev12/multis/go/internal/models"
)

// RoundResult is the outcome of the most recently resolved round as shown
// during feedback. It carries semantic values only, never display text.
type RoundResult struct {
	RoundIndex    int  `json:"round_index"`
	IsCorrect     bool `json:"is_correct"`
	CorrectAnswer int  `json:"correct_answer"`
	PlayerAnswer  *int `json:"player_answer"`
	TimedOut      bool `json:"timed_out"`
	IsReplay      bool `json:"is_replay"`
}

// Snapshot is a read-only view of a session for rendering.
type Snapshot struct {
	SessionID         uuid.UUID              `json:"session_id"`
	Player            models.ProfileRef      `json:"player"`
	Phase             models.Phase           `json:"phase"`
	RoundIndex        int                    `json:"round_index"`
	RoundNumber       int                    `json:"round_number"`
	TotalRounds       int                    `json:"total_rounds"`
	Score             int                    `json:"score"`
	IsReplay          bool                   `json:"is_replay"`
	Formula           FormulaView            `json:"formula"`
	TypedDigits       string                 `json:"typed_digits"`
	RemainingFraction float64                `json:"remaining_fraction"`
	RemainingMs       int64                  `json:"remaining_ms"`
	LastResult        *RoundResult           `json:"last_result,omitempty"`
	Summary           *models.SessionSummary `json:"summary,omitempty"`
}

// AcceptsInput reports whether digit and submit intents would be applied.
func (s Snapshot) AcceptsInput() bool {
	return s.Phase == models.PhaseInput
}
