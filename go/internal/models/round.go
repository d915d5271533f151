package models

import (
	"time"

	"github.com/google/uuid"
)

// Phase is the sub-state of a session.
type Phase string

const (
	PhaseInput    Phase = "INPUT"
	PhaseFeedback Phase = "FEEDBACK"
	PhaseComplete Phase = "COMPLETE"
)

// ProfileRef is the opaque player identity attached to round records.
type ProfileRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// RoundRecord is the sealed outcome of one round. It is appended to the
// session history once and never mutated afterwards.
type RoundRecord struct {
	RoundIndex   int       `json:"round_index"`
	PlayerID     uuid.UUID `json:"player_id"`
	Formula      Formula   `json:"formula"`
	PlayerAnswer *int      `json:"player_answer"` // nil when the round timed out
	IsCorrect    bool      `json:"is_correct"`
	IsReplay     bool      `json:"is_replay"`
	TimeTakenMs  int64     `json:"time_taken_ms"`
	StartedAt    time.Time `json:"started_at"`
	ResolvedAt   time.Time `json:"resolved_at"`
}

// TimedOut reports whether the round resolved by expiry.
func (r RoundRecord) TimedOut() bool {
	return r.PlayerAnswer == nil
}

// CorrectAnswer is the formula's hidden value.
func (r RoundRecord) CorrectAnswer() int {
	return r.Formula.HiddenValue()
}
