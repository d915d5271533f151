// Package events carries session lifecycle events from the round engine to
// whoever is listening: a JetStream stream in production, the log otherwise.
package events

import (
	"time"
)

// EventType names an event and is the last token of its subject.
type EventType string

const (
	SessionStarted   EventType = "SessionStarted"
	RoundStarted     EventType = "RoundStarted"
	RoundResolved    EventType = "RoundResolved"
	SessionCompleted EventType = "SessionCompleted"
	SessionAbandoned EventType = "SessionAbandoned"
)

// SessionStartedPayload is the payload for a SessionStarted event
type SessionStartedPayload struct {
	SessionID   string    `json:"session_id"`
	PlayerID    string    `json:"player_id"`
	PlayerName  string    `json:"player_name"`
	TotalRounds int       `json:"total_rounds"`
	StartedAt   time.Time `json:"started_at"`
}

// RoundStartedPayload is the payload for a RoundStarted event. The formula
// is masked so subscribers never see the answer before resolution.
type RoundStartedPayload struct {
	SessionID      string    `json:"session_id"`
	RoundIndex     int       `json:"round_index"`
	TotalRounds    int       `json:"total_rounds"`
	IsReplay       bool      `json:"is_replay"`
	Formula        string    `json:"formula"`
	HiddenPosition string    `json:"hidden_position"`
	TimeLimitMs    int64     `json:"time_limit_ms"`
	StartedAt      time.Time `json:"started_at"`
}

// RoundResolvedPayload is the payload for a RoundResolved event
type RoundResolvedPayload struct {
	SessionID      string    `json:"session_id"`
	RoundIndex     int       `json:"round_index"`
	FactorA        int       `json:"factor_a"`
	FactorB        int       `json:"factor_b"`
	Product        int       `json:"product"`
	HiddenPosition string    `json:"hidden_position"`
	PlayerAnswer   *int      `json:"player_answer"`
	IsCorrect      bool      `json:"is_correct"`
	IsReplay       bool      `json:"is_replay"`
	TimedOut       bool      `json:"timed_out"`
	TimeTakenMs    int64     `json:"time_taken_ms"`
	Score          int       `json:"score"`
	ResolvedAt     time.Time `json:"resolved_at"`
}

// SessionCompletedPayload is the payload for a SessionCompleted event
type SessionCompletedPayload struct {
	SessionID     string    `json:"session_id"`
	TotalRounds   int       `json:"total_rounds"`
	CorrectCount  int       `json:"correct_count"`
	Score         int       `json:"score"`
	Accuracy      float64   `json:"accuracy"`
	DurationMs    int64     `json:"duration_ms"`
	ReplayRounds  int       `json:"replay_rounds"`
	ReplayCorrect int       `json:"replay_correct"`
	CompletedAt   time.Time `json:"completed_at"`
}

// SessionAbandonedPayload is the payload for a SessionAbandoned event
type SessionAbandonedPayload struct {
	SessionID   string    `json:"session_id"`
	RoundIndex  int       `json:"round_index"`
	Score       int       `json:"score"`
	AbandonedAt time.Time `json:"abandoned_at"`
}
