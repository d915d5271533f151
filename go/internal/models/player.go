package models

import (
	"time"

	"github.com/google/uuid"
)

// Player is a locally stored child profile.
type Player struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	AvatarID   string    `json:"avatar_id"`
	ColorID    string    `json:"color_id"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
}

// Ref returns the identity the round engine attaches to records.
func (p Player) Ref() ProfileRef {
	return ProfileRef{ID: p.ID, Name: p.Name}
}

// SessionResult is a persisted session summary with its round history.
type SessionResult struct {
	Summary SessionSummary `json:"summary"`
	History []RoundRecord  `json:"history"`
}
