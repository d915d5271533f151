package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Envelope wraps a payload with routing metadata.
type Envelope struct {
	ID        uuid.UUID       `json:"event_id"`
	Type      EventType       `json:"event_type"`
	SessionID uuid.UUID       `json:"session_id"`
	PlayerID  uuid.UUID       `json:"player_id"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NewEnvelope marshals payload into a new envelope.
func NewEnvelope(t EventType, sessionID, playerID uuid.UUID, at time.Time, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", t, err)
	}
	return Envelope{
		ID:        uuid.New(),
		Type:      t,
		SessionID: sessionID,
		PlayerID:  playerID,
		Timestamp: at.UTC(),
		Payload:   data,
	}, nil
}

// Decode unmarshals the payload into v.
func (e Envelope) Decode(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("unmarshal %s payload: %w", e.Type, err)
	}
	return nil
}
