package events

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Publisher delivers one envelope to its destination.
type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
	Close() error
}

// LogPublisher writes events to the structured log. It is used when no
// message broker is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, env Envelope) error {
	log.Info().
		Str("event_id", env.ID.String()).
		Str("event_type", string(env.Type)).
		Str("session_id", env.SessionID.String()).
		RawJSON("payload", env.Payload).
		Msg("session event")
	return nil
}

func (LogPublisher) Close() error { return nil }
