package events

import (
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/multis/go/internal/models"
	"github.com/mcdev12/multis/go/internal/round/engine"
)

// Enqueuer accepts envelopes without blocking.
type Enqueuer interface {
	Enqueue(env Envelope) bool
}

// SessionObserver turns engine notifications into events.
type SessionObserver struct {
	sink      Enqueuer
	clock     clockwork.Clock
	playerID  uuid.UUID
	timeLimit int64
}

var _ engine.Observer = (*SessionObserver)(nil)

// NewSessionObserver publishes the events of one session to sink.
func NewSessionObserver(sink Enqueuer, clock clockwork.Clock, player models.ProfileRef, cfg engine.Config) *SessionObserver {
	return &SessionObserver{
		sink:      sink,
		clock:     clock,
		playerID:  player.ID,
		timeLimit: cfg.RoundTimeLimit().Milliseconds(),
	}
}

func (o *SessionObserver) RoundStarted(s engine.Snapshot) {
	now := o.clock.Now()
	if s.RoundIndex == 0 {
		o.emit(SessionStarted, s.SessionID, SessionStartedPayload{
			SessionID:   s.SessionID.String(),
			PlayerID:    s.Player.ID.String(),
			PlayerName:  s.Player.Name,
			TotalRounds: s.TotalRounds,
			StartedAt:   now,
		})
	}
	o.emit(RoundStarted, s.SessionID, RoundStartedPayload{
		SessionID:      s.SessionID.String(),
		RoundIndex:     s.RoundIndex,
		TotalRounds:    s.TotalRounds,
		IsReplay:       s.IsReplay,
		Formula:        s.Formula.A + " × " + s.Formula.B + " = " + s.Formula.C,
		HiddenPosition: string(s.Formula.Hidden),
		TimeLimitMs:    o.timeLimit,
		StartedAt:      now,
	})
}

// Tick is not published; progress is a rendering concern.
func (o *SessionObserver) Tick(engine.Snapshot) {}

func (o *SessionObserver) RoundResolved(rec models.RoundRecord, s engine.Snapshot) {
	o.emit(RoundResolved, s.SessionID, RoundResolvedPayload{
		SessionID:      s.SessionID.String(),
		RoundIndex:     rec.RoundIndex,
		FactorA:        rec.Formula.FactorA,
		FactorB:        rec.Formula.FactorB,
		Product:        rec.Formula.Product,
		HiddenPosition: string(rec.Formula.HiddenPosition),
		PlayerAnswer:   rec.PlayerAnswer,
		IsCorrect:      rec.IsCorrect,
		IsReplay:       rec.IsReplay,
		TimedOut:       rec.TimedOut(),
		TimeTakenMs:    rec.TimeTakenMs,
		Score:          s.Score,
		ResolvedAt:     rec.ResolvedAt,
	})
}

func (o *SessionObserver) SessionCompleted(sum models.SessionSummary) {
	o.emit(SessionCompleted, sum.SessionID, SessionCompletedPayload{
		SessionID:     sum.SessionID.String(),
		TotalRounds:   sum.TotalRounds,
		CorrectCount:  sum.CorrectCount,
		Score:         sum.Score,
		Accuracy:      sum.Accuracy,
		DurationMs:    sum.DurationMs,
		ReplayRounds:  sum.ReplayRounds,
		ReplayCorrect: sum.ReplayCorrect,
		CompletedAt:   sum.CompletedAt,
	})
}

func (o *SessionObserver) SessionAbandoned(s engine.Snapshot) {
	o.emit(SessionAbandoned, s.SessionID, SessionAbandonedPayload{
		SessionID:   s.SessionID.String(),
		RoundIndex:  s.RoundIndex,
		Score:       s.Score,
		AbandonedAt: o.clock.Now(),
	})
}

func (o *SessionObserver) emit(t EventType, sessionID uuid.UUID, payload any) {
	env, err := NewEnvelope(t, sessionID, o.playerID, o.clock.Now(), payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", string(t)).Msg("failed to build event")
		return
	}
	o.sink.Enqueue(env)
}
