// Package engine runs the round state machine of a multiplication drill:
// Input, then Feedback, repeated for every planned round, then Complete.
package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/multis/go/internal/models"
	"github.com/mcdev12/multis/go/internal/round/answer"
	"github.com/mcdev12/multis/go/internal/round/formula"
	"github.com/mcdev12/multis/go/internal/round/result"
	"github.com/mcdev12/multis/go/internal/round/timer"
)

const (
	triggerSubmit = "submit"
	triggerExpiry = "expiry"
)

// Option customises a Machine.
type Option func(*Machine)

// WithClock sets the clock used for round timing.
func WithClock(c clockwork.Clock) Option {
	return func(m *Machine) { m.clock = c }
}

// WithGenerator sets the formula generator.
func WithGenerator(g *formula.Generator) Option {
	return func(m *Machine) { m.gen = g }
}

// WithObserver registers an observer for round and session notifications.
func WithObserver(o Observer) Option {
	return func(m *Machine) { m.observer = o }
}

// WithSessionID overrides the generated session id.
func WithSessionID(id uuid.UUID) Option {
	return func(m *Machine) { m.state.SessionID = id }
}

// Machine is the round state machine for one session. It is driven by one
// goroutine at a time; Runner provides that for live play.
type Machine struct {
	cfg      Config
	clock    clockwork.Clock
	gen      *formula.Generator
	observer Observer

	buffer    *answer.Buffer
	countdown *timer.Countdown

	state          models.SessionState
	started        bool
	closed         bool
	current        models.Formula
	roundStartedAt time.Time
	resolved       bool
	replayQueue    []models.Formula
	lastResult     *RoundResult
	summary        *models.SessionSummary
}

// NewMachine validates cfg and prepares a session for player. Configuration
// problems are reported here, before any round begins.
func NewMachine(cfg Config, player models.ProfileRef, opts ...Option) (*Machine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Machine{
		cfg:      cfg,
		observer: NopObserver{},
		state: models.SessionState{
			SessionID:   uuid.New(),
			Player:      player,
			TotalRounds: cfg.TotalRounds,
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.clock == nil {
		m.clock = clockwork.NewRealClock()
	}
	if m.gen == nil {
		m.gen = formula.NewGenerator(nil)
	}

	m.buffer = answer.NewBuffer(cfg.MaxDigits)
	m.countdown = timer.NewCountdown(m.clock, cfg.RoundTimeLimit(), cfg.TickInterval)
	return m, nil
}

// SessionID identifies the session.
func (m *Machine) SessionID() uuid.UUID { return m.state.SessionID }

// Config returns the session settings.
func (m *Machine) Config() Config { return m.cfg }

// Phase is the current sub-state.
func (m *Machine) Phase() models.Phase { return m.state.Phase }

// RoundIndex is the zero-based index of the current round.
func (m *Machine) RoundIndex() int { return m.state.CurrentRoundIndex }

// Current returns the formula of the current round.
func (m *Machine) Current() models.Formula { return m.current }

// Score is the number of correct rounds so far.
func (m *Machine) Score() int { return m.state.Score }

// History returns a copy of the sealed round records.
func (m *Machine) History() []models.RoundRecord {
	out := make([]models.RoundRecord, len(m.state.History))
	copy(out, m.state.History)
	return out
}

// State returns a copy of the live aggregate.
func (m *Machine) State() models.SessionState {
	s := m.state
	s.History = m.History()
	return s
}

// Summary is set once the session is complete.
func (m *Machine) Summary() (models.SessionSummary, bool) {
	if m.summary == nil {
		return models.SessionSummary{}, false
	}
	return *m.summary, true
}

// Expiry fires when the current round's countdown runs out.
func (m *Machine) Expiry() <-chan time.Time { return m.countdown.C() }

// Ticks delivers progress ticks while a round is in Input.
func (m *Machine) Ticks() <-chan time.Time { return m.countdown.Ticks() }

// Start begins the first round.
func (m *Machine) Start() error {
	if m.started {
		return ErrAlreadyStarted
	}
	m.started = true
	return m.beginRound(false)
}

// Dispatch applies an input intent. Intents outside the Input phase are ignored.
func (m *Machine) Dispatch(in answer.Intent) {
	switch in.Kind {
	case answer.IntentDigit:
		m.Digit(in.Digit)
	case answer.IntentBackspace:
		m.Backspace()
	case answer.IntentSubmit:
		m.Submit()
	}
}

// Digit appends d to the answer buffer.
func (m *Machine) Digit(d byte) bool {
	if !m.acceptingInput() {
		return false
	}
	return m.buffer.AppendDigit(d)
}

// Backspace removes the last typed digit.
func (m *Machine) Backspace() bool {
	if !m.acceptingInput() {
		return false
	}
	return m.buffer.Backspace()
}

// Submit resolves the round with the typed answer. An empty buffer is not an
// answer and leaves the round open.
func (m *Machine) Submit() bool {
	if m.closed || !m.started || m.state.Phase == models.PhaseComplete {
		return false
	}
	if m.resolved {
		m.logDoubleResolution(triggerSubmit)
		return false
	}
	value, ok := m.buffer.Submit()
	if !ok {
		return false
	}
	m.resolve(&value)
	return true
}

// Expired is called by the owner once Expiry has delivered, then resolves
// the current round as timed out.
func (m *Machine) Expired() bool {
	m.countdown.Fired()
	return m.Expire(m.state.CurrentRoundIndex)
}

// Expire force-resolves round roundIndex as timed out. Expiry for any other
// round, or for a round already resolved, is a no-op.
func (m *Machine) Expire(roundIndex int) bool {
	if m.closed || !m.started || m.state.Phase == models.PhaseComplete {
		return false
	}
	if roundIndex != m.state.CurrentRoundIndex {
		log.Debug().
			Str("session_id", m.state.SessionID.String()).
			Int("round", roundIndex).
			Int("current_round", m.state.CurrentRoundIndex).
			Msg("ignoring expiry for stale round")
		return false
	}
	if m.resolved {
		m.logDoubleResolution(triggerExpiry)
		return false
	}
	m.resolve(nil)
	return true
}

// Tick reports countdown progress to the observer.
func (m *Machine) Tick() {
	if m.acceptingInput() {
		m.observer.Tick(m.Snapshot())
	}
}

// Advance leaves Feedback for the next round, or for Complete after the last one.
func (m *Machine) Advance() bool {
	if m.closed || m.state.Phase != models.PhaseFeedback {
		return false
	}

	next := m.state.CurrentRoundIndex + 1
	if next >= m.state.TotalRounds {
		m.complete()
		return true
	}

	m.state.CurrentRoundIndex = next
	replay := next >= m.cfg.TotalRounds
	if err := m.beginRound(replay); err != nil {
		// the range was validated in NewMachine
		log.Error().Err(err).Str("session_id", m.state.SessionID.String()).Msg("failed to begin round")
		m.complete()
	}
	return true
}

// Abandon ends an unfinished session without a summary.
func (m *Machine) Abandon() {
	if m.closed {
		return
	}
	wasLive := m.started && m.state.Phase != models.PhaseComplete
	m.Close()
	if wasLive {
		m.observer.SessionAbandoned(m.Snapshot())
	}
}

// Close cancels every pending timer. The machine accepts nothing afterwards.
func (m *Machine) Close() {
	m.countdown.Stop()
	m.closed = true
}

// Snapshot renders the current state.
func (m *Machine) Snapshot() Snapshot {
	s := Snapshot{
		SessionID:   m.state.SessionID,
		Player:      m.state.Player,
		Phase:       m.state.Phase,
		RoundIndex:  m.state.CurrentRoundIndex,
		RoundNumber: m.state.CurrentRoundIndex + 1,
		TotalRounds: m.state.TotalRounds,
		Score:       m.state.Score,
		IsReplay:    m.state.IsReplay,
		TypedDigits: m.buffer.String(),
		LastResult:  m.lastResult,
		Summary:     m.summary,
	}

	if !m.started {
		s.RoundNumber = 0
		return s
	}

	var submitted *int
	if m.resolved && m.lastResult != nil {
		submitted = m.lastResult.PlayerAnswer
	}
	s.Formula = NewFormulaView(m.current, ResolveDisplay(submitted, m.buffer.String()))

	if m.state.Phase == models.PhaseInput {
		s.RemainingFraction = m.countdown.Fraction()
		s.RemainingMs = m.countdown.Remaining().Milliseconds()
	}
	return s
}

func (m *Machine) acceptingInput() bool {
	return m.started && !m.closed && !m.resolved && m.state.Phase == models.PhaseInput
}

func (m *Machine) beginRound(replay bool) error {
	var f models.Formula
	if replay {
		f, m.replayQueue = m.replayQueue[0], m.replayQueue[1:]
	} else {
		var err error
		f, err = m.gen.Generate(m.cfg.Difficulty)
		if err != nil {
			return fmt.Errorf("failed to generate formula: %w", err)
		}
	}

	m.current = f
	m.resolved = false
	m.lastResult = nil
	m.buffer.Reset()
	m.state.IsReplay = replay
	m.state.Phase = models.PhaseInput
	m.roundStartedAt = m.clock.Now()
	m.countdown.Start()

	m.observer.RoundStarted(m.Snapshot())
	return nil
}

// resolve seals the current round. It is the only place correctness is judged.
func (m *Machine) resolve(playerAnswer *int) {
	m.resolved = true
	m.countdown.Stop()
	m.buffer.Reset()

	now := m.clock.Now()
	correctAnswer := m.current.HiddenValue()
	isCorrect := playerAnswer != nil && *playerAnswer == correctAnswer

	rec := models.RoundRecord{
		RoundIndex:   m.state.CurrentRoundIndex,
		PlayerID:     m.state.Player.ID,
		Formula:      m.current,
		PlayerAnswer: playerAnswer,
		IsCorrect:    isCorrect,
		IsReplay:     m.state.IsReplay,
		TimeTakenMs:  now.Sub(m.roundStartedAt).Milliseconds(),
		StartedAt:    m.roundStartedAt,
		ResolvedAt:   now,
	}
	if rec.TimeTakenMs > m.countdown.Duration().Milliseconds() {
		rec.TimeTakenMs = m.countdown.Duration().Milliseconds()
	}

	if isCorrect {
		m.state.Score++
	} else if m.cfg.ReplayMissed && !m.state.IsReplay {
		m.replayQueue = append(m.replayQueue, m.current)
		m.state.TotalRounds++
	}
	m.state.History = append(m.state.History, rec)
	m.state.Phase = models.PhaseFeedback
	m.lastResult = &RoundResult{
		RoundIndex:    rec.RoundIndex,
		IsCorrect:     isCorrect,
		CorrectAnswer: correctAnswer,
		PlayerAnswer:  playerAnswer,
		TimedOut:      playerAnswer == nil,
		IsReplay:      rec.IsReplay,
	}

	m.observer.RoundResolved(rec, m.Snapshot())
}

func (m *Machine) complete() {
	m.countdown.Stop()
	m.state.Phase = models.PhaseComplete
	m.state.IsReplay = false
	summary := result.Finalize(m.state.SessionID, m.state.Player.ID, m.state.History)
	m.summary = &summary
	m.observer.SessionCompleted(summary)
}

func (m *Machine) logDoubleResolution(trigger string) {
	log.Debug().
		Str("session_id", m.state.SessionID.String()).
		Int("round", m.state.CurrentRoundIndex).
		Str("trigger", trigger).
		Msg("round already resolved")
}
