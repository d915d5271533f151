package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/multis/go/internal/events"
	"github.com/mcdev12/multis/go/internal/i18n"
	"github.com/mcdev12/multis/go/internal/models"
	"github.com/mcdev12/multis/go/internal/round/answer"
	"github.com/mcdev12/multis/go/internal/round/engine"
	"github.com/mcdev12/multis/go/internal/round/formula"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrUnknownKey      = errors.New("unknown key")
	ErrShuttingDown    = errors.New("gateway shutting down")
)

const defaultRecordTimeout = 5 * time.Second

// Recorder persists completed sessions.
type Recorder interface {
	Record(ctx context.Context, summary models.SessionSummary, history []models.RoundRecord) error
}

// Session is one live or finished play session hosted by the gateway.
type Session struct {
	ID        uuid.UUID
	Player    models.ProfileRef
	Locale    string
	StartedAt time.Time

	runner *engine.Runner
	cancel context.CancelFunc
	view   atomic.Pointer[StateView]
}

// View is the latest localized state.
func (s *Session) View() StateView {
	return *s.view.Load()
}

// Done is closed once the session completed or was abandoned.
func (s *Session) Done() <-chan struct{} {
	return s.runner.Done()
}

// ManagerOption configures a SessionManager.
type ManagerOption func(*SessionManager)

// WithManagerClock drives every session from clock.
func WithManagerClock(clock clockwork.Clock) ManagerOption {
	return func(m *SessionManager) { m.clock = clock }
}

// WithEventSink publishes session events to sink.
func WithEventSink(sink events.Enqueuer) ManagerOption {
	return func(m *SessionManager) { m.events = sink }
}

// WithRecorder persists completed sessions.
func WithRecorder(r Recorder) ManagerOption {
	return func(m *SessionManager) { m.recorder = r }
}

// WithGeneratorSource makes formula generation reproducible.
func WithGeneratorSource(newGen func() *formula.Generator) ManagerOption {
	return func(m *SessionManager) { m.newGenerator = newGen }
}

// SessionManager hosts round runners. A player has at most one live session.
type SessionManager struct {
	cfg          engine.Config
	bundle       *i18n.Bundle
	conns        *ConnectionManager
	clock        clockwork.Clock
	events       events.Enqueuer
	recorder     Recorder
	newGenerator func() *formula.Generator

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	byPlayer map[uuid.UUID]uuid.UUID
	closed   bool

	baseCtx    context.Context
	baseCancel context.CancelFunc
	wg         sync.WaitGroup
}

// NewSessionManager validates cfg up front so a bad game configuration never
// reaches a running session.
func NewSessionManager(cfg engine.Config, bundle *i18n.Bundle, conns *ConnectionManager, opts ...ManagerOption) (*SessionManager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &SessionManager{
		cfg:        cfg,
		bundle:     bundle,
		conns:      conns,
		sessions:   make(map[uuid.UUID]*Session),
		byPlayer:   make(map[uuid.UUID]uuid.UUID),
		baseCtx:    ctx,
		baseCancel: cancel,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.clock == nil {
		m.clock = clockwork.NewRealClock()
	}
	return m, nil
}

// StartSession begins a new session for player, abandoning any session the
// player still has running.
func (m *SessionManager) StartSession(player models.ProfileRef, locale string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrShuttingDown
	}
	if prev, ok := m.byPlayer[player.ID]; ok {
		m.removeLocked(prev)
	}

	var observers engine.Observers
	if m.events != nil {
		observers = append(observers, events.NewSessionObserver(m.events, m.clock, player, m.cfg))
	}
	opts := []engine.Option{engine.WithClock(m.clock), engine.WithObserver(observers)}
	if m.newGenerator != nil {
		opts = append(opts, engine.WithGenerator(m.newGenerator()))
	}

	machine, err := engine.NewMachine(m.cfg, player, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	loc := m.bundle.Localizer(locale)
	runner := engine.NewRunner(machine)
	sess := &Session{
		ID:        machine.SessionID(),
		Player:    player,
		Locale:    loc.Locale(),
		StartedAt: m.clock.Now().UTC(),
		runner:    runner,
	}
	initial := NewStateView(runner.Snapshot(), loc)
	sess.view.Store(&initial)

	runner.OnPublish(func(s engine.Snapshot) {
		v := NewStateView(s, loc)
		sess.view.Store(&v)
		if m.conns != nil {
			m.conns.Broadcast(sess.ID, v)
		}
	})

	ctx, cancel := context.WithCancel(m.baseCtx)
	sess.cancel = cancel
	m.sessions[sess.ID] = sess
	m.byPlayer[player.ID] = sess.ID

	m.wg.Add(1)
	go m.run(ctx, sess)

	log.Info().
		Str("session_id", sess.ID.String()).
		Str("player_id", player.ID.String()).
		Str("locale", sess.Locale).
		Msg("session started")
	return sess, nil
}

// Session looks up a session by id.
func (m *SessionManager) Session(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Key applies a key press ("0".."9", "Backspace", "Enter") to a session.
func (m *SessionManager) Key(ctx context.Context, id uuid.UUID, key string) error {
	sess, err := m.Session(id)
	if err != nil {
		return err
	}
	in, ok := answer.KeyIntent(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return sess.runner.Send(ctx, in)
}

// Advance skips the rest of the feedback delay.
func (m *SessionManager) Advance(id uuid.UUID) error {
	sess, err := m.Session(id)
	if err != nil {
		return err
	}
	return sess.runner.Advance()
}

// StopSession abandons a session and forgets it.
func (m *SessionManager) StopSession(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	m.removeLocked(id)
	return nil
}

// ActiveSessions counts sessions that are still running.
func (m *SessionManager) ActiveSessions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, sess := range m.sessions {
		select {
		case <-sess.Done():
		default:
			n++
		}
	}
	return n
}

// Shutdown abandons every session and waits for their runners to exit.
func (m *SessionManager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.baseCancel()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		log.Info().Msg("all sessions stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for sessions: %w", ctx.Err())
	}
}

func (m *SessionManager) removeLocked(id uuid.UUID) {
	sess, ok := m.sessions[id]
	if !ok {
		return
	}
	sess.cancel()
	delete(m.sessions, id)
	if m.byPlayer[sess.Player.ID] == id {
		delete(m.byPlayer, sess.Player.ID)
	}
	if m.conns != nil {
		m.conns.CloseSession(id)
	}
}

func (m *SessionManager) run(ctx context.Context, sess *Session) {
	defer m.wg.Done()

	err := sess.runner.Run(ctx)
	switch {
	case err == nil:
		m.record(sess)
	case errors.Is(err, context.Canceled):
		log.Info().Str("session_id", sess.ID.String()).Msg("session abandoned")
		m.mu.Lock()
		m.removeLocked(sess.ID)
		m.mu.Unlock()
	default:
		log.Error().Err(err).Str("session_id", sess.ID.String()).Msg("session failed")
		m.mu.Lock()
		m.removeLocked(sess.ID)
		m.mu.Unlock()
	}
}

func (m *SessionManager) record(sess *Session) {
	summary, ok := sess.runner.Summary()
	if !ok || m.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultRecordTimeout)
	defer cancel()

	if err := m.recorder.Record(ctx, summary, sess.runner.History()); err != nil {
		log.Error().
			Err(err).
			Str("session_id", sess.ID.String()).
			Msg("failed to record session result")
	}
}
