package gateway

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/multis/go/internal/events"
	"github.com/mcdev12/multis/go/internal/i18n"
	"github.com/mcdev12/multis/go/internal/models"
	"github.com/mcdev12/multis/go/internal/round/engine"
	"github.com/mcdev12/multis/go/internal/round/formula"
)

type fakeRecorder struct {
	mu        sync.Mutex
	summaries []models.SessionSummary
	histories [][]models.RoundRecord
}

func (r *fakeRecorder) Record(_ context.Context, summary models.SessionSummary, history []models.RoundRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summaries = append(r.summaries, summary)
	r.histories = append(r.histories, history)
	return nil
}

func (r *fakeRecorder) recorded() []models.SessionSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.SessionSummary(nil), r.summaries...)
}

type lockedSink struct {
	mu   sync.Mutex
	envs []events.Envelope
}

func (s *lockedSink) Enqueue(env events.Envelope) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.envs = append(s.envs, env)
	return true
}

func (s *lockedSink) has(t events.EventType, sessionID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, env := range s.envs {
		if env.Type == t && env.SessionID == sessionID {
			return true
		}
	}
	return false
}

// gameConfig always asks 3 × 3 = 9 and waits for an explicit advance.
func gameConfig(rounds int) engine.Config {
	cfg := engine.DefaultConfig()
	cfg.TotalRounds = rounds
	cfg.Difficulty = formula.DifficultyConfig{MinFactor: 3, MaxFactor: 3}
	cfg.FeedbackDuration = 0
	cfg.TickInterval = 0
	return cfg
}

func newTestManager(t *testing.T, cfg engine.Config, opts ...ManagerOption) *SessionManager {
	t.Helper()
	opts = append([]ManagerOption{
		WithManagerClock(clockwork.NewFakeClock()),
		WithGeneratorSource(func() *formula.Generator { return formula.NewSeededGenerator(1) }),
	}, opts...)
	m, err := NewSessionManager(cfg, i18n.Default(), nil, opts...)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = m.Shutdown(ctx)
	})
	return m
}

func waitView(t *testing.T, sess *Session, cond func(StateView) bool) StateView {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if v := sess.View(); cond(v) {
			return v
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not met, last view %+v", sess.View())
	return StateView{}
}

func atRound(i int, phase models.Phase) func(StateView) bool {
	return func(v StateView) bool { return v.RoundIndex == i && v.Phase == phase }
}

func answerFor(v StateView) int {
	if v.Formula.Hidden == models.HiddenProduct {
		return 9
	}
	return 3
}

func typeAnswer(t *testing.T, m *SessionManager, id uuid.UUID, value int) {
	t.Helper()
	var keys []string
	for _, d := range strconv.Itoa(value) {
		keys = append(keys, string(d))
	}
	keys = append(keys, "Enter")
	for _, k := range keys {
		if err := m.Key(context.Background(), id, k); err != nil {
			t.Fatalf("Key(%q): %v", k, err)
		}
	}
}

func waitDone(t *testing.T, sess *Session) {
	t.Helper()
	select {
	case <-sess.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("session did not finish")
	}
}

func TestNewSessionManagerRejectsInvalidConfig(t *testing.T) {
	cfg := gameConfig(0)
	if _, err := NewSessionManager(cfg, i18n.Default(), nil); !errors.Is(err, engine.ErrInvalidConfig) {
		t.Fatalf("error = %v, want ErrInvalidConfig", err)
	}
}

func TestSessionPlaysToCompletionAndRecords(t *testing.T) {
	rec := &fakeRecorder{}
	sink := &lockedSink{}
	m := newTestManager(t, gameConfig(2), WithRecorder(rec), WithEventSink(sink))
	player := models.ProfileRef{ID: uuid.New(), Name: "Ada"}

	sess, err := m.StartSession(player, "de-DE")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if sess.Locale != "de-DE" {
		t.Fatalf("locale = %s, want de-DE", sess.Locale)
	}

	for round := 0; round < 2; round++ {
		v := waitView(t, sess, atRound(round, models.PhaseInput))
		typeAnswer(t, m, sess.ID, answerFor(v))
		waitView(t, sess, atRound(round, models.PhaseFeedback))
		if err := m.Advance(sess.ID); err != nil {
			t.Fatalf("Advance: %v", err)
		}
	}
	waitDone(t, sess)

	v := sess.View()
	if v.Phase != models.PhaseComplete || v.Summary == nil || v.Summary.CorrectCount != 2 {
		t.Fatalf("final view = %+v", v)
	}
	if v.Labels.Completed == "" {
		t.Fatal("completed label missing")
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(rec.recorded()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	got := rec.recorded()
	if len(got) != 1 || got[0].SessionID != sess.ID || got[0].Score != 2 {
		t.Fatalf("recorded = %+v", got)
	}
	if len(rec.histories[0]) != 2 {
		t.Fatalf("recorded history has %d rounds, want 2", len(rec.histories[0]))
	}
	if !sink.has(events.SessionCompleted, sess.ID) {
		t.Fatal("no SessionCompleted event")
	}

	// completed sessions stay readable until replaced
	if _, err := m.Session(sess.ID); err != nil {
		t.Fatalf("Session after completion: %v", err)
	}
	if err := m.Key(context.Background(), sess.ID, "1"); !errors.Is(err, engine.ErrSessionClosed) {
		t.Fatalf("Key after completion = %v, want ErrSessionClosed", err)
	}
}

func TestStartSessionReplacesPlayersLiveSession(t *testing.T) {
	sink := &lockedSink{}
	m := newTestManager(t, gameConfig(3), WithEventSink(sink))
	player := models.ProfileRef{ID: uuid.New(), Name: "Ada"}

	first, err := m.StartSession(player, "")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	waitView(t, first, atRound(0, models.PhaseInput))

	second, err := m.StartSession(player, "")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	waitDone(t, first)

	if _, err := m.Session(first.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("first session lookup = %v, want ErrSessionNotFound", err)
	}
	if _, err := m.Session(second.ID); err != nil {
		t.Fatalf("second session lookup: %v", err)
	}
	if !sink.has(events.SessionAbandoned, first.ID) {
		t.Fatal("replaced session was not reported abandoned")
	}
	if n := m.ActiveSessions(); n != 1 {
		t.Fatalf("active sessions = %d, want 1", n)
	}

	// other players are unaffected
	other, err := m.StartSession(models.ProfileRef{ID: uuid.New(), Name: "Bob"}, "")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	waitView(t, other, atRound(0, models.PhaseInput))
	if n := m.ActiveSessions(); n != 2 {
		t.Fatalf("active sessions = %d, want 2", n)
	}
}

func TestSessionManagerErrors(t *testing.T) {
	m := newTestManager(t, gameConfig(1))
	sess, err := m.StartSession(models.ProfileRef{ID: uuid.New(), Name: "Ada"}, "")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	if err := m.Key(context.Background(), sess.ID, "x"); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("Key(x) = %v, want ErrUnknownKey", err)
	}
	missing := uuid.New()
	if err := m.Key(context.Background(), missing, "1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Key on missing session = %v", err)
	}
	if err := m.Advance(missing); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Advance on missing session = %v", err)
	}
	if err := m.StopSession(missing); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("StopSession on missing session = %v", err)
	}

	if err := m.StopSession(sess.ID); err != nil {
		t.Fatalf("StopSession: %v", err)
	}
	waitDone(t, sess)
	if sess.View().Phase == models.PhaseComplete {
		t.Fatal("stopped session reported complete")
	}
}

func TestShutdownStopsSessions(t *testing.T) {
	m := newTestManager(t, gameConfig(3))
	sess, err := m.StartSession(models.ProfileRef{ID: uuid.New(), Name: "Ada"}, "")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := m.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	waitDone(t, sess)

	if _, err := m.StartSession(models.ProfileRef{ID: uuid.New(), Name: "Bob"}, ""); !errors.Is(err, ErrShuttingDown) {
		t.Fatalf("StartSession after shutdown = %v, want ErrShuttingDown", err)
	}
}
