package engine

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/multis/go/internal/models"
	"github.com/mcdev12/multis/go/internal/round/answer"
	"github.com/mcdev12/multis/go/internal/round/formula"
)

type recordingObserver struct {
	NopObserver
	started   []Snapshot
	resolved  []models.RoundRecord
	completed []models.SessionSummary
	abandoned int
}

func (o *recordingObserver) RoundStarted(s Snapshot) { o.started = append(o.started, s) }

func (o *recordingObserver) RoundResolved(rec models.RoundRecord, _ Snapshot) {
	o.resolved = append(o.resolved, rec)
}

func (o *recordingObserver) SessionCompleted(s models.SessionSummary) {
	o.completed = append(o.completed, s)
}

func (o *recordingObserver) SessionAbandoned(Snapshot) { o.abandoned++ }

func testConfig(rounds int) Config {
	cfg := DefaultConfig()
	cfg.TotalRounds = rounds
	cfg.TickInterval = 0
	return cfg
}

func newTestMachine(t *testing.T, cfg Config) (*Machine, *clockwork.FakeClock, *recordingObserver) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	obs := &recordingObserver{}
	player := models.ProfileRef{ID: uuid.New(), Name: "Ada"}
	m, err := NewMachine(cfg, player,
		WithClock(clock),
		WithGenerator(formula.NewSeededGenerator(7)),
		WithObserver(obs),
	)
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}
	if err := m.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return m, clock, obs
}

func typeAnswer(m *Machine, value int) {
	for _, d := range []byte(strconv.Itoa(value)) {
		m.Dispatch(answer.Digit(d))
	}
	m.Dispatch(answer.Submit())
}

func TestNewMachineRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "no rounds", mutate: func(c *Config) { c.TotalRounds = 0 }, wantErr: ErrInvalidConfig},
		{name: "negative duration", mutate: func(c *Config) { c.RoundDuration = -time.Second }, wantErr: ErrInvalidConfig},
		{name: "empty range", mutate: func(c *Config) { c.Difficulty = formula.DifficultyConfig{MinFactor: 9, MaxFactor: 2} }, wantErr: formula.ErrGeneratorExhaustion},
		{name: "zero factor", mutate: func(c *Config) { c.Difficulty.MinFactor = 0 }, wantErr: formula.ErrGeneratorExhaustion},
		{name: "product too wide", mutate: func(c *Config) { c.MaxDigits = 2 }, wantErr: formula.ErrGeneratorExhaustion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(5)
			tt.mutate(&cfg)
			_, err := NewMachine(cfg, models.ProfileRef{})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewMachine error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestStartTwice(t *testing.T) {
	m, _, obs := newTestMachine(t, testConfig(3))
	if err := m.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("second Start = %v, want ErrAlreadyStarted", err)
	}
	if len(obs.started) != 1 {
		t.Fatalf("rounds started = %d, want 1", len(obs.started))
	}
	if m.Phase() != models.PhaseInput {
		t.Fatalf("phase = %s, want INPUT", m.Phase())
	}
}

func TestCorrectnessUsesHiddenValue(t *testing.T) {
	tests := []struct {
		name   string
		answer int
		want   bool
	}{
		{name: "correct product", answer: 21, want: true},
		{name: "wrong product", answer: 20, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, obs := newTestMachine(t, testConfig(1))
			m.current = models.NewFormula(3, 7, models.HiddenProduct)

			typeAnswer(m, tt.answer)

			if len(obs.resolved) != 1 {
				t.Fatalf("records = %d, want 1", len(obs.resolved))
			}
			rec := obs.resolved[0]
			if rec.IsCorrect != tt.want {
				t.Fatalf("IsCorrect = %v, want %v", rec.IsCorrect, tt.want)
			}
			if rec.PlayerAnswer == nil || *rec.PlayerAnswer != tt.answer {
				t.Fatalf("PlayerAnswer = %v, want %d", rec.PlayerAnswer, tt.answer)
			}
			wantScore := 0
			if tt.want {
				wantScore = 1
			}
			if m.Score() != wantScore {
				t.Fatalf("score = %d, want %d", m.Score(), wantScore)
			}
			if m.Phase() != models.PhaseFeedback {
				t.Fatalf("phase = %s, want FEEDBACK", m.Phase())
			}
		})
	}
}

func TestEmptySubmitLeavesRoundOpen(t *testing.T) {
	m, _, obs := newTestMachine(t, testConfig(1))
	if m.Submit() {
		t.Fatal("empty submit resolved the round")
	}
	if len(obs.resolved) != 0 || m.Phase() != models.PhaseInput {
		t.Fatal("empty submit changed state")
	}
}

func TestTimeoutRecordsNullAnswer(t *testing.T) {
	m, clock, obs := newTestMachine(t, testConfig(2))
	m.Dispatch(answer.Digit('4'))

	clock.Advance(5 * time.Second)
	select {
	case <-m.Expiry():
	default:
		t.Fatal("countdown did not fire after 5s")
	}
	if !m.Expire(m.RoundIndex()) {
		t.Fatal("expiry did not resolve the round")
	}

	if len(obs.resolved) != 1 {
		t.Fatalf("records = %d, want 1", len(obs.resolved))
	}
	rec := obs.resolved[0]
	if rec.PlayerAnswer != nil || rec.IsCorrect {
		t.Fatalf("record = %+v, want nil answer and incorrect", rec)
	}
	if !rec.TimedOut() || rec.TimeTakenMs != 5000 {
		t.Fatalf("time taken = %d, want 5000", rec.TimeTakenMs)
	}
	if m.Digit('1') {
		t.Fatal("digit accepted during feedback")
	}
}

func TestExpireAndSubmitResolveOnce(t *testing.T) {
	orders := map[string]func(m *Machine){
		"expiry first": func(m *Machine) {
			m.Expire(m.RoundIndex())
			m.Submit()
		},
		"submit first": func(m *Machine) {
			m.Submit()
			m.Expire(m.RoundIndex())
		},
	}

	for name, race := range orders {
		t.Run(name, func(t *testing.T) {
			m, _, obs := newTestMachine(t, testConfig(3))
			m.Digit('5')

			race(m)

			if len(obs.resolved) != 1 {
				t.Fatalf("records = %d, want exactly 1", len(obs.resolved))
			}
			if got := len(m.History()); got != 1 {
				t.Fatalf("history = %d, want 1", got)
			}
		})
	}
}

func TestStaleExpiryIgnored(t *testing.T) {
	m, _, obs := newTestMachine(t, testConfig(3))
	typeAnswer(m, m.Current().HiddenValue())
	m.Advance()

	if m.Expire(0) {
		t.Fatal("expiry for round 0 resolved round 1")
	}
	if len(obs.resolved) != 1 || m.Phase() != models.PhaseInput {
		t.Fatal("stale expiry changed state")
	}
}

func TestStoppedCountdownDoesNotFire(t *testing.T) {
	m, clock, _ := newTestMachine(t, testConfig(2))
	expiry := m.Expiry()
	typeAnswer(m, m.Current().HiddenValue())

	clock.Advance(10 * time.Second)
	select {
	case <-expiry:
		t.Fatal("countdown fired after the round was resolved")
	default:
	}
	if m.Expiry() != nil {
		t.Fatal("resolved round still exposes an expiry channel")
	}
}

func TestFullSession(t *testing.T) {
	m, clock, obs := newTestMachine(t, testConfig(5))
	plan := []bool{true, false, true, true, false}

	for i, correct := range plan {
		if m.RoundIndex() != i {
			t.Fatalf("round index = %d, want %d", m.RoundIndex(), i)
		}
		clock.Advance(time.Second)
		want := m.Current().HiddenValue()
		if correct {
			typeAnswer(m, want)
		} else {
			typeAnswer(m, want+1)
		}
		if !m.Advance() {
			t.Fatalf("advance after round %d failed", i)
		}
	}

	if m.Phase() != models.PhaseComplete {
		t.Fatalf("phase = %s, want COMPLETE", m.Phase())
	}
	if len(obs.completed) != 1 {
		t.Fatalf("summaries = %d, want exactly 1", len(obs.completed))
	}
	got := obs.completed[0]
	if got.TotalRounds != 5 || got.CorrectCount != 3 || got.Score != 3 || got.Accuracy != 0.6 {
		t.Fatalf("summary = %+v, want {5 3 3 0.6}", got)
	}
	if got.DurationMs != 5000 {
		t.Fatalf("duration = %d, want 5000", got.DurationMs)
	}
	if len(obs.started) != 5 {
		t.Fatalf("rounds started = %d, want 5", len(obs.started))
	}
}

func TestCompleteIgnoresInput(t *testing.T) {
	m, clock, obs := newTestMachine(t, testConfig(1))
	typeAnswer(m, m.Current().HiddenValue())
	m.Advance()

	before := m.History()
	m.Dispatch(answer.Digit('3'))
	m.Dispatch(answer.Submit())
	m.Expire(0)
	clock.Advance(time.Minute)
	if m.Advance() {
		t.Fatal("advance accepted in COMPLETE")
	}

	after := m.History()
	if len(after) != 1 || after[0] != before[0] {
		t.Fatal("history changed after completion")
	}
	if len(obs.completed) != 1 {
		t.Fatalf("summaries = %d, want 1", len(obs.completed))
	}
	if snap := m.Snapshot(); snap.TypedDigits != "" || snap.Summary == nil {
		t.Fatalf("snapshot = %+v, want no typed digits and a summary", snap)
	}
}

func TestAdvanceOnlyFromFeedback(t *testing.T) {
	m, _, _ := newTestMachine(t, testConfig(2))
	if m.Advance() {
		t.Fatal("advance accepted during INPUT")
	}
}

func TestReplayMissedRounds(t *testing.T) {
	cfg := testConfig(3)
	cfg.ReplayMissed = true
	m, _, obs := newTestMachine(t, cfg)

	var missed []models.Formula
	for i := 0; i < 3; i++ {
		f := m.Current()
		if i == 2 {
			typeAnswer(m, f.HiddenValue())
		} else {
			missed = append(missed, f)
			m.Expire(m.RoundIndex())
		}
		m.Advance()
	}

	if m.Snapshot().TotalRounds != 5 {
		t.Fatalf("planned rounds = %d, want 5", m.Snapshot().TotalRounds)
	}
	for i, f := range missed {
		if !m.Snapshot().IsReplay {
			t.Fatalf("replay round %d not flagged", i)
		}
		if m.Current() != f {
			t.Fatalf("replay round %d = %v, want %v", i, m.Current(), f)
		}
		if i == 0 {
			typeAnswer(m, f.HiddenValue())
		} else {
			m.Expire(m.RoundIndex())
		}
		m.Advance()
	}

	if m.Phase() != models.PhaseComplete {
		t.Fatalf("phase = %s, want COMPLETE", m.Phase())
	}
	got := obs.completed[0]
	if got.TotalRounds != 5 || got.CorrectCount != 2 || got.Score != 2 {
		t.Fatalf("summary = %+v, want 5 rounds / 2 correct", got)
	}
	if got.ReplayRounds != 2 || got.ReplayCorrect != 1 {
		t.Fatalf("replay = %d/%d, want 1/2", got.ReplayCorrect, got.ReplayRounds)
	}
	if obs.resolved[0].IsCorrect || obs.resolved[0].PlayerAnswer != nil {
		t.Fatal("original miss was overwritten")
	}
}

func TestAbandonStopsCountdown(t *testing.T) {
	m, clock, obs := newTestMachine(t, testConfig(3))
	expiry := m.Expiry()

	m.Abandon()
	clock.Advance(time.Minute)

	select {
	case <-expiry:
		t.Fatal("countdown fired after abandon")
	default:
	}
	if obs.abandoned != 1 {
		t.Fatalf("abandoned = %d, want 1", obs.abandoned)
	}
	if m.Digit('1') || m.Submit() {
		t.Fatal("closed machine accepted input")
	}
	if _, ok := m.Summary(); ok {
		t.Fatal("abandoned session produced a summary")
	}
}

func TestSnapshotResolvesHiddenSlot(t *testing.T) {
	m, clock, _ := newTestMachine(t, testConfig(2))
	m.current = models.NewFormula(6, 4, models.HiddenFactorB)

	if got := m.Snapshot().Formula; got.B != Placeholder || got.A != "6" || got.C != "24" {
		t.Fatalf("formula view = %+v, want 6 × ? = 24", got)
	}

	m.Digit('3')
	if got := m.Snapshot().Formula; got.B != "3" || got.Source.Kind != DisplayTyped {
		t.Fatalf("formula view = %+v, want typed 3", got)
	}

	clock.Advance(time.Second)
	if got := m.Snapshot().RemainingFraction; got != 0.8 {
		t.Fatalf("remaining fraction = %v, want 0.8", got)
	}

	m.Backspace()
	m.Digit('4')
	m.Submit()
	snap := m.Snapshot()
	if snap.Formula.B != "4" || snap.Formula.Source.Kind != DisplayAnswer {
		t.Fatalf("formula view = %+v, want answer 4", snap.Formula)
	}
	if snap.LastResult == nil || !snap.LastResult.IsCorrect || snap.LastResult.CorrectAnswer != 4 {
		t.Fatalf("last result = %+v", snap.LastResult)
	}
	if snap.RemainingFraction != 0 {
		t.Fatalf("remaining fraction during feedback = %v, want 0", snap.RemainingFraction)
	}
}

func TestTimeoutClearsTypedDigits(t *testing.T) {
	m, clock, _ := newTestMachine(t, testConfig(2))
	m.current = models.NewFormula(3, 7, models.HiddenFactorA)
	m.Digit('4')

	clock.Advance(5 * time.Second)
	select {
	case <-m.Expiry():
	default:
		t.Fatal("countdown did not fire after 5s")
	}
	if !m.Expired() {
		t.Fatal("expiry did not resolve the round")
	}
	if m.countdown.Running() {
		t.Fatal("countdown still running after expiry")
	}

	snap := m.Snapshot()
	if snap.TypedDigits != "" {
		t.Fatalf("typed digits = %q during timeout feedback, want empty", snap.TypedDigits)
	}
	if snap.Formula.Source.Kind != DisplayPlaceholder || snap.Formula.A != Placeholder {
		t.Fatalf("formula view = %+v, want placeholder in hidden slot", snap.Formula)
	}
}

func TestZeroRoundDurationUsesDefaultLimit(t *testing.T) {
	cfg := testConfig(1)
	cfg.RoundDuration = 0
	if got := cfg.RoundTimeLimit(); got != 5*time.Second {
		t.Fatalf("round time limit = %v, want 5s", got)
	}

	m, clock, _ := newTestMachine(t, cfg)
	clock.Advance(4 * time.Second)
	select {
	case <-m.Expiry():
		t.Fatal("countdown fired before 5s")
	default:
	}
	if got := m.Snapshot().RemainingMs; got != 1000 {
		t.Fatalf("remaining = %dms, want 1000", got)
	}
}
