package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/multis/go/internal/models"
	"github.com/mcdev12/multis/go/internal/round/answer"
)

// Runner serialises every event of one session onto a single goroutine:
// intents, explicit advances, countdown expiry, progress ticks and the
// feedback delay. The Machine never sees two events at once.
type Runner struct {
	machine  *Machine
	clock    clockwork.Clock
	feedback time.Duration

	intents chan answer.Intent
	advance chan struct{}
	done    chan struct{}

	snapshot atomic.Pointer[Snapshot]
	summary  atomic.Pointer[models.SessionSummary]

	onPublish func(Snapshot)
}

// NewRunner wraps m. The runner uses the machine's clock for the feedback delay.
func NewRunner(m *Machine) *Runner {
	r := &Runner{
		machine:  m,
		clock:    m.clock,
		feedback: m.cfg.FeedbackDuration,
		intents:  make(chan answer.Intent, 16),
		advance:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	snap := m.Snapshot()
	r.snapshot.Store(&snap)
	return r
}

// OnPublish registers fn to receive every snapshot the loop publishes,
// including ticks. It must be called before Run and runs on the loop
// goroutine, so fn must not block.
func (r *Runner) OnPublish(fn func(Snapshot)) {
	r.onPublish = fn
}

// SessionID identifies the session being run.
func (r *Runner) SessionID() uuid.UUID { return r.machine.SessionID() }

// Run starts the session and processes events until it completes or ctx is
// cancelled. Cancellation abandons the session and stops every timer.
func (r *Runner) Run(ctx context.Context) error {
	defer close(r.done)

	m := r.machine
	if err := m.Start(); err != nil {
		return err
	}
	r.publish()

	var (
		feedbackTimer clockwork.Timer
		feedbackC     <-chan time.Time
	)
	stopFeedback := func() {
		if feedbackTimer != nil {
			if !feedbackTimer.Stop() {
				select {
				case <-feedbackTimer.Chan():
				default:
				}
			}
			feedbackTimer, feedbackC = nil, nil
		}
	}
	defer stopFeedback()
	defer m.Close()

	for {
		switch m.Phase() {
		case models.PhaseComplete:
			r.publish()
			return nil
		case models.PhaseFeedback:
			if feedbackTimer == nil && r.feedback > 0 {
				feedbackTimer = r.clock.NewTimer(r.feedback)
				feedbackC = feedbackTimer.Chan()
			}
		default:
			stopFeedback()
		}

		select {
		case <-ctx.Done():
			m.Abandon()
			r.publish()
			log.Debug().Str("session_id", m.SessionID().String()).Msg("session abandoned")
			return ctx.Err()
		case in := <-r.intents:
			m.Dispatch(in)
		case <-r.advance:
			m.Advance()
		case <-m.Expiry():
			m.Expired()
		case <-m.Ticks():
			m.Tick()
		case <-feedbackC:
			feedbackTimer, feedbackC = nil, nil
			m.Advance()
		}
		r.publish()
	}
}

// Send queues an intent for the session.
func (r *Runner) Send(ctx context.Context, in answer.Intent) error {
	select {
	case <-r.done:
		return ErrSessionClosed
	default:
	}
	select {
	case r.intents <- in:
		return nil
	case <-r.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Advance asks the session to leave Feedback without waiting for the delay.
// Repeated requests before the loop picks one up collapse into one.
func (r *Runner) Advance() error {
	select {
	case <-r.done:
		return ErrSessionClosed
	default:
	}
	select {
	case r.advance <- struct{}{}:
	default:
	}
	return nil
}

// Snapshot returns the latest published state. Safe for concurrent use.
func (r *Runner) Snapshot() Snapshot {
	return *r.snapshot.Load()
}

// Summary is available once the session completed.
func (r *Runner) Summary() (models.SessionSummary, bool) {
	s := r.summary.Load()
	if s == nil {
		return models.SessionSummary{}, false
	}
	return *s, true
}

// History returns the sealed round records. It is only safe once Done is closed.
func (r *Runner) History() []models.RoundRecord {
	select {
	case <-r.done:
		return r.machine.History()
	default:
		return nil
	}
}

// Done is closed when Run returns.
func (r *Runner) Done() <-chan struct{} { return r.done }

func (r *Runner) publish() {
	snap := r.machine.Snapshot()
	r.snapshot.Store(&snap)
	if s, ok := r.machine.Summary(); ok {
		r.summary.Store(&s)
	}
	if r.onPublish != nil {
		r.onPublish(snap)
	}
}
