// Package timer provides the per-round countdown. Expiry is delivered on a
// channel so the owner can select on it together with player input.
package timer

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultDuration is the time a player has to answer a round.
const DefaultDuration = 5 * time.Second

// Countdown is a restartable one-shot timer with optional progress ticks.
// It is owned by a single goroutine and is not safe for concurrent use.
type Countdown struct {
	clock        clockwork.Clock
	duration     time.Duration
	tickInterval time.Duration

	timer     clockwork.Timer
	ticker    clockwork.Ticker
	startedAt time.Time
	running   bool
}

// NewCountdown creates a stopped countdown. duration <= 0 selects
// DefaultDuration; tickInterval <= 0 disables progress ticks.
func NewCountdown(clock clockwork.Clock, duration, tickInterval time.Duration) *Countdown {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Countdown{clock: clock, duration: duration, tickInterval: tickInterval}
}

// Start begins a fresh countdown from the full duration, cancelling any
// countdown already in progress.
func (c *Countdown) Start() {
	c.Stop()
	c.startedAt = c.clock.Now()
	c.timer = c.clock.NewTimer(c.duration)
	if c.tickInterval > 0 {
		c.ticker = c.clock.NewTicker(c.tickInterval)
	}
	c.running = true
}

// Stop cancels the countdown. A stopped countdown never fires.
func (c *Countdown) Stop() {
	if c.timer != nil {
		stopAndDrainTimer(c.timer)
		c.timer = nil
	}
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
	c.running = false
}

// C fires once when the countdown reaches zero. It is nil while stopped, so a
// select on it blocks forever.
func (c *Countdown) C() <-chan time.Time {
	if c.timer == nil {
		return nil
	}
	return c.timer.Chan()
}

// Ticks delivers periodic progress ticks while running, or nil.
func (c *Countdown) Ticks() <-chan time.Time {
	if c.ticker == nil {
		return nil
	}
	return c.ticker.Chan()
}

// Fired marks the countdown as finished after its channel delivered.
func (c *Countdown) Fired() {
	c.timer = nil
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
	c.running = false
}

// Running reports whether the countdown is in progress.
func (c *Countdown) Running() bool { return c.running }

// Duration is the full countdown length.
func (c *Countdown) Duration() time.Duration { return c.duration }

// Elapsed is the time since Start, capped at the duration.
func (c *Countdown) Elapsed() time.Duration {
	if c.startedAt.IsZero() {
		return 0
	}
	e := c.clock.Since(c.startedAt)
	if e > c.duration {
		return c.duration
	}
	if e < 0 {
		return 0
	}
	return e
}

// Remaining is the time left, zero once elapsed.
func (c *Countdown) Remaining() time.Duration {
	return c.duration - c.Elapsed()
}

// Fraction is the remaining share of the duration in [0,1].
func (c *Countdown) Fraction() float64 {
	return float64(c.Remaining()) / float64(c.duration)
}

// stopAndDrainTimer stops a timer and drains a pending fire so a later
// select on the channel cannot observe a stale expiry.
func stopAndDrainTimer(t clockwork.Timer) {
	if !t.Stop() {
		select {
		case <-t.Chan():
		default:
		}
	}
}
