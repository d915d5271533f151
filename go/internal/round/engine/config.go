package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/mcdev12/multis/go/internal/round/answer"
	"github.com/mcdev12/multis/go/internal/round/formula"
	"github.com/mcdev12/multis/go/internal/round/timer"
)

var (
	// ErrInvalidConfig is returned by NewMachine for unusable session settings.
	ErrInvalidConfig = errors.New("invalid session config")
	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("session already started")
	// ErrSessionClosed is returned when input is sent to a finished runner.
	ErrSessionClosed = errors.New("session closed")
)

const (
	DefaultTotalRounds      = 10
	DefaultFeedbackDuration = 1500 * time.Millisecond
	DefaultTickInterval     = 100 * time.Millisecond
)

// Config describes one play session.
type Config struct {
	TotalRounds      int
	Difficulty       formula.DifficultyConfig
	MaxDigits        int
	RoundDuration    time.Duration
	FeedbackDuration time.Duration // 0 waits for an explicit advance
	TickInterval     time.Duration // 0 disables progress ticks
	ReplayMissed     bool
}

// DefaultConfig returns the standard drill settings.
func DefaultConfig() Config {
	return Config{
		TotalRounds:      DefaultTotalRounds,
		Difficulty:       formula.DefaultDifficulty(),
		MaxDigits:        answer.DefaultMaxDigits,
		RoundDuration:    timer.DefaultDuration,
		FeedbackDuration: DefaultFeedbackDuration,
		TickInterval:     DefaultTickInterval,
	}
}

// Validate reports the first problem with c. Factor range problems wrap
// formula.ErrGeneratorExhaustion, everything else wraps ErrInvalidConfig.
func (c Config) Validate() error {
	if c.TotalRounds < 1 {
		return fmt.Errorf("%w: total rounds must be positive, got %d", ErrInvalidConfig, c.TotalRounds)
	}
	if c.MaxDigits < 0 {
		return fmt.Errorf("%w: max digits must not be negative", ErrInvalidConfig)
	}
	if c.RoundDuration < 0 || c.FeedbackDuration < 0 || c.TickInterval < 0 {
		return fmt.Errorf("%w: durations must not be negative", ErrInvalidConfig)
	}
	if err := c.Difficulty.Validate(c.maxDigits()); err != nil {
		return err
	}
	return nil
}

// RoundTimeLimit is the countdown length a round actually runs with.
func (c Config) RoundTimeLimit() time.Duration {
	if c.RoundDuration <= 0 {
		return timer.DefaultDuration
	}
	return c.RoundDuration
}

func (c Config) maxDigits() int {
	if c.MaxDigits == 0 {
		return answer.DefaultMaxDigits
	}
	return c.MaxDigits
}
