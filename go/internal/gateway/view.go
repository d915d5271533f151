package gateway

import (
	"math"

	"github.com/mcdev12/multis/go/internal/i18n"
	"github.com/mcdev12/multis/go/internal/models"
	"github.com/mcdev12/multis/go/internal/round/engine"
)

// Labels are the localized strings a client renders next to a snapshot.
type Labels struct {
	Status    string `json:"status"`
	Round     string `json:"round"`
	Score     string `json:"score"`
	Formula   string `json:"formula"`
	TimeLeft  string `json:"time_left,omitempty"`
	Replay    string `json:"replay,omitempty"`
	Feedback  string `json:"feedback,omitempty"`
	AnswerWas string `json:"answer_was,omitempty"`
	Completed string `json:"completed,omitempty"`
	Accuracy  string `json:"accuracy,omitempty"`
}

// StateView is what the gateway sends to clients: the engine snapshot plus
// localized labels.
type StateView struct {
	engine.Snapshot
	Locale string `json:"locale"`
	Labels Labels `json:"labels"`
}

// NewStateView localizes s.
func NewStateView(s engine.Snapshot, loc *i18n.Localizer) StateView {
	v := StateView{Snapshot: s, Locale: loc.Locale()}
	l := &v.Labels

	l.Status = loc.Text("a11y.gameStatus")
	l.Round = loc.Text("game.roundOf", s.RoundNumber, s.TotalRounds)
	l.Score = loc.Text("game.score", s.Score)

	switch f := s.Formula; f.Source.Kind {
	case engine.DisplayAnswer:
		l.Formula = loc.Text("a11y.formulaAnswered", f.A, f.B, f.C)
	case engine.DisplayPlaceholder, engine.DisplayTyped:
		l.Formula = loc.Text("a11y.formulaFind", f.A, f.B, f.C)
	}
	if s.IsReplay {
		l.Replay = loc.Text("game.replay")
	}

	switch s.Phase {
	case models.PhaseInput:
		l.TimeLeft = loc.Text("a11y.timeLeft", secondsLeft(s.RemainingMs))
	case models.PhaseFeedback:
		if r := s.LastResult; r != nil {
			switch {
			case r.IsCorrect:
				l.Feedback = loc.Text("game.correct")
			case r.TimedOut:
				l.Feedback = loc.Text("game.timeout")
			default:
				l.Feedback = loc.Text("game.incorrect")
			}
			if !r.IsCorrect {
				l.AnswerWas = loc.Text("game.answerWas", r.CorrectAnswer)
			}
		}
	case models.PhaseComplete:
		if sum := s.Summary; sum != nil {
			l.Completed = loc.Text("game.completed", sum.CorrectCount, sum.TotalRounds)
			l.Accuracy = loc.Text("game.accuracy", int(math.Round(sum.Accuracy*100)))
		}
	}
	return v
}

// secondsLeft rounds up so "0 seconds left" only shows once time is out.
func secondsLeft(ms int64) int {
	if ms <= 0 {
		return 0
	}
	return int((ms + 999) / 1000)
}
