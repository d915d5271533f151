package gateway

import (
	"testing"

	"github.com/mcdev12/multis/go/internal/i18n"
	"github.com/mcdev12/multis/go/internal/models"
	"github.com/mcdev12/multis/go/internal/round/engine"
)

func intPtr(v int) *int { return &v }

func TestNewStateView(t *testing.T) {
	formula := models.NewFormula(6, 4, models.HiddenFactorB)
	input := engine.Snapshot{
		Phase:       models.PhaseInput,
		RoundNumber: 3,
		TotalRounds: 10,
		Score:       2,
		Formula:     engine.NewFormulaView(formula, engine.ResolveDisplay(nil, "")),
		RemainingMs: 4200,
	}

	timedOut := input
	timedOut.Phase = models.PhaseFeedback
	timedOut.LastResult = &engine.RoundResult{TimedOut: true, CorrectAnswer: 4}

	wrong := input
	wrong.Phase = models.PhaseFeedback
	wrong.IsReplay = true
	wrong.Formula = engine.NewFormulaView(formula, engine.ResolveDisplay(intPtr(5), ""))
	wrong.LastResult = &engine.RoundResult{PlayerAnswer: intPtr(5), CorrectAnswer: 4}

	done := engine.Snapshot{
		Phase:       models.PhaseComplete,
		RoundNumber: 10,
		TotalRounds: 10,
		Score:       7,
		Summary:     &models.SessionSummary{TotalRounds: 10, CorrectCount: 7, Accuracy: 0.7},
	}

	tests := []struct {
		name   string
		locale string
		snap   engine.Snapshot
		want   Labels
	}{
		{
			name:   "input",
			locale: "en-US",
			snap:   input,
			want: Labels{
				Status:   "Game status",
				Round:    "Round 3 of 10",
				Score:    "Score: 2",
				Formula:  "6 times ? equals 24. Find the missing number.",
				TimeLeft: "5 seconds left",
			},
		},
		{
			name:   "timeout",
			locale: "en-US",
			snap:   timedOut,
			want: Labels{
				Status:    "Game status",
				Round:     "Round 3 of 10",
				Score:     "Score: 2",
				Formula:   "6 times ? equals 24. Find the missing number.",
				Feedback:  "Time's up!",
				AnswerWas: "The answer was 4",
			},
		},
		{
			name:   "wrong replay in french",
			locale: "fr",
			snap:   wrong,
			want: Labels{
				Status:    "État de la partie",
				Round:     "Manche 3 sur 10",
				Score:     "Score : 2",
				Formula:   "6 fois 5 égale 24",
				Replay:    "Deuxième chance",
				Feedback:  "Pas tout à fait !",
				AnswerWas: "La réponse était 4",
			},
		},
		{
			name:   "complete",
			locale: "en-US",
			snap:   done,
			want: Labels{
				Status:    "Game status",
				Round:     "Round 10 of 10",
				Score:     "Score: 7",
				Completed: "Well done! You got 7 out of 10.",
				Accuracy:  "70% correct",
			},
		},
	}

	bundle := i18n.Default()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewStateView(tt.snap, bundle.Localizer(tt.locale))
			if v.Labels != tt.want {
				t.Fatalf("labels =\n%+v\nwant\n%+v", v.Labels, tt.want)
			}
			if v.Phase != tt.snap.Phase || v.Score != tt.snap.Score {
				t.Fatalf("snapshot not carried: %+v", v.Snapshot)
			}
		})
	}
}

func TestSecondsLeft(t *testing.T) {
	for ms, want := range map[int64]int{0: 0, -5: 0, 1: 1, 1000: 1, 1001: 2, 5000: 5} {
		if got := secondsLeft(ms); got != want {
			t.Fatalf("secondsLeft(%d) = %d, want %d", ms, got, want)
		}
	}
}
