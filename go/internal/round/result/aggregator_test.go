package result

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mcdev12/multis/go/internal/models"
)

func record(index int, correct, replay bool, start time.Time, took time.Duration) models.RoundRecord {
	return models.RoundRecord{
		RoundIndex:  index,
		Formula:     models.NewFormula(3, 7, models.HiddenProduct),
		IsCorrect:   correct,
		IsReplay:    replay,
		TimeTakenMs: took.Milliseconds(),
		StartedAt:   start,
		ResolvedAt:  start.Add(took),
	}
}

func TestFinalizeMixedSession(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	outcomes := []bool{true, false, true, false, true}

	var history []models.RoundRecord
	at := start
	for i, ok := range outcomes {
		history = append(history, record(i, ok, false, at, 2*time.Second))
		at = at.Add(3 * time.Second)
	}

	sessionID, playerID := uuid.New(), uuid.New()
	got := Finalize(sessionID, playerID, history)

	if got.TotalRounds != 5 || got.CorrectCount != 3 || got.Score != 3 {
		t.Fatalf("summary = %+v, want 5 rounds / 3 correct / score 3", got)
	}
	if got.Accuracy != 0.6 {
		t.Fatalf("accuracy = %v, want 0.6", got.Accuracy)
	}
	// last round starts at +12s and takes 2s
	if got.DurationMs != 14000 {
		t.Fatalf("duration = %d, want 14000", got.DurationMs)
	}
	if got.SessionID != sessionID || got.PlayerID != playerID {
		t.Fatal("summary lost identifiers")
	}
	if !got.CompletedAt.Equal(history[4].ResolvedAt) {
		t.Fatalf("completed at = %v, want %v", got.CompletedAt, history[4].ResolvedAt)
	}
}

func TestFinalizeEmptyHistory(t *testing.T) {
	got := Finalize(uuid.Nil, uuid.Nil, nil)
	if got.TotalRounds != 0 || got.Accuracy != 0 || got.DurationMs != 0 {
		t.Fatalf("summary = %+v, want zero values", got)
	}
}

func TestFinalizeCountsReplayRounds(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	history := []models.RoundRecord{
		record(0, false, false, start, time.Second),
		record(1, true, false, start.Add(time.Second), time.Second),
		record(2, true, true, start.Add(2*time.Second), time.Second),
	}

	got := Finalize(uuid.New(), uuid.New(), history)
	if got.TotalRounds != 3 || got.CorrectCount != 2 {
		t.Fatalf("summary = %+v, want 3 rounds / 2 correct", got)
	}
	if got.ReplayRounds != 1 || got.ReplayCorrect != 1 {
		t.Fatalf("replay = %d/%d, want 1/1", got.ReplayCorrect, got.ReplayRounds)
	}
}

func TestFinalizeDoesNotMutateHistory(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	history := []models.RoundRecord{record(0, true, false, start, time.Second)}
	before := history[0]

	Finalize(uuid.New(), uuid.New(), history)
	Finalize(uuid.New(), uuid.New(), history)

	if history[0] != before {
		t.Fatal("history record changed")
	}
}

func TestAccuracy(t *testing.T) {
	tests := []struct {
		correct, total int
		want           float64
	}{
		{0, 0, 0},
		{0, 4, 0},
		{1, 4, 0.25},
		{4, 4, 1},
	}
	for _, tt := range tests {
		if got := Accuracy(tt.correct, tt.total); got != tt.want {
			t.Fatalf("Accuracy(%d, %d) = %v, want %v", tt.correct, tt.total, got, tt.want)
		}
	}
}
