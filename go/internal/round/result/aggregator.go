// Package result folds a sealed round history into a session summary.
package result

import (
	"time"

	"github.com/google/uuid"

	"github.com/mcdev12/multis/go/internal/models"
)

// Finalize summarises history. It only reads the records and returns the
// same summary for the same input.
func Finalize(sessionID, playerID uuid.UUID, history []models.RoundRecord) models.SessionSummary {
	summary := models.SessionSummary{
		SessionID:   sessionID,
		PlayerID:    playerID,
		TotalRounds: len(history),
	}

	for _, rec := range history {
		if rec.IsCorrect {
			summary.CorrectCount++
		}
		if rec.IsReplay {
			summary.ReplayRounds++
			if rec.IsCorrect {
				summary.ReplayCorrect++
			}
		}
	}

	summary.Score = summary.CorrectCount
	summary.Accuracy = Accuracy(summary.CorrectCount, summary.TotalRounds)

	if len(history) > 0 {
		first, last := history[0], history[len(history)-1]
		summary.DurationMs = durationMs(first.StartedAt, last.ResolvedAt)
		summary.CompletedAt = last.ResolvedAt
	}

	return summary
}

// Accuracy is correct/total, or 0 when no rounds were played.
func Accuracy(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(correct) / float64(total)
}

func durationMs(start, end time.Time) int64 {
	if start.IsZero() || end.Before(start) {
		return 0
	}
	return end.Sub(start).Milliseconds()
}
