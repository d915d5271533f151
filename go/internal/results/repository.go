package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"

	"github.com/mcdev12/multis/go/internal/models"
	"github.com/mcdev12/multis/go/internal/sqlutil"
)

// Repository stores session summaries with their round history.
type Repository struct {
	db     *sql.DB
	driver string
}

// NewRepository creates a new results repository
func NewRepository(db *sql.DB, driver string) *Repository {
	return &Repository{db: db, driver: driver}
}

// SaveResult inserts a completed session. Saving the same session twice is a no-op.
func (r *Repository) SaveResult(ctx context.Context, res models.SessionResult) error {
	history := pqtype.NullRawMessage{}
	if len(res.History) > 0 {
		data, err := json.Marshal(res.History)
		if err != nil {
			return fmt.Errorf("failed to marshal history: %w", err)
		}
		history = pqtype.NullRawMessage{RawMessage: data, Valid: true}
	}

	s := res.Summary
	_, err := r.db.ExecContext(ctx, sqlutil.Rebind(r.driver, `
		INSERT INTO session_results (
			session_id, player_id, total_rounds, correct_count, score, accuracy,
			duration_ms, replay_rounds, replay_correct, completed_at, history
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id) DO NOTHING`),
		s.SessionID, s.PlayerID, s.TotalRounds, s.CorrectCount, s.Score, s.Accuracy,
		s.DurationMs, s.ReplayRounds, s.ReplayCorrect, s.CompletedAt.UTC(), history,
	)
	if err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}
	return nil
}

// ListResults returns up to limit results for a player, newest first.
func (r *Repository) ListResults(ctx context.Context, playerID uuid.UUID, limit int) ([]models.SessionResult, error) {
	rows, err := r.db.QueryContext(ctx, sqlutil.Rebind(r.driver, `
		SELECT session_id, player_id, total_rounds, correct_count, score, accuracy,
			duration_ms, replay_rounds, replay_correct, completed_at, history
		FROM session_results
		WHERE player_id = ?
		ORDER BY completed_at DESC
		LIMIT ?`), playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	defer rows.Close()

	var out []models.SessionResult
	for rows.Next() {
		var (
			s       models.SessionSummary
			history pqtype.NullRawMessage
		)
		if err := rows.Scan(
			&s.SessionID, &s.PlayerID, &s.TotalRounds, &s.CorrectCount, &s.Score, &s.Accuracy,
			&s.DurationMs, &s.ReplayRounds, &s.ReplayCorrect, &s.CompletedAt, &history,
		); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		s.CompletedAt = s.CompletedAt.UTC()

		res := models.SessionResult{Summary: s}
		if history.Valid {
			if err := json.Unmarshal(history.RawMessage, &res.History); err != nil {
				return nil, fmt.Errorf("failed to unmarshal history: %w", err)
			}
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
