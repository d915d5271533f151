package players

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mcdev12/multis/go/internal/models"
	"github.com/mcdev12/multis/go/internal/sqlutil"
)

const playerColumns = `id, name, avatar_id, color_id, created_at, last_active`

// Repository implements player data access operations
type Repository struct {
	db     *sql.DB
	driver string
}

// NewRepository creates a new players repository
func NewRepository(db *sql.DB, driver string) *Repository {
	return &Repository{db: db, driver: driver}
}

func (r *Repository) q(query string) string {
	return sqlutil.Rebind(r.driver, query)
}

// UpsertPlayer inserts p, or updates the row with the same case-insensitive
// name. The existing id and created_at are kept on update.
func (r *Repository) UpsertPlayer(ctx context.Context, p models.Player) (*models.Player, error) {
	_, err := r.db.ExecContext(ctx, r.q(`
		INSERT INTO players (id, name, name_key, avatar_id, color_id, created_at, last_active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (name_key) DO UPDATE SET
			name = excluded.name,
			avatar_id = excluded.avatar_id,
			color_id = excluded.color_id,
			last_active = excluded.last_active`),
		p.ID, p.Name, NameKey(p.Name), p.AvatarID, p.ColorID, p.CreatedAt, p.LastActive,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert player: %w", err)
	}
	return r.GetPlayerByName(ctx, p.Name)
}

// GetPlayerByName retrieves a player by case-insensitive name
func (r *Repository) GetPlayerByName(ctx context.Context, name string) (*models.Player, error) {
	row := r.db.QueryRowContext(ctx,
		r.q(`SELECT `+playerColumns+` FROM players WHERE name_key = ?`), NameKey(name))

	p, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlayerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return p, nil
}

// ListPlayers returns all players ordered by last activity, newest first
func (r *Repository) ListPlayers(ctx context.Context) ([]models.Player, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+playerColumns+` FROM players ORDER BY last_active DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var out []models.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// DeletePlayer removes a player by case-insensitive name
func (r *Repository) DeletePlayer(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, r.q(`DELETE FROM players WHERE name_key = ?`), NameKey(name))
	if err != nil {
		return fmt.Errorf("failed to delete player: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrPlayerNotFound
	}
	return nil
}

// TouchPlayer sets last_active
func (r *Repository) TouchPlayer(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := r.db.ExecContext(ctx, r.q(`UPDATE players SET last_active = ? WHERE id = ?`), at, id)
	if err != nil {
		return fmt.Errorf("failed to touch player: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrPlayerNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlayer(s scanner) (*models.Player, error) {
	var p models.Player
	if err := s.Scan(&p.ID, &p.Name, &p.AvatarID, &p.ColorID, &p.CreatedAt, &p.LastActive); err != nil {
		return nil, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.LastActive = p.LastActive.UTC()
	return &p, nil
}
