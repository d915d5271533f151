package players

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/multis/go/internal/models"
)

// PlayersRepository defines what the app layer needs from the repository
type PlayersRepository interface {
	UpsertPlayer(ctx context.Context, p models.Player) (*models.Player, error)
	GetPlayerByName(ctx context.Context, name string) (*models.Player, error)
	ListPlayers(ctx context.Context) ([]models.Player, error)
	DeletePlayer(ctx context.Context, name string) error
	TouchPlayer(ctx context.Context, id uuid.UUID, at time.Time) error
}

// App handles player profile business logic
type App struct {
	repo       PlayersRepository
	clock      clockwork.Clock
	maxPlayers int
}

// NewApp creates a new players App. maxPlayers <= 0 selects DefaultMaxPlayers.
func NewApp(repo PlayersRepository, clock clockwork.Clock, maxPlayers int) *App {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if maxPlayers <= 0 {
		maxPlayers = DefaultMaxPlayers
	}
	return &App{repo: repo, clock: clock, maxPlayers: maxPlayers}
}

// SavePlayer creates a profile, or overwrites avatar and color of the profile
// with the same name. The saved profile becomes the most recently active one.
// Least recently active profiles beyond the cap are evicted.
func (a *App) SavePlayer(ctx context.Context, req SavePlayerRequest) (*SavePlayerResult, error) {
	if err := req.Normalize(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	now := a.clock.Now().UTC()
	player, err := a.repo.UpsertPlayer(ctx, models.Player{
		ID:         uuid.New(),
		Name:       req.Name,
		AvatarID:   req.AvatarID,
		ColorID:    req.ColorID,
		CreatedAt:  now,
		LastActive: now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save player: %w", err)
	}

	evicted, err := a.evictOverflow(ctx)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("player_id", player.ID.String()).
		Str("name", player.Name).
		Int("evicted", len(evicted)).
		Msg("saved player")
	return &SavePlayerResult{Player: *player, Evicted: evicted}, nil
}

// ListPlayers returns every profile, most recently active first.
func (a *App) ListPlayers(ctx context.Context) ([]models.Player, error) {
	players, err := a.repo.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	return players, nil
}

// GetPlayer finds a profile by name, ignoring case.
func (a *App) GetPlayer(ctx context.Context, name string) (*models.Player, error) {
	player, err := a.repo.GetPlayerByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return player, nil
}

// PlayerExists reports whether a profile with name exists, ignoring case.
func (a *App) PlayerExists(ctx context.Context, name string) (bool, error) {
	_, err := a.repo.GetPlayerByName(ctx, name)
	if errors.Is(err, ErrPlayerNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check player: %w", err)
	}
	return true, nil
}

// DeletePlayer removes a profile and its results.
func (a *App) DeletePlayer(ctx context.Context, name string) error {
	player, err := a.repo.GetPlayerByName(ctx, name)
	if err != nil {
		return fmt.Errorf("player not found: %w", err)
	}
	if err := a.repo.DeletePlayer(ctx, player.Name); err != nil {
		return fmt.Errorf("failed to delete player: %w", err)
	}

	log.Info().Str("player_id", player.ID.String()).Str("name", player.Name).Msg("deleted player")
	return nil
}

// Activate selects the profile for play and returns the identity the round
// engine attaches to its records.
func (a *App) Activate(ctx context.Context, name string) (models.ProfileRef, error) {
	player, err := a.repo.GetPlayerByName(ctx, name)
	if err != nil {
		return models.ProfileRef{}, fmt.Errorf("failed to activate player: %w", err)
	}
	if err := a.repo.TouchPlayer(ctx, player.ID, a.clock.Now().UTC()); err != nil {
		return models.ProfileRef{}, fmt.Errorf("failed to activate player: %w", err)
	}
	return player.Ref(), nil
}

func (a *App) evictOverflow(ctx context.Context) ([]string, error) {
	players, err := a.repo.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	if len(players) <= a.maxPlayers {
		return nil, nil
	}

	var evicted []string
	for _, p := range players[a.maxPlayers:] {
		if err := a.repo.DeletePlayer(ctx, p.Name); err != nil {
			return evicted, fmt.Errorf("failed to evict player %s: %w", p.Name, err)
		}
		evicted = append(evicted, p.Name)
	}
	return evicted, nil
}
