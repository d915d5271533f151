package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/mcdev12/multis/go/internal/dbconfig"
	"github.com/mcdev12/multis/go/internal/players"
)

// seedProfile is one entry of the seed file. last_active defaults to created_at.
type seedProfile struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	AvatarID   string     `json:"avatar_id"`
	ColorID    string     `json:"color_id"`
	CreatedAt  time.Time  `json:"created_at"`
	LastActive *time.Time `json:"last_active"`
}

func main() {
	path := flag.String("file", "go/internal/assets/players.json", "profiles to seed")
	flag.Parse()

	_ = godotenv.Load()
	ctx := context.Background()

	// 1) Load the seed file
	data, err := os.ReadFile(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", *path, err)
		os.Exit(1)
	}
	var profiles []seedProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		fmt.Fprintf(os.Stderr, "unmarshal profiles: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect to DB
	cfg, err := dbconfig.NewConfigFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if cfg.Driver != dbconfig.DriverPostgres {
		fmt.Fprintf(os.Stderr, "seed_players needs DB_DRIVER=%s, got %q\n", dbconfig.DriverPostgres, cfg.Driver)
		os.Exit(1)
	}
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect error: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 3) Seed profiles
	total, inserted, skipped, errs := len(profiles), 0, 0, 0
	for _, p := range profiles {
		req := players.SavePlayerRequest{Name: p.Name, AvatarID: p.AvatarID, ColorID: p.ColorID}
		if err := req.Normalize(); err != nil {
			fmt.Fprintf(os.Stderr, "skip %q: %v\n", p.Name, err)
			errs++
			continue
		}
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = time.Now().UTC()
		}
		lastActive := p.CreatedAt
		if p.LastActive != nil {
			lastActive = *p.LastActive
		}

		tag, err := pool.Exec(ctx, `
            INSERT INTO players (
              id, name, name_key, avatar_id, color_id, created_at, last_active
            ) VALUES ($1,$2,$3,$4,$5,$6,$7)
            ON CONFLICT (name_key) DO NOTHING
        `, p.ID, req.Name, players.NameKey(req.Name), req.AvatarID, req.ColorID, p.CreatedAt, lastActive)
		if err != nil {
			fmt.Fprintf(os.Stderr, "insert %q: %v\n", req.Name, err)
			errs++
			continue
		}
		if tag.RowsAffected() == 1 {
			inserted++
		} else {
			skipped++
		}
	}
	fmt.Printf(
		"Players seed: total=%d inserted=%d skipped=%d errors=%d\n",
		total, inserted, skipped, errs,
	)
}
