package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/multis/go/internal/dbconfig"
)

func setupDatabase(ctx context.Context) (*sql.DB, string, error) {
	dbCfg, err := dbconfig.NewConfigFromEnv()
	if err != nil {
		return nil, "", err
	}

	database, err := dbconfig.Open(ctx, dbCfg)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open database: %w", err)
	}

	if err := dbconfig.Migrate(ctx, database, dbCfg.Driver); err != nil {
		database.Close()
		return nil, "", fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info().Str("driver", dbCfg.Driver).Str("database", dbCfg.Database).Msg("connected to database")
	return database, dbCfg.Driver, nil
}
