package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/multis/go/internal/config"
	"github.com/mcdev12/multis/go/internal/events"
	"github.com/mcdev12/multis/go/internal/gateway"
	"github.com/mcdev12/multis/go/internal/i18n"
	"github.com/mcdev12/multis/go/internal/players"
	"github.com/mcdev12/multis/go/internal/results"
)

type Services struct {
	Players    *players.App
	Results    *results.App
	Publisher  events.Publisher
	Dispatcher *events.Dispatcher
	Gateway    *gateway.Service
}

func setupServices(ctx context.Context, database *sql.DB, driver string, serverCfg config.ServerConfig, gameCfg config.GameConfig) (*Services, error) {
	// Database layer → Repository layer → App layer → Gateway
	clock := clockwork.NewRealClock()

	playersRepo := players.NewRepository(database, driver)
	playersApp := players.NewApp(playersRepo, clock, serverCfg.MaxPlayers)

	resultsRepo := results.NewRepository(database, driver)
	resultsApp := results.NewApp(resultsRepo)

	publisher, err := setupPublisher(ctx, serverCfg.NATSURL)
	if err != nil {
		return nil, err
	}
	dispatcher := events.NewDispatcher(publisher, events.DefaultDispatcherConfig())
	if err := dispatcher.Start(ctx); err != nil {
		publisher.Close()
		return nil, fmt.Errorf("failed to start event dispatcher: %w", err)
	}

	gatewayCfg := gateway.DefaultConfig()
	gatewayCfg.Game = gameCfg.EngineConfig()
	gatewayCfg.DefaultLocale = serverCfg.DefaultLocale

	gw, err := gateway.NewService(gatewayCfg, gateway.Dependencies{
		Players:  playersApp,
		Results:  resultsApp,
		Recorder: resultsApp,
		Bundle:   i18n.Default(),
		Options: []gateway.ManagerOption{
			gateway.WithManagerClock(clock),
			gateway.WithEventSink(dispatcher),
		},
	})
	if err != nil {
		dispatcher.Stop()
		publisher.Close()
		return nil, fmt.Errorf("failed to create gateway: %w", err)
	}

	return &Services{
		Players:    playersApp,
		Results:    resultsApp,
		Publisher:  publisher,
		Dispatcher: dispatcher,
		Gateway:    gw,
	}, nil
}

// setupPublisher publishes to JetStream when NATS is configured and logs
// events otherwise.
func setupPublisher(ctx context.Context, natsURL string) (events.Publisher, error) {
	if natsURL == "" {
		log.Info().Msg("NATS_URL not set, logging session events")
		return events.LogPublisher{}, nil
	}

	jsCfg := events.DefaultJetStreamConfig()
	jsCfg.URL = natsURL
	publisher, err := events.NewJetStreamPublisher(ctx, jsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to JetStream: %w", err)
	}
	return publisher, nil
}

// Close stops sessions first so their final events reach the dispatcher.
func (s *Services) Close(ctx context.Context) {
	if err := s.Gateway.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("gateway shutdown failed")
	}
	if err := s.Dispatcher.Stop(); err != nil {
		log.Error().Err(err).Msg("event dispatcher shutdown failed")
	}
	if err := s.Publisher.Close(); err != nil {
		log.Error().Err(err).Msg("event publisher close failed")
	}
}
