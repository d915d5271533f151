// Package gateway hosts round sessions for browser clients. It owns the
// session registry, the REST and WebSocket API and the localized state views.
package gateway

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/multis/go/internal/i18n"
	"github.com/mcdev12/multis/go/internal/round/engine"
)

// Config holds configuration for the gateway service
type Config struct {
	Game             engine.Config
	DefaultLocale    string
	ConnectionConfig ConnectionConfig
}

// DefaultConfig returns default configuration for the gateway
func DefaultConfig() Config {
	return Config{
		Game:             engine.DefaultConfig(),
		DefaultLocale:    i18n.BaseLocale,
		ConnectionConfig: DefaultConnectionConfig(),
	}
}

// Dependencies are the stores and sinks the gateway talks to.
type Dependencies struct {
	Players  PlayerService
	Results  ResultService
	Recorder Recorder
	Bundle   *i18n.Bundle
	Options  []ManagerOption
}

// Service is the gateway: session registry, connection fan-out and HTTP API.
type Service struct {
	connectionManager *ConnectionManager
	sessions          *SessionManager
	handler           *Handler
}

// NewService wires the gateway. It fails when the game configuration is invalid.
func NewService(cfg Config, deps Dependencies) (*Service, error) {
	bundle := deps.Bundle
	if bundle == nil {
		bundle = i18n.Default()
	}
	if cfg.DefaultLocale == "" {
		cfg.DefaultLocale = i18n.BaseLocale
	}

	connectionManager := NewConnectionManager(cfg.ConnectionConfig)

	opts := deps.Options
	if deps.Recorder != nil {
		opts = append([]ManagerOption{WithRecorder(deps.Recorder)}, opts...)
	}
	sessions, err := NewSessionManager(cfg.Game, bundle, connectionManager, opts...)
	if err != nil {
		return nil, err
	}

	return &Service{
		connectionManager: connectionManager,
		sessions:          sessions,
		handler: &Handler{
			sessions:      sessions,
			conns:         connectionManager,
			players:       deps.Players,
			results:       deps.Results,
			bundle:        bundle,
			defaultLocale: cfg.DefaultLocale,
		},
	}, nil
}

// Start runs the connection fan-out until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	log.Info().Msg("starting gateway service")
	go s.connectionManager.Start(ctx)
}

// Shutdown abandons every live session and waits for the runners.
func (s *Service) Shutdown(ctx context.Context) error {
	err := s.sessions.Shutdown(ctx)
	log.Info().Msg("gateway service stopped")
	return err
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	return s.handler.Routes()
}

// Sessions exposes the session registry.
func (s *Service) Sessions() *SessionManager {
	return s.sessions
}
