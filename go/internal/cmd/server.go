package main

import (
	"net/http"
	"time"

	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mcdev12/multis/go/internal/config"
)

func setupServer(cfg config.ServerConfig, services *Services) *http.Server {
	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
		},
		AllowedOrigins: cfg.ClientOrigins,
		AllowedHeaders: []string{"*"},
	})

	handler := c.Handler(services.Gateway.Handler())

	// no WriteTimeout: WebSocket connections stay open for a whole session
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
