package main

import (
	"fmt"
	"os"

	"github.com/banban-dev/banban/internal/config"
	"github.com/banban-dev/banban/internal/logger"
	"github.com/banban-dev/banban/internal/server"
)

var version = "dev" // Will be set during build with -ldflags

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.GetLogger()

	srv, err := server.New(cfg, log, version)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create server")
	}

	log.Info().
		Str("version", version).
		Str("port", cfg.Server.Port).
		Msg("Starting ban:ban API server")

	// blocks until the listener fails
	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("Server failed to start")
	}
}
