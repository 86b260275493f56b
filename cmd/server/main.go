// Command server runs the Alive sleep tracker HTTP API.
//
// Configuration comes from the environment (and .env, if present); see
// internal/config for the full list. ENCRYPTION_KEY is the only required
// variable.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/sakif/alive-sleep/internal/config"
	"github.com/sakif/alive-sleep/internal/logger"
	"github.com/sakif/alive-sleep/internal/server"
)

func main() {
	// === 1. CONFIGURATION ===
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// === 2. LOGGING ===
	log, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// === 3. SERVE ===
	// The store opens lazily on the first request; sqlstore.Open creates the
	// SQLite directory if it is missing.
	srv, err := server.New(cfg, log)
	if err != nil {
		log.Error("failed to create server", zap.Error(err))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		log.Error("server error", zap.Error(err))
		os.Exit(1)
	}
}
