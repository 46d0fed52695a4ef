package main

import (
	"os"

	"github.com/yigit/catequesis/internal/pkg/logger"
	"github.com/yigit/catequesis/internal/server"
)

func main() {
	srv, err := server.NewServer()
	if err != nil {
		// Details are logged by the setup functions
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// Blocks until shutdown
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
