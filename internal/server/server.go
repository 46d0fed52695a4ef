package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/yigit/catequesis/internal/app/repositories"
	"github.com/yigit/catequesis/internal/bootstrap"
	"github.com/yigit/catequesis/internal/config"
)

// Server holds the state for the HTTP server.
type Server struct {
	config *config.Config
	router *gin.Engine
	store  repositories.Store
	redis  *redis.Client
	logger zerolog.Logger
	http   *http.Server
}

// NewServer creates and initializes a new server instance by calling bootstrap functions.
func NewServer() (*Server, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to load config or setup logger: %w", err)
	}

	ctx := context.Background()

	repos, err := bootstrap.SetupStorage(ctx, cfg, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to setup storage: %w", err)
	}

	registry, redisClient, err := bootstrap.SetupSessionRegistry(ctx, cfg, lgr)
	if err != nil {
		repos.Store.Close(ctx)
		return nil, fmt.Errorf("failed to setup session registry: %w", err)
	}

	deps := bootstrap.BuildDependencies(cfg, repos, registry, lgr)
	deps.Redis = redisClient
	bootstrap.SeedDefaultData(ctx, cfg, deps)

	router := bootstrap.SetupRouter(cfg, deps, lgr)

	s := &Server{
		config: cfg,
		router: router,
		store:  repos.Store,
		redis:  redisClient,
		logger: lgr,
	}

	return s, nil
}

// Run starts the HTTP server and handles graceful shutdown.
func (s *Server) Run() error {
	s.logger.Info().Str("port", s.config.Server.Port).Msg("Starting server...")

	s.http = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Channel to listen for errors starting the server
	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
		serverErrors <- s.http.ListenAndServe()
	}()

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM)

	// Block until we receive either a server error or an OS signal
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error starting server: %w", err)
		}
	case sig := <-osSignals:
		s.logger.Info().Str("signal", sig.String()).Msg("Received OS signal, initiating shutdown...")
	}

	return s.Shutdown(context.Background())
}

// Shutdown gracefully stops the server and closes resources.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var shutdownErr error

	if s.http != nil {
		s.logger.Info().Msg("Shutting down HTTP server...")
		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error().Err(err).Msg("HTTP server shutdown error")
			shutdownErr = errors.Join(shutdownErr, err)
		} else {
			s.logger.Info().Msg("HTTP server gracefully stopped.")
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error().Err(err).Msg("Redis client close error")
			shutdownErr = errors.Join(shutdownErr, err)
		}
	}

	if s.store != nil {
		s.logger.Info().Msg("Closing storage connection...")
		if err := s.store.Close(ctx); err != nil {
			s.logger.Error().Err(err).Msg("Storage close error")
			shutdownErr = errors.Join(shutdownErr, err)
		}
	}

	s.logger.Info().Msg("Server shutdown process complete.")
	if shutdownErr != nil {
		return fmt.Errorf("server shutdown completed with errors: %w", shutdownErr)
	}
	return nil
}
