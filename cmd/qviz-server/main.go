package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"qviz/internal/analysis"
	"qviz/internal/config"
	"qviz/internal/server"
	"qviz/internal/sim"
	"qviz/internal/visualize"
	"qviz/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log := logger.New(logger.Config{Level: "info", Pretty: true})
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting qviz server")

	noise := sim.BasisModel(cfg.P1, cfg.P2)
	noise.PMeas = cfg.PMeas

	srv := server.New(server.Config{
		Log:    log,
		Config: cfg,
		Visualizer: visualize.New(log, visualize.WithNoise(
			sim.New(sim.WithNoise(noise), sim.WithSeed(cfg.Seed)), 0)),
		Analyzer: analysis.NewAnalyzer(
			analysis.WithNoiseModel(noise),
			analysis.WithSeed(cfg.Seed),
			analysis.WithLogger(log),
		),
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
