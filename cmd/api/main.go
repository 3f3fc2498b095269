package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"stealthcompany.com/care-vitals/internal/api"
	"stealthcompany.com/care-vitals/internal/config"
	"stealthcompany.com/care-vitals/internal/dal"
	"stealthcompany.com/care-vitals/internal/metrics"
	"stealthcompany.com/care-vitals/internal/orchestrator"
	"stealthcompany.com/care-vitals/internal/sequence"
	"stealthcompany.com/care-vitals/pkg/zerolog_config"
)

const serviceName = "care-vitals-api"

func main() {
	config.LoadEnvFiles()
	cfg := config.Load()

	// Set app prefix
	zerolog_config.SetAppPrefix(serviceName)

	// Initialize zerolog, Elasticsearch is optional
	if err := zerolog_config.StartupWithEnv(cfg.ElasticsearchURL, "logs", cfg.LogLevel); err != nil {
		log.Fatal().Err(err).Msg("Failed to configure logging")
	}

	log.Info().
		Str("storage", cfg.StorageDriver).
		Msg("Starting care-vitals API service")

	ctx, cancel := orchestrator.NewSignalHandler().Context(context.Background())
	defer cancel()

	if cfg.SystemMetrics {
		metrics.StartSystemMetrics(ctx, serviceName, 15*time.Second)
	}

	// Connect before listening so a dead store fails the process
	connectCtx, connectCancel := context.WithTimeout(ctx, 2*time.Minute)
	store, err := orchestrator.OpenStore(connectCtx, cfg)
	connectCancel()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open store")
	}

	patients := dal.NewPatientModel(store, sequence.NewGenerator(store))
	vitals := dal.NewVitalModel(store, patients)
	router := api.SetupRoutes(api.NewHandlers(patients, vitals, store), cfg.CORSOrigins)

	// Create HTTP server
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Msg("Server starting")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down gracefully...")
	case err := <-serverErr:
		log.Error().Err(err).Msg("Server failed")
	}

	// Shutdown server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	// Close database connection
	log.Info().Msg("Closing store...")
	if err := store.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close store")
	}

	log.Info().Msg("API service shutdown complete")
}
