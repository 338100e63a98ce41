package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gridironlabs/draftsim/internal/draft/outbox"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	config, err := loadConfig(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	database, err := setupDatabase()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to setup database")
	}
	defer database.Close()

	services, err := setupServices(database, config)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to setup services")
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start the draft clock scheduler in the background
	if config.Orchestrator.Enabled {
		go func() {
			log.Info().Msg("starting draft clock scheduler")
			if err := services.Orchestrator.RunScheduler(ctx); err != nil {
				log.Error().Err(err).Msg("draft clock scheduler failed")
			}
		}()
	}

	// Relay outbox events to NATS JetStream
	var relay *outbox.Relay
	if config.Events.Enabled {
		jsCfg := outbox.DefaultJetStreamConfig()
		jsCfg.URL = getEnv("NATS_URL", nats.DefaultURL)
		jsCfg.StreamName = config.Events.StreamName
		jsCfg.SubjectPrefix = config.Events.Subject

		publisher, err := outbox.NewJetStreamPublisher(jsCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to setup event publisher")
		}
		defer publisher.Close()

		relay = outbox.NewRelay(services.EventRepo, publisher, outbox.RelayConfig{
			PollInterval: time.Duration(config.Events.PollIntervalSec) * time.Second,
			BatchSize:    config.Events.BatchSize,
		})
		if err := relay.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to start outbox relay")
		}
	}

	// Health check endpoint
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := database.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	server := &http.Server{
		Addr:         ":" + getEnv("PORT", "8080"),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health check server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health check server failed")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	if relay != nil {
		if err := relay.Stop(); err != nil {
			log.Error().Err(err).Msg("failed to stop outbox relay")
		}
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health check server shutdown failed")
	}

	log.Info().Msg("shutdown complete")
}
