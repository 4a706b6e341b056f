package main

import (
	"os"
	"os/signal"
	"syscall"

	"blog/internal/config"
	"blog/internal/database"
	"blog/internal/server"
	"blog/internal/services"
	"blog/pkg/logger"
	"blog/pkg/rabbitmq"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.IsDevelopment(),
	})

	deletePolicy, err := services.ParseUserDeletePolicy(cfg.UserDeletePolicy)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid user delete policy")
	}

	// --- Storage ---
	var (
		repos       server.Repositories
		healthCheck func() error
	)
	if cfg.DBDriver == config.DriverMemory {
		log.Warn().Msg("using in-memory storage, data will not survive a restart")
		repos = server.NewMemoryRepositories()
	} else {
		db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN)
		if err != nil {
			log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("failed to open database")
		}
		log.Info().Str("driver", cfg.DBDriver).Msg("database connected")
		repos = server.NewGORMRepositories(db)
		healthCheck = func() error { return database.Ping(db) }
	}

	// --- Events ---
	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize RabbitMQ client")
		}
		defer func() {
			if err := mqClient.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close RabbitMQ client")
			}
		}()
		if err := mqClient.ConsumePostEvents(rabbitmq.HandlePostMessage); err != nil {
			log.Error().Err(err).Msg("failed to start post event consumer")
		}
		publisher = mqClient
	} else {
		log.Info().Msg("RABBITMQ_URL not set, post events are disabled")
	}

	app := server.New(repos, server.Options{
		JWTSecret:        cfg.JWTSecret,
		JWTExpiration:    cfg.JWTExpiration,
		BcryptCost:       cfg.BcryptCost,
		UserDeletePolicy: deletePolicy,
		Publisher:        publisher,
		HealthCheck:      healthCheck,
		RequestLog:       true,
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("port", cfg.AppPort).Str("env", cfg.AppEnv).Msg("starting server")
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	<-quit
	log.Info().Msg("shutting down server")

	if err := app.Shutdown(); err != nil {
		log.Error().Err(err).Msg("error during Fiber shutdown")
	}

	log.Info().Msg("server gracefully stopped")
}
