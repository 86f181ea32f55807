package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/internal/logging"
	"github.com/foodgram/backend/internal/router"
	"github.com/foodgram/backend/internal/server"
	"github.com/foodgram/backend/internal/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	gin.SetMode(cfg.Env.GinMode())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.RunMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		logging.Fatal().Err(err).Msg("failed to run migrations")
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to redis")
	}
	if redisClient == nil {
		logging.Warn().Msg("REDIS_URL not set; using in-process rate limiting and client-side logout")
	} else {
		defer redisClient.Close()
	}

	store, err := storage.New(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialise media storage")
	}

	engine, err := router.SetupRouter(router.Deps{
		Config: cfg,
		DB:     db,
		Redis:  redisClient,
		Store:  store,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to set up router")
	}

	if err := server.New(cfg, engine).Run(ctx); err != nil {
		logging.Fatal().Err(err).Msg("server error")
	}
	logging.Info().Msg("server stopped")
}
