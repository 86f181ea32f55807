package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"os"

	_ "github.com/lib/pq"

	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/internal/logging"
)

func main() {
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	dir := flag.String("dir", "migrations", "Directory holding the .sql migration files")
	flag.Parse()

	logging.Init(logging.Config{Level: os.Getenv("LOG_LEVEL"), Format: "console"})

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logging.Fatal().Msg("DATABASE_URL environment variable is not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		logging.Fatal().Err(err).Msg("failed to reach database")
	}

	if *rollback {
		name, err := database.RollbackLast(ctx, db, *dir)
		if errors.Is(err, database.ErrNoMigrations) {
			logging.Info().Msg("no migrations to roll back")
			return
		}
		if err != nil {
			logging.Fatal().Err(err).Msg("rollback failed")
		}
		logging.Info().Str("migration", name).Msg("rolled back migration")
		return
	}

	applied, err := database.ApplySQLMigrations(ctx, db, *dir)
	if err != nil {
		logging.Fatal().Err(err).Strs("applied", applied).Msg("migration failed")
	}
	logging.Info().Int("count", len(applied)).Msg("migrations complete")
}
