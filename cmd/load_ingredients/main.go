// Command load_ingredients imports the ingredient catalogue from a JSON or CSV file.
//
//	load_ingredients -file data/ingredients.json
//	load_ingredients -file ingredients.csv -batch 500
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/internal/logging"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/service"
)

func main() {
	file := flag.String("file", "data/ingredients.json", "JSON or CSV file with ingredients")
	batch := flag.Int("batch", 200, "Rows per insert batch")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	f, err := os.Open(*file)
	if err != nil {
		logging.Fatal().Err(err).Str("file", *file).Msg("failed to open file")
	}
	defer f.Close()

	items, err := parse(f, filepath.Ext(*file))
	if err != nil {
		logging.Fatal().Err(err).Str("file", *file).Msg("failed to parse ingredients")
	}

	ctx := context.Background()
	db, err := database.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.RunMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		logging.Fatal().Err(err).Msg("failed to run migrations")
	}

	n, err := service.NewIngredientService(db, nil).BulkCreate(ctx, items, *batch)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load ingredients")
	}
	logging.Info().Int64("count", n).Str("file", *file).Msg("ingredients loaded")
}

// parse reads [{"name","measurement_unit"}] JSON or headerless name,unit CSV.
func parse(r io.Reader, ext string) ([]models.Ingredient, error) {
	switch strings.ToLower(ext) {
	case ".json":
		var items []models.Ingredient
		if err := json.NewDecoder(r).Decode(&items); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		for i, item := range items {
			if strings.TrimSpace(item.Name) == "" || strings.TrimSpace(item.MeasurementUnit) == "" {
				return nil, fmt.Errorf("item %d: name and measurement_unit are required", i)
			}
		}
		return items, nil
	case ".csv":
		reader := csv.NewReader(r)
		reader.FieldsPerRecord = 2
		reader.TrimLeadingSpace = true

		var items []models.Ingredient
		for {
			record, err := reader.Read()
			if errors.Is(err, io.EOF) {
				return items, nil
			}
			if err != nil {
				return nil, fmt.Errorf("invalid CSV: %w", err)
			}
			items = append(items, models.Ingredient{Name: record[0], MeasurementUnit: record[1]})
		}
	default:
		return nil, fmt.Errorf("unsupported file type %q", ext)
	}
}
