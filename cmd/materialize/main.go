package main

import (
	"context"
	"flag"
	"os"
	"strconv"
	"time"

	"nbamodel/pipeline/internal/config"
	"nbamodel/pipeline/internal/features"
	"nbamodel/pipeline/internal/repository"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// One-shot batch materializer. Computes the season's rolling and matchup
// feature tables and exits; the worker handles the nightly schedule.
func main() {
	var (
		season      = flag.String("season", "", "season to materialize (defaults to SEASON from the environment)")
		fullRefresh = flag.Bool("full-refresh", false, "recompute every row instead of skipping existing ones")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg := config.MustLoad()
	if *season == "" {
		*season = cfg.Season
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	log.Info().
		Str("season", *season).
		Bool("full_refresh", *fullRefresh).
		Msg("Starting materialization")

	stats, err := features.NewMaterializer(db, cfg).Run(ctx, *season, *fullRefresh)
	if err != nil {
		log.Fatal().Err(err).Msg("Materialization failed")
	}

	for _, rowErr := range stats.Errors {
		log.Error().
			Str("game_id", rowErr.GameID).
			Str("team_id", rowErr.TeamID).
			Str("stage", rowErr.Stage).
			Err(rowErr.Err).
			Msg("Row failed")
	}

	if len(stats.Errors) > 0 {
		log.Warn().Int("row_errors", len(stats.Errors)).Msg("Materialization finished with row errors")
		os.Exit(1)
	}
}
