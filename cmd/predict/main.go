package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"strconv"
	"time"

	"nbamodel/pipeline/internal/cache"
	"nbamodel/pipeline/internal/config"
	"nbamodel/pipeline/internal/inference"
	"nbamodel/pipeline/internal/repository"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// CLI serving path: predict one game by id, or every upcoming scheduled
// game. Reads only materialized feature rows; a game whose features were
// never materialized is reported, not recomputed.
func main() {
	var (
		gameID    = flag.String("game", "", "game id to predict")
		modelName = flag.String("model", "", "model name (defaults to CLASSIFIER_MODEL_NAME)")
		upcoming  = flag.Bool("upcoming", false, "predict all upcoming scheduled games")
		limit     = flag.Int("limit", 50, "max upcoming games to predict")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	if *gameID == "" && !*upcoming {
		log.Fatal().Msg("Either -game or -upcoming is required")
	}

	cfg := config.MustLoad()
	if *modelName == "" {
		*modelName = cfg.ClassifierModelName
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

	schema, err := inference.LoadSchema(cfg.ModelsDir, *modelName)
	if err != nil {
		log.Fatal().Err(err).Str("model", *modelName).Msg("Failed to load model schema")
	}

	scorer, err := inference.LoadLogisticScorer(cfg.ModelsDir, *modelName)
	if err != nil {
		log.Fatal().Err(err).Str("model", *modelName).Msg("Failed to load model weights")
	}

	redisCache, err := cache.NewRedisCache(cache.Config{
		Host:     cfg.RedisHost,
		Port:     strconv.Itoa(cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
		redisCache = nil
	} else {
		defer redisCache.Close()
	}

	svc := inference.NewService(db, schema, scorer, redisCache,
		time.Duration(cfg.CacheTTLPredictions)*time.Second)

	if *gameID != "" {
		predictOne(ctx, svc, *gameID)
		return
	}

	games, err := db.Games.ListUpcoming(ctx, *limit)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list upcoming games")
	}
	if len(games) == 0 {
		log.Info().Msg("No upcoming games found")
		return
	}

	for _, g := range games {
		predictOne(ctx, svc, g.GameID)
	}
}

func predictOne(ctx context.Context, svc *inference.Service, gameID string) {
	pred, err := svc.Predict(ctx, gameID)
	if err != nil {
		switch {
		case errors.Is(err, inference.ErrGameNotFound):
			log.Error().Str("game_id", gameID).Msg("Game not found")
		case errors.Is(err, inference.ErrIncompleteFeatures):
			log.Error().Str("game_id", gameID).Msg("Features not materialized, run the materializer first")
		default:
			log.Error().Err(err).Str("game_id", gameID).Msg("Prediction failed")
		}
		return
	}

	log.Info().
		Str("game_id", gameID).
		Str("model", pred.ModelName).
		Str("winner", pred.PredictedWinner.String).
		Float64("home_prob", pred.WinProbabilityHome).
		Float64("confidence", pred.Confidence).
		Msg("Prediction")
}
