package inference

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"nbamodel/pipeline/internal/cache"
	"nbamodel/pipeline/internal/metrics"
	"nbamodel/pipeline/internal/models"
	"nbamodel/pipeline/internal/repository"
)

// Scorer turns an aligned feature vector into a home-win probability
type Scorer interface {
	Score(vector []float64) (float64, error)
	Name() string
}

// PredictionStore persists prediction rows
type PredictionStore interface {
	Upsert(ctx context.Context, pred *models.Prediction) error
}

// Service runs the full serving path for one game: load schema, extract
// materialized features, align, score, persist. The cache is optional.
type Service struct {
	Extractor *Extractor
	Schema    *ModelSchema
	Scorer    Scorer
	Store     PredictionStore
	Cache     *cache.RedisCache
	CacheTTL  time.Duration
}

// Predict produces and persists the prediction for one game
func (s *Service) Predict(ctx context.Context, gameID string) (*models.Prediction, error) {
	start := time.Now()

	pred, err := s.predict(ctx, gameID)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordPrediction(s.Scorer.Name(), status, time.Since(start).Seconds())
	return pred, err
}

func (s *Service) predict(ctx context.Context, gameID string) (*models.Prediction, error) {
	if s.Schema == nil || len(s.Schema.FeatureNames) == 0 {
		return nil, ErrSchemaUnknown
	}

	vector, err := s.alignedVector(ctx, gameID)
	if err != nil {
		return nil, err
	}

	homeProb, err := s.Scorer.Score(vector)
	if err != nil {
		return nil, fmt.Errorf("failed to score game %s: %w", gameID, err)
	}

	winner := "home"
	if homeProb < 0.5 {
		winner = "away"
	}

	pred := &models.Prediction{
		GameID:             gameID,
		ModelName:          s.Scorer.Name(),
		PredictedWinner:    sql.NullString{String: winner, Valid: true},
		WinProbabilityHome: homeProb,
		WinProbabilityAway: 1 - homeProb,
		Confidence:         math.Max(homeProb, 1-homeProb),
	}

	if err := s.Store.Upsert(ctx, pred); err != nil {
		return nil, fmt.Errorf("failed to persist prediction for game %s: %w", gameID, err)
	}

	log.Info().
		Str("game_id", gameID).
		Str("model", pred.ModelName).
		Str("winner", winner).
		Float64("home_prob", homeProb).
		Msg("Prediction stored")

	return pred, nil
}

// alignedVector returns the schema-ordered feature vector for a game,
// reading through the cache when one is configured. A cached vector is
// only reused when its length still matches the loaded schema.
func (s *Service) alignedVector(ctx context.Context, gameID string) ([]float64, error) {
	key := fmt.Sprintf("features:%s:%s", s.Schema.ModelName, gameID)

	if s.Cache != nil {
		var cached []float64
		found, err := s.Cache.GetJSON(ctx, key, &cached)
		if err != nil {
			log.Warn().Err(err).Str("game_id", gameID).Msg("Feature vector cache read failed")
		} else if found && len(cached) == s.Schema.FeatureCount {
			return cached, nil
		}
	}

	features, err := s.Extractor.Extract(ctx, gameID)
	if err != nil {
		return nil, err
	}

	vector, err := s.Schema.Align(features)
	if err != nil {
		return nil, fmt.Errorf("failed to align features for game %s: %w", gameID, err)
	}

	if s.Cache != nil {
		if err := s.Cache.SetJSON(ctx, key, vector, s.CacheTTL); err != nil {
			log.Warn().Err(err).Str("game_id", gameID).Msg("Failed to cache feature vector")
		}
	}

	return vector, nil
}

// NewService wires the serving path against the repository layer
func NewService(db *repository.Database, schema *ModelSchema, scorer Scorer, redisCache *cache.RedisCache, cacheTTL time.Duration) *Service {
	return &Service{
		Extractor: &Extractor{
			Games:    db.Games,
			Rolling:  db.RollingFeatures,
			Matchups: db.MatchupFeatures,
		},
		Schema:   schema,
		Scorer:   scorer,
		Store:    db.Predictions,
		Cache:    redisCache,
		CacheTTL: cacheTTL,
	}
}

// LogisticScorer is a pre-trained logistic regression over the aligned
// feature vector: sigmoid(bias + w·x). Weights are exported by the training
// job in schema order.
type LogisticScorer struct {
	ModelName string    `json:"model_name"`
	Bias      float64   `json:"bias"`
	Weights   []float64 `json:"weights"`
}

// LoadLogisticScorer reads <dir>/<modelName>_weights.json
func LoadLogisticScorer(dir, modelName string) (*LogisticScorer, error) {
	path := filepath.Join(dir, modelName+"_weights.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model weights %s: %w", path, err)
	}

	var scorer LogisticScorer
	if err := json.Unmarshal(data, &scorer); err != nil {
		return nil, fmt.Errorf("failed to parse model weights %s: %w", path, err)
	}
	if scorer.ModelName == "" {
		scorer.ModelName = modelName
	}

	return &scorer, nil
}

// Name implements Scorer
func (ls *LogisticScorer) Name() string {
	return ls.ModelName
}

// Score implements Scorer
func (ls *LogisticScorer) Score(vector []float64) (float64, error) {
	if len(vector) != len(ls.Weights) {
		return 0, fmt.Errorf("scorer has %d weights, vector has %d values: %w",
			len(ls.Weights), len(vector), ErrFeatureCountMismatch)
	}
	return sigmoid(ls.Bias + dot(ls.Weights, vector)), nil
}

func sigmoid(z float64) float64 {
	if z > 20 {
		return 1.0
	}
	if z < -20 {
		return 0.0
	}
	return 1.0 / (1.0 + math.Exp(-z))
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
