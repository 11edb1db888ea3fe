package repository

import (
	"context"
	"errors"
	"fmt"

	"nbamodel/pipeline/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// PredictionRepository handles prediction database operations
type PredictionRepository struct {
	db *Database
}

// Upsert inserts or replaces a prediction for (game, model)
func (r *PredictionRepository) Upsert(ctx context.Context, pred *models.Prediction) error {
	if pred == nil {
		return fmt.Errorf("prediction cannot be nil")
	}

	if err := validatePredictionData(pred); err != nil {
		return fmt.Errorf("prediction validation failed: %w", err)
	}

	query := `
		INSERT INTO predictions (
			game_id, model_name, predicted_winner,
			win_probability_home, win_probability_away,
			predicted_point_differential, confidence
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (game_id, model_name) DO UPDATE SET
			predicted_winner = EXCLUDED.predicted_winner,
			win_probability_home = EXCLUDED.win_probability_home,
			win_probability_away = EXCLUDED.win_probability_away,
			predicted_point_differential = EXCLUDED.predicted_point_differential,
			confidence = EXCLUDED.confidence,
			created_at = NOW()
		RETURNING id, created_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		pred.GameID, pred.ModelName, pred.PredictedWinner,
		pred.WinProbabilityHome, pred.WinProbabilityAway,
		pred.PredictedPointDifferential, pred.Confidence,
	).Scan(&pred.ID, &pred.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert prediction: %w", err)
	}

	log.Debug().
		Str("game_id", pred.GameID).
		Str("model", pred.ModelName).
		Float64("p_home", pred.WinProbabilityHome).
		Msg("Prediction saved")

	return nil
}

// GetByGameAndModel retrieves a prediction for (game, model)
func (r *PredictionRepository) GetByGameAndModel(ctx context.Context, gameID, modelName string) (*models.Prediction, error) {
	query := `
		SELECT id, game_id, model_name, predicted_winner,
		       win_probability_home, win_probability_away,
		       predicted_point_differential, confidence, created_at
		FROM predictions
		WHERE game_id = $1 AND model_name = $2
	`

	var pred models.Prediction
	err := r.db.Pool.QueryRow(ctx, query, gameID, modelName).Scan(
		&pred.ID, &pred.GameID, &pred.ModelName, &pred.PredictedWinner,
		&pred.WinProbabilityHome, &pred.WinProbabilityAway,
		&pred.PredictedPointDifferential, &pred.Confidence, &pred.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("prediction for game %s model %s: %w", gameID, modelName, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}

	return &pred, nil
}

// validatePredictionData checks invariants before writing a prediction
func validatePredictionData(pred *models.Prediction) error {
	if pred.GameID == "" {
		return fmt.Errorf("game_id is required")
	}
	if pred.ModelName == "" {
		return fmt.Errorf("model_name is required")
	}
	if pred.WinProbabilityHome < 0 || pred.WinProbabilityHome > 1 {
		return fmt.Errorf("win_probability_home out of range: %f", pred.WinProbabilityHome)
	}
	if pred.WinProbabilityAway < 0 || pred.WinProbabilityAway > 1 {
		return fmt.Errorf("win_probability_away out of range: %f", pred.WinProbabilityAway)
	}
	if pred.Confidence < 0 || pred.Confidence > 1 {
		return fmt.Errorf("confidence out of range: %f", pred.Confidence)
	}
	return nil
}
