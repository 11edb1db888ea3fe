package models

import (
	"database/sql"
	"time"
)

// Prediction is a scored game outcome produced by the inference pipeline.
// Unique on (game_id, model_name) so re-scoring a game replaces the old row.
type Prediction struct {
	ID        int    `db:"id"`
	GameID    string `db:"game_id"`
	ModelName string `db:"model_name"`

	PredictedWinner            sql.NullString  `db:"predicted_winner"`
	WinProbabilityHome         float64         `db:"win_probability_home"`
	WinProbabilityAway         float64         `db:"win_probability_away"`
	PredictedPointDifferential sql.NullFloat64 `db:"predicted_point_differential"`
	Confidence                 float64         `db:"confidence"`

	CreatedAt time.Time `db:"created_at"`
}
