//go:build integration

package repository

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nbamodel/pipeline/internal/models"
)

func TestMatchupFeaturesRoundTrip(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	game := seedGame(t, db, ctx, "it-match-1", false)

	row := &models.GameMatchupFeatures{
		GameID:          game.GameID,
		GameDate:        game.GameDate,
		Season:          game.Season,
		HomeTeamID:      game.HomeTeamID,
		AwayTeamID:      game.AwayTeamID,
		H2HTotalGames:   sql.NullInt32{Int32: 4, Valid: true},
		H2HHomeWins:     sql.NullInt32{Int32: 3, Valid: true},
		SameConference:  sql.NullBool{Bool: false, Valid: true},
		IsHomeAdvantage: sql.NullInt32{Int32: 1, Valid: true},
	}
	require.NoError(t, db.MatchupFeatures.Upsert(ctx, row), "Should insert matchup features")

	got, err := db.MatchupFeatures.GetByGameID(ctx, game.GameID)
	require.NoError(t, err)
	assert.Equal(t, int32(4), got.H2HTotalGames.Int32)
	assert.Equal(t, game.HomeTeamID, got.HomeTeamID)
	assert.False(t, got.PaceDifferential.Valid, "Unset columns come back null")

	ids, err := db.MatchupFeatures.ExistingGameIDs(ctx, game.Season)
	require.NoError(t, err)
	assert.Contains(t, ids, game.GameID)
}

func TestMatchupFeaturesNotFound(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	_, err := db.MatchupFeatures.GetByGameID(ctx, "no-such-game")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPredictionUpsertAndValidation(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	game := seedGame(t, db, ctx, "it-pred-1", false)

	pred := &models.Prediction{
		GameID:             game.GameID,
		ModelName:          "game_winner",
		PredictedWinner:    sql.NullString{String: "home", Valid: true},
		WinProbabilityHome: 0.63,
		WinProbabilityAway: 0.37,
		Confidence:         0.63,
	}
	require.NoError(t, db.Predictions.Upsert(ctx, pred), "Should insert prediction")

	got, err := db.Predictions.GetByGameAndModel(ctx, game.GameID, "game_winner")
	require.NoError(t, err)
	assert.Equal(t, 0.63, got.WinProbabilityHome)

	// Out-of-range probability is rejected before touching the database
	bad := &models.Prediction{
		GameID:             game.GameID,
		ModelName:          "game_winner",
		WinProbabilityHome: 1.5,
		WinProbabilityAway: -0.5,
	}
	assert.Error(t, db.Predictions.Upsert(ctx, bad), "Invalid probabilities should be rejected")
}
