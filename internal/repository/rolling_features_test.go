//go:build integration

package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nbamodel/pipeline/internal/models"
)

func seedGame(t *testing.T, db *Database, ctx context.Context, gameID string, finished bool) *models.Game {
	teams := []*models.Team{
		{TeamID: "LAL", TeamName: "Los Angeles Lakers", Abbreviation: "LAL",
			Conference: sql.NullString{String: "West", Valid: true}},
		{TeamID: "BOS", TeamName: "Boston Celtics", Abbreviation: "BOS",
			Conference: sql.NullString{String: "East", Valid: true}},
	}
	for _, team := range teams {
		require.NoError(t, db.Teams.Upsert(ctx, team), "Should insert team")
	}

	game := &models.Game{
		GameID:     gameID,
		Season:     "2025-26",
		SeasonType: "Regular Season",
		GameDate:   time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC),
		HomeTeamID: "LAL",
		AwayTeamID: "BOS",
		GameStatus: models.GameStatusScheduled,
	}
	if finished {
		game.GameStatus = models.GameStatusFinished
		game.HomeScore = sql.NullInt32{Int32: 110, Valid: true}
		game.AwayScore = sql.NullInt32{Int32: 100, Valid: true}
		game.Winner = sql.NullString{String: "LAL", Valid: true}
	}
	require.NoError(t, db.Games.Upsert(ctx, game), "Should insert game")
	return game
}

func TestRollingFeaturesRoundTrip(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	game := seedGame(t, db, ctx, "it-roll-1", false)

	row := &models.TeamRollingFeatures{
		GameID:   game.GameID,
		TeamID:   "LAL",
		IsHome:   true,
		GameDate: game.GameDate,
		Season:   game.Season,
		L5Points: sql.NullFloat64{Float64: 112.4, Valid: true},
		L5WinPct: sql.NullFloat64{Float64: 80.0, Valid: true},
		TSPct:    sql.NullFloat64{Float64: 58.3, Valid: true},
	}

	require.NoError(t, db.RollingFeatures.Upsert(ctx, row), "Should insert rolling features")

	got, err := db.RollingFeatures.GetByGameAndTeam(ctx, game.GameID, "LAL")
	require.NoError(t, err, "Should retrieve inserted row")
	assert.Equal(t, 112.4, got.L5Points.Float64)
	assert.True(t, got.IsHome)
	assert.False(t, got.L10Points.Valid, "Unset columns come back null")
	assert.False(t, got.WonGame.Valid, "No labels before the game finishes")

	// Upsert again with a changed value: same key, updated row
	row.L5Points = sql.NullFloat64{Float64: 115.0, Valid: true}
	require.NoError(t, db.RollingFeatures.Upsert(ctx, row))

	got, err = db.RollingFeatures.GetByGameAndTeam(ctx, game.GameID, "LAL")
	require.NoError(t, err)
	assert.Equal(t, 115.0, got.L5Points.Float64)
}

func TestRollingFeaturesBatchAndExistingKeys(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	game := seedGame(t, db, ctx, "it-roll-2", false)

	rows := []*models.TeamRollingFeatures{
		{GameID: game.GameID, TeamID: "LAL", IsHome: true, GameDate: game.GameDate, Season: game.Season},
		{GameID: game.GameID, TeamID: "BOS", IsHome: false, GameDate: game.GameDate, Season: game.Season},
	}
	require.NoError(t, db.RollingFeatures.UpsertBatch(ctx, rows), "Should batch insert")

	keys, err := db.RollingFeatures.ExistingKeys(ctx, game.Season)
	require.NoError(t, err)
	assert.Contains(t, keys, RollingKey(game.GameID, "LAL"))
	assert.Contains(t, keys, RollingKey(game.GameID, "BOS"))

	count, err := db.RollingFeatures.Count(ctx, game.Season)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, count, 2)
}

func TestRollingFeaturesBackfillTargets(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	game := seedGame(t, db, ctx, "it-roll-3", true)

	row := &models.TeamRollingFeatures{
		GameID: game.GameID, TeamID: "LAL", IsHome: true,
		GameDate: game.GameDate, Season: game.Season,
	}
	require.NoError(t, db.RollingFeatures.Upsert(ctx, row))

	updated, err := db.RollingFeatures.BackfillTargets(ctx, game.GameID, "LAL", true, 10)
	require.NoError(t, err)
	assert.True(t, updated, "First backfill should touch the row")

	got, err := db.RollingFeatures.GetByGameAndTeam(ctx, game.GameID, "LAL")
	require.NoError(t, err)
	require.True(t, got.WonGame.Valid)
	assert.True(t, got.WonGame.Bool)
	assert.Equal(t, int32(10), got.PointDifferential.Int32)

	// Labels are written once: a second backfill is a no-op
	updated, err = db.RollingFeatures.BackfillTargets(ctx, game.GameID, "LAL", false, -10)
	require.NoError(t, err)
	assert.False(t, updated, "Populated labels must not be overwritten")
}

func TestRollingFeaturesNotFound(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	_, err := db.RollingFeatures.GetByGameAndTeam(ctx, "no-such-game", "LAL")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}
