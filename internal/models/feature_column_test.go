package models

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The training export and the inference extractor both read FeatureColumns,
// so its length and ordering are load-bearing.

func TestRollingFeatureColumnsStable(t *testing.T) {
	f := &TeamRollingFeatures{}
	cols := f.FeatureColumns()

	assert.Len(t, cols, 52)
	assert.Equal(t, "l5_points", cols[0].Name)
	assert.Equal(t, "away_win_pct", cols[len(cols)-1].Name)

	seen := make(map[string]bool)
	for _, c := range cols {
		assert.False(t, seen[c.Name], "Duplicate column name %s", c.Name)
		seen[c.Name] = true
	}

	// Target labels must never appear as features
	assert.NotContains(t, seen, "won_game")
	assert.NotContains(t, seen, "point_differential")
}

func TestMatchupFeatureColumnsStable(t *testing.T) {
	m := &GameMatchupFeatures{}
	cols := m.FeatureColumns()

	assert.Len(t, cols, 23)
	assert.Equal(t, "h2h_home_wins", cols[0].Name)
	assert.Equal(t, "away_days_until_next", cols[len(cols)-1].Name)
}

func TestFeatureColumnsNullHandling(t *testing.T) {
	f := &TeamRollingFeatures{
		L5Points:     sql.NullFloat64{Float64: 108.2, Valid: true},
		WinStreak:    sql.NullInt32{Int32: 3, Valid: true},
		IsBackToBack: sql.NullBool{Bool: true, Valid: true},
	}

	byName := make(map[string]*float64)
	for _, c := range f.FeatureColumns() {
		byName[c.Name] = c.Value
	}

	require.NotNil(t, byName["l5_points"])
	assert.Equal(t, 108.2, *byName["l5_points"])
	require.NotNil(t, byName["win_streak"])
	assert.Equal(t, 3.0, *byName["win_streak"])
	require.NotNil(t, byName["is_back_to_back"])
	assert.Equal(t, 1.0, *byName["is_back_to_back"], "Booleans surface as 0/1")

	assert.Nil(t, byName["l10_points"], "Null columns surface as nil, not 0")
	assert.Nil(t, byName["loss_streak"])
}
