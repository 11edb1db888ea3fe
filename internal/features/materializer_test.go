package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nbamodel/pipeline/internal/models"
	"nbamodel/pipeline/internal/repository"
)

func testMaterializer() *Materializer {
	calc := testCalculator()
	return &Materializer{
		calc:        calc,
		matchup:     &MatchupCalculator{Calc: calc},
		batchSize:   100,
		parallelism: 2,
	}
}

func TestBuildTeamRowsOnePerGame(t *testing.T) {
	m := testMaterializer()

	games := []*models.Game{
		finishedGame("g1", day(1), "LAL", "BOS", 110, 100),
		finishedGame("g2", day(3), "BOS", "LAL", 99, 98),
		scheduledGame("g3", day(5), "LAL", "GSW"),
	}
	idx := NewSeasonIndex("2025-26", nil, games, nil, nil)

	rows, skipped := m.buildTeamRows(idx, "LAL", map[string]struct{}{})
	require.Len(t, rows, 3)
	assert.Equal(t, 0, skipped)

	// First tracked game: all features null, metadata intact
	first := rows[0]
	assert.Equal(t, "g1", first.GameID)
	assert.Equal(t, "LAL", first.TeamID)
	assert.True(t, first.IsHome)
	assert.False(t, first.L5Points.Valid, "Cold start rows carry null features")
	assert.False(t, first.WinStreak.Valid)

	// Second game sees exactly one prior game
	second := rows[1]
	assert.False(t, second.IsHome)
	require.True(t, second.L5Points.Valid)
	assert.InDelta(t, 110.0, second.L5Points.Float64, 1e-9)
	require.True(t, second.L5WinPct.Valid)
	assert.InDelta(t, 100.0, second.L5WinPct.Float64, 1e-9)

	// The scheduled game still gets a feature row from the two finished ones
	third := rows[2]
	assert.Equal(t, "g3", third.GameID)
	require.True(t, third.L5Points.Valid)
}

func TestBuildTeamRowsSkipsExisting(t *testing.T) {
	m := testMaterializer()

	games := []*models.Game{
		finishedGame("g1", day(1), "LAL", "BOS", 110, 100),
		finishedGame("g2", day(3), "BOS", "LAL", 99, 98),
	}
	idx := NewSeasonIndex("2025-26", nil, games, nil, nil)

	existing := map[string]struct{}{
		repository.RollingKey("g1", "LAL"): {},
	}

	rows, skipped := m.buildTeamRows(idx, "LAL", existing)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, "g2", rows[0].GameID)
}

func TestBuildTeamRowsLabelsOnlyWhenFinished(t *testing.T) {
	m := testMaterializer()

	games := []*models.Game{
		finishedGame("g1", day(1), "LAL", "BOS", 110, 100),
		scheduledGame("g2", day(3), "LAL", "GSW"),
	}
	idx := NewSeasonIndex("2025-26", nil, games, nil, nil)

	rows, _ := m.buildTeamRows(idx, "LAL", map[string]struct{}{})
	require.Len(t, rows, 2)

	finished := rows[0]
	require.True(t, finished.WonGame.Valid)
	assert.True(t, finished.WonGame.Bool)
	require.True(t, finished.PointDifferential.Valid)
	assert.Equal(t, int32(10), finished.PointDifferential.Int32)

	pending := rows[1]
	assert.False(t, pending.WonGame.Valid, "Unplayed games carry no labels")
	assert.False(t, pending.PointDifferential.Valid)
}

func TestBuildTeamRowsAwayPointDifferentialFlipped(t *testing.T) {
	m := testMaterializer()

	games := []*models.Game{
		finishedGame("g1", day(1), "BOS", "LAL", 99, 98),
	}
	idx := NewSeasonIndex("2025-26", nil, games, nil, nil)

	rows, _ := m.buildTeamRows(idx, "LAL", map[string]struct{}{})
	require.Len(t, rows, 1)

	row := rows[0]
	assert.False(t, row.IsHome)
	require.True(t, row.WonGame.Valid)
	assert.False(t, row.WonGame.Bool)
	assert.Equal(t, int32(-1), row.PointDifferential.Int32, "Differential is from the team's own perspective")
}

func TestBuildTeamRowsInjuryContext(t *testing.T) {
	m := testMaterializer()

	games := []*models.Game{
		finishedGame("g1", day(8), "LAL", "BOS", 110, 100),
	}
	injuries := []*models.PlayerInjury{
		{TeamID: "LAL", PlayerID: "p1", Status: models.InjuryStatusOut, ReportDate: day(6)},
		{TeamID: "LAL", PlayerID: "p2", Status: models.InjuryStatusQuestionable, ReportDate: day(7)},
	}
	idx := NewSeasonIndex("2025-26", nil, games, nil, injuries)

	rows, _ := m.buildTeamRows(idx, "LAL", map[string]struct{}{})
	require.Len(t, rows, 1)

	row := rows[0]
	require.True(t, row.PlayersOut.Valid)
	assert.Equal(t, int32(1), row.PlayersOut.Int32)
	assert.Equal(t, int32(1), row.PlayersQuestionable.Int32)
	require.True(t, row.InjurySeverityScore.Valid)
	assert.InDelta(t, 0.15, row.InjurySeverityScore.Float64, 1e-9)

	// No reports for the other side: null, never zero
	rows, _ = m.buildTeamRows(idx, "BOS", map[string]struct{}{})
	require.Len(t, rows, 1)
	assert.False(t, rows[0].PlayersOut.Valid)
	assert.False(t, rows[0].InjurySeverityScore.Valid)
}

func TestBuildMatchupRowsSkipsExisting(t *testing.T) {
	m := testMaterializer()

	games := []*models.Game{
		finishedGame("g1", day(1), "LAL", "BOS", 110, 100),
		scheduledGame("g2", day(3), "LAL", "BOS"),
	}
	idx := NewSeasonIndex("2025-26", nil, games, nil, nil)

	stats := &RunStats{}
	rows := m.buildMatchupRows(idx, map[string]struct{}{"g1": {}}, stats)
	require.Len(t, rows, 1)
	assert.Equal(t, "g2", rows[0].GameID)
	assert.Equal(t, 1, stats.MatchupSkipped)

	row := rows[0]
	assert.Equal(t, "LAL", row.HomeTeamID)
	require.True(t, row.H2HTotalGames.Valid)
	assert.Equal(t, int32(1), row.H2HTotalGames.Int32)
	require.True(t, row.IsHomeAdvantage.Valid)
	assert.Equal(t, int32(1), row.IsHomeAdvantage.Int32)
}

func TestMaterializationIdempotent(t *testing.T) {
	m := testMaterializer()

	games := []*models.Game{
		finishedGame("g1", day(1), "LAL", "BOS", 110, 100),
		finishedGame("g2", day(3), "BOS", "LAL", 99, 98),
	}
	idx := NewSeasonIndex("2025-26", nil, games, nil, nil)

	rows, _ := m.buildTeamRows(idx, "LAL", map[string]struct{}{})

	// Simulate a second run: everything the first run wrote now exists
	existing := map[string]struct{}{}
	for _, row := range rows {
		existing[repository.RollingKey(row.GameID, row.TeamID)] = struct{}{}
	}

	rerun, skipped := m.buildTeamRows(idx, "LAL", existing)
	assert.Empty(t, rerun, "Second run should recompute nothing")
	assert.Equal(t, len(rows), skipped)
}
