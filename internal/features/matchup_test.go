package features

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nbamodel/pipeline/internal/models"
)

func testMatchupCalculator() *MatchupCalculator {
	return &MatchupCalculator{Calc: testCalculator()}
}

func team(id, conference, division string) *models.Team {
	return &models.Team{
		TeamID:       id,
		TeamName:     id,
		Abbreviation: id,
		Conference:   sql.NullString{String: conference, Valid: conference != ""},
		Division:     sql.NullString{String: division, Valid: division != ""},
	}
}

func TestMatchupHeadToHeadFromHomePerspective(t *testing.T) {
	mc := testMatchupCalculator()

	games := []*models.Game{
		// LAL beat BOS at home, then lost to them on the road
		finishedGame("g1", day(1), "LAL", "BOS", 110, 100),
		finishedGame("g2", day(3), "BOS", "LAL", 105, 95),
	}
	fixture := scheduledGame("g3", day(10), "LAL", "BOS")
	idx := NewSeasonIndex("2025-26", nil, append(games, fixture), nil, nil)

	snap := mc.Compute(idx, fixture)

	require.NotNil(t, snap.H2HTotalGames)
	assert.Equal(t, 2, *snap.H2HTotalGames)
	assert.Equal(t, 1, *snap.H2HHomeWins)
	assert.Equal(t, 1, *snap.H2HAwayWins)

	// From LAL's perspective: +10 and -10 across the two meetings
	require.NotNil(t, snap.H2HAvgPointDifferential)
	assert.InDelta(t, 0.0, *snap.H2HAvgPointDifferential, 1e-9)
	assert.InDelta(t, 102.5, *snap.H2HHomeAvgScore, 1e-9)
	assert.InDelta(t, 102.5, *snap.H2HAwayAvgScore, 1e-9)
}

func TestMatchupNoPriorMeetings(t *testing.T) {
	mc := testMatchupCalculator()

	fixture := scheduledGame("g1", day(10), "LAL", "BOS")
	idx := NewSeasonIndex("2025-26", nil, []*models.Game{fixture}, nil, nil)

	snap := mc.Compute(idx, fixture)
	require.NotNil(t, snap.H2HTotalGames)
	assert.Equal(t, 0, *snap.H2HTotalGames)
	assert.Equal(t, 0, *snap.H2HHomeWins)
	assert.Nil(t, snap.H2HAvgPointDifferential, "No meetings means no average, not zero")
}

func TestMatchupRecentFormWeighted(t *testing.T) {
	mc := testMatchupCalculator()

	var games []*models.Game
	// LAL wins everything, BOS most recently lost after two wins
	for i := 0; i < 3; i++ {
		games = append(games,
			finishedGame(fmt.Sprintf("lal-%d", i), day(i), "LAL", "PHX", 110, 100),
		)
	}
	games = append(games,
		finishedGame("bos-0", day(0), "BOS", "DEN", 110, 100),
		finishedGame("bos-1", day(1), "BOS", "DEN", 110, 100),
		finishedGame("bos-2", day(2), "BOS", "DEN", 90, 100),
	)
	fixture := scheduledGame("g", day(10), "LAL", "BOS")
	idx := NewSeasonIndex("2025-26", nil, append(games, fixture), nil, nil)

	snap := mc.Compute(idx, fixture)

	require.NotNil(t, snap.HomeWinPctRecent)
	require.NotNil(t, snap.AwayWinPctRecent)
	require.NotNil(t, snap.WinPctDifferential)

	assert.InDelta(t, 100.0, *snap.HomeWinPctRecent, 1e-9)
	// the recent loss weighs more than either older win
	assert.Less(t, *snap.AwayWinPctRecent, 66.7)
	assert.Greater(t, *snap.WinPctDifferential, 0.0)
}

func TestMatchupScheduleContext(t *testing.T) {
	mc := testMatchupCalculator()

	games := []*models.Game{
		finishedGame("g1", day(9), "LAL", "PHX", 110, 100), // LAL played yesterday
		finishedGame("g2", day(6), "BOS", "DEN", 110, 100), // BOS four days ago
	}
	fixture := scheduledGame("g3", day(10), "LAL", "BOS")
	next := scheduledGame("g4", day(12), "BOS", "PHX")
	idx := NewSeasonIndex("2025-26", nil, append(games, fixture, next), nil, nil)

	snap := mc.Compute(idx, fixture)

	require.NotNil(t, snap.HomeRestDays)
	require.NotNil(t, snap.AwayRestDays)
	assert.Equal(t, 1, *snap.HomeRestDays)
	assert.Equal(t, 4, *snap.AwayRestDays)
	assert.Equal(t, -3, *snap.RestDaysDifferential)

	require.NotNil(t, snap.HomeIsB2B)
	assert.True(t, *snap.HomeIsB2B)
	assert.False(t, *snap.AwayIsB2B)

	require.NotNil(t, snap.AwayDaysUntilNext)
	assert.Equal(t, 2, *snap.AwayDaysUntilNext)
	assert.Nil(t, snap.HomeDaysUntilNext, "Nothing on the calendar after the fixture")
}

func TestMatchupConferenceAndPlayoffFlags(t *testing.T) {
	mc := testMatchupCalculator()

	teams := []*models.Team{
		team("LAL", "West", "Pacific"),
		team("GSW", "West", "Pacific"),
		team("BOS", "East", "Atlantic"),
		team("UNK", "", ""),
	}

	fixture := scheduledGame("g1", day(10), "LAL", "GSW")
	fixture.SeasonType = models.SeasonTypePlayoffs
	idx := NewSeasonIndex("2025-26", teams, []*models.Game{fixture}, nil, nil)

	snap := mc.Compute(idx, fixture)
	require.NotNil(t, snap.SameConference)
	assert.True(t, *snap.SameConference)
	assert.True(t, *snap.SameDivision)
	assert.True(t, *snap.IsPlayoffs)
	require.NotNil(t, snap.IsHomeAdvantage)
	assert.Equal(t, 1, *snap.IsHomeAdvantage)

	cross := scheduledGame("g2", day(10), "LAL", "BOS")
	snap = mc.Compute(idx, cross)
	assert.False(t, *snap.SameConference)
	assert.False(t, *snap.SameDivision)
	assert.False(t, *snap.IsPlayoffs)

	unknown := scheduledGame("g3", day(10), "LAL", "UNK")
	snap = mc.Compute(idx, unknown)
	assert.Nil(t, snap.SameConference, "Unknown conference stays null")
	assert.Nil(t, snap.SameDivision)
}

func TestMatchupStyleDifferentials(t *testing.T) {
	mc := testMatchupCalculator()

	// LAL plays fast (high possessions), BOS slow. Three boxed games each.
	mkStats := func(teamID, gameID string, fga float64) *models.TeamGameStats {
		return &models.TeamGameStats{
			GameID: gameID, TeamID: teamID,
			Points: 100, FieldGoalsMade: 38, FieldGoalsAttempted: int(fga),
			ThreePointersMade: 10, FreeThrowsAttempted: 20,
			ReboundsOffensive: 10, Turnovers: 12,
		}
	}

	var games []*models.Game
	var stats []*models.TeamGameStats
	for i := 0; i < 3; i++ {
		lalID := fmt.Sprintf("lal-%d", i)
		bosID := fmt.Sprintf("bos-%d", i)
		games = append(games,
			finishedGame(lalID, day(i), "LAL", "PHX", 110, 100),
			finishedGame(bosID, day(i), "BOS", "DEN", 110, 100),
		)
		stats = append(stats,
			mkStats("LAL", lalID, 100),
			mkStats("BOS", bosID, 80),
		)
	}
	fixture := scheduledGame("g", day(10), "LAL", "BOS")
	idx := NewSeasonIndex("2025-26", nil, append(games, fixture), stats, nil)

	snap := mc.Compute(idx, fixture)

	require.NotNil(t, snap.PaceDifferential)
	assert.InDelta(t, 20.0, *snap.PaceDifferential, 1e-9, "Pace gap is the FGA gap here")

	require.NotNil(t, snap.TSDifferential)
	assert.Less(t, *snap.TSDifferential, 0.0, "Same points on more attempts means worse TS")

	require.NotNil(t, snap.EFGDifferential)
	assert.Less(t, *snap.EFGDifferential, 0.0)
}

func TestMatchupStyleNeedsThreeBoxedGames(t *testing.T) {
	mc := testMatchupCalculator()

	games := []*models.Game{
		finishedGame("g1", day(1), "LAL", "PHX", 110, 100),
		finishedGame("g2", day(1), "BOS", "DEN", 110, 100),
	}
	fixture := scheduledGame("g", day(10), "LAL", "BOS")
	idx := NewSeasonIndex("2025-26", nil, append(games, fixture), nil, nil)

	snap := mc.Compute(idx, fixture)
	assert.Nil(t, snap.PaceDifferential, "Too few boxed games on either side leaves style nulls")
	assert.Nil(t, snap.TSDifferential)
	assert.Nil(t, snap.EFGDifferential)
}

func TestMatchupColdStartBothSides(t *testing.T) {
	mc := testMatchupCalculator()

	fixture := scheduledGame("g", time.Date(2025, 10, 21, 0, 0, 0, 0, time.UTC), "LAL", "BOS")
	idx := NewSeasonIndex("2025-26", nil, []*models.Game{fixture}, nil, nil)

	snap := mc.Compute(idx, fixture)
	assert.Nil(t, snap.HomeWinPctRecent)
	assert.Nil(t, snap.HomeRestDays)
	assert.Nil(t, snap.HomeIsB2B)
	assert.Nil(t, snap.RestDaysDifferential)
}
