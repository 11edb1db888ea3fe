package models

import (
	"database/sql"
	"time"
)

// GameMatchupFeatures is the materialized game-level feature row: head-to-head
// history, style deltas between the two teams, and scheduling context. Always
// computed from data strictly preceding game_date. Unique on game_id.
type GameMatchupFeatures struct {
	ID         int       `db:"id"`
	GameID     string    `db:"game_id"`
	GameDate   time.Time `db:"game_date"`
	Season     string    `db:"season"`
	HomeTeamID string    `db:"home_team_id"`
	AwayTeamID string    `db:"away_team_id"`

	// Head-to-head, last 5 meetings
	H2HHomeWins             sql.NullInt32   `db:"h2h_home_wins"`
	H2HAwayWins             sql.NullInt32   `db:"h2h_away_wins"`
	H2HTotalGames           sql.NullInt32   `db:"h2h_total_games"`
	H2HAvgPointDifferential sql.NullFloat64 `db:"h2h_avg_point_differential"`
	H2HHomeAvgScore         sql.NullFloat64 `db:"h2h_home_avg_score"`
	H2HAwayAvgScore         sql.NullFloat64 `db:"h2h_away_avg_score"`

	// Style matchup (home minus away, 10-game lookback)
	PaceDifferential sql.NullFloat64 `db:"pace_differential"`
	TSDifferential   sql.NullFloat64 `db:"ts_differential"`
	EFGDifferential  sql.NullFloat64 `db:"efg_differential"`

	// Recent form
	HomeWinPctRecent   sql.NullFloat64 `db:"home_win_pct_recent"`
	AwayWinPctRecent   sql.NullFloat64 `db:"away_win_pct_recent"`
	WinPctDifferential sql.NullFloat64 `db:"win_pct_differential"`

	// Contextual flags
	SameConference  sql.NullBool  `db:"same_conference"`
	SameDivision    sql.NullBool  `db:"same_division"`
	IsPlayoffs      sql.NullBool  `db:"is_playoffs"`
	IsHomeAdvantage sql.NullInt32 `db:"is_home_advantage"`

	// Rest
	HomeRestDays         sql.NullInt32 `db:"home_rest_days"`
	AwayRestDays         sql.NullInt32 `db:"away_rest_days"`
	RestDaysDifferential sql.NullInt32 `db:"rest_days_differential"`

	// Back-to-back
	HomeIsB2B sql.NullBool `db:"home_is_b2b"`
	AwayIsB2B sql.NullBool `db:"away_is_b2b"`

	// Days until next scheduled game
	HomeDaysUntilNext sql.NullInt32 `db:"home_days_until_next"`
	AwayDaysUntilNext sql.NullInt32 `db:"away_days_until_next"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// FeatureColumns returns every non-metadata column in stable table order,
// shared by the training-data export and the inference extractor.
func (m *GameMatchupFeatures) FeatureColumns() []FeatureValue {
	return []FeatureValue{
		{"h2h_home_wins", intPtr(m.H2HHomeWins)},
		{"h2h_away_wins", intPtr(m.H2HAwayWins)},
		{"h2h_total_games", intPtr(m.H2HTotalGames)},
		{"h2h_avg_point_differential", floatPtr(m.H2HAvgPointDifferential)},
		{"h2h_home_avg_score", floatPtr(m.H2HHomeAvgScore)},
		{"h2h_away_avg_score", floatPtr(m.H2HAwayAvgScore)},
		{"pace_differential", floatPtr(m.PaceDifferential)},
		{"ts_differential", floatPtr(m.TSDifferential)},
		{"efg_differential", floatPtr(m.EFGDifferential)},
		{"home_win_pct_recent", floatPtr(m.HomeWinPctRecent)},
		{"away_win_pct_recent", floatPtr(m.AwayWinPctRecent)},
		{"win_pct_differential", floatPtr(m.WinPctDifferential)},
		{"same_conference", boolPtr(m.SameConference)},
		{"same_division", boolPtr(m.SameDivision)},
		{"is_playoffs", boolPtr(m.IsPlayoffs)},
		{"is_home_advantage", intPtr(m.IsHomeAdvantage)},
		{"home_rest_days", intPtr(m.HomeRestDays)},
		{"away_rest_days", intPtr(m.AwayRestDays)},
		{"rest_days_differential", intPtr(m.RestDaysDifferential)},
		{"home_is_b2b", boolPtr(m.HomeIsB2B)},
		{"away_is_b2b", boolPtr(m.AwayIsB2B)},
		{"home_days_until_next", intPtr(m.HomeDaysUntilNext)},
		{"away_days_until_next", intPtr(m.AwayDaysUntilNext)},
	}
}
