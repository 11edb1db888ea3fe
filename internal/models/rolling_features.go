package models

import (
	"database/sql"
	"time"
)

// TeamRollingFeatures is the materialized point-in-time feature row for one
// team going into one game. Every value is computed exclusively from games
// dated strictly before game_date; a team's first tracked game yields a row
// where every feature is null. Unique on (game_id, team_id).
type TeamRollingFeatures struct {
	ID       int       `db:"id"`
	GameID   string    `db:"game_id"`
	TeamID   string    `db:"team_id"`
	IsHome   bool      `db:"is_home"`
	GameDate time.Time `db:"game_date"`
	Season   string    `db:"season"`

	// Last 5 games, decay-weighted
	L5Points        sql.NullFloat64 `db:"l5_points"`
	L5PointsAllowed sql.NullFloat64 `db:"l5_points_allowed"`
	L5FGPct         sql.NullFloat64 `db:"l5_fg_pct"`
	L5ThreePct      sql.NullFloat64 `db:"l5_three_pct"`
	L5FTPct         sql.NullFloat64 `db:"l5_ft_pct"`
	L5Rebounds      sql.NullFloat64 `db:"l5_rebounds"`
	L5Assists       sql.NullFloat64 `db:"l5_assists"`
	L5Turnovers     sql.NullFloat64 `db:"l5_turnovers"`
	L5Steals        sql.NullFloat64 `db:"l5_steals"`
	L5Blocks        sql.NullFloat64 `db:"l5_blocks"`
	L5WinPct        sql.NullFloat64 `db:"l5_win_pct"`

	// Last 10 games, decay-weighted
	L10Points        sql.NullFloat64 `db:"l10_points"`
	L10PointsAllowed sql.NullFloat64 `db:"l10_points_allowed"`
	L10FGPct         sql.NullFloat64 `db:"l10_fg_pct"`
	L10ThreePct      sql.NullFloat64 `db:"l10_three_pct"`
	L10FTPct         sql.NullFloat64 `db:"l10_ft_pct"`
	L10Rebounds      sql.NullFloat64 `db:"l10_rebounds"`
	L10Assists       sql.NullFloat64 `db:"l10_assists"`
	L10Turnovers     sql.NullFloat64 `db:"l10_turnovers"`
	L10Steals        sql.NullFloat64 `db:"l10_steals"`
	L10Blocks        sql.NullFloat64 `db:"l10_blocks"`
	L10WinPct        sql.NullFloat64 `db:"l10_win_pct"`

	// Last 20 games, decay-weighted (reduced set)
	L20Points        sql.NullFloat64 `db:"l20_points"`
	L20PointsAllowed sql.NullFloat64 `db:"l20_points_allowed"`
	L20FGPct         sql.NullFloat64 `db:"l20_fg_pct"`
	L20ThreePct      sql.NullFloat64 `db:"l20_three_pct"`
	L20WinPct        sql.NullFloat64 `db:"l20_win_pct"`

	// Advanced metrics, fixed 10-game lookback
	OffensiveRating sql.NullFloat64 `db:"offensive_rating"`
	DefensiveRating sql.NullFloat64 `db:"defensive_rating"`
	NetRating       sql.NullFloat64 `db:"net_rating"`
	Pace            sql.NullFloat64 `db:"pace"`
	EFGPct          sql.NullFloat64 `db:"efg_pct"`
	TSPct           sql.NullFloat64 `db:"ts_pct"`
	TOVPct          sql.NullFloat64 `db:"tov_pct"`

	OffensiveReboundRate sql.NullFloat64 `db:"offensive_rebound_rate"`
	DefensiveReboundRate sql.NullFloat64 `db:"defensive_rebound_rate"`
	AssistRate           sql.NullFloat64 `db:"assist_rate"`
	StealRate            sql.NullFloat64 `db:"steal_rate"`
	BlockRate            sql.NullFloat64 `db:"block_rate"`

	// Scoring summary, fixed 10-game lookback
	AvgPointDifferential sql.NullFloat64 `db:"avg_point_differential"`
	AvgPointsFor         sql.NullFloat64 `db:"avg_points_for"`
	AvgPointsAgainst     sql.NullFloat64 `db:"avg_points_against"`

	// Streaks
	WinStreak  sql.NullInt32 `db:"win_streak"`
	LossStreak sql.NullInt32 `db:"loss_streak"`

	// Injury context
	PlayersOut          sql.NullInt32   `db:"players_out"`
	PlayersQuestionable sql.NullInt32   `db:"players_questionable"`
	InjurySeverityScore sql.NullFloat64 `db:"injury_severity_score"`

	// Scheduling context
	DaysRest         sql.NullInt32 `db:"days_rest"`
	IsBackToBack     sql.NullBool  `db:"is_back_to_back"`
	GamesInLast7Days sql.NullInt32 `db:"games_in_last_7_days"`

	// Home/away splits
	HomeWinPct sql.NullFloat64 `db:"home_win_pct"`
	AwayWinPct sql.NullFloat64 `db:"away_win_pct"`

	// Target labels, populated only once the game finishes
	WonGame           sql.NullBool  `db:"won_game"`
	PointDifferential sql.NullInt32 `db:"point_differential"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// FeatureColumns returns every non-metadata, non-target column in stable
// table order. This list is the single source of truth shared by the
// training-data export and the inference extractor; changing it changes
// the model's input schema.
func (f *TeamRollingFeatures) FeatureColumns() []FeatureValue {
	return []FeatureValue{
		{"l5_points", floatPtr(f.L5Points)},
		{"l5_points_allowed", floatPtr(f.L5PointsAllowed)},
		{"l5_fg_pct", floatPtr(f.L5FGPct)},
		{"l5_three_pct", floatPtr(f.L5ThreePct)},
		{"l5_ft_pct", floatPtr(f.L5FTPct)},
		{"l5_rebounds", floatPtr(f.L5Rebounds)},
		{"l5_assists", floatPtr(f.L5Assists)},
		{"l5_turnovers", floatPtr(f.L5Turnovers)},
		{"l5_steals", floatPtr(f.L5Steals)},
		{"l5_blocks", floatPtr(f.L5Blocks)},
		{"l5_win_pct", floatPtr(f.L5WinPct)},
		{"l10_points", floatPtr(f.L10Points)},
		{"l10_points_allowed", floatPtr(f.L10PointsAllowed)},
		{"l10_fg_pct", floatPtr(f.L10FGPct)},
		{"l10_three_pct", floatPtr(f.L10ThreePct)},
		{"l10_ft_pct", floatPtr(f.L10FTPct)},
		{"l10_rebounds", floatPtr(f.L10Rebounds)},
		{"l10_assists", floatPtr(f.L10Assists)},
		{"l10_turnovers", floatPtr(f.L10Turnovers)},
		{"l10_steals", floatPtr(f.L10Steals)},
		{"l10_blocks", floatPtr(f.L10Blocks)},
		{"l10_win_pct", floatPtr(f.L10WinPct)},
		{"l20_points", floatPtr(f.L20Points)},
		{"l20_points_allowed", floatPtr(f.L20PointsAllowed)},
		{"l20_fg_pct", floatPtr(f.L20FGPct)},
		{"l20_three_pct", floatPtr(f.L20ThreePct)},
		{"l20_win_pct", floatPtr(f.L20WinPct)},
		{"offensive_rating", floatPtr(f.OffensiveRating)},
		{"defensive_rating", floatPtr(f.DefensiveRating)},
		{"net_rating", floatPtr(f.NetRating)},
		{"pace", floatPtr(f.Pace)},
		{"efg_pct", floatPtr(f.EFGPct)},
		{"ts_pct", floatPtr(f.TSPct)},
		{"tov_pct", floatPtr(f.TOVPct)},
		{"offensive_rebound_rate", floatPtr(f.OffensiveReboundRate)},
		{"defensive_rebound_rate", floatPtr(f.DefensiveReboundRate)},
		{"assist_rate", floatPtr(f.AssistRate)},
		{"steal_rate", floatPtr(f.StealRate)},
		{"block_rate", floatPtr(f.BlockRate)},
		{"avg_point_differential", floatPtr(f.AvgPointDifferential)},
		{"avg_points_for", floatPtr(f.AvgPointsFor)},
		{"avg_points_against", floatPtr(f.AvgPointsAgainst)},
		{"win_streak", intPtr(f.WinStreak)},
		{"loss_streak", intPtr(f.LossStreak)},
		{"players_out", intPtr(f.PlayersOut)},
		{"players_questionable", intPtr(f.PlayersQuestionable)},
		{"injury_severity_score", floatPtr(f.InjurySeverityScore)},
		{"days_rest", intPtr(f.DaysRest)},
		{"is_back_to_back", boolPtr(f.IsBackToBack)},
		{"games_in_last_7_days", intPtr(f.GamesInLast7Days)},
		{"home_win_pct", floatPtr(f.HomeWinPct)},
		{"away_win_pct", floatPtr(f.AwayWinPct)},
	}
}
