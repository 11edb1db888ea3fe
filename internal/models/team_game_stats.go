package models

import (
	"database/sql"
	"time"
)

// TeamGameStats holds the box-score totals for one team in one finished game.
// Rows are written by the external collection layer; the feature pipeline
// only reads them. Unique on (game_id, team_id).
type TeamGameStats struct {
	ID     int    `db:"id"`
	GameID string `db:"game_id"`
	TeamID string `db:"team_id"`
	IsHome bool   `db:"is_home"`

	// Scoring
	Points               int     `db:"points"`
	FieldGoalsMade       int     `db:"field_goals_made"`
	FieldGoalsAttempted  int     `db:"field_goals_attempted"`
	FieldGoalPercentage  float64 `db:"field_goal_percentage"`
	ThreePointersMade    int     `db:"three_pointers_made"`
	ThreePointersAttempt int     `db:"three_pointers_attempted"`
	ThreePointPercentage float64 `db:"three_point_percentage"`
	FreeThrowsMade       int     `db:"free_throws_made"`
	FreeThrowsAttempted  int     `db:"free_throws_attempted"`
	FreeThrowPercentage  float64 `db:"free_throw_percentage"`

	// Rebounding
	ReboundsOffensive int `db:"rebounds_offensive"`
	ReboundsDefensive int `db:"rebounds_defensive"`
	ReboundsTotal     int `db:"rebounds_total"`

	// Other box-score totals
	Assists       int `db:"assists"`
	Steals        int `db:"steals"`
	Blocks        int `db:"blocks"`
	Turnovers     int `db:"turnovers"`
	PersonalFouls int `db:"personal_fouls"`

	// Pre-computed shooting efficiency, when the collector supplies it
	TrueShootingPercentage sql.NullFloat64 `db:"true_shooting_percentage"`
	EffectiveFGPercentage  sql.NullFloat64 `db:"effective_field_goal_percentage"`

	CreatedAt time.Time `db:"created_at"`
}

// Possessions estimates the number of possessions this team used:
// FGA - ORB + TOV + 0.44*FTA, floored at zero.
func (s *TeamGameStats) Possessions() float64 {
	poss := float64(s.FieldGoalsAttempted) -
		float64(s.ReboundsOffensive) +
		float64(s.Turnovers) +
		0.44*float64(s.FreeThrowsAttempted)
	if poss < 0 {
		return 0
	}
	return poss
}
