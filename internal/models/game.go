package models

import (
	"database/sql"
	"time"
)

// Game status values as stored in the games table
const (
	GameStatusScheduled = "scheduled"
	GameStatusLive      = "live"
	GameStatusFinished  = "finished"
	GameStatusPostponed = "postponed"
)

// SeasonTypePlayoffs is the season_type value for playoff games
const SeasonTypePlayoffs = "Playoffs"

// Game represents an NBA game
type Game struct {
	GameID     string    `db:"game_id"`
	Season     string    `db:"season"`
	SeasonType string    `db:"season_type"`
	GameDate   time.Time `db:"game_date"`
	HomeTeamID string    `db:"home_team_id"`
	AwayTeamID string    `db:"away_team_id"`

	// Result fields, null until the game finishes
	HomeScore         sql.NullInt32  `db:"home_score"`
	AwayScore         sql.NullInt32  `db:"away_score"`
	Winner            sql.NullString `db:"winner"`
	PointDifferential sql.NullInt32  `db:"point_differential"`

	GameStatus string    `db:"game_status"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// IsFinished returns true if the game is completed
func (g *Game) IsFinished() bool {
	return g.GameStatus == GameStatusFinished
}

// IsScheduled returns true if the game has not started yet
func (g *Game) IsScheduled() bool {
	return g.GameStatus == GameStatusScheduled
}

// IsPlayoffs returns true for playoff games
func (g *Game) IsPlayoffs() bool {
	return g.SeasonType == SeasonTypePlayoffs
}

// Opponent returns the opposing team's id for the given team, and whether
// the team plays at home. The second result is false when the team is not
// part of this game.
func (g *Game) Opponent(teamID string) (opponentID string, isHome bool, ok bool) {
	switch teamID {
	case g.HomeTeamID:
		return g.AwayTeamID, true, true
	case g.AwayTeamID:
		return g.HomeTeamID, false, true
	default:
		return "", false, false
	}
}

// WonBy reports whether the given team won this game. Only meaningful for
// finished games with a recorded winner.
func (g *Game) WonBy(teamID string) bool {
	return g.Winner.Valid && g.Winner.String == teamID
}
