package models

import "time"

// Injury status values as reported by the collection layer
const (
	InjuryStatusOut          = "out"
	InjuryStatusQuestionable = "questionable"
)

// PlayerInjury is one player's reported injury status on a given date,
// supplied by the external collection layer. The rolling feature row
// aggregates these into the players_out / players_questionable /
// injury_severity_score scalars.
type PlayerInjury struct {
	ID         int       `db:"id"`
	TeamID     string    `db:"team_id"`
	PlayerID   string    `db:"player_id"`
	PlayerName string    `db:"player_name"`
	Status     string    `db:"status"`
	ReportDate time.Time `db:"report_date"`
	CreatedAt  time.Time `db:"created_at"`
}
