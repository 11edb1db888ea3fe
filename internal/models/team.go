package models

import (
	"database/sql"
	"time"
)

// Team represents an NBA team
type Team struct {
	TeamID       string         `db:"team_id"`
	TeamName     string         `db:"team_name"`
	Abbreviation string         `db:"team_abbreviation"`
	City         sql.NullString `db:"city"`
	Conference   sql.NullString `db:"conference"`
	Division     sql.NullString `db:"division"`
	CreatedAt    time.Time      `db:"created_at"`
}

// SameConference reports whether both teams play in the same conference.
// Returns false, false when either team's conference is unknown.
func (t *Team) SameConference(other *Team) (bool, bool) {
	if other == nil || !t.Conference.Valid || !other.Conference.Valid {
		return false, false
	}
	return t.Conference.String == other.Conference.String, true
}

// SameDivision reports whether both teams play in the same division.
// Returns false, false when either team's division is unknown.
func (t *Team) SameDivision(other *Team) (bool, bool) {
	if other == nil || !t.Division.Valid || !other.Division.Valid {
		return false, false
	}
	return t.Division.String == other.Division.String, true
}
