package features

import "time"

// GameLog is one finished game from a single team's perspective, the unit
// the rolling calculators consume. Value fields are pointers because the
// collection layer does not always deliver a full box score; a nil value is
// skipped by the weighted means, never treated as zero.
type GameLog struct {
	GameID string
	Date   time.Time
	IsHome bool
	Won    bool

	Points        *float64
	PointsAllowed *float64

	FGPct     *float64
	ThreePct  *float64
	FTPct     *float64
	Rebounds  *float64
	Assists   *float64
	Turnovers *float64
	Steals    *float64
	Blocks    *float64

	// Pre-computed shooting efficiency from the box score, when present
	TSPct  *float64
	EFGPct *float64

	// Full box-score totals for possession-based metrics. Nil when only
	// the final score is known.
	Box    *BoxTotals
	OppBox *BoxTotals
}

// BoxTotals carries the raw counting totals needed to estimate possessions
// and derive the advanced rating metrics.
type BoxTotals struct {
	Points              float64
	FieldGoalsMade      float64
	FieldGoalsAttempted float64
	ThreePointersMade   float64
	FreeThrowsAttempted float64
	ReboundsOffensive   float64
	ReboundsDefensive   float64
	Assists             float64
	Steals              float64
	Blocks              float64
	Turnovers           float64
}

// Possessions estimates possessions used: FGA - ORB + TOV + 0.44*FTA,
// floored at zero.
func (b *BoxTotals) Possessions() float64 {
	poss := b.FieldGoalsAttempted - b.ReboundsOffensive + b.Turnovers + 0.44*b.FreeThrowsAttempted
	if poss < 0 {
		return 0
	}
	return poss
}
