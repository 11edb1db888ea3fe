package features

import (
	"time"

	"nbamodel/pipeline/internal/models"
)

// h2hLookback is how many prior meetings feed the head-to-head block
const h2hLookback = 5

// MatchupCalculator derives the game-level comparison features for a single
// fixture from data strictly preceding its date. It reuses the rolling
// Calculator's decay weighting for the recent-form block.
type MatchupCalculator struct {
	Calc *Calculator
}

// MatchupSnapshot holds one game's matchup features. nil means not
// computable from available history, exactly like the rolling Snapshot.
type MatchupSnapshot struct {
	H2HHomeWins             *int
	H2HAwayWins             *int
	H2HTotalGames           *int
	H2HAvgPointDifferential *float64
	H2HHomeAvgScore         *float64
	H2HAwayAvgScore         *float64

	PaceDifferential *float64
	TSDifferential   *float64
	EFGDifferential  *float64

	HomeWinPctRecent   *float64
	AwayWinPctRecent   *float64
	WinPctDifferential *float64

	SameConference  *bool
	SameDivision    *bool
	IsPlayoffs      *bool
	IsHomeAdvantage *int

	HomeRestDays         *int
	AwayRestDays         *int
	RestDaysDifferential *int

	HomeIsB2B *bool
	AwayIsB2B *bool

	HomeDaysUntilNext *int
	AwayDaysUntilNext *int
}

// Compute builds the matchup snapshot for one game. All history comes from
// the index, cut off strictly before the game date; the one permitted
// forward-looking field is each side's next scheduled game date.
func (mc *MatchupCalculator) Compute(idx *SeasonIndex, game *models.Game) *MatchupSnapshot {
	snap := &MatchupSnapshot{}
	asOf := game.GameDate

	homeLogs := idx.PastLogs(game.HomeTeamID, asOf)
	awayLogs := idx.PastLogs(game.AwayTeamID, asOf)

	mc.headToHead(snap, idx, game)
	mc.styleDifferentials(snap, homeLogs, awayLogs)
	mc.recentForm(snap, homeLogs, awayLogs)
	mc.context(snap, idx, game)
	mc.schedule(snap, idx, game, homeLogs, awayLogs)

	return snap
}

// headToHead aggregates the last meetings between the two sides, everything
// expressed from the home team's perspective.
func (mc *MatchupCalculator) headToHead(snap *MatchupSnapshot, idx *SeasonIndex, game *models.Game) {
	meetings := idx.HeadToHead(game.HomeTeamID, game.AwayTeamID, game.GameDate, h2hLookback)

	total := len(meetings)
	snap.H2HTotalGames = &total
	homeWins, awayWins := 0, 0
	snap.H2HHomeWins = &homeWins
	snap.H2HAwayWins = &awayWins
	if total == 0 {
		return
	}

	var diffSum, homeScoreSum, awayScoreSum float64
	scored := 0
	for _, m := range meetings {
		if m.WonBy(game.HomeTeamID) {
			homeWins++
		} else if m.WonBy(game.AwayTeamID) {
			awayWins++
		}
		if !m.HomeScore.Valid || !m.AwayScore.Valid {
			continue
		}
		homeScore := float64(m.HomeScore.Int32)
		awayScore := float64(m.AwayScore.Int32)
		// scores keyed to today's home team, whichever side it was then
		if m.HomeTeamID != game.HomeTeamID {
			homeScore, awayScore = awayScore, homeScore
		}
		diffSum += homeScore - awayScore
		homeScoreSum += homeScore
		awayScoreSum += awayScore
		scored++
	}

	if scored > 0 {
		snap.H2HAvgPointDifferential = round2(diffSum / float64(scored))
		snap.H2HHomeAvgScore = round2(homeScoreSum / float64(scored))
		snap.H2HAwayAvgScore = round2(awayScoreSum / float64(scored))
	}
}

// styleDifferentials compares the two sides' aggregate pace, true shooting
// and effective field goal rates over the mid-window lookback.
func (mc *MatchupCalculator) styleDifferentials(snap *MatchupSnapshot, homeLogs, awayLogs []GameLog) {
	homePace, homeTS, homeEFG := aggregateStyle(window(homeLogs, mc.Calc.MidWindow))
	awayPace, awayTS, awayEFG := aggregateStyle(window(awayLogs, mc.Calc.MidWindow))

	snap.PaceDifferential = diff(homePace, awayPace)
	snap.TSDifferential = diff(homeTS, awayTS)
	snap.EFGDifferential = diff(homeEFG, awayEFG)
}

// aggregateStyle derives pace/TS%/eFG% from pooled box score totals rather
// than per-game averages, so high-volume games weigh proportionally.
func aggregateStyle(logs []GameLog) (pace, ts, efg *float64) {
	var points, possessions, fga, fta, fgm, threeMade float64
	boxed := 0
	for _, l := range logs {
		if l.Box == nil {
			continue
		}
		boxed++
		points += l.Box.Points
		possessions += l.Box.Possessions()
		fga += l.Box.FieldGoalsAttempted
		fta += l.Box.FreeThrowsAttempted
		fgm += l.Box.FieldGoalsMade
		threeMade += l.Box.ThreePointersMade
	}
	if boxed < minAdvancedGames {
		return nil, nil, nil
	}

	pace = round2(possessions / float64(boxed))
	if denom := 2 * (fga + 0.44*fta); denom > 0 {
		ts = round2(points / denom * 100)
	}
	if fga > 0 {
		efg = round2((fgm + 0.5*threeMade) / fga * 100)
	}
	return pace, ts, efg
}

func (mc *MatchupCalculator) recentForm(snap *MatchupSnapshot, homeLogs, awayLogs []GameLog) {
	snap.HomeWinPctRecent = mc.formWinPct(homeLogs)
	snap.AwayWinPctRecent = mc.formWinPct(awayLogs)
	snap.WinPctDifferential = diff(snap.HomeWinPctRecent, snap.AwayWinPctRecent)
}

// formWinPct is the decay-weighted win rate over the mid-window lookback,
// scaled to a percentage.
func (mc *MatchupCalculator) formWinPct(logs []GameLog) *float64 {
	recent := window(logs, mc.Calc.MidWindow)
	if len(recent) == 0 {
		return nil
	}
	weights := mc.Calc.Weights(len(recent))
	return scale(weightedMean(winValues(recent), weights), 100)
}

func (mc *MatchupCalculator) context(snap *MatchupSnapshot, idx *SeasonIndex, game *models.Game) {
	home := idx.Team(game.HomeTeamID)
	away := idx.Team(game.AwayTeamID)
	if home != nil && away != nil {
		if same, ok := home.SameConference(away); ok {
			snap.SameConference = &same
		}
		if same, ok := home.SameDivision(away); ok {
			snap.SameDivision = &same
		}
	}

	playoffs := game.IsPlayoffs()
	snap.IsPlayoffs = &playoffs

	advantage := 1
	snap.IsHomeAdvantage = &advantage
}

func (mc *MatchupCalculator) schedule(snap *MatchupSnapshot, idx *SeasonIndex, game *models.Game, homeLogs, awayLogs []GameLog) {
	snap.HomeRestDays, snap.HomeIsB2B = restAndB2B(homeLogs, game.GameDate)
	snap.AwayRestDays, snap.AwayIsB2B = restAndB2B(awayLogs, game.GameDate)
	if snap.HomeRestDays != nil && snap.AwayRestDays != nil {
		d := *snap.HomeRestDays - *snap.AwayRestDays
		snap.RestDaysDifferential = &d
	}

	snap.HomeDaysUntilNext = daysUntilNext(idx, game.HomeTeamID, game.GameDate)
	snap.AwayDaysUntilNext = daysUntilNext(idx, game.AwayTeamID, game.GameDate)
}

func restAndB2B(logs []GameLog, asOf time.Time) (*int, *bool) {
	if len(logs) == 0 {
		return nil, nil
	}
	rest := daysBetween(logs[0].Date, asOf)
	b2b := rest <= 1
	return &rest, &b2b
}

func daysUntilNext(idx *SeasonIndex, teamID string, after time.Time) *int {
	next := idx.NextGameDate(teamID, after)
	if next == nil {
		return nil
	}
	days := daysBetween(after, *next)
	return &days
}

func diff(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	return round2(*a - *b)
}
