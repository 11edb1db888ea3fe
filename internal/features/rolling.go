package features

import (
	"math"
	"sort"
	"time"
)

// Calculator computes decay-weighted rolling aggregates over a team's past
// games. It is pure: all inputs arrive as arguments, all outputs are returned,
// and nil marks "not computable" throughout — a rate statistic with no valid
// observations stays nil and is never coerced to zero.
//
// The weight of the game at recency rank i (0 = most recent) is exp(-DecayRate*i).
type Calculator struct {
	DecayRate   float64
	ShortWindow int
	MidWindow   int
	LongWindow  int
}

// minAdvancedGames is the minimum number of full box scores required before
// the possession-based advanced metrics are considered reliable.
const minAdvancedGames = 3

// WindowAggregates holds the decay-weighted means for one window. The long
// window persists only the Points/PointsAllowed/FGPct/ThreePct/WinPct subset.
type WindowAggregates struct {
	Points        *float64
	PointsAllowed *float64
	FGPct         *float64
	ThreePct      *float64
	WinPct        *float64

	FTPct     *float64
	Rebounds  *float64
	Assists   *float64
	Turnovers *float64
	Steals    *float64
	Blocks    *float64
}

// Snapshot is the full rolling feature set for one team as of one date.
// A team with no tracked history yields the zero value: every field nil.
type Snapshot struct {
	Short WindowAggregates
	Mid   WindowAggregates
	Long  WindowAggregates

	// Advanced metrics, fixed mid-window lookback
	OffensiveRating *float64
	DefensiveRating *float64
	NetRating       *float64
	Pace            *float64
	EFGPct          *float64
	TSPct           *float64
	TOVPct          *float64

	OffensiveReboundRate *float64
	DefensiveReboundRate *float64
	AssistRate           *float64
	StealRate            *float64
	BlockRate            *float64

	AvgPointDifferential *float64
	AvgPointsFor         *float64
	AvgPointsAgainst     *float64

	WinStreak  *int
	LossStreak *int

	DaysRest         *int
	IsBackToBack     *bool
	GamesInLast7Days *int

	HomeWinPct *float64
	AwayWinPct *float64
}

// Compute builds the rolling snapshot from a team's past games. Logs may
// arrive in any order; only games dated strictly before asOf may be passed
// in — the calculator does not re-check the cutoff.
func (c *Calculator) Compute(logs []GameLog, asOf time.Time) *Snapshot {
	snap := &Snapshot{}
	if len(logs) == 0 {
		return snap
	}

	// Most recent first; weights are a function of recency rank
	sorted := make([]GameLog, len(logs))
	copy(sorted, logs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})

	short := window(sorted, c.ShortWindow)
	mid := window(sorted, c.MidWindow)
	long := window(sorted, c.LongWindow)

	snap.Short = c.windowAggregates(short, true)
	snap.Mid = c.windowAggregates(mid, true)
	snap.Long = c.windowAggregates(long, false)

	c.advancedMetrics(snap, mid)
	c.scoringSummary(snap, mid)

	winStreak, lossStreak := streaks(sorted)
	snap.WinStreak = &winStreak
	snap.LossStreak = &lossStreak

	daysRest := daysBetween(sorted[0].Date, asOf)
	b2b := daysRest <= 1
	snap.DaysRest = &daysRest
	snap.IsBackToBack = &b2b

	weekAgo := asOf.AddDate(0, 0, -7)
	gamesLastWeek := 0
	for _, l := range sorted {
		if !l.Date.Before(weekAgo) {
			gamesLastWeek++
		}
	}
	snap.GamesInLast7Days = &gamesLastWeek

	snap.HomeWinPct = c.splitWinPct(sorted, true)
	snap.AwayWinPct = c.splitWinPct(sorted, false)

	return snap
}

// Weights returns the decay weights for n games, rank 0 first
func (c *Calculator) Weights(n int) []float64 {
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = math.Exp(-c.DecayRate * float64(i))
	}
	return weights
}

func window(logs []GameLog, n int) []GameLog {
	if len(logs) > n {
		return logs[:n]
	}
	return logs
}

func (c *Calculator) windowAggregates(logs []GameLog, full bool) WindowAggregates {
	if len(logs) == 0 {
		return WindowAggregates{}
	}

	weights := c.Weights(len(logs))

	agg := WindowAggregates{
		Points:        weightedMean(pluck(logs, func(l GameLog) *float64 { return l.Points }), weights),
		PointsAllowed: weightedMean(pluck(logs, func(l GameLog) *float64 { return l.PointsAllowed }), weights),
		FGPct:         weightedMean(pluck(logs, func(l GameLog) *float64 { return l.FGPct }), weights),
		ThreePct:      weightedMean(pluck(logs, func(l GameLog) *float64 { return l.ThreePct }), weights),
		WinPct:        scale(weightedMean(winValues(logs), weights), 100),
	}

	if full {
		agg.FTPct = weightedMean(pluck(logs, func(l GameLog) *float64 { return l.FTPct }), weights)
		agg.Rebounds = weightedMean(pluck(logs, func(l GameLog) *float64 { return l.Rebounds }), weights)
		agg.Assists = weightedMean(pluck(logs, func(l GameLog) *float64 { return l.Assists }), weights)
		agg.Turnovers = weightedMean(pluck(logs, func(l GameLog) *float64 { return l.Turnovers }), weights)
		agg.Steals = weightedMean(pluck(logs, func(l GameLog) *float64 { return l.Steals }), weights)
		agg.Blocks = weightedMean(pluck(logs, func(l GameLog) *float64 { return l.Blocks }), weights)
	}

	return agg
}

// advancedMetrics derives the possession-based ratings from the mid-window
// logs that carry a full box score. Fewer than minAdvancedGames such games
// leaves every advanced metric nil.
func (c *Calculator) advancedMetrics(snap *Snapshot, midLogs []GameLog) {
	weights := c.Weights(len(midLogs))
	snap.TSPct = weightedMean(pluck(midLogs, func(l GameLog) *float64 { return l.TSPct }), weights)
	snap.EFGPct = weightedMean(pluck(midLogs, func(l GameLog) *float64 { return l.EFGPct }), weights)

	var boxed []GameLog
	for _, l := range midLogs {
		if l.Box != nil {
			boxed = append(boxed, l)
		}
	}
	if len(boxed) < minAdvancedGames {
		return
	}

	var points, possessions float64
	var assists, fgMade, turnovers, steals, blocks float64
	var orb, drb float64
	for _, l := range boxed {
		points += l.Box.Points
		possessions += l.Box.Possessions()
		assists += l.Box.Assists
		fgMade += l.Box.FieldGoalsMade
		turnovers += l.Box.Turnovers
		steals += l.Box.Steals
		blocks += l.Box.Blocks
		orb += l.Box.ReboundsOffensive
		drb += l.Box.ReboundsDefensive
	}

	if possessions > 0 {
		snap.OffensiveRating = round2(points / possessions * 100)
		snap.TOVPct = round2(turnovers / possessions * 100)
	}
	snap.Pace = round2(possessions / float64(len(boxed)))
	if fgMade > 0 {
		snap.AssistRate = round2(assists / fgMade * 100)
	}

	// Defensive metrics need the opponents' totals
	var oppPoints, oppPossessions float64
	var oppORB, oppDRB float64
	oppSeen := false
	for _, l := range boxed {
		if l.OppBox == nil {
			continue
		}
		oppSeen = true
		oppPoints += l.OppBox.Points
		oppPossessions += l.OppBox.Possessions()
		oppORB += l.OppBox.ReboundsOffensive
		oppDRB += l.OppBox.ReboundsDefensive
	}

	if oppSeen && oppPossessions > 0 {
		snap.DefensiveRating = round2(oppPoints / oppPossessions * 100)
		snap.StealRate = round2(steals / oppPossessions * 100)
		snap.BlockRate = round2(blocks / oppPossessions * 100)
	}
	if snap.OffensiveRating != nil && snap.DefensiveRating != nil {
		snap.NetRating = round2(*snap.OffensiveRating - *snap.DefensiveRating)
	}

	if available := orb + oppDRB; available > 0 {
		snap.OffensiveReboundRate = round2(orb / available * 100)
	}
	if available := drb + oppORB; available > 0 {
		snap.DefensiveReboundRate = round2(drb / available * 100)
	}
}

func (c *Calculator) scoringSummary(snap *Snapshot, midLogs []GameLog) {
	if len(midLogs) == 0 {
		return
	}
	weights := c.Weights(len(midLogs))

	diffs := make([]*float64, len(midLogs))
	for i, l := range midLogs {
		if l.Points != nil && l.PointsAllowed != nil {
			d := *l.Points - *l.PointsAllowed
			diffs[i] = &d
		}
	}

	snap.AvgPointDifferential = weightedMean(diffs, weights)
	snap.AvgPointsFor = weightedMean(pluck(midLogs, func(l GameLog) *float64 { return l.Points }), weights)
	snap.AvgPointsAgainst = weightedMean(pluck(midLogs, func(l GameLog) *float64 { return l.PointsAllowed }), weights)
}

// splitWinPct computes the decay-weighted win rate over only home or only
// away games, with weights re-ranked within the split.
func (c *Calculator) splitWinPct(logs []GameLog, home bool) *float64 {
	var split []GameLog
	for _, l := range logs {
		if l.IsHome == home {
			split = append(split, l)
		}
	}
	if len(split) == 0 {
		return nil
	}
	weights := c.Weights(len(split))
	return scale(weightedMean(winValues(split), weights), 100)
}

// streaks counts consecutive most-recent games with the same outcome.
// A sign change resets the opposite streak to zero.
func streaks(logs []GameLog) (winStreak, lossStreak int) {
	if len(logs) == 0 {
		return 0, 0
	}
	run := 0
	for _, l := range logs {
		if l.Won != logs[0].Won {
			break
		}
		run++
	}
	if logs[0].Won {
		return run, 0
	}
	return 0, run
}

// weightedMean computes sum(v_i*w_i)/sum(w_i) over non-nil values only.
// All-nil input yields nil.
func weightedMean(values []*float64, weights []float64) *float64 {
	var sum, weightSum float64
	for i, v := range values {
		if v == nil {
			continue
		}
		sum += *v * weights[i]
		weightSum += weights[i]
	}
	if weightSum == 0 {
		return nil
	}
	mean := sum / weightSum
	return &mean
}

func pluck(logs []GameLog, get func(GameLog) *float64) []*float64 {
	values := make([]*float64, len(logs))
	for i, l := range logs {
		values[i] = get(l)
	}
	return values
}

func winValues(logs []GameLog) []*float64 {
	values := make([]*float64, len(logs))
	for i, l := range logs {
		v := 0.0
		if l.Won {
			v = 1.0
		}
		values[i] = &v
	}
	return values
}

func scale(v *float64, factor float64) *float64 {
	if v == nil {
		return nil
	}
	scaled := *v * factor
	return &scaled
}

func round2(v float64) *float64 {
	rounded := math.Round(v*100) / 100
	return &rounded
}

func daysBetween(from, to time.Time) int {
	days := int(to.Sub(from).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
