package features

import (
	"sort"
	"time"

	"nbamodel/pipeline/internal/models"
)

// SeasonIndex is the per-run lookup object the calculators read from. It is
// built once from a season's games, box scores, teams and injury reports,
// then threaded through every computation; there is no lazy global state.
// All lookups that feed features enforce the no-leakage cutoff: only games
// dated strictly before the requested date are visible.
type SeasonIndex struct {
	season      string
	teams       map[string]*models.Team
	games       []*models.Game
	gamesByTeam map[string][]*models.Game
	stats       map[string]*models.TeamGameStats
	injuries    map[string][]*models.PlayerInjury
}

func statsKey(gameID, teamID string) string {
	return gameID + "|" + teamID
}

// NewSeasonIndex builds the index. Games are indexed chronologically per
// team; box scores are keyed by (game, team); injury reports are grouped
// per team in report-date order.
func NewSeasonIndex(
	season string,
	teams []*models.Team,
	games []*models.Game,
	stats []*models.TeamGameStats,
	injuries []*models.PlayerInjury,
) *SeasonIndex {
	idx := &SeasonIndex{
		season:      season,
		teams:       make(map[string]*models.Team, len(teams)),
		games:       make([]*models.Game, len(games)),
		gamesByTeam: make(map[string][]*models.Game),
		stats:       make(map[string]*models.TeamGameStats, len(stats)),
		injuries:    make(map[string][]*models.PlayerInjury),
	}

	for _, t := range teams {
		idx.teams[t.TeamID] = t
	}

	copy(idx.games, games)
	sort.SliceStable(idx.games, func(i, j int) bool {
		return idx.games[i].GameDate.Before(idx.games[j].GameDate)
	})

	for _, g := range idx.games {
		idx.gamesByTeam[g.HomeTeamID] = append(idx.gamesByTeam[g.HomeTeamID], g)
		idx.gamesByTeam[g.AwayTeamID] = append(idx.gamesByTeam[g.AwayTeamID], g)
	}

	for _, s := range stats {
		idx.stats[statsKey(s.GameID, s.TeamID)] = s
	}

	for _, inj := range injuries {
		idx.injuries[inj.TeamID] = append(idx.injuries[inj.TeamID], inj)
	}
	for teamID := range idx.injuries {
		list := idx.injuries[teamID]
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].ReportDate.Before(list[j].ReportDate)
		})
	}

	return idx
}

// Season returns the season identifier the index was built for
func (idx *SeasonIndex) Season() string {
	return idx.season
}

// Team looks up a team by id; nil when unknown
func (idx *SeasonIndex) Team(teamID string) *models.Team {
	return idx.teams[teamID]
}

// TeamIDs returns every team id appearing in the indexed games
func (idx *SeasonIndex) TeamIDs() []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, g := range idx.games {
		for _, id := range []string{g.HomeTeamID, g.AwayTeamID} {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	sort.Strings(ids)
	return ids
}

// Games returns all indexed games in chronological order
func (idx *SeasonIndex) Games() []*models.Game {
	return idx.games
}

// GamesFor returns a team's games in chronological order
func (idx *SeasonIndex) GamesFor(teamID string) []*models.Game {
	return idx.gamesByTeam[teamID]
}

// Stats looks up a team's box score for a game; nil when not collected
func (idx *SeasonIndex) Stats(gameID, teamID string) *models.TeamGameStats {
	return idx.stats[statsKey(gameID, teamID)]
}

// PastLogs returns the team's finished games dated strictly before the
// cutoff, most recent first. Games with a collected box score carry the
// full stat set; games known only by final score carry points and outcome
// with every other stat nil.
func (idx *SeasonIndex) PastLogs(teamID string, before time.Time) []GameLog {
	var logs []GameLog
	for _, g := range idx.gamesByTeam[teamID] {
		if !g.GameDate.Before(before) {
			continue
		}
		if !g.IsFinished() || !g.HomeScore.Valid || !g.AwayScore.Valid {
			continue
		}

		opponentID, isHome, _ := g.Opponent(teamID)
		logEntry := GameLog{
			GameID: g.GameID,
			Date:   g.GameDate,
			IsHome: isHome,
			Won:    g.WonBy(teamID),
		}

		points := float64(g.HomeScore.Int32)
		pointsAllowed := float64(g.AwayScore.Int32)
		if !isHome {
			points, pointsAllowed = pointsAllowed, points
		}
		logEntry.Points = &points
		logEntry.PointsAllowed = &pointsAllowed

		if s := idx.Stats(g.GameID, teamID); s != nil {
			fillLogFromStats(&logEntry, s)
		}
		if opp := idx.Stats(g.GameID, opponentID); opp != nil {
			logEntry.OppBox = boxTotals(opp)
		}

		logs = append(logs, logEntry)
	}

	// Most recent first
	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].Date.After(logs[j].Date)
	})

	return logs
}

func fillLogFromStats(logEntry *GameLog, s *models.TeamGameStats) {
	fgPct := s.FieldGoalPercentage
	threePct := s.ThreePointPercentage
	ftPct := s.FreeThrowPercentage
	rebounds := float64(s.ReboundsTotal)
	assists := float64(s.Assists)
	turnovers := float64(s.Turnovers)
	steals := float64(s.Steals)
	blocks := float64(s.Blocks)

	logEntry.FGPct = &fgPct
	logEntry.ThreePct = &threePct
	logEntry.FTPct = &ftPct
	logEntry.Rebounds = &rebounds
	logEntry.Assists = &assists
	logEntry.Turnovers = &turnovers
	logEntry.Steals = &steals
	logEntry.Blocks = &blocks

	if s.TrueShootingPercentage.Valid {
		ts := s.TrueShootingPercentage.Float64
		logEntry.TSPct = &ts
	}
	if s.EffectiveFGPercentage.Valid {
		efg := s.EffectiveFGPercentage.Float64
		logEntry.EFGPct = &efg
	}

	logEntry.Box = boxTotals(s)
}

func boxTotals(s *models.TeamGameStats) *BoxTotals {
	return &BoxTotals{
		Points:              float64(s.Points),
		FieldGoalsMade:      float64(s.FieldGoalsMade),
		FieldGoalsAttempted: float64(s.FieldGoalsAttempted),
		ThreePointersMade:   float64(s.ThreePointersMade),
		FreeThrowsAttempted: float64(s.FreeThrowsAttempted),
		ReboundsOffensive:   float64(s.ReboundsOffensive),
		ReboundsDefensive:   float64(s.ReboundsDefensive),
		Assists:             float64(s.Assists),
		Steals:              float64(s.Steals),
		Blocks:              float64(s.Blocks),
		Turnovers:           float64(s.Turnovers),
	}
}

// HeadToHead returns the most recent n finished meetings between the two
// teams dated strictly before the cutoff, most recent first.
func (idx *SeasonIndex) HeadToHead(teamA, teamB string, before time.Time, n int) []*models.Game {
	var meetings []*models.Game
	for _, g := range idx.gamesByTeam[teamA] {
		if !g.GameDate.Before(before) || !g.IsFinished() {
			continue
		}
		if (g.HomeTeamID == teamA && g.AwayTeamID == teamB) ||
			(g.HomeTeamID == teamB && g.AwayTeamID == teamA) {
			meetings = append(meetings, g)
		}
	}

	sort.SliceStable(meetings, func(i, j int) bool {
		return meetings[i].GameDate.After(meetings[j].GameDate)
	})

	if len(meetings) > n {
		meetings = meetings[:n]
	}
	return meetings
}

// NextGameDate returns the date of the team's next scheduled game strictly
// after the given date, or nil when none is on the calendar.
func (idx *SeasonIndex) NextGameDate(teamID string, after time.Time) *time.Time {
	for _, g := range idx.gamesByTeam[teamID] {
		if g.GameDate.After(after) {
			d := g.GameDate
			return &d
		}
	}
	return nil
}

// InjuryCounts aggregates the latest injury report per player within the
// week before asOf. ok is false when the team has no recent reports, which
// the caller persists as null rather than zero.
func (idx *SeasonIndex) InjuryCounts(teamID string, asOf time.Time) (out, questionable int, ok bool) {
	reports := idx.injuries[teamID]
	if len(reports) == 0 {
		return 0, 0, false
	}

	cutoff := asOf.AddDate(0, 0, -7)
	latest := make(map[string]string)
	for _, r := range reports {
		if !r.ReportDate.Before(asOf) || r.ReportDate.Before(cutoff) {
			continue
		}
		// reports are sorted ascending, so the last write wins
		latest[r.PlayerID] = r.Status
	}

	if len(latest) == 0 {
		return 0, 0, false
	}

	for _, status := range latest {
		switch status {
		case models.InjuryStatusOut:
			out++
		case models.InjuryStatusQuestionable:
			questionable++
		}
	}
	return out, questionable, true
}
