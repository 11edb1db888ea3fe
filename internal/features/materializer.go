package features

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"nbamodel/pipeline/internal/config"
	"nbamodel/pipeline/internal/metrics"
	"nbamodel/pipeline/internal/models"
	"nbamodel/pipeline/internal/repository"
)

// Materializer batch-computes the rolling and matchup feature tables for a
// season. Runs are idempotent: rows already materialized are skipped unless
// a full refresh is requested, and a per-row failure is recorded without
// aborting the run.
type Materializer struct {
	db          *repository.Database
	calc        *Calculator
	matchup     *MatchupCalculator
	batchSize   int
	parallelism int
}

// RunStats summarizes one materialization run
type RunStats struct {
	GamesProcessed    int
	RollingCreated    int
	RollingSkipped    int
	TargetsBackfilled int
	MatchupCreated    int
	MatchupSkipped    int
	Errors            []RowError
}

// RowError records a single row that failed without stopping the run
type RowError struct {
	GameID string
	TeamID string
	Stage  string
	Err    error
}

func (e RowError) Error() string {
	return fmt.Sprintf("%s: game %s team %s: %v", e.Stage, e.GameID, e.TeamID, e.Err)
}

// NewMaterializer creates a materializer wired to the repository layer
func NewMaterializer(db *repository.Database, cfg *config.Config) *Materializer {
	calc := &Calculator{
		DecayRate:   cfg.RollingDecayRate,
		ShortWindow: cfg.RollingWindowShort,
		MidWindow:   cfg.RollingWindowMid,
		LongWindow:  cfg.RollingWindowLong,
	}
	return &Materializer{
		db:          db,
		calc:        calc,
		matchup:     &MatchupCalculator{Calc: calc},
		batchSize:   cfg.BatchSize,
		parallelism: cfg.MaterializeParallelism,
	}
}

// Run materializes the season's feature rows. When fullRefresh is false,
// rows that already exist are left untouched except for target-label
// backfill on games that have since finished.
func (m *Materializer) Run(ctx context.Context, season string, fullRefresh bool) (*RunStats, error) {
	start := time.Now()
	stats := &RunStats{}

	idx, err := m.loadIndex(ctx, season)
	if err != nil {
		metrics.RecordMaterializeRun("error", time.Since(start).Seconds())
		return nil, err
	}
	stats.GamesProcessed = len(idx.Games())

	existingRolling := map[string]struct{}{}
	existingMatchup := map[string]struct{}{}
	if !fullRefresh {
		if existingRolling, err = m.db.RollingFeatures.ExistingKeys(ctx, season); err != nil {
			metrics.RecordMaterializeRun("error", time.Since(start).Seconds())
			return nil, fmt.Errorf("failed to load existing rolling keys: %w", err)
		}
		if existingMatchup, err = m.db.MatchupFeatures.ExistingGameIDs(ctx, season); err != nil {
			metrics.RecordMaterializeRun("error", time.Since(start).Seconds())
			return nil, fmt.Errorf("failed to load existing matchup keys: %w", err)
		}
	}

	rollingRows := m.buildRollingRows(ctx, idx, existingRolling, stats)
	m.upsertRolling(ctx, rollingRows, stats)

	if !fullRefresh {
		m.backfillTargets(ctx, idx, existingRolling, stats)
	}

	matchupRows := m.buildMatchupRows(idx, existingMatchup, stats)
	m.upsertMatchup(ctx, matchupRows, stats)

	elapsed := time.Since(start)
	status := "success"
	if len(stats.Errors) > 0 {
		status = "partial"
	}
	metrics.RecordMaterializeRun(status, elapsed.Seconds())

	log.Info().
		Str("season", season).
		Bool("full_refresh", fullRefresh).
		Int("games", stats.GamesProcessed).
		Int("rolling_created", stats.RollingCreated).
		Int("rolling_skipped", stats.RollingSkipped).
		Int("targets_backfilled", stats.TargetsBackfilled).
		Int("matchup_created", stats.MatchupCreated).
		Int("matchup_skipped", stats.MatchupSkipped).
		Int("row_errors", len(stats.Errors)).
		Dur("elapsed", elapsed).
		Msg("Materialization run complete")

	return stats, nil
}

// loadIndex pulls the season's raw data. Missing injury reports degrade the
// injury features to null rather than failing the run.
func (m *Materializer) loadIndex(ctx context.Context, season string) (*SeasonIndex, error) {
	teams, err := m.db.Teams.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams: %w", err)
	}

	games, err := m.db.Games.ListBySeason(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("failed to load games for season %s: %w", season, err)
	}
	if len(games) == 0 {
		return nil, fmt.Errorf("no games found for season %s", season)
	}

	boxScores, err := m.db.Stats.ListBySeason(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("failed to load box scores for season %s: %w", season, err)
	}

	first := games[0].GameDate
	last := games[0].GameDate
	for _, g := range games {
		if g.GameDate.Before(first) {
			first = g.GameDate
		}
		if g.GameDate.After(last) {
			last = g.GameDate
		}
	}

	injuries, err := m.db.Injuries.ListBetween(ctx, first.AddDate(0, 0, -7), last)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load injury reports, injury features will be null")
		metrics.RecordError("materializer", "injury_load")
		injuries = nil
	}

	log.Info().
		Str("season", season).
		Int("teams", len(teams)).
		Int("games", len(games)).
		Int("box_scores", len(boxScores)).
		Int("injury_reports", len(injuries)).
		Msg("Season data loaded")

	return NewSeasonIndex(season, teams, games, boxScores, injuries), nil
}

// buildRollingRows computes a team's rows concurrently, one worker per team.
// Computation is pure; nothing here touches the database.
func (m *Materializer) buildRollingRows(ctx context.Context, idx *SeasonIndex, existing map[string]struct{}, stats *RunStats) []*models.TeamRollingFeatures {
	var mu sync.Mutex
	var rows []*models.TeamRollingFeatures

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(m.parallelism)

	for _, teamID := range idx.TeamIDs() {
		teamID := teamID
		g.Go(func() error {
			teamRows, skipped := m.buildTeamRows(idx, teamID, existing)
			mu.Lock()
			rows = append(rows, teamRows...)
			stats.RollingSkipped += skipped
			mu.Unlock()
			return nil
		})
	}

	// Workers never return errors; the group only bounds concurrency
	_ = g.Wait()
	return rows
}

// buildTeamRows computes one rolling row per game the team appears in,
// skipping keys already materialized.
func (m *Materializer) buildTeamRows(idx *SeasonIndex, teamID string, existing map[string]struct{}) ([]*models.TeamRollingFeatures, int) {
	var rows []*models.TeamRollingFeatures
	skipped := 0

	for _, game := range idx.GamesFor(teamID) {
		if _, ok := existing[repository.RollingKey(game.GameID, teamID)]; ok {
			skipped++
			continue
		}

		logs := idx.PastLogs(teamID, game.GameDate)
		snap := m.calc.Compute(logs, game.GameDate)
		rows = append(rows, m.rollingRow(idx, game, teamID, snap))
	}

	return rows, skipped
}

func (m *Materializer) rollingRow(idx *SeasonIndex, game *models.Game, teamID string, snap *Snapshot) *models.TeamRollingFeatures {
	_, isHome, _ := game.Opponent(teamID)

	row := &models.TeamRollingFeatures{
		GameID:   game.GameID,
		TeamID:   teamID,
		IsHome:   isHome,
		GameDate: game.GameDate,
		Season:   game.Season,

		L5Points:        nf(snap.Short.Points),
		L5PointsAllowed: nf(snap.Short.PointsAllowed),
		L5FGPct:         nf(snap.Short.FGPct),
		L5ThreePct:      nf(snap.Short.ThreePct),
		L5FTPct:         nf(snap.Short.FTPct),
		L5Rebounds:      nf(snap.Short.Rebounds),
		L5Assists:       nf(snap.Short.Assists),
		L5Turnovers:     nf(snap.Short.Turnovers),
		L5Steals:        nf(snap.Short.Steals),
		L5Blocks:        nf(snap.Short.Blocks),
		L5WinPct:        nf(snap.Short.WinPct),

		L10Points:        nf(snap.Mid.Points),
		L10PointsAllowed: nf(snap.Mid.PointsAllowed),
		L10FGPct:         nf(snap.Mid.FGPct),
		L10ThreePct:      nf(snap.Mid.ThreePct),
		L10FTPct:         nf(snap.Mid.FTPct),
		L10Rebounds:      nf(snap.Mid.Rebounds),
		L10Assists:       nf(snap.Mid.Assists),
		L10Turnovers:     nf(snap.Mid.Turnovers),
		L10Steals:        nf(snap.Mid.Steals),
		L10Blocks:        nf(snap.Mid.Blocks),
		L10WinPct:        nf(snap.Mid.WinPct),

		L20Points:        nf(snap.Long.Points),
		L20PointsAllowed: nf(snap.Long.PointsAllowed),
		L20FGPct:         nf(snap.Long.FGPct),
		L20ThreePct:      nf(snap.Long.ThreePct),
		L20WinPct:        nf(snap.Long.WinPct),

		OffensiveRating: nf(snap.OffensiveRating),
		DefensiveRating: nf(snap.DefensiveRating),
		NetRating:       nf(snap.NetRating),
		Pace:            nf(snap.Pace),
		EFGPct:          nf(snap.EFGPct),
		TSPct:           nf(snap.TSPct),
		TOVPct:          nf(snap.TOVPct),

		OffensiveReboundRate: nf(snap.OffensiveReboundRate),
		DefensiveReboundRate: nf(snap.DefensiveReboundRate),
		AssistRate:           nf(snap.AssistRate),
		StealRate:            nf(snap.StealRate),
		BlockRate:            nf(snap.BlockRate),

		AvgPointDifferential: nf(snap.AvgPointDifferential),
		AvgPointsFor:         nf(snap.AvgPointsFor),
		AvgPointsAgainst:     nf(snap.AvgPointsAgainst),

		WinStreak:  ni(snap.WinStreak),
		LossStreak: ni(snap.LossStreak),

		DaysRest:         ni(snap.DaysRest),
		IsBackToBack:     nb(snap.IsBackToBack),
		GamesInLast7Days: ni(snap.GamesInLast7Days),

		HomeWinPct: nf(snap.HomeWinPct),
		AwayWinPct: nf(snap.AwayWinPct),
	}

	if out, questionable, ok := idx.InjuryCounts(teamID, game.GameDate); ok {
		row.PlayersOut = sql.NullInt32{Int32: int32(out), Valid: true}
		row.PlayersQuestionable = sql.NullInt32{Int32: int32(questionable), Valid: true}
		severity := math.Min(1, (float64(out)+0.5*float64(questionable))/10)
		row.InjurySeverityScore = sql.NullFloat64{Float64: severity, Valid: true}
	}

	// Target labels go in immediately when the outcome is already known
	if game.IsFinished() && game.HomeScore.Valid && game.AwayScore.Valid {
		row.WonGame = sql.NullBool{Bool: game.WonBy(teamID), Valid: true}
		diff := game.HomeScore.Int32 - game.AwayScore.Int32
		if !isHome {
			diff = -diff
		}
		row.PointDifferential = sql.NullInt32{Int32: diff, Valid: true}
	}

	return row
}

// upsertRolling writes rows in batches; a failed batch is retried row by
// row so one bad row costs one row.
func (m *Materializer) upsertRolling(ctx context.Context, rows []*models.TeamRollingFeatures, stats *RunStats) {
	for start := 0; start < len(rows); start += m.batchSize {
		end := start + m.batchSize
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		if err := m.db.RollingFeatures.UpsertBatch(ctx, chunk); err == nil {
			stats.RollingCreated += len(chunk)
			continue
		}

		for _, row := range chunk {
			if err := m.db.RollingFeatures.Upsert(ctx, row); err != nil {
				stats.Errors = append(stats.Errors, RowError{
					GameID: row.GameID, TeamID: row.TeamID, Stage: "rolling_upsert", Err: err,
				})
				metrics.RecordRowError("rolling_upsert")
				log.Error().Err(err).
					Str("game_id", row.GameID).
					Str("team_id", row.TeamID).
					Msg("Failed to upsert rolling features row")
				continue
			}
			stats.RollingCreated++
		}
	}
	metrics.RecordFeatureRows("team_rolling_features", "upserted", stats.RollingCreated)
	metrics.RecordFeatureRows("team_rolling_features", "skipped", stats.RollingSkipped)
}

// backfillTargets fills labels on previously materialized rows whose games
// have since finished. Only rows with a null won_game are touched.
func (m *Materializer) backfillTargets(ctx context.Context, idx *SeasonIndex, existing map[string]struct{}, stats *RunStats) {
	for _, game := range idx.Games() {
		if !game.IsFinished() || !game.HomeScore.Valid || !game.AwayScore.Valid {
			continue
		}

		diff := int(game.HomeScore.Int32 - game.AwayScore.Int32)
		for _, side := range []struct {
			teamID string
			diff   int
		}{
			{game.HomeTeamID, diff},
			{game.AwayTeamID, -diff},
		} {
			if _, ok := existing[repository.RollingKey(game.GameID, side.teamID)]; !ok {
				continue
			}
			updated, err := m.db.RollingFeatures.BackfillTargets(ctx, game.GameID, side.teamID, game.WonBy(side.teamID), side.diff)
			if err != nil {
				stats.Errors = append(stats.Errors, RowError{
					GameID: game.GameID, TeamID: side.teamID, Stage: "target_backfill", Err: err,
				})
				metrics.RecordRowError("target_backfill")
				continue
			}
			if updated {
				stats.TargetsBackfilled++
			}
		}
	}
	metrics.RecordFeatureRows("team_rolling_features", "backfilled", stats.TargetsBackfilled)
}

func (m *Materializer) buildMatchupRows(idx *SeasonIndex, existing map[string]struct{}, stats *RunStats) []*models.GameMatchupFeatures {
	var rows []*models.GameMatchupFeatures
	for _, game := range idx.Games() {
		if _, ok := existing[game.GameID]; ok {
			stats.MatchupSkipped++
			continue
		}
		snap := m.matchup.Compute(idx, game)
		rows = append(rows, matchupRow(game, snap))
	}
	return rows
}

func matchupRow(game *models.Game, snap *MatchupSnapshot) *models.GameMatchupFeatures {
	return &models.GameMatchupFeatures{
		GameID:     game.GameID,
		GameDate:   game.GameDate,
		Season:     game.Season,
		HomeTeamID: game.HomeTeamID,
		AwayTeamID: game.AwayTeamID,

		H2HHomeWins:             ni(snap.H2HHomeWins),
		H2HAwayWins:             ni(snap.H2HAwayWins),
		H2HTotalGames:           ni(snap.H2HTotalGames),
		H2HAvgPointDifferential: nf(snap.H2HAvgPointDifferential),
		H2HHomeAvgScore:         nf(snap.H2HHomeAvgScore),
		H2HAwayAvgScore:         nf(snap.H2HAwayAvgScore),

		PaceDifferential: nf(snap.PaceDifferential),
		TSDifferential:   nf(snap.TSDifferential),
		EFGDifferential:  nf(snap.EFGDifferential),

		HomeWinPctRecent:   nf(snap.HomeWinPctRecent),
		AwayWinPctRecent:   nf(snap.AwayWinPctRecent),
		WinPctDifferential: nf(snap.WinPctDifferential),

		SameConference:  nb(snap.SameConference),
		SameDivision:    nb(snap.SameDivision),
		IsPlayoffs:      nb(snap.IsPlayoffs),
		IsHomeAdvantage: ni(snap.IsHomeAdvantage),

		HomeRestDays:         ni(snap.HomeRestDays),
		AwayRestDays:         ni(snap.AwayRestDays),
		RestDaysDifferential: ni(snap.RestDaysDifferential),

		HomeIsB2B: nb(snap.HomeIsB2B),
		AwayIsB2B: nb(snap.AwayIsB2B),

		HomeDaysUntilNext: ni(snap.HomeDaysUntilNext),
		AwayDaysUntilNext: ni(snap.AwayDaysUntilNext),
	}
}

func (m *Materializer) upsertMatchup(ctx context.Context, rows []*models.GameMatchupFeatures, stats *RunStats) {
	for start := 0; start < len(rows); start += m.batchSize {
		end := start + m.batchSize
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		if err := m.db.MatchupFeatures.UpsertBatch(ctx, chunk); err == nil {
			stats.MatchupCreated += len(chunk)
			continue
		}

		for _, row := range chunk {
			if err := m.db.MatchupFeatures.Upsert(ctx, row); err != nil {
				stats.Errors = append(stats.Errors, RowError{
					GameID: row.GameID, Stage: "matchup_upsert", Err: err,
				})
				metrics.RecordRowError("matchup_upsert")
				log.Error().Err(err).
					Str("game_id", row.GameID).
					Msg("Failed to upsert matchup features row")
				continue
			}
			stats.MatchupCreated++
		}
	}
	metrics.RecordFeatureRows("game_matchup_features", "upserted", stats.MatchupCreated)
	metrics.RecordFeatureRows("game_matchup_features", "skipped", stats.MatchupSkipped)
}

func nf(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func ni(v *int) sql.NullInt32 {
	if v == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*v), Valid: true}
}

func nb(v *bool) sql.NullBool {
	if v == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *v, Valid: true}
}
