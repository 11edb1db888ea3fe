package repository

import (
	"context"
	"errors"
	"fmt"

	"nbamodel/pipeline/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// RollingFeaturesRepository handles the materialized per-(game, team)
// rolling feature rows
type RollingFeaturesRepository struct {
	db *Database
}

const rollingUpsertSQL = `
	INSERT INTO team_rolling_features (
		game_id, team_id, is_home, game_date, season,
		l5_points, l5_points_allowed, l5_fg_pct, l5_three_pct, l5_ft_pct,
		l5_rebounds, l5_assists, l5_turnovers, l5_steals, l5_blocks, l5_win_pct,
		l10_points, l10_points_allowed, l10_fg_pct, l10_three_pct, l10_ft_pct,
		l10_rebounds, l10_assists, l10_turnovers, l10_steals, l10_blocks, l10_win_pct,
		l20_points, l20_points_allowed, l20_fg_pct, l20_three_pct, l20_win_pct,
		offensive_rating, defensive_rating, net_rating, pace, efg_pct, ts_pct, tov_pct,
		offensive_rebound_rate, defensive_rebound_rate, assist_rate, steal_rate, block_rate,
		avg_point_differential, avg_points_for, avg_points_against,
		win_streak, loss_streak,
		players_out, players_questionable, injury_severity_score,
		days_rest, is_back_to_back, games_in_last_7_days,
		home_win_pct, away_win_pct,
		won_game, point_differential
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		$11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
		$21, $22, $23, $24, $25, $26, $27, $28, $29, $30,
		$31, $32, $33, $34, $35, $36, $37, $38, $39, $40,
		$41, $42, $43, $44, $45, $46, $47, $48, $49, $50,
		$51, $52, $53, $54, $55, $56, $57, $58, $59)
	ON CONFLICT (game_id, team_id) DO UPDATE SET
		is_home = EXCLUDED.is_home,
		game_date = EXCLUDED.game_date,
		season = EXCLUDED.season,
		l5_points = EXCLUDED.l5_points,
		l5_points_allowed = EXCLUDED.l5_points_allowed,
		l5_fg_pct = EXCLUDED.l5_fg_pct,
		l5_three_pct = EXCLUDED.l5_three_pct,
		l5_ft_pct = EXCLUDED.l5_ft_pct,
		l5_rebounds = EXCLUDED.l5_rebounds,
		l5_assists = EXCLUDED.l5_assists,
		l5_turnovers = EXCLUDED.l5_turnovers,
		l5_steals = EXCLUDED.l5_steals,
		l5_blocks = EXCLUDED.l5_blocks,
		l5_win_pct = EXCLUDED.l5_win_pct,
		l10_points = EXCLUDED.l10_points,
		l10_points_allowed = EXCLUDED.l10_points_allowed,
		l10_fg_pct = EXCLUDED.l10_fg_pct,
		l10_three_pct = EXCLUDED.l10_three_pct,
		l10_ft_pct = EXCLUDED.l10_ft_pct,
		l10_rebounds = EXCLUDED.l10_rebounds,
		l10_assists = EXCLUDED.l10_assists,
		l10_turnovers = EXCLUDED.l10_turnovers,
		l10_steals = EXCLUDED.l10_steals,
		l10_blocks = EXCLUDED.l10_blocks,
		l10_win_pct = EXCLUDED.l10_win_pct,
		l20_points = EXCLUDED.l20_points,
		l20_points_allowed = EXCLUDED.l20_points_allowed,
		l20_fg_pct = EXCLUDED.l20_fg_pct,
		l20_three_pct = EXCLUDED.l20_three_pct,
		l20_win_pct = EXCLUDED.l20_win_pct,
		offensive_rating = EXCLUDED.offensive_rating,
		defensive_rating = EXCLUDED.defensive_rating,
		net_rating = EXCLUDED.net_rating,
		pace = EXCLUDED.pace,
		efg_pct = EXCLUDED.efg_pct,
		ts_pct = EXCLUDED.ts_pct,
		tov_pct = EXCLUDED.tov_pct,
		offensive_rebound_rate = EXCLUDED.offensive_rebound_rate,
		defensive_rebound_rate = EXCLUDED.defensive_rebound_rate,
		assist_rate = EXCLUDED.assist_rate,
		steal_rate = EXCLUDED.steal_rate,
		block_rate = EXCLUDED.block_rate,
		avg_point_differential = EXCLUDED.avg_point_differential,
		avg_points_for = EXCLUDED.avg_points_for,
		avg_points_against = EXCLUDED.avg_points_against,
		win_streak = EXCLUDED.win_streak,
		loss_streak = EXCLUDED.loss_streak,
		players_out = EXCLUDED.players_out,
		players_questionable = EXCLUDED.players_questionable,
		injury_severity_score = EXCLUDED.injury_severity_score,
		days_rest = EXCLUDED.days_rest,
		is_back_to_back = EXCLUDED.is_back_to_back,
		games_in_last_7_days = EXCLUDED.games_in_last_7_days,
		home_win_pct = EXCLUDED.home_win_pct,
		away_win_pct = EXCLUDED.away_win_pct,
		won_game = EXCLUDED.won_game,
		point_differential = EXCLUDED.point_differential,
		updated_at = NOW()
`

func rollingArgs(f *models.TeamRollingFeatures) []interface{} {
	return []interface{}{
		f.GameID, f.TeamID, f.IsHome, f.GameDate, f.Season,
		f.L5Points, f.L5PointsAllowed, f.L5FGPct, f.L5ThreePct, f.L5FTPct,
		f.L5Rebounds, f.L5Assists, f.L5Turnovers, f.L5Steals, f.L5Blocks, f.L5WinPct,
		f.L10Points, f.L10PointsAllowed, f.L10FGPct, f.L10ThreePct, f.L10FTPct,
		f.L10Rebounds, f.L10Assists, f.L10Turnovers, f.L10Steals, f.L10Blocks, f.L10WinPct,
		f.L20Points, f.L20PointsAllowed, f.L20FGPct, f.L20ThreePct, f.L20WinPct,
		f.OffensiveRating, f.DefensiveRating, f.NetRating, f.Pace, f.EFGPct, f.TSPct, f.TOVPct,
		f.OffensiveReboundRate, f.DefensiveReboundRate, f.AssistRate, f.StealRate, f.BlockRate,
		f.AvgPointDifferential, f.AvgPointsFor, f.AvgPointsAgainst,
		f.WinStreak, f.LossStreak,
		f.PlayersOut, f.PlayersQuestionable, f.InjurySeverityScore,
		f.DaysRest, f.IsBackToBack, f.GamesInLast7Days,
		f.HomeWinPct, f.AwayWinPct,
		f.WonGame, f.PointDifferential,
	}
}

// Upsert inserts or overwrites one rolling feature row
func (r *RollingFeaturesRepository) Upsert(ctx context.Context, f *models.TeamRollingFeatures) error {
	_, err := r.db.Pool.Exec(ctx, rollingUpsertSQL, rollingArgs(f)...)
	if err != nil {
		return fmt.Errorf("failed to upsert rolling features: %w", err)
	}

	log.Debug().
		Str("game_id", f.GameID).
		Str("team_id", f.TeamID).
		Msg("Rolling features upserted")

	return nil
}

// UpsertBatch writes a batch of rolling feature rows in one round trip
func (r *RollingFeaturesRepository) UpsertBatch(ctx context.Context, rows []*models.TeamRollingFeatures) error {
	if len(rows) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, f := range rows {
		batch.Queue(rollingUpsertSQL, rollingArgs(f)...)
	}

	results := r.db.Pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := range rows {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert rolling features batch (row %d, game %s): %w",
				i, rows[i].GameID, err)
		}
	}

	return nil
}

// ExistingKeys returns the set of (game_id, team_id) pairs already
// materialized for a season, keyed as "game_id|team_id"
func (r *RollingFeaturesRepository) ExistingKeys(ctx context.Context, season string) (map[string]struct{}, error) {
	query := `SELECT game_id, team_id FROM team_rolling_features WHERE season = $1`

	rows, err := r.db.Pool.Query(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("failed to query existing rolling keys: %w", err)
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var gameID, teamID string
		if err := rows.Scan(&gameID, &teamID); err != nil {
			return nil, fmt.Errorf("failed to scan rolling key: %w", err)
		}
		keys[RollingKey(gameID, teamID)] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rolling keys: %w", err)
	}

	return keys, nil
}

// RollingKey builds the lookup key used by ExistingKeys
func RollingKey(gameID, teamID string) string {
	return gameID + "|" + teamID
}

// GetByGameAndTeam retrieves one rolling feature row
func (r *RollingFeaturesRepository) GetByGameAndTeam(ctx context.Context, gameID, teamID string) (*models.TeamRollingFeatures, error) {
	query := `
		SELECT id, game_id, team_id, is_home, game_date, season,
		       l5_points, l5_points_allowed, l5_fg_pct, l5_three_pct, l5_ft_pct,
		       l5_rebounds, l5_assists, l5_turnovers, l5_steals, l5_blocks, l5_win_pct,
		       l10_points, l10_points_allowed, l10_fg_pct, l10_three_pct, l10_ft_pct,
		       l10_rebounds, l10_assists, l10_turnovers, l10_steals, l10_blocks, l10_win_pct,
		       l20_points, l20_points_allowed, l20_fg_pct, l20_three_pct, l20_win_pct,
		       offensive_rating, defensive_rating, net_rating, pace, efg_pct, ts_pct, tov_pct,
		       offensive_rebound_rate, defensive_rebound_rate, assist_rate, steal_rate, block_rate,
		       avg_point_differential, avg_points_for, avg_points_against,
		       win_streak, loss_streak,
		       players_out, players_questionable, injury_severity_score,
		       days_rest, is_back_to_back, games_in_last_7_days,
		       home_win_pct, away_win_pct,
		       won_game, point_differential, created_at, updated_at
		FROM team_rolling_features
		WHERE game_id = $1 AND team_id = $2
	`

	var f models.TeamRollingFeatures
	err := r.db.Pool.QueryRow(ctx, query, gameID, teamID).Scan(
		&f.ID, &f.GameID, &f.TeamID, &f.IsHome, &f.GameDate, &f.Season,
		&f.L5Points, &f.L5PointsAllowed, &f.L5FGPct, &f.L5ThreePct, &f.L5FTPct,
		&f.L5Rebounds, &f.L5Assists, &f.L5Turnovers, &f.L5Steals, &f.L5Blocks, &f.L5WinPct,
		&f.L10Points, &f.L10PointsAllowed, &f.L10FGPct, &f.L10ThreePct, &f.L10FTPct,
		&f.L10Rebounds, &f.L10Assists, &f.L10Turnovers, &f.L10Steals, &f.L10Blocks, &f.L10WinPct,
		&f.L20Points, &f.L20PointsAllowed, &f.L20FGPct, &f.L20ThreePct, &f.L20WinPct,
		&f.OffensiveRating, &f.DefensiveRating, &f.NetRating, &f.Pace, &f.EFGPct, &f.TSPct, &f.TOVPct,
		&f.OffensiveReboundRate, &f.DefensiveReboundRate, &f.AssistRate, &f.StealRate, &f.BlockRate,
		&f.AvgPointDifferential, &f.AvgPointsFor, &f.AvgPointsAgainst,
		&f.WinStreak, &f.LossStreak,
		&f.PlayersOut, &f.PlayersQuestionable, &f.InjurySeverityScore,
		&f.DaysRest, &f.IsBackToBack, &f.GamesInLast7Days,
		&f.HomeWinPct, &f.AwayWinPct,
		&f.WonGame, &f.PointDifferential, &f.CreatedAt, &f.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("rolling features for game %s team %s: %w", gameID, teamID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rolling features: %w", err)
	}

	return &f, nil
}

// BackfillTargets fills in the realized labels for a finished game without
// touching the already-computed rolling inputs. Only rows whose labels are
// still null are updated, so incremental re-runs never rewrite history.
func (r *RollingFeaturesRepository) BackfillTargets(ctx context.Context, gameID, teamID string, won bool, pointDiff int) (bool, error) {
	query := `
		UPDATE team_rolling_features
		SET won_game = $3, point_differential = $4, updated_at = NOW()
		WHERE game_id = $1 AND team_id = $2 AND won_game IS NULL
	`

	result, err := r.db.Pool.Exec(ctx, query, gameID, teamID, won, pointDiff)
	if err != nil {
		return false, fmt.Errorf("failed to backfill targets: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// Count returns the number of rolling feature rows for a season
func (r *RollingFeaturesRepository) Count(ctx context.Context, season string) (int, error) {
	query := `SELECT COUNT(*) FROM team_rolling_features WHERE season = $1`

	var count int
	if err := r.db.Pool.QueryRow(ctx, query, season).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rolling features: %w", err)
	}

	return count, nil
}
