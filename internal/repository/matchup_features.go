package repository

import (
	"context"
	"errors"
	"fmt"

	"nbamodel/pipeline/internal/models"

	"github.com/jackc/pgx/v5"
)

// MatchupFeaturesRepository handles the materialized per-game matchup rows
type MatchupFeaturesRepository struct {
	db *Database
}

const matchupUpsertSQL = `
	INSERT INTO game_matchup_features (
		game_id, game_date, season, home_team_id, away_team_id,
		h2h_home_wins, h2h_away_wins, h2h_total_games,
		h2h_avg_point_differential, h2h_home_avg_score, h2h_away_avg_score,
		pace_differential, ts_differential, efg_differential,
		home_win_pct_recent, away_win_pct_recent, win_pct_differential,
		same_conference, same_division, is_playoffs, is_home_advantage,
		home_rest_days, away_rest_days, rest_days_differential,
		home_is_b2b, away_is_b2b,
		home_days_until_next, away_days_until_next
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		$11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
		$21, $22, $23, $24, $25, $26, $27, $28)
	ON CONFLICT (game_id) DO UPDATE SET
		game_date = EXCLUDED.game_date,
		season = EXCLUDED.season,
		home_team_id = EXCLUDED.home_team_id,
		away_team_id = EXCLUDED.away_team_id,
		h2h_home_wins = EXCLUDED.h2h_home_wins,
		h2h_away_wins = EXCLUDED.h2h_away_wins,
		h2h_total_games = EXCLUDED.h2h_total_games,
		h2h_avg_point_differential = EXCLUDED.h2h_avg_point_differential,
		h2h_home_avg_score = EXCLUDED.h2h_home_avg_score,
		h2h_away_avg_score = EXCLUDED.h2h_away_avg_score,
		pace_differential = EXCLUDED.pace_differential,
		ts_differential = EXCLUDED.ts_differential,
		efg_differential = EXCLUDED.efg_differential,
		home_win_pct_recent = EXCLUDED.home_win_pct_recent,
		away_win_pct_recent = EXCLUDED.away_win_pct_recent,
		win_pct_differential = EXCLUDED.win_pct_differential,
		same_conference = EXCLUDED.same_conference,
		same_division = EXCLUDED.same_division,
		is_playoffs = EXCLUDED.is_playoffs,
		is_home_advantage = EXCLUDED.is_home_advantage,
		home_rest_days = EXCLUDED.home_rest_days,
		away_rest_days = EXCLUDED.away_rest_days,
		rest_days_differential = EXCLUDED.rest_days_differential,
		home_is_b2b = EXCLUDED.home_is_b2b,
		away_is_b2b = EXCLUDED.away_is_b2b,
		home_days_until_next = EXCLUDED.home_days_until_next,
		away_days_until_next = EXCLUDED.away_days_until_next,
		updated_at = NOW()
`

func matchupArgs(m *models.GameMatchupFeatures) []interface{} {
	return []interface{}{
		m.GameID, m.GameDate, m.Season, m.HomeTeamID, m.AwayTeamID,
		m.H2HHomeWins, m.H2HAwayWins, m.H2HTotalGames,
		m.H2HAvgPointDifferential, m.H2HHomeAvgScore, m.H2HAwayAvgScore,
		m.PaceDifferential, m.TSDifferential, m.EFGDifferential,
		m.HomeWinPctRecent, m.AwayWinPctRecent, m.WinPctDifferential,
		m.SameConference, m.SameDivision, m.IsPlayoffs, m.IsHomeAdvantage,
		m.HomeRestDays, m.AwayRestDays, m.RestDaysDifferential,
		m.HomeIsB2B, m.AwayIsB2B,
		m.HomeDaysUntilNext, m.AwayDaysUntilNext,
	}
}

// Upsert inserts or overwrites one matchup feature row
func (r *MatchupFeaturesRepository) Upsert(ctx context.Context, m *models.GameMatchupFeatures) error {
	_, err := r.db.Pool.Exec(ctx, matchupUpsertSQL, matchupArgs(m)...)
	if err != nil {
		return fmt.Errorf("failed to upsert matchup features: %w", err)
	}

	return nil
}

// UpsertBatch writes a batch of matchup feature rows in one round trip
func (r *MatchupFeaturesRepository) UpsertBatch(ctx context.Context, rows []*models.GameMatchupFeatures) error {
	if len(rows) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, m := range rows {
		batch.Queue(matchupUpsertSQL, matchupArgs(m)...)
	}

	results := r.db.Pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := range rows {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert matchup features batch (row %d, game %s): %w",
				i, rows[i].GameID, err)
		}
	}

	return nil
}

// ExistingGameIDs returns the set of game_ids already materialized for a season
func (r *MatchupFeaturesRepository) ExistingGameIDs(ctx context.Context, season string) (map[string]struct{}, error) {
	query := `SELECT game_id FROM game_matchup_features WHERE season = $1`

	rows, err := r.db.Pool.Query(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("failed to query existing matchup games: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var gameID string
		if err := rows.Scan(&gameID); err != nil {
			return nil, fmt.Errorf("failed to scan matchup game id: %w", err)
		}
		ids[gameID] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matchup game ids: %w", err)
	}

	return ids, nil
}

// GetByGameID retrieves the matchup feature row for a game
func (r *MatchupFeaturesRepository) GetByGameID(ctx context.Context, gameID string) (*models.GameMatchupFeatures, error) {
	query := `
		SELECT id, game_id, game_date, season, home_team_id, away_team_id,
		       h2h_home_wins, h2h_away_wins, h2h_total_games,
		       h2h_avg_point_differential, h2h_home_avg_score, h2h_away_avg_score,
		       pace_differential, ts_differential, efg_differential,
		       home_win_pct_recent, away_win_pct_recent, win_pct_differential,
		       same_conference, same_division, is_playoffs, is_home_advantage,
		       home_rest_days, away_rest_days, rest_days_differential,
		       home_is_b2b, away_is_b2b,
		       home_days_until_next, away_days_until_next,
		       created_at, updated_at
		FROM game_matchup_features
		WHERE game_id = $1
	`

	var m models.GameMatchupFeatures
	err := r.db.Pool.QueryRow(ctx, query, gameID).Scan(
		&m.ID, &m.GameID, &m.GameDate, &m.Season, &m.HomeTeamID, &m.AwayTeamID,
		&m.H2HHomeWins, &m.H2HAwayWins, &m.H2HTotalGames,
		&m.H2HAvgPointDifferential, &m.H2HHomeAvgScore, &m.H2HAwayAvgScore,
		&m.PaceDifferential, &m.TSDifferential, &m.EFGDifferential,
		&m.HomeWinPctRecent, &m.AwayWinPctRecent, &m.WinPctDifferential,
		&m.SameConference, &m.SameDivision, &m.IsPlayoffs, &m.IsHomeAdvantage,
		&m.HomeRestDays, &m.AwayRestDays, &m.RestDaysDifferential,
		&m.HomeIsB2B, &m.AwayIsB2B,
		&m.HomeDaysUntilNext, &m.AwayDaysUntilNext,
		&m.CreatedAt, &m.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("matchup features for game %s: %w", gameID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get matchup features: %w", err)
	}

	return &m, nil
}
