package repository

import (
	"context"
	"errors"
	"fmt"

	"nbamodel/pipeline/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// TeamStatsRepository handles per-team per-game box-score rows
type TeamStatsRepository struct {
	db *Database
}

const teamStatsColumns = `
	id, game_id, team_id, is_home,
	points, field_goals_made, field_goals_attempted, field_goal_percentage,
	three_pointers_made, three_pointers_attempted, three_point_percentage,
	free_throws_made, free_throws_attempted, free_throw_percentage,
	rebounds_offensive, rebounds_defensive, rebounds_total,
	assists, steals, blocks, turnovers, personal_fouls,
	true_shooting_percentage, effective_field_goal_percentage, created_at
`

// Upsert inserts or updates a team's box-score row for a game
func (r *TeamStatsRepository) Upsert(ctx context.Context, stats *models.TeamGameStats) error {
	query := `
		INSERT INTO team_stats (
			game_id, team_id, is_home,
			points, field_goals_made, field_goals_attempted, field_goal_percentage,
			three_pointers_made, three_pointers_attempted, three_point_percentage,
			free_throws_made, free_throws_attempted, free_throw_percentage,
			rebounds_offensive, rebounds_defensive, rebounds_total,
			assists, steals, blocks, turnovers, personal_fouls,
			true_shooting_percentage, effective_field_goal_percentage
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
		ON CONFLICT (game_id, team_id) DO UPDATE SET
			is_home = EXCLUDED.is_home,
			points = EXCLUDED.points,
			field_goals_made = EXCLUDED.field_goals_made,
			field_goals_attempted = EXCLUDED.field_goals_attempted,
			field_goal_percentage = EXCLUDED.field_goal_percentage,
			three_pointers_made = EXCLUDED.three_pointers_made,
			three_pointers_attempted = EXCLUDED.three_pointers_attempted,
			three_point_percentage = EXCLUDED.three_point_percentage,
			free_throws_made = EXCLUDED.free_throws_made,
			free_throws_attempted = EXCLUDED.free_throws_attempted,
			free_throw_percentage = EXCLUDED.free_throw_percentage,
			rebounds_offensive = EXCLUDED.rebounds_offensive,
			rebounds_defensive = EXCLUDED.rebounds_defensive,
			rebounds_total = EXCLUDED.rebounds_total,
			assists = EXCLUDED.assists,
			steals = EXCLUDED.steals,
			blocks = EXCLUDED.blocks,
			turnovers = EXCLUDED.turnovers,
			personal_fouls = EXCLUDED.personal_fouls,
			true_shooting_percentage = EXCLUDED.true_shooting_percentage,
			effective_field_goal_percentage = EXCLUDED.effective_field_goal_percentage
		RETURNING id, created_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		stats.GameID, stats.TeamID, stats.IsHome,
		stats.Points, stats.FieldGoalsMade, stats.FieldGoalsAttempted, stats.FieldGoalPercentage,
		stats.ThreePointersMade, stats.ThreePointersAttempt, stats.ThreePointPercentage,
		stats.FreeThrowsMade, stats.FreeThrowsAttempted, stats.FreeThrowPercentage,
		stats.ReboundsOffensive, stats.ReboundsDefensive, stats.ReboundsTotal,
		stats.Assists, stats.Steals, stats.Blocks, stats.Turnovers, stats.PersonalFouls,
		stats.TrueShootingPercentage, stats.EffectiveFGPercentage,
	).Scan(&stats.ID, &stats.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert team stats: %w", err)
	}

	log.Debug().
		Str("game_id", stats.GameID).
		Str("team_id", stats.TeamID).
		Msg("Team stats upserted")

	return nil
}

// GetByGameAndTeam retrieves one team's box-score row for a game
func (r *TeamStatsRepository) GetByGameAndTeam(ctx context.Context, gameID, teamID string) (*models.TeamGameStats, error) {
	query := `SELECT ` + teamStatsColumns + ` FROM team_stats WHERE game_id = $1 AND team_id = $2`

	var stats models.TeamGameStats
	err := r.db.Pool.QueryRow(ctx, query, gameID, teamID).Scan(
		&stats.ID, &stats.GameID, &stats.TeamID, &stats.IsHome,
		&stats.Points, &stats.FieldGoalsMade, &stats.FieldGoalsAttempted, &stats.FieldGoalPercentage,
		&stats.ThreePointersMade, &stats.ThreePointersAttempt, &stats.ThreePointPercentage,
		&stats.FreeThrowsMade, &stats.FreeThrowsAttempted, &stats.FreeThrowPercentage,
		&stats.ReboundsOffensive, &stats.ReboundsDefensive, &stats.ReboundsTotal,
		&stats.Assists, &stats.Steals, &stats.Blocks, &stats.Turnovers, &stats.PersonalFouls,
		&stats.TrueShootingPercentage, &stats.EffectiveFGPercentage, &stats.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("team stats for game %s team %s: %w", gameID, teamID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team stats: %w", err)
	}

	return &stats, nil
}

// ListBySeason retrieves all box-score rows joined to games in the season
func (r *TeamStatsRepository) ListBySeason(ctx context.Context, season string) ([]*models.TeamGameStats, error) {
	query := `
		SELECT ts.id, ts.game_id, ts.team_id, ts.is_home,
		       ts.points, ts.field_goals_made, ts.field_goals_attempted, ts.field_goal_percentage,
		       ts.three_pointers_made, ts.three_pointers_attempted, ts.three_point_percentage,
		       ts.free_throws_made, ts.free_throws_attempted, ts.free_throw_percentage,
		       ts.rebounds_offensive, ts.rebounds_defensive, ts.rebounds_total,
		       ts.assists, ts.steals, ts.blocks, ts.turnovers, ts.personal_fouls,
		       ts.true_shooting_percentage, ts.effective_field_goal_percentage, ts.created_at
		FROM team_stats ts
		JOIN games g ON g.game_id = ts.game_id
		WHERE g.season = $1
		ORDER BY g.game_date
	`

	rows, err := r.db.Pool.Query(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("failed to list team stats: %w", err)
	}
	defer rows.Close()

	var all []*models.TeamGameStats
	for rows.Next() {
		var stats models.TeamGameStats
		err := rows.Scan(
			&stats.ID, &stats.GameID, &stats.TeamID, &stats.IsHome,
			&stats.Points, &stats.FieldGoalsMade, &stats.FieldGoalsAttempted, &stats.FieldGoalPercentage,
			&stats.ThreePointersMade, &stats.ThreePointersAttempt, &stats.ThreePointPercentage,
			&stats.FreeThrowsMade, &stats.FreeThrowsAttempted, &stats.FreeThrowPercentage,
			&stats.ReboundsOffensive, &stats.ReboundsDefensive, &stats.ReboundsTotal,
			&stats.Assists, &stats.Steals, &stats.Blocks, &stats.Turnovers, &stats.PersonalFouls,
			&stats.TrueShootingPercentage, &stats.EffectiveFGPercentage, &stats.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team stats: %w", err)
		}
		all = append(all, &stats)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team stats: %w", err)
	}

	return all, nil
}
