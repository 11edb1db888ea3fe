package repository

import (
	"context"
	"fmt"
	"time"

	"nbamodel/pipeline/internal/models"
)

// InjuryRepository handles player injury report rows
type InjuryRepository struct {
	db *Database
}

// Upsert inserts or updates a player's injury report for a date
func (r *InjuryRepository) Upsert(ctx context.Context, injury *models.PlayerInjury) error {
	query := `
		INSERT INTO player_injuries (team_id, player_id, player_name, status, report_date)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (player_id, report_date) DO UPDATE SET
			team_id = EXCLUDED.team_id,
			player_name = EXCLUDED.player_name,
			status = EXCLUDED.status
		RETURNING id, created_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		injury.TeamID, injury.PlayerID, injury.PlayerName,
		injury.Status, injury.ReportDate,
	).Scan(&injury.ID, &injury.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert injury: %w", err)
	}

	return nil
}

// ListBetween retrieves all injury reports in [from, to), for index building
func (r *InjuryRepository) ListBetween(ctx context.Context, from, to time.Time) ([]*models.PlayerInjury, error) {
	query := `
		SELECT id, team_id, player_id, player_name, status, report_date, created_at
		FROM player_injuries
		WHERE report_date >= $1 AND report_date < $2
		ORDER BY report_date
	`

	rows, err := r.db.Pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list injuries: %w", err)
	}
	defer rows.Close()

	var injuries []*models.PlayerInjury
	for rows.Next() {
		var injury models.PlayerInjury
		err := rows.Scan(
			&injury.ID, &injury.TeamID, &injury.PlayerID, &injury.PlayerName,
			&injury.Status, &injury.ReportDate, &injury.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan injury: %w", err)
		}
		injuries = append(injuries, &injury)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating injuries: %w", err)
	}

	return injuries, nil
}
