package repository

import (
	"context"
	"errors"
	"fmt"

	"nbamodel/pipeline/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// TeamRepository handles team database operations
type TeamRepository struct {
	db *Database
}

// Upsert inserts or updates a team
func (r *TeamRepository) Upsert(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (
			team_id, team_name, team_abbreviation, city, conference, division
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (team_id) DO UPDATE SET
			team_name = EXCLUDED.team_name,
			team_abbreviation = EXCLUDED.team_abbreviation,
			city = EXCLUDED.city,
			conference = EXCLUDED.conference,
			division = EXCLUDED.division
		RETURNING created_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		team.TeamID, team.TeamName, team.Abbreviation,
		team.City, team.Conference, team.Division,
	).Scan(&team.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert team: %w", err)
	}

	log.Debug().
		Str("team_id", team.TeamID).
		Str("abbreviation", team.Abbreviation).
		Msg("Team upserted")

	return nil
}

// GetByTeamID retrieves a team by its identifier
func (r *TeamRepository) GetByTeamID(ctx context.Context, teamID string) (*models.Team, error) {
	query := `
		SELECT team_id, team_name, team_abbreviation, city, conference, division, created_at
		FROM teams
		WHERE team_id = $1
	`

	var team models.Team
	err := r.db.Pool.QueryRow(ctx, query, teamID).Scan(
		&team.TeamID, &team.TeamName, &team.Abbreviation,
		&team.City, &team.Conference, &team.Division,
		&team.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("team %s: %w", teamID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return &team, nil
}

// List retrieves all teams
func (r *TeamRepository) List(ctx context.Context) ([]*models.Team, error) {
	query := `
		SELECT team_id, team_name, team_abbreviation, city, conference, division, created_at
		FROM teams
		ORDER BY team_name
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		var team models.Team
		err := rows.Scan(
			&team.TeamID, &team.TeamName, &team.Abbreviation,
			&team.City, &team.Conference, &team.Division,
			&team.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, &team)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teams: %w", err)
	}

	return teams, nil
}

// Count returns the total number of teams
func (r *TeamRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM teams`

	var count int
	err := r.db.Pool.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count teams: %w", err)
	}

	return count, nil
}
