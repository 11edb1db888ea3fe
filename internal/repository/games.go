package repository

import (
	"context"
	"errors"
	"fmt"

	"nbamodel/pipeline/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// GameRepository handles game database operations
type GameRepository struct {
	db *Database
}

const gameColumns = `
	game_id, season, season_type, game_date, home_team_id, away_team_id,
	home_score, away_score, winner, point_differential, game_status,
	created_at, updated_at
`

// Upsert inserts or updates a game
func (r *GameRepository) Upsert(ctx context.Context, game *models.Game) error {
	query := `
		INSERT INTO games (
			game_id, season, season_type, game_date, home_team_id, away_team_id,
			home_score, away_score, winner, point_differential, game_status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (game_id) DO UPDATE SET
			season = EXCLUDED.season,
			season_type = EXCLUDED.season_type,
			game_date = EXCLUDED.game_date,
			home_team_id = EXCLUDED.home_team_id,
			away_team_id = EXCLUDED.away_team_id,
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			winner = EXCLUDED.winner,
			point_differential = EXCLUDED.point_differential,
			game_status = EXCLUDED.game_status,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		game.GameID, game.Season, game.SeasonType, game.GameDate,
		game.HomeTeamID, game.AwayTeamID,
		game.HomeScore, game.AwayScore, game.Winner,
		game.PointDifferential, game.GameStatus,
	).Scan(&game.CreatedAt, &game.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert game: %w", err)
	}

	log.Debug().
		Str("game_id", game.GameID).
		Str("status", game.GameStatus).
		Msg("Game upserted")

	return nil
}

// GetByGameID retrieves a game by its identifier
func (r *GameRepository) GetByGameID(ctx context.Context, gameID string) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE game_id = $1`

	var game models.Game
	err := r.db.Pool.QueryRow(ctx, query, gameID).Scan(
		&game.GameID, &game.Season, &game.SeasonType, &game.GameDate,
		&game.HomeTeamID, &game.AwayTeamID,
		&game.HomeScore, &game.AwayScore, &game.Winner,
		&game.PointDifferential, &game.GameStatus,
		&game.CreatedAt, &game.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("game %s: %w", gameID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return &game, nil
}

// ListBySeason retrieves all games for a season ordered by date
func (r *GameRepository) ListBySeason(ctx context.Context, season string) ([]*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE season = $1 ORDER BY game_date`

	rows, err := r.db.Pool.Query(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	return scanGames(rows)
}

// ListUpcoming retrieves scheduled games from today onward, soonest first
func (r *GameRepository) ListUpcoming(ctx context.Context, limit int) ([]*models.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE game_status = 'scheduled' AND game_date >= CURRENT_DATE
		ORDER BY game_date
		LIMIT $1
	`

	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming games: %w", err)
	}
	defer rows.Close()

	return scanGames(rows)
}

func scanGames(rows pgx.Rows) ([]*models.Game, error) {
	var games []*models.Game
	for rows.Next() {
		var game models.Game
		err := rows.Scan(
			&game.GameID, &game.Season, &game.SeasonType, &game.GameDate,
			&game.HomeTeamID, &game.AwayTeamID,
			&game.HomeScore, &game.AwayScore, &game.Winner,
			&game.PointDifferential, &game.GameStatus,
			&game.CreatedAt, &game.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, &game)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating games: %w", err)
	}

	return games, nil
}
