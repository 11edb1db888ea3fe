package inference

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"nbamodel/pipeline/internal/models"
	"nbamodel/pipeline/internal/repository"
)

// GameGetter resolves a game id to its metadata row
type GameGetter interface {
	GetByGameID(ctx context.Context, gameID string) (*models.Game, error)
}

// RollingReader reads a materialized per-team rolling feature row
type RollingReader interface {
	GetByGameAndTeam(ctx context.Context, gameID, teamID string) (*models.TeamRollingFeatures, error)
}

// MatchupReader reads a materialized game-level matchup feature row
type MatchupReader interface {
	GetByGameID(ctx context.Context, gameID string) (*models.GameMatchupFeatures, error)
}

// Extractor assembles the inference feature map for one game from the
// materialized tables only. It never computes features on the fly: a
// missing row is an error, not a trigger for recomputation, so serving
// always sees exactly what training saw.
type Extractor struct {
	Games    GameGetter
	Rolling  RollingReader
	Matchups MatchupReader
}

// rollingRenames translates rolling column names to the names the training
// export used. Applied before the side prefix.
var rollingRenames = map[string]string{
	"efg_pct": "effective_fg_pct",
	"ts_pct":  "true_shooting_pct",
	"tov_pct": "turnover_rate",
}

// matchupRenames translates matchup column names the same way
var matchupRenames = map[string]string{
	"home_win_pct_recent": "home_win_pct",
	"away_win_pct_recent": "away_win_pct",
}

// Extract builds the full feature map for the game: both teams' rolling
// rows prefixed home_/away_, plus the unprefixed matchup row. Null column
// values are filled per the training pipeline's imputation rules.
func (e *Extractor) Extract(ctx context.Context, gameID string) (map[string]float64, error) {
	game, err := e.Games.GetByGameID(ctx, gameID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("game %s: %w", gameID, ErrGameNotFound)
		}
		return nil, fmt.Errorf("failed to load game %s: %w", gameID, err)
	}

	homeRow, err := e.rollingRow(ctx, gameID, game.HomeTeamID)
	if err != nil {
		return nil, err
	}
	awayRow, err := e.rollingRow(ctx, gameID, game.AwayTeamID)
	if err != nil {
		return nil, err
	}

	matchupRow, err := e.Matchups.GetByGameID(ctx, gameID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("matchup features for game %s: %w", gameID, ErrIncompleteFeatures)
		}
		return nil, fmt.Errorf("failed to load matchup features for game %s: %w", gameID, err)
	}

	features := make(map[string]float64, 2*52+23)
	addColumns(features, homeRow.FeatureColumns(), rollingRenames, "home_")
	addColumns(features, awayRow.FeatureColumns(), rollingRenames, "away_")
	addColumns(features, matchupRow.FeatureColumns(), matchupRenames, "")

	log.Debug().
		Str("game_id", gameID).
		Int("features", len(features)).
		Msg("Extracted materialized features")

	return features, nil
}

func (e *Extractor) rollingRow(ctx context.Context, gameID, teamID string) (*models.TeamRollingFeatures, error) {
	row, err := e.Rolling.GetByGameAndTeam(ctx, gameID, teamID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("rolling features for game %s team %s: %w", gameID, teamID, ErrIncompleteFeatures)
		}
		return nil, fmt.Errorf("failed to load rolling features for game %s team %s: %w", gameID, teamID, err)
	}
	return row, nil
}

func addColumns(features map[string]float64, columns []models.FeatureValue, renames map[string]string, prefix string) {
	for _, col := range columns {
		name := col.Name
		if renamed, ok := renames[name]; ok {
			name = renamed
		}
		name = prefix + name

		if col.Value != nil {
			features[name] = *col.Value
		} else {
			features[name] = defaultFor(name)
		}
	}
}

// defaultFor mirrors the training pipeline's null imputation: counts and
// flags default to 0, probabilities to an uninformative 0.5.
func defaultFor(name string) float64 {
	switch {
	case strings.Contains(name, "prob"):
		return 0.5
	case strings.Contains(name, "injury"),
		strings.Contains(name, "players_out"),
		strings.Contains(name, "players_questionable"),
		strings.Contains(name, "streak"),
		strings.HasPrefix(name, "is_"),
		strings.HasPrefix(name, "same_"),
		strings.HasSuffix(name, "_b2b"):
		return 0
	default:
		return 0
	}
}
