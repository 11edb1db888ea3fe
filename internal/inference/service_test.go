package inference

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nbamodel/pipeline/internal/models"
)

type fakeStore struct {
	saved []*models.Prediction
}

func (f *fakeStore) Upsert(_ context.Context, pred *models.Prediction) error {
	f.saved = append(f.saved, pred)
	return nil
}

func testService(schema *ModelSchema, scorer Scorer) (*Service, *fakeStore) {
	ext, _, _, _ := testExtractor()
	store := &fakeStore{}
	return &Service{
		Extractor: ext,
		Schema:    schema,
		Scorer:    scorer,
		Store:     store,
	}, store
}

func TestServicePredictPersistsResult(t *testing.T) {
	schema := &ModelSchema{
		ModelName:    "game_winner",
		FeatureCount: 2,
		FeatureNames: []string{"home_l5_points", "away_l5_points"},
	}
	// home scores more than away in the fixture, positive weight on the
	// home side pushes the probability above one half
	scorer := &LogisticScorer{
		ModelName: "game_winner",
		Bias:      0,
		Weights:   []float64{0.05, -0.05},
	}

	svc, store := testService(schema, scorer)

	pred, err := svc.Predict(context.Background(), "g1")
	require.NoError(t, err)
	require.Len(t, store.saved, 1)

	assert.Equal(t, "g1", pred.GameID)
	assert.Equal(t, "game_winner", pred.ModelName)
	assert.Greater(t, pred.WinProbabilityHome, 0.5)
	assert.Equal(t, "home", pred.PredictedWinner.String)
	assert.InDelta(t, 1.0, pred.WinProbabilityHome+pred.WinProbabilityAway, 1e-9)
	assert.Equal(t, pred.WinProbabilityHome, pred.Confidence)
}

func TestServicePredictAwayWinner(t *testing.T) {
	schema := &ModelSchema{
		ModelName:    "game_winner",
		FeatureCount: 2,
		FeatureNames: []string{"home_l5_points", "away_l5_points"},
	}
	scorer := &LogisticScorer{
		ModelName: "game_winner",
		Weights:   []float64{-0.05, 0.05},
	}

	svc, _ := testService(schema, scorer)

	pred, err := svc.Predict(context.Background(), "g1")
	require.NoError(t, err)
	assert.Less(t, pred.WinProbabilityHome, 0.5)
	assert.Equal(t, "away", pred.PredictedWinner.String)
	assert.Equal(t, pred.WinProbabilityAway, pred.Confidence)
}

func TestServiceRejectsMissingSchema(t *testing.T) {
	scorer := &LogisticScorer{ModelName: "game_winner", Weights: []float64{0.1}}

	svc, store := testService(nil, scorer)
	_, err := svc.Predict(context.Background(), "g1")
	assert.ErrorIs(t, err, ErrSchemaUnknown)
	assert.Empty(t, store.saved, "Nothing may be persisted without a trusted schema")
}

func TestLogisticScorerWeightCountGuard(t *testing.T) {
	scorer := &LogisticScorer{ModelName: "game_winner", Weights: []float64{0.1, 0.2}}

	_, err := scorer.Score([]float64{1.0})
	assert.ErrorIs(t, err, ErrFeatureCountMismatch)
}

func TestLogisticScorerScore(t *testing.T) {
	scorer := &LogisticScorer{ModelName: "game_winner", Bias: 0, Weights: []float64{0, 0}}

	p, err := scorer.Score([]float64{5, 5})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p, 1e-9, "Zero weights give an even split")

	scorer.Bias = 100
	p, err = scorer.Score([]float64{0, 0})
	require.NoError(t, err)
	assert.Equal(t, 1.0, p, "Saturated logit clamps cleanly")
}

func TestLoadLogisticScorer(t *testing.T) {
	dir := t.TempDir()
	payload := `{"bias": 0.25, "weights": [0.1, -0.2, 0.3]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "game_winner_weights.json"), []byte(payload), 0o644))

	scorer, err := LoadLogisticScorer(dir, "game_winner")
	require.NoError(t, err)
	assert.Equal(t, "game_winner", scorer.Name(), "Name defaults to the file stem")
	assert.Equal(t, 0.25, scorer.Bias)
	assert.Len(t, scorer.Weights, 3)
}
