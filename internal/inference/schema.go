package inference

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"nbamodel/pipeline/internal/metrics"
)

// ModelSchema is the feature contract persisted alongside a trained model.
// The name list is ordered; position in the list is position in the input
// vector the model was trained on.
type ModelSchema struct {
	ModelName    string   `json:"model_name"`
	TaskType     string   `json:"task_type"`
	FeatureCount int      `json:"feature_count"`
	FeatureNames []string `json:"feature_names"`
}

// LoadSchema reads <dir>/<modelName>.json
func LoadSchema(dir, modelName string) (*ModelSchema, error) {
	path := filepath.Join(dir, modelName+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model schema %s: %w", path, err)
	}

	var schema ModelSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("failed to parse model schema %s: %w", path, err)
	}
	if schema.ModelName == "" {
		schema.ModelName = modelName
	}
	if schema.FeatureCount == 0 {
		schema.FeatureCount = len(schema.FeatureNames)
	}

	return &schema, nil
}

// Align forces the extracted feature map into the exact ordered vector the
// model was trained on. Features the schema expects but extraction did not
// produce are filled with 0 and logged; features extraction produced but
// the schema does not know are dropped silently. A nil or empty schema is
// rejected rather than guessed at.
func (s *ModelSchema) Align(features map[string]float64) ([]float64, error) {
	if s == nil || len(s.FeatureNames) == 0 {
		return nil, ErrSchemaUnknown
	}

	vector := make([]float64, 0, len(s.FeatureNames))
	missing := 0
	for _, name := range s.FeatureNames {
		value, ok := features[name]
		if !ok {
			value = 0
			missing++
			log.Warn().
				Str("model", s.ModelName).
				Str("feature", name).
				Msg("Schema feature missing from extraction, defaulting to 0")
		}
		vector = append(vector, value)
	}
	if missing > 0 {
		metrics.RecordSchemaDrift(s.ModelName, missing)
	}

	if s.FeatureCount > 0 && len(vector) != s.FeatureCount {
		return nil, fmt.Errorf("expected %d features, aligned %d: %w",
			s.FeatureCount, len(vector), ErrFeatureCountMismatch)
	}

	return vector, nil
}
