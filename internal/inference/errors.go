package inference

import "errors"

var (
	// ErrGameNotFound means the requested game id is not in the games table
	ErrGameNotFound = errors.New("game not found")

	// ErrIncompleteFeatures means one of the materialized feature rows the
	// game needs is missing; inference never computes features on the fly
	ErrIncompleteFeatures = errors.New("incomplete materialized features")

	// ErrSchemaUnknown means the model's stored feature schema is missing
	// or empty, so the feature vector's ordering cannot be trusted
	ErrSchemaUnknown = errors.New("model feature schema unknown")

	// ErrFeatureCountMismatch means alignment produced a vector whose
	// length differs from the schema's declared feature count
	ErrFeatureCountMismatch = errors.New("feature count mismatch")
)
