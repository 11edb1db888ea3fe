package models

import "database/sql"

// FeatureValue is one named feature column and its (possibly null) value.
// Both feature tables expose their non-metadata columns as an ordered
// []FeatureValue so that the training export and the inference extractor
// walk the exact same column list in the exact same order.
type FeatureValue struct {
	Name  string
	Value *float64
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func intPtr(v sql.NullInt32) *float64 {
	if !v.Valid {
		return nil
	}
	f := float64(v.Int32)
	return &f
}

func boolPtr(v sql.NullBool) *float64 {
	if !v.Valid {
		return nil
	}
	f := 0.0
	if v.Bool {
		f = 1.0
	}
	return &f
}
