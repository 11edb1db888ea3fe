package repository

import "errors"

// ErrNotFound is returned when a requested row does not exist. Callers
// check it with errors.Is; the inference layer maps it onto its own
// error taxonomy.
var ErrNotFound = errors.New("not found")
