// File path: internal/engine/errors.go
package engine

import "errors"

// Stage sentinels for the conceptual path. Exact-path failures carry their
// own typed errors and are passed through untouched.
var (
	ErrRetrieval  = errors.New("retrieval failed")
	ErrEnrichment = errors.New("enrichment failed")
	ErrFormatting = errors.New("formatting failed")
)
