package metrics

import "errors"

// Document-level failures. Per-row and per-field anomalies are absorbed
// during parsing and never surface as errors.
var (
	// ErrMalformedJSON reports a body that is not valid JSON at the top level.
	ErrMalformedJSON = errors.New("malformed JSON document")

	// ErrNoRows reports a CSV body from which no rows could be extracted,
	// typically an empty file or one with no header line.
	ErrNoRows = errors.New("no rows extractable")
)
