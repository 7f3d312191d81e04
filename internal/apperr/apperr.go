// Package apperr defines the typed error kinds the ingestion and search
// pipelines raise. Each kind carries a machine-readable reason so callers
// (in particular the ingestion orchestrator's status state machine) can
// render it without re-parsing an error string.
package apperr

import "fmt"

// InputError is raised when a submitted file is rejected at the boundary:
// bad extension, empty, or oversize. It always produces a terminal
// failed:<reason> record.
type InputError struct {
	Reason string
	Err    error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("input rejected (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("input rejected: %s", e.Reason)
}

func (e *InputError) Unwrap() error { return e.Err }

// ExtractionError is raised when bytes-to-text conversion fails or yields
// too little text. Terminal unless retried through the OCR-forced path.
type ExtractionError struct {
	Filename string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %s: %v", e.Filename, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ClassificationError is raised when mastercategory/category classification
// fails or cannot be parsed. Non-fatal: callers leave the field null and
// continue the pipeline.
type ClassificationError struct {
	Stage string // "mastercategory" or "category"
	Err   error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classification failed at %s: %v", e.Stage, e.Err)
}

func (e *ClassificationError) Unwrap() error { return e.Err }

// FieldExtractorError is raised when one field extractor fails. Non-fatal:
// contained at the orchestrator, other extractors still run.
type FieldExtractorError struct {
	Extractor string
	Err       error
}

func (e *FieldExtractorError) Error() string {
	return fmt.Sprintf("field extractor %s failed: %v", e.Extractor, e.Err)
}

func (e *FieldExtractorError) Unwrap() error { return e.Err }

// VectorError is raised when an upsert or query against the vector store
// fails. An upsert failure does not roll back field extraction; a query
// failure surfaces to the caller as an empty result set.
type VectorError struct {
	Op  string // "upsert", "query", "delete", "list_namespaces"
	Err error
}

func (e *VectorError) Error() string {
	return fmt.Sprintf("vector store %s failed: %v", e.Op, e.Err)
}

func (e *VectorError) Unwrap() error { return e.Err }

// QueryParseError is raised when the query parser cannot produce anything
// beyond its defensible default. Surfaces to the search entry point so it
// can be reported to the client.
type QueryParseError struct {
	Query string
	Err   error
}

func (e *QueryParseError) Error() string {
	return fmt.Sprintf("query parse failed for %q: %v", e.Query, e.Err)
}

func (e *QueryParseError) Unwrap() error { return e.Err }

// RepositoryError is raised when a database write fails. On create/update
// the caller rolls back and re-raises; on best-effort persistence (a
// search result snapshot) the caller logs and continues.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository %s failed: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error { return e.Err }
