package graph

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an operation references a node id that is not
// in the store. Feedback for an unknown node surfaces this to the caller.
var ErrNotFound = errors.New("node not found")

// ErrInvariant indicates a graph invariant would be broken: a self-loop, a
// duplicate node id or edge pair, or an edge to a nonexistent node. It marks
// a programming defect at the call site, not a user-facing condition.
var ErrInvariant = errors.New("graph invariant violation")

// ValidationError rejects a single malformed input record. The batch
// continues; the error is reported in the ingest summary.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid record: " + e.Reason
}

// EmbeddingError marks a per-item embedding failure (provider error or wrong
// dimensionality). The affected node is skipped; the batch continues.
type EmbeddingError struct {
	SourceReference string
	Err             error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embed %s: %v", e.SourceReference, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }
