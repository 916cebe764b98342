package core

import (
	"errors"
	"fmt"
)

// ErrEmbeddingUnavailable indicates the upstream embedding call failed and
// classification or retrieval cannot proceed. The fallback (typically
// treat-as-neutral) is the caller's decision, not applied here.
var ErrEmbeddingUnavailable = errors.New("embedding unavailable")

// ErrScopeNotFound indicates an operation referenced an unknown memory scope.
var ErrScopeNotFound = errors.New("memory scope not found")

// DuplicateError rejects a memory insertion whose text is too similar to an
// existing entry in the same scope. It is a business rule outcome, not a
// failure: callers surface it (e.g. "already remembered") rather than retry.
type DuplicateError struct {
	Scope      string
	ExistingID string
	Similarity float64
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("similar memory already exists in scope %s (id=%s, similarity=%.2f)",
		e.Scope, e.ExistingID, e.Similarity)
}

// ResponseError indicates the completion call failed after a persona was
// already selected. It is distinct from ErrEmbeddingUnavailable so callers
// can tell "couldn't understand intent" from "couldn't generate a reply".
type ResponseError struct {
	Persona string
	Err     error
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("response generation failed (persona=%s): %v", e.Persona, e.Err)
}

func (e *ResponseError) Unwrap() error {
	return e.Err
}
