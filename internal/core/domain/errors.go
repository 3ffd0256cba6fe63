package domain

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown document type or provider.
	ErrUnsupportedType = errors.New("unsupported type")

	// Coding Errors.

	// ErrDuplicateName indicates a code name collides case-insensitively with another code.
	ErrDuplicateName = errors.New("duplicate code name")

	// ErrInvalidSelection indicates excerpt offsets or text do not match the document.
	ErrInvalidSelection = errors.New("invalid text selection")

	// ErrInvalidHierarchy indicates a parent/level combination outside main -> child -> subchild.
	ErrInvalidHierarchy = errors.New("invalid code hierarchy")

	// ErrNoCodes indicates an excerpt was requested without any code.
	ErrNoCodes = errors.New("at least one code is required")

	// ErrNothingToUndo indicates the study's undo stack is empty.
	ErrNothingToUndo = errors.New("nothing to undo")

	// Container Errors.

	// ErrNoActiveStudy indicates an operation needs a study but none is selected.
	ErrNoActiveStudy = errors.New("no active study")

	// ErrNoActiveWorkspace indicates an operation needs a workspace but none is selected.
	ErrNoActiveWorkspace = errors.New("no active workspace")

	// ErrConflict indicates the persisted state changed since it was loaded.
	ErrConflict = errors.New("state changed concurrently")

	// External Errors.

	// ErrParseFailed indicates a document could not be converted to text.
	ErrParseFailed = errors.New("document parse failed")

	// ErrRateLimited indicates the LLM provider rejected a request for exceeding its quota.
	ErrRateLimited = errors.New("rate limited")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// AI suggestions fall back to local heuristics.
	ErrLLMUnavailable = errors.New("LLM service unavailable")
)

// RateLimitError reports a provider quota rejection. It matches ErrRateLimited
// with errors.Is.
type RateLimitError struct {
	Provider string
	// RetryAfter is zero when the provider did not say when to retry.
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s: rate limited, retry in %s", e.Provider, e.RetryAfter)
	}
	return e.Provider + ": rate limited"
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }
