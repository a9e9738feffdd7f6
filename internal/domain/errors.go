package domain

import (
	"errors"
	"fmt"
)

// Settlement error taxonomy. Handlers map these onto the wire; the
// orchestrator guarantees that any of them surfacing before the Winner
// record is persisted leaves no partial state behind.
var (
	// ErrUnauthorized indicates a missing or invalid caller credential.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the caller is not the room's owner.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound indicates the room does not exist or has no
	// candidates to settle.
	ErrNotFound = errors.New("not found")

	// ErrOracleUnavailable indicates a transport-level failure calling
	// the scoring oracle. Fatal to the attempt; no state is mutated.
	ErrOracleUnavailable = errors.New("oracle unavailable")

	// ErrNoScores indicates the post-reconciliation score set was still
	// empty. Fatal to the attempt; no state is mutated.
	ErrNoScores = errors.New("no scores to determine winner")

	// ErrAlreadyFinalized indicates settlement was invoked on a room
	// that already settled. A benign conflict, not a retryable failure.
	ErrAlreadyFinalized = errors.New("room already finalized")
)

// StageError wraps a failure with the pipeline stage it occurred in.
// It preserves the underlying sentinel for errors.Is matching.
type StageError struct {
	// Stage names the pipeline stage, e.g. "aggregate" or "oracle".
	Stage string

	// RoomID identifies the room being settled.
	RoomID string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface for StageError.
func (e *StageError) Error() string {
	return fmt.Sprintf("settlement stage %s failed for room %s: %v", e.Stage, e.RoomID, e.Err)
}

// Unwrap returns the underlying error for errors.Is / errors.As.
func (e *StageError) Unwrap() error { return e.Err }

// NewStageError creates a StageError for the given stage and room.
func NewStageError(stage, roomID string, err error) *StageError {
	return &StageError{Stage: stage, RoomID: roomID, Err: err}
}
