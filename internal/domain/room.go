// Package domain contains the pure types and errors of the settlement
// pipeline. Nothing here performs I/O; adapters under infrastructure/
// and the orchestration in internal/settlement depend on this package,
// never the other way around.
package domain

import "time"

// RoomStatus is the lifecycle state of a voting room.
// Settlement is the one-way transition into StatusFinalized; the
// pipeline must never re-finalize a room that already reached it.
type RoomStatus string

// Room lifecycle states.
const (
	// StatusDraft is a room still being configured by its owner.
	StatusDraft RoomStatus = "draft"

	// StatusActive is a room currently collecting votes and evaluations.
	StatusActive RoomStatus = "active"

	// StatusVotingEnded is a room whose deadline passed but which has
	// not been settled yet.
	StatusVotingEnded RoomStatus = "voting_ended"

	// StatusFinalized is the terminal state. A finalized room has
	// exactly one Winner and one LedgerRecord.
	StatusFinalized RoomStatus = "finalized"
)

// Room is a bounded voting contest with criteria, candidates, and a
// deadline. The settlement core only ever mutates Status; everything
// else belongs to room management outside this repository's scope.
type Room struct {
	// ID uniquely identifies the room.
	ID string `json:"id"`

	// OwnerID is the user who created the room. Only the owner may
	// trigger settlement.
	OwnerID string `json:"owner_id"`

	// Name is the human-readable room title.
	Name string `json:"name"`

	// EvaluationCriteria is the owner-authored free text handed to the
	// scoring oracle verbatim.
	EvaluationCriteria string `json:"evaluation_criteria"`

	// VotingDeadline is advisory for the surrounding application; the
	// settlement core does not gate on it.
	VotingDeadline time.Time `json:"voting_deadline"`

	// Status is the room's lifecycle state.
	Status RoomStatus `json:"status"`

	// CreatedAt records when the room was created.
	CreatedAt time.Time `json:"created_at"`
}

// Candidate is an entry competing within a room. Read-only to the
// settlement core.
type Candidate struct {
	ID          string `json:"id"`
	RoomID      string `json:"room_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Vote is a presence signal: at most one per (candidate, user), no
// weight. Votes feed the evidence bundles and the deterministic
// fallback scorer.
type Vote struct {
	CandidateID string    `json:"candidate_id"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Evaluation is free-text feedback on a candidate, at most one per
// (candidate, user) with last write winning. Supplied verbatim to the
// oracle.
type Evaluation struct {
	CandidateID string    `json:"candidate_id"`
	UserID      string    `json:"user_id"`
	Feedback    string    `json:"feedback"`
	CreatedAt   time.Time `json:"created_at"`
}
