// Package ports defines the interfaces between the settlement core and
// its collaborators: the relational store, the scoring oracle, the
// distributed ledger, and the identity provider. Implementations live
// under infrastructure/.
package ports

import (
	"context"

	"github.com/ahrav/votechain/internal/domain"
)

// SettlementStore is the settlement core's view of the relational data
// store. Every method is a discrete CRUD call; no multi-statement
// transaction is assumed available. The single atomic guarantee the
// core relies on is InsertWinner's uniqueness guard on (room_id).
type SettlementStore interface {
	// GetRoom fetches a room by id.
	// Returns domain.ErrNotFound if the room does not exist.
	GetRoom(ctx context.Context, roomID string) (domain.Room, error)

	// ListCandidates returns the room's candidates in creation order.
	// The returned order defines the evidence-bundle order used for
	// deterministic tie-breaking.
	ListCandidates(ctx context.Context, roomID string) ([]domain.Candidate, error)

	// CountVotes returns the number of distinct voters per candidate of
	// the room. Candidates with no votes may be absent from the map.
	CountVotes(ctx context.Context, roomID string) (map[string]int, error)

	// ListEvaluations returns the feedback texts per candidate of the
	// room, in submission order.
	ListEvaluations(ctx context.Context, roomID string) (map[string][]string, error)

	// InsertScores appends the score records of one settlement attempt.
	InsertScores(ctx context.Context, records []domain.ScoreRecord) error

	// DeleteScoresByAttempt removes the score rows written by one
	// attempt. Used as compensation when the attempt loses the winner
	// race after its scores were already persisted.
	DeleteScoresByAttempt(ctx context.Context, attemptID string) error

	// InsertWinner creates the room's winner record. The (room_id)
	// uniqueness constraint makes this the at-most-once settlement
	// guard: a second insert for the same room returns
	// domain.ErrAlreadyFinalized.
	InsertWinner(ctx context.Context, winner domain.Winner) error

	// InsertLedgerRecord persists the outcome of the ledger commit
	// attempt for a winner.
	InsertLedgerRecord(ctx context.Context, record domain.LedgerRecord) error

	// FinalizeRoom transitions the room's status to finalized. The
	// update is conditional on the room not already being finalized and
	// reports nothing when the condition fails; the winner insert is
	// the authoritative guard.
	FinalizeRoom(ctx context.Context, roomID string) error
}
