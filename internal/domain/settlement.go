package domain

import "time"

// Winner records the settled outcome of a room: exactly one per room,
// created once, immutable thereafter. The uniqueness of (RoomID) is the
// atomic guard that makes settlement at-most-once under concurrency.
type Winner struct {
	ID          string    `json:"id"`
	RoomID      string    `json:"room_id"`
	CandidateID string    `json:"candidate_id"`
	FinalScore  int       `json:"final_score"`
	CreatedAt   time.Time `json:"created_at"`
}

// LedgerStatus communicates the trust level of a ledger commit. A
// degraded status never blocks settlement; it only downgrades the
// badge shown downstream.
type LedgerStatus string

const (
	// LedgerConfirmed means the ledger's receipt explicitly reported
	// success.
	LedgerConfirmed LedgerStatus = "confirmed"

	// LedgerPending means the transaction was submitted but the receipt
	// did not report success.
	LedgerPending LedgerStatus = "pending"

	// LedgerSimulated means no ledger credentials were configured and
	// the commit was skipped with a clearly-flagged placeholder.
	LedgerSimulated LedgerStatus = "simulated"

	// LedgerFailed means the ledger call errored; the error text is
	// recorded and settlement proceeds regardless.
	LedgerFailed LedgerStatus = "failed"
)

// WinnerProof is the payload committed to the external ledger: enough
// to independently verify which candidate won which room, and when.
type WinnerProof struct {
	RoomID      string    `json:"room_id"`
	WinnerID    string    `json:"winner_id"`
	CandidateID string    `json:"candidate_id"`
	FinalScore  int       `json:"final_score"`
	Timestamp   time.Time `json:"timestamp"`
}

// LedgerResult is the outcome of one ledger commit attempt. It is a
// plain value, never an error: ledger failure is a recorded fact, not
// a propagated exception.
type LedgerResult struct {
	// TransactionID is a stable, externally resolvable identifier on
	// success, or a flagged simulated-/failed- placeholder otherwise.
	TransactionID string `json:"transaction_id"`

	// Network names the ledger network the commit targeted.
	Network string `json:"network"`

	// Status is the trust level of the attempt.
	Status LedgerStatus `json:"status"`

	// TopicID is the ledger topic holding the message, when one was
	// created.
	TopicID string `json:"topic_id,omitempty"`

	// Err carries the error text of a failed attempt.
	Err string `json:"error,omitempty"`
}

// LedgerRecord is the persisted form of a LedgerResult: exactly one per
// Winner, created once, immutable thereafter.
type LedgerRecord struct {
	ID             string       `json:"id"`
	WinnerID       string       `json:"winner_id"`
	TransactionID  string       `json:"transaction_id"`
	Network        string       `json:"network"`
	Status         LedgerStatus `json:"status"`
	Err            string       `json:"error,omitempty"`
	BlockTimestamp time.Time    `json:"block_timestamp"`
}

// SettlementResult is what the room owner sees after a successful
// settlement: the resolved winner plus the ledger trust status.
type SettlementResult struct {
	Winner CandidateScore `json:"winner"`
	Ledger LedgerResult   `json:"ledger"`
}
