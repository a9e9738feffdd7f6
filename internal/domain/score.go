package domain

import "time"

// Score bounds. Oracle-reported values outside this range are clamped
// rather than rejected.
const (
	MinScore = 0
	MaxScore = 100
)

// ClampScore restricts a score to [MinScore, MaxScore].
func ClampScore(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// RawScore is a single unvalidated line from the oracle. Its
// CandidateID may be anything the model produced: a real identifier, a
// candidate name, a truncation, or garbage. Only the reconciler may
// promote raw scores into a validated set.
type RawScore struct {
	CandidateID string `json:"candidate_id"`
	Score       int    `json:"score"`
	Reasoning   string `json:"reasoning"`
}

// OracleResponse is the best-effort parse of one oracle call. The
// response is modeled as untrusted input: a transport failure is an
// error, but a present-yet-unparseable body is a value with Unparseable
// set, so the caller can fall back deterministically instead of
// aborting.
type OracleResponse struct {
	// Scores holds the parsed raw score lines, clamped to [0,100].
	Scores []RawScore

	// Unparseable reports that a response arrived but no structured
	// score list could be extracted from it.
	Unparseable bool

	// Model identifies which oracle model produced the response.
	Model string
}

// ScoreOrigin tags how a committed score set was produced. Downstream
// code treats both origins uniformly; the tag exists for audit only.
type ScoreOrigin string

const (
	// OriginOracle marks scores taken from a usable oracle response.
	OriginOracle ScoreOrigin = "oracle"

	// OriginVoteFallback marks scores computed deterministically from
	// vote counts after the oracle output was discarded.
	OriginVoteFallback ScoreOrigin = "vote_fallback"
)

// CandidateScore is one validated, persisted score: the candidate
// identifier is guaranteed to reference a real candidate of the room.
type CandidateScore struct {
	CandidateID string `json:"candidate_id"`
	Score       int    `json:"score"`
	Reasoning   string `json:"reasoning"`
}

// ScoreRecord is the immutable persisted form of a CandidateScore.
// Score rows are append-only; AttemptID groups the rows written by one
// settlement attempt so a losing racer can compensate its own writes.
type ScoreRecord struct {
	ID          string      `json:"id"`
	RoomID      string      `json:"room_id"`
	CandidateID string      `json:"candidate_id"`
	AttemptID   string      `json:"attempt_id"`
	Origin      ScoreOrigin `json:"origin"`
	Score       int         `json:"score"`
	Reasoning   string      `json:"reasoning"`
	CreatedAt   time.Time   `json:"created_at"`
}
