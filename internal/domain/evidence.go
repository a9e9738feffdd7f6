package domain

// EvidenceBundle is the per-candidate aggregation of votes and
// evaluation texts fed to the scoring oracle. Bundles are ephemeral:
// they are built fresh on every settlement attempt so the evidence
// always reflects the store's state at invocation time, and they are
// never cached across invocations.
type EvidenceBundle struct {
	// CandidateID is the authoritative identifier of the candidate.
	CandidateID string `json:"candidate_id"`

	// Name is the candidate's display name, used by the reconciler to
	// repair oracle responses that echo a name instead of an ID.
	Name string `json:"name"`

	// Description is the optional candidate description.
	Description string `json:"description,omitempty"`

	// VoteCount is the number of distinct users who voted for the
	// candidate. It doubles as the input to the deterministic fallback
	// scorer.
	VoteCount int `json:"vote_count"`

	// Evaluations holds the candidate's feedback texts in storage
	// order. Order carries no semantic weight beyond readability of the
	// oracle prompt.
	Evaluations []string `json:"evaluations"`
}

// FallbackScore is the deterministic vote-based score used when the
// oracle's output is unusable: min(100, votes*15+50). Every candidate
// always ends up scored, so settlement can proceed without the oracle.
func (b EvidenceBundle) FallbackScore() int {
	score := b.VoteCount*15 + 50
	if score > 100 {
		return 100
	}
	return score
}
