// Package settlement implements the room settlement pipeline: evidence
// aggregation, oracle scoring, identity reconciliation, winner
// resolution, and the orchestrated commit of the outcome to the data
// store and the external ledger.
package settlement

import "github.com/ahrav/votechain/internal/domain"

// ValidatedScores is the trust boundary's output: a score set whose
// candidate identifiers are guaranteed to reference real candidates of
// the room, each at most once. The zero value is empty and unusable;
// only the Reconciler in this package constructs non-empty sets, so
// downstream stages never see raw oracle output.
type ValidatedScores struct {
	origin domain.ScoreOrigin
	scores []domain.CandidateScore
}

// Origin reports how the set was produced: taken from the oracle or
// computed by the deterministic vote fallback. Downstream consumers
// treat both uniformly.
func (v ValidatedScores) Origin() domain.ScoreOrigin { return v.origin }

// Len returns the number of validated scores.
func (v ValidatedScores) Len() int { return len(v.scores) }

// Scores returns a copy of the validated score list.
func (v ValidatedScores) Scores() []domain.CandidateScore {
	out := make([]domain.CandidateScore, len(v.scores))
	copy(out, v.scores)
	return out
}

// byCandidate indexes the set by candidate id for winner resolution.
func (v ValidatedScores) byCandidate() map[string]domain.CandidateScore {
	m := make(map[string]domain.CandidateScore, len(v.scores))
	for _, s := range v.scores {
		m[s.CandidateID] = s
	}
	return m
}
