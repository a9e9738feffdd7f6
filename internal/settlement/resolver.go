package settlement

import (
	"fmt"

	"github.com/ahrav/votechain/internal/domain"
)

// ResolveWinner picks the highest-scoring candidate from a validated
// set. Ties break toward the candidate listed first in the evidence
// bundle order, which follows the room's candidate insertion order, so
// repeated runs over the same data always pick the same winner.
//
// Returns domain.ErrNoScores when the set is empty; a validated set
// should never be empty, so an empty set here means the caller skipped
// reconciliation.
func ResolveWinner(scores ValidatedScores, bundles []domain.EvidenceBundle) (domain.CandidateScore, error) {
	if scores.Len() == 0 {
		return domain.CandidateScore{}, fmt.Errorf("resolving winner: %w", domain.ErrNoScores)
	}

	indexed := scores.byCandidate()

	var (
		winner domain.CandidateScore
		found  bool
	)
	for _, b := range bundles {
		cs, ok := indexed[b.CandidateID]
		if !ok {
			continue
		}
		if !found || cs.Score > winner.Score {
			winner = cs
			found = true
		}
	}

	if !found {
		// Scores referencing no bundle cannot happen after
		// reconciliation, but guard against a hand-rolled set.
		return domain.CandidateScore{}, fmt.Errorf("resolving winner: %w", domain.ErrNoScores)
	}
	return winner, nil
}
