package settlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/votechain/internal/domain"
)

func validated(origin domain.ScoreOrigin, scores ...domain.CandidateScore) ValidatedScores {
	return ValidatedScores{origin: origin, scores: scores}
}

func TestResolveWinner(t *testing.T) {
	t.Parallel()

	bundles := testBundles()
	tests := []struct {
		name    string
		scores  ValidatedScores
		wantID  string
		wantErr error
	}{
		{
			name: "highest score wins",
			scores: validated(domain.OriginOracle,
				domain.CandidateScore{CandidateID: bundles[0].CandidateID, Score: 70},
				domain.CandidateScore{CandidateID: bundles[1].CandidateID, Score: 91},
				domain.CandidateScore{CandidateID: bundles[2].CandidateID, Score: 55},
			),
			wantID: bundles[1].CandidateID,
		},
		{
			name: "tie breaks toward earlier candidate",
			scores: validated(domain.OriginOracle,
				domain.CandidateScore{CandidateID: bundles[2].CandidateID, Score: 80},
				domain.CandidateScore{CandidateID: bundles[1].CandidateID, Score: 80},
			),
			wantID: bundles[1].CandidateID,
		},
		{
			name: "single score",
			scores: validated(domain.OriginVoteFallback,
				domain.CandidateScore{CandidateID: bundles[2].CandidateID, Score: 50},
			),
			wantID: bundles[2].CandidateID,
		},
		{
			name:    "empty set",
			scores:  ValidatedScores{},
			wantErr: domain.ErrNoScores,
		},
		{
			name: "scores reference no known candidate",
			scores: validated(domain.OriginOracle,
				domain.CandidateScore{CandidateID: "ghost", Score: 99},
			),
			wantErr: domain.ErrNoScores,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			winner, err := ResolveWinner(tt.scores, bundles)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, winner.CandidateID)
		})
	}
}

func TestResolveWinner_Deterministic(t *testing.T) {
	t.Parallel()

	bundles := testBundles()
	scores := validated(domain.OriginOracle,
		domain.CandidateScore{CandidateID: bundles[0].CandidateID, Score: 85},
		domain.CandidateScore{CandidateID: bundles[1].CandidateID, Score: 85},
		domain.CandidateScore{CandidateID: bundles[2].CandidateID, Score: 85},
	)

	first, err := ResolveWinner(scores, bundles)
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		again, err := ResolveWinner(scores, bundles)
		require.NoError(t, err)
		assert.Equal(t, first.CandidateID, again.CandidateID)
	}
}
