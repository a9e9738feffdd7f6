package settlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/votechain/internal/domain"
)

func testBundles() []domain.EvidenceBundle {
	return []domain.EvidenceBundle{
		{CandidateID: "11111111-aaaa-bbbb-cccc-000000000001", Name: "Solar Microgrid", VoteCount: 3},
		{CandidateID: "11111111-aaaa-bbbb-cccc-000000000002", Name: "River Cleanup", VoteCount: 1},
		{CandidateID: "11111111-aaaa-bbbb-cccc-000000000003", Name: "Tool Library", VoteCount: 0},
	}
}

func TestReconciler_ExactIDsPassThrough(t *testing.T) {
	t.Parallel()
	r := NewReconciler(nil)
	bundles := testBundles()

	resp := domain.OracleResponse{Scores: []domain.RawScore{
		{CandidateID: bundles[0].CandidateID, Score: 88, Reasoning: "strong plan"},
		{CandidateID: bundles[1].CandidateID, Score: 64, Reasoning: "some impact"},
	}}

	got := r.Reconcile(resp, bundles)
	require.Equal(t, 2, got.Len())
	assert.Equal(t, domain.OriginOracle, got.Origin())

	scores := got.Scores()
	assert.Equal(t, bundles[0].CandidateID, scores[0].CandidateID)
	assert.Equal(t, 88, scores[0].Score)
	assert.Equal(t, "strong plan", scores[0].Reasoning)
}

func TestReconciler_RepairsIdentifiers(t *testing.T) {
	t.Parallel()

	bundles := testBundles()
	tests := []struct {
		name     string
		oracleID string
		wantID   string
	}{
		{
			name:     "name echoed instead of id",
			oracleID: "Solar Microgrid",
			wantID:   bundles[0].CandidateID,
		},
		{
			name:     "name wrapped in prose",
			oracleID: "Candidate: river cleanup project",
			wantID:   bundles[1].CandidateID,
		},
		{
			name:     "case folded name",
			oracleID: "TOOL LIBRARY",
			wantID:   bundles[2].CandidateID,
		},
		{
			name:     "truncated id",
			oracleID: "11111111-aaaa-bbbb-cccc-0000000000",
			wantID:   bundles[0].CandidateID,
		},
		{
			name:     "near-miss typo",
			oracleID: "Solar Microgrd",
			wantID:   bundles[0].CandidateID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := NewReconciler(nil)
			resp := domain.OracleResponse{Scores: []domain.RawScore{
				{CandidateID: tt.oracleID, Score: 70},
			}}

			got := r.Reconcile(resp, bundles)
			require.Equal(t, 1, got.Len())
			assert.Equal(t, tt.wantID, got.Scores()[0].CandidateID)
			assert.Equal(t, domain.OriginOracle, got.Origin())
		})
	}
}

func TestReconciler_DropsUnresolvedKeepsRest(t *testing.T) {
	t.Parallel()
	r := NewReconciler(nil)
	bundles := testBundles()

	resp := domain.OracleResponse{Scores: []domain.RawScore{
		{CandidateID: bundles[0].CandidateID, Score: 90},
		{CandidateID: "completely unrelated thing", Score: 85},
	}}

	got := r.Reconcile(resp, bundles)
	require.Equal(t, 1, got.Len())
	assert.Equal(t, bundles[0].CandidateID, got.Scores()[0].CandidateID)
	assert.Equal(t, domain.OriginOracle, got.Origin())
}

func TestReconciler_DuplicateLastWins(t *testing.T) {
	t.Parallel()
	r := NewReconciler(nil)
	bundles := testBundles()

	resp := domain.OracleResponse{Scores: []domain.RawScore{
		{CandidateID: bundles[0].CandidateID, Score: 40, Reasoning: "first"},
		{CandidateID: bundles[1].CandidateID, Score: 55},
		{CandidateID: "Solar Microgrid", Score: 92, Reasoning: "revised"},
	}}

	got := r.Reconcile(resp, bundles)
	require.Equal(t, 2, got.Len())

	scores := got.Scores()
	// First-seen position is kept, value comes from the last occurrence.
	assert.Equal(t, bundles[0].CandidateID, scores[0].CandidateID)
	assert.Equal(t, 92, scores[0].Score)
	assert.Equal(t, "revised", scores[0].Reasoning)
}

func TestReconciler_ClampsOutOfRangeScores(t *testing.T) {
	t.Parallel()
	r := NewReconciler(nil)
	bundles := testBundles()

	resp := domain.OracleResponse{Scores: []domain.RawScore{
		{CandidateID: bundles[0].CandidateID, Score: 150},
		{CandidateID: bundles[1].CandidateID, Score: -10},
	}}

	got := r.Reconcile(resp, bundles)
	scores := got.Scores()
	require.Len(t, scores, 2)
	assert.Equal(t, 100, scores[0].Score)
	assert.Equal(t, 0, scores[1].Score)
}

func TestReconciler_VoteFallback(t *testing.T) {
	t.Parallel()

	bundles := testBundles()
	tests := []struct {
		name string
		resp domain.OracleResponse
	}{
		{
			name: "unparseable response",
			resp: domain.OracleResponse{Unparseable: true},
		},
		{
			name: "empty score list",
			resp: domain.OracleResponse{},
		},
		{
			name: "nothing resolves",
			resp: domain.OracleResponse{Scores: []domain.RawScore{
				{CandidateID: "nonsense", Score: 77},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := NewReconciler(nil)

			got := r.Reconcile(tt.resp, bundles)
			require.Equal(t, len(bundles), got.Len())
			assert.Equal(t, domain.OriginVoteFallback, got.Origin())

			scores := got.Scores()
			assert.Equal(t, 95, scores[0].Score) // 3 votes
			assert.Equal(t, 65, scores[1].Score) // 1 vote
			assert.Equal(t, 50, scores[2].Score) // no votes
			for _, cs := range scores {
				assert.Contains(t, cs.Reasoning, "fallback: vote-count based")
			}
		})
	}
}
