package settlement

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/votechain/internal/domain"
)

func TestAggregator_Aggregate(t *testing.T) {
	t.Parallel()

	room := domain.Room{ID: "room-1", OwnerID: "owner-1", Status: domain.StatusVotingEnded}
	candidates := []domain.Candidate{
		{ID: "cand-a", RoomID: room.ID, Name: "Alpha", Description: "first entry"},
		{ID: "cand-b", RoomID: room.ID, Name: "Beta"},
	}
	store := newFakeStore(room, candidates)
	store.votes = map[string]int{"cand-a": 4}
	store.evaluations = map[string][]string{"cand-b": {"needs work", "promising"}}

	bundles, err := NewAggregator(store).Aggregate(context.Background(), room.ID)
	require.NoError(t, err)
	require.Len(t, bundles, 2)

	assert.Equal(t, "cand-a", bundles[0].CandidateID)
	assert.Equal(t, "Alpha", bundles[0].Name)
	assert.Equal(t, "first entry", bundles[0].Description)
	assert.Equal(t, 4, bundles[0].VoteCount)
	assert.Empty(t, bundles[0].Evaluations)

	assert.Equal(t, "cand-b", bundles[1].CandidateID)
	assert.Equal(t, 0, bundles[1].VoteCount)
	assert.Equal(t, []string{"needs work", "promising"}, bundles[1].Evaluations)
}

func TestAggregator_NoCandidates(t *testing.T) {
	t.Parallel()

	store := newFakeStore(domain.Room{ID: "room-1"}, nil)

	_, err := NewAggregator(store).Aggregate(context.Background(), "room-1")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
