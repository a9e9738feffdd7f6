package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/votechain/internal/domain"
	"github.com/ahrav/votechain/internal/testutil"
)

func TestStore_GetRoom(t *testing.T) {
	t.Parallel()

	store, db := testutil.NewTestStore(t)
	room := testutil.CreateTestRoom(t, db, "owner-1", domain.StatusActive)

	got, err := store.GetRoom(context.Background(), room.ID)
	require.NoError(t, err)
	assert.Equal(t, room.ID, got.ID)
	assert.Equal(t, "owner-1", got.OwnerID)
	assert.Equal(t, domain.StatusActive, got.Status)
	assert.Equal(t, "feasibility and impact", got.EvaluationCriteria)

	_, err = store.GetRoom(context.Background(), "no-such-room")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_ListCandidatesPreservesOrder(t *testing.T) {
	t.Parallel()

	store, db := testutil.NewTestStore(t)
	room := testutil.CreateTestRoom(t, db, "owner-1", domain.StatusVotingEnded)

	first := testutil.AddTestCandidate(t, db, room.ID, "Alpha", "first")
	second := testutil.AddTestCandidate(t, db, room.ID, "Beta", "")

	got, err := store.ListCandidates(context.Background(), room.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, "first", got[0].Description)
	assert.Equal(t, second.ID, got[1].ID)
	assert.Empty(t, got[1].Description)
}

func TestStore_CountVotesDistinctVoters(t *testing.T) {
	t.Parallel()

	store, db := testutil.NewTestStore(t)
	room := testutil.CreateTestRoom(t, db, "owner-1", domain.StatusVotingEnded)
	a := testutil.AddTestCandidate(t, db, room.ID, "Alpha", "")
	b := testutil.AddTestCandidate(t, db, room.ID, "Beta", "")

	testutil.AddVote(t, db, a.ID, "voter-1")
	testutil.AddVote(t, db, a.ID, "voter-2")
	testutil.AddVote(t, db, b.ID, "voter-1")

	counts, err := store.CountVotes(context.Background(), room.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[a.ID])
	assert.Equal(t, 1, counts[b.ID])
}

func TestStore_ListEvaluations(t *testing.T) {
	t.Parallel()

	store, db := testutil.NewTestStore(t)
	room := testutil.CreateTestRoom(t, db, "owner-1", domain.StatusVotingEnded)
	a := testutil.AddTestCandidate(t, db, room.ID, "Alpha", "")

	testutil.AddEvaluation(t, db, a.ID, "voter-1", "solid execution")
	testutil.AddEvaluation(t, db, a.ID, "voter-2", "could be greener")

	evals, err := store.ListEvaluations(context.Background(), room.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"solid execution", "could be greener"}, evals[a.ID])
}

func TestStore_InsertWinnerEnforcesAtMostOnce(t *testing.T) {
	t.Parallel()

	store, db := testutil.NewTestStore(t)
	room := testutil.CreateTestRoom(t, db, "owner-1", domain.StatusVotingEnded)
	a := testutil.AddTestCandidate(t, db, room.ID, "Alpha", "")
	b := testutil.AddTestCandidate(t, db, room.ID, "Beta", "")

	first := domain.Winner{
		ID: uuid.NewString(), RoomID: room.ID, CandidateID: a.ID,
		FinalScore: 90, CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.InsertWinner(context.Background(), first))

	second := domain.Winner{
		ID: uuid.NewString(), RoomID: room.ID, CandidateID: b.ID,
		FinalScore: 95, CreatedAt: time.Now().UTC(),
	}
	err := store.InsertWinner(context.Background(), second)
	require.ErrorIs(t, err, domain.ErrAlreadyFinalized)
}

func TestStore_ScoreLifecycle(t *testing.T) {
	t.Parallel()

	store, db := testutil.NewTestStore(t)
	room := testutil.CreateTestRoom(t, db, "owner-1", domain.StatusVotingEnded)
	a := testutil.AddTestCandidate(t, db, room.ID, "Alpha", "")

	attemptID := uuid.NewString()
	records := []domain.ScoreRecord{{
		ID:          uuid.NewString(),
		RoomID:      room.ID,
		CandidateID: a.ID,
		AttemptID:   attemptID,
		Origin:      domain.OriginOracle,
		Score:       77,
		Reasoning:   "well reasoned",
		CreatedAt:   time.Now().UTC(),
	}}
	require.NoError(t, store.InsertScores(context.Background(), records))

	var count int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM ai_scores WHERE attempt_id = ?`, attemptID).Scan(&count))
	assert.Equal(t, 1, count)

	require.NoError(t, store.DeleteScoresByAttempt(context.Background(), attemptID))
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM ai_scores WHERE attempt_id = ?`, attemptID).Scan(&count))
	assert.Zero(t, count)
}

func TestStore_LedgerRecord(t *testing.T) {
	t.Parallel()

	store, db := testutil.NewTestStore(t)
	room := testutil.CreateTestRoom(t, db, "owner-1", domain.StatusVotingEnded)
	a := testutil.AddTestCandidate(t, db, room.ID, "Alpha", "")

	winner := domain.Winner{
		ID: uuid.NewString(), RoomID: room.ID, CandidateID: a.ID,
		FinalScore: 90, CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.InsertWinner(context.Background(), winner))

	record := domain.LedgerRecord{
		ID:             uuid.NewString(),
		WinnerID:       winner.ID,
		TransactionID:  "0.0.12345-1700000000-000000001",
		Network:        "hedera_testnet",
		Status:         domain.LedgerConfirmed,
		BlockTimestamp: time.Now().UTC(),
	}
	require.NoError(t, store.InsertLedgerRecord(context.Background(), record))

	var status string
	require.NoError(t, db.QueryRow(
		`SELECT status FROM ledger_records WHERE winner_id = ?`, winner.ID).Scan(&status))
	assert.Equal(t, "confirmed", status)
}

func TestStore_FinalizeRoom(t *testing.T) {
	t.Parallel()

	store, db := testutil.NewTestStore(t)
	room := testutil.CreateTestRoom(t, db, "owner-1", domain.StatusVotingEnded)

	require.NoError(t, store.FinalizeRoom(context.Background(), room.ID))

	got, err := store.GetRoom(context.Background(), room.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFinalized, got.Status)

	// Replaying the transition is harmless.
	require.NoError(t, store.FinalizeRoom(context.Background(), room.ID))
}
