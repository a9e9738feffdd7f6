package settlement

import (
	"context"
	"sync"

	"github.com/ahrav/votechain/internal/domain"
)

// fakeStore is an in-memory SettlementStore for pipeline tests. Method
// hooks override individual calls to inject failures.
type fakeStore struct {
	mu sync.Mutex

	room        domain.Room
	roomErr     error
	candidates  []domain.Candidate
	votes       map[string]int
	evaluations map[string][]string

	scores        []domain.ScoreRecord
	winners       []domain.Winner
	ledgerRecords []domain.LedgerRecord
	finalized     bool

	insertWinnerErr error
	insertScoresErr error
}

func newFakeStore(room domain.Room, candidates []domain.Candidate) *fakeStore {
	return &fakeStore{
		room:        room,
		candidates:  candidates,
		votes:       map[string]int{},
		evaluations: map[string][]string{},
	}
}

func (s *fakeStore) GetRoom(_ context.Context, roomID string) (domain.Room, error) {
	if s.roomErr != nil {
		return domain.Room{}, s.roomErr
	}
	if roomID != s.room.ID {
		return domain.Room{}, domain.ErrNotFound
	}
	return s.room, nil
}

func (s *fakeStore) ListCandidates(_ context.Context, _ string) ([]domain.Candidate, error) {
	return s.candidates, nil
}

func (s *fakeStore) CountVotes(_ context.Context, _ string) (map[string]int, error) {
	return s.votes, nil
}

func (s *fakeStore) ListEvaluations(_ context.Context, _ string) (map[string][]string, error) {
	return s.evaluations, nil
}

func (s *fakeStore) InsertScores(_ context.Context, records []domain.ScoreRecord) error {
	if s.insertScoresErr != nil {
		return s.insertScoresErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores = append(s.scores, records...)
	return nil
}

func (s *fakeStore) DeleteScoresByAttempt(_ context.Context, attemptID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.scores[:0]
	for _, r := range s.scores {
		if r.AttemptID != attemptID {
			kept = append(kept, r)
		}
	}
	s.scores = kept
	return nil
}

func (s *fakeStore) InsertWinner(_ context.Context, winner domain.Winner) error {
	if s.insertWinnerErr != nil {
		return s.insertWinnerErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.winners {
		if w.RoomID == winner.RoomID {
			return domain.ErrAlreadyFinalized
		}
	}
	s.winners = append(s.winners, winner)
	return nil
}

func (s *fakeStore) InsertLedgerRecord(_ context.Context, record domain.LedgerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledgerRecords = append(s.ledgerRecords, record)
	return nil
}

func (s *fakeStore) FinalizeRoom(_ context.Context, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finalized = true
	return nil
}

// fakeOracle returns a canned response or error.
type fakeOracle struct {
	resp  domain.OracleResponse
	err   error
	calls int
}

func (o *fakeOracle) ScoreCandidates(
	_ context.Context, _ string, _ []domain.EvidenceBundle,
) (domain.OracleResponse, error) {
	o.calls++
	if o.err != nil {
		return domain.OracleResponse{}, o.err
	}
	return o.resp, nil
}

func (o *fakeOracle) GetModel() string { return "fake-model" }

// fakeLedger records the proofs it was asked to commit.
type fakeLedger struct {
	result domain.LedgerResult
	proofs []domain.WinnerProof
}

func (l *fakeLedger) Commit(_ context.Context, proof domain.WinnerProof) domain.LedgerResult {
	l.proofs = append(l.proofs, proof)
	return l.result
}

func (l *fakeLedger) Network() string { return "hedera_testnet" }
