package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/lib/pq"

	"github.com/ahrav/votechain/internal/domain"
	"github.com/ahrav/votechain/internal/ports"
)

// Store implements ports.SettlementStore over database/sql.
type Store struct {
	db       *sql.DB
	postgres bool
}

var _ ports.SettlementStore = (*Store)(nil)

// NewStore wraps an open database handle. driver selects placeholder
// dialect: "postgres" keeps $N placeholders, anything else (SQLite)
// gets them rebound to ?N.
func NewStore(db *sql.DB, driver string) *Store {
	return &Store{db: db, postgres: driver == "postgres"}
}

var placeholderPattern = regexp.MustCompile(`\$(\d+)`)

// q rebinds a PostgreSQL-style query for the active driver.
func (s *Store) q(query string) string {
	if s.postgres {
		return query
	}
	return placeholderPattern.ReplaceAllString(query, "?$1")
}

// isUniqueViolation detects unique-constraint failures across both
// supported drivers.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "constraint failed")
}

// GetRoom fetches a room by id.
func (s *Store) GetRoom(ctx context.Context, roomID string) (domain.Room, error) {
	var (
		room     domain.Room
		deadline sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT id, owner_id, name, evaluation_criteria, voting_deadline, status, created_at
		FROM rooms WHERE id = $1
	`), roomID).Scan(
		&room.ID, &room.OwnerID, &room.Name, &room.EvaluationCriteria,
		&deadline, &room.Status, &room.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Room{}, fmt.Errorf("room %s: %w", roomID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Room{}, fmt.Errorf("fetching room: %w", err)
	}
	if deadline.Valid {
		room.VotingDeadline = deadline.Time
	}
	return room, nil
}

// ListCandidates returns the room's candidates in creation order.
func (s *Store) ListCandidates(ctx context.Context, roomID string) ([]domain.Candidate, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT id, room_id, name, description
		FROM candidates WHERE room_id = $1
		ORDER BY created_at, id
	`), roomID)
	if err != nil {
		return nil, fmt.Errorf("listing candidates: %w", err)
	}
	defer rows.Close()

	var candidates []domain.Candidate
	for rows.Next() {
		var (
			c           domain.Candidate
			description sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.RoomID, &c.Name, &description); err != nil {
			return nil, fmt.Errorf("scanning candidate: %w", err)
		}
		c.Description = description.String
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// CountVotes returns the number of distinct voters per candidate.
func (s *Store) CountVotes(ctx context.Context, roomID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT v.candidate_id, COUNT(DISTINCT v.user_id)
		FROM votes v
		JOIN candidates c ON c.id = v.candidate_id
		WHERE c.room_id = $1
		GROUP BY v.candidate_id
	`), roomID)
	if err != nil {
		return nil, fmt.Errorf("counting votes: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			candidateID string
			count       int
		)
		if err := rows.Scan(&candidateID, &count); err != nil {
			return nil, fmt.Errorf("scanning vote count: %w", err)
		}
		counts[candidateID] = count
	}
	return counts, rows.Err()
}

// ListEvaluations returns feedback texts per candidate in submission
// order.
func (s *Store) ListEvaluations(ctx context.Context, roomID string) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT e.candidate_id, e.feedback
		FROM evaluations e
		JOIN candidates c ON c.id = e.candidate_id
		WHERE c.room_id = $1
		ORDER BY e.created_at, e.id
	`), roomID)
	if err != nil {
		return nil, fmt.Errorf("listing evaluations: %w", err)
	}
	defer rows.Close()

	evaluations := make(map[string][]string)
	for rows.Next() {
		var candidateID, feedback string
		if err := rows.Scan(&candidateID, &feedback); err != nil {
			return nil, fmt.Errorf("scanning evaluation: %w", err)
		}
		evaluations[candidateID] = append(evaluations[candidateID], feedback)
	}
	return evaluations, rows.Err()
}

// InsertScores appends the score records of one settlement attempt.
func (s *Store) InsertScores(ctx context.Context, records []domain.ScoreRecord) error {
	query := s.q(`
		INSERT INTO ai_scores (id, room_id, candidate_id, attempt_id, origin, score, reasoning, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`)
	for _, r := range records {
		_, err := s.db.ExecContext(ctx, query,
			r.ID, r.RoomID, r.CandidateID, r.AttemptID, r.Origin, r.Score, r.Reasoning, r.CreatedAt)
		if err != nil {
			return fmt.Errorf("inserting score for candidate %s: %w", r.CandidateID, err)
		}
	}
	return nil
}

// DeleteScoresByAttempt removes the score rows of one attempt.
func (s *Store) DeleteScoresByAttempt(ctx context.Context, attemptID string) error {
	_, err := s.db.ExecContext(ctx,
		s.q(`DELETE FROM ai_scores WHERE attempt_id = $1`), attemptID)
	if err != nil {
		return fmt.Errorf("deleting scores for attempt %s: %w", attemptID, err)
	}
	return nil
}

// InsertWinner creates the room's winner record. A second insert for
// the same room trips the uniqueness constraint and returns
// domain.ErrAlreadyFinalized.
func (s *Store) InsertWinner(ctx context.Context, winner domain.Winner) error {
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO winners (id, room_id, candidate_id, final_score, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`), winner.ID, winner.RoomID, winner.CandidateID, winner.FinalScore, winner.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("room %s: %w", winner.RoomID, domain.ErrAlreadyFinalized)
		}
		return fmt.Errorf("inserting winner: %w", err)
	}
	return nil
}

// InsertLedgerRecord persists the outcome of a ledger commit attempt.
func (s *Store) InsertLedgerRecord(ctx context.Context, record domain.LedgerRecord) error {
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO ledger_records (id, winner_id, transaction_id, network, status, error, block_timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`), record.ID, record.WinnerID, record.TransactionID, record.Network,
		record.Status, record.Err, record.BlockTimestamp)
	if err != nil {
		return fmt.Errorf("inserting ledger record: %w", err)
	}
	return nil
}

// FinalizeRoom transitions the room status to finalized. The update is
// conditional so a replayed call cannot clobber anything.
func (s *Store) FinalizeRoom(ctx context.Context, roomID string) error {
	_, err := s.db.ExecContext(ctx, s.q(`
		UPDATE rooms SET status = 'finalized'
		WHERE id = $1 AND status <> 'finalized'
	`), roomID)
	if err != nil {
		return fmt.Errorf("finalizing room: %w", err)
	}
	return nil
}
