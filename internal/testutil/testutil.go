// Package testutil provides shared helpers for integration-style tests
// that want a real store backed by in-memory SQLite.
package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ahrav/votechain/infrastructure/storage"
	"github.com/ahrav/votechain/internal/domain"
)

// NewTestStore opens an in-memory SQLite database with the full schema
// applied and returns a store over it. The connection pool is pinned to
// one connection; each pooled connection would otherwise get its own
// private in-memory database.
func NewTestStore(t *testing.T) (*storage.Store, *sql.DB) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := storage.CreateSchema(db); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	return storage.NewStore(db, "sqlite"), db
}

// CreateTestRoom inserts a room owned by ownerID in the given status.
func CreateTestRoom(t *testing.T, db *sql.DB, ownerID string, status domain.RoomStatus) domain.Room {
	t.Helper()

	room := domain.Room{
		ID:                 uuid.NewString(),
		OwnerID:            ownerID,
		Name:               "Test Room",
		EvaluationCriteria: "feasibility and impact",
		Status:             status,
		CreatedAt:          time.Now().UTC(),
	}
	_, err := db.Exec(`
		INSERT INTO rooms (id, owner_id, name, evaluation_criteria, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, room.ID, room.OwnerID, room.Name, room.EvaluationCriteria, room.Status, room.CreatedAt)
	if err != nil {
		t.Fatalf("failed to insert test room: %v", err)
	}
	return room
}

// AddTestCandidate inserts a candidate into the room.
func AddTestCandidate(t *testing.T, db *sql.DB, roomID, name, description string) domain.Candidate {
	t.Helper()

	candidate := domain.Candidate{
		ID:          uuid.NewString(),
		RoomID:      roomID,
		Name:        name,
		Description: description,
	}
	_, err := db.Exec(`
		INSERT INTO candidates (id, room_id, name, description, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, candidate.ID, candidate.RoomID, candidate.Name, candidate.Description, time.Now().UTC())
	if err != nil {
		t.Fatalf("failed to insert test candidate: %v", err)
	}
	return candidate
}

// AddVote records a vote by userID for the candidate.
func AddVote(t *testing.T, db *sql.DB, candidateID, userID string) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO votes (candidate_id, user_id, created_at) VALUES (?, ?, ?)
	`, candidateID, userID, time.Now().UTC())
	if err != nil {
		t.Fatalf("failed to insert test vote: %v", err)
	}
}

// AddEvaluation records feedback by userID for the candidate.
func AddEvaluation(t *testing.T, db *sql.DB, candidateID, userID, feedback string) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO evaluations (id, candidate_id, user_id, feedback, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, uuid.NewString(), candidateID, userID, feedback, time.Now().UTC())
	if err != nil {
		t.Fatalf("failed to insert test evaluation: %v", err)
	}
}
