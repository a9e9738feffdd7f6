// Package storage implements the relational store behind the
// settlement pipeline. It targets PostgreSQL in production and SQLite
// for tests; queries are written with PostgreSQL placeholders and
// rebound for SQLite, and timestamps are always set from Go so both
// engines see identical values.
package storage

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables the settlement pipeline needs.
// Safe to call multiple times - uses IF NOT EXISTS.
//
// The UNIQUE constraint on winners(room_id) is load-bearing: it is the
// at-most-once settlement guard the whole pipeline leans on.
func CreateSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

const schema = `
-- Rooms
CREATE TABLE IF NOT EXISTS rooms (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    name TEXT NOT NULL,
    evaluation_criteria TEXT NOT NULL DEFAULT '',
    voting_deadline TIMESTAMP,
    status TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'active', 'voting_ended', 'finalized')),
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rooms_owner_id ON rooms(owner_id);
CREATE INDEX IF NOT EXISTS idx_rooms_status ON rooms(status);

-- Candidates
CREATE TABLE IF NOT EXISTS candidates (
    id TEXT PRIMARY KEY,
    room_id TEXT NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    description TEXT,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_candidates_room_id ON candidates(room_id);

-- Votes
CREATE TABLE IF NOT EXISTS votes (
    candidate_id TEXT NOT NULL REFERENCES candidates(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    PRIMARY KEY (candidate_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_votes_candidate_id ON votes(candidate_id);

-- Evaluations
CREATE TABLE IF NOT EXISTS evaluations (
    id TEXT PRIMARY KEY,
    candidate_id TEXT NOT NULL REFERENCES candidates(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    feedback TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    UNIQUE (candidate_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_evaluations_candidate_id ON evaluations(candidate_id);

-- AI Scores
CREATE TABLE IF NOT EXISTS ai_scores (
    id TEXT PRIMARY KEY,
    room_id TEXT NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
    candidate_id TEXT NOT NULL REFERENCES candidates(id) ON DELETE CASCADE,
    attempt_id TEXT NOT NULL,
    origin TEXT NOT NULL CHECK (origin IN ('oracle', 'vote_fallback')),
    score INTEGER NOT NULL CHECK (score >= 0 AND score <= 100),
    reasoning TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ai_scores_room_id ON ai_scores(room_id);
CREATE INDEX IF NOT EXISTS idx_ai_scores_attempt_id ON ai_scores(attempt_id);

-- Winners
CREATE TABLE IF NOT EXISTS winners (
    id TEXT PRIMARY KEY,
    room_id TEXT NOT NULL UNIQUE REFERENCES rooms(id) ON DELETE CASCADE,
    candidate_id TEXT NOT NULL REFERENCES candidates(id),
    final_score INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL
);

-- Ledger Records
CREATE TABLE IF NOT EXISTS ledger_records (
    id TEXT PRIMARY KEY,
    winner_id TEXT NOT NULL UNIQUE REFERENCES winners(id) ON DELETE CASCADE,
    transaction_id TEXT NOT NULL,
    network TEXT NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('confirmed', 'pending', 'simulated', 'failed')),
    error TEXT NOT NULL DEFAULT '',
    block_timestamp TIMESTAMP NOT NULL
);
`
