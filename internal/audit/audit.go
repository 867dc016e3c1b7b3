// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package audit persists per-run telemetry to a local SQLite database.
// Only run metadata and degradation notes are stored, never search results
// or candidate records.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/kowshik24/position-finder/pkg/types"
)

const dbFile = "audit.db"

// Store writes run telemetry. A nil *Store is valid and records nothing,
// so callers never branch on whether auditing is configured.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the audit database under cfg.Dir. An empty Dir
// disables auditing and returns a nil store.
func NewStore(cfg types.AuditConfig) (*Store, error) {
	if cfg.Dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating audit directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening audit database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating audit schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			status TEXT,
			query_count INTEGER DEFAULT 0,
			candidate_count INTEGER DEFAULT 0,
			degradations TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			stage TEXT NOT NULL,
			detail TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_run_id ON events(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// BeginRun records the start of a pipeline run and returns its ID. On a nil
// store it returns an ID anyway so the caller can thread it through logs.
func (s *Store) BeginRun(ctx context.Context) (string, error) {
	runID := uuid.NewString()
	if s == nil {
		return runID, nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at) VALUES (?, ?)`,
		runID, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return runID, fmt.Errorf("recording run start: %w", err)
	}
	return runID, nil
}

// RecordEvent appends one stage-level event to a run.
func (s *Store) RecordEvent(ctx context.Context, runID, stage, detail string) error {
	if s == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (run_id, stage, detail, created_at) VALUES (?, ?, ?, ?)`,
		runID, stage, detail, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording event: %w", err)
	}
	return nil
}

// FinishRun records the outcome of a run.
func (s *Store) FinishRun(ctx context.Context, runID string, status types.RunStatus, queryCount, candidateCount int, degradations []string) error {
	if s == nil {
		return nil
	}
	degradationsJSON, _ := json.Marshal(degradations)
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, status = ?, query_count = ?, candidate_count = ?, degradations = ?
		 WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), string(status),
		queryCount, candidateCount, string(degradationsJSON), runID,
	)
	if err != nil {
		return fmt.Errorf("recording run outcome: %w", err)
	}
	return nil
}

// RunRecord is one row of run history.
type RunRecord struct {
	ID             string
	StartedAt      time.Time
	FinishedAt     time.Time
	Status         types.RunStatus
	QueryCount     int
	CandidateCount int
	Degradations   []string
}

// History returns the most recent runs, newest first.
func (s *Store) History(ctx context.Context, limit int) ([]RunRecord, error) {
	if s == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, status, query_count, candidate_count, degradations
		 FROM runs ORDER BY rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying run history: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var r RunRecord
		var startedAt string
		var finishedAt, status, degradations sql.NullString
		if err := rows.Scan(&r.ID, &startedAt, &finishedAt, &status, &r.QueryCount, &r.CandidateCount, &degradations); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		if finishedAt.Valid {
			r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finishedAt.String)
		}
		r.Status = types.RunStatus(status.String)
		if degradations.Valid && degradations.String != "" {
			_ = json.Unmarshal([]byte(degradations.String), &r.Degradations)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
