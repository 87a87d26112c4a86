package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"shelver/internal/records"
)

// Outcome labels the result of a single stage execution attempt.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeBypassed  Outcome = "bypassed"
	OutcomeErrored   Outcome = "errored"
)

// Event is one recorded stage execution attempt.
type Event struct {
	ID        int64
	RecordID  string
	FileName  string
	Action    records.Action
	Outcome   Outcome
	Detail    string
	CreatedAt time.Time
}

// Store manages the audit trail backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database and applies migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Record appends one stage execution attempt to the trail.
func (s *Store) Record(ctx context.Context, event Event) error {
	if s == nil || s.db == nil {
		return nil
	}
	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO stage_events (record_id, file_name, action, outcome, detail, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		event.RecordID,
		event.FileName,
		string(event.Action),
		string(event.Outcome),
		event.Detail,
		createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert stage event: %w", err)
	}
	return nil
}

// ByRecord returns every attempt for one record in insertion order.
func (s *Store) ByRecord(ctx context.Context, recordID string) ([]Event, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, record_id, file_name, action, outcome, detail, created_at
         FROM stage_events WHERE record_id = ? ORDER BY id ASC`,
		recordID,
	)
	if err != nil {
		return nil, fmt.Errorf("query stage events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// Recent returns the newest attempts across all records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Event, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, record_id, file_name, action, outcome, detail, created_at
         FROM stage_events ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var (
			event     Event
			action    string
			outcome   string
			createdAt string
		)
		if err := rows.Scan(&event.ID, &event.RecordID, &event.FileName, &action, &outcome, &event.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scan stage event: %w", err)
		}
		event.Action = records.Action(action)
		event.Outcome = Outcome(outcome)
		if parsed, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			event.CreatedAt = parsed
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stage events: %w", err)
	}
	return events, nil
}
