// Package record persists tool side-effect records (captured leads and
// unanswered questions) for later review and the daily digest.
package record

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"doppel-ai/internal/domain"
)

// SQLiteRecorder implements domain.Recorder using SQLite.
type SQLiteRecorder struct {
	db *sql.DB
}

// NewSQLiteRecorder opens (or creates) a SQLite database at dbPath and runs
// the schema migration.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open record db: %w", err)
	}
	// WAL mode for better concurrent reads.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate record db: %w", err)
	}
	return &SQLiteRecorder{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS leads (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			email       TEXT NOT NULL,
			name        TEXT NOT NULL,
			notes       TEXT NOT NULL,
			captured_at TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS questions (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			question TEXT NOT NULL,
			asked_at TEXT NOT NULL
		);
	`)
	return err
}

// Close closes the underlying database connection.
func (s *SQLiteRecorder) Close() error {
	return s.db.Close()
}

// RecordLead implements domain.Recorder.
func (s *SQLiteRecorder) RecordLead(ctx context.Context, lead domain.Lead) error {
	capturedAt := lead.CapturedAt
	if capturedAt.IsZero() {
		capturedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO leads (email, name, notes, captured_at) VALUES (?, ?, ?, ?)",
		lead.Email, lead.Name, lead.Notes, capturedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return domain.NewDomainError("SQLiteRecorder.RecordLead", domain.ErrRecordStore, err.Error())
	}
	return nil
}

// RecordQuestion implements domain.Recorder.
func (s *SQLiteRecorder) RecordQuestion(ctx context.Context, question string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO questions (question, asked_at) VALUES (?, ?)",
		question, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return domain.NewDomainError("SQLiteRecorder.RecordQuestion", domain.ErrRecordStore, err.Error())
	}
	return nil
}

// Summary implements domain.Recorder. It counts records captured at or
// after the given time.
func (s *SQLiteRecorder) Summary(ctx context.Context, since time.Time) (domain.RecordSummary, error) {
	cutoff := since.UTC().Format(time.RFC3339Nano)

	var summary domain.RecordSummary
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM leads WHERE captured_at >= ?", cutoff,
	).Scan(&summary.Leads); err != nil {
		return domain.RecordSummary{}, domain.NewDomainError("SQLiteRecorder.Summary", domain.ErrRecordStore, err.Error())
	}
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM questions WHERE asked_at >= ?", cutoff,
	).Scan(&summary.Questions); err != nil {
		return domain.RecordSummary{}, domain.NewDomainError("SQLiteRecorder.Summary", domain.ErrRecordStore, err.Error())
	}
	return summary, nil
}

var _ domain.Recorder = (*SQLiteRecorder)(nil)
