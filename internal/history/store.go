// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history journals conversion attempts in a SQLite database so past
// runs can be listed and exported.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pdfdocx/pkg/types"
)

const (
	dbFile = "history.db"

	// timeLayout is fixed-width so stored timestamps sort lexically.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// DefaultPath returns $XDG_DATA_HOME/pdfdocx/history.db, falling back to
// ~/.local/share/pdfdocx/history.db.
func DefaultPath() string {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".pdfdocx", dbFile)
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "pdfdocx", dbFile)
}

// Store manages the history database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the history database at path, creating its
// directory and schema as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS conversions (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			batch_id TEXT,
			source TEXT NOT NULL,
			destination TEXT NOT NULL,
			pages INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			error_kind TEXT,
			error TEXT,
			started_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_status ON conversions(status)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_batch ON conversions(batch_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// NewBatchID returns an identifier grouping the entries of one batch run.
func NewBatchID() string {
	return uuid.NewString()
}

// Record stores e and returns it with ID and StartedAt filled in when they
// were empty.
func (s *Store) Record(ctx context.Context, e types.HistoryEntry) (types.HistoryEntry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.StartedAt.IsZero() {
		e.StartedAt = s.now()
	}
	if e.Status == "" {
		return e, errors.New("recording conversion: empty status")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversions (id, batch_id, source, destination, pages, status, error_kind, error, started_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, nullable(e.BatchID), e.Source, e.Destination, e.Pages, string(e.Status),
		nullable(e.ErrorKind), nullable(e.Error),
		e.StartedAt.UTC().Format(timeLayout), e.Duration.Milliseconds(),
	)
	if err != nil {
		return e, fmt.Errorf("recording conversion %s: %w", e.Source, err)
	}
	return e, nil
}

// Filter narrows List results.
type Filter struct {
	// Limit caps the number of entries (default 20).
	Limit int

	// FailedOnly keeps only failed conversions.
	FailedOnly bool

	// BatchID keeps only entries of one batch run.
	BatchID string
}

const defaultLimit = 20

// List returns journaled conversions, most recent first.
func (s *Store) List(ctx context.Context, f Filter) ([]types.HistoryEntry, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	var where []string
	var args []any
	if f.FailedOnly {
		where = append(where, "status = ?")
		args = append(args, string(types.ConversionFailed))
	}
	if f.BatchID != "" {
		where = append(where, "batch_id = ?")
		args = append(args, f.BatchID)
	}

	query := `SELECT id, batch_id, source, destination, pages, status, error_kind, error, started_at, duration_ms
		FROM conversions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY started_at DESC, rowid DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	out := make([]types.HistoryEntry, 0)
	for rows.Next() {
		var (
			e                  types.HistoryEntry
			batchID, kind, msg sql.NullString
			status, started    string
			durationMS         int64
		)
		if err := rows.Scan(&e.ID, &batchID, &e.Source, &e.Destination, &e.Pages, &status, &kind, &msg, &started, &durationMS); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		e.BatchID, e.ErrorKind, e.Error = batchID.String, kind.String, msg.String
		e.Status = types.ConversionStatus(status)
		e.Duration = time.Duration(durationMS) * time.Millisecond
		if e.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("parsing start time of %s: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
