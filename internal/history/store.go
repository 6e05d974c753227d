// Package history persists a journal of backup cycles backed by SQLite.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Cycle records one pass of the backup loop.
type Cycle struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time
	FilesSeen    int
	FilesCopied  int
	FilesSkipped int
	BytesCopied  int64
	ErrorMessage string
}

// Duration returns how long the cycle ran, or zero while still running.
func (c *Cycle) Duration() time.Duration {
	if c.FinishedAt.IsZero() {
		return 0
	}
	return c.FinishedAt.Sub(c.StartedAt)
}

// Store manages cycle persistence.
type Store struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS cycles (
    id TEXT PRIMARY KEY,
    started_at TEXT NOT NULL,
    finished_at TEXT,
    files_seen INTEGER NOT NULL DEFAULT 0,
    files_copied INTEGER NOT NULL DEFAULT 0,
    files_skipped INTEGER NOT NULL DEFAULT 0,
    bytes_copied INTEGER NOT NULL DEFAULT 0,
    error_message TEXT
);
CREATE INDEX IF NOT EXISTS idx_cycles_started_at ON cycles(started_at);
`

// Open initializes or connects to the history database in dir.
func Open(dir string) (*Store, error) {
	dbPath := filepath.Join(dir, "history.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}
	return &Store{db: db, path: dbPath}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Begin inserts a new running cycle and returns it.
func (s *Store) Begin(ctx context.Context) (*Cycle, error) {
	cycle := &Cycle{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO cycles (id, started_at) VALUES (?, ?)`,
		cycle.ID,
		cycle.StartedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert cycle: %w", err)
	}
	return cycle, nil
}

// Finish records the cycle's outcome.
func (s *Store) Finish(ctx context.Context, cycle *Cycle) error {
	if cycle == nil {
		return errors.New("cycle is nil")
	}
	cycle.FinishedAt = time.Now().UTC()
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE cycles
         SET finished_at = ?, files_seen = ?, files_copied = ?, files_skipped = ?,
             bytes_copied = ?, error_message = ?
         WHERE id = ?`,
		cycle.FinishedAt.Format(time.RFC3339Nano),
		cycle.FilesSeen,
		cycle.FilesCopied,
		cycle.FilesSkipped,
		cycle.BytesCopied,
		nullableString(cycle.ErrorMessage),
		cycle.ID,
	)
	if err != nil {
		return fmt.Errorf("finish cycle: %w", err)
	}
	return nil
}

// Recent returns the newest cycles, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Cycle, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, started_at, finished_at, files_seen, files_copied, files_skipped,
                bytes_copied, error_message
         FROM cycles ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list cycles: %w", err)
	}
	defer rows.Close()

	var cycles []*Cycle
	for rows.Next() {
		cycle, err := scanCycle(rows)
		if err != nil {
			return nil, err
		}
		cycles = append(cycles, cycle)
	}
	return cycles, rows.Err()
}

func scanCycle(scanner interface{ Scan(dest ...any) error }) (*Cycle, error) {
	var (
		id           string
		startedRaw   string
		finishedRaw  sql.NullString
		seen         int
		copied       int
		skipped      int
		bytesCopied  int64
		errorMessage sql.NullString
	)
	if err := scanner.Scan(&id, &startedRaw, &finishedRaw, &seen, &copied, &skipped, &bytesCopied, &errorMessage); err != nil {
		return nil, err
	}

	cycle := &Cycle{
		ID:           id,
		FilesSeen:    seen,
		FilesCopied:  copied,
		FilesSkipped: skipped,
		BytesCopied:  bytesCopied,
		ErrorMessage: errorMessage.String,
	}
	if started, err := time.Parse(time.RFC3339Nano, startedRaw); err == nil {
		cycle.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := time.Parse(time.RFC3339Nano, finishedRaw.String); err == nil {
			cycle.FinishedAt = finished
		}
	}
	return cycle, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
