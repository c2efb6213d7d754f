package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// FileName is the database file name inside the data directory.
const FileName = "cipherguard2.db"

// ErrSessionNotFound is returned when a session id or the latest session
// does not exist.
var ErrSessionNotFound = errors.New("session not found")

// Status is the outcome of a session.
type Status string

const (
	// StatusRunning marks a session that has not finished (or crashed).
	StatusRunning Status = "running"
	// StatusOK marks a session that returned without error.
	StatusOK Status = "ok"
	// StatusFailed marks a session that returned an error.
	StatusFailed Status = "failed"
	// StatusCancelled marks a session stopped by a signal.
	StatusCancelled Status = "cancelled"
)

// Session is one recorded invocation.
type Session struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt time.Time // zero while running
	Verbose    bool
	Status     Status
	Error      string
}

// Store is the session database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Options configures Open.
type Options struct {
	// CreateIfNotExists creates the directory and database file when missing.
	CreateIfNotExists bool

	// EnableWAL switches the database to write-ahead logging.
	EnableWAL bool
}

// DefaultOptions returns the options used by the application.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens the store in dir. Without CreateIfNotExists a missing database
// is an error and nothing is created on disk.
func Open(ctx context.Context, dir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dir, FileName)

	mode := "rw"
	if opts.CreateIfNotExists {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
		mode = "rwc"
	} else if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("history database not found at %s", dbPath)
	} else if err != nil {
		return nil, fmt.Errorf("failed to check history database: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?mode="+mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL DEFAULT '',
		verbose INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Begin records the start of a session and returns its id.
func (s *Store) Begin(ctx context.Context, startedAt time.Time, verbose bool) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (started_at, verbose, status) VALUES (?, ?, ?)`,
		formatTime(startedAt), verbose, StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to record session start: %w", err)
	}
	return result.LastInsertId()
}

// Finish records the outcome of session id.
func (s *Store) Finish(ctx context.Context, id int64, finishedAt time.Time, status Status, errMsg string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET finished_at = ?, status = ?, error = ? WHERE id = ?`,
		formatTime(finishedAt), status, errMsg, id,
	)
	if err != nil {
		return fmt.Errorf("failed to record session end: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to record session end: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: id %d", ErrSessionNotFound, id)
	}
	return nil
}

// Last returns the most recent session.
func (s *Store) Last(ctx context.Context) (*Session, error) {
	sessions, err := s.Recent(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, ErrSessionNotFound
	}
	return &sessions[0], nil
}

// Recent returns up to limit sessions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, started_at, finished_at, verbose, status, error
	FROM sessions
	ORDER BY id DESC
	LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var (
			sess       Session
			startedAt  string
			finishedAt string
			status     string
		)
		if err := rows.Scan(&sess.ID, &startedAt, &finishedAt, &sess.Verbose, &status, &sess.Error); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sess.Status = Status(status)
		if sess.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, err
		}
		if sess.FinishedAt, err = parseTime(finishedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// Count returns the number of stored sessions.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return n, nil
}

// Prune deletes all but the keep most recent sessions and returns how many
// were removed. keep <= 0 removes nothing.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	result, err := s.db.ExecContext(ctx, `
	DELETE FROM sessions
	WHERE id NOT IN (SELECT id FROM sessions ORDER BY id DESC LIMIT ?)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune sessions: %w", err)
	}
	return result.RowsAffected()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse session time %q: %w", s, err)
	}
	return t, nil
}
