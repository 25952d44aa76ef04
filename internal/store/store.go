// Package store owns the embedded SQLite database: schema creation, additive
// migrations, and the transaction primitive every multi-entity update runs
// under. One Store (one connection) exists per process.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// schema contains the DDL executed on every open. IF NOT EXISTS makes it safe
// to run on every startup.
const schema = `
CREATE TABLE IF NOT EXISTS games (
    id              TEXT PRIMARY KEY,
    project_url     TEXT NOT NULL,
    category        TEXT NOT NULL,
    focus           TEXT NOT NULL DEFAULT '',
    target_score    INTEGER NOT NULL,
    hunt_seconds    INTEGER NOT NULL,
    review_seconds  INTEGER NOT NULL,
    num_agents      INTEGER NOT NULL,
    max_rounds      INTEGER NOT NULL DEFAULT 3,
    phase           TEXT NOT NULL DEFAULT 'setup',
    round           INTEGER NOT NULL DEFAULT 0,
    deadline        TEXT,
    winner_agent_id TEXT NOT NULL DEFAULT '',
    completed_at    TEXT,
    created_at      TEXT NOT NULL,
    updated_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS agents (
    id                 TEXT PRIMARY KEY,
    game_id            TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
    name               TEXT NOT NULL,
    score              INTEGER NOT NULL DEFAULT 0,
    findings_submitted INTEGER NOT NULL DEFAULT 0,
    findings_valid     INTEGER NOT NULL DEFAULT 0,
    findings_false     INTEGER NOT NULL DEFAULT 0,
    findings_duplicate INTEGER NOT NULL DEFAULT 0,
    disputes_won       INTEGER NOT NULL DEFAULT 0,
    disputes_lost      INTEGER NOT NULL DEFAULT 0,
    hunt_done_round    INTEGER NOT NULL DEFAULT 0,
    review_done_round  INTEGER NOT NULL DEFAULT 0,
    status             TEXT NOT NULL DEFAULT 'active',
    last_heartbeat     TEXT,
    created_at         TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS findings (
    id                  INTEGER PRIMARY KEY AUTOINCREMENT,
    game_id             TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
    agent_id            TEXT NOT NULL,
    round               INTEGER NOT NULL,
    file_path           TEXT NOT NULL,
    line_start          INTEGER NOT NULL,
    line_end            INTEGER NOT NULL,
    description         TEXT NOT NULL,
    code_snippet        TEXT NOT NULL DEFAULT '',
    pattern_hash        TEXT NOT NULL,
    status              TEXT NOT NULL DEFAULT 'pending',
    duplicate_of        INTEGER,
    verdict             TEXT NOT NULL DEFAULT '',
    confidence          TEXT NOT NULL DEFAULT '',
    confidence_score    INTEGER,
    points_awarded      INTEGER NOT NULL DEFAULT 0,
    verification_status TEXT NOT NULL DEFAULT 'none',
    verifier_note       TEXT NOT NULL DEFAULT '',
    issue_type          TEXT NOT NULL DEFAULT '',
    impact_tier         TEXT NOT NULL DEFAULT '',
    rejection_reason    TEXT NOT NULL DEFAULT '',
    created_at          TEXT NOT NULL,
    updated_at          TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS disputes (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    game_id        TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
    finding_id     INTEGER NOT NULL REFERENCES findings(id) ON DELETE CASCADE,
    disputer_id    TEXT NOT NULL,
    round          INTEGER NOT NULL,
    reason         TEXT NOT NULL,
    status         TEXT NOT NULL DEFAULT 'pending',
    verdict        TEXT NOT NULL DEFAULT '',
    points_awarded INTEGER NOT NULL DEFAULT 0,
    created_at     TEXT NOT NULL,
    resolved_at    TEXT
);

CREATE INDEX IF NOT EXISTS idx_agents_game ON agents(game_id);
CREATE INDEX IF NOT EXISTS idx_findings_game ON findings(game_id);
CREATE INDEX IF NOT EXISTS idx_findings_game_status ON findings(game_id, status);
CREATE INDEX IF NOT EXISTS idx_findings_game_hash ON findings(game_id, pattern_hash);
CREATE INDEX IF NOT EXISTS idx_disputes_game ON disputes(game_id);
CREATE INDEX IF NOT EXISTS idx_disputes_finding ON disputes(finding_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_disputes_finding_disputer ON disputes(finding_id, disputer_id);
`

// migrations lists the evolving columns added after the initial schema.
// Each ALTER is attempted individually; a "duplicate column" failure means
// the column already exists and is ignored, so reruns are safe.
var migrations = []string{
	`ALTER TABLE findings ADD COLUMN impact_tier TEXT NOT NULL DEFAULT ''`,
	`ALTER TABLE findings ADD COLUMN rejection_reason TEXT NOT NULL DEFAULT ''`,
	`ALTER TABLE findings ADD COLUMN confidence_score INTEGER`,
	`ALTER TABLE agents ADD COLUMN last_heartbeat TEXT`,
	`ALTER TABLE games ADD COLUMN focus TEXT NOT NULL DEFAULT ''`,
	`ALTER TABLE games ADD COLUMN max_rounds INTEGER NOT NULL DEFAULT 3`,
}

// Store wraps the single-writer SQLite connection for a data directory.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at dbPath, enables WAL mode, enforces
// foreign keys, creates the schema and applies additive migrations.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	// Limit to one connection. SQLite only supports a single writer; one
	// connection avoids SQLITE_BUSY contention between pooled connections
	// that each need their own PRAGMA setup. WAL still gives crash-safe
	// writes and non-blocking external readers.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: %s: %w", pragma, err)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}

	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, m); err != nil {
			if isDuplicateColumn(err) {
				continue
			}
			db.Close()
			return nil, fmt.Errorf("store: migration %q: %w", m, err)
		}
	}

	return &Store{db: db}, nil
}

// isDuplicateColumn reports whether err is SQLite's rejection of an
// ALTER TABLE ADD COLUMN for a column that already exists.
func isDuplicateColumn(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate column")
}

// DB exposes the underlying handle for read-only queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Tx runs fn inside a transaction, committing on nil return and rolling back
// on any error. Every multi-entity update in the engine goes through here.
func (s *Store) Tx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// timestampFormats lists the layouts timestamps may carry. We write
// RFC 3339 UTC; CURRENT_TIMESTAMP defaults and older databases may hold the
// space-separated DateTime format.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.DateTime,
}

// FormatTime renders a timestamp as an ISO-8601 UTC string for storage.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTime parses a stored timestamp using the known layouts.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", s)
}

// NullTime renders an optional timestamp, mapping nil to SQL NULL.
func NullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return FormatTime(*t)
}

// ParseNullTime parses an optional stored timestamp.
func ParseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := ParseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
