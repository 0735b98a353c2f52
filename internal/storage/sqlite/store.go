package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	defaultPath = "data/crossarb.db"
)

// Store wraps a SQLite DB connection.
type Store struct {
	path string
	db   *sql.DB
}

// Open creates (if needed) and opens the SQLite database.
func Open(path string) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := ensureWAL(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	return &Store{path: path, db: db}, nil
}

func ensureWAL(db *sql.DB) error {
	const (
		maxAttempts = 5
		delay       = 200 * time.Millisecond
	)
	for i := 0; i < maxAttempts; i++ {
		if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			if strings.Contains(err.Error(), "database is locked") {
				time.Sleep(delay)
				continue
			}
			return err
		}
		return nil
	}
	return fmt.Errorf("database is locked after retries")
}

// Path returns the path backing the store.
func (s *Store) Path() string {
	return s.path
}

// Close closes the DB.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CreateTables ensures the journal schema exists.
func (s *Store) CreateTables(ctx context.Context) error {
	for _, stmt := range schemaSQL {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// DropTables removes the journal.
func (s *Store) DropTables(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DROP TABLE IF EXISTS opportunities;`)
	return err
}

var schemaSQL = []string{`
CREATE TABLE IF NOT EXISTS opportunities (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	scan_id TEXT NOT NULL,
	opp_key TEXT NOT NULL,
	question TEXT NOT NULL,
	counter_question TEXT,
	venue1 TEXT NOT NULL,
	action1 TEXT NOT NULL,
	odds1 REAL NOT NULL,
	venue2 TEXT NOT NULL,
	action2 TEXT NOT NULL,
	odds2 REAL NOT NULL,
	profit_pct REAL NOT NULL,
	volume1 REAL,
	volume2 REAL,
	similarity REAL,
	valid_resolution INTEGER,
	resolution_reason TEXT,
	verdict_cached INTEGER,
	checked_at TEXT,
	detected_at TEXT NOT NULL,
	UNIQUE (scan_id, opp_key)
);`,
	`CREATE INDEX IF NOT EXISTS idx_opportunities_detected_at ON opportunities (detected_at);`,
}
