// Package store persists the expansion rule set in a local SQLite database
// so rules survive daemon restarts. The database is the durable copy; the
// in-memory rule store remains the authority while the daemon runs.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"expandd/internal/rules"
)

// "trigger" is quoted throughout: it is a reserved word in SQLite.
const schema = `
CREATE TABLE IF NOT EXISTS rules (
	position    INTEGER PRIMARY KEY,
	"trigger"   TEXT NOT NULL,
	replacement TEXT NOT NULL
);
`

// Store is a SQLite-backed rule archive.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Save replaces the persisted rule set with rs, preserving order. The swap
// is transactional so a crash never leaves a partial set.
func (s *Store) Save(rs []rules.Rule) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM rules`); err != nil {
		return fmt.Errorf("clearing rules: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO rules (position, "trigger", replacement) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range rs {
		if _, err := stmt.Exec(i, r.Trigger, r.Replacement); err != nil {
			return fmt.Errorf("inserting rule %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// Load returns the persisted rules in their saved order.
func (s *Store) Load() ([]rules.Rule, error) {
	rows, err := s.db.Query(`SELECT "trigger", replacement FROM rules ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying rules: %w", err)
	}
	defer rows.Close()

	var out []rules.Rule
	for rows.Next() {
		var r rules.Rule
		if err := rows.Scan(&r.Trigger, &r.Replacement); err != nil {
			return nil, fmt.Errorf("scanning rule: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
