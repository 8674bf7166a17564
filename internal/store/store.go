package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

// Store is the on-disk save file. It mirrors the in-memory state; it is not
// consulted while the dashboard runs except to load at startup.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS project_info (
		id              INTEGER PRIMARY KEY CHECK (id = 1),
		name            TEXT NOT NULL DEFAULT '',
		start_date      TEXT NOT NULL DEFAULT '',
		end_date        TEXT NOT NULL DEFAULT '',
		updated_date    TEXT NOT NULL DEFAULT '',
		site_manager    TEXT NOT NULL DEFAULT '',
		safety_officer  TEXT NOT NULL DEFAULT '',
		quality_control TEXT NOT NULL DEFAULT ''
	);

	INSERT OR IGNORE INTO project_info (id) VALUES (1);

	CREATE TABLE IF NOT EXISTS work_items (
		id         TEXT PRIMARY KEY,
		position   INTEGER NOT NULL,
		category   TEXT NOT NULL DEFAULT '',
		name       TEXT NOT NULL DEFAULT '',
		status     TEXT NOT NULL DEFAULT 'not_started',
		start_date TEXT NOT NULL,
		end_date   TEXT NOT NULL,
		days       INTEGER NOT NULL DEFAULT 1,
		progress   INTEGER NOT NULL DEFAULT 0,
		amount     INTEGER NOT NULL DEFAULT 0,
		payment    TEXT NOT NULL DEFAULT 'unpaid',
		owner      TEXT NOT NULL DEFAULT '',
		remark     TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_work_items_position ON work_items(position);

	CREATE TABLE IF NOT EXISTS personnel (
		id               TEXT PRIMARY KEY,
		position         INTEGER NOT NULL,
		company          TEXT NOT NULL DEFAULT '',
		name             TEXT NOT NULL DEFAULT '',
		role             TEXT NOT NULL DEFAULT '',
		labor_insurance  INTEGER NOT NULL DEFAULT 0,
		id_card          INTEGER NOT NULL DEFAULT 0,
		physical_exam    INTEGER NOT NULL DEFAULT 0,
		safety_training  INTEGER NOT NULL DEFAULT 0,
		special_license  INTEGER NOT NULL DEFAULT 0,
		application_date TEXT NOT NULL DEFAULT '',
		entry_date       TEXT NOT NULL DEFAULT '',
		status           TEXT NOT NULL DEFAULT 'pending',
		note             TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS vehicles (
		id               TEXT PRIMARY KEY,
		position         INTEGER NOT NULL,
		company          TEXT NOT NULL DEFAULT '',
		plate_number     TEXT NOT NULL DEFAULT '',
		type             TEXT NOT NULL DEFAULT '',
		driver           TEXT NOT NULL DEFAULT '',
		registration     INTEGER NOT NULL DEFAULT 0,
		license          INTEGER NOT NULL DEFAULT 0,
		insurance        INTEGER NOT NULL DEFAULT 0,
		photo            INTEGER NOT NULL DEFAULT 0,
		application_date TEXT NOT NULL DEFAULT '',
		entry_date       TEXT NOT NULL DEFAULT '',
		access_area      TEXT NOT NULL DEFAULT '',
		status           TEXT NOT NULL DEFAULT 'pending'
	);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	`
	_, err := s.db.Exec(ddl)
	return err
}

// replaceAll runs fn inside a transaction after deleting every row of table.
func (s *Store) replaceAll(table string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin %s: %w", table, err)
	}
	if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear %s: %w", table, err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", table, err)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
