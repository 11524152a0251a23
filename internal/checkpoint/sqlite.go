package checkpoint

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const checkpointName = "last_ingested"

// SQLiteStore keeps the checkpoint in a keyed single-row SQLite table.
// Useful when a deployment already ships a SQLite file for other state.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path with WAL mode and
// initializes the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("checkpoint: sqlite open: %w", err)
	}

	// Single writer by contract; keep the pool at one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS checkpoints (
			name       TEXT PRIMARY KEY,
			ts         REAL    NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("checkpoint: sqlite schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load() (float64, bool, error) {
	var v float64
	err := s.db.QueryRow(`SELECT ts FROM checkpoints WHERE name = ?`, checkpointName).Scan(&v)
	switch {
	case err == sql.ErrNoRows:
		return 0, false, nil
	case err != nil:
		return 0, false, fmt.Errorf("checkpoint: sqlite load: %w", err)
	}
	return v, true, nil
}

func (s *SQLiteStore) Save(ts float64) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO checkpoints (name, ts, updated_at)
		VALUES (?, ?, ?)
	`, checkpointName, ts, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("checkpoint: sqlite save: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
