package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure Go SQLite driver
)

// SQLiteStore keeps the meta record and blobs in a single SQLite file. Save
// runs in one transaction, so flags and payloads are atomic by construction.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS meta (
	id     INTEGER PRIMARY KEY CHECK (id = 1),
	day    INTEGER NOT NULL,
	hour   INTEGER NOT NULL,
	status INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS blobs (
	key   TEXT PRIMARY KEY,
	value BLOB NOT NULL
);`

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = ".cache/weatherstation.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_journal=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	db.SetMaxOpenConns(1) // one writer per power-on session is all we need

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load() (Snapshot, error) {
	var meta Meta
	row := s.db.QueryRow(`SELECT day, hour, status FROM meta WHERE id = 1`)
	if err := row.Scan(&meta.Day, &meta.Hour, &meta.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{}, ErrNoData
		}
		return Snapshot{}, fmt.Errorf("read meta: %w", err)
	}

	snap := Snapshot{Meta: meta, Blobs: make(map[string][]byte)}
	rows, err := s.db.Query(`SELECT key, value FROM blobs`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read blobs: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return Snapshot{}, fmt.Errorf("scan blob: %w", err)
		}
		snap.Blobs[key] = value
	}
	return snap, rows.Err()
}

func (s *SQLiteStore) Save(meta Meta, blobs map[string][]byte) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	for key, data := range blobs {
		_, err := tx.Exec(`INSERT INTO blobs (key, value) VALUES (?, ?)
			ON CONFLICT (key) DO UPDATE SET value = excluded.value`, key, data)
		if err != nil {
			return fmt.Errorf("write blob %s: %w", key, err)
		}
	}

	_, err = tx.Exec(`INSERT INTO meta (id, day, hour, status) VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET day = excluded.day, hour = excluded.hour, status = excluded.status`,
		meta.Day, meta.Hour, uint8(meta.Status))
	if err != nil {
		return fmt.Errorf("write meta: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
