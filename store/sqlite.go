package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/camkit/camkit/core"
)

// SQLiteStore is a durable MediaStore backed by a local SQLite database. It
// survives process restarts and may be shared by the media managers of
// several devices; the single write connection serializes access.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path and ensures
// the media table exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open media database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate media database: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS media (
		key TEXT PRIMARY KEY,
		contents BLOB NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`
	_, err := s.db.Exec(schema)
	return err
}

// Save stores (or overwrites) the media bytes for the given key.
func (s *SQLiteStore) Save(key string, data []byte) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO media (key, contents) VALUES (?, ?)`, key, data)
	if err != nil {
		return fmt.Errorf("save media %q: %w", key, err)
	}
	return nil
}

// Load returns the stored media bytes or core.ErrMediaNotFound.
func (s *SQLiteStore) Load(key string) ([]byte, error) {
	var contents []byte
	err := s.db.QueryRow(`SELECT contents FROM media WHERE key = ?`, key).Scan(&contents)
	if err == sql.ErrNoRows {
		return nil, core.ErrMediaNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load media %q: %w", key, err)
	}
	return contents, nil
}

// Remove deletes the media for the key. Removing an absent key is a no-op.
func (s *SQLiteStore) Remove(key string) error {
	if _, err := s.db.Exec(`DELETE FROM media WHERE key = ?`, key); err != nil {
		return fmt.Errorf("remove media %q: %w", key, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
