// Package solstore persists shared objects: per-movie named value
// trees scripts keep across sessions. Values arrive already serialized
// as JSON text; the store only handles durability.
package solstore

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// ErrNotFound indicates the requested shared object doesn't exist.
var ErrNotFound = errors.New("solstore: shared object not found")

// Store is the SQLite-backed shared object store. Safe for use from
// multiple goroutines.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// Open opens or creates the store at path. ":memory:" gives a
// throwaway store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("solstore: opening database: %w", err)
	}

	// Busy timeout for concurrent access from host and player.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("solstore: setting busy timeout: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS shared_objects (
		movie TEXT NOT NULL,
		name  TEXT NOT NULL,
		data  TEXT NOT NULL,
		PRIMARY KEY (movie, name)
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("solstore: creating table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save writes one shared object, replacing any previous contents.
func (s *Store) Save(movie, name, data string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO shared_objects (movie, name, data) VALUES (?, ?, ?)",
		movie, name, data,
	)
	if err != nil {
		return fmt.Errorf("solstore: saving %s/%s: %w", movie, name, err)
	}
	return nil
}

// Load reads one shared object's serialized contents.
func (s *Store) Load(movie, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var data string
	err := s.db.QueryRow(
		"SELECT data FROM shared_objects WHERE movie = ? AND name = ?",
		movie, name,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("solstore: loading %s/%s: %w", movie, name, err)
	}
	return data, nil
}

// Delete removes one shared object, reporting whether it existed.
func (s *Store) Delete(movie, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.Exec(
		"DELETE FROM shared_objects WHERE movie = ? AND name = ?",
		movie, name,
	)
	if err != nil {
		return false, fmt.Errorf("solstore: deleting %s/%s: %w", movie, name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Names lists the shared object names stored for a movie.
func (s *Store) Names(movie string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query(
		"SELECT name FROM shared_objects WHERE movie = ? ORDER BY name",
		movie,
	)
	if err != nil {
		return nil, fmt.Errorf("solstore: listing %s: %w", movie, err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
