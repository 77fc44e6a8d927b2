// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrMiss reports a fingerprint with no stored completion.
var ErrMiss = errors.New("cache miss")

// CollisionError reports a stored entry whose recorded model disagrees with
// the lookup. Since the model participates in the fingerprint this should
// never fire; it exists to turn a hash collision or corrupted row into a
// loud failure instead of a silently wrong answer.
type CollisionError struct {
	Fingerprint string
	WantModel   string
	GotModel    string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("cache entry %s was stored for model %s, not %s",
		e.Fingerprint[:12], e.GotModel, e.WantModel)
}

// =============================================================================
// STATS
// =============================================================================

// Stats summarizes cache effectiveness for one Store lifetime plus the
// persistent entry count.
type Stats struct {
	Entries int64 `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// =============================================================================
// STORE
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS completions (
	fingerprint TEXT PRIMARY KEY,
	completion  TEXT NOT NULL,
	model       TEXT NOT NULL,
	created_at  INTEGER NOT NULL
);
`

// Store is a SQLite-backed completion cache. Hit and miss counters are
// in-memory only and reset per process.
type Store struct {
	db *sql.DB

	mu     sync.Mutex
	hits   int64
	misses int64
}

// Open opens (creating if needed) the cache database at path. The parent
// directory is created with owner-only permissions.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Get returns the completion stored for fingerprint. Returns ErrMiss when
// absent and *CollisionError when the stored row belongs to another model.
func (s *Store) Get(fingerprint, model string) (string, error) {
	var completion, storedModel string
	err := s.db.QueryRow(
		`SELECT completion, model FROM completions WHERE fingerprint = ?`,
		fingerprint,
	).Scan(&completion, &storedModel)
	if err == sql.ErrNoRows {
		s.count(&s.misses)
		return "", ErrMiss
	}
	if err != nil {
		return "", fmt.Errorf("cache lookup failed: %w", err)
	}

	if storedModel != model {
		return "", &CollisionError{Fingerprint: fingerprint, WantModel: model, GotModel: storedModel}
	}

	s.count(&s.hits)
	return completion, nil
}

// Put stores a completion, replacing any previous entry for the same
// fingerprint.
func (s *Store) Put(fingerprint, model, completion string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO completions (fingerprint, completion, model, created_at)
		 VALUES (?, ?, ?, ?)`,
		fingerprint, completion, model, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("cache write failed: %w", err)
	}
	return nil
}

// Clear removes all entries and returns how many were deleted.
func (s *Store) Clear() (int64, error) {
	res, err := s.db.Exec(`DELETE FROM completions`)
	if err != nil {
		return 0, fmt.Errorf("cache clear failed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}

// Stats reports the persisted entry count plus this process's hit and miss
// counters.
func (s *Store) Stats() (Stats, error) {
	var entries int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM completions`).Scan(&entries); err != nil {
		return Stats{}, fmt.Errorf("cache stats failed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{Entries: entries, Hits: s.hits, Misses: s.misses}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) count(counter *int64) {
	s.mu.Lock()
	*counter++
	s.mu.Unlock()
}
