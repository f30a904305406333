// Package store persists build state between runs in a SQLite database:
// probed image dimensions and fingerprints of written output pages.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed build cache.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens or creates the cache at dbPath. Use ":memory:" for an
// ephemeral cache.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS image_dimensions (
		path TEXT PRIMARY KEY,
		size INTEGER NOT NULL,
		mod_time INTEGER NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS output_fingerprints (
		output_path TEXT PRIMARY KEY,
		fingerprint TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// LookupDimensions returns cached dimensions when size and modification time
// still match the file on disk.
func (s *Store) LookupDimensions(ctx context.Context, path string, size int64, modTime time.Time) (int, int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var w, h int
	err := s.db.QueryRowContext(ctx,
		"SELECT width, height FROM image_dimensions WHERE path = ? AND size = ? AND mod_time = ?",
		path, size, modTime.UnixNano(),
	).Scan(&w, &h)
	if err != nil {
		return 0, 0, false
	}
	return w, h, true
}

// StoreDimensions records the probed dimensions of an image.
func (s *Store) StoreDimensions(ctx context.Context, path string, size int64, modTime time.Time, width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO image_dimensions (path, size, mod_time, width, height) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET size = excluded.size, mod_time = excluded.mod_time,
			width = excluded.width, height = excluded.height`,
		path, size, modTime.UnixNano(), width, height,
	)
	if err != nil {
		return fmt.Errorf("upsert dimensions: %w", err)
	}
	return nil
}

// Fingerprint returns the last recorded fingerprint for an output file.
func (s *Store) Fingerprint(ctx context.Context, outputPath string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var fp string
	err := s.db.QueryRowContext(ctx,
		"SELECT fingerprint FROM output_fingerprints WHERE output_path = ?", outputPath,
	).Scan(&fp)
	switch {
	case err == sql.ErrNoRows:
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("query fingerprint: %w", err)
	}
	return fp, true, nil
}

// PutFingerprint records the fingerprint of a freshly written output file.
func (s *Store) PutFingerprint(ctx context.Context, outputPath, fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO output_fingerprints (output_path, fingerprint, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(output_path) DO UPDATE SET fingerprint = excluded.fingerprint, updated_at = excluded.updated_at`,
		outputPath, fingerprint, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert fingerprint: %w", err)
	}
	return nil
}

// ResetFingerprints forgets every output fingerprint, forcing a full rewrite.
func (s *Store) ResetFingerprints(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM output_fingerprints"); err != nil {
		return fmt.Errorf("delete fingerprints: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
