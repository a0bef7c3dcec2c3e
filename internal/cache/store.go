package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Store is the SQLite-backed Cache implementation. A single mutex
// serializes writers so concurrent events cannot interleave an
// invalidate/re-populate pair on the same entry.
type Store struct {
	conn *sql.DB
	path string
	mu   sync.Mutex
}

// DefaultPath returns the cache database path under the XDG data directory.
func DefaultPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "hookline", "cache.db")
}

// Open opens (creating if needed) the cache database at the given path.
// WAL mode is enabled for concurrent reads.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{conn: conn, path: path}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// migrate applies the cache schema.
func (s *Store) migrate() error {
	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS cache_entries (
			hook_key TEXT NOT NULL,
			input_hash TEXT NOT NULL,
			created_at TEXT NOT NULL,
			PRIMARY KEY (hook_key, input_hash)
		);

		CREATE TABLE IF NOT EXISTS cache_files (
			hook_key TEXT NOT NULL,
			input_hash TEXT NOT NULL,
			file_path TEXT NOT NULL,
			file_hash TEXT NOT NULL,
			PRIMARY KEY (hook_key, input_hash, file_path),
			FOREIGN KEY (hook_key, input_hash)
				REFERENCES cache_entries(hook_key, input_hash)
				ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_cache_files_path ON cache_files(file_path);
	`)
	if err != nil {
		return fmt.Errorf("apply cache schema: %w", err)
	}
	return nil
}

// Lookup reports whether a successful run is recorded for the key.
func (s *Store) Lookup(key Key) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var one int
	err := s.conn.QueryRow(
		`SELECT 1 FROM cache_entries WHERE hook_key = ? AND input_hash = ?`,
		key.Hook, key.InputHash,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache lookup: %w", err)
	}
	return true, nil
}

// Store records a successful run and the current content hash of each
// input file. Re-storing an existing key replaces its tracked file set
// (last writer wins).
func (s *Store) Store(key Key, files []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin cache write: %w", err)
	}

	if _, err := tx.Exec(
		`DELETE FROM cache_entries WHERE hook_key = ? AND input_hash = ?`,
		key.Hook, key.InputHash,
	); err != nil {
		tx.Rollback()
		return fmt.Errorf("replace cache entry: %w", err)
	}

	if _, err := tx.Exec(
		`INSERT INTO cache_entries (hook_key, input_hash, created_at) VALUES (?, ?, ?)`,
		key.Hook, key.InputHash, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		tx.Rollback()
		return fmt.Errorf("insert cache entry: %w", err)
	}

	for _, path := range files {
		fileHash, err := HashFile(path)
		if err != nil {
			// A file that vanished between execution and store cannot be
			// tracked; drop the whole entry so the hook re-runs next time.
			tx.Rollback()
			return err
		}
		if _, err := tx.Exec(
			`INSERT INTO cache_files (hook_key, input_hash, file_path, file_hash) VALUES (?, ?, ?, ?)`,
			key.Hook, key.InputHash, path, fileHash,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert cache file: %w", err)
		}
	}

	return tx.Commit()
}

// InvalidateFiles removes entries tracking any of the given paths whose
// recorded hash no longer matches the file on disk. A missing file always
// invalidates. Entries tracking byte-identical content survive, so a
// reverted edit still hits the cache.
func (s *Store) InvalidateFiles(paths []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, path := range paths {
		currentHash, err := HashFile(path)
		if err != nil {
			currentHash = "" // treat unreadable as changed
		}
		if _, err := s.conn.Exec(`
			DELETE FROM cache_entries WHERE (hook_key, input_hash) IN (
				SELECT hook_key, input_hash FROM cache_files
				WHERE file_path = ? AND file_hash != ?
			)`, path, currentHash,
		); err != nil {
			return fmt.Errorf("invalidate %s: %w", path, err)
		}
	}
	return nil
}

// Stats returns a summary of cache contents.
func (s *Store) Stats() (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var st Stats
	if err := s.conn.QueryRow(`SELECT COUNT(*) FROM cache_entries`).Scan(&st.Entries); err != nil {
		return st, fmt.Errorf("count cache entries: %w", err)
	}
	if err := s.conn.QueryRow(`SELECT COUNT(DISTINCT file_path) FROM cache_files`).Scan(&st.TrackedFiles); err != nil {
		return st, fmt.Errorf("count tracked files: %w", err)
	}
	return st, nil
}

// Clear removes all entries.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.conn.Exec(`DELETE FROM cache_entries`); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

// Path returns the path to the cache database file.
func (s *Store) Path() string {
	return s.path
}

// Verify Store implements Cache at compile time.
var _ Cache = (*Store)(nil)
