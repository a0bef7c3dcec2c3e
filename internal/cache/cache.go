// Package cache implements the content-hash incremental store that lets
// the executor skip hooks whose relevant inputs are unchanged since their
// last successful run.
package cache

// Key identifies one cache entry.
type Key struct {
	// Hook is the "plugin:hook" key of the declaration.
	Hook string
	// InputHash is the deterministic hash of the hook's command and the
	// contents of its relevant input files.
	InputHash string
}

// Stats summarizes cache contents for inspection.
type Stats struct {
	// Entries is the number of cached successful runs.
	Entries int
	// TrackedFiles is the number of distinct files referenced by entries.
	TrackedFiles int
}

// Cache stores successful hook runs keyed by content hash. Entries are only
// ever written for successes; failures are never cached, so a failed hook is
// retried on the next event even with unchanged inputs.
//
// Implementations must serialize concurrent access: multiple events may
// consult and populate the cache at the same time.
type Cache interface {
	// Lookup reports whether a successful run is recorded for the key.
	Lookup(key Key) (bool, error)
	// Store records a successful run, tracking the current content hash of
	// each input file so later invalidation can detect changes.
	Store(key Key, files []string) error
	// InvalidateFiles removes every entry tracking one of the given paths
	// whose recorded content hash no longer matches the file on disk.
	// Entries tracking byte-identical content are kept.
	InvalidateFiles(paths []string) error
	// Stats returns a summary of cache contents.
	Stats() (Stats, error)
	// Clear removes all entries.
	Clear() error
	// Close releases the underlying store.
	Close() error
}
