package cache

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher invalidates cache entries the moment a tracked file changes on
// disk, covering edits made outside the event stream (another tool, the
// user's editor). Watch failures degrade to the eager per-event
// invalidation the engine already performs.
type Watcher struct {
	cache   Cache
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewWatcher starts a filesystem watcher feeding invalidations into cache.
func NewWatcher(cache Cache) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		cache:   cache,
		watcher: fsw,
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// WatchDir adds a directory to the watch set. Files changed directly under
// it trigger invalidation.
func (w *Watcher) WatchDir(dir string) error {
	return w.watcher.Add(dir)
}

// WatchFileDirs adds the parent directory of every path. fsnotify watches
// directories more reliably than individual files across editors that
// replace files on save.
func (w *Watcher) WatchFileDirs(paths []string) {
	seen := make(map[string]bool)
	for _, path := range paths {
		dir := filepath.Dir(path)
		if seen[dir] {
			continue
		}
		seen[dir] = true
		// Best effort; unwatchable directories fall back to eager checks.
		w.watcher.Add(dir)
	}
}

// loop forwards change notifications into cache invalidations.
func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				// Invalidation is content-aware, so spurious events on
				// unchanged files are harmless.
				w.cache.InvalidateFiles([]string{event.Name})
			}
		case <-w.watcher.Errors:
			// Ignore errors, keep watching.
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
