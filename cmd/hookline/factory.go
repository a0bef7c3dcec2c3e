package main

import (
	"fmt"
	"os"

	"github.com/ShayCichocki/hookline/internal/cache"
	"github.com/ShayCichocki/hookline/internal/config"
	"github.com/ShayCichocki/hookline/internal/delivery"
	"github.com/ShayCichocki/hookline/internal/engine"
	"github.com/ShayCichocki/hookline/internal/eventlog"
	"github.com/ShayCichocki/hookline/internal/exec"
	"github.com/ShayCichocki/hookline/internal/executor"
	"github.com/ShayCichocki/hookline/internal/registry"
)

// app bundles the engine with the resources that must be released when a
// command finishes.
type app struct {
	engine  *engine.Engine
	cache   *cache.Store
	watcher *cache.Watcher
	log     *eventlog.Logger
}

// buildApp assembles the full engine stack from configuration. lenient
// controls whether malformed plugin declarations abort loading or are
// skipped with a warning.
func buildApp(cfg *config.Config, lenient bool) (*app, error) {
	loader := registry.NewLoader(cfg.Registry.PluginRoots, lenient)
	decls, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("loading hook declarations: %w", err)
	}
	for _, w := range loader.Warnings() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	reg, err := registry.New(decls)
	if err != nil {
		return nil, fmt.Errorf("building registry: %w", err)
	}

	store, err := cache.Open(cfg.Cache.Path)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	log, err := eventlog.New(cfg.Log.Path)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("opening event log: %w", err)
	}

	var watcher *cache.Watcher
	if cfg.Cache.Watch {
		watcher, err = cache.NewWatcher(store)
		if err != nil {
			// The watcher is an eager-invalidation optimization; the engine
			// still invalidates per-event without it.
			fmt.Fprintf(os.Stderr, "warning: cache watcher unavailable: %v\n", err)
		} else if cwd, err := os.Getwd(); err == nil {
			watcher.WatchDir(cwd)
		}
	}

	exe := executor.New(exec.NewRunner(),
		executor.WithMaxParallel(cfg.Executor.MaxParallel),
		executor.WithDefaultTimeout(cfg.Executor.DefaultTimeout),
		executor.WithLogger(log),
	)

	eng := engine.New(engine.Params{
		Registry: reg,
		Cache:    store,
		Executor: exe,
		Notifier: delivery.NewFileNotifier(cfg.Delivery.NotifyDir, cfg.Delivery.MaxRetries),
		Log:      log,
		Reload: func() (*registry.Registry, error) {
			decls, err := registry.NewLoader(cfg.Registry.PluginRoots, lenient).Load()
			if err != nil {
				return nil, err
			}
			return registry.New(decls)
		},
	})

	return &app{engine: eng, cache: store, watcher: watcher, log: log}, nil
}

// close releases the app's resources in reverse dependency order.
func (a *app) close() {
	if a.watcher != nil {
		a.watcher.Close()
	}
	a.log.Close()
	a.cache.Close()
}
