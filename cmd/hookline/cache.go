package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/hookline/internal/cache"
	"github.com/ShayCichocki/hookline/internal/config"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the incremental cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache entry and tracked file counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openCache()
		if err != nil {
			return err
		}
		defer store.Close()

		stats, err := store.Stats()
		if err != nil {
			return fmt.Errorf("reading cache stats: %w", err)
		}
		fmt.Printf("path: %s\n", store.Path())
		fmt.Printf("entries: %d\n", stats.Entries)
		fmt.Printf("tracked files: %d\n", stats.TrackedFiles)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cache entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openCache()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Clear(); err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}
		fmt.Fprintln(os.Stdout, "cache cleared")
		return nil
	},
}

func openCache() (*cache.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	store, err := cache.Open(cfg.Cache.Path)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return store, nil
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
