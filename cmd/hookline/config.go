package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/hookline/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key]",
	Short: "Show effective configuration",
	Long: `Displays the effective configuration after merging user config,
project overrides, and environment variables.

Without arguments, displays all values. With one argument, displays the
value for that key.

Configuration is stored at ~/.config/hookline/config.yaml
Project-specific overrides can be placed in .hookline.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		if len(args) == 0 {
			displayAllConfig(cfg)
			return
		}
		value, err := getConfigValue(cfg, args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(value)
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	fmt.Printf("registry.plugin_roots: %s\n", strings.Join(cfg.Registry.PluginRoots, ", "))
	fmt.Printf("executor.max_parallel: %d\n", cfg.Executor.MaxParallel)
	fmt.Printf("executor.default_timeout: %s\n", cfg.Executor.DefaultTimeout)
	fmt.Printf("cache.path: %s\n", cfg.Cache.Path)
	fmt.Printf("cache.watch: %t\n", cfg.Cache.Watch)
	fmt.Printf("delivery.notify_dir: %s\n", cfg.Delivery.NotifyDir)
	fmt.Printf("delivery.max_retries: %d\n", cfg.Delivery.MaxRetries)
	fmt.Printf("log.path: %s\n", cfg.Log.Path)
}

// getConfigValue returns the value for a dotted config key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch key {
	case "registry.plugin_roots":
		return strings.Join(cfg.Registry.PluginRoots, ", "), nil
	case "executor.max_parallel":
		return fmt.Sprintf("%d", cfg.Executor.MaxParallel), nil
	case "executor.default_timeout":
		return cfg.Executor.DefaultTimeout.String(), nil
	case "cache.path":
		return cfg.Cache.Path, nil
	case "cache.watch":
		return fmt.Sprintf("%t", cfg.Cache.Watch), nil
	case "delivery.notify_dir":
		return cfg.Delivery.NotifyDir, nil
	case "delivery.max_retries":
		return fmt.Sprintf("%d", cfg.Delivery.MaxRetries), nil
	case "log.path":
		return cfg.Log.Path, nil
	default:
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}
