// Package config handles configuration loading for hookline.
// It supports XDG config paths, project-level overrides, and environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the hook engine.
type Config struct {
	Registry RegistryConfig `mapstructure:"registry"`
	Executor ExecutorConfig `mapstructure:"executor"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Delivery DeliveryConfig `mapstructure:"delivery"`
	Log      LogConfig      `mapstructure:"log"`
}

// RegistryConfig holds plugin discovery settings.
type RegistryConfig struct {
	// PluginRoots are the directories scanned for plugins, in order.
	// Defaults to the user plugin dir plus <project>/.hookline/plugins.
	PluginRoots []string `mapstructure:"plugin_roots"`
}

// ExecutorConfig holds process execution settings.
type ExecutorConfig struct {
	// MaxParallel bounds concurrent hook processes within a phase.
	MaxParallel int `mapstructure:"max_parallel"`
	// DefaultTimeout applies to hooks that declare no timeout.
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
}

// CacheConfig holds incremental cache settings.
type CacheConfig struct {
	// Path is the cache database location.
	Path string `mapstructure:"path"`
	// Watch enables the filesystem invalidation watcher.
	Watch bool `mapstructure:"watch"`
}

// DeliveryConfig holds result delivery settings.
type DeliveryConfig struct {
	// NotifyDir receives async notification payloads.
	NotifyDir string `mapstructure:"notify_dir"`
	// MaxRetries bounds delivery attempts before a payload is dropped.
	MaxRetries int `mapstructure:"max_retries"`
}

// LogConfig holds event log settings.
type LogConfig struct {
	// Path is the JSONL event log location. Empty disables logging.
	Path string `mapstructure:"path"`
}

// Load loads configuration from XDG paths, project overrides, and
// environment variables. Precedence (highest to lowest):
//  1. Environment variables (HOOKLINE_*)
//  2. Project config (.hookline.yaml in current directory or parent)
//  3. User config (~/.config/hookline/config.yaml)
//  4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("HOOKLINE")
	v.AutomaticEnv()
	v.BindEnv("cache.path", "HOOKLINE_CACHE_PATH")
	v.BindEnv("log.path", "HOOKLINE_LOG_PATH")
	v.BindEnv("delivery.notify_dir", "HOOKLINE_NOTIFY_DIR")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	dataDir := getUserDataDir()

	v.SetDefault("registry.plugin_roots", []string{
		filepath.Join(getUserConfigDir(), "plugins"),
		filepath.Join(".hookline", "plugins"),
	})

	v.SetDefault("executor.max_parallel", runtime.NumCPU())
	v.SetDefault("executor.default_timeout", "30s")

	v.SetDefault("cache.path", filepath.Join(dataDir, "cache.db"))
	v.SetDefault("cache.watch", true)

	v.SetDefault("delivery.notify_dir", filepath.Join(".hookline", "notifications"))
	v.SetDefault("delivery.max_retries", 3)

	v.SetDefault("log.path", filepath.Join(dataDir, "events.jsonl"))
}

// getUserConfigDir returns the XDG config directory for hookline.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "hookline")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "hookline")
	}
	return filepath.Join(home, ".config", "hookline")
}

// getUserDataDir returns the XDG data directory for hookline.
func getUserDataDir() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "hookline")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".local", "share", "hookline")
	}
	return filepath.Join(home, ".local", "share", "hookline")
}

// findProjectConfig searches for .hookline.yaml in the current directory
// and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".hookline.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// Default returns a Config with default values.
func Default() *Config {
	dataDir := getUserDataDir()
	return &Config{
		Registry: RegistryConfig{
			PluginRoots: []string{
				filepath.Join(getUserConfigDir(), "plugins"),
				filepath.Join(".hookline", "plugins"),
			},
		},
		Executor: ExecutorConfig{
			MaxParallel:    runtime.NumCPU(),
			DefaultTimeout: 30 * time.Second,
		},
		Cache: CacheConfig{
			Path:  filepath.Join(dataDir, "cache.db"),
			Watch: true,
		},
		Delivery: DeliveryConfig{
			NotifyDir:  filepath.Join(".hookline", "notifications"),
			MaxRetries: 3,
		},
		Log: LogConfig{
			Path: filepath.Join(dataDir, "events.jsonl"),
		},
	}
}
