package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Executor.MaxParallel != runtime.NumCPU() {
		t.Errorf("MaxParallel = %d, want NumCPU", cfg.Executor.MaxParallel)
	}
	if cfg.Executor.DefaultTimeout != 30*time.Second {
		t.Errorf("DefaultTimeout = %v, want 30s", cfg.Executor.DefaultTimeout)
	}
	if !cfg.Cache.Watch {
		t.Error("Cache.Watch = false, want true by default")
	}
	if cfg.Delivery.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.Delivery.MaxRetries)
	}
	if len(cfg.Registry.PluginRoots) == 0 {
		t.Error("PluginRoots is empty")
	}
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
registry:
  plugin_roots:
    - /opt/hooks
executor:
  max_parallel: 2
  default_timeout: 5s
cache:
  path: /tmp/test-cache.db
  watch: false
delivery:
  notify_dir: /tmp/notify
  max_retries: 7
log:
  path: /tmp/events.jsonl
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if len(cfg.Registry.PluginRoots) != 1 || cfg.Registry.PluginRoots[0] != "/opt/hooks" {
		t.Errorf("PluginRoots = %v, want [/opt/hooks]", cfg.Registry.PluginRoots)
	}
	if cfg.Executor.MaxParallel != 2 {
		t.Errorf("MaxParallel = %d, want 2", cfg.Executor.MaxParallel)
	}
	if cfg.Executor.DefaultTimeout != 5*time.Second {
		t.Errorf("DefaultTimeout = %v, want 5s", cfg.Executor.DefaultTimeout)
	}
	if cfg.Cache.Watch {
		t.Error("Cache.Watch = true, want false")
	}
	if cfg.Delivery.MaxRetries != 7 {
		t.Errorf("MaxRetries = %d, want 7", cfg.Delivery.MaxRetries)
	}
	if cfg.Log.Path != "/tmp/events.jsonl" {
		t.Errorf("Log.Path = %q, want /tmp/events.jsonl", cfg.Log.Path)
	}
}

func TestLoadFromPath_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("executor:\n  max_parallel: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Executor.MaxParallel != 1 {
		t.Errorf("MaxParallel = %d, want 1", cfg.Executor.MaxParallel)
	}
	if cfg.Executor.DefaultTimeout != 30*time.Second {
		t.Errorf("DefaultTimeout = %v, want default 30s", cfg.Executor.DefaultTimeout)
	}
	if cfg.Delivery.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want default 3", cfg.Delivery.MaxRetries)
	}
}

func TestLoadFromPath_MissingFile(t *testing.T) {
	if _, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
