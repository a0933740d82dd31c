// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	if cfg.Fetch.Concurrency != 5 {
		t.Errorf("expected concurrency 5, got %d", cfg.Fetch.Concurrency)
	}
	if cfg.Status.Source != "local" {
		t.Errorf("expected local status source, got %s", cfg.Status.Source)
	}
	if cfg.StatusTimeout() != 10*time.Second {
		t.Errorf("expected status timeout 10s, got %s", cfg.StatusTimeout())
	}
}

func TestConfigDir(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("OPENQA_HOME", tmpDir)

	if dir := Dir(); dir != tmpDir {
		t.Errorf("expected %s, got %s", tmpDir, dir)
	}
	if cacheDir := Default().CacheDir(); cacheDir != filepath.Join(tmpDir, "cache") {
		t.Errorf("expected cache under %s, got %s", tmpDir, cacheDir)
	}
}

func TestTaskContext(t *testing.T) {
	cfg := Default()
	cfg.Site.URL = "http://0.0.0.0:50001"
	cfg.Site.APIKey = "fake_api_key"

	tc := cfg.TaskContext()
	if tc.SiteURL != "http://0.0.0.0:50001" || tc.APIKey != "fake_api_key" {
		t.Errorf("unexpected task context %+v", tc)
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("OPENQA_HOME", tmpDir)

	cfg := Default()
	cfg.Fetch.Concurrency = 10
	cfg.Status.Source = "remote"

	if err := Save(cfg); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if loaded.Fetch.Concurrency != 10 {
		t.Errorf("expected concurrency 10, got %d", loaded.Fetch.Concurrency)
	}
	if loaded.Status.Source != "remote" {
		t.Errorf("expected remote status source, got %s", loaded.Status.Source)
	}
}

func TestLoadMissingReturnsDefault(t *testing.T) {
	t.Setenv("OPENQA_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Score.Concurrency != Default().Score.Concurrency {
		t.Errorf("expected default config, got %+v", cfg)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("OPENQA_HOME", tmpDir)
	os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte("site: [unclosed"), 0644)

	if _, err := Load(); err == nil {
		t.Error("expected error for invalid YAML")
	}
}
