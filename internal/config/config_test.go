package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	path := filepath.Join("testdata", "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.App.Name != "volume-delta-test" {
		t.Fatalf("unexpected App.Name: %s", cfg.App.Name)
	}
	if cfg.App.MetricsAddr != ":9191" {
		t.Fatalf("unexpected App.MetricsAddr: %s", cfg.App.MetricsAddr)
	}
	if cfg.App.LogLevel != "debug" {
		t.Fatalf("unexpected App.LogLevel: %s", cfg.App.LogLevel)
	}
	if cfg.Feed.URL != "wss://example.test/stocks" {
		t.Fatalf("unexpected Feed.URL: %s", cfg.Feed.URL)
	}
	if cfg.Feed.APIKeyEnv != "TEST_FEED_KEY" {
		t.Fatalf("unexpected Feed.APIKeyEnv: %s", cfg.Feed.APIKeyEnv)
	}
	if cfg.Feed.MaxRetries != 5 {
		t.Fatalf("unexpected Feed.MaxRetries: %d", cfg.Feed.MaxRetries)
	}
	if cfg.Feed.RetryDelay() != time.Second {
		t.Fatalf("unexpected Feed.RetryDelay: %v", cfg.Feed.RetryDelay())
	}
	if cfg.Window.Duration() != 5*time.Second {
		t.Fatalf("unexpected Window.Duration: %v", cfg.Window.Duration())
	}
	if cfg.Window.Poll() != 200*time.Millisecond {
		t.Fatalf("unexpected Window.Poll: %v", cfg.Window.Poll())
	}
	if cfg.Window.HistoryDepth != 6 {
		t.Fatalf("unexpected Window.HistoryDepth: %d", cfg.Window.HistoryDepth)
	}
	if !cfg.Archive.Enabled {
		t.Fatalf("expected archive enabled")
	}
	if cfg.Archive.Path != "testlogs/windows.jsonl" {
		t.Fatalf("unexpected Archive.Path: %s", cfg.Archive.Path)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestDefaultPolicy(t *testing.T) {
	cfg := Default()
	if cfg.Feed.MaxRetries != 3 {
		t.Fatalf("expected default retry budget 3, got %d", cfg.Feed.MaxRetries)
	}
	if cfg.Feed.RetryDelay() != 10*time.Second {
		t.Fatalf("expected default retry delay 10s, got %v", cfg.Feed.RetryDelay())
	}
	if cfg.Window.Duration() != 5*time.Second {
		t.Fatalf("expected default window 5s, got %v", cfg.Window.Duration())
	}
	if cfg.Window.HistoryDepth != 4 {
		t.Fatalf("expected default history depth 4, got %d", cfg.Window.HistoryDepth)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	cfg.App.LogLevel = "warn"
	cfg.Window.HistoryDepth = 9
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.App.LogLevel != "warn" {
		t.Fatalf("log level lost in round trip: %s", loaded.App.LogLevel)
	}
	if loaded.Window.HistoryDepth != 9 {
		t.Fatalf("history depth lost in round trip: %d", loaded.Window.HistoryDepth)
	}
}

func TestSaveNilConfig(t *testing.T) {
	if err := Save(filepath.Join(t.TempDir(), "x.yaml"), nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}
