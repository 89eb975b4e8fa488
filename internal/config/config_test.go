package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew_Defaults(t *testing.T) {
	cfg := New()
	if cfg.Board.Author != "human" {
		t.Errorf("expected default author 'human', got %s", cfg.Board.Author)
	}
	if cfg.Server.Port != 8787 {
		t.Errorf("expected default server port 8787, got %d", cfg.Server.Port)
	}
	if cfg.Signaling.TTLSeconds != 3600 {
		t.Errorf("expected default ttl 3600, got %d", cfg.Signaling.TTLSeconds)
	}
}

func TestLoadWorkspace_MissingFileReturnsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	cfg, err := LoadWorkspace(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8787 {
		t.Errorf("expected default port, got %d", cfg.Server.Port)
	}
}

func TestLoadWorkspace_OverridesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	isnadDir := filepath.Join(tmpDir, ".isnad")
	if err := os.MkdirAll(isnadDir, 0755); err != nil {
		t.Fatalf("mkdir error: %v", err)
	}
	content := []byte("[server]\nport = 9999\n\n[board]\nauthor = \"alice\"\n")
	if err := os.WriteFile(filepath.Join(isnadDir, "config.toml"), content, 0644); err != nil {
		t.Fatalf("write error: %v", err)
	}

	cfg, err := LoadWorkspace(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("expected overridden port 9999, got %d", cfg.Server.Port)
	}
	if cfg.Board.Author != "alice" {
		t.Errorf("expected overridden author 'alice', got %s", cfg.Board.Author)
	}
	// Host default should still be present since it wasn't overridden.
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("expected default host preserved, got %s", cfg.Server.Host)
	}
}
