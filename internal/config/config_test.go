package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewAtWritesDefaultConfig(t *testing.T) {
	home := filepath.Join(t.TempDir(), VaultmonDir)
	cfg, err := NewAt(home)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.BaseURL() != "http://localhost:5000" {
		t.Fatalf("unexpected base url: %s", cfg.BaseURL())
	}
	if cfg.RequestTimeout() != 10*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.RequestTimeout())
	}
	if cfg.SidebarCollapsed() {
		t.Fatal("sidebar should start expanded")
	}
	data, err := os.ReadFile(cfg.ConfigPath())
	if err != nil {
		t.Fatalf("default config file missing: %v", err)
	}
	if !strings.Contains(string(data), "base_url") {
		t.Fatal("default config file should carry commented defaults")
	}
}

func TestLoadExistingConfig(t *testing.T) {
	home := filepath.Join(t.TempDir(), VaultmonDir)
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	raw := strings.Join([]string{
		"version: 1",
		"server:",
		"  base_url: https://warehouse.example.net/",
		"  request_timeout_seconds: 5",
		"poll:",
		"  dashboard_seconds: 3",
		"ui:",
		"  sidebar_collapsed: true",
	}, "\n")
	if err := os.WriteFile(filepath.Join(home, configFileName), []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := NewAt(home)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if got := cfg.BaseURL(); got != "https://warehouse.example.net" {
		t.Fatalf("trailing slash not stripped: %s", got)
	}
	if cfg.RequestTimeout() != 5*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.RequestTimeout())
	}
	if cfg.DashboardPoll() != 3*time.Second {
		t.Fatalf("unexpected dashboard poll: %v", cfg.DashboardPoll())
	}
	// Unset cadences fall back to defaults.
	if cfg.HealthPoll() != 30*time.Second {
		t.Fatalf("unexpected health poll: %v", cfg.HealthPoll())
	}
	if !cfg.SidebarCollapsed() {
		t.Fatal("sidebar preference should load from file")
	}
}

func TestInvalidBaseURLRejected(t *testing.T) {
	home := filepath.Join(t.TempDir(), VaultmonDir)
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	raw := "version: 1\nserver:\n  base_url: ftp://warehouse.example.net\n"
	if err := os.WriteFile(filepath.Join(home, configFileName), []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := NewAt(home); err == nil {
		t.Fatal("expected validation error for non-http scheme")
	}
}

func TestSetSidebarCollapsedPersists(t *testing.T) {
	home := filepath.Join(t.TempDir(), VaultmonDir)
	cfg, err := NewAt(home)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if err := cfg.SetSidebarCollapsed(true); err != nil {
		t.Fatalf("set sidebar: %v", err)
	}
	reloaded, err := NewAt(home)
	if err != nil {
		t.Fatalf("reload config: %v", err)
	}
	if !reloaded.SidebarCollapsed() {
		t.Fatal("sidebar preference should survive a reload")
	}
}
