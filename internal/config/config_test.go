package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a11y.yaml")
	data := `
mode: development
realtime: false
rules: [missing-alt-text, empty-buttons]
target: "#app"
debounce_ms: 100
max_elements: 50
enable_ui: true
browser:
  remote: ws://localhost:9222
serve:
  addr: ":9000"
store:
  path: audits.db
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mode != "development" {
		t.Errorf("Mode = %q", cfg.Mode)
	}
	if cfg.RealtimeEnabled() {
		t.Error("realtime: false not honoured")
	}
	if len(cfg.Rules) != 2 || cfg.Rules[0] != "missing-alt-text" {
		t.Errorf("Rules = %v", cfg.Rules)
	}
	if cfg.Target != "#app" {
		t.Errorf("Target = %q", cfg.Target)
	}
	if cfg.Debounce() != 100*time.Millisecond {
		t.Errorf("Debounce = %v", cfg.Debounce())
	}
	if cfg.MaxElements != 50 {
		t.Errorf("MaxElements = %d", cfg.MaxElements)
	}
	if !cfg.EnableUI {
		t.Error("EnableUI not set")
	}
	if cfg.Browser.Remote != "ws://localhost:9222" {
		t.Errorf("Browser.Remote = %q", cfg.Browser.Remote)
	}
	if cfg.Serve.Addr != ":9000" {
		t.Errorf("Serve.Addr = %q", cfg.Serve.Addr)
	}
	if cfg.Store.Path != "audits.db" {
		t.Errorf("Store.Path = %q", cfg.Store.Path)
	}
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Mode != "production" {
		t.Errorf("Mode default = %q", cfg.Mode)
	}
	if !cfg.RealtimeEnabled() {
		t.Error("realtime should default to true")
	}
	if cfg.Target != "body" {
		t.Errorf("Target default = %q", cfg.Target)
	}
	if cfg.Debounce() != 250*time.Millisecond {
		t.Errorf("Debounce default = %v", cfg.Debounce())
	}
	if cfg.MaxElements != 500 {
		t.Errorf("MaxElements default = %d", cfg.MaxElements)
	}
	if cfg.Serve.Addr == "" {
		t.Error("Serve.Addr default missing")
	}
	if cfg.Browser.NavigateTimeout != 30*time.Second {
		t.Errorf("NavigateTimeout default = %v", cfg.Browser.NavigateTimeout)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
