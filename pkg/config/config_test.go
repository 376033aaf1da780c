package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.UI.Theme != "system" {
		t.Errorf("expected default theme 'system', got %q", cfg.UI.Theme)
	}
	if cfg.UI.StartPage != "/dashboard" {
		t.Errorf("expected start page '/dashboard', got %q", cfg.UI.StartPage)
	}
	if cfg.Store.Backend != StoreFile {
		t.Errorf("expected file backend, got %q", cfg.Store.Backend)
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.UI.Theme != "system" {
		t.Errorf("expected default config, got theme %q", cfg.UI.Theme)
	}
}

func TestLoadFrom_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
ui:
  theme: dark
  start_page: /jobs
  card_width: 72

store:
  backend: sqlite
  path: ~/state/gw.db

tours:
  auto_start: false
  hover_delay_ms: 250
  confirm_skip: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.UI.Theme != "dark" {
		t.Errorf("expected theme 'dark', got %q", cfg.UI.Theme)
	}
	if cfg.UI.StartPage != "/jobs" {
		t.Errorf("expected start_page '/jobs', got %q", cfg.UI.StartPage)
	}
	if cfg.UI.CardWidth != 72 {
		t.Errorf("expected card_width 72, got %d", cfg.UI.CardWidth)
	}

	if cfg.Store.Backend != StoreSQLite {
		t.Errorf("expected sqlite backend, got %q", cfg.Store.Backend)
	}
	// Path should have ~ expanded
	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, "state/gw.db")
	if cfg.Store.Path != expected {
		t.Errorf("expected expanded path %q, got %q", expected, cfg.Store.Path)
	}

	s := cfg.TourSettings()
	if s.AutoStart {
		t.Error("expected auto_start false to override the default")
	}
	if s.HoverDelayMs != 250 {
		t.Errorf("expected hover_delay_ms 250, got %d", s.HoverDelayMs)
	}
	if !s.ConfirmSkip {
		t.Error("expected confirm_skip true")
	}
	// Keys the file omits keep their defaults.
	if !s.TooltipsEnabled {
		t.Error("expected tooltips default to survive a partial config")
	}
}

func TestLoadFrom_UnknownBackend(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("store:\n  backend: redis\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("expected error for unknown store backend")
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("{{invalid yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFrom(path)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestStatePath(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/xdg-state")

	cfg := DefaultConfig()
	if got, want := cfg.StatePath(), "/tmp/xdg-state/gw/state.json"; got != want {
		t.Errorf("file backend path = %q, want %q", got, want)
	}

	cfg.Store.Backend = StoreSQLite
	if got, want := cfg.StatePath(), "/tmp/xdg-state/gw/state.db"; got != want {
		t.Errorf("sqlite backend path = %q, want %q", got, want)
	}

	cfg.Store.Path = "/elsewhere/tours.db"
	if got := cfg.StatePath(); got != "/elsewhere/tours.db" {
		t.Errorf("override path = %q, want /elsewhere/tours.db", got)
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := DefaultConfig()
	cfg.UI.Theme = "light"
	cfg.Store.Backend = StoreSQLite
	off := false
	cfg.Tours.ShowBeacons = &off

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if loaded.UI.Theme != "light" {
		t.Errorf("expected theme 'light', got %q", loaded.UI.Theme)
	}
	if loaded.Store.Backend != StoreSQLite {
		t.Errorf("expected sqlite backend, got %q", loaded.Store.Backend)
	}
	if loaded.Tours.ShowBeacons == nil || *loaded.Tours.ShowBeacons {
		t.Error("expected show_beacons false to round-trip")
	}
}

func TestSaveTo_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deeper", "config.yaml")

	if err := SaveTo(DefaultConfig(), path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file not created: %v", err)
	}
}
