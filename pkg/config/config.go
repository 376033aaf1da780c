// Package config handles loading and saving gw configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/gw/config.yaml
//   - Data:    ~/.local/share/gw/ (themes, plugins)
//   - State:   ~/.local/state/gw/ (tour progress, settings, theme)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/guidework/pkg/tour"
)

// Store backends for tour state.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// UIConfig holds UI preference settings.
type UIConfig struct {
	Theme       string `yaml:"theme,omitempty"`        // light, dark, system
	StartPage   string `yaml:"start_page,omitempty"`   // Page shown on launch
	CardWidth   int    `yaml:"card_width,omitempty"`   // Step card width in cells
	ShowFooter  *bool  `yaml:"show_footer,omitempty"`  // Key hint footer
}

// StoreConfig selects and locates the tour state backend.
type StoreConfig struct {
	Backend string `yaml:"backend,omitempty"` // file or sqlite
	Path    string `yaml:"path,omitempty"`    // Override the default state path
}

// ToursConfig carries the persisted tour settings defaults. Runtime
// changes live in the state store; these seed a fresh install.
type ToursConfig struct {
	AutoStart      *bool  `yaml:"auto_start,omitempty"`
	Tooltips       *bool  `yaml:"tooltips,omitempty"`
	HoverDelayMs   int    `yaml:"hover_delay_ms,omitempty"`
	ConfirmSkip    *bool  `yaml:"confirm_skip,omitempty"`
	ShowBeacons    *bool  `yaml:"show_beacons,omitempty"`
	AnimationSpeed float64 `yaml:"animation_speed,omitempty"`
}

// Config is the top-level configuration for gw.
type Config struct {
	UI    UIConfig    `yaml:"ui,omitempty"`
	Store StoreConfig `yaml:"store,omitempty"`
	Tours ToursConfig `yaml:"tours,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		UI: UIConfig{
			Theme:     "system",
			StartPage: "/dashboard",
			CardWidth: 60,
		},
		Store: StoreConfig{
			Backend: StoreFile,
		},
	}
}

// TourSettings merges the config's tour defaults over the built-in
// ones, producing the settings used when the state store has none yet.
func (c Config) TourSettings() tour.Settings {
	s := tour.DefaultSettings()
	if c.Tours.AutoStart != nil {
		s.AutoStart = *c.Tours.AutoStart
	}
	if c.Tours.Tooltips != nil {
		s.TooltipsEnabled = *c.Tours.Tooltips
	}
	if c.Tours.HoverDelayMs > 0 {
		s.HoverDelayMs = c.Tours.HoverDelayMs
	}
	if c.Tours.ConfirmSkip != nil {
		s.ConfirmSkip = *c.Tours.ConfirmSkip
	}
	if c.Tours.ShowBeacons != nil {
		s.ShowBeacons = *c.Tours.ShowBeacons
	}
	if c.Tours.AnimationSpeed > 0 {
		s.AnimationSpeed = c.Tours.AnimationSpeed
	}
	return s
}

// StatePath returns the path of the tour state backend, honoring the
// configured override. The file backend and the sqlite backend use
// different default names so switching does not misparse old data.
func (c Config) StatePath() string {
	if c.Store.Path != "" {
		return expandHome(c.Store.Path)
	}
	dir := StateDir()
	if dir == "" {
		return ""
	}
	if c.Store.Backend == StoreSQLite {
		return filepath.Join(dir, "state.db")
	}
	return filepath.Join(dir, "state.json")
}

// ConfigDir returns the XDG config directory for gw.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "gw")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "gw")
}

// DataDir returns the XDG data directory for gw.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "gw")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "gw")
}

// StateDir returns the XDG state directory for gw.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "gw")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "gw")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Store.Backend != StoreFile && cfg.Store.Backend != StoreSQLite {
		return cfg, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	cfg.Store.Path = expandHome(cfg.Store.Path)

	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
