package tour

import (
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/guidework/pkg/debug"
	"github.com/vanderheijden86/guidework/pkg/store"
)

// Settings is the session-wide tour configuration. A single instance,
// mutated only through explicit update calls; persisted under the
// settings key so choices survive restarts.
type Settings struct {
	TooltipsEnabled bool `json:"tooltipsEnabled" yaml:"tooltips_enabled"`
	// HoverDelayMs is how long a target must be hovered before its
	// tooltip shows, in milliseconds.
	HoverDelayMs int  `json:"hoverDelayMs" yaml:"hover_delay_ms"`
	ShowBeacons  bool `json:"showBeacons" yaml:"show_beacons"`
	AutoStart    bool `json:"autoStart" yaml:"auto_start"`
	// ConfirmSkip asks for confirmation before a tour is skipped.
	ConfirmSkip bool `json:"confirmSkip" yaml:"confirm_skip"`
	// AnimationSpeed scales transition animations; 1.0 is normal,
	// 0 disables them.
	AnimationSpeed float64 `json:"animationSpeed" yaml:"animation_speed"`
}

// DefaultSettings returns the out-of-the-box configuration.
func DefaultSettings() Settings {
	return Settings{
		TooltipsEnabled: true,
		HoverDelayMs:    500,
		ShowBeacons:     true,
		AutoStart:       true,
		ConfirmSkip:     false,
		AnimationSpeed:  1.0,
	}
}

// HoverDelay returns the hover delay as a Duration.
func (s Settings) HoverDelay() time.Duration {
	return time.Duration(s.HoverDelayMs) * time.Millisecond
}

// LoadSettings reads persisted settings, falling back to defaults when
// absent, unreadable, or the backend is unavailable.
func LoadSettings(st store.Store) Settings {
	def := DefaultSettings()
	if st == nil {
		return def
	}
	raw, ok, err := st.Get(store.SettingsKey)
	if err != nil || !ok {
		return def
	}
	var s Settings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		debug.Log("settings record corrupt, using defaults: %v", err)
		return def
	}
	return s
}

// SaveSettings persists settings. Failures are logged, not surfaced;
// the session keeps the in-memory value.
func SaveSettings(st store.Store, s Settings) {
	if st == nil {
		return
	}
	raw, err := json.Marshal(s)
	if err == nil {
		err = st.Set(store.SettingsKey, string(raw))
	}
	if err != nil {
		debug.Log("saving settings: %v", err)
	}
}
