// Package theme resolves gw's visual theme: the user's stored
// preference (light, dark, or follow-the-terminal) against the
// terminal's detected background, producing the concrete light/dark
// value the UI actually paints with.
//
// Resolution happens synchronously at construction, before the first
// frame renders, so there is never a flash of the wrong theme. While no
// explicit preference is stored the resolved theme tracks the system
// probe; an explicit Set pins it until reset. Another gw process
// changing the stored preference is picked up through Refresh, which
// the state-file watcher drives.
package theme

import (
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/guidework/pkg/debug"
	"github.com/vanderheijden86/guidework/pkg/store"
)

// Preference is the user's stored choice. System means "no explicit
// choice, follow the terminal".
type Preference string

const (
	PreferenceLight  Preference = "light"
	PreferenceDark   Preference = "dark"
	PreferenceSystem Preference = "system"
)

// Resolved is the concrete theme in effect: always exactly light or
// dark, never system.
type Resolved string

const (
	Light Resolved = "light"
	Dark  Resolved = "dark"
)

// SystemProbe reports the terminal's background darkness. The real
// probe asks lipgloss; tests substitute a fake.
type SystemProbe interface {
	DarkBackground() bool
}

// ProbeFunc adapts a function to SystemProbe.
type ProbeFunc func() bool

func (f ProbeFunc) DarkBackground() bool { return f() }

// TerminalProbe detects the background through a lipgloss renderer.
func TerminalProbe(r *lipgloss.Renderer) SystemProbe {
	return ProbeFunc(r.HasDarkBackground)
}

// Resolver owns the preference/resolved pair and fans out changes.
type Resolver struct {
	mu       sync.Mutex
	store    store.Store
	probe    SystemProbe
	degraded bool

	pref     Preference
	resolved Resolved

	subs    map[int]func(Resolved)
	nextSub int
}

// NewResolver reads the persisted preference (if any) and resolves
// immediately. A nil store means no persistence: the theme resolves
// from the probe on every run. A nil probe defaults to light.
func NewResolver(st store.Store, probe SystemProbe) *Resolver {
	r := &Resolver{
		store: st,
		probe: probe,
		pref:  PreferenceSystem,
		subs:  make(map[int]func(Resolved)),
	}
	if st == nil {
		r.degraded = true
	}
	r.loadLocked()
	r.resolved = r.resolveLocked()
	return r
}

// loadLocked reads the stored preference. Storage failure degrades to
// session-only behavior, matching the progress store.
func (r *Resolver) loadLocked() {
	if r.degraded {
		return
	}
	raw, ok, err := r.store.Get(store.ThemeKey)
	if err != nil {
		debug.Log("theme store unavailable, resolving from system only: %v", err)
		r.degraded = true
		return
	}
	if !ok {
		r.pref = PreferenceSystem
		return
	}
	switch Preference(raw) {
	case PreferenceLight, PreferenceDark:
		r.pref = Preference(raw)
	default:
		// Unknown stored value; treat as unset rather than guessing.
		r.pref = PreferenceSystem
	}
}

func (r *Resolver) resolveLocked() Resolved {
	switch r.pref {
	case PreferenceLight:
		return Light
	case PreferenceDark:
		return Dark
	}
	if r.probe != nil && r.probe.DarkBackground() {
		return Dark
	}
	return Light
}

// Preference returns the stored (or session) preference.
func (r *Resolver) Preference() Preference {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pref
}

// Resolved returns the theme currently in effect.
func (r *Resolver) Resolved() Resolved {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolved
}

// Set stores an explicit preference (or clears it with
// PreferenceSystem) and re-resolves immediately.
func (r *Resolver) Set(pref Preference) {
	r.mu.Lock()
	r.pref = pref
	if !r.degraded {
		var err error
		if pref == PreferenceSystem {
			err = r.store.Delete(store.ThemeKey)
		} else {
			err = r.store.Set(store.ThemeKey, string(pref))
		}
		if err != nil {
			debug.Log("persisting theme preference: %v", err)
			r.degraded = true
		}
	}
	r.recomputeLocked()
}

// Toggle flips between light and dark as an explicit preference,
// starting from the currently resolved value.
func (r *Resolver) Toggle() {
	if r.Resolved() == Dark {
		r.Set(PreferenceLight)
	} else {
		r.Set(PreferenceDark)
	}
}

// Refresh re-reads the stored preference and the system probe. Wired to
// the state-file watcher for cross-process sync, and callable when the
// terminal's background changes.
func (r *Resolver) Refresh() {
	r.mu.Lock()
	r.loadLocked()
	r.recomputeLocked()
}

// Subscribe registers a callback for resolved-theme changes and
// returns its unsubscribe function. Callbacks fire off the lock, only
// when the resolved value actually changed.
func (r *Resolver) Subscribe(fn func(Resolved)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.subs, id)
	}
}

// recomputeLocked re-resolves and notifies subscribers on change.
// Called with r.mu held; releases it.
func (r *Resolver) recomputeLocked() {
	old := r.resolved
	r.resolved = r.resolveLocked()
	changed := r.resolved != old
	resolved := r.resolved
	var fns []func(Resolved)
	if changed {
		fns = make([]func(Resolved), 0, len(r.subs))
		for _, fn := range r.subs {
			fns = append(fns, fn)
		}
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn(resolved)
	}
}

// Apply flags the renderer with the resolved background so lipgloss
// adaptive colors pick the right variant. Call before the first frame.
func Apply(r *lipgloss.Renderer, res Resolved) {
	r.SetHasDarkBackground(res == Dark)
}
