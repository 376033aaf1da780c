// Package tour implements gw's guided-tour engine: a static catalog of
// tours and tooltips, per-tour progress persisted through pkg/store, a
// per-page auto-start trigger, and the state machine that walks a user
// through a tour's steps.
package tour

import "time"

// Status is the lifecycle state of a tour for one user.
type Status string

const (
	StatusNotStarted Status = "not-started"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusSkipped    Status = "skipped"
)

// Placement positions a step card or tooltip relative to its target.
type Placement string

const (
	PlacementAuto   Placement = "auto"
	PlacementTop    Placement = "top"
	PlacementBottom Placement = "bottom"
	PlacementLeft   Placement = "left"
	PlacementRight  Placement = "right"
)

// Step is a single highlight in a tour. Steps are owned by their Tour
// and have no independent lifecycle.
type Step struct {
	ID        string
	Target    string // named UI region the step anchors to
	Title     string
	Body      string // markdown
	Placement Placement

	// SkipIfMissing advances past the step transparently when Target
	// does not resolve, instead of showing an unanchored card.
	SkipIfMissing bool
	// WaitForElement, when positive, is how long the engine polls for
	// Target to appear before applying the SkipIfMissing policy.
	WaitForElement time.Duration

	// Action carries optional interactive metadata for the step
	// (e.g. "press" -> "b"). The engine does not interpret it.
	Action map[string]string
}

// Tour is an ordered sequence of steps guiding a user around a page.
// Tours are immutable once registered.
type Tour struct {
	ID          string
	Name        string
	Description string
	Steps       []Step

	// Roles restricts the tour to the listed user roles; empty = all.
	Roles []string
	// Pages restricts the tour to pages matching one of the listed
	// path prefixes; empty = all pages.
	Pages []string

	// Priority orders tours when several apply; higher shows first.
	Priority  int
	AutoStart bool

	// Welcome, when non-empty, is shown as a modal before step 1.
	Welcome string

	// Prerequisites names tours that must be completed before this
	// one auto-starts. Explicit starts are not gated.
	Prerequisites []string
}

// AppliesToPage reports whether the tour is eligible on the given page
// path. An unset filter matches everything; otherwise one of the
// configured prefixes must match.
func (t Tour) AppliesToPage(path string) bool {
	if len(t.Pages) == 0 {
		return true
	}
	for _, p := range t.Pages {
		if hasPathPrefix(path, p) {
			return true
		}
	}
	return false
}

// AppliesToRole reports whether the tour is eligible for the role.
func (t Tour) AppliesToRole(role string) bool {
	if len(t.Roles) == 0 {
		return true
	}
	for _, r := range t.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// hasPathPrefix is a path-segment-aware prefix match: "/jobs" matches
// "/jobs" and "/jobs/123" but not "/jobsearch".
func hasPathPrefix(path, prefix string) bool {
	if prefix == "" || prefix == "/" {
		return true
	}
	if len(path) < len(prefix) || path[:len(prefix)] != prefix {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}

// Tooltip is a contextual hint anchored to a UI region on one page.
// Static, registered at startup, read-only at runtime.
type Tooltip struct {
	Target       string
	Content      string
	TourID       string // optional related tour
	LearnMoreURL string // optional
	Placement    Placement
}
