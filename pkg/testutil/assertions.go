package testutil

import (
	"testing"

	"github.com/vanderheijden86/guidework/pkg/tour"
)

// AssertStatus verifies a tour's persisted status.
func AssertStatus(t *testing.T, e *tour.Engine, tourID string, want tour.Status) {
	t.Helper()
	p, ok := e.Progress(tourID)
	if !ok {
		if want == tour.StatusNotStarted {
			return
		}
		t.Errorf("no progress for %s, want status %s", tourID, want)
		return
	}
	if p.Status != want {
		t.Errorf("tour %s status = %s, want %s", tourID, p.Status, want)
	}
}

// AssertStep verifies the engine is on the given step of the given tour.
func AssertStep(t *testing.T, e *tour.Engine, tourID string, step int) {
	t.Helper()
	active := e.Active()
	if active == nil || active.ID != tourID {
		t.Errorf("active tour = %v, want %s", active, tourID)
		return
	}
	if got := e.StepIndex(); got != step {
		t.Errorf("step index = %d, want %d", got, step)
	}
}

// AssertIdle verifies no tour is active.
func AssertIdle(t *testing.T, e *tour.Engine) {
	t.Helper()
	if e.Phase() != tour.PhaseIdle {
		t.Errorf("phase = %v, want idle", e.Phase())
	}
	if e.Active() != nil {
		t.Errorf("active tour = %s, want none", e.Active().ID)
	}
}

// AssertNoDuplicateStepIDs verifies step IDs within a tour are unique.
func AssertNoDuplicateStepIDs(t *testing.T, tr tour.Tour) {
	t.Helper()
	seen := make(map[string]bool)
	for _, s := range tr.Steps {
		if seen[s.ID] {
			t.Errorf("duplicate step ID in %s: %s", tr.ID, s.ID)
		}
		seen[s.ID] = true
	}
}
