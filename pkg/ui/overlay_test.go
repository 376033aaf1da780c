package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	themepkg "github.com/vanderheijden86/guidework/pkg/theme"
	"github.com/vanderheijden86/guidework/pkg/tour"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func overlayFixture(t *testing.T, tr tour.Tour) (*tour.Engine, StepCardModel) {
	t.Helper()
	reg := tour.NewRegistry()
	reg.Register(tr)
	ps := tour.NewProgressStore(nil)
	eng := tour.NewEngine(reg, ps, tour.WithResolver(tour.ResolverFunc(func(string) bool { return true })))

	md := NewMarkdownRenderer(54, themepkg.Dark)
	return eng, NewStepCard(eng, TestTheme(), md, 60)
}

func demoTour() tour.Tour {
	return tour.Tour{
		ID:   "onboarding",
		Name: "Getting Started",
		Steps: []tour.Step{
			{ID: "s1", Target: "nav", Title: "Navigation", Body: "Use the tabs."},
			{ID: "s2", Target: "search", Title: "Search", Body: "Find jobs here."},
			{ID: "s3", Target: "profile", Title: "Profile", Body: "Fill in your resume."},
		},
	}
}

func TestOverlayInactiveWhenIdle(t *testing.T) {
	_, m := overlayFixture(t, demoTour())
	if m.Active() {
		t.Error("overlay active with idle engine")
	}
	if m.View() != "" {
		t.Error("expected empty view with no active tour")
	}
}

func TestOverlayStepNavigation(t *testing.T) {
	eng, m := overlayFixture(t, demoTour())
	eng.Start("onboarding")

	if !m.Active() {
		t.Fatal("overlay should be active after Start")
	}

	m, _ = m.Update(keyRunes("n"))
	if got := eng.StepIndex(); got != 1 {
		t.Errorf("after n: step %d, want 1", got)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if got := eng.StepIndex(); got != 0 {
		t.Errorf("after left: step %d, want 0", got)
	}

	// Enter on the last step finishes the tour.
	m, _ = m.Update(keyRunes("n"))
	m, _ = m.Update(keyRunes("n"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if eng.Phase() != tour.PhaseIdle {
		t.Errorf("after enter on last step: phase %v, want idle", eng.Phase())
	}
	p, ok := eng.Progress("onboarding")
	if !ok || p.Status != tour.StatusCompleted {
		t.Errorf("progress = %+v, want completed", p)
	}
}

func TestOverlayEscStops(t *testing.T) {
	eng, m := overlayFixture(t, demoTour())
	eng.Start("onboarding")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if eng.Phase() != tour.PhaseIdle {
		t.Errorf("after esc: phase %v, want idle", eng.Phase())
	}
	// Stop keeps the tour resumable, not skipped.
	if p, ok := eng.Progress("onboarding"); !ok || p.Status != tour.StatusInProgress {
		t.Errorf("progress after esc = %+v, want in-progress", p)
	}
	_ = m
}

func TestOverlaySkipWithoutConfirm(t *testing.T) {
	eng, m := overlayFixture(t, demoTour())
	eng.Start("onboarding")
	eng.Next()

	m, _ = m.Update(keyRunes("s"))
	p, ok := eng.Progress("onboarding")
	if !ok || p.Status != tour.StatusSkipped {
		t.Fatalf("progress = %+v, want skipped", p)
	}
	if p.CurrentStep != 1 {
		t.Errorf("skip should preserve the step, got %d", p.CurrentStep)
	}
	_ = m
}

func TestOverlaySkipWithConfirmOpensForm(t *testing.T) {
	eng, m := overlayFixture(t, demoTour())
	m.SetConfirmSkip(true)
	eng.Start("onboarding")

	m, _ = m.Update(keyRunes("s"))
	if m.skipForm == nil {
		t.Fatal("expected confirm form after s with confirm_skip on")
	}
	// The tour must not be skipped until the form completes.
	if p, _ := eng.Progress("onboarding"); p.Status == tour.StatusSkipped {
		t.Error("tour skipped before confirmation")
	}

	view := m.View()
	if !strings.Contains(view, "Skip this tour?") {
		t.Errorf("form view missing prompt:\n%s", view)
	}
}

func TestOverlayViewShowsProgressBar(t *testing.T) {
	eng, m := overlayFixture(t, demoTour())
	eng.Start("onboarding")
	eng.Next()

	view := m.View()
	if !strings.Contains(view, "[2/3]") {
		t.Errorf("view missing [2/3] counter:\n%s", view)
	}
	if !strings.Contains(view, "█") || !strings.Contains(view, "░") {
		t.Errorf("view missing progress bar cells:\n%s", view)
	}
	if !strings.Contains(view, "Search") {
		t.Errorf("view missing step title:\n%s", view)
	}
}

func TestOverlayWelcomeModal(t *testing.T) {
	tr := demoTour()
	tr.Welcome = "Welcome to **GuideWork**. Take the tour?"
	eng, m := overlayFixture(t, tr)
	eng.Start("onboarding")

	if eng.Phase() != tour.PhaseWelcome {
		t.Fatalf("phase %v, want welcome", eng.Phase())
	}
	view := m.View()
	if !strings.Contains(view, "Getting Started") {
		t.Errorf("welcome view missing tour name:\n%s", view)
	}

	// Enter dismisses the welcome into step 0.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if eng.Phase() != tour.PhaseStepping || eng.StepIndex() != 0 {
		t.Errorf("after enter: phase %v step %d, want stepping 0", eng.Phase(), eng.StepIndex())
	}
}
