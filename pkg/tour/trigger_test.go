package tour

import (
	"testing"
	"time"

	"github.com/vanderheijden86/guidework/pkg/sched"
	"github.com/vanderheijden86/guidework/pkg/store"
)

type triggerFixture struct {
	clock    *sched.Manual
	engine   *Engine
	progress *ProgressStore
	settings Settings
	trigger  *Trigger
}

func newTriggerFixture(opts ...TriggerOption) *triggerFixture {
	f := &triggerFixture{
		clock:    sched.NewManual(),
		settings: DefaultSettings(),
	}
	r := NewRegistry()
	r.Register(threeStepTour())
	f.progress = NewProgressStore(store.NewMemory())
	f.engine = NewEngine(r, f.progress)
	opts = append([]TriggerOption{WithTriggerScheduler(f.clock)}, opts...)
	f.trigger = NewTrigger(f.engine, r, f.progress, func() Settings { return f.settings }, opts...)
	return f
}

func TestTriggerAutoStartsAfterSettleDelay(t *testing.T) {
	f := newTriggerFixture()

	f.trigger.Visit("/dash", "T1")

	if f.engine.Phase() != PhaseIdle {
		t.Fatal("tour must not start before the settle delay")
	}

	f.clock.Advance(DefaultSettleDelay)

	if f.engine.Phase() != PhaseStepping || f.engine.StepIndex() != 0 {
		t.Errorf("expected tour stepping at 0 after delay, got %v/%d",
			f.engine.Phase(), f.engine.StepIndex())
	}
	if p, _ := f.progress.Get("T1"); p.Status != StatusInProgress {
		t.Errorf("expected in-progress, got %v", p.Status)
	}
}

func TestTriggerCancelBeforeDelay(t *testing.T) {
	f := newTriggerFixture()

	f.trigger.Visit("/dash", "T1")
	f.trigger.Cancel()
	f.clock.Advance(time.Hour)

	if f.engine.Phase() != PhaseIdle {
		t.Error("cancelled visit must not start a tour")
	}
	if _, ok := f.progress.Get("T1"); ok {
		t.Error("cancelled visit must not create a progress record")
	}
}

func TestTriggerOnlyOnFirstEncounter(t *testing.T) {
	f := newTriggerFixture()

	// Any existing record, whatever its status, suppresses auto-start.
	for _, status := range []Status{StatusInProgress, StatusCompleted, StatusSkipped} {
		f.progress.Put(Progress{TourID: "T1", Status: status})
		f.trigger.Visit("/dash", "T1")
		f.clock.Advance(time.Hour)
		if f.engine.Phase() != PhaseIdle {
			t.Errorf("status %v: tour auto-started on a repeat encounter", status)
		}
	}
}

func TestTriggerResetReenables(t *testing.T) {
	f := newTriggerFixture()
	f.progress.Put(Progress{TourID: "T1", Status: StatusCompleted})

	f.progress.Reset("T1")
	f.trigger.Visit("/dash", "T1")
	f.clock.Advance(DefaultSettleDelay)

	if f.engine.Phase() != PhaseStepping {
		t.Error("expected auto-start after reset")
	}
}

func TestTriggerRespectsGlobalAutoStartSetting(t *testing.T) {
	f := newTriggerFixture()
	f.settings.AutoStart = false

	f.trigger.Visit("/dash", "T1")
	f.clock.Advance(time.Hour)

	if f.engine.Phase() != PhaseIdle {
		t.Error("tour started with global auto-start disabled")
	}
}

func TestTriggerRespectsTourAutoStartFlag(t *testing.T) {
	f := newTriggerFixture()
	tr := threeStepTour()
	tr.ID = "manual-only"
	tr.AutoStart = false
	f.engine.registry.Register(tr)

	f.trigger.Visit("/dash", "manual-only")
	f.clock.Advance(time.Hour)

	if f.engine.Phase() != PhaseIdle {
		t.Error("tour with AutoStart=false auto-started")
	}
}

func TestTriggerWrongPage(t *testing.T) {
	f := newTriggerFixture()

	f.trigger.Visit("/billing", "T1")
	f.clock.Advance(time.Hour)

	if f.engine.Phase() != PhaseIdle {
		t.Error("tour auto-started on a page outside its filter")
	}
}

func TestTriggerWhileAnotherTourActive(t *testing.T) {
	f := newTriggerFixture()
	other := threeStepTour()
	other.ID = "other"
	f.engine.registry.Register(other)
	f.engine.Start("other")

	f.trigger.Visit("/dash", "T1")
	f.clock.Advance(time.Hour)

	if f.engine.Active() == nil || f.engine.Active().ID != "other" {
		t.Error("pending tour displaced the active one")
	}
	if _, ok := f.progress.Get("T1"); ok {
		t.Error("second tour must not start while one is active")
	}
}

func TestTriggerRevisitReArms(t *testing.T) {
	f := newTriggerFixture()

	f.trigger.Visit("/dash", "T1")
	f.clock.Advance(DefaultSettleDelay / 2)
	// Navigation away and back re-arms the full delay.
	f.trigger.Visit("/dash", "T1")
	f.clock.Advance(DefaultSettleDelay / 2)

	if f.engine.Phase() != PhaseIdle {
		t.Fatal("re-armed delay fired early")
	}
	f.clock.Advance(DefaultSettleDelay / 2)
	if f.engine.Phase() != PhaseStepping {
		t.Error("expected start after the re-armed delay")
	}
}

func TestTriggerPrerequisites(t *testing.T) {
	f := newTriggerFixture()
	dep := threeStepTour()
	dep.ID = "advanced"
	dep.Prerequisites = []string{"T1"}
	f.engine.registry.Register(dep)

	f.trigger.Visit("/dash", "advanced")
	f.clock.Advance(time.Hour)
	if f.engine.Phase() != PhaseIdle {
		t.Fatal("tour auto-started with incomplete prerequisites")
	}

	f.progress.Put(Progress{TourID: "T1", Status: StatusCompleted})
	f.trigger.Visit("/dash", "advanced")
	f.clock.Advance(DefaultSettleDelay)
	if f.engine.Phase() != PhaseStepping {
		t.Error("expected auto-start once prerequisites completed")
	}
}

func TestTriggerRoleFilter(t *testing.T) {
	f := newTriggerFixture(WithRole("candidate"))
	tr := threeStepTour()
	tr.ID = "recruiter-tour"
	tr.Roles = []string{"recruiter"}
	f.engine.registry.Register(tr)

	f.trigger.Visit("/dash", "recruiter-tour")
	f.clock.Advance(time.Hour)

	if f.engine.Phase() != PhaseIdle {
		t.Error("role-filtered tour started for the wrong role")
	}
}

func TestTriggerIneligibleVisitLeavesPendingStart(t *testing.T) {
	f := newTriggerFixture()
	seen := threeStepTour()
	seen.ID = "seen"
	f.engine.registry.Register(seen)
	f.progress.Put(Progress{TourID: "seen", Status: StatusCompleted})

	if !f.trigger.Visit("/dash", "T1") {
		t.Fatal("expected eligible visit to arm a start")
	}
	// A neighbor the user has already finished must not tear down the
	// armed start.
	if f.trigger.Visit("/dash", "seen") {
		t.Fatal("expected visit of a seen tour not to arm")
	}

	f.clock.Advance(DefaultSettleDelay)
	if a := f.engine.Active(); a == nil || a.ID != "T1" {
		t.Errorf("expected T1 to auto-start, active %+v", a)
	}
}

func TestTriggerProgressAppearsDuringDelay(t *testing.T) {
	f := newTriggerFixture()

	f.trigger.Visit("/dash", "T1")
	// Another writer records progress while the delay runs.
	f.progress.Put(Progress{TourID: "T1", Status: StatusCompleted})
	f.clock.Advance(DefaultSettleDelay)

	if f.engine.Phase() != PhaseIdle {
		t.Error("tour started even though progress appeared during the delay")
	}
}
