package tour

import (
	"sync"
	"time"

	"github.com/vanderheijden86/guidework/pkg/debug"
	"github.com/vanderheijden86/guidework/pkg/sched"
)

// DefaultSettleDelay is how long a page gets to finish mounting its
// targets before an auto-started tour appears. Long enough for a frame
// or two of layout, short enough to feel immediate.
const DefaultSettleDelay = 600 * time.Millisecond

// TriggerOption configures a Trigger.
type TriggerOption func(*Trigger)

// WithSettleDelay overrides the settle delay.
func WithSettleDelay(d time.Duration) TriggerOption {
	return func(t *Trigger) { t.settleDelay = d }
}

// WithTriggerScheduler sets the scheduler used for the settle delay.
func WithTriggerScheduler(s sched.Scheduler) TriggerOption {
	return func(t *Trigger) { t.scheduler = s }
}

// WithRole sets the current user's role for role-filtered tours.
func WithRole(role string) TriggerOption {
	return func(t *Trigger) { t.role = role }
}

// Trigger decides, on navigation to a page, whether an eligible tour
// should auto-start. Auto-start fires only on a tour's very first
// encounter: any existing progress record, whatever its status,
// suppresses it.
type Trigger struct {
	mu          sync.Mutex
	engine      *Engine
	registry    *Registry
	progress    *ProgressStore
	settings    func() Settings
	role        string
	scheduler   sched.Scheduler
	settleDelay time.Duration

	pending     sched.Task
	pendingTour string
}

// NewTrigger wires a trigger to the engine. settings is called at
// decision time so live settings changes take effect without rewiring.
func NewTrigger(engine *Engine, registry *Registry, progress *ProgressStore, settings func() Settings, opts ...TriggerOption) *Trigger {
	t := &Trigger{
		engine:      engine,
		registry:    registry,
		progress:    progress,
		settings:    settings,
		scheduler:   sched.NewTimers(),
		settleDelay: DefaultSettleDelay,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Visit is called by a page with its own tour ID when it becomes
// current. When every condition holds, the tour starts after the settle
// delay; Cancel (teardown) before the delay fires must abort it so a
// tour never starts on a page the user already left. Visiting again
// while a start is pending re-arms the delay for the latest visit.
//
// Only an eligible visit supersedes a pending start, so a page can
// offer its tours in priority order and stop at the first armed one
// without a lower-priority neighbor undoing it. Navigation teardown
// goes through Cancel. Reports whether a start was armed.
func (t *Trigger) Visit(page, tourID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.settings().AutoStart {
		return false
	}
	if t.engine.Phase() != PhaseIdle {
		return false
	}
	if _, seen := t.progress.Get(tourID); seen {
		return false
	}
	tr := t.registry.TourByID(tourID)
	if tr == nil || !tr.AutoStart {
		return false
	}
	if !tr.AppliesToPage(page) || !tr.AppliesToRole(t.role) {
		return false
	}
	if !t.prerequisitesMet(tr) {
		debug.Log("tour %s waiting on prerequisites", tourID)
		return false
	}

	// The latest eligible visit supersedes any earlier pending start.
	t.cancelLocked()
	t.pendingTour = tourID
	t.pending = t.scheduler.Schedule(t.settleDelay, func() {
		t.fire(tourID)
	})
	return true
}

// Cancel aborts any pending auto-start. Pages call this on teardown.
func (t *Trigger) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked()
}

func (t *Trigger) cancelLocked() {
	if t.pending != nil {
		t.pending.Cancel()
		t.pending = nil
		t.pendingTour = ""
	}
}

// fire runs on a scheduler goroutine after the settle delay.
func (t *Trigger) fire(tourID string) {
	t.mu.Lock()
	if t.pendingTour != tourID {
		// Cancelled or superseded while the delay ran.
		t.mu.Unlock()
		return
	}
	t.pending = nil
	t.pendingTour = ""
	t.mu.Unlock()

	// Conditions may have changed during the delay; the engine's own
	// idle check covers the rest.
	if _, seen := t.progress.Get(tourID); seen {
		return
	}
	t.engine.Start(tourID)
}

func (t *Trigger) prerequisitesMet(tr *Tour) bool {
	for _, dep := range tr.Prerequisites {
		p, ok := t.progress.Get(dep)
		if !ok || p.Status != StatusCompleted {
			return false
		}
	}
	return true
}
