package tour

import (
	"sync"
	"time"

	"github.com/vanderheijden86/guidework/pkg/debug"
	"github.com/vanderheijden86/guidework/pkg/sched"
)

// Phase is the engine's runtime state.
type Phase int

const (
	// PhaseIdle: no active tour.
	PhaseIdle Phase = iota
	// PhaseWelcome: welcome modal shown before step 1.
	PhaseWelcome
	// PhaseStepping: a step card is showing.
	PhaseStepping
	// PhaseWaiting: polling for the current step's target to appear.
	PhaseWaiting
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseWelcome:
		return "welcome"
	case PhaseStepping:
		return "stepping"
	case PhaseWaiting:
		return "waiting"
	default:
		return "unknown"
	}
}

// TargetResolver reports whether a step's target region currently
// exists in the embedding UI. A nil resolver treats every target as
// present.
type TargetResolver interface {
	Resolve(target string) bool
}

// ResolverFunc adapts a function to TargetResolver.
type ResolverFunc func(target string) bool

func (f ResolverFunc) Resolve(target string) bool { return f(target) }

// DefaultPollInterval is how often the engine re-checks a missing
// target while in PhaseWaiting.
const DefaultPollInterval = 100 * time.Millisecond

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithResolver sets the target resolver.
func WithResolver(r TargetResolver) EngineOption {
	return func(e *Engine) { e.resolver = r }
}

// WithScheduler sets the scheduler used for target polling.
func WithScheduler(s sched.Scheduler) EngineOption {
	return func(e *Engine) { e.scheduler = s }
}

// WithPollInterval sets the target poll interval.
func WithPollInterval(d time.Duration) EngineOption {
	return func(e *Engine) { e.pollInterval = d }
}

// WithOnChange sets a callback invoked after every state change, off
// the engine lock. The UI uses it to repaint.
func WithOnChange(fn func()) EngineOption {
	return func(e *Engine) { e.onChange = fn }
}

// Engine drives the active tour: which tour and step is showing, and
// how transitions move between them.
//
// The machine is idle -> welcome (optional) -> stepping(0..N-1) ->
// completed or skipped -> idle. At most one tour is active. Every
// invalid transition (Next while idle, a second Start, ...) is a
// deliberate no-op: this is UI orchestration, nothing here is worth a
// crash or an error the caller can't act on.
type Engine struct {
	mu           sync.Mutex
	registry     *Registry
	progress     *ProgressStore
	resolver     TargetResolver
	scheduler    sched.Scheduler
	pollInterval time.Duration
	onChange     func()

	phase  Phase
	active *Tour
	step   int

	// gen invalidates in-flight poll callbacks after Stop/Skip/Start.
	gen      int
	waitTask sched.Task
	waited   time.Duration
}

// NewEngine creates an idle engine over the given catalog and progress
// store.
func NewEngine(registry *Registry, progress *ProgressStore, opts ...EngineOption) *Engine {
	e := &Engine{
		registry:     registry,
		progress:     progress,
		scheduler:    sched.NewTimers(),
		pollInterval: DefaultPollInterval,
		phase:        PhaseIdle,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Phase returns the current machine phase.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Active returns the tour currently showing, or nil when idle.
func (e *Engine) Active() *Tour {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// StepIndex returns the current 0-based step index; -1 when idle.
func (e *Engine) StepIndex() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		return -1
	}
	return e.step
}

// CurrentStep returns the step currently showing, or nil.
func (e *Engine) CurrentStep() *Step {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil || e.phase == PhaseWelcome || e.step >= len(e.active.Steps) {
		return nil
	}
	s := e.active.Steps[e.step]
	return &s
}

// Progress returns the stored record for a tour.
func (e *Engine) Progress(tourID string) (Progress, bool) {
	return e.progress.Get(tourID)
}

// AllProgress returns every stored record.
func (e *Engine) AllProgress() []Progress {
	return e.progress.All()
}

// Reset removes a tour's record so it behaves as never started.
func (e *Engine) Reset(tourID string) {
	e.progress.Reset(tourID)
}

// ResetAll removes every tour's record.
func (e *Engine) ResetAll() {
	e.progress.ResetAll()
}

// Start activates a tour from step 0, or from fromStep when given
// (clamped to the valid range; resuming a skipped tour passes its
// preserved step). No-op unless the engine is idle and the tour exists.
func (e *Engine) Start(id string, fromStep ...int) bool {
	e.mu.Lock()
	if e.phase != PhaseIdle {
		e.mu.Unlock()
		return false
	}
	t := e.registry.TourByID(id)
	if t == nil {
		e.mu.Unlock()
		debug.Log("start of unknown tour %q ignored", id)
		return false
	}

	e.gen++
	e.active = t
	start := 0
	if len(fromStep) > 0 {
		start = fromStep[0]
	}
	if start < 0 {
		start = 0
	}
	if n := len(t.Steps); n > 0 && start > n-1 {
		start = n - 1
	}
	e.step = start

	if len(t.Steps) == 0 {
		// Nothing to show; a stepless tour completes on start.
		e.completeLocked()
		e.mu.Unlock()
		e.notify()
		return true
	}

	e.persistLocked(StatusInProgress, nil)
	if t.Welcome != "" {
		e.phase = PhaseWelcome
	} else {
		e.enterStepLocked(start)
	}
	e.mu.Unlock()
	e.notify()
	return true
}

// Begin dismisses the welcome modal and shows the first step. No-op
// outside PhaseWelcome.
func (e *Engine) Begin() {
	e.mu.Lock()
	if e.phase != PhaseWelcome {
		e.mu.Unlock()
		return
	}
	e.enterStepLocked(e.step)
	e.mu.Unlock()
	e.notify()
}

// Next advances to the following step, or completes the tour at the
// last one. From the welcome modal it shows the first step. No-op when
// idle or waiting.
func (e *Engine) Next() {
	e.mu.Lock()
	switch e.phase {
	case PhaseWelcome:
		e.enterStepLocked(e.step)
	case PhaseStepping:
		if e.step+1 < len(e.active.Steps) {
			e.enterStepLocked(e.step + 1)
		} else {
			e.completeLocked()
		}
	default:
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()
	e.notify()
}

// Previous steps back. No-op at step 0 and outside PhaseStepping.
func (e *Engine) Previous() {
	e.mu.Lock()
	if e.phase != PhaseStepping || e.step == 0 {
		e.mu.Unlock()
		return
	}
	e.enterStepLocked(e.step - 1)
	e.mu.Unlock()
	e.notify()
}

// Skip abandons the tour deliberately: status becomes skipped and the
// current step is preserved for a later resume. No-op when idle.
func (e *Engine) Skip() {
	e.mu.Lock()
	if e.phase == PhaseIdle {
		e.mu.Unlock()
		return
	}
	e.cancelWaitLocked()
	e.persistLocked(StatusSkipped, nil)
	e.active = nil
	e.phase = PhaseIdle
	e.mu.Unlock()
	e.notify()
}

// Complete finishes the tour: status completed, completion time
// recorded. No-op when idle.
func (e *Engine) Complete() {
	e.mu.Lock()
	if e.phase == PhaseIdle {
		e.mu.Unlock()
		return
	}
	e.completeLocked()
	e.mu.Unlock()
	e.notify()
}

// Stop forces an exit without touching the stored status. The
// distinction from Skip is that a route change interrupting a tour
// should not mark it as deliberately dismissed. No-op when idle.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.phase == PhaseIdle {
		e.mu.Unlock()
		return
	}
	e.cancelWaitLocked()
	e.active = nil
	e.phase = PhaseIdle
	e.mu.Unlock()
	e.notify()
}

// enterStepLocked moves to step i, advancing past missing targets
// according to each step's policy. Called with e.mu held.
func (e *Engine) enterStepLocked(i int) {
	steps := e.active.Steps
	e.cancelWaitLocked()

	for i < len(steps) {
		s := steps[i]
		switch {
		case e.targetPresent(s.Target):
			e.phase = PhaseStepping
			e.step = i
			e.persistLocked(StatusInProgress, nil)
			return

		case s.WaitForElement > 0:
			e.phase = PhaseWaiting
			e.step = i
			e.waited = 0
			e.persistLocked(StatusInProgress, nil)
			e.armPollLocked()
			return

		case s.SkipIfMissing:
			// Advance transparently; never show an unanchored card.
			debug.Log("tour %s step %s target %q missing, skipping", e.active.ID, s.ID, s.Target)
			i++

		default:
			// No skip policy and no wait budget: hold until the
			// target appears or the user stops or skips the tour.
			e.phase = PhaseWaiting
			e.step = i
			e.waited = 0
			e.persistLocked(StatusInProgress, nil)
			e.armPollLocked()
			return
		}
	}
	// Ran off the end skipping missing targets.
	e.completeLocked()
}

// armPollLocked schedules the next target check for the waiting step.
// Called with e.mu held.
func (e *Engine) armPollLocked() {
	gen := e.gen
	e.waitTask = e.scheduler.Schedule(e.pollInterval, func() {
		e.pollTarget(gen)
	})
}

// pollTarget runs on a scheduler goroutine.
func (e *Engine) pollTarget(gen int) {
	e.mu.Lock()
	if gen != e.gen || e.phase != PhaseWaiting {
		e.mu.Unlock()
		return
	}
	s := e.active.Steps[e.step]
	e.waited += e.pollInterval

	if e.targetPresent(s.Target) {
		e.phase = PhaseStepping
		e.persistLocked(StatusInProgress, nil)
		e.mu.Unlock()
		e.notify()
		return
	}

	if e.waited >= s.WaitForElement && s.SkipIfMissing {
		// Timed out; apply the skip policy.
		debug.Log("tour %s step %s target %q never appeared, skipping", e.active.ID, s.ID, s.Target)
		e.enterStepLocked(e.step + 1)
		e.mu.Unlock()
		e.notify()
		return
	}

	// Still waiting. Without SkipIfMissing there is no deadline; the
	// wait ends when the target appears or on Stop/Skip.
	e.armPollLocked()
	e.mu.Unlock()
}

func (e *Engine) cancelWaitLocked() {
	if e.waitTask != nil {
		e.waitTask.Cancel()
		e.waitTask = nil
	}
}

func (e *Engine) targetPresent(target string) bool {
	if e.resolver == nil || target == "" {
		return true
	}
	return e.resolver.Resolve(target)
}

// completeLocked finishes the active tour. Called with e.mu held and a
// non-nil active tour.
func (e *Engine) completeLocked() {
	e.cancelWaitLocked()
	now := time.Now()
	e.persistLocked(StatusCompleted, &now)
	e.active = nil
	e.phase = PhaseIdle
}

// persistLocked writes the active tour's record. Called with e.mu held.
func (e *Engine) persistLocked(status Status, completedAt *time.Time) {
	e.progress.Put(Progress{
		TourID:      e.active.ID,
		CurrentStep: e.step,
		Status:      status,
		CompletedAt: completedAt,
	})
}

// notify invokes the change callback, if any, off the lock.
func (e *Engine) notify() {
	if e.onChange != nil {
		e.onChange()
	}
}
