// Package sched provides cancellable one-shot scheduling for gw.
//
// The tour trigger arms a settle delay before auto-starting a tour and
// must be able to cancel it when the page is torn down first. Bare
// time.Timer handles make that cancellation (and testing) awkward, so
// the delay is modelled as a Task handed out by a Scheduler. The real
// Scheduler wraps time.AfterFunc; tests use Manual, which only fires
// when the test advances it.
package sched

import (
	"sort"
	"sync"
	"time"
)

// Task is a scheduled callback that can be cancelled before it fires.
type Task interface {
	// Cancel stops the task. It reports whether the callback was
	// prevented from running. Cancelling an already-fired or
	// already-cancelled task is a no-op returning false.
	Cancel() bool
}

// Scheduler schedules a callback to run once after a delay.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) Task
}

// Timers is the real Scheduler, backed by time.AfterFunc.
type Timers struct{}

// NewTimers returns a Scheduler backed by real timers.
func NewTimers() *Timers {
	return &Timers{}
}

type timerTask struct {
	mu    sync.Mutex
	timer *time.Timer
	done  bool
}

// Schedule runs fn after d on a timer goroutine.
func (Timers) Schedule(d time.Duration, fn func()) Task {
	t := &timerTask{}
	t.timer = time.AfterFunc(d, func() {
		t.mu.Lock()
		if t.done {
			t.mu.Unlock()
			return
		}
		t.done = true
		t.mu.Unlock()
		fn()
	})
	return t
}

func (t *timerTask) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return t.timer.Stop()
}

// Manual is a Scheduler for tests. Nothing fires until Advance moves
// the fake clock past the task's deadline, so tests are deterministic
// and never sleep.
type Manual struct {
	mu    sync.Mutex
	now   time.Duration
	next  int
	tasks map[int]*manualTask
}

type manualTask struct {
	owner    *Manual
	id       int
	deadline time.Duration
	fn       func()
}

// NewManual returns a Scheduler driven by an explicit fake clock.
func NewManual() *Manual {
	return &Manual{tasks: make(map[int]*manualTask)}
}

// Schedule registers fn to run when the fake clock reaches now+d.
func (m *Manual) Schedule(d time.Duration, fn func()) Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	t := &manualTask{owner: m, id: m.next, deadline: m.now + d, fn: fn}
	m.tasks[t.id] = t
	return t
}

func (t *manualTask) Cancel() bool {
	m := t.owner
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[t.id]; !ok {
		return false
	}
	delete(m.tasks, t.id)
	return true
}

// Advance moves the fake clock forward and fires every task whose
// deadline has passed, in deadline order. Callbacks run without the
// lock held so they may schedule or cancel further tasks.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += d
	var due []*manualTask
	for _, t := range m.tasks {
		if t.deadline <= m.now {
			due = append(due, t)
		}
	}
	for _, t := range due {
		delete(m.tasks, t.id)
	}
	m.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].deadline != due[j].deadline {
			return due[i].deadline < due[j].deadline
		}
		return due[i].id < due[j].id
	})
	for _, t := range due {
		t.fn()
	}
}

// Pending returns the number of tasks not yet fired or cancelled.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}
