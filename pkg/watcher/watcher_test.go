package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func writeState(t *testing.T, path, content string) {
	t.Helper()
	// Rename-replace, the way pkg/store writes.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestWatcherDetectsRenameReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	writeState(t, path, `{}`)

	var changes atomic.Int32
	w, err := New(path,
		WithDebounceDuration(20*time.Millisecond),
		WithOnChange(func() { changes.Add(1) }),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	writeState(t, path, `{"theme":"dark"}`)

	if !waitFor(t, 2*time.Second, func() bool { return changes.Load() >= 1 }) {
		t.Error("expected change notification after rename-replace")
	}
}

func TestWatcherPollingMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	writeState(t, path, `{}`)

	var changes atomic.Int32
	w, err := New(path,
		WithForcePoll(true),
		WithPollInterval(20*time.Millisecond),
		WithDebounceDuration(10*time.Millisecond),
		WithOnChange(func() { changes.Add(1) }),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if !w.IsPolling() {
		t.Error("expected polling mode with WithForcePoll")
	}

	// Sleep past mtime granularity on coarse filesystems.
	time.Sleep(30 * time.Millisecond)
	writeState(t, path, `{"theme":"light","padding":"xxxxxxxx"}`)

	if !waitFor(t, 2*time.Second, func() bool { return changes.Load() >= 1 }) {
		t.Error("expected change notification in polling mode")
	}
}

func TestWatcherChangedChannel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	writeState(t, path, `{}`)

	w, err := New(path, WithDebounceDuration(10*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	writeState(t, path, `{"theme":"dark"}`)

	select {
	case <-w.Changed():
	case <-time.After(2 * time.Second):
		t.Error("expected receive on Changed channel")
	}
}

func TestWatcherStartTwice(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	w, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := w.Start(); err != ErrAlreadyStarted {
		t.Errorf("expected ErrAlreadyStarted, got %v", err)
	}
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	w, err := New(filepath.Join(dir, "state.json"))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	w.Stop()
	w.Stop() // must not panic

	if w.IsStarted() {
		t.Error("expected watcher stopped")
	}
}

func TestWatcherMissingFileThenCreated(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	var changes atomic.Int32
	w, err := New(path,
		WithDebounceDuration(10*time.Millisecond),
		WithOnChange(func() { changes.Add(1) }),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start on missing file: %v", err)
	}
	defer w.Stop()

	writeState(t, path, `{}`)

	if !waitFor(t, 2*time.Second, func() bool { return changes.Load() >= 1 }) {
		t.Error("expected notification when file appears")
	}
}
