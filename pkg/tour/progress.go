package tour

import (
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/guidework/pkg/debug"
	"github.com/vanderheijden86/guidework/pkg/store"
)

// Progress is the persisted per-tour record. One record per tour;
// created on first start, overwritten on every transition, removed only
// by an explicit reset.
type Progress struct {
	TourID      string     `json:"tourId"`
	CurrentStep int        `json:"currentStep"`
	Status      Status     `json:"status"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// ProgressStore persists Progress records through a store.Store.
//
// Storage failure must never reach the UI: on the first backend error
// the store degrades to its in-process cache for the rest of the
// session, so progress survives within the run but not across restarts.
// Writes are last-write-wins at the backend; there is no cross-process
// merge.
type ProgressStore struct {
	mu       sync.Mutex
	backend  store.Store
	cache    map[string]Progress
	degraded bool
	now      func() time.Time
}

// NewProgressStore wraps a backend. A nil backend starts degraded
// (session-only) immediately.
func NewProgressStore(backend store.Store) *ProgressStore {
	ps := &ProgressStore{
		backend: backend,
		cache:   make(map[string]Progress),
		now:     time.Now,
	}
	if backend == nil {
		ps.degraded = true
	}
	return ps
}

// Degraded reports whether the store has fallen back to session-only
// in-memory behavior.
func (ps *ProgressStore) Degraded() bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.degraded
}

// Get returns the record for tourID and whether one exists.
func (ps *ProgressStore) Get(tourID string) (Progress, bool) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if !ps.degraded {
		raw, ok, err := ps.backend.Get(store.TourKey(tourID))
		if err != nil {
			ps.degrade("get", err)
		} else if !ok {
			// Absent in the backend wins over a stale cache entry.
			delete(ps.cache, tourID)
			return Progress{}, false
		} else {
			var p Progress
			if err := json.Unmarshal([]byte(raw), &p); err != nil {
				debug.Log("progress record for %s corrupt, discarding: %v", tourID, err)
				return Progress{}, false
			}
			ps.cache[tourID] = p
			return p, true
		}
	}

	p, ok := ps.cache[tourID]
	return p, ok
}

// Put overwrites the record for p.TourID, stamping UpdatedAt.
func (ps *ProgressStore) Put(p Progress) Progress {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	p.UpdatedAt = ps.now()
	ps.cache[p.TourID] = p

	if !ps.degraded {
		raw, err := json.Marshal(p)
		if err == nil {
			err = ps.backend.Set(store.TourKey(p.TourID), string(raw))
		}
		if err != nil {
			ps.degrade("put", err)
		}
	}
	return p
}

// Reset removes the record, returning the tour to never-started
// semantics (auto-start fires again on the next eligible visit).
func (ps *ProgressStore) Reset(tourID string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	delete(ps.cache, tourID)
	if !ps.degraded {
		if err := ps.backend.Delete(store.TourKey(tourID)); err != nil {
			ps.degrade("reset", err)
		}
	}
}

// ResetAll clears every tour's record.
func (ps *ProgressStore) ResetAll() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ps.cache = make(map[string]Progress)
	if ps.degraded {
		return
	}
	keys, err := ps.backend.Keys(store.TourKeyPrefix)
	if err != nil {
		ps.degrade("reset-all", err)
		return
	}
	for _, k := range keys {
		if err := ps.backend.Delete(k); err != nil {
			ps.degrade("reset-all", err)
			return
		}
	}
}

// All returns every stored record.
func (ps *ProgressStore) All() []Progress {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.degraded {
		out := make([]Progress, 0, len(ps.cache))
		for _, p := range ps.cache {
			out = append(out, p)
		}
		return out
	}

	keys, err := ps.backend.Keys(store.TourKeyPrefix)
	if err != nil {
		ps.degrade("all", err)
		out := make([]Progress, 0, len(ps.cache))
		for _, p := range ps.cache {
			out = append(out, p)
		}
		return out
	}

	var out []Progress
	for _, k := range keys {
		raw, ok, err := ps.backend.Get(k)
		if err != nil || !ok {
			continue
		}
		var p Progress
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			debug.Log("progress record %s corrupt, skipping: %v", k, err)
			continue
		}
		if p.TourID == "" {
			p.TourID = strings.TrimPrefix(k, store.TourKeyPrefix)
		}
		out = append(out, p)
	}
	return out
}

// degrade flips to session-only mode. Called with ps.mu held.
func (ps *ProgressStore) degrade(op string, err error) {
	debug.Log("progress store degrading to session-only after %s: %v", op, err)
	ps.degraded = true
}
