package tour

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/guidework/pkg/store"
)

// Property: whatever sequence of transitions a user fires, the engine
// never leaves the valid range, never persists an out-of-range step,
// and terminal records always carry the matching status.
func TestEngineTransitionSequences(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		nSteps := rapid.IntRange(1, 6).Draw(rt, "nSteps")
		steps := make([]Step, nSteps)
		for i := range steps {
			steps[i] = Step{ID: string(rune('a' + i))}
		}
		r := NewRegistry()
		r.Register(Tour{ID: "T", Steps: steps})
		ps := NewProgressStore(store.NewMemory())
		e := NewEngine(r, ps)

		ops := rapid.SliceOfN(
			rapid.SampledFrom([]string{"start", "next", "prev", "skip", "complete", "stop", "begin"}),
			1, 60,
		).Draw(rt, "ops")

		for _, op := range ops {
			switch op {
			case "start":
				e.Start("T")
			case "next":
				e.Next()
			case "prev":
				e.Previous()
			case "skip":
				e.Skip()
			case "complete":
				e.Complete()
			case "stop":
				e.Stop()
			case "begin":
				e.Begin()
			}

			if idx := e.StepIndex(); e.Active() != nil && (idx < 0 || idx >= nSteps) {
				rt.Fatalf("step index %d out of range [0,%d) after %q", idx, nSteps, op)
			}
			if p, ok := ps.Get("T"); ok {
				if p.CurrentStep < 0 || p.CurrentStep >= nSteps {
					rt.Fatalf("persisted step %d out of range after %q", p.CurrentStep, op)
				}
				if p.Status == StatusCompleted && p.CompletedAt == nil {
					rt.Fatalf("completed record without CompletedAt after %q", op)
				}
			}
			if e.Phase() == PhaseIdle && e.Active() != nil {
				rt.Fatalf("idle engine still holds an active tour after %q", op)
			}
		}
	})
}
