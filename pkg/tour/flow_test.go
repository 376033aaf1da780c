package tour_test

import (
	"testing"

	"github.com/vanderheijden86/guidework/pkg/sched"
	"github.com/vanderheijden86/guidework/pkg/store"
	"github.com/vanderheijden86/guidework/pkg/testutil"
	"github.com/vanderheijden86/guidework/pkg/tour"
)

func allPresent() tour.TargetResolver {
	return tour.ResolverFunc(func(string) bool { return true })
}

func TestGeneratedTourFullWalk(t *testing.T) {
	tr := testutil.GenerateTour("walkthrough", 5)
	testutil.AssertNoDuplicateStepIDs(t, tr)

	reg := testutil.PopulatedRegistry(tr)
	eng := tour.NewEngine(reg, tour.NewProgressStore(store.NewMemory()), tour.WithResolver(allPresent()))

	if !eng.Start("walkthrough") {
		t.Fatal("Start refused")
	}
	for i := 0; i < 4; i++ {
		testutil.AssertStep(t, eng, "walkthrough", i)
		eng.Next()
	}
	testutil.AssertStep(t, eng, "walkthrough", 4)
	eng.Next()

	testutil.AssertIdle(t, eng)
	testutil.AssertStatus(t, eng, "walkthrough", tour.StatusCompleted)
}

func TestPrerequisiteChainGatesAutoStart(t *testing.T) {
	chain := testutil.GenerateChain(3, 2)
	reg := testutil.PopulatedRegistry(chain...)

	ps := tour.NewProgressStore(store.NewMemory())
	eng := tour.NewEngine(reg, ps, tour.WithResolver(allPresent()))
	clock := sched.NewManual()
	settings := func() tour.Settings { return tour.DefaultSettings() }
	trig := tour.NewTrigger(eng, reg, ps, settings, tour.WithTriggerScheduler(clock))

	// t1 requires t0, so visiting its page must not start it.
	trig.Visit("/t1", "t1")
	clock.Advance(tour.DefaultSettleDelay)
	testutil.AssertIdle(t, eng)
	testutil.AssertStatus(t, eng, "t1", tour.StatusNotStarted)

	// Complete t0 the direct way.
	eng.Start("t0")
	eng.Next()
	eng.Next()
	testutil.AssertStatus(t, eng, "t0", tour.StatusCompleted)

	// Now the same visit arms and fires.
	trig.Visit("/t1", "t1")
	clock.Advance(tour.DefaultSettleDelay)
	testutil.AssertStep(t, eng, "t1", 0)
}

func TestChainNeverSkipsAhead(t *testing.T) {
	chain := testutil.GenerateChain(3, 1)
	reg := testutil.PopulatedRegistry(chain...)

	ps := tour.NewProgressStore(store.NewMemory())
	eng := tour.NewEngine(reg, ps, tour.WithResolver(allPresent()))
	clock := sched.NewManual()
	settings := func() tour.Settings { return tour.DefaultSettings() }
	trig := tour.NewTrigger(eng, reg, ps, settings, tour.WithTriggerScheduler(clock))

	// t2 requires t1 which requires t0. Completing only t0 must not
	// unlock t2.
	eng.Start("t0")
	eng.Next()
	testutil.AssertStatus(t, eng, "t0", tour.StatusCompleted)

	trig.Visit("/t2", "t2")
	clock.Advance(tour.DefaultSettleDelay)
	testutil.AssertIdle(t, eng)
}
