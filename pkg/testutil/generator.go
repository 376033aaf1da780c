// Package testutil provides deterministic tour fixtures and shared
// assertions for tests across packages.
package testutil

import (
	"fmt"

	"github.com/vanderheijden86/guidework/pkg/tour"
)

// GenerateTour builds a tour with n sequential steps. Step IDs and
// targets are deterministic so tests can reference them by index.
func GenerateTour(id string, n int) tour.Tour {
	t := tour.Tour{
		ID:        id,
		Name:      "Tour " + id,
		Pages:     []string{"/" + id},
		AutoStart: true,
	}
	for i := 0; i < n; i++ {
		t.Steps = append(t.Steps, tour.Step{
			ID:     fmt.Sprintf("%s-step-%d", id, i),
			Target: fmt.Sprintf("%s-target-%d", id, i),
			Title:  fmt.Sprintf("Step %d", i+1),
			Body:   fmt.Sprintf("Body for step %d of %s.", i+1, id),
		})
	}
	return t
}

// GenerateTours builds count tours named t0..tN, each with steps steps
// and descending priority so registry ordering is predictable.
func GenerateTours(count, steps int) []tour.Tour {
	tours := make([]tour.Tour, 0, count)
	for i := 0; i < count; i++ {
		t := GenerateTour(fmt.Sprintf("t%d", i), steps)
		t.Priority = count - i
		tours = append(tours, t)
	}
	return tours
}

// GenerateChain builds tours where each depends on completing the
// previous one, for prerequisite tests.
func GenerateChain(count, steps int) []tour.Tour {
	tours := GenerateTours(count, steps)
	for i := 1; i < count; i++ {
		tours[i].Prerequisites = []string{tours[i-1].ID}
	}
	return tours
}

// PopulatedRegistry registers the given tours and returns the registry.
func PopulatedRegistry(tours ...tour.Tour) *tour.Registry {
	r := tour.NewRegistry()
	for _, t := range tours {
		r.Register(t)
	}
	return r
}
