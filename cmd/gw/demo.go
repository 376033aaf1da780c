package main

import (
	"time"

	"github.com/vanderheijden86/guidework/pkg/tour"
	"github.com/vanderheijden86/guidework/pkg/ui"
)

// demoPages mirrors a small job-board app: three screens with the
// element IDs tour steps anchor to.
func demoPages() []ui.Page {
	return []ui.Page{
		{
			Route: "/dashboard",
			Label: "Dashboard",
			Targets: []string{
				"job-feed",
				"saved-jobs",
				"profile-completeness",
				"job-alerts",
			},
		},
		{
			Route: "/jobs",
			Label: "Jobs",
			Targets: []string{
				"search-bar",
				"filter-panel",
				"job-list",
				"salary-insights",
			},
		},
		{
			Route: "/applications",
			Label: "Applications",
			Targets: []string{
				"application-board",
				"status-column",
				"interview-prep",
			},
		},
	}
}

func demoRegistry() *tour.Registry {
	r := tour.NewRegistry()

	r.Register(tour.Tour{
		ID:          "dashboard-intro",
		Name:        "Welcome to your dashboard",
		Description: "First look at the home screen",
		Pages:       []string{"/dashboard"},
		Priority:    10,
		AutoStart:   true,
		Welcome: "Welcome! This quick tour shows you around your new " +
			"dashboard. It takes about a minute.",
		Steps: []tour.Step{
			{
				ID:     "feed",
				Target: "job-feed",
				Title:  "Your job feed",
				Body:   "New matches appear here, freshest first. We re-rank as your profile improves.",
			},
			{
				ID:     "saved",
				Target: "saved-jobs",
				Title:  "Saved jobs",
				Body:   "Bookmark anything interesting. Saved jobs keep their notes and status.",
			},
			{
				ID:            "alerts",
				Target:        "job-alerts",
				Title:         "Job alerts",
				Body:          "Set up alerts to get notified when a matching role is posted.",
				SkipIfMissing: true,
			},
		},
	})

	r.Register(tour.Tour{
		ID:            "job-search",
		Name:          "Finding the right role",
		Description:   "Search and filter walkthrough",
		Pages:         []string{"/jobs"},
		Priority:      5,
		AutoStart:     true,
		Prerequisites: []string{"dashboard-intro"},
		Steps: []tour.Step{
			{
				ID:     "search",
				Target: "search-bar",
				Title:  "Search",
				Body:   "Type a role, skill, or company. Use quotes for exact phrases.",
			},
			{
				ID:     "filters",
				Target: "filter-panel",
				Title:  "Filters",
				Body:   "Narrow by location, salary band, and remote policy.",
			},
			{
				ID:             "salary",
				Target:         "salary-insights",
				Title:          "Salary insights",
				Body:           "Market data for this search loads once enough listings match.",
				WaitForElement: 3 * time.Second,
				SkipIfMissing:  true,
			},
		},
	})

	r.Register(tour.Tour{
		ID:          "application-tracking",
		Name:        "Tracking applications",
		Description: "The application pipeline board",
		Pages:       []string{"/applications"},
		Priority:    1,
		Steps: []tour.Step{
			{
				ID:     "board",
				Target: "application-board",
				Title:  "Your pipeline",
				Body:   "Drag applications between columns as they progress.",
			},
			{
				ID:     "prep",
				Target: "interview-prep",
				Title:  "Interview prep",
				Body:   "Each interview stage links to prep material for the role.",
			},
		},
	})

	r.RegisterTooltip("/dashboard", tour.Tooltip{
		Target:  "profile-completeness",
		Content: "A complete profile roughly doubles recruiter responses.",
		TourID:  "dashboard-intro",
	})
	r.RegisterTooltip("/jobs", tour.Tooltip{
		Target:       "filter-panel",
		Content:      "Filters persist between sessions.",
		LearnMoreURL: "https://example.com/help/search-filters",
	})
	r.RegisterTooltip("/applications", tour.Tooltip{
		Target:  "status-column",
		Content: "Columns map to your pipeline stages. Rename them in settings.",
	})

	return r
}
