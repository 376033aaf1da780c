package tour

import "sort"

// Registry is the authoritative catalog of tours and tooltips. It is an
// explicitly constructed object rather than a package-level singleton so
// tests (and embedders) can supply isolated catalogs.
//
// Registration happens once at startup; afterwards the registry is
// read-only and safe to share across the UI thread and timer callbacks.
type Registry struct {
	tours    map[string]Tour
	seq      map[string]int // insertion order, for deterministic ties
	nextSeq  int
	tooltips map[string][]Tooltip // page path -> tooltips
}

// NewRegistry returns an empty catalog.
func NewRegistry() *Registry {
	return &Registry{
		tours:    make(map[string]Tour),
		seq:      make(map[string]int),
		tooltips: make(map[string][]Tooltip),
	}
}

// Register inserts or overwrites a tour by ID. Re-registering keeps the
// original insertion position so ordering stays stable.
func (r *Registry) Register(t Tour) {
	if _, ok := r.seq[t.ID]; !ok {
		r.seq[t.ID] = r.nextSeq
		r.nextSeq++
	}
	r.tours[t.ID] = t
}

// RegisterTooltip attaches a tooltip to a page path.
func (r *Registry) RegisterTooltip(page string, tip Tooltip) {
	r.tooltips[page] = append(r.tooltips[page], tip)
}

// TourByID returns the tour, or nil when absent. Absence is not an
// error; callers treat nil as "no such tour".
func (r *Registry) TourByID(id string) *Tour {
	t, ok := r.tours[id]
	if !ok {
		return nil
	}
	return &t
}

// ToursForPage returns tours whose page filter is unset or matches path.
func (r *Registry) ToursForPage(path string) []Tour {
	var out []Tour
	for _, t := range r.sorted() {
		if t.AppliesToPage(path) {
			out = append(out, t)
		}
	}
	return out
}

// ToursForRole returns tours with no role filter or whose filter
// contains role.
func (r *Registry) ToursForRole(role string) []Tour {
	var out []Tour
	for _, t := range r.sorted() {
		if t.AppliesToRole(role) {
			out = append(out, t)
		}
	}
	return out
}

// AllTours returns every tour sorted by descending priority, ties
// broken by insertion order.
func (r *Registry) AllTours() []Tour {
	return r.sorted()
}

// TooltipsForPage returns tooltips registered for pages whose path
// prefix matches the given page.
func (r *Registry) TooltipsForPage(path string) []Tooltip {
	pages := make([]string, 0, len(r.tooltips))
	for page := range r.tooltips {
		if hasPathPrefix(path, page) {
			pages = append(pages, page)
		}
	}
	sort.Strings(pages)
	var out []Tooltip
	for _, page := range pages {
		out = append(out, r.tooltips[page]...)
	}
	return out
}

func (r *Registry) sorted() []Tour {
	out := make([]Tour, 0, len(r.tours))
	for _, t := range r.tours {
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return r.seq[out[i].ID] < r.seq[out[j].ID]
	})
	return out
}
