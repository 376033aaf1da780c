package ui

import (
	"os"
	"strconv"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	themepkg "github.com/vanderheijden86/guidework/pkg/theme"
	"github.com/vanderheijden86/guidework/pkg/tour"
)

// TargetSet tracks which element IDs are currently on screen. The app
// updates it as pages change; the tour engine resolves step targets
// against it. Safe for concurrent use, the engine polls from timer
// goroutines.
type TargetSet struct {
	mu      sync.Mutex
	present map[string]bool
}

func NewTargetSet() *TargetSet {
	return &TargetSet{present: make(map[string]bool)}
}

func (s *TargetSet) Resolve(target string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.present[target]
}

// SetAll replaces the visible set with the given targets.
func (s *TargetSet) SetAll(targets []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.present = make(map[string]bool, len(targets))
	for _, t := range targets {
		s.present[t] = true
	}
}

// Add marks a single target as visible, for elements that appear after
// the page loads.
func (s *TargetSet) Add(target string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.present[target] = true
}

// Page is one screen of the demo app. Targets are the element IDs a
// tour step can anchor to on this page.
type Page struct {
	Route   string
	Label   string
	Targets []string
}

// tourChangedMsg arrives when the engine's state changed, possibly from
// a timer goroutine outside the Bubble Tea loop.
type tourChangedMsg struct{}

// themeChangedMsg arrives when the resolved theme changed, e.g. another
// process wrote a new preference.
type themeChangedMsg struct{ resolved themepkg.Resolved }

// App is the demo job-board shell: a handful of pages, the tour
// overlay, and the tooltip modal. It exists to exercise the tour
// machinery end to end in a terminal.
type App struct {
	theme    Theme
	resolver *themepkg.Resolver
	registry *tour.Registry
	engine   *tour.Engine
	trigger  *tour.Trigger
	targets  *TargetSet
	settings func() tour.Settings
	md       *MarkdownRenderer

	showFooter bool

	pages   []Page
	current int

	overlay StepCardModel
	tooltip TooltipModel

	changes chan struct{}
	themeCh chan themepkg.Resolved
	width   int
	height  int
}

// AppDeps carries the wired dependencies into the app model.
type AppDeps struct {
	Theme      *themepkg.Resolver
	Registry   *tour.Registry
	Engine     *tour.Engine
	Trigger    *tour.Trigger
	Targets    *TargetSet
	Settings   func() tour.Settings
	Pages      []Page
	CardWidth  int
	// ShowFooter controls the key hint line under each page. Nil means
	// show.
	ShowFooter *bool
}

// NewApp builds the shell. The returned notify func must be installed
// as the engine's change callback so overlay redraws reach the loop.
func NewApp(deps AppDeps) (*App, func()) {
	r := lipgloss.NewRenderer(os.Stdout)
	themepkg.Apply(r, resolvedOf(deps.Theme))
	th := DefaultTheme(r)

	md := NewMarkdownRenderer(deps.CardWidth-6, resolvedOf(deps.Theme))

	a := &App{
		theme:    th,
		resolver: deps.Theme,
		registry: deps.Registry,
		engine:   deps.Engine,
		trigger:  deps.Trigger,
		targets:  deps.Targets,
		settings: deps.Settings,
		md:       md,
		pages:    deps.Pages,
		overlay:  NewStepCard(deps.Engine, th, md, deps.CardWidth),
		tooltip:  NewTooltip(deps.Registry, th, md),
		changes:  make(chan struct{}, 1),
		themeCh:  make(chan themepkg.Resolved, 1),
		width:    80,
		height:   24,

		showFooter: deps.ShowFooter == nil || *deps.ShowFooter,
	}
	a.overlay.SetConfirmSkip(deps.Settings().ConfirmSkip)

	if deps.Theme != nil {
		deps.Theme.Subscribe(func(res themepkg.Resolved) {
			select {
			case a.themeCh <- res:
			default:
			}
		})
	}

	notify := func() {
		select {
		case a.changes <- struct{}{}:
		default:
		}
	}
	return a, notify
}

func resolvedOf(r *themepkg.Resolver) themepkg.Resolved {
	if r == nil {
		return themepkg.Light
	}
	return r.Resolved()
}

// Init visits the first page and starts listening for engine and theme
// changes.
func (a *App) Init() tea.Cmd {
	if len(a.pages) > 0 {
		a.visit(0)
	}
	return tea.Batch(a.waitForChange(), a.waitForTheme())
}

func (a *App) waitForChange() tea.Cmd {
	return func() tea.Msg {
		<-a.changes
		return tourChangedMsg{}
	}
}

func (a *App) waitForTheme() tea.Cmd {
	return func() tea.Msg {
		return themeChangedMsg{resolved: <-a.themeCh}
	}
}

// visit switches to page index i: updates the target set, tears down
// any start pending from the previous page, and arms the new page's
// highest-priority eligible tour.
func (a *App) visit(i int) {
	a.current = i
	page := a.pages[i]
	a.targets.SetAll(page.Targets)
	a.tooltip.Hide()
	a.trigger.Cancel()
	for _, t := range a.registry.ToursForPage(page.Route) {
		if a.trigger.Visit(page.Route, t.ID) {
			break
		}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.overlay.SetSize(msg.Width, msg.Height)
		return a, nil

	case tourChangedMsg:
		// Redraw, re-arm the listener, and animate the waiting spinner
		// if the engine is polling for a target.
		return a, tea.Batch(a.waitForChange(), a.overlay.WaitingTick())

	case themeChangedMsg:
		themepkg.Apply(a.theme.Renderer, msg.resolved)
		a.md = NewMarkdownRenderer(a.overlay.cardWidth-6, msg.resolved)
		a.overlay.md = a.md
		a.tooltip.md = a.md
		return a, a.waitForTheme()

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	if a.overlay.Active() {
		var cmd tea.Cmd
		a.overlay, cmd = a.overlay.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}

	if a.tooltip.Visible() {
		if key == "enter" {
			if id := a.tooltip.RelatedTour(); id != "" {
				a.tooltip.Hide()
				a.engine.Start(id)
			}
			return a, nil
		}
		a.tooltip.HandleKey(key)
		return a, nil
	}

	if a.overlay.Active() {
		var cmd tea.Cmd
		a.overlay, cmd = a.overlay.Update(msg)
		return a, cmd
	}

	switch key {
	case "q":
		return a, tea.Quit

	case "?":
		if a.settings().TooltipsEnabled {
			a.tooltip.Show(a.pages[a.current].Route)
		}

	case "t":
		if a.resolver != nil {
			a.resolver.Toggle()
		}

	case "r":
		// Replay the current page's highest-priority tour from the top.
		if tours := a.registry.ToursForPage(a.pages[a.current].Route); len(tours) > 0 {
			a.engine.Reset(tours[0].ID)
			a.engine.Start(tours[0].ID)
		}

	default:
		if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(a.pages) {
			a.visit(n - 1)
		}
	}
	return a, nil
}

func (a *App) View() string {
	if len(a.pages) == 0 {
		return "no pages configured\n"
	}

	var b strings.Builder
	b.WriteString(a.renderTabs())
	b.WriteString("\n\n")
	b.WriteString(a.renderPage())

	base := b.String()

	if a.tooltip.Visible() {
		return overlayCenter(a.width, a.height, a.tooltip.View(a.width))
	}
	if a.overlay.Active() {
		return a.overlay.CenterOverlay(a.width, a.height)
	}
	return base
}

func (a *App) renderTabs() string {
	var tabs []string
	for i, p := range a.pages {
		label := strconv.Itoa(i+1) + " " + p.Label
		if i == a.current {
			tabs = append(tabs, a.theme.Header.Render(label))
		} else {
			tabs = append(tabs, a.theme.SecondaryText.Render(label))
		}
	}
	return strings.Join(tabs, "  ")
}

// renderPage lists the page's elements, marking tooltip beacons and
// ringing the active step's target.
func (a *App) renderPage() string {
	page := a.pages[a.current]
	showBeacons := a.settings().ShowBeacons && a.settings().TooltipsEnabled
	tips := a.registry.TooltipsForPage(page.Route)
	tipTargets := make(map[string]bool, len(tips))
	for _, t := range tips {
		tipTargets[t.Target] = true
	}

	var activeTarget string
	if step := a.engine.CurrentStep(); step != nil {
		activeTarget = step.Target
	}

	var b strings.Builder
	for _, target := range page.Targets {
		line := a.theme.Base.Render(target)
		if showBeacons && tipTargets[target] {
			line += " " + Beacon(a.theme)
		}
		if target == activeTarget {
			line = a.theme.TargetRing.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if a.showFooter {
		b.WriteString("\n")
		b.WriteString(a.theme.MutedText.Render("1-" + strconv.Itoa(len(a.pages)) + " pages │ ? hints │ t theme │ r replay tour │ q quit"))
	}
	return b.String()
}

func overlayCenter(w, h int, content string) string {
	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, content)
}
