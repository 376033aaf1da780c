package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/guidework/pkg/tour"
)

// StepCardModel renders the active tour as an overlay: the welcome
// modal, the per-step card with progress bar, the waiting indicator,
// and the optional confirm-skip form. It drives a tour.Engine; the
// engine owns all state transitions, the model only translates keys.
type StepCardModel struct {
	engine *tour.Engine
	theme  Theme
	md     *MarkdownRenderer

	width     int
	height    int
	cardWidth int

	confirmSkip bool
	skipForm    *huh.Form
	// Heap-allocated so the form keeps writing the same bool across
	// model copies.
	skipConfirmed *bool

	spin       spinner.Model // Shown while waiting for a step target
	statusLine string        // Transient feedback, e.g. after a clipboard copy
}

// NewStepCard builds the overlay model. cardWidth <= 0 uses a default
// that fits an 80-column terminal.
func NewStepCard(engine *tour.Engine, theme Theme, md *MarkdownRenderer, cardWidth int) StepCardModel {
	if cardWidth <= 0 {
		cardWidth = 60
	}
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = theme.MutedText

	return StepCardModel{
		engine:    engine,
		theme:     theme,
		md:        md,
		width:     80,
		height:    24,
		cardWidth: cardWidth,
		spin:      sp,
	}
}

// Active reports whether a tour overlay should be drawn.
func (m StepCardModel) Active() bool {
	return m.engine.Phase() != tour.PhaseIdle
}

// SetConfirmSkip controls whether 's' asks before skipping.
func (m *StepCardModel) SetConfirmSkip(v bool) {
	m.confirmSkip = v
}

// SetSize updates terminal dimensions.
func (m *StepCardModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// WaitingTick returns the spinner tick command while the engine waits
// on a step target, nil otherwise. The app calls this on every engine
// change so the spinner animates only when needed.
func (m StepCardModel) WaitingTick() tea.Cmd {
	if m.engine.Phase() == tour.PhaseWaiting {
		return m.spin.Tick
	}
	return nil
}

// Update handles keyboard input while the overlay is active.
func (m StepCardModel) Update(msg tea.Msg) (StepCardModel, tea.Cmd) {
	if m.skipForm != nil {
		return m.updateSkipForm(msg)
	}

	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.engine.Phase() == tour.PhaseWaiting {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		m.statusLine = ""
		switch msg.String() {
		case "n", "right", "l", " ", "enter":
			m.engine.Next()

		case "p", "left", "h":
			m.engine.Previous()

		case "s":
			if m.confirmSkip {
				return m.openSkipForm()
			}
			m.engine.Skip()

		case "esc":
			m.engine.Stop()

		case "y":
			if t := m.engine.Active(); t != nil {
				if err := clipboard.WriteAll(t.ID); err != nil {
					m.statusLine = "clipboard unavailable"
				} else {
					m.statusLine = "copied " + t.ID
				}
			}
		}
	}
	return m, nil
}

func (m StepCardModel) openSkipForm() (StepCardModel, tea.Cmd) {
	confirmed := false
	m.skipConfirmed = &confirmed
	m.skipForm = newForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Skip this tour?").
				Description("You can restart it from settings later.").
				Affirmative("Skip").
				Negative("Keep going").
				Value(m.skipConfirmed),
		),
	)
	return m, m.skipForm.Init()
}

func (m StepCardModel) updateSkipForm(msg tea.Msg) (StepCardModel, tea.Cmd) {
	form, cmd := m.skipForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.skipForm = f
	}
	if m.skipForm.State == huh.StateCompleted {
		if m.skipConfirmed != nil && *m.skipConfirmed {
			m.engine.Skip()
		}
		m.skipForm = nil
		m.skipConfirmed = nil
	}
	return m, cmd
}

// newForm wraps huh form construction with the shared theme.
func newForm(groups ...*huh.Group) *huh.Form {
	return huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
}

// View renders the overlay for the engine's current phase. Empty when
// no tour is active.
func (m StepCardModel) View() string {
	t := m.engine.Active()
	if t == nil {
		return ""
	}

	if m.skipForm != nil {
		return m.wrapModal(m.skipForm.View())
	}

	switch m.engine.Phase() {
	case tour.PhaseWelcome:
		return m.renderWelcome(t)
	case tour.PhaseStepping:
		return m.renderStep(t, false)
	case tour.PhaseWaiting:
		return m.renderStep(t, true)
	}
	return ""
}

func (m StepCardModel) renderWelcome(t *tour.Tour) string {
	r := m.theme.Renderer
	var b strings.Builder

	b.WriteString(m.theme.PrimaryBold.Render(t.Name))
	b.WriteString("\n")
	b.WriteString(m.separator())
	b.WriteString("\n")
	b.WriteString(strings.TrimSpace(m.md.Render(t.Welcome)))
	b.WriteString("\n\n")
	b.WriteString(m.theme.MutedText.Render("Enter start tour │ s skip │ Esc not now"))

	modalStyle := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Primary).
		Padding(1, 2).
		Width(m.cardWidth)

	return modalStyle.Render(b.String())
}

func (m StepCardModel) renderStep(t *tour.Tour, waiting bool) string {
	r := m.theme.Renderer
	step := m.engine.CurrentStep()
	if step == nil {
		return ""
	}

	var b strings.Builder

	// Header: tour name left, [2/5] ███░░ progress right
	b.WriteString(m.theme.PrimaryBold.Render(t.Name))
	b.WriteString("  ")
	b.WriteString(m.renderProgress(m.engine.StepIndex()+1, len(t.Steps)))
	b.WriteString("\n")
	b.WriteString(m.separator())
	b.WriteString("\n")

	titleStyle := r.NewStyle().Bold(true).Foreground(m.theme.Primary)
	b.WriteString(titleStyle.Render(runewidth.Truncate(step.Title, m.cardWidth-8, "…")))
	b.WriteString("\n")
	if step.Target != "" {
		anchor := "anchored to " + step.Target
		if step.Placement != "" && step.Placement != tour.PlacementAuto {
			anchor += " (" + string(step.Placement) + ")"
		}
		b.WriteString(m.theme.MutedText.Render(anchor))
		b.WriteString("\n")
	}

	if waiting {
		b.WriteString(m.spin.View())
		b.WriteString(m.theme.MutedText.Render("Waiting for " + step.Target + "…"))
		b.WriteString("\n")
	} else {
		b.WriteString(strings.TrimSpace(m.md.Render(step.Body)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter(t))

	if m.statusLine != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.MutedText.Render(m.statusLine))
	}

	modalStyle := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Primary).
		Padding(1, 2).
		Width(m.cardWidth)

	return modalStyle.Render(b.String())
}

// renderProgress renders "[2/5] ██░░░", one bar cell per step.
func (m StepCardModel) renderProgress(current, total int) string {
	r := m.theme.Renderer

	counter := r.NewStyle().
		Foreground(m.theme.Subtext).
		Render(fmt.Sprintf("[%d/%d]", current, total))

	barWidth := total
	if barWidth > 10 {
		barWidth = 10
	}
	filled := 0
	if total > 0 {
		filled = (current * barWidth) / total
		if filled < 1 && current > 0 {
			filled = 1
		}
	}
	if filled > barWidth {
		filled = barWidth
	}
	bar := r.NewStyle().
		Foreground(m.theme.Progress).
		Render(strings.Repeat("█", filled)) +
		r.NewStyle().
			Foreground(m.theme.Muted).
			Render(strings.Repeat("░", barWidth-filled))

	return counter + " " + bar
}

func (m StepCardModel) renderFooter(t *tour.Tour) string {
	last := m.engine.StepIndex() == len(t.Steps)-1

	var hints []string
	if last {
		hints = append(hints, "Enter finish")
	} else {
		hints = append(hints, "n next")
	}
	if m.engine.StepIndex() > 0 {
		hints = append(hints, "p back")
	}
	hints = append(hints, "s skip", "y copy id", "Esc close")

	return m.theme.MutedText.Render(strings.Join(hints, " │ "))
}

func (m StepCardModel) separator() string {
	w := m.cardWidth - 6
	if w < 10 {
		w = 10
	}
	return m.theme.Renderer.NewStyle().
		Foreground(m.theme.Border).
		Render(strings.Repeat("─", w))
}

func (m StepCardModel) wrapModal(content string) string {
	return m.theme.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Primary).
		Padding(1, 2).
		Width(m.cardWidth).
		Render(content)
}

// CenterOverlay positions the overlay in the middle of the terminal.
func (m StepCardModel) CenterOverlay(termWidth, termHeight int) string {
	return lipgloss.Place(termWidth, termHeight, lipgloss.Center, lipgloss.Center, m.View())
}
