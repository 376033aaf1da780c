package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/guidework/pkg/tour"
)

// Beacon returns the pulse marker drawn next to elements that have a
// registered tooltip, when beacons are enabled in settings.
func Beacon(theme Theme) string {
	return theme.BeaconMark.Render("●")
}

// TooltipModel shows the contextual hints registered for the current
// page in a compact modal. Hints cycle with j/k so a page with many
// tooltips stays readable.
type TooltipModel struct {
	registry *tour.Registry
	theme    Theme
	md       *MarkdownRenderer

	visible  bool
	page     string
	tooltips []tour.Tooltip
	cursor   int
}

// NewTooltip builds the tooltip modal over a registry.
func NewTooltip(registry *tour.Registry, theme Theme, md *MarkdownRenderer) TooltipModel {
	return TooltipModel{registry: registry, theme: theme, md: md}
}

// Visible reports whether the modal is showing.
func (m TooltipModel) Visible() bool { return m.visible }

// Show opens the modal with the tooltips for page. A page without
// tooltips leaves the modal closed.
func (m *TooltipModel) Show(page string) {
	m.tooltips = m.registry.TooltipsForPage(page)
	if len(m.tooltips) == 0 {
		m.visible = false
		return
	}
	m.page = page
	m.cursor = 0
	m.visible = true
}

// Hide closes the modal.
func (m *TooltipModel) Hide() {
	m.visible = false
}

// RelatedTour returns the tour linked from the highlighted hint, or "".
func (m TooltipModel) RelatedTour() string {
	if !m.visible || len(m.tooltips) == 0 {
		return ""
	}
	return m.tooltips[m.cursor].TourID
}

// HandleKey processes a key while the modal is visible. Returns true
// when the key was consumed.
func (m *TooltipModel) HandleKey(key string) bool {
	if !m.visible {
		return false
	}
	switch key {
	case "j", "down", "tab":
		if m.cursor < len(m.tooltips)-1 {
			m.cursor++
		}
		return true
	case "k", "up", "shift+tab":
		if m.cursor > 0 {
			m.cursor--
		}
		return true
	case "esc", "?", "q":
		m.visible = false
		return true
	}
	return false
}

// View renders the tooltip modal. Compact, ~60 chars wide.
func (m TooltipModel) View(width int) string {
	if !m.visible || len(m.tooltips) == 0 {
		return ""
	}

	r := m.theme.Renderer

	modalWidth := 60
	if modalWidth > width-4 {
		modalWidth = width - 4
	}

	tip := m.tooltips[m.cursor]

	var b strings.Builder
	b.WriteString(m.theme.PrimaryBold.Render(tip.Target))
	if len(m.tooltips) > 1 {
		b.WriteString(m.theme.MutedText.Render(
			fmt.Sprintf("  (%d/%d)", m.cursor+1, len(m.tooltips))))
	}
	b.WriteString("\n")
	b.WriteString(r.NewStyle().Foreground(m.theme.Border).Render(strings.Repeat("─", modalWidth-4)))
	b.WriteString("\n\n")
	b.WriteString(strings.TrimSpace(m.md.Render(tip.Content)))
	b.WriteString("\n")
	if tip.LearnMoreURL != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.SecondaryText.Render("Learn more: " + tip.LearnMoreURL))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	footer := "Esc to close"
	if tip.TourID != "" {
		footer = "Enter start related tour │ " + footer
	}
	if len(m.tooltips) > 1 {
		footer = "j/k next hint │ " + footer
	}
	b.WriteString(r.NewStyle().Foreground(m.theme.Muted).Italic(true).Render(footer))

	modalStyle := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Secondary).
		Padding(1, 2).
		Width(modalWidth)

	return modalStyle.Render(b.String())
}
