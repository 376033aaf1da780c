package ui

import (
	"github.com/charmbracelet/glamour"

	"github.com/vanderheijden86/guidework/pkg/theme"
)

// MarkdownRenderer wraps a glamour renderer for tour step bodies and
// tooltip content. Construction can fail (style loading); callers fall
// back to raw text when the renderer is nil.
type MarkdownRenderer struct {
	renderer *glamour.TermRenderer
}

// NewMarkdownRenderer builds a renderer with the glamour style matching
// the resolved theme, word-wrapped to width.
func NewMarkdownRenderer(width int, resolved theme.Resolved) *MarkdownRenderer {
	if width < 20 {
		width = 20
	}
	style := "light"
	if resolved == theme.Dark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return &MarkdownRenderer{renderer: r}
}

// Render converts markdown to styled terminal output. On a nil receiver
// or render failure the raw markdown comes back unchanged.
func (m *MarkdownRenderer) Render(markdown string) string {
	if m == nil || m.renderer == nil {
		return markdown
	}
	out, err := m.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return out
}
