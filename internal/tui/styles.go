// Package tui is the thin terminal front end that subscribes to an
// internal/ui.Runner's event channel and renders it as scrolling status
// lines: a bubbletea v2 Program driving lipgloss v2 styles, a bubbles v2
// spinner while a turn is in flight, and chroma v2 syntax highlighting for
// file-diff events. It has no editor pane, no modal stack, no
// key-binding table — just enough of a real front end to prove the
// event contract is consumable. Grounded on internal/tui/styles.go,
// trimmed to the palette this thin renderer actually uses.
package tui

import "charm.land/lipgloss/v2"

var (
	ColorHighlight = lipgloss.Color("#00E5CC")
	ColorFg        = lipgloss.Color("#c8c8c8")
	ColorMuted     = lipgloss.Color("#6e6e6e")
	ColorDim       = lipgloss.Color("#3f3f3f")
	ColorError     = lipgloss.Color("#932e2e")
)

// Styles holds the pre-built lipgloss styles this renderer uses, built
// once at startup.
type Styles struct {
	Text      lipgloss.Style
	Muted     lipgloss.Style
	Dim       lipgloss.Style
	Error     lipgloss.Style
	ToolArrow lipgloss.Style
	Spinner   lipgloss.Style
}

// DefaultStyles builds the renderer's full style set.
func DefaultStyles() Styles {
	return Styles{
		Text:      lipgloss.NewStyle().Foreground(ColorFg),
		Muted:     lipgloss.NewStyle().Foreground(ColorMuted),
		Dim:       lipgloss.NewStyle().Foreground(ColorDim),
		Error:     lipgloss.NewStyle().Foreground(ColorError),
		ToolArrow: lipgloss.NewStyle().Foreground(ColorHighlight),
		Spinner:   lipgloss.NewStyle().Foreground(ColorHighlight),
	}
}
