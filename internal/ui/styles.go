// Package ui is the terminal call browser: a search box over one call with
// the transcript and chat panes following a replay clock.
package ui

import (
	"github.com/charmbracelet/lipgloss"

	"callsearch/internal/model"
)

// Palette
var (
	ColorAccent = lipgloss.Color("#8BC34A")
	ColorMuted  = lipgloss.Color("#6b7280")
	ColorBorder = lipgloss.Color("#2a3850")
	ColorError  = lipgloss.Color("#e53935")
	ColorSelect = lipgloss.Color("#1e2a3d")
)

// typeColors tags each result type with its badge color.
var typeColors = map[model.ResultType]lipgloss.Color{
	model.TypeTranscript: lipgloss.Color("#2196F3"),
	model.TypeChat:       lipgloss.Color("#4db6ac"),
	model.TypeAgenda:     lipgloss.Color("#ffd54f"),
	model.TypeAction:     lipgloss.Color("#ff8a65"),
}

// Styles holds every style the browser renders with.
type Styles struct {
	Title    lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Selected lipgloss.Style
	Current  lipgloss.Style
	Pane     lipgloss.Style
	Help     lipgloss.Style
}

// DefaultStyles returns the dark theme.
func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(ColorAccent),
		Muted:    lipgloss.NewStyle().Foreground(ColorMuted),
		Error:    lipgloss.NewStyle().Foreground(ColorError),
		Selected: lipgloss.NewStyle().Bold(true).Background(ColorSelect),
		Current:  lipgloss.NewStyle().Bold(true).Foreground(ColorAccent),
		Pane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1),
		Help: lipgloss.NewStyle().Foreground(ColorMuted).Italic(true),
	}
}

// Badge renders the fixed-width type tag of a result.
func (s Styles) Badge(t model.ResultType) string {
	c, ok := typeColors[t]
	if !ok {
		c = ColorMuted
	}
	return lipgloss.NewStyle().Foreground(c).Width(11).Render(string(t))
}
