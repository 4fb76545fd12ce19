// Package render draws the month grid, the upcoming list and the match
// listing for the terminal.
package render

import "github.com/charmbracelet/lipgloss"

// Palette, indigo accents on neutral greys.
var (
	ColorAccent  = lipgloss.AdaptiveColor{Light: "#4F46E5", Dark: "#818CF8"}
	ColorTrack   = lipgloss.AdaptiveColor{Light: "#E0E7FF", Dark: "#312E81"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6B7280"}
	ColorText    = lipgloss.AdaptiveColor{Light: "#111827", Dark: "#F3F4F6"}
	ColorToday   = lipgloss.Color("#FFFFFF")
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}
)

// Styles holds every style used by the renderer.
type Styles struct {
	Title    lipgloss.Style
	Header   lipgloss.Style
	Day      lipgloss.Style
	OutDay   lipgloss.Style
	Today    lipgloss.Style
	Name     lipgloss.Style
	Muted    lipgloss.Style
	Label    lipgloss.Style
	Bar      lipgloss.Style
	BarTrack lipgloss.Style
	Card     lipgloss.Style
}

// DefaultStyles returns the standard theme.
func DefaultStyles() Styles {
	cell := lipgloss.NewStyle().Width(CellWidth).Align(lipgloss.Right)

	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true).
			MarginBottom(1),
		Header: cell.Foreground(ColorMuted).Bold(true),
		Day:    cell.Foreground(ColorText),
		OutDay: cell.Foreground(ColorMuted).Faint(true),
		Today:  cell.Foreground(ColorToday).Background(ColorAccent).Bold(true),
		Name: lipgloss.NewStyle().
			Foreground(ColorText).
			Bold(true),
		Muted: lipgloss.NewStyle().Foreground(ColorMuted),
		Label: lipgloss.NewStyle().Foreground(ColorSuccess),
		Bar:   lipgloss.NewStyle().Foreground(ColorAccent),
		BarTrack: lipgloss.NewStyle().
			Foreground(ColorTrack),
		Card: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted),
	}
}
