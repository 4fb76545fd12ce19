package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/tartampluch/go-countdown/internal/calendar"
	"github.com/tartampluch/go-countdown/internal/config"
	"github.com/tartampluch/go-countdown/internal/engine"
	"github.com/tartampluch/go-countdown/internal/i18n"
)

const (
	// CellWidth is the column width of one grid day.
	CellWidth = 4
	// BarWidth is the number of glyphs in a progress bar.
	BarWidth = 30
)

// Renderer turns calendar data into styled terminal text.
type Renderer struct {
	T      *i18n.Translator
	Styles Styles
}

// New returns a Renderer with the default styles.
func New(t *i18n.Translator) *Renderer {
	return &Renderer{T: t, Styles: DefaultStyles()}
}

// MonthGrid draws a Sunday-first 6x7 grid. Today is highlighted and days of
// adjacent months are dimmed.
func (r *Renderer) MonthGrid(g calendar.MonthGrid, today calendar.Date) string {
	var sb strings.Builder

	title := fmt.Sprintf("%s %d", r.T.MonthName(g.Month), g.Year)
	sb.WriteString(r.Styles.Title.Render(title))
	sb.WriteString("\n")

	headers := make([]string, 0, calendar.DaysPerWeek)
	for d := time.Sunday; d <= time.Saturday; d++ {
		headers = append(headers, r.Styles.Header.Render(r.T.WeekdayShort(d)))
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, headers...))

	for _, week := range g.Weeks() {
		sb.WriteString("\n")
		days := make([]string, 0, calendar.DaysPerWeek)
		for _, c := range week {
			style := r.Styles.Day
			switch {
			case c.Date == today:
				style = r.Styles.Today
			case !c.InTargetMonth:
				style = r.Styles.OutDay
			}
			days = append(days, style.Render(strconv.Itoa(c.Date.Day)))
		}
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, days...))
	}
	sb.WriteString("\n")
	return sb.String()
}

// Upcoming draws one card per entry with its countdown label and year-progress bar.
func (r *Renderer) Upcoming(entries []engine.UpcomingEntry) string {
	var sb strings.Builder
	sb.WriteString(r.Styles.Title.Render(r.T.Msg(config.TKeyUpcomingTitle)))
	sb.WriteString("\n")

	if len(entries) == 0 {
		sb.WriteString(r.Styles.Muted.Render(r.T.Msg(config.TKeyNoEvents)))
		sb.WriteString("\n")
		return sb.String()
	}

	for _, e := range entries {
		name := r.Styles.Name.Render(strings.TrimSpace(e.Emoji + " " + e.Name))
		date := r.Styles.Muted.Render(r.T.FormatDate(e.Next))
		label := r.Styles.Label.Render(r.T.Countdown(e.DaysUntil))

		lines := []string{
			name + "  " + label,
			date,
		}
		if e.Description != "" {
			lines = append(lines, r.Styles.Muted.Render(e.Description))
		}
		lines = append(lines, r.progressBar(e.Progress))

		sb.WriteString(r.Styles.Card.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
		sb.WriteString("\n")
	}
	return sb.String()
}

// Matches draws the fixture list with start times in loc.
func (r *Renderer) Matches(matches []calendar.Match, loc *time.Location) string {
	var sb strings.Builder
	sb.WriteString(r.Styles.Title.Render(r.T.Msg(config.TKeyMatchesTitle)))
	sb.WriteString("\n")

	if len(matches) == 0 {
		sb.WriteString(r.Styles.Muted.Render(r.T.Msg(config.TKeyNoMatches)))
		sb.WriteString("\n")
		return sb.String()
	}

	for _, m := range matches {
		start := r.Styles.Muted.Render(m.StartTime.In(loc).Format(config.DateFormatMatch))
		sb.WriteString(r.Styles.Name.Render(r.T.Versus(m.TeamA, m.TeamB)))
		sb.WriteString("  ")
		sb.WriteString(start)
		sb.WriteString("\n")
	}
	return sb.String()
}

func (r *Renderer) progressBar(fraction float64) string {
	filled := ProgressCells(fraction, BarWidth)
	return r.Styles.Bar.Render(strings.Repeat("█", filled)) +
		r.Styles.BarTrack.Render(strings.Repeat("░", BarWidth-filled))
}

// ProgressCells converts a fraction in [0,1] into a number of filled cells out of width.
func ProgressCells(fraction float64, width int) int {
	n := int(fraction*float64(width) + 0.5)
	return min(width, max(0, n))
}
