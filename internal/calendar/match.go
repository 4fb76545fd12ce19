package calendar

import (
	"slices"
	"strings"
	"time"
)

// Match is a scheduled fixture between two teams.
type Match struct {
	ID        string    `json:"id" yaml:"id"`
	TeamA     string    `json:"team_a" yaml:"team_a"`
	TeamB     string    `json:"team_b" yaml:"team_b"`
	StartTime time.Time `json:"start_time" yaml:"start"`
}

// MatchFilter narrows a match listing. The zero value keeps everything.
type MatchFilter struct {
	// Query is matched case-insensitively against both team names.
	Query string
	// WithinDays keeps matches starting in [start of today, +WithinDays days) when positive.
	WithinDays int
}

// FilterMatches applies f relative to now and returns the survivors by start time.
func FilterMatches(matches []Match, f MatchFilter, now time.Time) []Match {
	query := strings.ToLower(strings.TrimSpace(f.Query))

	var from, to time.Time
	if f.WithinDays > 0 {
		from = DateOf(now).Time(now.Location())
		to = from.AddDate(0, 0, f.WithinDays)
	}

	out := make([]Match, 0, len(matches))
	for _, m := range matches {
		if query != "" &&
			!strings.Contains(strings.ToLower(m.TeamA), query) &&
			!strings.Contains(strings.ToLower(m.TeamB), query) {
			continue
		}
		if f.WithinDays > 0 && (m.StartTime.Before(from) || !m.StartTime.Before(to)) {
			continue
		}
		out = append(out, m)
	}
	slices.SortStableFunc(out, func(a, b Match) int {
		return a.StartTime.Compare(b.StartTime)
	})
	return out
}
