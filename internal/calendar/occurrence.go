package calendar

import (
	"slices"
)

// DefaultUpcomingLimit is how many occurrences the countdown view shows.
const DefaultUpcomingLimit = 6

// Occurrence is an AnnualEvent pinned to a concrete date relative to a reference day.
type Occurrence struct {
	Event     AnnualEvent
	Date      Date
	DaysUntil int
}

// IsToday reports whether the occurrence falls on the reference day.
func (o Occurrence) IsToday() bool {
	return o.DaysUntil == 0
}

// Recurrence resolves annual events. The zero value rolls Feb 29 forward to Mar 1.
type Recurrence struct {
	LeapDay LeapDayPolicy
}

// Next returns the first occurrence of event on or after ref.
func (r Recurrence) Next(event AnnualEvent, ref Date) Occurrence {
	candidate := event.In(ref.Year, r.LeapDay)
	if candidate.Before(ref) {
		candidate = event.In(ref.Year+1, r.LeapDay)
	}
	return Occurrence{
		Event:     event,
		Date:      candidate,
		DaysUntil: ref.DaysUntil(candidate),
	}
}

// Upcoming resolves every event against ref and returns them soonest first.
// Events landing on the same day keep their input order. A positive limit
// keeps only that many of the nearest occurrences.
func (r Recurrence) Upcoming(events []AnnualEvent, ref Date, limit int) []Occurrence {
	out := make([]Occurrence, 0, len(events))
	for _, e := range events {
		out = append(out, r.Next(e, ref))
	}
	slices.SortStableFunc(out, func(a, b Occurrence) int {
		return a.Date.Compare(b.Date)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// NextOccurrence resolves event against ref with the default leap-day policy.
func NextOccurrence(event AnnualEvent, ref Date) Occurrence {
	return Recurrence{}.Next(event, ref)
}

// Upcoming is Recurrence.Upcoming with the default leap-day policy.
func Upcoming(events []AnnualEvent, ref Date, limit int) []Occurrence {
	return Recurrence{}.Upcoming(events, ref, limit)
}

// AnnualProgressFraction reports where date sits between Jan 1 of year (0)
// and Jan 1 of year+1 (1), clamped to [0,1]. Whole calendar days are used.
func AnnualProgressFraction(date Date, year int) float64 {
	start := Date{Year: year, Month: 1, Day: 1}
	f := float64(start.DaysUntil(date)) / float64(DaysInYear(year))
	return min(1, max(0, f))
}
