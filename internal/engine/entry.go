package engine

import "github.com/tartampluch/go-countdown/internal/calendar"

// UpcomingEntry is a flattened Occurrence ready for display or JSON encoding.
// It decouples renderers from the calendar types.
type UpcomingEntry struct {
	// UID is the stable feed identifier of the event.
	UID string `json:"uid"`

	ID          string `json:"id"`
	Name        string `json:"name"`
	Emoji       string `json:"emoji,omitempty"`
	Description string `json:"description,omitempty"`

	// Next is the resolved date of the occurrence.
	Next calendar.Date `json:"next"`

	// DaysUntil is 0 when the event is today.
	DaysUntil int `json:"days_until"`

	// Progress is how far into the reference year Next falls, in [0,1].
	Progress float64 `json:"progress"`
}

func newUpcomingEntry(occ calendar.Occurrence, ref calendar.Date) UpcomingEntry {
	return UpcomingEntry{
		UID:         eventUID(occ.Event),
		ID:          occ.Event.ID,
		Name:        occ.Event.Name,
		Emoji:       occ.Event.Emoji.OrEmpty(),
		Description: occ.Event.Description.OrEmpty(),
		Next:        occ.Date,
		DaysUntil:   occ.DaysUntil,
		Progress:    calendar.AnnualProgressFraction(occ.Date, ref.Year),
	}
}
