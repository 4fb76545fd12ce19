package calendar

import (
	"fmt"
	"time"

	"github.com/samber/mo"
)

// LeapDayPolicy decides where a February 29th event lands in a non-leap year.
type LeapDayPolicy int

const (
	// LeapDayRollForward resolves Feb 29 to Mar 1 in non-leap years.
	LeapDayRollForward LeapDayPolicy = iota
	// LeapDayClamp resolves Feb 29 to Feb 28 in non-leap years.
	LeapDayClamp
)

const (
	leapDayRollForwardName = "roll_forward"
	leapDayClampName       = "clamp"
)

func (p LeapDayPolicy) String() string {
	if p == LeapDayClamp {
		return leapDayClampName
	}
	return leapDayRollForwardName
}

// ParseLeapDayPolicy maps a configuration value to a policy.
// The empty string selects the default (roll forward).
func ParseLeapDayPolicy(value string) (LeapDayPolicy, error) {
	switch value {
	case "", leapDayRollForwardName:
		return LeapDayRollForward, nil
	case leapDayClampName:
		return LeapDayClamp, nil
	default:
		return LeapDayRollForward, &ValidationError{
			Field:  "leap_day_policy",
			Value:  value,
			Reason: fmt.Sprintf("must be %q or %q", leapDayRollForwardName, leapDayClampName),
		}
	}
}

// AnnualEvent is a date that repeats every year on the same month and day.
// Build it with NewAnnualEvent so the month/day pair is known to be valid.
type AnnualEvent struct {
	ID    string
	Name  string
	Month time.Month
	Day   int

	// Display metadata, ignored by every computation in this package.
	Emoji       mo.Option[string]
	Description mo.Option[string]
}

// NewAnnualEvent validates month and day and returns the event.
// February accepts 29 since the event still exists in leap years.
func NewAnnualEvent(id, name string, month time.Month, day int) (AnnualEvent, error) {
	if month < time.January || month > time.December {
		return AnnualEvent{}, &ValidationError{Field: "month", Value: int(month), Reason: "must be between 1 and 12"}
	}
	// 2000 is a leap year, so this yields the longest possible length of month.
	if maxDay := DaysInMonth(2000, month); day < 1 || day > maxDay {
		return AnnualEvent{}, &ValidationError{
			Field:  "day",
			Value:  day,
			Reason: fmt.Sprintf("must be between 1 and %d for %s", maxDay, month),
		}
	}
	return AnnualEvent{ID: id, Name: name, Month: month, Day: day}, nil
}

// MustAnnualEvent is NewAnnualEvent for static tables; it panics on invalid input.
func MustAnnualEvent(id, name string, month time.Month, day int) AnnualEvent {
	e, err := NewAnnualEvent(id, name, month, day)
	if err != nil {
		panic(err)
	}
	return e
}

// WithEmoji returns a copy of e carrying an emoji.
func (e AnnualEvent) WithEmoji(emoji string) AnnualEvent {
	e.Emoji = nonEmpty(emoji)
	return e
}

// WithDescription returns a copy of e carrying a description.
func (e AnnualEvent) WithDescription(desc string) AnnualEvent {
	e.Description = nonEmpty(desc)
	return e
}

// IsLeapDay reports whether e falls on February 29th.
func (e AnnualEvent) IsLeapDay() bool {
	return e.Month == time.February && e.Day == 29
}

// In resolves e to a concrete date in year under policy.
func (e AnnualEvent) In(year int, policy LeapDayPolicy) Date {
	if e.IsLeapDay() && !IsLeapYear(year) {
		if policy == LeapDayClamp {
			return Date{Year: year, Month: time.February, Day: 28}
		}
		return Date{Year: year, Month: time.March, Day: 1}
	}
	return Date{Year: year, Month: e.Month, Day: e.Day}
}

func nonEmpty(s string) mo.Option[string] {
	if s == "" {
		return mo.None[string]()
	}
	return mo.Some(s)
}
