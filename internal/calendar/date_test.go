package calendar

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOf_IgnoresTimeOfDay(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	late := time.Date(2025, 6, 15, 23, 59, 59, 0, loc)
	assert.Equal(t, d(2025, 6, 15), DateOf(late), "the local calendar day wins over UTC")
	assert.Equal(t, d(2025, 6, 15), DateOf(late.Add(-23*time.Hour)))
}

// TestDaysUntil_DSTInsensitive runs across a DST switch where elapsed hours
// are not a multiple of 24.
func TestDaysUntil_DSTInsensitive(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skip("tzdata not available")
	}
	before := DateOf(time.Date(2025, 3, 29, 12, 0, 0, 0, paris))
	after := DateOf(time.Date(2025, 3, 31, 0, 30, 0, 0, paris))
	assert.Equal(t, 2, before.DaysUntil(after))
	assert.Equal(t, -2, after.DaysUntil(before))
}

func TestDate_Arithmetic(t *testing.T) {
	assert.Equal(t, d(2025, 1, 1), d(2024, 12, 31).AddDays(1))
	assert.Equal(t, d(2024, 2, 29), d(2024, 3, 1).AddDays(-1))
	assert.Equal(t, d(2025, 1, 1), d(2024, 12, 15).AddMonths(1))
	assert.Equal(t, d(2023, 12, 1), d(2024, 1, 31).AddMonths(-1))
	assert.Equal(t, d(2024, 5, 1), NewDate(2024, time.April, 31))

	assert.Equal(t, 29, DaysInMonth(2024, time.February))
	assert.Equal(t, 28, DaysInMonth(1900, time.February))
	assert.Equal(t, 29, DaysInMonth(2000, time.February))
	assert.Equal(t, 365, DaysInYear(2025))

	assert.True(t, d(2024, 1, 1).Before(d(2024, 1, 2)))
	assert.True(t, d(2025, 1, 1).After(d(2024, 12, 31)))
	assert.Zero(t, d(2024, 6, 6).Compare(d(2024, 6, 6)))
	assert.True(t, Date{}.IsZero())
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, d(2024, 2, 29), got)
	assert.Equal(t, "2024-02-29", got.String())

	_, err = ParseDate("2023-02-29")
	assert.ErrorIs(t, err, ErrInvalidEvent)

	_, err = ParseDate("tomorrow")
	assert.Error(t, err)
}

func TestDate_JSON(t *testing.T) {
	raw, err := json.Marshal(Cell{Date: d(2024, 3, 9), InTargetMonth: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-03-09","in_target_month":true}`, string(raw))

	var back Cell
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, d(2024, 3, 9), back.Date)
}
