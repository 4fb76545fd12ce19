package i18n_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-countdown/internal/calendar"
	"github.com/tartampluch/go-countdown/internal/config"
	"github.com/tartampluch/go-countdown/internal/i18n"
)

// TestI18nIntegrity ensures that every translation key defined in config.go
// exists in every locale file.
func TestI18nIntegrity(t *testing.T) {
	keys := []string{
		config.TKeyToday,
		config.TKeyInDays,
		config.TKeyUpcomingTitle,
		config.TKeyMatchesTitle,
		config.TKeyMatchVersus,
		config.TKeyNoMatches,
		config.TKeyNoEvents,
		config.TKeyEvtSummary,
		config.TKeyCalName,
		config.TKeyFormatDate,
	}
	for d := 0; d < 7; d++ {
		keys = append(keys, config.TKeyWeekdayPrefix+strconv.Itoa(d))
	}
	for m := 1; m <= 12; m++ {
		keys = append(keys, config.TKeyMonthPrefix+strconv.Itoa(m))
	}

	files, err := filepath.Glob(filepath.Join("locales", "active.*.json"))
	require.NoError(t, err)
	require.Len(t, files, len(config.SupportedLanguages), "one locale file per supported language")

	for _, f := range files {
		t.Run(filepath.Base(f), func(t *testing.T) {
			content, err := os.ReadFile(f)
			require.NoError(t, err)

			var jsonMap map[string]any
			require.NoError(t, json.Unmarshal(content, &jsonMap), "JSON must be valid")

			for _, k := range keys {
				_, ok := jsonMap[k]
				assert.Truef(t, ok, "key %q is missing in %s", k, f)
			}
			for k := range jsonMap {
				if !strings.HasPrefix(k, "_") && !slices.Contains(keys, k) {
					t.Logf("orphan key %q in %s", k, f)
				}
			}
		})
	}
}

func TestNew_LanguageDetection(t *testing.T) {
	tr := i18n.New(config.DefaultLanguage)
	assert.ElementsMatch(t, config.SupportedLanguages, tr.Languages)

	tests := []struct {
		in   string
		want string
	}{
		{"en", "en"},
		{"fr", "fr"},
		{"fr-CA", "fr"},
		{"", "en"},
		{"de", "en"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			tr.SetLanguage(tt.in)
			assert.Equal(t, tt.want, tr.Language())
		})
	}
}

func TestCountdown(t *testing.T) {
	tests := []struct {
		lang string
		days int
		want string
	}{
		{"en", 0, "Today"},
		{"en", -3, "Today"},
		{"en", 1, "In 1 day"},
		{"en", 359, "In 359 days"},
		{"fr", 0, "Aujourd'hui"},
		{"fr", 1, "Dans 1 jour"},
		{"fr", 12, "Dans 12 jours"},
	}
	for _, tt := range tests {
		t.Run(tt.lang+"/"+strconv.Itoa(tt.days), func(t *testing.T) {
			assert.Equal(t, tt.want, i18n.New(tt.lang).Countdown(tt.days))
		})
	}
}

func TestCalendarLabels(t *testing.T) {
	en := i18n.New("en")
	fr := i18n.New("fr")

	assert.Equal(t, "Sun", en.WeekdayShort(time.Sunday))
	assert.Equal(t, "Sat", en.WeekdayShort(time.Saturday))
	assert.Equal(t, "Lun", fr.WeekdayShort(time.Monday))

	assert.Equal(t, "February", en.MonthName(time.February))
	assert.Equal(t, "août", fr.MonthName(time.August))

	d := calendar.NewDate(2024, time.December, 25)
	assert.Equal(t, "Wed, Dec 25 2024", en.FormatDate(d))
	assert.Equal(t, "25/12/2024", fr.FormatDate(d))
}

func TestSummaryAndVersus(t *testing.T) {
	en := i18n.New("en")

	plain := calendar.MustAnnualEvent("x", "Christmas", time.December, 25)
	assert.Equal(t, "Christmas", en.Summary(plain))
	assert.Equal(t, "🎄 Christmas", en.Summary(plain.WithEmoji("🎄")))

	assert.Equal(t, "India vs Australia", en.Versus("India", "Australia"))
	assert.Equal(t, "India contre Australia", i18n.New("fr").Versus("India", "Australia"))
}

func TestMsg_MissingKeyFallsBack(t *testing.T) {
	assert.Equal(t, "no_such_key", i18n.New("en").Msg("no_such_key"))
}
