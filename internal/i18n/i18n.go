// Package i18n loads the embedded locale files and exposes the labels used by
// the terminal renderer, the HTTP API and the iCalendar feed.
package i18n

import (
	"embed"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-countdown/internal/calendar"
	"github.com/tartampluch/go-countdown/internal/config"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Translator resolves message keys for one language.
type Translator struct {
	bundle    *goi18n.Bundle
	localizer *goi18n.Localizer
	tag       language.Tag

	// Languages lists the locale codes found in the embedded files.
	Languages []string
}

// New loads every embedded locale and binds the translator to lang.
// Unknown languages fall back to the closest match, then to English.
func New(lang string) *Translator {
	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	t := &Translator{bundle: bundle}

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		t.Languages = append(t.Languages, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
		)
	}

	t.SetLanguage(lang)
	return t
}

// SetLanguage switches the active language.
func (t *Translator) SetLanguage(lang string) {
	if lang == "" {
		lang = config.DefaultLanguage
	}
	// English leads so that it wins when nothing matches.
	matcher := language.NewMatcher(append([]language.Tag{language.English}, t.bundle.LanguageTags()...))
	tag, _, _ := matcher.Match(language.Make(lang))
	base, _ := tag.Base()
	t.tag = language.Make(base.String())
	t.localizer = goi18n.NewLocalizer(t.bundle, t.tag.String())
}

// Language returns the active language code.
func (t *Translator) Language() string {
	return t.tag.String()
}

// Msg translates key, returning the key itself when it is missing.
func (t *Translator) Msg(key string) string {
	return t.localize(&goi18n.LocalizeConfig{MessageID: key})
}

// Countdown returns "Today" for zero (or past) days, otherwise a pluralized label.
func (t *Translator) Countdown(days int) string {
	if days <= 0 {
		return t.Msg(config.TKeyToday)
	}
	return t.localize(&goi18n.LocalizeConfig{
		MessageID:    config.TKeyInDays,
		TemplateData: map[string]any{"Count": days},
		PluralCount:  days,
	})
}

// WeekdayShort returns the abbreviated weekday header.
func (t *Translator) WeekdayShort(d time.Weekday) string {
	return t.Msg(config.TKeyWeekdayPrefix + strconv.Itoa(int(d)))
}

// MonthName returns the full month name.
func (t *Translator) MonthName(m time.Month) string {
	return t.Msg(config.TKeyMonthPrefix + strconv.Itoa(int(m)))
}

// FormatDate renders d with the locale's long date layout.
func (t *Translator) FormatDate(d calendar.Date) string {
	return d.Time(time.UTC).Format(t.Msg(config.TKeyFormatDate))
}

// Summary is the feed SUMMARY of an event, prefixed with its emoji if any.
func (t *Translator) Summary(e calendar.AnnualEvent) string {
	s := t.localize(&goi18n.LocalizeConfig{
		MessageID:    config.TKeyEvtSummary,
		TemplateData: map[string]any{"Name": e.Name},
	})
	if emoji, ok := e.Emoji.Get(); ok {
		return emoji + " " + s
	}
	return s
}

// Versus formats a match pairing.
func (t *Translator) Versus(teamA, teamB string) string {
	return t.localize(&goi18n.LocalizeConfig{
		MessageID:    config.TKeyMatchVersus,
		TemplateData: map[string]any{"TeamA": teamA, "TeamB": teamB},
	})
}

func (t *Translator) localize(lc *goi18n.LocalizeConfig) string {
	msg, err := t.localizer.Localize(lc)
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, lc.MessageID,
			config.LogKeyError, err,
		)
		return lc.MessageID
	}
	return msg
}
