package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-countdown/internal/calendar"
	"github.com/tartampluch/go-countdown/internal/config"
	"gopkg.in/yaml.v3"
)

// Catalog is the set of yearly events and fixtures a sync works on.
type Catalog struct {
	Events  []calendar.AnnualEvent
	Matches []calendar.Match
}

// catalogFile is the on-disk YAML layout.
type catalogFile struct {
	Events  []eventRecord    `yaml:"events"`
	Matches []calendar.Match `yaml:"matches"`
}

type eventRecord struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Month       int    `yaml:"month"`
	Day         int    `yaml:"day"`
	Emoji       string `yaml:"emoji"`
	Description string `yaml:"description"`
}

// BuiltinCatalog returns the sample festivals and fixtures shipped with the app.
// Festival dates that follow lunar or regional calendars are fixed samples.
// The two fixtures are placed on the day of now so the listing is never empty.
func BuiltinCatalog(now time.Time) *Catalog {
	today := calendar.DateOf(now).Time(now.Location())

	festival := func(id, name string, m time.Month, d int, emoji, desc string) calendar.AnnualEvent {
		return calendar.MustAnnualEvent(id, name, m, d).WithEmoji(emoji).WithDescription(desc)
	}

	return &Catalog{
		Events: []calendar.AnnualEvent{
			festival("newyear", "New Year's Day", time.January, 1, "🎉", "Start the new year with hope and goals."),
			festival("valentine", "Valentine's Day", time.February, 14, "💖", "Celebrate love and friendship."),
			festival("holi", "Holi", time.March, 8, "🌈", "Festival of colors (date varies, sample fixed)."),
			festival("easter", "Easter", time.April, 21, "✝️", "Spring festival and celebration."),
			festival("diwali", "Diwali", time.November, 1, "🪔", "Festival of lights (date varies, sample fixed)."),
			festival("halloween", "Halloween", time.October, 31, "🎃", "Spooky costumes and treats."),
			festival("thanksgiving", "Thanksgiving", time.November, 28, "🦃", "Give thanks and enjoy a feast."),
			festival("christmas", "Christmas", time.December, 25, "🎄", "Holiday celebration and giving."),
		},
		Matches: []calendar.Match{
			{ID: "1", TeamA: "India", TeamB: "Australia", StartTime: today.Add(14 * time.Hour)},
			{ID: "2", TeamA: "England", TeamB: "Pakistan", StartTime: today.Add(19*time.Hour + 30*time.Minute)},
		},
	}
}

// DecodeYAML reads a YAML catalog. Invalid events and matches are logged and skipped.
func DecodeYAML(r io.Reader) (*Catalog, error) {
	var f catalogFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", config.ErrCatalogDecode, err)
	}

	cat := &Catalog{}
	for i, rec := range f.Events {
		id := rec.ID
		if id == "" {
			id = fmt.Sprintf(config.FormatFallbackID, rec.Name, i)
		}
		e, err := calendar.NewAnnualEvent(id, rec.Name, time.Month(rec.Month), rec.Day)
		if err != nil {
			slog.Warn(config.MsgSkippedEvent,
				config.LogKeyComponent, config.CompCatalog,
				config.LogKeyName, rec.Name,
				config.LogKeyError, err)
			continue
		}
		cat.Events = append(cat.Events, e.WithEmoji(rec.Emoji).WithDescription(rec.Description))
	}

	for _, m := range f.Matches {
		if m.TeamA == "" || m.TeamB == "" || m.StartTime.IsZero() {
			slog.Warn(config.MsgSkippedMatch,
				config.LogKeyComponent, config.CompCatalog,
				config.LogKeyValue, m.ID)
			continue
		}
		cat.Matches = append(cat.Matches, m)
	}
	return cat, nil
}

// DecodeVCard turns the BDAY and ANNIVERSARY fields of an address book into events.
// Malformed cards and unparsable dates are skipped.
func DecodeVCard(r io.Reader) (*Catalog, error) {
	decoder := vcard.NewDecoder(r)
	cat := &Catalog{}

	for n := 0; ; n++ {
		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// A hard decode error leaves the stream position unknown; stop here.
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompCatalog,
				config.LogKeyError, err)
			break
		}

		// Name Strategy: FN (Formatted) > N (Structured) > Fallback
		name := config.FallbackName
		if fn := card.Get(config.VCardFN); fn != nil && fn.Value != "" {
			name = fn.Value
		} else if n := card.Get(config.VCardN); n != nil && n.Value != "" {
			name = n.Value
		}

		id := fmt.Sprintf(config.FormatFallbackID, name, n)
		if uid := card.Get(config.VCardUID); uid != nil && uid.Value != "" {
			id = uid.Value
		}

		if e, ok := cardEvent(card, config.VCardBDAY, id, name); ok {
			cat.Events = append(cat.Events, e)
		}
		if e, ok := cardEvent(card, config.VCardAnniversary, id+"-anniversary", name+config.AnniversarySuffix); ok {
			cat.Events = append(cat.Events, e)
		}
	}
	return cat, nil
}

func cardEvent(card vcard.Card, field, id, name string) (calendar.AnnualEvent, bool) {
	f := card.Get(field)
	if f == nil || f.Value == "" {
		return calendar.AnnualEvent{}, false
	}
	date, err := parseDate(f.Value)
	if err != nil {
		slog.Debug(config.MsgSkippedDate,
			config.LogKeyComponent, config.CompCatalog,
			config.LogKeyValue, f.Value)
		return calendar.AnnualEvent{}, false
	}
	e, err := calendar.NewAnnualEvent(id, name, date.Month(), date.Day())
	if err != nil {
		return calendar.AnnualEvent{}, false
	}
	return e, true
}

// parseDate handles the date layouts found in vCard files, with or without a year.
func parseDate(value string) (time.Time, error) {
	formatsWithYear := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}
	for _, f := range formatsWithYear {
		if t, err := time.Parse(f, value); err == nil {
			return t, nil
		}
	}

	// Truncated dates (Year unknown). Anchoring on a leap year keeps --02-29 valid.
	for _, f := range []string{config.DateFormatNoYearD, config.DateFormatNoYearB} {
		if t, err := time.Parse(f, value); err == nil {
			return time.Date(config.DefaultLeapYear, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}

	return time.Time{}, errors.New(config.ErrDateParse)
}

// DecodeCatalog dispatches on format (config.FormatYAML or config.FormatVCard).
func DecodeCatalog(r io.Reader, format string) (*Catalog, error) {
	switch format {
	case config.FormatYAML:
		return DecodeYAML(r)
	case config.FormatVCard:
		return DecodeVCard(r)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrFormatUnsupport, format)
	}
}

// detectFormat picks the catalog format from an explicit override or from the
// extension of location, which may be a file path or a URL.
func detectFormat(location, override string) (string, error) {
	if override != "" && override != config.FormatAuto {
		return override, nil
	}

	p := location
	if u, err := url.Parse(location); err == nil && u.Scheme != "" && u.Path != "" {
		p = u.Path
	}

	switch strings.ToLower(filepath.Ext(p)) {
	case config.ExtYAML, config.ExtYML:
		return config.FormatYAML, nil
	case config.ExtVCF, config.ExtVCard:
		return config.FormatVCard, nil
	default:
		return "", fmt.Errorf("%s: %q", config.ErrFormatUnsupport, location)
	}
}
