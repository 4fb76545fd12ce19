package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
	"github.com/tartampluch/go-countdown/internal/calendar"
	"github.com/tartampluch/go-countdown/internal/config"
)

// uidNamespace seeds the UUIDv5 event identifiers so they stay stable across runs.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte(config.UIDNamespace))

// SyncConfig contains all parameters required to perform a synchronization.
type SyncConfig struct {
	Mode            string // config.SourceModeBuiltin, SourceModeLocal or SourceModeWeb
	LocalPath       string // Path to a .yaml/.yml/.vcf/.vcard file
	WebURL          string // Remote catalog URL
	WebUser         string // HTTP Basic Auth Username; the password comes from Credentials
	Format          string // config.FormatAuto, FormatYAML or FormatVCard
	ReminderTrigger string // ISO8601 duration string (e.g., "-P1D")
	Limit           int    // Maximum number of entries returned (0 = all)
}

// SyncResult is the outcome of one RunSync.
type SyncResult struct {
	ICS        []byte
	Entries    []UpcomingEntry
	Matches    []calendar.Match
	TodayCount int
}

// Generator turns an event catalog into upcoming entries and an iCalendar feed.
type Generator struct {
	Clock       Clock           // Interface for time mocking.
	Fetcher     CatalogFetcher  // Interface for network abstraction.
	Credentials CredentialStore // Optional; nil means no password.

	// Recurrence carries the leap-day policy.
	Recurrence calendar.Recurrence

	// FormatSummary allows the caller to inject localized strings into the feed.
	FormatSummary func(e calendar.AnnualEvent) string

	// CalendarName is the X-WR-CALNAME of the feed; config.ICalCalName when empty.
	CalendarName string
}

// RunSync loads the catalog, resolves every event against the clock and renders the feed.
func (g *Generator) RunSync(ctx context.Context, cfg SyncConfig) (*SyncResult, error) {
	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyMode, cfg.Mode,
	)
	log.InfoContext(ctx, config.MsgSyncStarted)

	cat, err := g.LoadCatalog(ctx, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %w", config.ErrCatalogLoad, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := g.Clock.Now()
	ref := calendar.DateOf(now)

	occurrences := g.Recurrence.Upcoming(cat.Events, ref, 0)
	today := 0
	entries := make([]UpcomingEntry, 0, len(occurrences))
	for i, occ := range occurrences {
		if occ.IsToday() {
			today++
			slog.Info(config.MsgEventToday,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyName, occ.Event.Name,
				config.LogKeyDate, occ.Date.String())
		}
		if cfg.Limit <= 0 || i < cfg.Limit {
			entries = append(entries, newUpcomingEntry(occ, ref))
		}
	}

	ics, err := g.generateCalendar(ctx, cat.Events, now, cfg.ReminderTrigger)
	if err != nil {
		return nil, err
	}

	g.logSuccess(len(cat.Events), len(cat.Matches), today)
	log.Debug(config.MsgSyncFinished, config.LogKeyDuration, time.Since(start).Milliseconds())

	return &SyncResult{
		ICS:        ics,
		Entries:    entries,
		Matches:    cat.Matches,
		TodayCount: today,
	}, nil
}

// LoadCatalog opens the configured source and decodes it.
func (g *Generator) LoadCatalog(ctx context.Context, cfg SyncConfig) (*Catalog, error) {
	switch cfg.Mode {
	case config.SourceModeBuiltin, "":
		return BuiltinCatalog(g.Clock.Now()), nil
	case config.SourceModeLocal:
		if cfg.LocalPath == "" {
			return nil, errors.New(config.ErrLocalPathEmpty)
		}
		format, err := detectFormat(cfg.LocalPath, cfg.Format)
		if err != nil {
			return nil, err
		}
		f, err := os.Open(cfg.LocalPath)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		return g.decode(ctx, f, format)
	case config.SourceModeWeb:
		if cfg.WebURL == "" {
			return nil, errors.New(config.ErrWebURLEmpty)
		}
		if g.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		format, err := detectFormat(cfg.WebURL, cfg.Format)
		if err != nil {
			return nil, err
		}
		var pass string
		if g.Credentials != nil {
			if pass, err = g.Credentials.Password(cfg.WebUser); err != nil {
				return nil, err
			}
		}
		rc, err := g.Fetcher.Fetch(ctx, cfg.WebURL, cfg.WebUser, pass)
		if err != nil {
			return nil, err
		}
		defer func() { _ = rc.Close() }()
		return g.decode(ctx, rc, format)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, cfg.Mode)
	}
}

func (g *Generator) decode(ctx context.Context, r io.Reader, format string) (*Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cat, err := DecodeCatalog(r, format)
	if err != nil {
		return nil, err
	}
	slog.Debug(config.MsgCatalogLoaded,
		config.LogKeyComponent, config.CompCatalog,
		config.LogKeyFormat, format,
		config.LogKeyTotal, len(cat.Events),
		config.LogKeyMatches, len(cat.Matches))
	return cat, nil
}

// generateCalendar renders one yearly VEVENT per catalog event.
func (g *Generator) generateCalendar(ctx context.Context, events []calendar.AnnualEvent, now time.Time, reminderTrigger string) ([]byte, error) {
	if len(events) == 0 {
		// A stub keeps clients from flagging the feed as invalid.
		return []byte(config.StubVCalendar), nil
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	calName := g.CalendarName
	if calName == "" {
		calName = config.ICalCalName
	}
	cal.Props.SetText(config.PropXWRCalName, calName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	// Events are all-day and defined by the local calendar; only DTSTAMP is UTC.
	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	year := now.Year()
	seen := make(map[string]string, len(events))
	for _, e := range events {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Clients merge events sharing a UID.
		uid := eventUID(e)
		if prev, dup := seen[uid]; dup {
			slog.Warn(config.MsgDuplicateUID,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyName, e.Name,
				config.LogKeyValue, prev)
		}
		seen[uid] = e.ID

		vevents, err := g.createEvents(e, year, reminderTrigger)
		if err != nil {
			return nil, err
		}
		for _, ve := range vevents {
			ve.Props.Set(dtStampProp)
			cal.Children = append(cal.Children, ve.Component)
		}
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	return buf.Bytes(), nil
}

// createEvents returns a single recurring VEVENT for ordinary dates. Feb 29
// cannot be expressed as a yearly rule that honours the leap-day policy, so
// it gets explicit events for the years around the current one instead.
func (g *Generator) createEvents(e calendar.AnnualEvent, year int, reminderTrigger string) ([]*ical.Event, error) {
	uid := eventUID(e)
	summary := fmt.Sprintf(config.FallbackSummary, e.Name)
	if g.FormatSummary != nil {
		summary = g.FormatSummary(e)
	}

	newEvent := func(uid string, date calendar.Date) *ical.Event {
		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, uid)
		event.Props.SetText(config.PropSummary, summary)
		if desc, ok := e.Description.Get(); ok {
			event.Props.SetText(config.PropDescription, desc)
		}

		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDate(date.Time(time.UTC))
		event.Props.Set(dtStartProp)

		if reminderTrigger != "" {
			addAlarm(event, reminderTrigger, summary)
		}
		return event
	}

	if e.IsLeapDay() {
		var events []*ical.Event
		for y := year - config.ICSYearsAround; y <= year+config.ICSYearsAround; y++ {
			date := e.In(y, g.Recurrence.LeapDay)
			events = append(events, newEvent(fmt.Sprintf("%d-%s", y, uid), date))
		}
		return events, nil
	}

	first := e.In(year, g.Recurrence.LeapDay)
	rule, err := yearlyRule(e, first)
	if err != nil {
		return nil, err
	}

	event := newEvent(uid, first)
	// Set the value directly: SetText would escape the rule's separators.
	rruleProp := ical.NewProp(config.PropRRule)
	rruleProp.Value = rule
	event.Props.Set(rruleProp)

	return []*ical.Event{event}, nil
}

// yearlyRule builds FREQ=YEARLY;BYMONTH=m;BYMONTHDAY=d, validated by rrule-go.
func yearlyRule(e calendar.AnnualEvent, first calendar.Date) (string, error) {
	opt := rrule.ROption{
		Freq:       rrule.YEARLY,
		Dtstart:    first.Time(time.UTC),
		Bymonth:    []int{int(e.Month)},
		Bymonthday: []int{e.Day},
	}
	if _, err := rrule.NewRRule(opt); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrRRule, err)
	}
	return opt.RRuleString(), nil
}

// eventUID derives a stable identifier from the event's identity and date.
func eventUID(e calendar.AnnualEvent) string {
	seed := fmt.Sprintf("%s|%02d-%02d", e.ID, int(e.Month), e.Day)
	return fmt.Sprintf(config.FormatUID, uuid.NewSHA1(uidNamespace, []byte(seed)).String(), config.ICalDomain)
}

// addAlarm appends a DISPLAY alarm (notification) to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set trigger manually to avoid "VALUE=TEXT" param
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}

// logSuccess logs the final statistics of the generation process.
func (g *Generator) logSuccess(events, matches, today int) {
	slog.Info(config.MsgGenSuccess,
		config.LogKeyComponent, config.CompEngine,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, events),
			slog.Int(config.LogKeyMatches, matches),
			slog.Int(config.LogKeyToday, today),
		),
	)
}
