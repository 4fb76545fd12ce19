package main

import (
	"fmt"
	"io"
	"time"

	"github.com/tartampluch/go-countdown/internal/calendar"
	"github.com/tartampluch/go-countdown/internal/config"
	"github.com/tartampluch/go-countdown/internal/engine"
	"github.com/tartampluch/go-countdown/internal/i18n"
	"github.com/tartampluch/go-countdown/internal/render"
)

// app carries the state shared by every subcommand once the root
// PersistentPreRunE has run.
type app struct {
	configPath string
	debug      bool
	date       string

	stdin     io.Reader
	logCloser io.Closer

	settings *config.Settings
	clock    engine.Clock
	tr       *i18n.Translator
	renderer *render.Renderer
	keyring  engine.KeyringStore
}

// setup loads settings and resolves the reference clock.
func (a *app) setup() error {
	if a.logCloser == nil {
		a.logCloser = setupLogging(a.debug)
		logStartupInfo()
	}

	s, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.settings = s

	a.clock = engine.RealClock{}
	if a.date != "" {
		d, err := calendar.ParseDate(a.date)
		if err != nil {
			return err
		}
		// Noon avoids DST edges when the pinned day is converted back to a date.
		a.clock = engine.FixedClock{At: time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.Local)}
	}

	a.tr = i18n.New(s.Language)
	a.renderer = render.New(a.tr)
	a.keyring = engine.NewKeyringStore()
	return nil
}

func (a *app) close() {
	if a.logCloser != nil {
		_ = a.logCloser.Close()
	}
}

func (a *app) today() calendar.Date {
	return calendar.DateOf(a.clock.Now())
}

func (a *app) generator() *engine.Generator {
	return &engine.Generator{
		Clock:         a.clock,
		Fetcher:       engine.NewHTTPFetcher(),
		Credentials:   a.keyring,
		Recurrence:    calendar.Recurrence{LeapDay: a.settings.LeapDay()},
		FormatSummary: a.tr.Summary,
		CalendarName:  a.tr.Msg(config.TKeyCalName),
	}
}

func (a *app) syncConfig() engine.SyncConfig {
	s := a.settings
	return engine.SyncConfig{
		Mode:            s.Source.Mode,
		LocalPath:       s.Source.Path,
		WebURL:          s.Source.URL,
		WebUser:         s.Source.User,
		Format:          s.Source.Format,
		ReminderTrigger: s.Reminder.Trigger,
		Limit:           s.Limit,
	}
}

// parseMonth reads a YYYY-MM flag value, defaulting to the reference month.
func (a *app) parseMonth(v string) (calendar.Date, error) {
	if v == "" {
		return a.today().FirstOfMonth(), nil
	}
	t, err := time.Parse(config.DateFormatMonth, v)
	if err != nil {
		return calendar.Date{}, fmt.Errorf("%s: %w", config.ErrMonthParse, err)
	}
	return calendar.DateOf(t), nil
}
