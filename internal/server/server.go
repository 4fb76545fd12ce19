package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/tartampluch/go-countdown/internal/calendar"
	"github.com/tartampluch/go-countdown/internal/config"
	"github.com/tartampluch/go-countdown/internal/engine"
)

// snapshot is everything one sync produced, plus the HTTP cache metadata of the feed.
type snapshot struct {
	ics          []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers

	entries []engine.UpcomingEntry
	matches []calendar.Match
}

// CalendarServer serves the generated feed and the JSON API.
type CalendarServer struct {
	// cache is replaced wholesale on each sync; readers never lock.
	cache atomic.Pointer[snapshot]
	Port  string
	Clock engine.Clock

	addr atomic.Pointer[string]
}

// NewCalendarServer creates a new instance of the server.
func NewCalendarServer(port string, clock engine.Clock) *CalendarServer {
	if clock == nil {
		clock = engine.RealClock{}
	}
	return &CalendarServer{
		Port:  port,
		Clock: clock,
	}
}

// Handler returns the routing table.
func (s *CalendarServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteRoot, s.handleCalendarRequest)
	mux.HandleFunc(config.RouteICS, s.handleCalendarRequest)
	mux.HandleFunc(config.RouteUpcoming, s.handleUpcoming)
	mux.HandleFunc(config.RouteGrid, s.handleGrid)
	mux.HandleFunc(config.RouteMatches, s.handleMatches)
	return mux
}

// Addr is the bound listen address once Start is running, or "".
func (s *CalendarServer) Addr() string {
	if a := s.addr.Load(); a != nil {
		return *a
	}
	return ""
}

// Start initializes the HTTP server and blocks until the context is cancelled.
func (s *CalendarServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	ln, err := net.Listen("tcp", config.LocalhostBindAddr+config.AddrSeparator+s.Port)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
	addr := ln.Addr().String()
	s.addr.Store(&addr)

	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, addr,
		)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Update atomically replaces the served content with the outcome of a sync.
func (s *CalendarServer) Update(res *engine.SyncResult) {
	hash := sha256.Sum256(res.ICS)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))

	s.cache.Store(&snapshot{
		ics:          res.ICS,
		etag:         etag,
		lastModified: time.Now().UTC().Format(http.TimeFormat),
		entries:      res.Entries,
		matches:      res.Matches,
	})

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(res.ICS),
		config.LogKeyETag, etag,
	)
}

// readable rejects anything but GET and HEAD.
func readable(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// loaded returns the current snapshot, answering 503 when the first sync has not finished.
func (s *CalendarServer) loaded(w http.ResponseWriter) *snapshot {
	item := s.cache.Load()
	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
	}
	return item
}

// handleCalendarRequest serves the ICS content with HTTP caching support.
func (s *CalendarServer) handleCalendarRequest(w http.ResponseWriter, r *http.Request) {
	if !readable(w, r) {
		return
	}
	item := s.loaded(w)
	if item == nil {
		return
	}

	w.Header().Set(config.HeaderContentType, config.MimeTextCalendar)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
			if serverTime, err := time.Parse(http.TimeFormat, item.lastModified); err == nil {
				if !serverTime.After(clientTime) {
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
		}
	}

	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(item.ics)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}

func (s *CalendarServer) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	if !readable(w, r) {
		return
	}
	item := s.loaded(w)
	if item == nil {
		return
	}
	writeJSON(w, r, item.entries)
}

// handleGrid lays out ?month=YYYY-MM, or the current month when absent.
// It needs no sync: the grid only depends on the clock.
func (s *CalendarServer) handleGrid(w http.ResponseWriter, r *http.Request) {
	if !readable(w, r) {
		return
	}

	target := calendar.DateOf(s.Clock.Now())
	if v := r.URL.Query().Get(config.QueryMonth); v != "" {
		t, err := time.Parse(config.DateFormatMonth, v)
		if err != nil {
			http.Error(w, config.HTTPMsgBadMonth, http.StatusBadRequest)
			return
		}
		target = calendar.DateOf(t)
	}

	writeJSON(w, r, calendar.BuildMonthGrid(target))
}

// handleMatches filters fixtures by ?q= (team name) and ?days= (window from today).
func (s *CalendarServer) handleMatches(w http.ResponseWriter, r *http.Request) {
	if !readable(w, r) {
		return
	}

	q := r.URL.Query()
	filter := calendar.MatchFilter{Query: q.Get(config.QueryQuery)}
	if v := q.Get(config.QueryDays); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days < 0 {
			http.Error(w, config.HTTPMsgBadDays, http.StatusBadRequest)
			return
		}
		filter.WithinDays = days
	}

	item := s.loaded(w)
	if item == nil {
		return
	}
	writeJSON(w, r, calendar.FilterMatches(item.matches, filter, s.Clock.Now()))
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error(config.ErrEncodeJSON,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
		http.Error(w, config.HTTPMsgInternalErr, http.StatusInternalServerError)
		return
	}

	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	if r.Method == http.MethodGet {
		if _, err := w.Write(body); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}
