package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-countdown/internal/calendar"
	"github.com/tartampluch/go-countdown/internal/config"
	"github.com/tartampluch/go-countdown/internal/engine"
	"go.uber.org/goleak"
)

var testNow = time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC)

func newTestServer() *CalendarServer {
	return NewCalendarServer("0", engine.FixedClock{At: testNow})
}

func sampleResult(ics string) *engine.SyncResult {
	return &engine.SyncResult{
		ICS: []byte(ics),
		Entries: []engine.UpcomingEntry{
			{ID: "holi", Name: "Holi", Next: calendar.NewDate(2024, time.March, 8), DaysUntil: 3},
		},
		Matches: []calendar.Match{
			{ID: "2", TeamA: "England", TeamB: "Pakistan", StartTime: testNow.Add(10 * time.Hour)},
			{ID: "1", TeamA: "India", TeamB: "Australia", StartTime: testNow.Add(5 * time.Hour)},
			{ID: "3", TeamA: "India", TeamB: "England", StartTime: testNow.AddDate(0, 0, 10)},
		},
	}
}

func get(t *testing.T, h http.Handler, target string, header ...string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	resp := w.Result()
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// -----------------------------------------------------------------------------
// Feed
// -----------------------------------------------------------------------------

func TestHandler_ServingContent(t *testing.T) {
	srv := newTestServer()
	expectedICS := "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nEND:VCALENDAR"
	srv.Update(sampleResult(expectedICS))

	for _, route := range []string{config.RouteRoot, config.RouteICS} {
		t.Run(route, func(t *testing.T) {
			resp := get(t, srv.Handler(), route)

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, config.MimeTextCalendar, resp.Header.Get(config.HeaderContentType))
			assert.Equal(t, config.MimeNoSniff, resp.Header.Get(config.HeaderXContentType))
			assert.Contains(t, resp.Header.Get(config.HeaderCacheControl), "no-cache")
			assert.NotEmpty(t, resp.Header.Get(config.HeaderETag))
			assert.NotEmpty(t, resp.Header.Get(config.HeaderLastModified))

			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, expectedICS, string(body))
		})
	}
}

func TestHandler_Caching(t *testing.T) {
	srv := newTestServer()
	srv.Update(sampleResult("DATA_VERSION_1"))

	first := get(t, srv.Handler(), config.RouteICS)
	etag := first.Header.Get(config.HeaderETag)
	require.NotEmpty(t, etag)

	t.Run("IfNoneMatch", func(t *testing.T) {
		resp := get(t, srv.Handler(), config.RouteICS, config.HeaderIfNoneMatch, etag)
		assert.Equal(t, http.StatusNotModified, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Empty(t, body)
	})

	t.Run("IfModifiedSince", func(t *testing.T) {
		future := time.Now().Add(time.Hour).UTC().Format(http.TimeFormat)
		resp := get(t, srv.Handler(), config.RouteICS, config.HeaderIfModifiedSince, future)
		assert.Equal(t, http.StatusNotModified, resp.StatusCode)
	})

	t.Run("ChangedContentChangesETag", func(t *testing.T) {
		srv.Update(sampleResult("DATA_VERSION_2"))
		resp := get(t, srv.Handler(), config.RouteICS, config.HeaderIfNoneMatch, etag)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEqual(t, etag, resp.Header.Get(config.HeaderETag))
	})
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	srv := newTestServer()
	srv.Update(sampleResult("x"))

	for _, route := range []string{config.RouteICS, config.RouteUpcoming, config.RouteGrid, config.RouteMatches} {
		req := httptest.NewRequest(http.MethodPost, route, nil)
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, route)
		assert.Equal(t, config.AllowedMethods, w.Header().Get(config.HeaderAllow), route)
	}
}

func TestHandler_HeadHasNoBody(t *testing.T) {
	srv := newTestServer()
	srv.Update(sampleResult("BEGIN:VCALENDAR"))

	req := httptest.NewRequest(http.MethodHead, config.RouteUpcoming, nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, config.MimeJSON, w.Header().Get(config.HeaderContentType))
	assert.Zero(t, w.Body.Len())
}

func TestHandler_Initializing(t *testing.T) {
	srv := newTestServer()

	for _, route := range []string{config.RouteRoot, config.RouteUpcoming, config.RouteMatches} {
		resp := get(t, srv.Handler(), route)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, route)
		assert.Equal(t, config.RetryAfterSeconds, resp.Header.Get(config.HeaderRetryAfter), route)
	}

	// The grid depends on nothing but the clock.
	assert.Equal(t, http.StatusOK, get(t, srv.Handler(), config.RouteGrid).StatusCode)
}

// -----------------------------------------------------------------------------
// JSON API
// -----------------------------------------------------------------------------

func TestHandler_Upcoming(t *testing.T) {
	srv := newTestServer()
	srv.Update(sampleResult("x"))

	resp := get(t, srv.Handler(), config.RouteUpcoming)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, config.MimeJSON, resp.Header.Get(config.HeaderContentType))

	var entries []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Holi", entries[0]["name"])
	assert.Equal(t, "2024-03-08", entries[0]["next"])
	assert.EqualValues(t, 3, entries[0]["days_until"])
}

func TestHandler_Grid(t *testing.T) {
	srv := newTestServer()

	tests := []struct {
		name      string
		target    string
		wantMonth int
		wantFirst string
		wantLast  string
	}{
		{"DefaultsToCurrentMonth", config.RouteGrid, 3, "2024-02-25", "2024-04-06"},
		{"LeapFebruary", config.RouteGrid + "?month=2024-02", 2, "2024-01-28", "2024-03-09"},
		{"December", config.RouteGrid + "?month=2024-12", 12, "2024-12-01", "2025-01-11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := get(t, srv.Handler(), tt.target)
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var g struct {
				Month int `json:"month"`
				Cells []struct {
					Date          string `json:"date"`
					InTargetMonth bool   `json:"in_target_month"`
				} `json:"cells"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&g))

			assert.Equal(t, tt.wantMonth, g.Month)
			require.Len(t, g.Cells, calendar.GridCells)
			assert.Equal(t, tt.wantFirst, g.Cells[0].Date)
			assert.Equal(t, tt.wantLast, g.Cells[calendar.GridCells-1].Date)
		})
	}
}

func TestHandler_Grid_BadMonth(t *testing.T) {
	srv := newTestServer()

	for _, v := range []string{"2024-13", "march", "2024-3-01"} {
		resp := get(t, srv.Handler(), config.RouteGrid+"?month="+v)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, v)
	}
}

func TestHandler_Matches(t *testing.T) {
	srv := newTestServer()
	srv.Update(sampleResult("x"))

	tests := []struct {
		name    string
		query   string
		wantIDs []string
	}{
		{"All", "", []string{"1", "2", "3"}},
		{"TeamQuery", "?q=india", []string{"1", "3"}},
		{"Today", "?days=1", []string{"1", "2"}},
		{"QueryAndWindow", "?q=ENG&days=1", []string{"2"}},
		{"NoHit", "?q=brazil", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := get(t, srv.Handler(), config.RouteMatches+tt.query)
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var got []calendar.Match
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))

			ids := []string{}
			for _, m := range got {
				ids = append(ids, m.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestHandler_Matches_BadDays(t *testing.T) {
	srv := newTestServer()
	srv.Update(sampleResult("x"))

	for _, v := range []string{"-1", "soon"} {
		resp := get(t, srv.Handler(), config.RouteMatches+"?days="+v)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, v)
	}
}

// -----------------------------------------------------------------------------
// Concurrency Tests (Race Detection)
// -----------------------------------------------------------------------------

// TestServer_RaceCondition hammers Update and the handlers concurrently.
// Run this with `go test -race`.
func TestServer_RaceCondition(t *testing.T) {
	srv := newTestServer()
	h := srv.Handler()
	var wg sync.WaitGroup

	end := time.Now().Add(500 * time.Millisecond)

	for w := 0; w < 5; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; time.Now().Before(end); i++ {
				srv.Update(sampleResult(fmt.Sprintf("VERSION:%d-%d", id, i)))
				time.Sleep(time.Microsecond)
			}
		}(w)
	}

	routes := []string{config.RouteICS, config.RouteUpcoming, config.RouteMatches}
	for r := 0; r < 20; r++ {
		wg.Add(1)
		go func(route string) {
			defer wg.Done()
			for time.Now().Before(end) {
				w := httptest.NewRecorder()
				h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, route, nil))
				if w.Code != http.StatusOK && w.Code != http.StatusServiceUnavailable {
					t.Errorf("unexpected status code during race test: %d", w.Code)
				}
			}
		}(routes[r%len(routes)])
	}

	wg.Wait()
}

// -----------------------------------------------------------------------------
// Integration Tests (Real TCP Lifecycle)
// -----------------------------------------------------------------------------

func TestServer_Lifecycle(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv := newTestServer()
	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)

	go func() {
		errChan <- srv.Start(ctx)
	}()

	require.Eventually(t, func() bool { return srv.Addr() != "" }, 2*time.Second, 10*time.Millisecond)
	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	url := "http://" + srv.Addr() + config.RouteICS

	resp, err := client.Get(url)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	_ = resp.Body.Close()

	srv.Update(sampleResult("BEGIN:VCALENDAR\nEND:VCALENDAR"))

	resp, err = client.Get(url)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "BEGIN:VCALENDAR")

	cancel()
	select {
	case err := <-errChan:
		assert.NoError(t, err, "server should shut down gracefully")
	case <-time.After(5 * time.Second):
		t.Fatal("server shutdown timed out")
	}
}

func TestServer_StartRequiresPort(t *testing.T) {
	err := NewCalendarServer("", nil).Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrPortRequired)
}
