package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-net-uptime-dashboard/internal/calendar"
	"go-net-uptime-dashboard/internal/charts"
	"go-net-uptime-dashboard/internal/connectors/events"
	"go-net-uptime-dashboard/internal/connectors/uptimeapi"
)

type fakeStore struct {
	items   []events.Event
	err     error
	pingErr error
	host    string
}

func (f *fakeStore) ListEvents(context.Context, events.Filter) ([]events.Event, error) {
	return f.items, f.err
}

func (f *fakeStore) ListHostEvents(_ context.Context, name string, _ events.Filter) ([]events.Event, error) {
	f.host = name
	var out []events.Event
	for _, e := range f.items {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out, f.err
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }
func (f *fakeStore) Close() error               { return nil }

var testNow = time.Date(2025, 4, 2, 11, 1, 1, 0, time.UTC)

func at(raw string) *time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", raw)
	if err != nil {
		panic(err)
	}
	return &t
}

func sampleEvents() []events.Event {
	return []events.Event{
		{ID: 1, Name: "SW-1", Type: "switch", Date: "10th Magh", DownTime: at("2025-04-01 08:00:00"), UpTime: at("2025-04-01 08:30:00"), Reason: "Power Issue"},
		{ID: 2, Name: "SW-1", Type: "switch", Date: "3rd Magh", DownTime: at("2025-04-01 10:00:00"), Reason: "Fiber Breakage"},
		{ID: 3, Name: "OLT-9", Type: "olt", Date: "10th Poush", DownTime: at("2025-04-01 09:00:00"), Reason: ""},
	}
}

func newTestDeps(store events.Store, upstreamURL string) deps {
	upstream := uptimeapi.NewClient(upstreamURL, 2*time.Second)
	d := deps{
		upstream:      upstream,
		loader:        charts.NewLoader(upstream, zap.NewNop(), nil),
		catalog:       calendar.DefaultBSCatalog(),
		showMoreAfter: 10,
		logger:        zap.NewNop(),
		now:           func() time.Time { return testNow },
	}
	if store != nil {
		d.store = store
		d.backend = "test"
	}
	return d
}

func upstreamStub(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/aggregate-uptime/":
			_, _ = w.Write([]byte(`{"labels":["Switch","MPLS"],"data":[99.5,98.2]}`))
		case r.URL.Path == "/daily_event_trend_api/":
			_, _ = w.Write([]byte(`{"labels":["2025-04-01"],"data":[3]}`))
		case strings.HasPrefix(r.URL.Path, "/api/host/"):
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"boom"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func serve(t *testing.T, d deps, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rr := httptest.NewRecorder()
	newMux(d).ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	return payload
}

func TestCalendarViewHandler_StoreDisabled(t *testing.T) {
	rr := serve(t, newTestDeps(nil, ""), "/api/v1/calendar/view?month=Magh")

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.NotNil(t, decode(t, rr)["error"])
}

func TestCalendarViewHandler_DayTransition(t *testing.T) {
	d := newTestDeps(&fakeStore{items: sampleEvents()}, "")
	rr := serve(t, d, "/api/v1/calendar/view?month=Magh&action=day&value=10")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var payload struct {
		Data calendar.View `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	view := payload.Data
	assert.Equal(t, "day_selected", view.Phase)
	assert.Equal(t, "Events for Magh 10th", view.Rows.Title)
	assert.Equal(t, []bool{true, false, false}, view.Rows.Visible)
	assert.Equal(t, "/monthview/?month=Magh&day=10", view.URL)
	assert.True(t, view.Grid.Visible)
}

func TestCalendarViewHandler_MonthTransitionResetsDay(t *testing.T) {
	d := newTestDeps(&fakeStore{items: sampleEvents()}, "")
	rr := serve(t, d, "/api/v1/calendar/view?month=Magh&day=10&action=month&value=Poush")
	require.Equal(t, http.StatusOK, rr.Code)

	var payload struct {
		Data calendar.View `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	assert.Equal(t, "All Events for Poush", payload.Data.Rows.Title)
	assert.Equal(t, "/monthview/?month=Poush", payload.Data.URL)
	assert.Equal(t, 1, payload.Data.Rows.Matched)
}

func TestCalendarViewHandler_Errors(t *testing.T) {
	d := newTestDeps(&fakeStore{items: sampleEvents()}, "")

	cases := []struct {
		name   string
		target string
		status int
	}{
		{"day without month", "/api/v1/calendar/view?action=day&value=3", http.StatusConflict},
		{"day outside month", "/api/v1/calendar/view?month=Magh&action=day&value=30", http.StatusBadRequest},
		{"unknown month click", "/api/v1/calendar/view?action=month&value=Smarch", http.StatusBadRequest},
		{"unknown action", "/api/v1/calendar/view?action=year", http.StatusBadRequest},
		{"bad date filter", "/api/v1/calendar/view?start_date=01-04-2025", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := serve(t, d, tc.target)
			assert.Equal(t, tc.status, rr.Code)
			assert.NotNil(t, decode(t, rr)["error"])
		})
	}
}

func TestCalendarViewHandler_StoreFailure(t *testing.T) {
	d := newTestDeps(&fakeStore{err: context.DeadlineExceeded}, "")
	rr := serve(t, d, "/api/v1/calendar/view")
	assert.Equal(t, http.StatusGatewayTimeout, rr.Code)
}

func TestMonthViewPage(t *testing.T) {
	d := newTestDeps(&fakeStore{items: sampleEvents()}, "")
	rr := serve(t, d, "/monthview/?month=Magh&type=switch")
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.Contains(t, body, "All Events for Magh")
	assert.Contains(t, body, `<a class="month-box selected" data-month-name="Magh"`)
	assert.Contains(t, body, "10th Magh")
	assert.Contains(t, body, `data-month="Poush" data-day="10" hidden`)
	// Cells keep unrelated parameters.
	assert.Contains(t, body, "/monthview/?month=Poush&amp;type=switch")
	assert.Contains(t, body, `id="nepali-month-data"`)
}

func TestMonthViewPage_NoSelection(t *testing.T) {
	d := newTestDeps(&fakeStore{items: sampleEvents()}, "")
	rr := serve(t, d, "/monthview/")
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.Contains(t, body, ">All Events<")
	assert.Contains(t, body, `<div class="month-dates" hidden>`)
	assert.Contains(t, body, `<p id="no-events-row" hidden>`)
}

func TestMonthViewPage_UnknownMonthShowsNoEvents(t *testing.T) {
	d := newTestDeps(&fakeStore{items: sampleEvents()}, "")
	rr := serve(t, d, "/monthview/?month=Smarch")
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.Contains(t, body, `<p id="no-events-row">`)
	assert.Contains(t, body, `<div class="month-dates" hidden>`)
}

func TestDashboardPage(t *testing.T) {
	upstream := upstreamStub(t)
	d := newTestDeps(&fakeStore{items: sampleEvents()}, upstream.URL)
	rr := serve(t, d, "/")
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.Contains(t, body, `<canvas id="aggregateUptimeChart" data-chart=`)
	assert.Contains(t, body, `<canvas id="dailyTrendChart" data-chart=`)
	assert.Contains(t, body, `class="live-duration" data-down-time="2025-04-01T10:00:00Z"`)
	assert.Contains(t, body, "1 day, 01:01:01")
	assert.Contains(t, body, "Fiber Breakage")
	assert.NotContains(t, body, "showMoreBtn")
}

func TestDashboardPage_UpstreamDisabled(t *testing.T) {
	rr := serve(t, newTestDeps(nil, ""), "/")
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.Contains(t, body, `data-error="Error: uptime backend not configured`)
	// Hidden-style panels log only.
	assert.Contains(t, body, `<canvas id="uptimePieChart"></canvas>`)
	assert.Contains(t, body, storeDisabledMessage)
}

func TestDashboardPage_ShowMore(t *testing.T) {
	items := sampleEvents()
	items[0].UpTime = nil
	d := newTestDeps(&fakeStore{items: items}, "")
	d.showMoreAfter = 1

	rr := serve(t, d, "/")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `id="showMoreBtn"`)
	assert.Contains(t, body, "hidden-row")
}

func TestDashboardPage_BadFilter(t *testing.T) {
	rr := serve(t, newTestDeps(&fakeStore{}, ""), "/?start_date=yesterday")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDashboardPage_UnknownPath(t *testing.T) {
	rr := serve(t, newTestDeps(nil, ""), "/nope")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHostPage(t *testing.T) {
	upstream := upstreamStub(t)
	store := &fakeStore{items: sampleEvents()}
	d := newTestDeps(store, upstream.URL)

	rr := serve(t, d, "/host/"+events.EncodeHostID("SW-1")+"/")
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.Equal(t, "SW-1", store.host)
	assert.Contains(t, body, `<div class="chart-error-block">Could not load chart data: boom</div>`)
	assert.Contains(t, body, "Power Issue")
	assert.NotContains(t, body, "OLT-9")
}

func TestHostPage_InvalidID(t *testing.T) {
	d := newTestDeps(&fakeStore{}, "")
	assert.Equal(t, http.StatusNotFound, serve(t, d, "/host/!!!/").Code)
	assert.Equal(t, http.StatusNotFound, serve(t, d, "/host/").Code)
}

func TestHostPage_RedirectsToSlash(t *testing.T) {
	d := newTestDeps(&fakeStore{}, "")
	id := events.EncodeHostID("SW-1")
	rr := serve(t, d, "/host/"+id+"?type=switch")
	assert.Equal(t, http.StatusMovedPermanently, rr.Code)
	assert.Equal(t, "/host/"+id+"/?type=switch", rr.Header().Get("Location"))
}

func TestEventSummaryHandler(t *testing.T) {
	d := newTestDeps(&fakeStore{items: sampleEvents()}, "")
	rr := serve(t, d, "/api/v1/events/summary")
	require.Equal(t, http.StatusOK, rr.Code)

	payload := decode(t, rr)
	data := payload["data"].(map[string]any)
	assert.EqualValues(t, 3, data["total_events"])
	assert.EqualValues(t, 1, data["switches"])
	hosts := data["hosts"].([]any)
	require.Len(t, hosts, 1)
	assert.Equal(t, "SW-1", hosts[0].(map[string]any)["name"])
}

func TestReadyHandler(t *testing.T) {
	rr := serve(t, newTestDeps(&fakeStore{}, ""), "/ready")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ready", decode(t, rr)["status"])

	rr = serve(t, newTestDeps(&fakeStore{pingErr: errors.New("gone")}, ""), "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "degraded", decode(t, rr)["status"])
}

func TestStaticScript(t *testing.T) {
	rr := serve(t, newTestDeps(nil, ""), "/static/dashboard.js")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "javascript")
	assert.Contains(t, rr.Body.String(), "setInterval(updateDurations, 1000)")
}

func TestLoggingMiddleware_RequestID(t *testing.T) {
	h := loggingMiddleware(zap.NewNop(), http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.NotEmpty(t, rr.Header().Get(requestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "abc", rr.Header().Get(requestIDHeader))
}

func TestNormalizeMetricPath(t *testing.T) {
	cases := map[string]string{
		"/":                      "/",
		"/host/U1ctMQ==/":        "/host/{id}/",
		"/monthview":             "/monthview/",
		"/static/dashboard.js":   "/static/{file}",
		"/api/v1/calendar/view":  "/api/v1/calendar/view",
		"/api/v1/events/summary": "/api/v1/events/summary",
		"/wp-admin":              "other",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeMetricPath(in), in)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	recordExternalProbe("AggregateUptime", 0.01, errors.New("down"))
	rr := serve(t, newTestDeps(nil, ""), "/metrics")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "uptime_dashboard_upstream_request_errors_total")
}
