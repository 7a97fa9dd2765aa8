package uptimeapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Disabled(t *testing.T) {
	c := NewClient("  ", time.Second)
	assert.False(t, c.Enabled())

	_, err := c.AggregateUptime(context.Background(), "")
	assert.True(t, errors.Is(err, ErrUpstreamDisabled))
}

func TestClient_AggregateUptimePassesQuery(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"labels":["Switch","MPLS"],"data":[99.5,97.25]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second)
	series, err := c.AggregateUptime(context.Background(), "?start_date=2025-01-01&type=switch")
	require.NoError(t, err)
	assert.Equal(t, "/api/aggregate-uptime/", gotPath)
	assert.Equal(t, "start_date=2025-01-01&type=switch", gotQuery)
	assert.Equal(t, []string{"Switch", "MPLS"}, series.Labels)
	assert.Equal(t, []float64{99.5, 97.25}, series.Data)
}

func TestClient_ErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid date range"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).AggregateUptime(context.Background(), "")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadRequest, statusErr.Status)
	assert.Equal(t, "invalid date range", err.Error())
}

func TestClient_ErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).DailyEventTrend(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, "Server error", err.Error())
}

func TestClient_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"labels":`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).DailyEventTrend(context.Background(), "")
	assert.Error(t, err)
}

func TestClient_HostChartsBodyError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/host/c3ctMDE=/charts/", r.URL.Path)
		_, _ = w.Write([]byte(`{"error":"host not found"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).HostCharts(context.Background(), "c3ctMDE=", "")
	require.Error(t, err)
	assert.Equal(t, "host not found", err.Error())
}

func TestClient_HostCharts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"uptime_pie":{"labels":["Uptime","Downtime"],"data":[1000,20]},
			"daily_bar":{"labels":["2025-04-01"],"data":[20],"reasons":["Power"]},
			"trend_line":{"labels":["2025-04-01"],"data":[2]}
		}`))
	}))
	defer srv.Close()

	charts, err := NewClient(srv.URL, time.Second).HostCharts(context.Background(), "abc", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Power"}, charts.DailyBar.Reasons)
	assert.Equal(t, []float64{2}, charts.TrendLine.Data)
}
