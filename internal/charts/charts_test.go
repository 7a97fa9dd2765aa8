package charts

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-net-uptime-dashboard/internal/connectors/uptimeapi"
)

type fakeSource struct {
	aggregate    *uptimeapi.Series
	aggregateErr error
	host         *uptimeapi.HostCharts
	hostErr      error
	trend        *uptimeapi.Series
	trendErr     error
	calls        int32
}

func (f *fakeSource) AggregateUptime(context.Context, string) (*uptimeapi.Series, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.aggregate, f.aggregateErr
}

func (f *fakeSource) HostCharts(context.Context, string, string) (*uptimeapi.HostCharts, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.host, f.hostErr
}

func (f *fakeSource) DailyEventTrend(context.Context, string) (*uptimeapi.Series, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.trend, f.trendErr
}

func TestRender(t *testing.T) {
	ok := Render("x", Ok(&uptimeapi.Series{Labels: []string{"Switch"}, Data: []float64{99}}), ErrorCanvas, AggregateBar)
	assert.True(t, ok.OK())
	assert.Empty(t, ok.Error)

	failed := Render("x", Fail[*uptimeapi.Series](errors.New("boom")), ErrorCanvas, AggregateBar)
	assert.False(t, failed.OK())
	assert.Equal(t, "Error: boom", failed.Error)
	assert.Equal(t, "null", string(failed.ConfigJSON()))

	block := Render("x", Fail[*uptimeapi.Series](errors.New("boom")), ErrorBlock, AggregateBar)
	assert.Equal(t, "Could not load chart data: boom", block.Error)

	hidden := Render("x", Fail[*uptimeapi.Series](errors.New("boom")), ErrorHidden, AggregateBar)
	assert.Empty(t, hidden.Error)
	assert.Error(t, hidden.Err)
}

func TestAggregateBarConfig(t *testing.T) {
	cfg := AggregateBar(&uptimeapi.Series{Labels: []string{"Switch", "MPLS"}, Data: []float64{99.1, 98.2}})
	blob, err := json.Marshal(cfg)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(blob, &decoded))
	assert.Equal(t, "bar", decoded["type"])
	y := decoded["options"].(map[string]any)["scales"].(map[string]any)["y"].(map[string]any)
	assert.Equal(t, float64(80), y["min"])
	assert.Equal(t, float64(100), y["max"])
	assert.Equal(t, []any{"ChartDataLabels"}, decoded["plugins"])
}

func TestDailyBarReasons(t *testing.T) {
	cfg := DailyBar(uptimeapi.DailyBar{
		Labels:  []string{"2025-04-01", "2025-04-02"},
		Data:    []float64{12.5, 3},
		Reasons: []string{"Power"},
	})
	assert.Equal(t, []string{"Reason: Power", "Reason: No Reason"}, cfg.Data.Datasets[0].Notes)
}

func TestUptimePieNotes(t *testing.T) {
	cfg := UptimePie(uptimeapi.Series{Labels: []string{"Uptime", "Downtime"}, Data: []float64{75, 25}})
	assert.Equal(t, []string{"Uptime: 75 min (75.0%)", "Downtime: 25 min (25.0%)"}, cfg.Data.Datasets[0].Notes)
}

func TestLoadDashboard_FailuresStayLocal(t *testing.T) {
	src := &fakeSource{
		aggregateErr: &uptimeapi.StatusError{Status: 500, Message: "Server error"},
		trend:        &uptimeapi.Series{Labels: []string{"2025-04-01"}, Data: []float64{4}},
	}
	var probes int32
	l := NewLoader(src, nil, func(string, float64, error) { atomic.AddInt32(&probes, 1) })

	d := l.LoadDashboard(context.Background(), "type=switch")
	assert.Equal(t, "Error: Server error", d.Aggregate.Error)
	assert.False(t, d.Pie.OK())
	assert.Empty(t, d.Pie.Error)
	assert.True(t, d.DailyTrend.OK())
	assert.Equal(t, int32(3), atomic.LoadInt32(&src.calls))
	assert.Equal(t, int32(3), atomic.LoadInt32(&probes))
}

func TestLoadHost(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		src := &fakeSource{host: &uptimeapi.HostCharts{
			UptimePie: uptimeapi.Series{Labels: []string{"Uptime", "Downtime"}, Data: []float64{10, 1}},
			TrendLine: uptimeapi.Series{Labels: []string{"2025-04-01"}, Data: []float64{1}},
		}}
		h := NewLoader(src, nil, nil).LoadHost(context.Background(), "abc", "")
		assert.Empty(t, h.Error)
		assert.True(t, h.Pie.OK())
		assert.True(t, h.Bar.OK())
		assert.True(t, h.Trend.OK())
		assert.Equal(t, int32(1), atomic.LoadInt32(&src.calls))
	})

	t.Run("failure", func(t *testing.T) {
		src := &fakeSource{hostErr: errors.New("host not found")}
		h := NewLoader(src, nil, nil).LoadHost(context.Background(), "abc", "")
		assert.Equal(t, "Could not load chart data: host not found", h.Error)
		assert.False(t, h.Pie.OK())
	})
}
