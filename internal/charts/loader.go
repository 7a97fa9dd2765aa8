package charts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"go-net-uptime-dashboard/internal/connectors/uptimeapi"
)

// Source is the uptime backend as seen by the chart panels.
type Source interface {
	AggregateUptime(ctx context.Context, rawQuery string) (*uptimeapi.Series, error)
	HostCharts(ctx context.Context, hostID, rawQuery string) (*uptimeapi.HostCharts, error)
	DailyEventTrend(ctx context.Context, rawQuery string) (*uptimeapi.Series, error)
}

// ProbeFunc observes one backend call.
type ProbeFunc func(operation string, durationSeconds float64, err error)

// Dashboard holds the panels of the index page.
type Dashboard struct {
	Aggregate  Panel
	Pie        Panel
	DailyTrend Panel
}

// Host holds the panels of a per-host page. When the fetch fails all three
// panels carry the same error and Error is set for the container.
type Host struct {
	Pie   Panel
	Bar   Panel
	Trend Panel
	Error string
}

// Loader fetches panel data. Each fetch is independent: one failing panel
// never affects another.
type Loader struct {
	source Source
	logger *zap.Logger
	probe  ProbeFunc
}

func NewLoader(source Source, logger *zap.Logger, probe ProbeFunc) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if probe == nil {
		probe = func(string, float64, error) {}
	}
	return &Loader{source: source, logger: logger, probe: probe}
}

// LoadDashboard fetches the three index panels concurrently.
func (l *Loader) LoadDashboard(ctx context.Context, rawQuery string) Dashboard {
	var (
		wg         sync.WaitGroup
		aggregate  Result[*uptimeapi.Series]
		pie        Result[*uptimeapi.Series]
		dailyTrend Result[*uptimeapi.Series]
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		aggregate = fetch(l, "AggregateUptime", func() (*uptimeapi.Series, error) {
			return l.source.AggregateUptime(ctx, rawQuery)
		})
	}()
	go func() {
		defer wg.Done()
		pie = fetch(l, "AggregateUptime", func() (*uptimeapi.Series, error) {
			return l.source.AggregateUptime(ctx, rawQuery)
		})
	}()
	go func() {
		defer wg.Done()
		dailyTrend = fetch(l, "DailyEventTrend", func() (*uptimeapi.Series, error) {
			return l.source.DailyEventTrend(ctx, rawQuery)
		})
	}()
	wg.Wait()

	out := Dashboard{
		Aggregate:  Render("aggregateUptimeChart", aggregate, ErrorCanvas, AggregateBar),
		Pie:        Render("uptimePieChart", pie, ErrorHidden, DashboardPie),
		DailyTrend: Render("dailyTrendChart", dailyTrend, ErrorHidden, DailyTrendLine),
	}
	l.logPanelErrors(out.Aggregate, out.Pie, out.DailyTrend)
	return out
}

// LoadHost fetches the per-host charts with one backend call.
func (l *Loader) LoadHost(ctx context.Context, hostID, rawQuery string) Host {
	res := fetch(l, "HostCharts", func() (*uptimeapi.HostCharts, error) {
		return l.source.HostCharts(ctx, hostID, rawQuery)
	})

	out := Host{
		Pie: Render("uptimePieChart", res, ErrorBlock, func(h *uptimeapi.HostCharts) *Config {
			return UptimePie(h.UptimePie)
		}),
		Bar: Render("dailyBarChart", res, ErrorBlock, func(h *uptimeapi.HostCharts) *Config {
			return DailyBar(h.DailyBar)
		}),
		Trend: Render("trendLineChart", res, ErrorBlock, func(h *uptimeapi.HostCharts) *Config {
			return TrendLine(h.TrendLine)
		}),
	}
	if res.Err != nil {
		out.Error = ErrorText(ErrorBlock, res.Err)
		l.logger.Warn("failed to fetch per-host charts", zap.String("host_id", hostID), zap.Error(res.Err))
	}
	return out
}

func fetch[T any](l *Loader, operation string, call func() (T, error)) Result[T] {
	start := time.Now()
	v, err := call()
	l.probe(operation, time.Since(start).Seconds(), err)
	if err != nil {
		return Fail[T](err)
	}
	return Ok(v)
}

func (l *Loader) logPanelErrors(panels ...Panel) {
	for _, p := range panels {
		if p.Err != nil {
			l.logger.Warn("failed to fetch chart data", zap.String("panel", p.ID), zap.Error(p.Err))
		}
	}
}
