package http

import (
	"bytes"
	"html/template"
	nethttp "net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-net-uptime-dashboard/internal/calendar"
	"go-net-uptime-dashboard/internal/charts"
	"go-net-uptime-dashboard/internal/connectors/events"
	"go-net-uptime-dashboard/internal/format"
)

const displayTimeLayout = "2006-01-02 15:04:05"

// eventRow is one event as the tables show it.
type eventRow struct {
	events.Event
	HostID   string
	DownText string
	UpText   string
	// DownAttr feeds the live ticker; set only while the outage is ongoing.
	DownAttr string
	Duration string
	// Collapsed rows sit behind the show-more button.
	Collapsed bool
	// Hidden rows are filtered out by the month view.
	Hidden     bool
	Month, Day string
}

func newEventRows(items []events.Event, now time.Time, showMoreAfter int) []eventRow {
	out := make([]eventRow, 0, len(items))
	for i, e := range items {
		row := eventRow{
			Event:     e,
			HostID:    e.HostID(),
			DownText:  stamp(e.DownTime),
			UpText:    stamp(e.UpTime),
			Collapsed: showMoreAfter > 0 && i >= showMoreAfter,
		}
		row.Month, row.Day = events.SplitDateLabel(e.Date)
		if e.Ongoing() {
			row.DownAttr = e.DownTime.Format(time.RFC3339)
			row.Duration = format.LiveDuration(row.DownAttr, now)
		} else if e.DownTime != nil {
			row.Duration = format.Clock(e.Duration(now))
		} else {
			row.Duration = format.UnknownDuration
		}
		out = append(out, row)
	}
	return out
}

func hasCollapsed(rows []eventRow) bool {
	for _, r := range rows {
		if r.Collapsed {
			return true
		}
	}
	return false
}

func stamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(displayTimeLayout)
}

// filterForm echoes the dashboard filter inputs back into the page.
type filterForm struct {
	Name      string
	StartDate string
	EndDate   string
	Type      string
	TypeLabel string
}

func newFilterForm(r *nethttp.Request) filterForm {
	q := r.URL.Query()
	f := filterForm{
		Name:      q.Get("name"),
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
		Type:      q.Get("type"),
	}
	f.TypeLabel = typeLabel(f.Type)
	return f
}

// typeLabel capitalizes a device type for headings: acronyms in upper case,
// anything else title case.
func typeLabel(t string) string {
	t = strings.TrimSpace(t)
	switch strings.ToLower(t) {
	case "":
		return ""
	case "crc", "mpls":
		return strings.ToUpper(t)
	}
	words := strings.Fields(strings.ToLower(t))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

type dashboardPage struct {
	Title   string
	Filter  filterForm
	Charts  charts.Dashboard
	Summary *events.Summary
	Ongoing []eventRow
	HasMore bool
	Notice  string
}

func dashboardHandler(d deps) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.URL.Path != "/" {
			nethttp.NotFound(w, r)
			return
		}

		page := dashboardPage{Title: "Network Uptime Dashboard", Filter: newFilterForm(r)}
		filter, err := events.FilterFromQuery(r.URL.Query())
		if err != nil {
			renderError(w, d.logger, nethttp.StatusBadRequest, err.Error())
			return
		}

		page.Charts = d.loader.LoadDashboard(r.Context(), r.URL.RawQuery)

		if d.store == nil {
			page.Notice = storeDisabledMessage
		} else {
			items, err := listEvents(r.Context(), d, "", filter)
			if err != nil {
				d.logger.Error("list events failed", zap.Error(err))
				page.Notice = "Could not load events."
			} else {
				now := d.now()
				start, end := events.TimeRange(filter, items, now)
				summary := events.Summarize(items, start, end, now)
				page.Summary = &summary
				page.Ongoing = newEventRows(summary.Ongoing, now, d.showMoreAfter)
				page.HasMore = hasCollapsed(page.Ongoing)
				ongoingOutages.Set(float64(len(summary.Ongoing)))
			}
		}
		renderPage(w, d.logger, "dashboard", page)
	}
}

type hostPage struct {
	Title    string
	HostName string
	HostID   string
	Charts   charts.Host
	Events   []eventRow
	HasMore  bool
	Notice   string
}

// hostHandler serves /host/{id}/ where id is the URL-safe base64 host name.
func hostHandler(d deps) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/host/"), "/")
		if id == "" || strings.Contains(id, "/") {
			nethttp.NotFound(w, r)
			return
		}
		name, err := events.DecodeHostID(id)
		if err != nil {
			nethttp.NotFound(w, r)
			return
		}
		if !strings.HasSuffix(r.URL.Path, "/") {
			target := "/host/" + id + "/"
			if r.URL.RawQuery != "" {
				target += "?" + r.URL.RawQuery
			}
			nethttp.Redirect(w, r, target, nethttp.StatusMovedPermanently)
			return
		}
		filter, err := events.FilterFromQuery(r.URL.Query())
		if err != nil {
			renderError(w, d.logger, nethttp.StatusBadRequest, err.Error())
			return
		}

		page := hostPage{Title: name, HostName: name, HostID: id}
		page.Charts = d.loader.LoadHost(r.Context(), id, r.URL.RawQuery)

		if d.store == nil {
			page.Notice = storeDisabledMessage
		} else {
			items, err := listEvents(r.Context(), d, name, filter)
			if err != nil {
				d.logger.Error("list host events failed", zap.String("host", name), zap.Error(err))
				page.Notice = "Could not load events."
			} else {
				page.Events = newEventRows(items, d.now(), d.showMoreAfter)
				page.HasMore = hasCollapsed(page.Events)
			}
		}
		renderPage(w, d.logger, "host", page)
	}
}

type monthPage struct {
	Title       string
	View        calendar.View
	Events      []eventRow
	CatalogJSON template.JS
	Notice      string
}

// monthViewHandler serves the calendar page. The selection comes from the
// month and day parameters; every cell links to the next state.
func monthViewHandler(d deps) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.URL.Path != "/monthview/" {
			if r.URL.Path == "/monthview" {
				nethttp.Redirect(w, r, "/monthview/?"+r.URL.RawQuery, nethttp.StatusMovedPermanently)
				return
			}
			nethttp.NotFound(w, r)
			return
		}
		filter, err := events.FilterFromQuery(r.URL.Query())
		if err != nil {
			renderError(w, d.logger, nethttp.StatusBadRequest, err.Error())
			return
		}

		page := monthPage{Title: "Monthly View"}
		var items []events.Event
		if d.store == nil {
			page.Notice = storeDisabledMessage
		} else if items, err = listEvents(r.Context(), d, "", filter); err != nil {
			d.logger.Error("list events failed", zap.Error(err))
			page.Notice = "Could not load events."
			items = nil
		}

		ctrl := calendar.NewController(d.catalog, events.Rows(items), r.URL)
		page.View = ctrl.View()
		page.Events = newEventRows(items, d.now(), 0)
		for i := range page.Events {
			page.Events[i].Hidden = !page.View.Rows.Visible[i]
		}
		if blob, err := d.catalog.JSON(); err == nil {
			page.CatalogJSON = template.JS(blob)
		}
		renderPage(w, d.logger, "monthview", page)
	}
}

type errorPage struct {
	Title   string
	Status  int
	Message string
	Notice  string
}

func renderError(w nethttp.ResponseWriter, logger *zap.Logger, status int, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pages.ExecuteTemplate(w, "error", errorPage{Title: nethttp.StatusText(status), Status: status, Message: msg}); err != nil {
		logger.Error("render error page failed", zap.Error(err))
	}
}

// renderPage buffers the template so a failure can still become a 500.
func renderPage(w nethttp.ResponseWriter, logger *zap.Logger, name string, data any) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		logger.Error("render page failed", zap.String("page", name), zap.Error(err))
		nethttp.Error(w, "internal server error", nethttp.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(nethttp.StatusOK)
	_, _ = buf.WriteTo(w)
}
