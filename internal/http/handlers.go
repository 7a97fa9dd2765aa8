package http

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-net-uptime-dashboard/internal/calendar"
	"go-net-uptime-dashboard/internal/connectors/events"
)

const storeDisabledMessage = "event database integration disabled (set APP_EVENTS_BACKEND)"

// Parameters of the calendar view endpoint that are not part of the page URL.
const (
	actionParam = "action"
	valueParam  = "value"
)

func listEvents(ctx context.Context, d deps, host string, f events.Filter) ([]events.Event, error) {
	start := time.Now()
	var (
		items []events.Event
		err   error
		op    = "ListEvents"
	)
	if host == "" {
		items, err = d.store.ListEvents(ctx, f)
	} else {
		op = "ListHostEvents"
		items, err = d.store.ListHostEvents(ctx, host, f)
	}
	recordDBQuery(d.backend, op, time.Since(start).Seconds(), err)
	return items, err
}

func storeErrorStatus(err error) int {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, nethttp.ErrHandlerTimeout) {
		return nethttp.StatusGatewayTimeout
	}
	return nethttp.StatusInternalServerError
}

// calendarViewHandler runs at most one controller transition on top of the
// state in the query and returns the resulting view.
//
//	GET /api/v1/calendar/view?month=Magh&action=day&value=10
func calendarViewHandler(d deps) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			writeJSON(w, nethttp.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
			return
		}
		if d.store == nil {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{"error": storeDisabledMessage})
			return
		}

		q := r.URL.Query()
		filter, err := events.FilterFromQuery(q)
		if err != nil {
			writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}
		items, err := listEvents(r.Context(), d, "", filter)
		if err != nil {
			d.logger.Error("list events failed", zap.Error(err))
			writeJSON(w, storeErrorStatus(err), map[string]any{"error": "failed to fetch events"})
			return
		}

		action := strings.TrimSpace(q.Get(actionParam))
		value := strings.TrimSpace(q.Get(valueParam))
		page := &url.URL{Path: "/monthview/", RawQuery: calendar.WithoutParams(r.URL.RawQuery, actionParam, valueParam)}

		ctrl := calendar.NewController(d.catalog, events.Rows(items), page)
		view := ctrl.View()
		switch action {
		case "":
		case "month":
			if !d.catalog.Has(value) {
				writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": fmt.Sprintf("unknown month: %q", value)})
				return
			}
			view = ctrl.ClickMonth(value)
		case "day":
			view, err = ctrl.ClickDay(value)
			switch {
			case errors.Is(err, calendar.ErrNoMonthSelected):
				writeJSON(w, nethttp.StatusConflict, map[string]any{"error": err.Error()})
				return
			case err != nil:
				writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}
		default:
			writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": "action must be month or day"})
			return
		}

		writeJSON(w, nethttp.StatusOK, map[string]any{
			"meta": map[string]any{
				"events": len(items),
				"action": action,
			},
			"data": view,
		})
	}
}

// eventSummaryHandler returns the per-host digest behind the dashboard table.
func eventSummaryHandler(d deps) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if d.store == nil {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{"error": storeDisabledMessage})
			return
		}
		filter, err := events.FilterFromQuery(r.URL.Query())
		if err != nil {
			writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}
		items, err := listEvents(r.Context(), d, "", filter)
		if err != nil {
			d.logger.Error("list events failed", zap.Error(err))
			writeJSON(w, storeErrorStatus(err), map[string]any{"error": "failed to fetch events"})
			return
		}

		now := d.now()
		start, end := events.TimeRange(filter, items, now)
		summary := events.Summarize(items, start, end, now)
		writeJSON(w, nethttp.StatusOK, map[string]any{
			"meta": map[string]any{
				"generated_at": now.UTC(),
				"count":        len(summary.Hosts),
			},
			"data": summary,
		})
	}
}
