package events

import (
	"sort"
	"strings"
	"time"

	"go-net-uptime-dashboard/internal/format"
)

// HostSummary aggregates the outages of one host over a time range.
type HostSummary struct {
	Name      string        `json:"name"`
	HostID    string        `json:"host_id"`
	Type      string        `json:"type"`
	Count     int           `json:"count"`
	Downtime  time.Duration `json:"downtime"`
	UptimePct float64       `json:"uptime_pct"`
	Reason    string        `json:"reason"`
	Date      string        `json:"date,omitempty"`
	DownTime  *time.Time    `json:"down_time,omitempty"`
	UpTime    *time.Time    `json:"up_time,omitempty"`

	reasons []string
}

// Summary is the dashboard digest of a list of events.
type Summary struct {
	Start       time.Time     `json:"start"`
	End         time.Time     `json:"end"`
	TotalEvents int           `json:"total_events"`
	Switches    int           `json:"switches"`
	MPLS        int           `json:"mpls"`
	Hosts       []HostSummary `json:"hosts"`
	Others      []HostSummary `json:"others"`
	Ongoing     []Event       `json:"ongoing"`
}

// yearStartLabel is the local date label of the first day of the year.
const yearStartLabel = "1st Baisakh"

// TimeRange picks the window uptime is measured over: the filter dates when
// both are set, otherwise from the year's first logged day (or the earliest
// outage) up to now.
func TimeRange(f Filter, items []Event, now time.Time) (time.Time, time.Time) {
	if f.StartDate != nil && f.EndDate != nil {
		end := f.EndDate.Add(24*time.Hour - time.Nanosecond)
		return *f.StartDate, end
	}
	var start time.Time
	for _, e := range items {
		if e.DownTime == nil {
			continue
		}
		if e.Date == yearStartLabel {
			start = *e.DownTime
		}
	}
	if start.IsZero() {
		for _, e := range items {
			if e.DownTime != nil && (start.IsZero() || e.DownTime.Before(start)) {
				start = *e.DownTime
			}
		}
	}
	if start.IsZero() {
		start = now
	}
	y, m, d := start.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, start.Location()), now.Truncate(time.Second)
}

// Summarize groups events per host. Switch and MPLS hosts get an uptime
// percentage over [start, end]; every other device is listed once with its
// latest outage.
func Summarize(items []Event, start, end, now time.Time) Summary {
	out := Summary{Start: start, End: end, TotalEvents: len(items)}
	window := end.Sub(start)

	hosts := map[string]*HostSummary{}
	others := map[string]*HostSummary{}
	var hostOrder, otherOrder []string

	for _, e := range items {
		if e.Ongoing() {
			out.Ongoing = append(out.Ongoing, e)
		}
		kind := strings.ToLower(strings.TrimSpace(e.Type))
		group, order := others, &otherOrder
		if kind == "switch" || kind == "mpls" {
			group, order = hosts, &hostOrder
		}
		h, ok := group[e.Name]
		if !ok {
			h = &HostSummary{Name: e.Name, HostID: e.HostID(), Type: kind}
			group[e.Name] = h
			*order = append(*order, e.Name)
		}
		h.Count++
		h.Downtime += e.Duration(now)
		h.reasons = append(h.reasons, e.Reason)
		h.Date, h.DownTime, h.UpTime = e.Date, e.DownTime, e.UpTime
	}

	for _, name := range hostOrder {
		h := hosts[name]
		if window > 0 {
			h.UptimePct = format.Round2(100 - h.Downtime.Seconds()/window.Seconds()*100)
		}
		h.Reason = LikelyRootCause(h.reasons, h.Count)
		switch h.Type {
		case "switch":
			out.Switches++
		case "mpls":
			out.MPLS++
		}
		out.Hosts = append(out.Hosts, *h)
	}
	sort.SliceStable(out.Hosts, func(i, j int) bool {
		a, b := out.Hosts[i], out.Hosts[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.Downtime != b.Downtime {
			return a.Downtime > b.Downtime
		}
		return a.UptimePct > b.UptimePct
	})

	for _, name := range otherOrder {
		h := others[name]
		h.Reason = LikelyRootCause(h.reasons, h.Count)
		out.Others = append(out.Others, *h)
	}
	return out
}
