package events

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go-net-uptime-dashboard/internal/calendar"
)

// ErrInvalidHostID is returned for host ids that are not URL-safe base64.
var ErrInvalidHostID = errors.New("invalid host id")

// Event is one logged outage of a switch, MPLS link or other device.
type Event struct {
	ID       int64      `json:"id"`
	Name     string     `json:"name"`
	DownTime *time.Time `json:"down_time"`
	UpTime   *time.Time `json:"up_time"`
	Date     string     `json:"date"`
	Type     string     `json:"type"`
	Region   string     `json:"region"`
	Reason   string     `json:"reason"`
	Category string     `json:"category"`
}

// Ongoing reports whether the device is still down.
func (e Event) Ongoing() bool {
	return e.DownTime != nil && e.UpTime == nil
}

// Duration is the outage length, measured up to now for ongoing outages.
func (e Event) Duration(now time.Time) time.Duration {
	switch {
	case e.DownTime == nil:
		return 0
	case e.UpTime != nil:
		return e.UpTime.Truncate(time.Second).Sub(e.DownTime.Truncate(time.Second))
	default:
		return now.Truncate(time.Second).Sub(e.DownTime.Truncate(time.Second))
	}
}

// HostID is the URL-safe id of the event's host.
func (e Event) HostID() string {
	return EncodeHostID(e.Name)
}

// Row tags the event for the month filter.
func (e Event) Row() calendar.EventRow {
	month, day := SplitDateLabel(e.Date)
	return calendar.EventRow{Key: strconv.FormatInt(e.ID, 10), Month: month, Day: day}
}

// Rows tags every event for the month filter, keeping order.
func Rows(items []Event) []calendar.EventRow {
	out := make([]calendar.EventRow, 0, len(items))
	for _, e := range items {
		out = append(out, e.Row())
	}
	return out
}

var leadingDigits = regexp.MustCompile(`^(\d+)`)

// SplitDateLabel splits a local date label such as "12th Ashoj" into its
// month ("Ashoj") and day ("12"). Labels without a space yield empty parts.
func SplitDateLabel(label string) (month, day string) {
	label = strings.TrimSpace(label)
	first, rest, ok := strings.Cut(label, " ")
	if !ok {
		return "", ""
	}
	if m := leadingDigits.FindStringSubmatch(first); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			day = strconv.Itoa(n)
		}
	}
	return strings.TrimSpace(rest), day
}

// EncodeHostID encodes a host name for use in URLs.
func EncodeHostID(name string) string {
	return base64.URLEncoding.EncodeToString([]byte(name))
}

// DecodeHostID reverses EncodeHostID.
func DecodeHostID(id string) (string, error) {
	raw, err := base64.URLEncoding.DecodeString(strings.TrimSpace(id))
	if err != nil || len(raw) == 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidHostID, id)
	}
	return string(raw), nil
}

// Filter narrows event listings. Zero values do not filter.
type Filter struct {
	Name        string
	StartDate   *time.Time
	EndDate     *time.Time
	Type        string
	OngoingOnly bool
}

// FilterFromQuery reads the dashboard filter parameters: name, start_date,
// end_date (YYYY-MM-DD) and type.
func FilterFromQuery(q url.Values) (Filter, error) {
	f := Filter{
		Name: strings.TrimSpace(q.Get("name")),
		Type: strings.TrimSpace(q.Get("type")),
	}
	if raw := strings.TrimSpace(q.Get("start_date")); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return Filter{}, fmt.Errorf("invalid start_date, expected YYYY-MM-DD")
		}
		f.StartDate = &t
	}
	if raw := strings.TrimSpace(q.Get("end_date")); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return Filter{}, fmt.Errorf("invalid end_date, expected YYYY-MM-DD")
		}
		f.EndDate = &t
	}
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return Filter{}, fmt.Errorf("end_date before start_date")
	}
	return f, nil
}

// Store lists events from the event database.
type Store interface {
	ListEvents(ctx context.Context, f Filter) ([]Event, error)
	ListHostEvents(ctx context.Context, name string, f Filter) ([]Event, error)
	Ping(ctx context.Context) error
	Close() error
}
