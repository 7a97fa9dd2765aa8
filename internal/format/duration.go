package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// UnknownDuration is shown when an outage has no recorded down time.
	UnknownDuration = "Unknown"
	// InvalidDate is shown when the down time cannot be parsed.
	InvalidDate = "Invalid date"
	zeroClock   = "00:00:00"
)

var downTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Elapsed formats the time between since and now as "HH:MM:SS", prefixed with
// "N day(s), " once a full day has passed. Future timestamps yield "00:00:00".
func Elapsed(since, now time.Time) string {
	diff := now.Sub(since)
	if diff < 0 {
		return zeroClock
	}
	return Clock(diff)
}

// Clock renders a non-negative duration in the same form as Elapsed.
func Clock(d time.Duration) string {
	if d < 0 {
		return zeroClock
	}
	total := int64(d / time.Second)
	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	clock := fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	switch {
	case days == 1:
		return "1 day, " + clock
	case days > 1:
		return strconv.FormatInt(days, 10) + " days, " + clock
	default:
		return clock
	}
}

// ParseDownTime accepts the ISO-ish timestamps rendered into data-down-time
// attributes. Values without a zone are read in loc.
func ParseDownTime(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if loc == nil {
		loc = time.Local
	}
	var lastErr error
	for _, layout := range downTimeLayouts {
		t, err := time.ParseInLocation(layout, raw, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// LiveDuration is the text of a live-duration cell: the elapsed time since the
// attribute's timestamp, or a placeholder when the attribute is missing or bad.
func LiveDuration(downTimeAttr string, now time.Time) string {
	if strings.TrimSpace(downTimeAttr) == "" {
		return UnknownDuration
	}
	t, err := ParseDownTime(downTimeAttr, now.Location())
	if err != nil {
		return InvalidDate
	}
	return Elapsed(t, now)
}

// Minutes converts d to minutes rounded to two decimals, as charted per host.
func Minutes(d time.Duration) float64 {
	return Round2(d.Minutes())
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	if v < 0 {
		return -Round2(-v)
	}
	return float64(int64(v*100+0.5)) / 100
}

// Percent renders a pie share with one decimal and a percent sign, the same
// precision the browser uses for computed shares.
func Percent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}
