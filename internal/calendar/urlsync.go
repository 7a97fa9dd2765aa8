package calendar

import (
	"net/url"
	"strings"
)

// SyncURL returns a copy of u whose month and day parameters reflect sel.
// Other parameters keep their position and encoding. Existing month and day
// parameters are replaced in place; new ones are appended month first. The
// day parameter is dropped for the whole-month selection.
func SyncURL(u *url.URL, sel Selection) *url.URL {
	var out url.URL
	if u != nil {
		out = *u
	}

	month := sel.Month
	day := ""
	if month != "" && sel.Day != "" && sel.Day != DayAll {
		day = sel.Day
	}

	var segments []string
	wroteMonth, wroteDay := false, false
	for _, seg := range strings.Split(out.RawQuery, "&") {
		if seg == "" {
			continue
		}
		switch paramName(seg) {
		case "month":
			if month != "" && !wroteMonth {
				segments = append(segments, "month="+url.QueryEscape(month))
				wroteMonth = true
			}
		case "day":
			if day != "" && !wroteDay {
				segments = append(segments, "day="+url.QueryEscape(day))
				wroteDay = true
			}
		default:
			segments = append(segments, seg)
		}
	}
	if month != "" && !wroteMonth {
		segments = append(segments, "month="+url.QueryEscape(month))
	}
	if day != "" && !wroteDay {
		segments = append(segments, "day="+url.QueryEscape(day))
	}

	out.RawQuery = strings.Join(segments, "&")
	out.ForceQuery = false
	return &out
}

// WithoutParams removes every segment named in names from a raw query,
// leaving the others byte for byte.
func WithoutParams(rawQuery string, names ...string) string {
	var segments []string
	for _, seg := range strings.Split(rawQuery, "&") {
		if seg == "" {
			continue
		}
		drop := false
		name := paramName(seg)
		for _, n := range names {
			if name == n {
				drop = true
				break
			}
		}
		if !drop {
			segments = append(segments, seg)
		}
	}
	return strings.Join(segments, "&")
}

// paramName is the decoded key of one "key=value" query segment.
func paramName(seg string) string {
	key, _, _ := strings.Cut(seg, "=")
	if unescaped, err := url.QueryUnescape(key); err == nil {
		return unescaped
	}
	return key
}

// Href is the relative link a cell uses to move to sel from u.
func Href(u *url.URL, sel Selection) string {
	synced := SyncURL(u, sel)
	if synced.RawQuery == "" {
		return synced.Path
	}
	return synced.Path + "?" + synced.RawQuery
}
