// Package format holds the display arithmetic shared by the dashboard pages:
// ordinal day labels, elapsed outage durations and tooltip numbers.
package format

import (
	"strconv"
	"strings"
)

// Ordinal renders n with its English ordinal suffix (1st, 2nd, 3rd, 4th, 11th, 21st).
func Ordinal(n int) string {
	return strconv.Itoa(n) + ordinalSuffix(n)
}

func ordinalSuffix(n int) string {
	if n < 0 {
		n = -n
	}
	switch n % 100 {
	case 11, 12, 13:
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// OrdinalString is Ordinal for day values carried as strings in URLs and row
// attributes. Values that are not decimal integers come back unchanged.
func OrdinalString(day string) string {
	day = strings.TrimSpace(day)
	if day == "" {
		return ""
	}
	n, err := strconv.Atoi(day)
	if err != nil {
		return day
	}
	return Ordinal(n)
}
