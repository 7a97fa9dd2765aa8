// Package calendar implements the month/day filter of the month view: the
// month catalog, the day grid, the row filter and the URL state that mirrors
// the selection. Everything here is pure; the HTTP layer renders the views.
package calendar

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// bsMonthOrder is the Bikram Sambat month order used by the event date labels.
var bsMonthOrder = []string{
	"Baisakh", "Jestha", "Aasar", "Shrawan", "Bhadra", "Ashoj",
	"Kartik", "Mangsir", "Poush", "Magh", "Falgun", "Chaitra",
}

var bsMonthDays = map[string]int{
	"Baisakh": 31, "Jestha": 31, "Aasar": 32, "Shrawan": 31,
	"Bhadra": 31, "Ashoj": 30, "Kartik": 30, "Mangsir": 30,
	"Poush": 29, "Magh": 29, "Falgun": 30, "Chaitra": 30,
}

// MonthCatalog maps month names to their day counts. It is built once and
// never modified.
type MonthCatalog struct {
	names []string
	days  map[string]int
}

// NewMonthCatalog builds a catalog in the given month order.
func NewMonthCatalog(names []string, days map[string]int) (MonthCatalog, error) {
	if len(names) == 0 {
		return MonthCatalog{}, errors.New("month catalog is empty")
	}
	seen := make(map[string]struct{}, len(names))
	out := MonthCatalog{
		names: make([]string, 0, len(names)),
		days:  make(map[string]int, len(names)),
	}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return MonthCatalog{}, errors.New("month name must not be empty")
		}
		if _, dup := seen[name]; dup {
			return MonthCatalog{}, fmt.Errorf("duplicate month %q", name)
		}
		n, ok := days[name]
		if !ok {
			return MonthCatalog{}, fmt.Errorf("month %q has no day count", name)
		}
		if n <= 0 {
			return MonthCatalog{}, fmt.Errorf("month %q has non-positive day count %d", name, n)
		}
		seen[name] = struct{}{}
		out.names = append(out.names, name)
		out.days[name] = n
	}
	return out, nil
}

// DefaultBSCatalog is the catalog rendered into the month view by default.
func DefaultBSCatalog() MonthCatalog {
	c, err := NewMonthCatalog(bsMonthOrder, bsMonthDays)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseMonthCatalogJSON reads a {"month": days} object. Known Bikram Sambat
// months keep calendar order; any other names follow alphabetically.
func ParseMonthCatalogJSON(raw []byte) (MonthCatalog, error) {
	var days map[string]int
	if err := json.Unmarshal(raw, &days); err != nil {
		return MonthCatalog{}, fmt.Errorf("decode month catalog: %w", err)
	}

	names := make([]string, 0, len(days))
	for _, name := range bsMonthOrder {
		if _, ok := days[name]; ok {
			names = append(names, name)
		}
	}
	var rest []string
	for name := range days {
		if _, known := bsMonthDays[name]; !known {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	names = append(names, rest...)

	return NewMonthCatalog(names, days)
}

// Days returns the day count of month.
func (c MonthCatalog) Days(month string) (int, bool) {
	n, ok := c.days[month]
	return n, ok
}

// Has reports whether month is a catalog key.
func (c MonthCatalog) Has(month string) bool {
	_, ok := c.days[month]
	return ok
}

// Names returns the months in display order.
func (c MonthCatalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Len returns the number of months.
func (c MonthCatalog) Len() int { return len(c.names) }

// JSON encodes the catalog as the page's embedded month data blob.
func (c MonthCatalog) JSON() ([]byte, error) {
	return json.Marshal(c.days)
}
