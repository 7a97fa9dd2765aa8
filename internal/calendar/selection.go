package calendar

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
)

// DayAll selects every day of the selected month.
const DayAll = "all"

var (
	// ErrNoMonthSelected is returned when a day is picked before any month.
	ErrNoMonthSelected = errors.New("no month selected")
	// ErrUnknownDay is returned for a day outside the selected month.
	ErrUnknownDay = errors.New("day outside selected month")
)

// Phase is the coarse state of a Selection.
type Phase int

const (
	NoSelection Phase = iota
	MonthSelected
	DaySelected
)

func (p Phase) String() string {
	switch p {
	case MonthSelected:
		return "month_selected"
	case DaySelected:
		return "day_selected"
	default:
		return "no_selection"
	}
}

// Selection is the month/day filter. Empty fields mean "not set"; Day is only
// meaningful when Month is set.
type Selection struct {
	Month string `json:"month,omitempty"`
	Day   string `json:"day,omitempty"`
}

// Phase classifies the selection.
func (s Selection) Phase() Phase {
	switch {
	case s.Month == "":
		return NoSelection
	case s.Day == "" || s.Day == DayAll:
		return MonthSelected
	default:
		return DaySelected
	}
}

// SpecificDay reports whether the selection narrows to a single day.
func (s Selection) SpecificDay() bool {
	return s.Phase() == DaySelected
}

// FromQuery restores the selection carried by the month and day query
// parameters. A missing month means no selection; a missing or invalid day
// falls back to the whole month. Months absent from the catalog are kept so
// the rows are still filtered by them.
func FromQuery(catalog MonthCatalog, q url.Values) Selection {
	month := strings.TrimSpace(q.Get("month"))
	if month == "" {
		return Selection{}
	}
	sel := Selection{Month: month, Day: DayAll}
	if day, err := normalizeDay(catalog, month, q.Get("day")); err == nil {
		sel.Day = day
	}
	return sel
}

// normalizeDay validates raw against month and returns its canonical form:
// DayAll or a decimal integer without leading zeros.
func normalizeDay(catalog MonthCatalog, month, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, DayAll) {
		return DayAll, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return "", ErrUnknownDay
	}
	max, ok := catalog.Days(month)
	if !ok || n < 1 || n > max {
		return "", ErrUnknownDay
	}
	return strconv.Itoa(n), nil
}
