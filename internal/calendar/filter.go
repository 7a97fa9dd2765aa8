package calendar

import "go-net-uptime-dashboard/internal/format"

// EventRow is a displayed event tagged with the month and day of its local
// date label. Rows are only shown or hidden, never changed.
type EventRow struct {
	Key   string `json:"key"`
	Month string `json:"month"`
	Day   string `json:"day"`
}

// FilterResult is the visibility decision for a set of rows.
type FilterResult struct {
	Visible      []bool `json:"visible"`
	Matched      int    `json:"matched"`
	ShowNoEvents bool   `json:"show_no_events"`
	Title        string `json:"title"`
}

// FilterRows decides which rows sel shows. Visible is aligned with rows.
func FilterRows(rows []EventRow, sel Selection) FilterResult {
	res := FilterResult{Visible: make([]bool, len(rows))}
	for i, row := range rows {
		if Matches(row, sel) {
			res.Visible[i] = true
			res.Matched++
		}
	}
	res.ShowNoEvents = res.Matched == 0
	res.Title = Title(sel)
	return res
}

// Matches reports whether row is visible under sel.
func Matches(row EventRow, sel Selection) bool {
	switch sel.Phase() {
	case NoSelection:
		return true
	case MonthSelected:
		return row.Month == sel.Month
	default:
		return row.Month == sel.Month && row.Day == sel.Day
	}
}

// Title is the table heading for sel.
func Title(sel Selection) string {
	switch sel.Phase() {
	case NoSelection:
		return "All Events"
	case MonthSelected:
		return "All Events for " + sel.Month
	default:
		return "Events for " + sel.Month + " " + format.OrdinalString(sel.Day)
	}
}
