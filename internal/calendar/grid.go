package calendar

import (
	"net/url"
	"strconv"

	"go-net-uptime-dashboard/internal/format"
)

// Cell is one clickable entry of the month selector or the day grid.
type Cell struct {
	Label    string `json:"label"`
	Month    string `json:"month"`
	Day      string `json:"day,omitempty"`
	Href     string `json:"href"`
	Selected bool   `json:"selected"`
}

// GridView is the day picker for one month.
type GridView struct {
	Month   string `json:"month"`
	Visible bool   `json:"visible"`
	Cells   []Cell `json:"cells"`
}

// MonthCells renders the month selector with the selected marker set by
// exact match against sel.
func MonthCells(catalog MonthCatalog, sel Selection, u *url.URL) []Cell {
	names := catalog.Names()
	cells := make([]Cell, 0, len(names))
	for _, name := range names {
		cells = append(cells, Cell{
			Label:    name,
			Month:    name,
			Href:     Href(u, Selection{Month: name, Day: DayAll}),
			Selected: name == sel.Month,
		})
	}
	return cells
}

// Grid builds the day cells of sel.Month: an "All" cell followed by one cell
// per day. Unknown or empty months produce a hidden, empty grid. The grid is
// rebuilt from scratch on every call.
func Grid(catalog MonthCatalog, sel Selection, u *url.URL) GridView {
	days, ok := catalog.Days(sel.Month)
	if sel.Month == "" || !ok {
		return GridView{}
	}

	selectedDay := sel.Day
	if selectedDay == "" {
		selectedDay = DayAll
	}

	cells := make([]Cell, 0, days+1)
	cells = append(cells, Cell{
		Label:    "All",
		Month:    sel.Month,
		Day:      DayAll,
		Href:     Href(u, Selection{Month: sel.Month, Day: DayAll}),
		Selected: selectedDay == DayAll,
	})
	for d := 1; d <= days; d++ {
		day := strconv.Itoa(d)
		cells = append(cells, Cell{
			Label:    format.Ordinal(d) + " " + sel.Month,
			Month:    sel.Month,
			Day:      day,
			Href:     Href(u, Selection{Month: sel.Month, Day: day}),
			Selected: selectedDay == day,
		})
	}
	return GridView{Month: sel.Month, Visible: true, Cells: cells}
}
