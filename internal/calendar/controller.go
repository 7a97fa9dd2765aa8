package calendar

import (
	"fmt"
	"net/url"
)

// View is everything the month view shows for one selection.
type View struct {
	Selection  Selection    `json:"selection"`
	Phase      string       `json:"phase"`
	MonthCells []Cell       `json:"month_cells"`
	Grid       GridView     `json:"grid"`
	Rows       FilterResult `json:"rows"`
	URL        string       `json:"url"`
}

// Controller owns the selection of one month view. It is not safe for
// concurrent use; each request builds its own.
type Controller struct {
	catalog MonthCatalog
	rows    []EventRow
	sel     Selection
	url     *url.URL
	view    View
}

// NewController restores the selection from the month and day parameters of
// current and renders the initial view. The URL is left as it came in.
func NewController(catalog MonthCatalog, rows []EventRow, current *url.URL) *Controller {
	if current == nil {
		current = &url.URL{}
	}
	c := &Controller{
		catalog: catalog,
		rows:    rows,
		sel:     FromQuery(catalog, current.Query()),
		url:     current,
	}
	c.view = c.render()
	c.view.URL = requestURI(current)
	return c
}

// Selection returns the current selection.
func (c *Controller) Selection() Selection { return c.sel }

// View returns the last rendered view.
func (c *Controller) View() View { return c.view }

// ClickMonth selects month with every day shown, whatever day was picked
// before.
func (c *Controller) ClickMonth(month string) View {
	return c.apply(Selection{Month: month, Day: DayAll})
}

// ClickDay narrows the current month to day ("all" widens it again). The
// month comes from the controller's own state.
func (c *Controller) ClickDay(day string) (View, error) {
	if c.sel.Month == "" {
		return c.view, ErrNoMonthSelected
	}
	normalized, err := normalizeDay(c.catalog, c.sel.Month, day)
	if err != nil {
		return c.view, fmt.Errorf("%w: %q in %s", err, day, c.sel.Month)
	}
	return c.apply(Selection{Month: c.sel.Month, Day: normalized}), nil
}

// apply runs one transition: grid, selected markers, row filter, then URL.
func (c *Controller) apply(next Selection) View {
	c.sel = next
	c.url = SyncURL(c.url, c.sel)
	c.view = c.render()
	return c.view
}

func (c *Controller) render() View {
	return View{
		Selection:  c.sel,
		Phase:      c.sel.Phase().String(),
		Grid:       Grid(c.catalog, c.sel, c.url),
		MonthCells: MonthCells(c.catalog, c.sel, c.url),
		Rows:       FilterRows(c.rows, c.sel),
		URL:        requestURI(c.url),
	}
}

func requestURI(u *url.URL) string {
	if u.RawQuery == "" {
		return u.Path
	}
	return u.Path + "?" + u.RawQuery
}
