package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"go-net-uptime-dashboard/internal/calendar"
	"go-net-uptime-dashboard/internal/config"
	"go-net-uptime-dashboard/internal/connectors/events"
	"go-net-uptime-dashboard/internal/format"
	httpapi "go-net-uptime-dashboard/internal/http"
)

var errStoreDisabled = errors.New("events backend disabled (set APP_EVENTS_BACKEND)")

func eventsCmd() *cobra.Command {
	var month, day string
	var name, startDate, endDate, deviceType string
	var ongoing bool

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List logged outages, optionally narrowed to a month or day",
		Example: `  uptime-dashboard events --month Magh
  uptime-dashboard events --month Magh --day 10 -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := events.FilterFromQuery(url.Values{
				"name":       {name},
				"start_date": {startDate},
				"end_date":   {endDate},
				"type":       {deviceType},
			})
			if err != nil {
				return err
			}
			filter.OngoingOnly = ongoing

			cfg := config.FromEnv()
			if err := cfg.Validate(); err != nil {
				return err
			}
			catalog, err := httpapi.LoadMonthCatalog(cfg.MonthCatalogFile)
			if err != nil {
				return err
			}
			store, err := httpapi.OpenEventStore(cfg)
			if err != nil {
				return err
			}
			if store == nil {
				return errStoreDisabled
			}
			defer store.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.DBQueryTimeout+cfg.DBConnTimeout)
			defer cancel()
			items, err := store.ListEvents(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to list events: %w", err)
			}

			sel := calendar.FromQuery(catalog, url.Values{"month": {month}, "day": {day}})
			title, visible := selectEvents(items, sel)

			switch outputFormat {
			case "json":
				return outputEventsJSON(os.Stdout, title, visible)
			case "table":
				return outputEventsTable(os.Stdout, title, visible, time.Now())
			default:
				return fmt.Errorf("unsupported output format: %s", outputFormat)
			}
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "Show only events of this month (e.g. Magh)")
	cmd.Flags().StringVar(&day, "day", "", "Narrow the month to one day (number, ordinal or all)")
	cmd.Flags().StringVar(&name, "name", "", "Filter by host name substring")
	cmd.Flags().StringVar(&startDate, "start-date", "", "Earliest down date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end-date", "", "Latest down date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&deviceType, "type", "", "Filter by device type (switch, mpls, ...)")
	cmd.Flags().BoolVar(&ongoing, "ongoing", false, "Only outages that are still open")

	return cmd
}

// selectEvents applies the month view's row filter to items.
func selectEvents(items []events.Event, sel calendar.Selection) (string, []events.Event) {
	res := calendar.FilterRows(events.Rows(items), sel)
	visible := make([]events.Event, 0, res.Matched)
	for i, e := range items {
		if res.Visible[i] {
			visible = append(visible, e)
		}
	}
	return res.Title, visible
}

func outputEventsJSON(w io.Writer, title string, items []events.Event) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"title": title, "events": items})
}

func outputEventsTable(w io.Writer, title string, items []events.Event, now time.Time) error {
	fmt.Fprintln(w, title)
	if len(items) == 0 {
		fmt.Fprintln(w, "No events found")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Append([]string{"Name", "Type", "Date", "Down Time", "Up Time", "Duration", "Reason"})
	for _, e := range items {
		upTime := "Ongoing"
		if e.UpTime != nil {
			upTime = formatTimestamp(*e.UpTime)
		}
		downTime := "Unknown"
		duration := format.UnknownDuration
		if e.DownTime != nil {
			downTime = formatTimestamp(*e.DownTime)
			duration = format.Clock(e.Duration(now))
		}
		table.Append([]string{e.Name, e.Type, e.Date, downTime, upTime, duration, e.Reason})
	}
	table.Render()
	return nil
}

func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
