package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-net-uptime-dashboard/internal/calendar"
	"go-net-uptime-dashboard/internal/connectors/events"
)

func ts(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func cliEvents() []events.Event {
	return []events.Event{
		{ID: 1, Name: "SW-1", Type: "switch", Date: "10th Magh", DownTime: ts("2025-01-23T08:00:00Z"), UpTime: ts("2025-01-23T09:30:15Z"), Reason: "Power Issue"},
		{ID: 2, Name: "SW-2", Type: "switch", Date: "3rd Magh", DownTime: ts("2025-01-16T10:00:00Z")},
		{ID: 3, Name: "OLT-9", Type: "olt", Date: "10th Poush", DownTime: ts("2024-12-25T10:00:00Z"), UpTime: ts("2024-12-25T11:00:00Z")},
	}
}

func TestSelectEvents(t *testing.T) {
	items := cliEvents()

	title, visible := selectEvents(items, calendar.Selection{})
	assert.Equal(t, "All Events", title)
	assert.Len(t, visible, 3)

	title, visible = selectEvents(items, calendar.Selection{Month: "Magh", Day: calendar.DayAll})
	assert.Equal(t, "All Events for Magh", title)
	require.Len(t, visible, 2)
	assert.Equal(t, "SW-1", visible[0].Name)
	assert.Equal(t, "SW-2", visible[1].Name)

	title, visible = selectEvents(items, calendar.Selection{Month: "Magh", Day: "10"})
	assert.Equal(t, "Events for Magh 10th", title)
	require.Len(t, visible, 1)
	assert.Equal(t, int64(1), visible[0].ID)

	_, visible = selectEvents(items, calendar.Selection{Month: "Chaitra", Day: calendar.DayAll})
	assert.Empty(t, visible)
}

func TestOutputEventsTable(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2025, 1, 23, 12, 0, 0, 0, time.UTC)
	require.NoError(t, outputEventsTable(&buf, "All Events for Magh", cliEvents()[:2], now))

	out := buf.String()
	assert.Contains(t, out, "All Events for Magh")
	assert.Contains(t, out, "SW-1")
	assert.Contains(t, out, "01:30:15")
	assert.Contains(t, out, "Ongoing")
	assert.Contains(t, out, "7 days, 02:00:00")
}

func TestOutputEventsTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, outputEventsTable(&buf, "Events for Magh 1st", nil, time.Now()))
	assert.Equal(t, "Events for Magh 1st\nNo events found\n", buf.String())
}

func TestOutputEventsJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, outputEventsJSON(&buf, "All Events", cliEvents()[:1]))

	var got struct {
		Title  string         `json:"title"`
		Events []events.Event `json:"events"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "All Events", got.Title)
	require.Len(t, got.Events, 1)
	assert.Equal(t, "Power Issue", got.Events[0].Reason)
}

func TestUseConfigFile(t *testing.T) {
	t.Setenv("APP_CONFIG_FILE", "")

	require.NoError(t, useConfigFile(""))
	assert.Equal(t, "", os.Getenv("APP_CONFIG_FILE"))

	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr: \":9090\"\n"), 0o600))
	require.NoError(t, useConfigFile(path))
	assert.Equal(t, path, os.Getenv("APP_CONFIG_FILE"))

	err := useConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file")
}
