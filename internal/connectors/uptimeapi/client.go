package uptimeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrUpstreamDisabled is returned when no upstream base URL is configured.
var ErrUpstreamDisabled = errors.New("uptime backend not configured (set APP_UPSTREAM_URL)")

// Series is a labelled chart series as served by the uptime backend.
type Series struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

// DailyBar is the per-day downtime series with one reason per day.
type DailyBar struct {
	Labels  []string  `json:"labels"`
	Data    []float64 `json:"data"`
	Reasons []string  `json:"reasons"`
}

// HostCharts is the combined per-host chart payload.
type HostCharts struct {
	UptimePie Series   `json:"uptime_pie"`
	DailyBar  DailyBar `json:"daily_bar"`
	TrendLine Series   `json:"trend_line"`
	Error     string   `json:"error,omitempty"`
}

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return e.Message
}

// Client reads chart data from the uptime backend.
type Client struct {
	endpoint string
	http     *http.Client
}

func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: strings.TrimRight(strings.TrimSpace(endpoint), "/"),
		http:     &http.Client{Timeout: timeout},
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.endpoint != ""
}

// AggregateUptime fetches the average uptime per device class.
// rawQuery is forwarded unchanged.
func (c *Client) AggregateUptime(ctx context.Context, rawQuery string) (*Series, error) {
	var out Series
	if err := c.getJSON(ctx, "/api/aggregate-uptime/", rawQuery, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// HostCharts fetches the three per-host charts for the encoded host id.
func (c *Client) HostCharts(ctx context.Context, hostID, rawQuery string) (*HostCharts, error) {
	if strings.TrimSpace(hostID) == "" {
		return nil, errors.New("host id required")
	}
	var out HostCharts
	path := "/api/host/" + url.PathEscape(hostID) + "/charts/"
	if err := c.getJSON(ctx, path, rawQuery, &out); err != nil {
		return nil, err
	}
	if out.Error != "" {
		return nil, errors.New(out.Error)
	}
	return &out, nil
}

// DailyEventTrend fetches the number of events per day.
func (c *Client) DailyEventTrend(ctx context.Context, rawQuery string) (*Series, error) {
	var out Series
	if err := c.getJSON(ctx, "/daily_event_trend_api/", rawQuery, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ping checks that the backend answers at all.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.AggregateUptime(ctx, "")
	return err
}

func (c *Client) getJSON(ctx context.Context, path, rawQuery string, dst any) error {
	if !c.Enabled() {
		return ErrUpstreamDisabled
	}

	target := c.endpoint + path
	if rawQuery = strings.TrimPrefix(rawQuery, "?"); rawQuery != "" {
		target += "?" + rawQuery
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		blob, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var body struct {
			Error string `json:"error"`
		}
		msg := "Server error"
		if json.Unmarshal(blob, &body) == nil && strings.TrimSpace(body.Error) != "" {
			msg = strings.TrimSpace(body.Error)
		}
		return &StatusError{Status: resp.StatusCode, Message: msg}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
